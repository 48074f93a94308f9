package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"hivedesk/internal/models"
	"hivedesk/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest creates a new profile with credentials
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest authenticates an existing profile
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse carries the signed token plus the profile it represents
type SessionResponse struct {
	Token   string          `json:"token"`
	Profile *models.Profile `json:"profile"`
}

// HandleRegister creates a profile and returns a session token
func (s *Server) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, utils.NewValidationError("invalid request body"))
			return
		}

		if !validEmail(req.Email) {
			s.writeError(w, utils.NewValidationError("email must be a valid address"))
			return
		}
		if req.Username == "" || req.Password == "" {
			s.writeError(w, utils.NewValidationError("username and password are required"))
			return
		}

		if existing, _ := s.Store.GetProfileByEmail(r.Context(), req.Email); existing != nil {
			s.writeError(w, utils.NewAppError(utils.ErrConflict, "email already registered", nil))
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), 14)
		if err != nil {
			s.writeError(w, err)
			return
		}

		profile := &models.Profile{
			ID:             uuid.New(),
			Email:          req.Email,
			Username:       req.Username,
			HashedPassword: string(hashed),
			CreatedAt:      time.Now(),
		}
		if err := s.Store.SaveProfile(r.Context(), profile); err != nil {
			s.writeError(w, utils.NewAppError(utils.ErrDatabase, "failed to save profile", err))
			return
		}

		token, err := s.Auth.GenerateToken(profile.ID, profile.Email)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, &SessionResponse{Token: token, Profile: profile})
	}
}

// HandleLogin verifies credentials and returns a session token
func (s *Server) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, utils.NewValidationError("invalid request body"))
			return
		}

		profile, err := s.Store.GetProfileByEmail(r.Context(), req.Email)
		if err != nil || profile == nil {
			s.writeError(w, utils.NewUnauthorizedError("invalid credentials"))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(profile.HashedPassword), []byte(req.Password)); err != nil {
			s.writeError(w, utils.NewUnauthorizedError("invalid credentials"))
			return
		}

		token, err := s.Auth.GenerateToken(profile.ID, profile.Email)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, &SessionResponse{Token: token, Profile: profile})
	}
}

// HandleLogout acknowledges sign-out. Tokens are stateless, so the client
// discards its copy; there is no server-side session to tear down.
func (s *Server) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()
		s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// HandleChangePassword updates the caller's password after verifying the
// current one.
func (s *Server) HandleChangePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPut {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		caller, ok := s.identity(r)
		if !ok {
			s.writeError(w, utils.NewUnauthorizedError("no caller identity"))
			return
		}

		var req struct {
			CurrentPassword string `json:"currentPassword"`
			NewPassword     string `json:"newPassword"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, utils.NewValidationError("invalid request body"))
			return
		}
		if req.NewPassword == "" {
			s.writeError(w, utils.NewValidationError("newPassword is required"))
			return
		}

		profile, err := s.Store.GetProfileByID(r.Context(), caller.ProfileID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(profile.HashedPassword), []byte(req.CurrentPassword)); err != nil {
			s.writeError(w, utils.NewUnauthorizedError("invalid credentials"))
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 14)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if err := s.Store.UpdateProfilePassword(r.Context(), profile.ID, string(hashed)); err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
