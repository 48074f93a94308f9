package handlers

import (
	"fmt"
	"io"
	"net/http"

	"hivedesk/internal/utils"
)

// maxAvatarBytes caps display picture uploads.
const maxAvatarBytes = 2 << 20

// HandleProfile returns a profile by email, or the caller's own when no email
// query parameter is given.
func (s *Server) HandleProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		email := r.URL.Query().Get("email")
		if email == "" {
			caller, ok := s.identity(r)
			if !ok {
				s.writeError(w, utils.NewUnauthorizedError("no caller identity"))
				return
			}
			email = caller.Email
		}

		profile, err := s.Store.GetProfileByEmail(r.Context(), email)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, profile)
	}
}

// HandleAvatarUpload stores a display picture in the object store and records
// its public URL on the caller's profile.
func (s *Server) HandleAvatarUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		caller, ok := s.identity(r)
		if !ok {
			s.writeError(w, utils.NewUnauthorizedError("no caller identity"))
			return
		}

		if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
			s.writeError(w, utils.NewValidationError("invalid multipart form"))
			return
		}
		file, header, err := r.FormFile("avatar")
		if err != nil {
			s.writeError(w, utils.NewValidationError("avatar file is required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
		if err != nil {
			s.writeError(w, err)
			return
		}

		key := fmt.Sprintf("avatars/%s", caller.ProfileID)
		url, err := s.Objects.Put(r.Context(), key, data, header.Header.Get("Content-Type"))
		if err != nil {
			s.writeError(w, err)
			return
		}

		if err := s.Store.UpdateProfileAvatar(r.Context(), caller.ProfileID, url); err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]string{"avatarUrl": url})
	}
}

// HandleActivity lists recent activity entries for the caller.
func (s *Server) HandleActivity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		caller, ok := s.identity(r)
		if !ok {
			s.writeError(w, utils.NewUnauthorizedError("no caller identity"))
			return
		}

		entries, err := s.Store.GetActivityByProfile(r.Context(), caller.ProfileID, 50)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, entries)
	}
}
