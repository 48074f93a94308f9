package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerProfile(t *testing.T, s *Server, email, username, password string) *SessionResponse {
	t.Helper()
	req := authedRequest(http.MethodPost, "/session/register", RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	}, nil)
	rr := httptest.NewRecorder()
	s.HandleRegister()(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp SessionResponse
	decodeBody(t, rr, &resp)
	return &resp
}

func TestRegisterIssuesToken(t *testing.T) {
	s, _ := newTestServer(t)

	resp := registerProfile(t, s, "alice@x.com", "alice", "hunter22")
	require.NotNil(t, resp.Profile)
	assert.Equal(t, "alice@x.com", resp.Profile.Email)
	assert.Empty(t, resp.Profile.HashedPassword, "password hash must not serialize")

	claims, err := s.Auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", claims.Email)
	assert.Equal(t, resp.Profile.ID, claims.ProfileID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s, _ := newTestServer(t)
	registerProfile(t, s, "alice@x.com", "alice", "hunter22")

	req := authedRequest(http.MethodPost, "/session/register", RegisterRequest{
		Email:    "alice@x.com",
		Username: "alice2",
		Password: "hunter23",
	}, nil)
	rr := httptest.NewRecorder()
	s.HandleRegister()(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	s, _ := newTestServer(t)

	req := authedRequest(http.MethodPost, "/session/register", RegisterRequest{
		Email:    "not-an-email",
		Username: "alice",
		Password: "hunter22",
	}, nil)
	rr := httptest.NewRecorder()
	s.HandleRegister()(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginWithValidCredentials(t *testing.T) {
	s, _ := newTestServer(t)
	registered := registerProfile(t, s, "alice@x.com", "alice", "hunter22")

	req := authedRequest(http.MethodPost, "/session/login", LoginRequest{
		Email:    "alice@x.com",
		Password: "hunter22",
	}, nil)
	rr := httptest.NewRecorder()
	s.HandleLogin()(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp SessionResponse
	decodeBody(t, rr, &resp)
	assert.Equal(t, registered.Profile.ID, resp.Profile.ID)
	assert.NotEmpty(t, resp.Token)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s, _ := newTestServer(t)
	registerProfile(t, s, "alice@x.com", "alice", "hunter22")

	req := authedRequest(http.MethodPost, "/session/login", LoginRequest{
		Email:    "alice@x.com",
		Password: "wrong",
	}, nil)
	rr := httptest.NewRecorder()
	s.HandleLogin()(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	s, _ := newTestServer(t)

	req := authedRequest(http.MethodPost, "/session/login", LoginRequest{
		Email:    "ghost@x.com",
		Password: "whatever",
	}, nil)
	rr := httptest.NewRecorder()
	s.HandleLogin()(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestChangePasswordRequiresCurrentPassword(t *testing.T) {
	s, _ := newTestServer(t)
	registered := registerProfile(t, s, "alice@x.com", "alice", "hunter22")

	claims, err := s.Auth.ValidateToken(registered.Token)
	require.NoError(t, err)

	caller := identityFor("alice@x.com")
	caller.ProfileID = claims.ProfileID

	body := map[string]string{"currentPassword": "wrong", "newPassword": "newpass"}
	req := authedRequest(http.MethodPut, "/session/password", body, caller)
	rr := httptest.NewRecorder()
	s.HandleChangePassword()(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	body = map[string]string{"currentPassword": "hunter22", "newPassword": "newpass"}
	req = authedRequest(http.MethodPut, "/session/password", body, caller)
	rr = httptest.NewRecorder()
	s.HandleChangePassword()(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// The new password now works for login.
	req = authedRequest(http.MethodPost, "/session/login", LoginRequest{
		Email:    "alice@x.com",
		Password: "newpass",
	}, nil)
	rr = httptest.NewRecorder()
	s.HandleLogin()(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
