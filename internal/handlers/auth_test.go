package handlers

import (
	"net/http"
	"testing"

	"github.com/fremontasb/fremont-api/internal/dto"
	apierrors "github.com/fremontasb/fremont-api/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Signup(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/signup", map[string]interface{}{
		"email":      "NewUser@example.com",
		"password":   testPassword,
		"first_name": "Ada",
		"grad_year":  2026,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	decode(t, w, &response)
	require.Equal(t, "newuser@example.com", response.Email)
	require.Equal(t, 2026, *response.GradYear)
	require.False(t, response.IsSuperuser)
}

func TestAuthHandler_SignupErrors(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "taken@example.com", nil, false)

	w := env.request(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "taken@example.com",
		"password": testPassword,
	}, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "short@example.com",
		"password": "short",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "nope",
		"password": testPassword,
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var apiErr apierrors.APIError
	decode(t, w, &apiErr)
	require.Equal(t, apierrors.ErrCodeInvalidInput, apiErr.Code)
	require.Contains(t, apiErr.Details, "email")
}

func TestAuthHandler_LoginAndCurrentUser(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "existing@example.com", nil, false)

	w := env.request(t, http.MethodGet, "/api/auth/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	cookies := env.login(t, "existing@example.com")

	w = env.request(t, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	decode(t, w, &response)
	require.Equal(t, user.ID, response.ID)
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "existing@example.com", nil, false)

	w := env.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "existing@example.com",
		"password": "wrong-password",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var apiErr apierrors.APIError
	decode(t, w, &apiErr)
	require.Equal(t, apierrors.ErrCodeInvalidCredentials, apiErr.Code)
}

func TestAppVersion(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/app-version", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"android":3,"ios":"1.2"}`, w.Body.String())
}
