package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geotrack/geotrack-go/internal/model"
	"github.com/geotrack/geotrack-go/internal/service"
)

// AuthHandler handles HTTP requests for registration, login and logout.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleRegister handles POST /api/auth/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhoneRequired),
			errors.Is(err, service.ErrNameRequired),
			errors.Is(err, service.ErrEmailRequired),
			errors.Is(err, service.ErrPasswordRequired),
			errors.Is(err, service.ErrPasswordTooShort),
			errors.Is(err, service.ErrPhoneTaken),
			errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("register failed", "error", err)
			writeError(w, http.StatusBadRequest, "Error registering user")
		}
		return
	}

	writeSuccess(w, "User registered successfully", map[string]any{
		"user":  resp.User,
		"token": resp.Token,
	})
}

// HandleLogin handles POST /api/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhoneRequired), errors.Is(err, service.ErrPasswordRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			slog.Error("login failed", "error", err)
			writeError(w, http.StatusBadRequest, "Error logging in")
		}
		return
	}

	writeSuccess(w, "Login successful", map[string]any{
		"user":  resp.User,
		"token": resp.Token,
	})
}

// HandleLogout handles POST /api/auth/logout requests. Tokens are stateless,
// so there is nothing to invalidate server-side; the client discards the
// token and it expires naturally.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, "Logout successful", nil)
}

// HandleRegisterInfo handles GET /api/auth/register requests with a static
// description of the endpoint.
func (h *AuthHandler) HandleRegisterInfo(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, "Register endpoint information", map[string]any{
		"endpoint":    "/api/auth/register",
		"method":      "POST",
		"description": "Register a new user",
		"required_fields": map[string]string{
			"phone_number": "User's phone number (string)",
			"name":         "User's full name (string)",
			"email":        "User's email address (string)",
			"password":     "User's password (string, min 8 characters)",
		},
		"example_request": map[string]string{
			"phone_number": "+1234567890",
			"name":         "John Doe",
			"email":        "john@example.com",
			"password":     "securepassword",
		},
	})
}

// HandleLoginInfo handles GET /api/auth/login requests.
func (h *AuthHandler) HandleLoginInfo(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, "Login endpoint information", map[string]any{
		"endpoint":    "/api/auth/login",
		"method":      "POST",
		"description": "Login a user",
		"required_fields": map[string]string{
			"phone_number": "User's phone number (string)",
			"password":     "User's password (string)",
		},
		"example_request": map[string]string{
			"phone_number": "+1234567890",
			"password":     "securepassword",
		},
	})
}

// HandleLogoutInfo handles GET /api/auth/logout requests.
func (h *AuthHandler) HandleLogoutInfo(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, "Logout endpoint information", map[string]any{
		"endpoint":    "/api/auth/logout",
		"method":      "POST",
		"description": "Logout a user",
		"required_headers": map[string]string{
			"Authorization": "Bearer <token>",
		},
	})
}
