package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/thermolog/thermolog/internal/server/services"
	"github.com/thermolog/thermolog/pkg/models"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login checks the password and, if it matches, emails a one-time code and
// returns a pending token. The pending token is only good for the verify
// step; protected routes reject it.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respondErrorJSON(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, expiresIn, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondErrorJSON(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		respondErrorJSON(w, http.StatusInternalServerError, "login failed")
		return
	}

	setSessionCookie(w, token, expiresIn)
	respondJSON(w, http.StatusOK, models.LoginResponse{
		Status:    "otp_required",
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Verify consumes the emailed code and swaps the pending token for a fresh
// authenticated one. A wrong code leaves the pending session intact so the
// user can retry until the code expires.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		respondUnauthorized(w, "missing session token")
		return
	}

	var req models.VerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newToken, session, err := h.authService.VerifyCode(r.Context(), token, strings.TrimSpace(req.Code))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			clearSessionCookie(w)
			respondUnauthorized(w, "no pending login for this token")
		case errors.Is(err, services.ErrCodeInvalid):
			respondErrorJSON(w, http.StatusUnauthorized, "invalid or expired code")
		default:
			respondErrorJSON(w, http.StatusInternalServerError, "verification failed")
		}
		return
	}

	setSessionCookie(w, newToken, 0)
	respondJSON(w, http.StatusOK, models.VerifyResponse{
		Status:   "success",
		Token:    newToken,
		Username: session.Username,
		Role:     session.Role,
	})
}

// Logout destroys the current session. Unknown tokens are treated as
// already logged out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.authService.Logout(r.Context(), token); err != nil {
			respondErrorJSON(w, http.StatusInternalServerError, "logout failed")
			return
		}
	}

	clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Me returns the session attached to the request, for dashboard bootstrap.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := GetSession(r)
	if session == nil {
		respondUnauthorized(w, "missing session")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"username": session.Username,
		"role":     session.Role,
	})
}

func setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
