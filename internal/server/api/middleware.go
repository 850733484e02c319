package api

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/thermolog/thermolog/internal/server/storage"
	"github.com/thermolog/thermolog/pkg/models"
)

type contextKey string

const (
	sessionKey      contextKey = "session"
	sessionTokenKey contextKey = "sessionToken"
)

const sessionCookieName = "session_token"

// sessionToken extracts the opaque token from the Authorization header or,
// failing that, the session cookie.
func sessionToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// SessionMiddleware gates protected routes. Anonymous requests get a 401
// pointing back to login. A pending session presented here is torn down and
// also redirected to login: an incomplete second factor never grants
// access, and the stale pending state must not linger.
func SessionMiddleware(sessions *storage.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				respondUnauthorized(w, "missing session token")
				return
			}

			session, err := sessions.Get(r.Context(), token)
			if err != nil {
				respondErrorJSON(w, http.StatusInternalServerError, "failed to load session")
				return
			}
			if session == nil {
				respondUnauthorized(w, "invalid or expired session")
				return
			}
			if session.Pending {
				if err := sessions.Delete(r.Context(), token); err != nil {
					log.Printf("Failed to clear pending session: %v", err)
				}
				respondUnauthorized(w, "login not completed")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			ctx = context.WithValue(ctx, sessionTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware requires an authenticated admin session. Must run after
// SessionMiddleware.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := GetSession(r)
		if session == nil {
			respondUnauthorized(w, "missing session")
			return
		}
		if session.Role != models.RoleAdmin {
			respondErrorJSON(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetSession(r *http.Request) *models.Session {
	session, ok := r.Context().Value(sessionKey).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

func GetSessionToken(r *http.Request) string {
	token, ok := r.Context().Value(sessionTokenKey).(string)
	if !ok {
		return ""
	}
	return token
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusUnauthorized, models.ErrorResponse{
		Error:    http.StatusText(http.StatusUnauthorized),
		Message:  message,
		Redirect: "login",
	})
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
