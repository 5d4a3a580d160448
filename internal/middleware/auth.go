package middleware

import (
	"net/http"
	"strings"

	"github.com/templui/storyloom/internal/ctxkeys"
	"github.com/templui/storyloom/internal/render"
	"github.com/templui/storyloom/internal/service"
)

// AuthMiddleware reads a JWT from the auth cookie or an Authorization bearer
// header and adds the user to the context if it is valid.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := requestToken(r)
			if token == "" {
				// No credentials, continue as guest
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.UserFromToken(r.Context(), token)
			if err != nil {
				// Invalid or stale token, clear cookie and continue as guest
				if fromCookie {
					authService.ClearJWTCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestToken prefers the bearer header over the cookie.
func requestToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token), false
	}

	cookie, err := r.Cookie(service.AuthCookieName)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

// RequireAuth rejects guests with 401.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			render.Message(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireGuest rejects requests that already carry a valid session.
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) != nil {
			render.Message(w, r, http.StatusConflict, "already signed in")
			return
		}
		next.ServeHTTP(w, r)
	}
}
