package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/CG3-Media/dexo-activity/internal/render"
	"github.com/gorilla/mux"
)

// TokenCookieName is the cookie carrying the shared secret.
const TokenCookieName = "app_token"

// Authorized reports whether the request carries the shared secret, via
// either the auth cookie or an Authorization: Bearer header. An empty
// configured secret means nothing is ever authorized.
func Authorized(r *http.Request, secret string) bool {
	if secret == "" {
		return false
	}
	if c, err := r.Cookie(TokenCookieName); err == nil && tokenEqual(c.Value, secret) {
		return true
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return tokenEqual(token, secret)
	}
	return false
}

// RequirePage guards the HTML routes: unauthenticated browsers get the
// fixed locked page with a 401.
func RequirePage(secret string, renderer *render.Renderer) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Authorized(r, secret) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusUnauthorized)
				_ = renderer.LockedPage(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPI guards the JSON routes with a 401 body.
func RequireAPI(secret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Authorized(r, secret) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
