package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/CG3-Media/dexo-activity/internal/config"
	"github.com/CG3-Media/dexo-activity/pkg/middleware"
)

// cookieMaxAge is one year, in seconds.
const cookieMaxAge = 365 * 24 * 60 * 60

type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// ExchangeTokenHandler handles GET /auth?token=. A matching token sets the
// auth cookie and redirects home; anything else is a 401 with no cookie.
func (h *AuthHandler) ExchangeTokenHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if h.cfg.AppToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(h.cfg.AppToken)) != 1 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}
