package http

import (
	"net/http"
	"time"

	"github.com/good-pics/backend/internal/middleware"
	"github.com/good-pics/backend/internal/usecase"
)

const RefreshTokenCookie = "refresh_token"

// CookieWriter owns the session cookie policy: HttpOnly, SameSite=Lax,
// Secure in production, MaxAge matched to each token's TTL so the browser
// drops the cookie when the credential inside it dies.
type CookieWriter struct {
	accessMaxAge  time.Duration
	refreshMaxAge time.Duration
	secure        bool
}

func NewCookieWriter(accessMaxAge, refreshMaxAge time.Duration, secure bool) *CookieWriter {
	return &CookieWriter{
		accessMaxAge:  accessMaxAge,
		refreshMaxAge: refreshMaxAge,
		secure:        secure,
	}
}

// SetSession writes both token cookies. Called on login and on every refresh.
func (c *CookieWriter) SetSession(w http.ResponseWriter, tokens *usecase.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		MaxAge:   int(c.accessMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    tokens.RefreshToken,
		Path:     "/",
		MaxAge:   int(c.refreshMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSession expires both cookies regardless of whether a session existed.
func (c *CookieWriter) ClearSession(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
