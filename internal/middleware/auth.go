package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/good-pics/backend/internal/usecase"
)

type contextKey string

const claimsKey contextKey = "claims"

// AccessTokenCookie is the cookie the SPA receives its access token in.
const AccessTokenCookie = "access_token"

// TokenExtractor pulls a candidate access token out of a request. Extractors
// run in order; the first non-empty result wins.
type TokenExtractor func(r *http.Request) string

func FromCookie(name string) TokenExtractor {
	return func(r *http.Request) string {
		cookie, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie.Value
	}
}

func FromBearerHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

type AuthMiddleware struct {
	authUsecase *usecase.AuthUsecase
	extractors  []TokenExtractor
}

// NewAuthMiddleware gates protected routes. Browser clients carry the token
// in the access_token cookie; API clients fall back to a Bearer header.
func NewAuthMiddleware(authUsecase *usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{
		authUsecase: authUsecase,
		extractors: []TokenExtractor{
			FromCookie(AccessTokenCookie),
			FromBearerHeader,
		},
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		for _, extract := range m.extractors {
			if token = extract(r); token != "" {
				break
			}
		}
		if token == "" {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		claims, err := m.authUsecase.VerifyAccessToken(token)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly must run after Authenticate.
func (m *AuthMiddleware) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		user, err := m.authUsecase.GetUserByID(userID)
		if err != nil || user == nil || user.Role != "admin" {
			http.Error(w, "Admin access required", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func GetClaims(ctx context.Context) (*usecase.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*usecase.Claims)
	return claims, ok
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	claims, ok := GetClaims(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return claims.UserID, true
}
