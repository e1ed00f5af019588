package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/good-pics/backend/internal/config"
	"github.com/good-pics/backend/internal/domain"
	"github.com/good-pics/backend/internal/usecase"
)

type stubUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func (s *stubUserRepo) Create(user *domain.User) error { s.users[user.ID] = user; return nil }

func (s *stubUserRepo) GetByID(id uuid.UUID) (*domain.User, error) {
	return s.users[id], nil
}

func (s *stubUserRepo) GetByEmail(email string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUserRepo) ListAll(limit, offset int) ([]*domain.User, int, error) {
	return nil, 0, nil
}
func (s *stubUserRepo) Update(user *domain.User) error { return nil }
func (s *stubUserRepo) Delete(id uuid.UUID) error      { return nil }
func (s *stubUserRepo) UpdateLastLogin(id uuid.UUID) error { return nil }

type stubTokenRepo struct{}

func (s *stubTokenRepo) Issue(token *domain.RefreshToken) error { return nil }
func (s *stubTokenRepo) GetByToken(token string) (*domain.RefreshToken, error) {
	return nil, nil
}
func (s *stubTokenRepo) DeleteByToken(token string) error        { return nil }
func (s *stubTokenRepo) RevokeAllForUser(userID uuid.UUID) error { return nil }
func (s *stubTokenRepo) DeleteExpired() error                    { return nil }

func setupAuth(t *testing.T, role string) (*AuthMiddleware, string, uuid.UUID) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Role:         role,
	}

	authUsecase := usecase.NewAuthUsecase(
		&stubUserRepo{users: map[uuid.UUID]*domain.User{user.ID: user}},
		&stubTokenRepo{},
		nil,
		&config.JWTConfig{
			Secret:        "test-secret",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 7 * 24 * time.Hour,
		},
	)

	_, tokens, err := authUsecase.Login("alice@example.com", "Passw0rd!")
	require.NoError(t, err)

	return NewAuthMiddleware(authUsecase), tokens.AccessToken, user.ID
}

func TestFromCookie(t *testing.T) {
	extract := FromCookie(AccessTokenCookie)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, extract(r))

	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "tok"})
	assert.Equal(t, "tok", extract(r))
}

func TestFromBearerHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, FromBearerHeader(r))

	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Empty(t, FromBearerHeader(r))

	r.Header.Set("Authorization", "Bearer tok")
	assert.Equal(t, "tok", FromBearerHeader(r))
}

func TestAuthenticate(t *testing.T) {
	mw, accessToken, userID := setupAuth(t, domain.RoleUser)

	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, ok := GetUserID(r.Context())
		require.True(t, ok)
		assert.Equal(t, userID, gotID)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no token", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: accessToken})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+accessToken)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "garbage"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("cookie takes precedence over header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "garbage"})
		r.Header.Set("Authorization", "Bearer "+accessToken)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdminOnly(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("regular user is rejected", func(t *testing.T) {
		mw, accessToken, _ := setupAuth(t, domain.RoleUser)
		handler := mw.Authenticate(mw.AdminOnly(next))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: accessToken})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin passes", func(t *testing.T) {
		mw, accessToken, _ := setupAuth(t, domain.RoleAdmin)
		handler := mw.Authenticate(mw.AdminOnly(next))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: accessToken})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unauthenticated context", func(t *testing.T) {
		mw, _, _ := setupAuth(t, domain.RoleUser)
		handler := mw.AdminOnly(next)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
