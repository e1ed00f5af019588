package usecase

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/good-pics/backend/internal/domain"
)

func TestUpdateUser(t *testing.T) {
	repo := newFakeUserRepo()
	u := NewUserUsecase(repo)
	seeded := seedUser(t, repo, "alice@example.com", "Passw0rd!")
	seeded.IsAdult = true

	name := "Alicia"
	birthdate := time.Now().AddDate(-16, 0, 0)
	updated, err := u.Update(seeded.ID, UpdateUserInput{
		Name:      &name,
		Birthdate: &birthdate,
	})
	require.NoError(t, err)

	assert.Equal(t, "Alicia", updated.Name)
	// Untouched fields keep their values.
	assert.Equal(t, "Martin", updated.Lastname)
	// Changing the birthdate recomputes the adult flag.
	assert.False(t, updated.IsAdult)
}

func TestUpdateUser_NotFound(t *testing.T) {
	u := NewUserUsecase(newFakeUserRepo())

	name := "Alicia"
	_, err := u.Update(uuid.New(), UpdateUserInput{Name: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	repo := newFakeUserRepo()
	u := NewUserUsecase(repo)
	seeded := seedUser(t, repo, "alice@example.com", "Passw0rd!")

	require.NoError(t, u.Delete(seeded.ID))
	assert.ErrorIs(t, u.Delete(seeded.ID), ErrUserNotFound)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	u := NewUserUsecase(repo)

	require.NoError(t, u.EnsureDefaultAdmin("admin@flux.com", "Admin@123456"))

	admin, err := repo.GetByEmail("admin@flux.com")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, "all", admin.ContentFilter)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("Admin@123456")))

	// A second run leaves the existing account alone.
	require.NoError(t, u.EnsureDefaultAdmin("admin@flux.com", "different-password"))
	again, err := repo.GetByEmail("admin@flux.com")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(again.PasswordHash), []byte("Admin@123456")))
}
