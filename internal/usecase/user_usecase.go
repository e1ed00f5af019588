package usecase

import (
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/good-pics/backend/internal/domain"
)

type UserUsecase struct {
	userRepo domain.UserRepository
}

func NewUserUsecase(userRepo domain.UserRepository) *UserUsecase {
	return &UserUsecase{userRepo: userRepo}
}

func (u *UserUsecase) GetByID(id uuid.UUID) (*domain.User, error) {
	return u.userRepo.GetByID(id)
}

func (u *UserUsecase) ListAll(limit, offset int) ([]*domain.User, int, error) {
	return u.userRepo.ListAll(limit, offset)
}

type UpdateUserInput struct {
	Name           *string
	Lastname       *string
	Birthdate      *time.Time
	ContentFilter  *string
	AcceptedPolicy *time.Time
}

func (u *UserUsecase) Update(id uuid.UUID, input UpdateUserInput) (*domain.User, error) {
	user, err := u.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Lastname != nil {
		user.Lastname = *input.Lastname
	}
	if input.Birthdate != nil {
		user.Birthdate = *input.Birthdate
		user.IsAdult = ageAt(user.Birthdate, time.Now()) >= 18
	}
	if input.ContentFilter != nil {
		user.ContentFilter = *input.ContentFilter
	}
	if input.AcceptedPolicy != nil {
		user.AcceptedPolicy = *input.AcceptedPolicy
	}

	if err := u.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *UserUsecase) Delete(id uuid.UUID) error {
	user, err := u.userRepo.GetByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return u.userRepo.Delete(id)
}

// EnsureDefaultAdmin seeds the admin account on first start so a fresh
// deployment is reachable.
func (u *UserUsecase) EnsureDefaultAdmin(email, password string) error {
	existing, err := u.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &domain.User{
		Name:           "Admin",
		Lastname:       "System",
		Email:          email,
		PasswordHash:   string(hashedPassword),
		Birthdate:      time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Role:           domain.RoleAdmin,
		IsAdult:        true,
		ContentFilter:  "all",
		AcceptedPolicy: time.Now(),
	}
	if err := u.userRepo.Create(admin); err != nil {
		return err
	}

	log.Printf("default admin account created: %s", email)
	return nil
}
