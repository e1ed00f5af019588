package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             uuid.UUID  `json:"userId"`
	Name           string     `json:"userName"`
	Lastname       string     `json:"userLastname"`
	Email          string     `json:"userEmail"`
	PasswordHash   string     `json:"-"`
	Birthdate      time.Time  `json:"userBirthdate"`
	Role           string     `json:"userRole"`
	IsAdult        bool       `json:"userIsadult"`
	ContentFilter  string     `json:"userContentFilter"`
	AcceptedPolicy time.Time  `json:"userAcceptedPolicy"`
	LastLogin      *time.Time `json:"userLastlogin,omitempty"`
	CreatedAt      time.Time  `json:"userCreatedAt"`
	UpdatedAt      time.Time  `json:"userUpdatedAt"`
}

type UserRepository interface {
	Create(user *User) error
	GetByID(id uuid.UUID) (*User, error)
	GetByEmail(email string) (*User, error)
	ListAll(limit, offset int) ([]*User, int, error)
	Update(user *User) error
	Delete(id uuid.UUID) error
	UpdateLastLogin(id uuid.UUID) error
}
