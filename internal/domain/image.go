package domain

import (
	"time"

	"github.com/google/uuid"
)

type Image struct {
	ID        uuid.UUID `json:"imageId"`
	UserID    uuid.UUID `json:"userId"`
	URL       string    `json:"imageUrl"`
	Prompt    string    `json:"imagePrompt"`
	Theme     string    `json:"imageTheme,omitempty"`
	Size      string    `json:"imageSize,omitempty"`
	CreatedAt time.Time `json:"imageCreatedAt"`
}

type ImageRepository interface {
	Create(image *Image) error
	GetByID(id uuid.UUID) (*Image, error)
	ListByUser(userID uuid.UUID) ([]*Image, error)
	Delete(id uuid.UUID) error
}
