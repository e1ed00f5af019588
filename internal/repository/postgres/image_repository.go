package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/good-pics/backend/internal/domain"
)

type ImageRepository struct {
	db *pgxpool.Pool
}

func NewImageRepository(db *pgxpool.Pool) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) Create(image *domain.Image) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO images (id, user_id, url, prompt, theme, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	image.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, query,
		image.ID,
		image.UserID,
		image.URL,
		image.Prompt,
		image.Theme,
		image.Size,
		image.CreatedAt,
	)
	return err
}

func (r *ImageRepository) GetByID(id uuid.UUID) (*domain.Image, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		SELECT id, user_id, url, prompt, theme, size, created_at
		FROM images WHERE id = $1
	`

	image := &domain.Image{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&image.ID,
		&image.UserID,
		&image.URL,
		&image.Prompt,
		&image.Theme,
		&image.Size,
		&image.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return image, nil
}

func (r *ImageRepository) ListByUser(userID uuid.UUID) ([]*domain.Image, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `
		SELECT id, user_id, url, prompt, theme, size, created_at
		FROM images WHERE user_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*domain.Image
	for rows.Next() {
		image := &domain.Image{}
		if err := rows.Scan(
			&image.ID,
			&image.UserID,
			&image.URL,
			&image.Prompt,
			&image.Theme,
			&image.Size,
			&image.CreatedAt,
		); err != nil {
			return nil, err
		}
		images = append(images, image)
	}

	return images, nil
}

func (r *ImageRepository) Delete(id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `DELETE FROM images WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
