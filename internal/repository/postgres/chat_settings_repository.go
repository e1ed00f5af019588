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

type ChatSettingsRepository struct {
	db *pgxpool.Pool
}

func NewChatSettingsRepository(db *pgxpool.Pool) *ChatSettingsRepository {
	return &ChatSettingsRepository{db: db}
}

const chatSettingsColumns = `id, user_id, model, system_prompt, temperature, max_tokens, top_p, top_k, frequency_penalty, presence_penalty, created_at, updated_at`

func scanChatSettings(row pgx.Row) (*domain.ChatSettings, error) {
	s := &domain.ChatSettings{}
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Model,
		&s.SystemPrompt,
		&s.Temperature,
		&s.MaxTokens,
		&s.TopP,
		&s.TopK,
		&s.FrequencyPenalty,
		&s.PresencePenalty,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *ChatSettingsRepository) Create(settings *domain.ChatSettings) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO chat_settings (id, user_id, model, system_prompt, temperature, max_tokens, top_p, top_k, frequency_penalty, presence_penalty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	if settings.ID == uuid.Nil {
		settings.ID = uuid.New()
	}
	now := time.Now()
	settings.CreatedAt = now
	settings.UpdatedAt = now

	_, err := r.db.Exec(ctx, query,
		settings.ID,
		settings.UserID,
		settings.Model,
		settings.SystemPrompt,
		settings.Temperature,
		settings.MaxTokens,
		settings.TopP,
		settings.TopK,
		settings.FrequencyPenalty,
		settings.PresencePenalty,
		settings.CreatedAt,
		settings.UpdatedAt,
	)
	return err
}

func (r *ChatSettingsRepository) GetByUserID(userID uuid.UUID) (*domain.ChatSettings, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `SELECT ` + chatSettingsColumns + ` FROM chat_settings WHERE user_id = $1`
	return scanChatSettings(r.db.QueryRow(ctx, query, userID))
}

func (r *ChatSettingsRepository) Update(settings *domain.ChatSettings) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		UPDATE chat_settings SET model = $2, system_prompt = $3, temperature = $4, max_tokens = $5, top_p = $6, top_k = $7, frequency_penalty = $8, presence_penalty = $9, updated_at = $10
		WHERE user_id = $1
	`

	settings.UpdatedAt = time.Now()
	_, err := r.db.Exec(ctx, query,
		settings.UserID,
		settings.Model,
		settings.SystemPrompt,
		settings.Temperature,
		settings.MaxTokens,
		settings.TopP,
		settings.TopK,
		settings.FrequencyPenalty,
		settings.PresencePenalty,
		settings.UpdatedAt,
	)
	return err
}

func (r *ChatSettingsRepository) Delete(userID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `DELETE FROM chat_settings WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
