package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/good-pics/backend/internal/domain"
)

type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(chat *domain.Chat) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO chats (id, user_id, message, response, conversation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if chat.ID == uuid.Nil {
		chat.ID = uuid.New()
	}
	if chat.ConversationID == "" {
		chat.ConversationID = domain.DefaultConversationID
	}
	chat.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, query,
		chat.ID,
		chat.UserID,
		chat.Message,
		chat.Response,
		chat.ConversationID,
		chat.CreatedAt,
	)
	return err
}

// ListByUser returns the user's chat history oldest-first. An empty
// conversationID returns all conversations mixed together.
func (r *ChatRepository) ListByUser(userID uuid.UUID, conversationID string) ([]*domain.Chat, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `
		SELECT id, user_id, message, response, conversation_id, created_at
		FROM chats WHERE user_id = $1
	`
	args := []interface{}{userID}
	if conversationID != "" {
		query += ` AND conversation_id = $2`
		args = append(args, conversationID)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*domain.Chat
	for rows.Next() {
		chat := &domain.Chat{}
		if err := rows.Scan(
			&chat.ID,
			&chat.UserID,
			&chat.Message,
			&chat.Response,
			&chat.ConversationID,
			&chat.CreatedAt,
		); err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}

	return chats, nil
}

// ListConversations aggregates the user's messages per conversation, newest
// conversation first. FirstMessage is filled so the caller can derive a
// display title; Title itself is left empty here.
func (r *ChatRepository) ListConversations(userID uuid.UUID) ([]*domain.ConversationSummary, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `
		SELECT c.conversation_id,
		       COUNT(*) AS message_count,
		       MAX(c.created_at) AS last_message_at,
		       (SELECT message FROM chats
		        WHERE user_id = $1 AND conversation_id = c.conversation_id
		        ORDER BY created_at DESC LIMIT 1) AS last_message,
		       (SELECT message FROM chats
		        WHERE user_id = $1 AND conversation_id = c.conversation_id
		        ORDER BY created_at ASC LIMIT 1) AS first_message
		FROM chats c
		WHERE c.user_id = $1
		GROUP BY c.conversation_id
		ORDER BY last_message_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*domain.ConversationSummary
	for rows.Next() {
		s := &domain.ConversationSummary{}
		if err := rows.Scan(
			&s.ID,
			&s.MessageCount,
			&s.CreatedAt,
			&s.LastMessage,
			&s.FirstMessage,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, nil
}

func (r *ChatRepository) DeleteConversation(userID uuid.UUID, conversationID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `DELETE FROM chats WHERE user_id = $1 AND conversation_id = $2`
	_, err := r.db.Exec(ctx, query, userID, conversationID)
	return err
}
