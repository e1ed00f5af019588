package domain

import (
	"time"

	"github.com/google/uuid"
)

const DefaultConversationID = "default"

type Chat struct {
	ID             uuid.UUID `json:"chatId"`
	UserID         uuid.UUID `json:"userId"`
	Message        string    `json:"chatMessage"`
	Response       string    `json:"chatResponse"`
	ConversationID string    `json:"conversationId"`
	CreatedAt      time.Time `json:"chatCreatedAt"`
}

// ConversationSummary is the per-conversation aggregate shown in the sidebar.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	FirstMessage string    `json:"-"`
	LastMessage  string    `json:"lastMessage"`
	CreatedAt    time.Time `json:"createdAt"`
	MessageCount int       `json:"messageCount"`
}

type ChatRepository interface {
	Create(chat *Chat) error
	ListByUser(userID uuid.UUID, conversationID string) ([]*Chat, error)
	ListConversations(userID uuid.UUID) ([]*ConversationSummary, error)
	DeleteConversation(userID uuid.UUID, conversationID string) error
}

type ChatSettings struct {
	ID               uuid.UUID `json:"settingsId"`
	UserID           uuid.UUID `json:"userId"`
	Model            string    `json:"model"`
	SystemPrompt     string    `json:"systemPrompt,omitempty"`
	Temperature      float64   `json:"temperature"`
	MaxTokens        int       `json:"maxTokens"`
	TopP             float64   `json:"topP"`
	TopK             float64   `json:"topK"`
	FrequencyPenalty float64   `json:"frequencyPenalty"`
	PresencePenalty  float64   `json:"presencePenalty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type ChatSettingsRepository interface {
	Create(settings *ChatSettings) error
	GetByUserID(userID uuid.UUID) (*ChatSettings, error)
	Update(settings *ChatSettings) error
	Delete(userID uuid.UUID) error
}
