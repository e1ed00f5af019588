package usecase

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/good-pics/backend/internal/domain"
	"github.com/good-pics/backend/pkg/groq"
)

var ErrSettingsNotFound = errors.New("chat settings not found")

const (
	defaultChatModel   = "openai/gpt-oss-20b"
	defaultTemperature = 0.7
	defaultMaxTokens   = 4096
)

// ChatCompleter abstracts the groq client so tests can stub completions.
type ChatCompleter interface {
	Complete(req *groq.CompletionRequest) (string, error)
}

type ChatUsecase struct {
	chatRepo     domain.ChatRepository
	settingsRepo domain.ChatSettingsRepository
	completer    ChatCompleter
}

func NewChatUsecase(chatRepo domain.ChatRepository, settingsRepo domain.ChatSettingsRepository, completer ChatCompleter) *ChatUsecase {
	return &ChatUsecase{
		chatRepo:     chatRepo,
		settingsRepo: settingsRepo,
		completer:    completer,
	}
}

// SendMessage forwards the user's message to the completion API using their
// stored settings and persists the exchange.
func (u *ChatUsecase) SendMessage(userID uuid.UUID, message, conversationID string) (string, error) {
	if conversationID == "" {
		conversationID = domain.DefaultConversationID
	}

	settings, err := u.findOrCreateSettings(userID)
	if err != nil {
		return "", err
	}

	var messages []groq.Message
	if settings.SystemPrompt != "" {
		messages = append(messages, groq.Message{Role: "system", Content: settings.SystemPrompt})
	}
	messages = append(messages, groq.Message{Role: "user", Content: message})

	response, err := u.completer.Complete(&groq.CompletionRequest{
		Model:            settings.Model,
		Messages:         messages,
		MaxTokens:        settings.MaxTokens,
		Temperature:      settings.Temperature,
		TopP:             settings.TopP,
		FrequencyPenalty: settings.FrequencyPenalty,
		PresencePenalty:  settings.PresencePenalty,
	})
	if err != nil {
		return "", err
	}

	chat := &domain.Chat{
		UserID:         userID,
		Message:        message,
		Response:       response,
		ConversationID: conversationID,
	}
	if err := u.chatRepo.Create(chat); err != nil {
		return "", err
	}

	return response, nil
}

func (u *ChatUsecase) History(userID uuid.UUID, conversationID string) ([]*domain.Chat, error) {
	return u.chatRepo.ListByUser(userID, conversationID)
}

// Conversations lists the user's conversations with display titles derived
// from each conversation's first message.
func (u *ChatUsecase) Conversations(userID uuid.UUID) ([]*domain.ConversationSummary, error) {
	summaries, err := u.chatRepo.ListConversations(userID)
	if err != nil {
		return nil, err
	}
	for _, s := range summaries {
		s.Title = conversationTitle(s.FirstMessage)
	}
	return summaries, nil
}

func (u *ChatUsecase) DeleteConversation(userID uuid.UUID, conversationID string) error {
	return u.chatRepo.DeleteConversation(userID, conversationID)
}

// conversationTitle takes the first six words of the opening message, capped
// at 40 characters.
func conversationTitle(firstMessage string) string {
	if firstMessage == "" {
		return "Nouvelle conversation"
	}
	words := strings.Fields(firstMessage)
	if len(words) > 6 {
		words = words[:6]
	}
	title := strings.Join(words, " ")
	// Truncate on runes, not bytes, so accented prompts stay valid UTF-8.
	if runes := []rune(title); len(runes) > 40 {
		title = string(runes[:37]) + "..."
	}
	return title
}

// Settings

type UpdateChatSettingsInput struct {
	Model            *string
	SystemPrompt     *string
	Temperature      *float64
	MaxTokens        *int
	TopP             *float64
	TopK             *float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
}

func (u *ChatUsecase) Settings(userID uuid.UUID) (*domain.ChatSettings, error) {
	return u.findOrCreateSettings(userID)
}

func (u *ChatUsecase) UpdateSettings(userID uuid.UUID, input UpdateChatSettingsInput) (*domain.ChatSettings, error) {
	settings, err := u.findOrCreateSettings(userID)
	if err != nil {
		return nil, err
	}

	if input.Model != nil {
		settings.Model = *input.Model
	}
	if input.SystemPrompt != nil {
		settings.SystemPrompt = *input.SystemPrompt
	}
	if input.Temperature != nil {
		settings.Temperature = *input.Temperature
	}
	if input.MaxTokens != nil {
		settings.MaxTokens = *input.MaxTokens
	}
	if input.TopP != nil {
		settings.TopP = *input.TopP
	}
	if input.TopK != nil {
		settings.TopK = *input.TopK
	}
	if input.FrequencyPenalty != nil {
		settings.FrequencyPenalty = *input.FrequencyPenalty
	}
	if input.PresencePenalty != nil {
		settings.PresencePenalty = *input.PresencePenalty
	}

	if err := u.settingsRepo.Update(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (u *ChatUsecase) DeleteSettings(userID uuid.UUID) error {
	settings, err := u.settingsRepo.GetByUserID(userID)
	if err != nil {
		return err
	}
	if settings == nil {
		return ErrSettingsNotFound
	}
	return u.settingsRepo.Delete(userID)
}

func (u *ChatUsecase) findOrCreateSettings(userID uuid.UUID) (*domain.ChatSettings, error) {
	settings, err := u.settingsRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	settings = &domain.ChatSettings{
		UserID:      userID,
		Model:       defaultChatModel,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
	if err := u.settingsRepo.Create(settings); err != nil {
		return nil, err
	}
	return settings, nil
}
