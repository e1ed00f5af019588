package usecase

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/good-pics/backend/internal/domain"
	"github.com/good-pics/backend/pkg/groq"
)

type fakeChatRepo struct {
	chats []*domain.Chat
}

func (f *fakeChatRepo) Create(chat *domain.Chat) error {
	chat.ID = uuid.New()
	f.chats = append(f.chats, chat)
	return nil
}

func (f *fakeChatRepo) ListByUser(userID uuid.UUID, conversationID string) ([]*domain.Chat, error) {
	var out []*domain.Chat
	for _, c := range f.chats {
		if c.UserID == userID && (conversationID == "" || c.ConversationID == conversationID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChatRepo) ListConversations(userID uuid.UUID) ([]*domain.ConversationSummary, error) {
	seen := make(map[string]*domain.ConversationSummary)
	var out []*domain.ConversationSummary
	for _, c := range f.chats {
		if c.UserID != userID {
			continue
		}
		if s, ok := seen[c.ConversationID]; ok {
			s.MessageCount++
			continue
		}
		s := &domain.ConversationSummary{
			ID:           c.ConversationID,
			FirstMessage: c.Message,
			LastMessage:  c.Message,
			MessageCount: 1,
		}
		seen[c.ConversationID] = s
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeChatRepo) DeleteConversation(userID uuid.UUID, conversationID string) error {
	kept := f.chats[:0]
	for _, c := range f.chats {
		if c.UserID != userID || c.ConversationID != conversationID {
			kept = append(kept, c)
		}
	}
	f.chats = kept
	return nil
}

type fakeSettingsRepo struct {
	settings map[uuid.UUID]*domain.ChatSettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[uuid.UUID]*domain.ChatSettings)}
}

func (f *fakeSettingsRepo) Create(settings *domain.ChatSettings) error {
	settings.ID = uuid.New()
	f.settings[settings.UserID] = settings
	return nil
}

func (f *fakeSettingsRepo) GetByUserID(userID uuid.UUID) (*domain.ChatSettings, error) {
	return f.settings[userID], nil
}

func (f *fakeSettingsRepo) Update(settings *domain.ChatSettings) error {
	f.settings[settings.UserID] = settings
	return nil
}

func (f *fakeSettingsRepo) Delete(userID uuid.UUID) error {
	delete(f.settings, userID)
	return nil
}

type fakeCompleter struct {
	reply   string
	err     error
	lastReq *groq.CompletionRequest
}

func (f *fakeCompleter) Complete(req *groq.CompletionRequest) (string, error) {
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestSendMessage(t *testing.T) {
	chatRepo := &fakeChatRepo{}
	settingsRepo := newFakeSettingsRepo()
	completer := &fakeCompleter{reply: "Bonjour!"}
	u := NewChatUsecase(chatRepo, settingsRepo, completer)
	userID := uuid.New()

	response, err := u.SendMessage(userID, "Salut", "")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour!", response)

	// Default settings were created on first use.
	require.NotNil(t, completer.lastReq)
	assert.Equal(t, defaultChatModel, completer.lastReq.Model)
	assert.InDelta(t, defaultTemperature, completer.lastReq.Temperature, 0.001)
	require.Len(t, completer.lastReq.Messages, 1)
	assert.Equal(t, "user", completer.lastReq.Messages[0].Role)

	// The exchange lands in the default conversation.
	require.Len(t, chatRepo.chats, 1)
	assert.Equal(t, domain.DefaultConversationID, chatRepo.chats[0].ConversationID)
	assert.Equal(t, "Salut", chatRepo.chats[0].Message)
	assert.Equal(t, "Bonjour!", chatRepo.chats[0].Response)
}

func TestSendMessageWithSystemPrompt(t *testing.T) {
	chatRepo := &fakeChatRepo{}
	settingsRepo := newFakeSettingsRepo()
	completer := &fakeCompleter{reply: "ok"}
	u := NewChatUsecase(chatRepo, settingsRepo, completer)
	userID := uuid.New()

	prompt := "You are a helpful assistant"
	_, err := u.UpdateSettings(userID, UpdateChatSettingsInput{SystemPrompt: &prompt})
	require.NoError(t, err)

	_, err = u.SendMessage(userID, "Salut", "travel")
	require.NoError(t, err)

	require.Len(t, completer.lastReq.Messages, 2)
	assert.Equal(t, "system", completer.lastReq.Messages[0].Role)
	assert.Equal(t, prompt, completer.lastReq.Messages[0].Content)
	assert.Equal(t, "travel", chatRepo.chats[0].ConversationID)
}

func TestSendMessageCompleterFailure(t *testing.T) {
	chatRepo := &fakeChatRepo{}
	u := NewChatUsecase(chatRepo, newFakeSettingsRepo(), &fakeCompleter{err: errors.New("api down")})

	_, err := u.SendMessage(uuid.New(), "Salut", "")
	require.Error(t, err)
	// Nothing is persisted when the completion fails.
	assert.Empty(t, chatRepo.chats)
}

func TestConversationTitles(t *testing.T) {
	tests := []struct {
		name  string
		first string
		want  string
	}{
		{name: "empty", first: "", want: "Nouvelle conversation"},
		{name: "short", first: "Quel temps fait-il", want: "Quel temps fait-il"},
		{name: "six word cap", first: "un deux trois quatre cinq six sept huit", want: "un deux trois quatre cinq six"},
		{name: "char cap", first: "supercalifragilisticexpialidocious antidisestablishmentarianism floccinaucinihilipilification", want: "supercalifragilisticexpialidocious an..."},
		{name: "accented char cap", first: "éééééééééé éééééééééé éééééééééé éééééééééé éééééééééé", want: "éééééééééé éééééééééé éééééééééé éééé..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conversationTitle(tt.first)
			assert.Equal(t, tt.want, got)
			// Truncation must never split a rune.
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestConversations(t *testing.T) {
	chatRepo := &fakeChatRepo{}
	u := NewChatUsecase(chatRepo, newFakeSettingsRepo(), &fakeCompleter{reply: "ok"})
	userID := uuid.New()

	_, err := u.SendMessage(userID, "Salut tout le monde", "a")
	require.NoError(t, err)
	_, err = u.SendMessage(userID, "Encore moi", "a")
	require.NoError(t, err)
	_, err = u.SendMessage(userID, "Autre sujet", "b")
	require.NoError(t, err)

	summaries, err := u.Conversations(userID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Salut tout le monde", summaries[0].Title)
	assert.Equal(t, 2, summaries[0].MessageCount)
	assert.Equal(t, "Autre sujet", summaries[1].Title)
}

func TestUpdateSettingsPartial(t *testing.T) {
	u := NewChatUsecase(&fakeChatRepo{}, newFakeSettingsRepo(), &fakeCompleter{})
	userID := uuid.New()

	temp := 0.2
	updated, err := u.UpdateSettings(userID, UpdateChatSettingsInput{Temperature: &temp})
	require.NoError(t, err)

	// Only the named field changes; the rest keep their defaults.
	assert.InDelta(t, 0.2, updated.Temperature, 0.001)
	assert.Equal(t, defaultChatModel, updated.Model)
	assert.Equal(t, defaultMaxTokens, updated.MaxTokens)
}

func TestDeleteSettings(t *testing.T) {
	u := NewChatUsecase(&fakeChatRepo{}, newFakeSettingsRepo(), &fakeCompleter{})
	userID := uuid.New()

	// Nothing to delete yet.
	assert.ErrorIs(t, u.DeleteSettings(userID), ErrSettingsNotFound)

	_, err := u.Settings(userID)
	require.NoError(t, err)
	require.NoError(t, u.DeleteSettings(userID))
	assert.ErrorIs(t, u.DeleteSettings(userID), ErrSettingsNotFound)
}
