package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/good-pics/backend/internal/domain"
	"github.com/good-pics/backend/internal/middleware"
	"github.com/good-pics/backend/internal/usecase"
)

type Handler struct {
	authUsecase  *usecase.AuthUsecase
	userUsecase  *usecase.UserUsecase
	imageUsecase *usecase.ImageUsecase
	chatUsecase  *usecase.ChatUsecase
	cookies      *CookieWriter
}

func NewHandler(auth *usecase.AuthUsecase, users *usecase.UserUsecase, images *usecase.ImageUsecase, chat *usecase.ChatUsecase, cookies *CookieWriter) *Handler {
	return &Handler{
		authUsecase:  auth,
		userUsecase:  users,
		imageUsecase: images,
		chatUsecase:  chat,
		cookies:      cookies,
	}
}

// errorResponse is keyed "message" because that is the field the SPA reads
// from failure bodies.
type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// clientIP relies on the RealIP middleware having rewritten RemoteAddr when
// the request came through a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseDate accepts "2006-01-02" and RFC3339, matching what the SPA sends.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// Auth handlers

type registerRequest struct {
	UserName           string `json:"userName"`
	UserLastname       string `json:"userLastname"`
	UserEmail          string `json:"userEmail"`
	UsersPassword      string `json:"usersPassword"`
	UserBirthdate      string `json:"userBirthdate"`
	UserAcceptedPolicy string `json:"userAcceptedPolicy"`
	UserContentFilter  string `json:"userContentFilter"`
}

type sessionResponse struct {
	Message string      `json:"message"`
	User    interface{} `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserName == "" || req.UserLastname == "" || req.UserEmail == "" || req.UsersPassword == "" {
		writeError(w, http.StatusBadRequest, "Name, lastname, email and password are required")
		return
	}
	if len(req.UsersPassword) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	birthdate, err := parseDate(req.UserBirthdate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid birthdate")
		return
	}
	acceptedPolicy, err := parseDate(req.UserAcceptedPolicy)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy acceptance date")
		return
	}

	user, err := h.authUsecase.Register(usecase.RegisterInput{
		Name:           req.UserName,
		Lastname:       req.UserLastname,
		Email:          req.UserEmail,
		Password:       req.UsersPassword,
		Birthdate:      birthdate,
		AcceptedPolicy: acceptedPolicy,
		ContentFilter:  req.UserContentFilter,
	})
	if errors.Is(err, usecase.ErrEmailExists) {
		writeError(w, http.StatusConflict, "Email already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{Message: "User registered successfully", User: user})
}

type loginRequest struct {
	UserEmail     string `json:"userEmail"`
	UsersPassword string `json:"usersPassword"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, tokens, err := h.authUsecase.Login(req.UserEmail, req.UsersPassword)
	if errors.Is(err, usecase.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	h.authUsecase.RecordSessionEvent(user.ID, domain.EventLogin, clientIP(r), r.UserAgent())

	// Tokens travel only in cookies; the body carries the identity.
	h.cookies.SetSession(w, tokens)
	writeJSON(w, http.StatusOK, sessionResponse{Message: "Login successful", User: user})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "No refresh token provided")
		return
	}

	user, tokens, err := h.authUsecase.Refresh(cookie.Value)
	if errors.Is(err, usecase.ErrInvalidSession) {
		writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to refresh tokens")
		return
	}

	h.authUsecase.RecordSessionEvent(user.ID, domain.EventRefresh, clientIP(r), r.UserAgent())

	h.cookies.SetSession(w, tokens)
	writeJSON(w, http.StatusOK, sessionResponse{Message: "Tokens refreshed successfully", User: user})
}

// Logout always succeeds: the refresh token is revoked when it resolves to a
// session, and both cookies are cleared either way.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		if userID, ok := h.authUsecase.Logout(cookie.Value); ok {
			h.authUsecase.RecordSessionEvent(userID, domain.EventLogout, clientIP(r), r.UserAgent())
		}
	}

	h.cookies.ClearSession(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Session audit handlers

func (h *Handler) SessionEvents(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	events, total, err := h.authUsecase.SessionEvents(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list session events")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"total":  total,
	})
}

func (h *Handler) MySessionEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	events, err := h.authUsecase.UserSessionEvents(userID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list session events")
		return
	}

	writeJSON(w, http.StatusOK, events)
}

// User handlers

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.userUsecase.GetByID(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := h.userUsecase.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, total, err := h.userUsecase.ListAll(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"total": total,
	})
}

type updateUserRequest struct {
	UserName           *string `json:"userName"`
	UserLastname       *string `json:"userLastname"`
	UserBirthdate      *string `json:"userBirthdate"`
	UserContentFilter  *string `json:"userContentFilter"`
	UserAcceptedPolicy *string `json:"userAcceptedPolicy"`
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if userID != id {
		writeError(w, http.StatusNotFound, "You can only update your own profile")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := usecase.UpdateUserInput{
		Name:          req.UserName,
		Lastname:      req.UserLastname,
		ContentFilter: req.UserContentFilter,
	}
	if req.UserBirthdate != nil {
		birthdate, err := parseDate(*req.UserBirthdate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid birthdate")
			return
		}
		input.Birthdate = &birthdate
	}
	if req.UserAcceptedPolicy != nil {
		acceptedPolicy, err := parseDate(*req.UserAcceptedPolicy)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid policy acceptance date")
			return
		}
		input.AcceptedPolicy = &acceptedPolicy
	}

	user, err := h.userUsecase.Update(id, input)
	if errors.Is(err, usecase.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if userID != id {
		writeError(w, http.StatusNotFound, "You can only delete your own account")
		return
	}

	if err := h.userUsecase.Delete(id); err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// Image generation handlers

type generateImageRequest struct {
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	N      int    `json:"n"`
	Theme  string `json:"theme"`
}

func (req *generateImageRequest) validate() error {
	if req.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}
	switch req.Size {
	case "", "1024x1024", "1792x1024", "1024x1792":
	default:
		return fmt.Errorf("size must be 1024x1024, 1792x1024 or 1024x1792")
	}
	if req.N < 0 || req.N > 10 {
		return fmt.Errorf("n must be between 1 and 10")
	}
	return nil
}

func (h *Handler) GenerateAndSave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req generateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.imageUsecase.GenerateAndSave(userID, usecase.GenerateImageInput{
		Prompt: req.Prompt,
		Size:   req.Size,
		N:      req.N,
		Theme:  req.Theme,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate image")
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

func (h *Handler) GenerateFile(w http.ResponseWriter, r *http.Request) {
	var req generateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, filename, err := h.imageUsecase.GenerateFile(usecase.GenerateImageInput{
		Prompt: req.Prompt,
		Size:   req.Size,
		N:      req.N,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate image")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (h *Handler) FluxHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   "FLUX-1.1-pro",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Gallery handlers

func (h *Handler) MyImages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	images, err := h.imageUsecase.UserImages(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get images")
		return
	}

	writeJSON(w, http.StatusOK, images)
}

func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	imageID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Image not found")
		return
	}

	if err := h.imageUsecase.DeleteUserImage(imageID, userID); err != nil {
		if errors.Is(err, usecase.ErrImageNotFound) {
			writeError(w, http.StatusNotFound, "Image not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete image")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Image deleted successfully"})
}

// Chat handlers

type chatMessageRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

func (h *Handler) SendChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	response, err := h.chatUsecase.SendMessage(userID, req.Message, req.ConversationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": response})
}

func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	history, err := h.chatUsecase.History(userID, r.URL.Query().Get("conversationId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get chat history")
		return
	}

	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) ChatConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	conversations, err := h.chatUsecase.Conversations(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get conversations")
		return
	}

	writeJSON(w, http.StatusOK, conversations)
}

func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	conversationID := chi.URLParam(r, "conversationId")
	if err := h.chatUsecase.DeleteConversation(userID, conversationID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete conversation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation deleted successfully"})
}

// Chat settings handlers

func (h *Handler) GetChatSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	settings, err := h.chatUsecase.Settings(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get chat settings")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

type updateChatSettingsRequest struct {
	Model            *string  `json:"model"`
	SystemPrompt     *string  `json:"systemPrompt"`
	Temperature      *float64 `json:"temperature"`
	MaxTokens        *int     `json:"maxTokens"`
	TopP             *float64 `json:"topP"`
	TopK             *float64 `json:"topK"`
	FrequencyPenalty *float64 `json:"frequencyPenalty"`
	PresencePenalty  *float64 `json:"presencePenalty"`
}

func (h *Handler) UpdateChatSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updateChatSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.chatUsecase.UpdateSettings(userID, usecase.UpdateChatSettingsInput{
		Model:            req.Model,
		SystemPrompt:     req.SystemPrompt,
		Temperature:      req.Temperature,
		MaxTokens:        req.MaxTokens,
		TopP:             req.TopP,
		TopK:             req.TopK,
		FrequencyPenalty: req.FrequencyPenalty,
		PresencePenalty:  req.PresencePenalty,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update chat settings")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) DeleteChatSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.chatUsecase.DeleteSettings(userID); err != nil {
		if errors.Is(err, usecase.ErrSettingsNotFound) {
			writeError(w, http.StatusNotFound, "Chat settings not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete chat settings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat settings deleted successfully"})
}
