package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/good-pics/backend/internal/config"
	"github.com/good-pics/backend/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidSession     = errors.New("invalid or expired refresh token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthUsecase struct {
	userRepo  domain.UserRepository
	tokenRepo domain.RefreshTokenRepository
	eventRepo domain.LoginEventRepository
	cfg       *config.JWTConfig
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Name           string
	Lastname       string
	Email          string
	Password       string
	Birthdate      time.Time
	AcceptedPolicy time.Time
	ContentFilter  string
}

func NewAuthUsecase(userRepo domain.UserRepository, tokenRepo domain.RefreshTokenRepository, eventRepo domain.LoginEventRepository, cfg *config.JWTConfig) *AuthUsecase {
	return &AuthUsecase{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		eventRepo: eventRepo,
		cfg:       cfg,
	}
}

func (u *AuthUsecase) Register(input RegisterInput) (*domain.User, error) {
	existing, err := u.userRepo.GetByEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	contentFilter := input.ContentFilter
	if contentFilter == "" {
		contentFilter = "safe"
	}

	user := &domain.User{
		Name:           input.Name,
		Lastname:       input.Lastname,
		Email:          input.Email,
		PasswordHash:   string(hashedPassword),
		Birthdate:      input.Birthdate,
		Role:           domain.RoleUser,
		IsAdult:        ageAt(input.Birthdate, time.Now()) >= 18,
		ContentFilter:  contentFilter,
		AcceptedPolicy: input.AcceptedPolicy,
	}

	if err := u.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login validates credentials and opens a fresh session. Unknown email and
// wrong password surface as the same error so callers cannot enumerate
// accounts.
func (u *AuthUsecase) Login(email, password string) (*domain.User, *TokenPair, error) {
	user, err := u.userRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	// Best effort: a failed timestamp update must not fail the login.
	if err := u.userRepo.UpdateLastLogin(user.ID); err != nil {
		log.Printf("failed to record last login for %s: %v", user.ID, err)
	}

	tokens, err := u.generateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

// Refresh trades a valid refresh token for a brand-new token pair. The
// presented token is consumed: issuing the replacement deletes every prior
// token for the user, so a second Refresh with the same value fails.
//
// Two concurrent calls with the same token can both pass validation before
// either rotation lands. Whichever write lands last wins and the other
// pair is orphaned, forcing that client to log in again. Accepted race;
// there is no distributed lock here.
func (u *AuthUsecase) Refresh(refreshToken string) (*domain.User, *TokenPair, error) {
	stored, err := u.tokenRepo.GetByToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	if stored == nil {
		return nil, nil, ErrInvalidSession
	}

	if stored.ExpiresAt.Before(time.Now()) {
		// Lazy expiry: drop the record on the way out.
		if err := u.tokenRepo.DeleteByToken(refreshToken); err != nil {
			log.Printf("failed to delete expired refresh token: %v", err)
		}
		return nil, nil, ErrInvalidSession
	}

	user, err := u.userRepo.GetByID(stored.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidSession
	}

	tokens, err := u.generateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

// Logout revokes the session behind the presented refresh token and reports
// which user it belonged to. It is deliberately best-effort: an absent,
// unknown or already-revoked token is not an error, and any store failure is
// swallowed after logging. Access tokens already issued stay valid until
// their own expiry.
func (u *AuthUsecase) Logout(refreshToken string) (uuid.UUID, bool) {
	if refreshToken == "" {
		return uuid.Nil, false
	}

	stored, err := u.tokenRepo.GetByToken(refreshToken)
	if err != nil {
		log.Printf("logout: failed to look up refresh token: %v", err)
		return uuid.Nil, false
	}
	if stored == nil {
		return uuid.Nil, false
	}

	if err := u.tokenRepo.RevokeAllForUser(stored.UserID); err != nil {
		log.Printf("logout: failed to revoke refresh tokens: %v", err)
	}
	return stored.UserID, true
}

// RecordSessionEvent appends to the session audit trail. Failures are logged
// and dropped; auditing never blocks the session flow itself.
func (u *AuthUsecase) RecordSessionEvent(userID uuid.UUID, eventType, ip, userAgent string) {
	if u.eventRepo == nil {
		return
	}
	event := &domain.LoginEvent{
		UserID:    userID,
		EventType: eventType,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := u.eventRepo.Create(event); err != nil {
		log.Printf("failed to record %s event for %s: %v", eventType, userID, err)
	}
}

func (u *AuthUsecase) SessionEvents(limit, offset int) ([]*domain.LoginEvent, int, error) {
	return u.eventRepo.ListRecent(limit, offset)
}

func (u *AuthUsecase) UserSessionEvents(userID uuid.UUID, limit, offset int) ([]*domain.LoginEvent, error) {
	return u.eventRepo.ListByUser(userID, limit, offset)
}

// VerifyAccessToken checks signature and expiry only. There is no store
// lookup, so a revoked session's access token keeps working until it
// expires on its own.
func (u *AuthUsecase) VerifyAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(u.cfg.Secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

func (u *AuthUsecase) GetUserByID(id uuid.UUID) (*domain.User, error) {
	return u.userRepo.GetByID(id)
}

func (u *AuthUsecase) generateTokenPair(user *domain.User) (*TokenPair, error) {
	expiresAt := time.Now().Add(u.cfg.AccessExpiry)
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.ID.String(),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString([]byte(u.cfg.Secret))
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	// Issue supersedes every prior token for this user in one transaction,
	// which both enforces the single-active-token invariant and consumes
	// the token a Refresh call was made with.
	stored := &domain.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(u.cfg.RefreshExpiry),
	}
	if err := u.tokenRepo.Issue(stored); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt.Unix(),
	}, nil
}

// generateRefreshToken returns 64 random bytes hex-encoded, the same shape
// the frontend has always received.
func generateRefreshToken() (string, error) {
	buf := make([]byte, 64)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func ageAt(birthdate, now time.Time) int {
	age := now.Year() - birthdate.Year()
	if now.Month() < birthdate.Month() ||
		(now.Month() == birthdate.Month() && now.Day() < birthdate.Day()) {
		age--
	}
	return age
}
