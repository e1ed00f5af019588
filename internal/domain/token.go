package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the stored half of a session. The Token column holds the
// opaque credential itself; the short-lived access JWT is never persisted.
type RefreshToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	IsRevoked bool      `json:"is_revoked"`
	CreatedAt time.Time `json:"created_at"`
}

type RefreshTokenRepository interface {
	// Issue deletes every existing token for token.UserID and inserts the new
	// record in a single transaction, so at most one token is live per user.
	Issue(token *RefreshToken) error
	// GetByToken returns the non-revoked record matching the credential, or
	// (nil, nil) when no such record exists. Expiry is the caller's concern.
	GetByToken(token string) (*RefreshToken, error)
	DeleteByToken(token string) error
	RevokeAllForUser(userID uuid.UUID) error
	DeleteExpired() error
}
