package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// TokenPurposeLogin is the only token purpose issued today. Future
// passwordless flows (email change, account deletion) reuse the collection
// with their own purpose value.
const TokenPurposeLogin = "login"

// AuthToken is a single-use magic-link credential. It expires after a short
// window, is claimed exactly once through the conditional MarkUsed write, and
// is eventually reaped by the TTL index on expires_at.
type AuthToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string        `bson:"email" json:"email"`
	Token     string        `bson:"token" json:"token"`
	Purpose   string        `bson:"purpose" json:"purpose"`
	ExpiresAt time.Time     `bson:"expires_at" json:"expires_at"`
	IsUsed    bool          `bson:"is_used" json:"is_used"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}

// IsExpired reports whether the token's validity window has passed. Expiry is
// checked before the claim so an expired token is never marked used.
func (t *AuthToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
