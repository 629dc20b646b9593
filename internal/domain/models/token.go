// internal/domain/models/token.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Token purposes.
const (
	TokenPurposeReset = "password_reset"
)

// Token is a hashed, time-bounded single-use token (password reset).
// Only the sha256 of the raw token is stored; ExpiresAt carries a TTL index.
type Token struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	TokenHash string             `bson:"token_hash" json:"-"`
	Purpose   string             `bson:"purpose" json:"purpose"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
