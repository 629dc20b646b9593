// internal/app/store/tokens/tokenstore.go
package tokenstore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fieldworks/turfhub/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

// ErrNotFound covers unknown, already-consumed, and expired tokens alike so
// callers cannot distinguish them.
var ErrNotFound = errors.New("token is invalid or has expired")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tokens")}
}

// Issue creates a token for the user and returns the raw secret. Only the
// sha256 of the secret is stored; the raw value goes into the email link and
// is never persisted.
func (s *Store) Issue(ctx context.Context, userID primitive.ObjectID, purpose string, ttl time.Duration) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	secret := hex.EncodeToString(raw)

	now := time.Now().UTC()
	_, err := s.c.InsertOne(ctx, models.Token{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		TokenHash: hashToken(secret),
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		return "", err
	}
	return secret, nil
}

// Consume validates the raw token and deletes it, returning the owning user.
// The delete makes every token single-use; the TTL index handles expiry at
// rest but the expires_at check here covers the lag before the sweep runs.
func (s *Store) Consume(ctx context.Context, secret, purpose string) (primitive.ObjectID, error) {
	var tok models.Token
	err := s.c.FindOneAndDelete(ctx, bson.M{
		"token_hash": hashToken(secret),
		"purpose":    purpose,
	}).Decode(&tok)
	if err == mongo.ErrNoDocuments {
		return primitive.NilObjectID, ErrNotFound
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	if time.Now().UTC().After(tok.ExpiresAt) {
		return primitive.NilObjectID, ErrNotFound
	}
	return tok.UserID, nil
}

// DeleteForUser invalidates all of a user's outstanding tokens for a purpose.
// Called when a password is reset so older emailed links stop working.
func (s *Store) DeleteForUser(ctx context.Context, userID primitive.ObjectID, purpose string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID, "purpose": purpose})
	return err
}

func hashToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
