package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AnonymousIdentity is the durable pseudo-identity of an unauthenticated
// visitor, keyed by a server-minted token carried in an HTTP-only cookie.
type AnonymousIdentity struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Token       string     `gorm:"uniqueIndex;size:64;not null"`
	SearchCount int        `gorm:"not null;default:0"`
	LastSearchAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName sets the storage table for gorm.
func (AnonymousIdentity) TableName() string {
	return "anonymous_identities"
}

// NewAnonymousIdentity mints a fresh identity with a cryptographically
// random token and a zero search count.
func NewAnonymousIdentity() (*AnonymousIdentity, error) {
	token, err := MintToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &AnonymousIdentity{
		ID:          uuid.New(),
		Token:       token,
		SearchCount: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MintToken generates an opaque 256-bit random token, hex encoded.
func MintToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate identity token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
