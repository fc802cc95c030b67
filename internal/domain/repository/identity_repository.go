package repository

import (
	"context"

	"github.com/curelink/curelink/internal/domain/models"
)

// IdentityRepository is the durable store of anonymous identities.
type IdentityRepository interface {
	// FindByToken returns the identity for a token, or (nil, nil) when no
	// record exists. A cookie-borne token with no record is treated by the
	// resolver as invalid and reissued, never resurrected.
	FindByToken(ctx context.Context, token string) (*models.AnonymousIdentity, error)

	// Create persists a freshly minted identity.
	Create(ctx context.Context, identity *models.AnonymousIdentity) error

	// IncrementSearchCount atomically adds one to the token's counter and
	// stamps the last-search time. The increment happens in the store, not
	// via application-level read-modify-write.
	IncrementSearchCount(ctx context.Context, token string) error
}
