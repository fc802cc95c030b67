package repository

import (
	"context"

	"github.com/curelink/curelink/internal/domain/models"
)

// NetworkOriginRepository tracks per-hashed-address usage counters.
type NetworkOriginRepository interface {
	// FindByHash returns the record for a hashed address, or (nil, nil)
	// when none exists. Absence means zero prior searches.
	FindByHash(ctx context.Context, hashedAddress string) (*models.NetworkOriginRecord, error)

	// UpsertIncrement creates the record with count 1 if absent, otherwise
	// atomically increments the counter and updates the timestamp. Safe
	// under concurrent increments for the same hashed address.
	UpsertIncrement(ctx context.Context, hashedAddress string) (*models.NetworkOriginRecord, error)
}
