package models

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// NetworkOriginRecord carries the usage counter for one hashed network
// address. The raw address is never persisted; records exist only under
// their salted digest.
type NetworkOriginRecord struct {
	HashedAddress string
	SearchCount   int
	LastSearchAt  *time.Time
}

// HashAddress produces the one-way salted digest of a network address.
// Changing the salt re-keys every address to a fresh, unseen digest, which
// silently resets all origin counters. That is accepted operational
// behavior, not a bug.
func HashAddress(address, salt string) string {
	sum := sha256.Sum256([]byte(address + salt))
	return fmt.Sprintf("%x", sum)
}
