// Package service defines the domain service contracts of the quota
// subsystem. Implementations live under internal/application and
// internal/infrastructure.
package service

import (
	"context"

	"github.com/curelink/curelink/internal/domain/models"
)

// QuotaService combines the identity and network-origin signals into a
// single admission decision.
type QuotaService interface {
	// Evaluate returns the admission decision for the given identity token
	// and client address. It never returns an error: a failing signal
	// degrades according to the configured failure policy.
	Evaluate(ctx context.Context, token, clientAddr string) models.QuotaDecision

	// RecordSearch increments both counters after a search has been
	// dispatched. The two increments are independent; partial failure of
	// one never prevents the other. Calling it twice for one logical
	// search double-counts; exactly-once is owned by the caller.
	RecordSearch(ctx context.Context, token, clientAddr string) error
}

// ResolvedIdentity is the per-request outcome of identity resolution.
// An empty token means no anonymous identity applies, either because the
// caller is authenticated or because resolution degraded on store failure.
type ResolvedIdentity struct {
	Token  string
	Minted bool
}

// IdentityResolver establishes the anonymous identity for a request.
type IdentityResolver interface {
	// Resolve takes the inbound cookie token (empty when the cookie is
	// absent) and guarantees a matching store record for the returned
	// token, minting a replacement when the presented token is orphaned.
	// On store failure it degrades to an empty token rather than failing
	// the request.
	Resolve(ctx context.Context, cookieToken string) (token string, minted bool)
}

// AuditService records quota-relevant events for operational visibility.
type AuditService interface {
	LogEvent(ctx context.Context, event models.AuditEvent) error
	Close() error
}

// ScholarService queries the external scholarly-search providers and
// returns their merged results.
type ScholarService interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}
