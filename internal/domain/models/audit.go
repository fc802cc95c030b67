package models

import (
	"time"

	"github.com/curelink/curelink/pkg/constants"
)

// AuditEvent is the record emitted for quota-relevant actions. Events carry
// the hashed address, never the raw one, and the identity token is safe to
// log because it is opaque and server-minted.
type AuditEvent struct {
	Type          constants.AuditEventType `json:"type"`
	Timestamp     time.Time                `json:"timestamp"`
	RequestID     string                   `json:"request_id,omitempty"`
	Token         string                   `json:"token,omitempty"`
	HashedAddress string                   `json:"hashed_address,omitempty"`
	Query         string                   `json:"query,omitempty"`
	Remaining     int                      `json:"remaining"`
}

// NewAuditEvent creates an event stamped with the current UTC time.
func NewAuditEvent(eventType constants.AuditEventType) AuditEvent {
	return AuditEvent{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}
