package models

// QuotaDecision is the ephemeral per-request admission result. It is
// derived from the two persisted counters and never stored.
type QuotaDecision struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`

	// BindingSignal names the signal that produced the smaller remaining
	// count. Used for metrics attribution, not exposed on the wire.
	BindingSignal string `json:"-"`
}

// RemainingOf computes the remaining count for one signal, clamped at zero.
func RemainingOf(limit, used int) int {
	if used >= limit {
		return 0
	}
	return limit - used
}
