// Package monitoring provides the observability implementations: the
// zap-backed logger, Prometheus metrics, and OpenTelemetry tracing setup.
package monitoring

import "time"

const shutdownTimeout = 5 * time.Second
