package audit

import (
	"context"

	"github.com/curelink/curelink/internal/domain/models"
	"github.com/curelink/curelink/internal/domain/service"
	"github.com/curelink/curelink/pkg/logger"
)

// logAuditService mirrors audit events to the structured log. Used when
// Kafka is not configured.
type logAuditService struct {
	logger logger.Logger
}

// NewLogAuditService creates a log-only audit service.
func NewLogAuditService(log logger.Logger) service.AuditService {
	return &logAuditService{logger: log.WithComponent("audit")}
}

func (s *logAuditService) LogEvent(ctx context.Context, event models.AuditEvent) error {
	s.logger.Info(ctx, "audit event",
		logger.String("event_type", string(event.Type)),
		logger.String("token", event.Token),
		logger.String("hashed_address", event.HashedAddress),
		logger.String("query", event.Query),
		logger.Int("remaining", event.Remaining),
	)
	return nil
}

func (s *logAuditService) Close() error {
	return nil
}
