// Package audit implements the AuditService on Kafka. When no brokers are
// configured the service degrades to structured-log-only so the quota
// subsystem never depends on a broker being present.
package audit

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/curelink/curelink/internal/config"
	"github.com/curelink/curelink/internal/domain/models"
	"github.com/curelink/curelink/internal/domain/service"
	"github.com/curelink/curelink/pkg/logger"
)

// KafkaProducer is a Kafka-backed implementation of the AuditService.
type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

// NewKafkaProducer creates the audit producer for the configured brokers.
func NewKafkaProducer(cfg *config.KafkaConfig, log logger.Logger) service.AuditService {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.AuditTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return &KafkaProducer{
		writer: writer,
		logger: log.WithComponent("audit"),
	}
}

// LogEvent sends an audit event to the Kafka topic. Delivery failures are
// logged and returned; callers treat audit as best-effort.
func (p *KafkaProducer) LogEvent(ctx context.Context, event models.AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal audit event", err)
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Type),
		Value: payload,
	})
	if err != nil {
		p.logger.Error(ctx, "failed to write audit event to Kafka", err,
			logger.String("event_type", string(event.Type)),
		)
	}
	return err
}

// Close closes the underlying Kafka writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
