package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/pna-map-generator/internal/config"
	"github.com/couchcryptid/pna-map-generator/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// ReportPublisher produces coverage reports to a Kafka topic.
// It implements pipeline.ReportPublisher.
type ReportPublisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewReportPublisher creates a Kafka producer for the configured report topic.
func NewReportPublisher(cfg *config.Config, logger *slog.Logger) *ReportPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaReportTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: 5 * time.Second,
	}
	return &ReportPublisher{writer: w, logger: logger}
}

// Publish serializes and writes one report. Reports for the same session share
// a key and therefore a partition.
func (p *ReportPublisher) Publish(ctx context.Context, report domain.CoverageReport) error {
	msg, err := serializeReport(report)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write coverage report: %w", err)
	}
	p.logger.Debug("coverage report published", "session_id", report.SessionID, "kind", report.Kind)
	return nil
}

func (p *ReportPublisher) Close() error {
	return p.writer.Close()
}

// serializeReport marshals a CoverageReport into a Kafka message.
func serializeReport(report domain.CoverageReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize coverage report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.SessionID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(report.Kind)},
			{Key: "generated_at", Value: []byte(report.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
