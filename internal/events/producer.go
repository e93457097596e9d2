// Package events publishes batch-completion events to Kafka so downstream
// consumers (dashboards, alerting) can react to finished refreshes and
// scans. Publishing is best-effort: failures are logged, never propagated
// into the batch result.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer handles producing messages to Kafka topics
type Producer struct {
	writers map[string]*kafka.Writer
	brokers []string
	logger  *zap.Logger
}

// RefreshCompletedEvent is published when an indicator refresh batch ends
type RefreshCompletedEvent struct {
	AssetTypes []string  `json:"asset_types"`
	Rows       int       `json:"rows"`
	Failed     int       `json:"failed"`
	FinishedAt time.Time `json:"finished_at"`
}

// ScanCompletedEvent is published when a scanner run ends
type ScanCompletedEvent struct {
	Scanner    string    `json:"scanner"`
	AssetType  string    `json:"asset_type"`
	ScanDate   string    `json:"scan_date,omitempty"`
	Signals    int       `json:"signals"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewProducer creates a new Kafka producer. Returns nil when no brokers are
// configured; a nil producer silently drops every publish.
func NewProducer(brokers string, logger *zap.Logger) *Producer {
	if strings.TrimSpace(brokers) == "" {
		return nil
	}
	return &Producer{
		writers: make(map[string]*kafka.Writer),
		brokers: strings.Split(brokers, ","),
		logger:  logger,
	}
}

// getWriter returns a Kafka writer for the specified topic
func (p *Producer) getWriter(topic string) *kafka.Writer {
	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	p.writers[topic] = writer
	return writer
}

// Publish sends an event to a Kafka topic, keyed for per-asset ordering
func (p *Producer) Publish(ctx context.Context, topic, key string, event interface{}) {
	if p == nil {
		return
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event",
			zap.String("topic", topic),
			zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.getWriter(topic).WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("topic", topic),
			zap.Error(err))
	}
}

// Close closes all topic writers
func (p *Producer) Close() {
	if p == nil {
		return
	}
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			p.logger.Warn("Failed to close Kafka writer",
				zap.String("topic", topic),
				zap.Error(err))
		}
	}
}
