package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Notifier delivers a raised alert over one notification channel.
type Notifier interface {
	Notify(ctx context.Context, alert AlertEvent) error
}

// ConsoleNotifier logs the alert through the structured logger. It is the
// default channel and always available.
type ConsoleNotifier struct {
	logger *slog.Logger
}

func NewConsoleNotifier(logger *slog.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{logger: logger}
}

func (n *ConsoleNotifier) Notify(_ context.Context, alert AlertEvent) error {
	n.logger.Warn("WEATHER ALERT",
		"city", alert.City,
		"type", alert.AlertType,
		"severity", alert.Severity,
		"message", alert.Message,
	)
	return nil
}

// messageWriter abstracts kafka.Writer for tests.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier publishes alerts as JSON to a Kafka topic, keyed by city so
// alerts for one city stay on one partition. Broker hiccups are retried a few
// times before the delivery is given up.
type KafkaNotifier struct {
	writer messageWriter
	logger *slog.Logger
}

func NewKafkaNotifier(brokers []string, topic string, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		logger: logger,
	}
}

func (n *KafkaNotifier) Notify(ctx context.Context, alert AlertEvent) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("could not encode alert: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(alert.City),
		Value: payload,
	}
	return retryWithDelay(ctx, 3, 2*time.Second, func() error {
		return n.writer.WriteMessages(ctx, msg)
	})
}
