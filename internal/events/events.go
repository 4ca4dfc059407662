// Package events publishes price alert notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event
type EventType string

const (
	// EventTypePriceAlertTriggered is published when a quote reaches an alert's target
	EventTypePriceAlertTriggered EventType = "PRICE_ALERT_TRIGGERED"

	DefaultStream = "stream:price_alerts"
)

// PriceAlertTriggeredPayload represents the payload for PRICE_ALERT_TRIGGERED event
type PriceAlertTriggeredPayload struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	Timestamp    time.Time `json:"timestamp"`
	AlertID      string    `json:"alert_id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name,omitempty"`
	StoreID      string    `json:"store_id"`
	CurrentPrice float64   `json:"current_price"`
	TargetPrice  float64   `json:"target_price"`
	URL          string    `json:"url,omitempty"`
	Source       string    `json:"source"`
}

type Publisher interface {
	PublishPriceAlert(ctx context.Context, payload *PriceAlertTriggeredPayload) error
}

// RedisClient interface for Redis operations (for testing)
type RedisClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// RedisPublisher appends events to a Redis stream.
type RedisPublisher struct {
	redis  RedisClient
	stream string
	logger *slog.Logger
}

func NewRedisPublisher(client RedisClient, stream string, logger *slog.Logger) *RedisPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisPublisher{
		redis:  client,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

func (p *RedisPublisher) PublishPriceAlert(ctx context.Context, payload *PriceAlertTriggeredPayload) error {
	fill(payload)

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":         string(data),
			"type":         payload.EventType,
			"event_type":   payload.EventType,
			"timestamp":    fmt.Sprintf("%d", payload.Timestamp.UnixNano()),
			"event_id":     payload.EventID,
			"aggregate_id": payload.AlertID,
		},
	}

	id, err := p.redis.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	p.logger.Info("event published",
		"type", payload.EventType,
		"event_id", payload.EventID,
		"alert_id", payload.AlertID,
		"stream", p.stream,
		"stream_id", id,
	)
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.redis.Close()
}

// LogPublisher writes events to the log when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "event_publisher")}
}

func (p *LogPublisher) PublishPriceAlert(_ context.Context, payload *PriceAlertTriggeredPayload) error {
	fill(payload)
	p.logger.Info("price alert triggered",
		"event_id", payload.EventID,
		"alert_id", payload.AlertID,
		"product_id", payload.ProductID,
		"store_id", payload.StoreID,
		"current_price", payload.CurrentPrice,
		"target_price", payload.TargetPrice,
	)
	return nil
}

func fill(payload *PriceAlertTriggeredPayload) {
	if payload.EventID == "" {
		payload.EventID = uuid.New().String()
	}
	if payload.EventType == "" {
		payload.EventType = string(EventTypePriceAlertTriggered)
	}
	if payload.Timestamp.IsZero() {
		payload.Timestamp = time.Now()
	}
	if payload.Source == "" {
		payload.Source = "shoplens"
	}
}
