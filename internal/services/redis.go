package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smarttrans/smarttrans-backend/internal/config"
)

// NotificationEventsChannel is the pub/sub channel carrying every
// delivered notification.
const NotificationEventsChannel = "notifications:events"

// EventPublisher forwards notification events to Redis pub/sub so other
// processes can react to them. A publisher without a client is disabled.
type EventPublisher struct {
	client *redis.Client
}

// NewEventPublisher connects when REDIS_URL is set and returns a
// disabled publisher otherwise.
func NewEventPublisher(ctx context.Context, cfg config.RedisConfig) (*EventPublisher, error) {
	if cfg.URL == "" {
		return &EventPublisher{}, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &EventPublisher{client: client}, nil
}

func (p *EventPublisher) Enabled() bool {
	return p != nil && p.client != nil
}

func (p *EventPublisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.client.Close()
}

// NotificationEvent is the JSON payload published per notification.
type NotificationEvent struct {
	NotificationID uint   `json:"notification_id,omitempty"`
	UserID         uint   `json:"user_id"`
	Message        string `json:"message"`
	Timestamp      int64  `json:"timestamp"`
}

func newNotificationEvent(d Delivery, now time.Time) NotificationEvent {
	event := NotificationEvent{
		UserID:    d.Recipient.UserID,
		Message:   d.Message,
		Timestamp: now.Unix(),
	}
	if d.Notification != nil {
		event.NotificationID = d.Notification.ID
	}
	return event
}

func (p *EventPublisher) PublishNotification(ctx context.Context, event NotificationEvent) error {
	if !p.Enabled() {
		return fmt.Errorf("redis not configured")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, NotificationEventsChannel, data).Err()
}
