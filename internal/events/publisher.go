// Package events publishes commit notifications so sibling services can
// react to confirmed mutations. Publishing is observational: it happens
// after the store commit and never gates it.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	TypeEventCreated = "event_created"
	TypeEventUpdated = "event_updated"
	TypeEventDeleted = "event_deleted"
)

// Notification is the envelope published for every confirmed commit.
type Notification struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Publisher sends notifications to a redis channel. A nil Publisher is valid
// and publishes nothing, so redis stays optional.
type Publisher struct {
	redis   *redis.Client
	channel string
	logger  *zap.Logger
}

func NewPublisher(redisClient *redis.Client, channel string, logger *zap.Logger) *Publisher {
	return &Publisher{
		redis:   redisClient,
		channel: channel,
		logger:  logger,
	}
}

// Publish sends one notification. Failures are logged and swallowed; the
// commit they describe already happened.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload interface{}) {
	if p == nil || p.redis == nil {
		return
	}

	notification := Notification{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}

	data, err := json.Marshal(notification)
	if err != nil {
		p.logger.Error("Failed to marshal notification", zap.Error(err))
		return
	}

	if err := p.redis.Publish(ctx, p.channel, data).Err(); err != nil {
		p.logger.Error("Failed to publish notification",
			zap.String("type", eventType), zap.Error(err))
		return
	}
	p.logger.Debug("Notification published", zap.String("type", eventType))
}

// EventPayload identifies the record a notification is about.
type EventPayload struct {
	EventID    string `json:"event_id"`
	OwnerEmail string `json:"owner_email,omitempty"`
}
