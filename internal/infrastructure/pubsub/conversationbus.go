package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/dto"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/domain/shared/events"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
)

const conversationChannelPrefix = "fachwerk:conversation:"

// ConversationChannel is the Redis channel carrying one conversation's ledger.
func ConversationChannel(conversationID string) string {
	return conversationChannelPrefix + conversationID
}

// ConversationSubscriber streams live ledger entries of one conversation.
type ConversationSubscriber interface {
	// Subscribe blocks until ctx is done. ready is closed once the
	// subscription is active, so callers can replay history without a gap.
	Subscribe(ctx context.Context, conversationID string, ready chan<- struct{}, handler func(*dto.MessageDTO)) error
}

// RedisConversationBus publishes relayed ledger entries and lets WebSocket
// sessions follow them.
type RedisConversationBus struct {
	client *redis.Client
	logger logger.Interface
}

var _ events.EventHandler = (*RedisConversationBus)(nil)
var _ ConversationSubscriber = (*RedisConversationBus)(nil)

func NewRedisConversationBus(client *redis.Client, logger logger.Interface) *RedisConversationBus {
	return &RedisConversationBus{
		client: client,
		logger: logger,
	}
}

// Handle publishes a relayed Delivery. Other events are ignored.
func (b *RedisConversationBus) Handle(ctx context.Context, event events.DomainEvent) error {
	delivery, ok := event.(marketplace.Delivery)
	if !ok {
		return nil
	}
	return b.Publish(ctx, delivery.Message)
}

func (b *RedisConversationBus) Publish(ctx context.Context, m *marketplace.Message) error {
	msg, err := dto.ToMessageDTO(m)
	if err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger entry: %w", err)
	}

	channel := ConversationChannel(m.ConversationID())
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish ledger entry",
			"conversation_id", m.ConversationID(),
			"message_id", m.ID(),
			"error", err,
		)
		return fmt.Errorf("failed to publish ledger entry: %w", err)
	}

	b.logger.Debugw("ledger entry published",
		"conversation_id", m.ConversationID(),
		"message_id", m.ID(),
		"type", msg.Type,
	)
	return nil
}

func (b *RedisConversationBus) Subscribe(ctx context.Context, conversationID string, ready chan<- struct{}, handler func(*dto.MessageDTO)) error {
	channel := ConversationChannel(conversationID)
	pubsub := b.client.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel %s: %w", channel, err)
	}
	if ready != nil {
		close(ready)
	}

	ch := pubsub.Channel(redis.WithChannelHealthCheckInterval(30 * time.Second))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("conversation channel closed", "channel", channel)
				return nil
			}

			var entry dto.MessageDTO
			if err := json.Unmarshal([]byte(msg.Payload), &entry); err != nil {
				b.logger.Warnw("failed to unmarshal ledger entry",
					"channel", channel,
					"error", err,
				)
				continue
			}
			// Handlers run inline so entries reach the socket in ledger order.
			handler(&entry)
		}
	}
}
