package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MessageCache keeps the last inbound message per sender so the agent can
// see one turn of context. It is a bounded side-cache (one key per sender,
// TTL-evicted), never a source of truth: callers treat every failure as a
// miss.
type MessageCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMessageCache(client *redis.Client, ttl time.Duration) *MessageCache {
	return &MessageCache{client: client, ttl: ttl}
}

func key(senderID int64) string {
	return fmt.Sprintf("aniphair:lastmsg:%d", senderID)
}

// SetLast records the sender's latest message, refreshing the TTL.
func (c *MessageCache) SetLast(ctx context.Context, senderID int64, text string) error {
	if err := c.client.Set(ctx, key(senderID), text, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache last message: %w", err)
	}
	return nil
}

// GetLast returns the sender's previous message, or "" when none is
// cached (or the entry expired).
func (c *MessageCache) GetLast(ctx context.Context, senderID int64) (string, error) {
	text, err := c.client.Get(ctx, key(senderID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("get last message: %w", err)
	}
	return text, nil
}
