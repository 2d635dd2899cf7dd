package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/docentdesk/booking/internal/domain"
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func eventKey(id uuid.UUID) string {
	return "event:" + id.String()
}

// GetEvent returns the cached event detail, or nil on a miss. Cache errors
// degrade to a miss.
func (c *Cache) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	val, err := c.client.Get(ctx, eventKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e domain.Event
	if err := json.Unmarshal(val, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Cache) SetEvent(ctx context.Context, e *domain.Event, ttl time.Duration) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, eventKey(e.ID), data, ttl).Err()
}

// InvalidateEvent drops the cached detail after any event mutation,
// including seat ledger movements.
func (c *Cache) InvalidateEvent(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, eventKey(id)).Err()
}
