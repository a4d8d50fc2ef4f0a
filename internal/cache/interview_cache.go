package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"interviewsim/internal/model"
)

// InterviewCache handles Redis operations for interview readiness metadata.
// The session bootstrap polls this every 2s, so it must not fall through to
// Mongo on every tick
type InterviewCache interface {
	SetMeta(ctx context.Context, meta *model.InterviewMeta) error
	GetMeta(ctx context.Context, id string) (*model.InterviewMeta, error)
	Delete(ctx context.Context, id string) error
}

type interviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewInterviewCache creates a new interview meta cache
func NewInterviewCache(client *redis.Client) InterviewCache {
	return &interviewCache{
		client: client,
		ttl:    24 * time.Hour, // Attempts expire after 24h
	}
}

func (c *interviewCache) key(id string) string {
	return fmt.Sprintf("interview:%s", id)
}

func (c *interviewCache) SetMeta(ctx context.Context, meta *model.InterviewMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(meta.ID), data, c.ttl).Err()
}

func (c *interviewCache) GetMeta(ctx context.Context, id string) (*model.InterviewMeta, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta model.InterviewMeta
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *interviewCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
