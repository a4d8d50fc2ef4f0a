package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DraftSnapshot is the live answer draft for the active question: the
// accumulated final transcript plus the volatile interim tail
type DraftSnapshot struct {
	QuestionID string    `json:"questionId"`
	Final      string    `json:"final"`
	Interim    string    `json:"interim"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// DraftCache keeps the in-progress transcript per interview so a reconnecting
// client can restore its display without replaying the whole session
type DraftCache interface {
	Set(ctx context.Context, interviewID string, snap *DraftSnapshot) error
	Get(ctx context.Context, interviewID string) (*DraftSnapshot, error)
	Clear(ctx context.Context, interviewID string) error
}

type draftCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftCache creates a new draft cache
func NewDraftCache(client *redis.Client) DraftCache {
	return &draftCache{
		client: client,
		ttl:    30 * time.Minute,
	}
}

func (c *draftCache) key(interviewID string) string {
	return fmt.Sprintf("interview:%s:draft", interviewID)
}

func (c *draftCache) Set(ctx context.Context, interviewID string, snap *DraftSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(interviewID), data, c.ttl).Err()
}

func (c *draftCache) Get(ctx context.Context, interviewID string) (*DraftSnapshot, error) {
	data, err := c.client.Get(ctx, c.key(interviewID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap DraftSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *draftCache) Clear(ctx context.Context, interviewID string) error {
	return c.client.Del(ctx, c.key(interviewID)).Err()
}
