package topics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const seenKey = "robojobs:seen_topics"

// SeenStore remembers which topics have already been turned into videos
type SeenStore interface {
	Seen(ctx context.Context, topicID string) (bool, error)
	Mark(ctx context.Context, topicID string) error
}

// RedisSeen keeps produced topic IDs in a Redis set with a sliding TTL
type RedisSeen struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisSeen connects to Redis and verifies connectivity
func NewRedisSeen(addr, password string, ttl time.Duration) (*RedisSeen, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisSeen{client: client, key: seenKey, ttl: ttl}, nil
}

// Close closes the underlying Redis client
func (r *RedisSeen) Close() error {
	return r.client.Close()
}

func (r *RedisSeen) Seen(ctx context.Context, topicID string) (bool, error) {
	return r.client.SIsMember(ctx, r.key, topicID).Result()
}

// Mark adds the topic and resets the expiry so the set lives ttl past the
// most recent run
func (r *RedisSeen) Mark(ctx context.Context, topicID string) error {
	if err := r.client.SAdd(ctx, r.key, topicID).Err(); err != nil {
		return err
	}
	return r.client.Expire(ctx, r.key, r.ttl).Err()
}

// MemorySeen is the in-process fallback when Redis is not configured
type MemorySeen struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewMemorySeen() *MemorySeen {
	return &MemorySeen{ids: make(map[string]struct{})}
}

func (m *MemorySeen) Seen(_ context.Context, topicID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.ids[topicID]
	return ok, nil
}

func (m *MemorySeen) Mark(_ context.Context, topicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[topicID] = struct{}{}
	return nil
}
