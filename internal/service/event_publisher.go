package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lumora/learnhub-backend/internal/config"
	"github.com/lumora/learnhub-backend/internal/model"
)

// RedisEventPublisher pushes enrollment events onto the Redis queue consumed
// by the notification worker.
type RedisEventPublisher struct {
	rdb *redis.Client
}

// NewRedisEventPublisher creates a RedisEventPublisher.
func NewRedisEventPublisher(rdb *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{rdb: rdb}
}

func (p *RedisEventPublisher) Publish(ctx context.Context, event model.EnrollmentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.rdb.RPush(ctx, config.WorkerKey.EnrollmentEventsQueue, payload).Err(); err != nil {
		return fmt.Errorf("push event: %w", err)
	}
	return nil
}
