package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/greenroute/backend/internal/models"
)

// RedisSink publishes events as JSON on a pub/sub channel so out-of-process
// dashboards and notifiers can subscribe.
type RedisSink struct {
	Client  *redis.Client
	Channel string
}

func NewRedisSink(addr, password string, db int, channel string) *RedisSink {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	if channel == "" {
		channel = "dispatch.events"
	}
	return &RedisSink{Client: rdb, Channel: channel}
}

func (r *RedisSink) Publish(ctx context.Context, ev models.LifecycleEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := r.Client.Publish(ctx, r.Channel, b).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (r *RedisSink) Ping(ctx context.Context) error {
	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisSink) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}
