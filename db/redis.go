package db

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	RefreshQueueKey = "invsec:queue:refresh"
	LockKeyPrefix   = "invsec:lock:"
)

// ConnectRedis returns nil, nil when no URL is configured; Redis is optional.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Queue is a FIFO list of subject symbols waiting to be re-summarized.
type Queue struct {
	client *redis.Client
	key    string
}

func NewQueue(client *redis.Client, key string) *Queue {
	return &Queue{client: client, key: key}
}

func (q *Queue) Push(ctx context.Context, value string) error {
	return q.client.LPush(ctx, q.key, value).Err()
}

// Pop blocks up to timeout. An empty queue returns "", false, nil.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (string, bool, error) {
	result, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return result[1], true, nil
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
