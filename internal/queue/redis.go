package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "orderflow:reconcile"

// Redis is a task queue on a Redis list shared by every process. Producers
// LPUSH and consumers BRPOP, so tasks are handed out in FIFO order.
type Redis struct {
	client *redis.Client
	key    string
	block  time.Duration
}

func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}

	return &Redis{
		client: client,
		key:    key,
		block:  time.Second,
	}
}

func (r *Redis) Enqueue(ctx context.Context, task domain.ReconcileTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := r.client.LPush(ctx, r.key, payload).Err(); err != nil {
		return fmt.Errorf("redis lpush failed: %w", err)
	}

	return nil
}

// Dequeue blocks in short BRPOP rounds so that ctx cancellation is noticed
// promptly.
func (r *Redis) Dequeue(ctx context.Context) (domain.ReconcileTask, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.ReconcileTask{}, err
		}

		res, err := r.client.BRPop(ctx, r.block, r.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domain.ReconcileTask{}, ctxErr
			}
			return domain.ReconcileTask{}, fmt.Errorf("redis brpop failed: %w", err)
		}

		// res is [key, value]
		var task domain.ReconcileTask
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			return domain.ReconcileTask{}, fmt.Errorf("json.Unmarshal: %w", err)
		}

		return task, nil
	}
}
