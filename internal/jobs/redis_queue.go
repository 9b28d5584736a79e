package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultThumbnailQueue is the Redis list consumed by the thumbnail worker
const DefaultThumbnailQueue = "queue:thumbnails"

// RedisQueue pushes JSON job envelopes onto a Redis list. Workers pop from
// the other end, so jobs are consumed in FIFO order.
type RedisQueue struct {
	client redis.UniversalClient
	queue  string
}

// NewRedisQueue creates a producer for the named list
func NewRedisQueue(client redis.UniversalClient, queue string) (*RedisQueue, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client must not be nil")
	}
	if queue == "" {
		queue = DefaultThumbnailQueue
	}
	return &RedisQueue{client: client, queue: queue}, nil
}

// Enqueue pushes an already built job
func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %q: %w", job.Name, err)
	}

	if err := q.client.LPush(ctx, q.queue, data).Err(); err != nil {
		return fmt.Errorf("%w: job %q on queue %q: %v", ErrEnqueueFailed, job.Name, q.queue, err)
	}
	return nil
}

// EnqueueThumbnail submits a thumbnail job for an uploaded image
func (q *RedisQueue) EnqueueThumbnail(ctx context.Context, fileID, ownerID uuid.UUID) error {
	job, err := NewThumbnailJob(fileID, ownerID)
	if err != nil {
		return err
	}
	return q.Enqueue(ctx, job)
}
