// Package jobs hands background work to external workers through a queue.
// Only the producer side lives here; consumers run in their own process.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"filevault-backend/internal/models"

	"github.com/google/uuid"
)

// ThumbnailJobName identifies thumbnail generation jobs on the queue
const ThumbnailJobName = "thumbnail"

var (
	ErrPayloadNil    = errors.New("payload cannot be nil")
	ErrInvalidPolicy = errors.New("retry policy needs at least one attempt")
	ErrEnqueueFailed = errors.New("failed to enqueue job")
)

// RetryPolicy tells the worker how often to try a job and how long to wait
// between attempts.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// ThumbnailRetryPolicy is fixed: 3 attempts, 5 seconds apart.
var ThumbnailRetryPolicy = RetryPolicy{Attempts: 3, Delay: 5 * time.Second}

// Job is the envelope pushed onto the queue
type Job struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Payload      json.RawMessage `json:"payload"`
	Attempts     int             `json:"attempts"`
	RetryDelayMS int64           `json:"retry_delay_ms"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Policy returns the retry policy encoded in the envelope
func (j Job) Policy() RetryPolicy {
	return RetryPolicy{Attempts: j.Attempts, Delay: time.Duration(j.RetryDelayMS) * time.Millisecond}
}

// Dispatcher submits thumbnail jobs. Callers treat the call as advisory.
type Dispatcher interface {
	EnqueueThumbnail(ctx context.Context, fileID, ownerID uuid.UUID) error
}

// NewJob builds an envelope for payload
func NewJob(name string, payload any, policy RetryPolicy) (Job, error) {
	if payload == nil {
		return Job{}, ErrPayloadNil
	}
	if policy.Attempts < 1 {
		return Job{}, ErrInvalidPolicy
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("failed to marshal payload of type %T: %w", payload, err)
	}

	return Job{
		ID:           uuid.New(),
		Name:         name,
		Payload:      data,
		Attempts:     policy.Attempts,
		RetryDelayMS: policy.Delay.Milliseconds(),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// NewThumbnailJob builds the envelope for one image upload
func NewThumbnailJob(fileID, ownerID uuid.UUID) (Job, error) {
	return NewJob(ThumbnailJobName, models.ThumbnailJob{FileID: fileID, OwnerID: ownerID}, ThumbnailRetryPolicy)
}
