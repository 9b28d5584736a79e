package jobs

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Recorder is a Dispatcher that keeps jobs in memory. Err, when set, is
// returned by every enqueue after the job is recorded.
type Recorder struct {
	mu   sync.Mutex
	jobs []Job
	Err  error
}

func (r *Recorder) EnqueueThumbnail(ctx context.Context, fileID, ownerID uuid.UUID) error {
	job, err := NewThumbnailJob(fileID, ownerID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
	return r.Err
}

// Jobs returns a copy of everything enqueued so far
func (r *Recorder) Jobs() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Job, len(r.jobs))
	copy(out, r.jobs)
	return out
}
