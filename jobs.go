package betafeatures

import (
	"context"
	"sync"
)

// JobTypeRecount identifies the recount job on the host queue.
const JobTypeRecount = "updateBetaFeaturesUserCounts"

// RecountJob asks the background worker to recompute the durable user counts
// for the given features from raw per-user option state.
type RecountJob struct {
	Features []string `json:"features"`
}

// Type returns the job type identifier.
func (RecountJob) Type() string {
	return JobTypeRecount
}

// MemoryJobQueue is an in-process JobQueue with single-flight semantics: at
// most one recount job is pending at any time, which is the only mutual
// exclusion the count refresh path relies on.
type MemoryJobQueue struct {
	mu      sync.Mutex
	pending *RecountJob
}

// NewMemoryJobQueue returns an empty queue.
func NewMemoryJobQueue() *MemoryJobQueue {
	return &MemoryJobQueue{}
}

// Enqueue queues the job unless an equivalent one is already pending. It
// reports whether the job was queued; a deduplicated enqueue is not an error.
func (q *MemoryJobQueue) Enqueue(_ context.Context, job RecountJob) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pending != nil {
		return false, nil
	}
	q.pending = &job
	return true, nil
}

// Pop removes and returns the pending job, if any.
func (q *MemoryJobQueue) Pop() (RecountJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pending == nil {
		return RecountJob{}, false
	}
	job := *q.pending
	q.pending = nil
	return job, true
}

// IsEmpty reports whether no job is pending.
func (q *MemoryJobQueue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending == nil
}
