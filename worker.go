package betafeatures

import (
	"context"
	"time"
)

// RecountWorker drains the recount queue and rebuilds the durable per-feature
// user counts from the account store, repopulating the cache as it goes. The
// worker is idempotent: running the same job twice converges on the same
// counts.
type RecountWorker struct {
	logger   Logger
	queue    *MemoryJobQueue
	users    UserStore
	store    CountStore
	cache    Cache
	interval time.Duration
}

// NewRecountWorker creates a worker polling the queue at the given interval.
// The cache may be nil; counts are then only written durably.
func NewRecountWorker(logger Logger, queue *MemoryJobQueue, users UserStore, store CountStore, cache Cache, interval time.Duration) *RecountWorker {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	if queue == nil {
		panic("betafeatures: recount worker needs a queue")
	}
	if users == nil {
		panic("betafeatures: recount worker needs a user store")
	}
	if store == nil {
		panic("betafeatures: recount worker needs a count store")
	}
	if interval < time.Second {
		interval = 10 * time.Second
	}
	return &RecountWorker{
		logger:   logger,
		queue:    queue,
		users:    users,
		store:    store,
		cache:    cache,
		interval: interval,
	}
}

// Run polls the queue until the context is cancelled.
func (w *RecountWorker) Run(ctx context.Context) error {
	w.logger.Info("recount worker starting", "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("recount worker stopping")
			return nil
		case <-ticker.C:
			if err := w.ProcessOnce(ctx); err != nil {
				// Log and retry on the next tick.
				w.logger.Error("recount cycle failed", "error", err)
			}
		}
	}
}

// ProcessOnce handles at most one pending recount job.
func (w *RecountWorker) ProcessOnce(ctx context.Context) error {
	job, ok := w.queue.Pop()
	if !ok {
		return nil
	}

	start := time.Now()
	recounted := 0

	for _, feature := range job.Features {
		n, err := w.users.CountEnabled(ctx, feature)
		if err != nil {
			w.logger.Warn("failed to scan option state", "feature", feature, "error", err)
			continue
		}
		if err := w.store.UpsertCount(ctx, feature, n); err != nil {
			w.logger.Warn("failed to store user count", "feature", feature, "error", err)
			continue
		}
		if w.cache != nil {
			if err := w.cache.Set(ctx, countKey(feature), n, CountCacheTTL); err != nil {
				w.logger.Warn("failed to cache user count", "feature", feature, "error", err)
			}
		}
		recounted++
	}

	w.logger.Info("recount completed",
		"features", recounted,
		"duration", time.Since(start).String(),
	)
	return nil
}
