package betafeatures

import (
	"context"
	"fmt"
	"time"
)

// CountCacheTTL is how long cached per-feature user counts live. 30 minutes.
const CountCacheTTL = 1800 * time.Second

const countKeyPrefix = "betafeatures:usercounts:"

// countKey namespaces a feature's cache entry.
func countKey(feature string) string {
	return countKeyPrefix + feature
}

// Counter serves approximate per-feature adoption counts from a cache,
// falling back to the durable count store and keeping the two eventually
// consistent through a deduplicated background recount job.
type Counter struct {
	cache  Cache
	store  CountStore
	queue  JobQueue
	logger Logger
}

// NewCounter wires a Counter from its collaborators. The queue may be nil
// when no background recounting is wanted (tests, one-shot tools).
func NewCounter(cache Cache, store CountStore, queue JobQueue, logger Logger) *Counter {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &Counter{
		cache:  cache,
		store:  store,
		queue:  queue,
		logger: logger,
	}
}

// Counts returns the user count for each requested feature. The cache read is
// all or nothing: if any single key misses, every cached read is discarded
// and the whole key set falls through to the durable store. An incomplete
// count map is never returned.
func (c *Counter) Counts(ctx context.Context, features []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(features))

	for _, feature := range features {
		n, err := c.cache.Get(ctx, countKey(feature))
		if err != nil {
			// Stop trying, go read the durable store.
			return c.countsFromStore(ctx, features)
		}
		counts[feature] = n
	}

	return counts, nil
}

// countsFromStore reads durable counts for the entire requested set,
// repopulates the cache and schedules a background recount. Only one recount
// job is pending at a time; it gets queued at most once every thirty
// minutes, when the cache entries expire.
func (c *Counter) countsFromStore(ctx context.Context, features []string) (map[string]int64, error) {
	if c.queue != nil {
		queued, err := c.queue.Enqueue(ctx, RecountJob{Features: features})
		if err != nil {
			c.logger.Warn("failed to enqueue recount job", "error", err)
		} else if queued {
			c.logger.Debug("recount job queued", "features", len(features))
		}
	}

	stored, err := c.store.GetCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	for feature, n := range stored {
		if err := c.cache.Set(ctx, countKey(feature), n, CountCacheTTL); err != nil {
			c.logger.Warn("failed to cache user count", "feature", feature, "error", err)
		}
	}

	counts := make(map[string]int64, len(features))
	for _, feature := range features {
		if n, ok := stored[feature]; ok {
			counts[feature] = n
		}
	}
	return counts, nil
}

// AdjustOnSave nudges the cached counters after a user saved their options.
// For each declared feature whose enabled/disabled transition actually
// changed, the cached count is incremented on enable and decremented
// otherwise; unset to disabled is no transition at all. The adjustment is
// best effort and not serialized against refreshes: cache and durable store
// may drift until the next TTL expiry.
func (c *Counter) AdjustOnSave(ctx context.Context, features []string, oldOptions, newOptions map[string]OptionState) {
	for _, feature := range features {
		oldVal := oldOptions[feature]
		newVal := newOptions[feature]

		if oldVal == newVal || (oldVal == StateUnset && newVal == StateDisabled) {
			// Nothing changed, carry on.
			continue
		}

		key := countKey(feature)
		if newVal == StateEnabled {
			if _, err := c.cache.Incr(ctx, key); err != nil {
				c.logger.Debug("count increment skipped", "feature", feature, "error", err)
			}
		} else {
			if _, err := c.cache.Decr(ctx, key); err != nil {
				c.logger.Debug("count decrement skipped", "feature", feature, "error", err)
			}
		}
	}
}
