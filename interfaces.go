// Package betafeatures defines interfaces for the storage, caching and host
// collaborators used by the beta feature preference system.
package betafeatures

import (
	"context"
	"time"
)

// Cache defines the methods required of the count cache backend. Values are
// per-feature user counts; Incr and Decr must fail with ErrNotFound when the
// key is absent or expired, so missing entries are never backfilled one at a
// time.
type Cache interface {
	Get(ctx context.Context, key string) (int64, error)
	Set(ctx context.Context, key string, value int64, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Decr(ctx context.Context, key string) (int64, error)
	Close() error
}

// CountStore is the durable per-feature user count table. It is read in bulk
// and written only by the background recount worker.
type CountStore interface {
	// GetCounts returns every stored feature count.
	GetCounts(ctx context.Context) (map[string]int64, error)
	// UpsertCount replaces the stored count for one feature.
	UpsertCount(ctx context.Context, feature string, count int64) error
	Close() error
}

// UserStore is the host's account store, reduced to what this package needs:
// reading and writing named boolean-like options, and scanning enabled
// counts for the recount worker.
type UserStore interface {
	Options(ctx context.Context, userID string) (map[string]OptionState, error)
	SetOptions(ctx context.Context, userID string, options map[string]OptionState) error
	// CountEnabled returns the number of users with the feature enabled.
	CountEnabled(ctx context.Context, feature string) (int64, error)
}

// JobQueue is the host's deduplicating background job queue. Enqueue reports
// whether the job was actually queued; an equivalent pending job makes it a
// no-op.
type JobQueue interface {
	Enqueue(ctx context.Context, job RecountJob) (bool, error)
}

// AssetLoader requests that a client asset bundle be loaded with the current
// page. Registration is idempotent.
type AssetLoader interface {
	AddModule(name string)
}

// Provider populates beta feature declarations for a user. Providers run once
// per assembly; their relative order across registrations is preserved, and
// later declarations for the same key overwrite earlier ones.
type Provider func(ctx context.Context, user *User, decls *Declarations) error

// Gate is a named dependency check. A feature declared Dependent is offered
// only while its gate passes; a gate error counts as a failing gate.
type Gate func(ctx context.Context, user *User) (bool, error)
