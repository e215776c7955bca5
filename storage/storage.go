// Package storage provides durable backends for the beta features user count
// table. Each backend creates its own schema on construction.
package storage

import (
	betafeatures "github.com/tinajohnson/mediawiki-extensions-BetaFeatures"
)

// Compile-time checks that every backend implements CountStore.
var (
	_ betafeatures.CountStore = (*MemoryCountStore)(nil)
	_ betafeatures.CountStore = (*PostgresCountStore)(nil)
	_ betafeatures.CountStore = (*SQLiteCountStore)(nil)
)

var _ betafeatures.UserStore = (*MemoryUserStore)(nil)
