// Package cache provides count cache backends for the beta features system.
package cache

import (
	betafeatures "github.com/tinajohnson/mediawiki-extensions-BetaFeatures"
)

// Compile-time checks that both backends satisfy the Cache interface.
var (
	_ betafeatures.Cache = (*MemoryCache)(nil)
	_ betafeatures.Cache = (*RedisCache)(nil)
)
