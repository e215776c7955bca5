// Package betafeatures implements opt-in "beta" user preferences for a wiki
// platform.
//
// External collaborators declare beta features through providers; the Engine
// assembles the preference form specification for a user, resolving dependency
// gates and auto-enrollment rules, and the Counter keeps a cached, eventually
// consistent count of how many users enabled each feature. Durable counts live
// in a storage backend (PostgreSQL, SQLite) behind an optional cache (Redis,
// in-memory), refreshed by a deduplicated background recount job.
package betafeatures
