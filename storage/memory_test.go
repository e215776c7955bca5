package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	betafeatures "github.com/tinajohnson/mediawiki-extensions-BetaFeatures"
)

func TestMemoryCountStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCountStore()

	require.NoError(t, store.UpsertCount(ctx, "ft1", 10))
	require.NoError(t, store.UpsertCount(ctx, "ft2", 20))
	require.NoError(t, store.UpsertCount(ctx, "ft1", 11)) // replace

	counts, err := store.GetCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"ft1": 11, "ft2": 20}, counts)

	// The returned map is a copy.
	counts["ft1"] = 999
	fresh, err := store.GetCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), fresh["ft1"])
}

func TestMemoryCountStoreInvalidKey(t *testing.T) {
	store := NewMemoryCountStore()
	err := store.UpsertCount(context.Background(), "", 1)
	assert.ErrorIs(t, err, betafeatures.ErrInvalidKey)
}

func TestMemoryCountStoreClose(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCountStore()

	require.NoError(t, store.UpsertCount(ctx, "ft1", 10))
	require.NoError(t, store.Close())

	counts, err := store.GetCounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestMemoryUserStoreOptions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUserStore()

	// Unknown users read as empty, not as an error.
	options, err := store.Options(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, options)

	require.NoError(t, store.SetOptions(ctx, "u1", map[string]betafeatures.OptionState{
		"ft1": betafeatures.StateEnabled,
		"ft2": betafeatures.StateDisabled,
	}))

	options, err = store.Options(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, betafeatures.StateEnabled, options["ft1"])
	assert.Equal(t, betafeatures.StateDisabled, options["ft2"])
}

func TestMemoryUserStoreSetOptionsMerges(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUserStore()

	require.NoError(t, store.SetOptions(ctx, "u1", map[string]betafeatures.OptionState{
		"ft1": betafeatures.StateEnabled,
		"ft2": betafeatures.StateEnabled,
	}))
	require.NoError(t, store.SetOptions(ctx, "u1", map[string]betafeatures.OptionState{
		"ft2": betafeatures.StateDisabled,
		"ft3": betafeatures.StateEnabled,
	}))

	options, err := store.Options(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, betafeatures.StateEnabled, options["ft1"], "untouched key survives")
	assert.Equal(t, betafeatures.StateDisabled, options["ft2"])
	assert.Equal(t, betafeatures.StateEnabled, options["ft3"])
}

func TestMemoryUserStoreUnsetRemoves(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUserStore()

	require.NoError(t, store.SetOptions(ctx, "u1", map[string]betafeatures.OptionState{
		"ft1": betafeatures.StateEnabled,
	}))
	require.NoError(t, store.SetOptions(ctx, "u1", map[string]betafeatures.OptionState{
		"ft1": betafeatures.StateUnset,
	}))

	options, err := store.Options(ctx, "u1")
	require.NoError(t, err)
	_, present := options["ft1"]
	assert.False(t, present, "unset should remove the stored opinion")
}

func TestMemoryUserStoreCountEnabled(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUserStore()

	require.NoError(t, store.SetOptions(ctx, "u1", map[string]betafeatures.OptionState{"ft1": betafeatures.StateEnabled}))
	require.NoError(t, store.SetOptions(ctx, "u2", map[string]betafeatures.OptionState{"ft1": betafeatures.StateEnabled}))
	require.NoError(t, store.SetOptions(ctx, "u3", map[string]betafeatures.OptionState{"ft1": betafeatures.StateDisabled}))

	n, err := store.CountEnabled(ctx, "ft1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = store.CountEnabled(ctx, "never-declared")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = store.CountEnabled(ctx, "")
	assert.ErrorIs(t, err, betafeatures.ErrInvalidKey)
}

func TestMemoryUserStoreInvalidUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUserStore()

	_, err := store.Options(ctx, "")
	assert.ErrorIs(t, err, betafeatures.ErrInvalidInput)

	err = store.SetOptions(ctx, "", nil)
	assert.ErrorIs(t, err, betafeatures.ErrInvalidInput)
}
