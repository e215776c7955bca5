package betafeatures

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockCache implements the Cache interface for testing. Entries never expire
// unless ExpireAll is called.
type MockCache struct {
	mu      sync.RWMutex
	data    map[string]int64
	gets    int
	sets    int
	failAll bool
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]int64),
	}
}

func (m *MockCache) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gets++
	if m.failAll {
		return 0, ErrCacheUnavailable
	}
	n, ok := m.data[key]
	if !ok {
		return 0, ErrNotFound
	}
	return n, nil
}

func (m *MockCache) Set(_ context.Context, key string, value int64, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll {
		return ErrCacheUnavailable
	}
	m.sets++
	m.data[key] = value
	return nil
}

func (m *MockCache) Incr(_ context.Context, key string) (int64, error) {
	return m.adjust(key, 1)
}

func (m *MockCache) Decr(_ context.Context, key string) (int64, error) {
	return m.adjust(key, -1)
}

func (m *MockCache) adjust(key string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll {
		return 0, ErrCacheUnavailable
	}
	if _, ok := m.data[key]; !ok {
		return 0, ErrNotFound
	}
	m.data[key] += delta
	return m.data[key], nil
}

func (m *MockCache) Close() error {
	return nil
}

// ExpireAll simulates a TTL expiry of every entry.
func (m *MockCache) ExpireAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]int64)
}

// Value returns the raw stored count for assertions.
func (m *MockCache) Value(key string) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.data[key]
	return n, ok
}

// MockCountStore implements the CountStore interface for testing.
type MockCountStore struct {
	mu     sync.RWMutex
	counts map[string]int64
	reads  int
	err    error
}

func NewMockCountStore(counts map[string]int64) *MockCountStore {
	if counts == nil {
		counts = make(map[string]int64)
	}
	return &MockCountStore{counts: counts}
}

func (m *MockCountStore) GetCounts(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reads++
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]int64, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out, nil
}

func (m *MockCountStore) UpsertCount(_ context.Context, feature string, count int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.counts[feature] = count
	return nil
}

func (m *MockCountStore) Close() error {
	return nil
}

func (m *MockCountStore) Reads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reads
}

// MockUserStore implements the UserStore interface for testing.
type MockUserStore struct {
	mu      sync.RWMutex
	options map[string]map[string]OptionState
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		options: make(map[string]map[string]OptionState),
	}
}

func (m *MockUserStore) Options(_ context.Context, userID string) (map[string]OptionState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]OptionState, len(m.options[userID]))
	for k, v := range m.options[userID] {
		out[k] = v
	}
	return out, nil
}

func (m *MockUserStore) SetOptions(_ context.Context, userID string, options map[string]OptionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.options[userID]
	if !ok {
		stored = make(map[string]OptionState)
		m.options[userID] = stored
	}
	for k, v := range options {
		stored[k] = v
	}
	return nil
}

func (m *MockUserStore) CountEnabled(_ context.Context, feature string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, options := range m.options {
		if options[feature] == StateEnabled {
			n++
		}
	}
	return n, nil
}

// MockLogger implements the Logger interface for testing.
type MockLogger struct {
	mu       sync.Mutex
	Messages []string
}

func (m *MockLogger) Debug(msg string, args ...any) { m.log("DEBUG", msg, args...) }
func (m *MockLogger) Info(msg string, args ...any)  { m.log("INFO", msg, args...) }
func (m *MockLogger) Warn(msg string, args ...any)  { m.log("WARN", msg, args...) }
func (m *MockLogger) Error(msg string, args ...any) { m.log("ERROR", msg, args...) }

func (m *MockLogger) SetLevel(level LogLevel) {
	m.log("SET_LEVEL", fmt.Sprintf("%v", level))
}

func (m *MockLogger) log(level, msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(args) > 0 {
		m.Messages = append(m.Messages, fmt.Sprintf("%s: %s %v", level, msg, args))
		return
	}
	m.Messages = append(m.Messages, fmt.Sprintf("%s: %s", level, msg))
}

// mockAssets records requested client bundles.
type mockAssets struct {
	mu      sync.Mutex
	modules []string
}

func (a *mockAssets) AddModule(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.modules = append(a.modules, name)
}

func (a *mockAssets) Loaded(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, m := range a.modules {
		if m == name {
			return true
		}
	}
	return false
}

// mockForm implements FormReader over a plain map. A key present with any
// value counts as submitted.
type mockForm struct {
	token  bool
	values map[string]bool
}

func (f *mockForm) HasToken() bool {
	return f.token
}

func (f *mockForm) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

func (f *mockForm) Bool(name string) bool {
	return f.values[name]
}
