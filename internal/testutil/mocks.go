package testutil

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"ircstat/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries of level contain substr once formatted.
func (m *MockLogger) Count(level, substr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level && strings.Contains(fmt.Sprintf(e.Format, e.Args...), substr) {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
	Hits int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	if ok {
		m.Hits++
	}
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Evict(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.Data {
		if strings.HasPrefix(k, prefix) {
			delete(m.Data, k)
			n++
		}
	}
	return n
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       bool
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {
	m.Closed = true
}

// MockMetrics implements providers.MetricsProviderInterface and keeps plain
// counters that tests can inspect.
type MockMetrics struct {
	mu             sync.Mutex
	Lines          map[string]int
	Files          map[string]int
	Events         map[string]int
	PluginFailures map[string]int
	Stages         map[string]int
	Requests       map[string]int
	CacheHits      int
	CacheMisses    int
	Textfiles      []string
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Lines:          make(map[string]int),
		Files:          make(map[string]int),
		Events:         make(map[string]int),
		PluginFailures: make(map[string]int),
		Stages:         make(map[string]int),
		Requests:       make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[fmt.Sprintf("%s:%d", endpoint, status)]++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) IncLines(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lines[result]++
}

func (m *MockMetrics) IncFiles(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[result]++
}

func (m *MockMetrics) AddEvents(plugin string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events[plugin] += count
}

func (m *MockMetrics) IncPluginFailures(plugin string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PluginFailures[plugin]++
}

func (m *MockMetrics) ObserveStageDuration(stage string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stages[stage]++
}

func (m *MockMetrics) Handler() http.Handler {
	return http.NotFoundHandler()
}

func (m *MockMetrics) WriteTextfile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Textfiles = append(m.Textfiles, path)
	return nil
}

// Snapshot returns a copy of one of the counter maps under the lock.
func (m *MockMetrics) Snapshot(counters map[string]int) map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(counters))
	for k, v := range counters {
		out[k] = v
	}
	return out
}
