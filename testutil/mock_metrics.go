package testutil

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/monthlog/monthlog"
)

// MockMetricsDesc describes the MockMetrics metrics client.
//
// All clients created from MockMetricsDesc are recorded in LastMockMetrics
// so that tests running Main can inspect what has been published.
var MockMetricsDesc = monthlog.MetricsDesc{
	Name:   "MockMetrics",
	Config: &struct{}{},
	New:    newMockMetrics,
	Help:   "Records published metrics, for tests.",
}

var (
	lastMu   sync.Mutex
	lastMock *MockMetrics
)

// LastMockMetrics returns the last MockMetrics client created via
// MockMetricsDesc, or nil.
func LastMockMetrics() *MockMetrics {
	lastMu.Lock()
	defer lastMu.Unlock()
	return lastMock
}

// MockMetrics is a metrics client to be used in tests only, which stores single
// calls made to the set of methods implementing the monthlog.MetricsClient
// interface, and sort them so that they're easy to compare mechanically, in
// tests.
type MockMetrics struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func newMockMetrics(_ interface{}) (monthlog.MetricsClient, error) {
	m := &MockMetrics{}
	lastMu.Lock()
	lastMock = m
	lastMu.Unlock()
	return m, nil
}

// PublishedMetrics returns a list of strings, each of which represent arguments
// and method of calls to methods of the monthlog.MetricsClient interface. Prefix
// can be used to select a subset of calls, or all of them (with "").
// Durations are not recorded with their value since it's not deterministic.
func (m *MockMetrics) PublishedMetrics(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keep := make([]string, 0)
	for _, s := range strings.Split(m.buf.String(), "\n") {
		if len(strings.TrimSpace(s)) != 0 {
			if len(prefix) == 0 || strings.HasPrefix(s, prefix) {
				keep = append(keep, s)
			}
		}
	}

	sort.Strings(keep)
	return keep
}

// Closed reports whether Close has been called.
func (m *MockMetrics) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockMetrics) printf(format string, args ...interface{}) {
	m.mu.Lock()
	fmt.Fprintf(&m.buf, format, args...)
	m.mu.Unlock()
}

func (m *MockMetrics) Gauge(name string, value float64) {
	m.printf("gauge|name=%s|value=%v\n", name, value)
}
func (m *MockMetrics) RawCount(name string, value int64) {
	m.printf("rawcount|name=%s|value=%v\n", name, value)
}
func (m *MockMetrics) Duration(name string, value time.Duration) {
	m.printf("duration|name=%s\n", name)
}
func (m *MockMetrics) DeltaCountWithTags(name string, delta int64, tags []string) {
	m.printf("delta|name=%s|value=%v|tags=%s\n", name, delta, strings.Join(tags, ","))
}

func (m *MockMetrics) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
