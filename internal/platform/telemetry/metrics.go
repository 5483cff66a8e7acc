// Package telemetry keeps in-process request and conversion metrics and
// serves them in the Prometheus text exposition format.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ehr/interchange/internal/platform/audit"
)

var (
	durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	rowBuckets      = []float64{1, 10, 100, 1_000, 10_000, 100_000, 1_000_000}
)

// ---------------------------------------------------------------------------
// Histogram
// ---------------------------------------------------------------------------

// histogram stores non-cumulative bucket counts; cumulative counts are
// computed at export time.
type histogram struct {
	boundaries   []float64
	bucketCounts []int64
	count        int64
	sum          uint64 // math.Float64bits
	mu           sync.Mutex
}

func newHistogram(boundaries []float64) *histogram {
	return &histogram{
		boundaries:   boundaries,
		bucketCounts: make([]int64, len(boundaries)),
	}
}

// Observe records a single value.
func (h *histogram) Observe(v float64) {
	atomic.AddInt64(&h.count, 1)
	atomicAddFloat64(&h.sum, v)

	h.mu.Lock()
	defer h.mu.Unlock()
	for i, b := range h.boundaries {
		if v <= b {
			h.bucketCounts[i]++
			return
		}
	}
}

// Count returns the number of observations.
func (h *histogram) Count() int64 {
	return atomic.LoadInt64(&h.count)
}

// Sum returns the sum of all observations.
func (h *histogram) Sum() float64 {
	return math.Float64frombits(atomic.LoadUint64(&h.sum))
}

func (h *histogram) cumulativeBuckets() []int64 {
	h.mu.Lock()
	raw := make([]int64, len(h.bucketCounts))
	copy(raw, h.bucketCounts)
	h.mu.Unlock()

	var running int64
	for i, c := range raw {
		running += c
		raw[i] = running
	}
	return raw
}

func atomicAddFloat64(addr *uint64, delta float64) {
	for {
		old := atomic.LoadUint64(addr)
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64(addr, old, next) {
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Labeled stores
// ---------------------------------------------------------------------------

type histogramStore struct {
	mu    sync.RWMutex
	items map[string]*histogram
}

func (s *histogramStore) getOrCreate(key string, boundaries []float64) *histogram {
	s.mu.RLock()
	h, ok := s.items[key]
	s.mu.RUnlock()
	if ok {
		return h
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok = s.items[key]; !ok {
		h = newHistogram(boundaries)
		s.items[key] = h
	}
	return h
}

func (s *histogramStore) get(key string) *histogram {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[key]
}

// keys returns the label keys in sorted order.
func (s *histogramStore) keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type counterStore struct {
	mu    sync.Mutex
	items map[string]int64
}

func (s *counterStore) add(key string, n int64) {
	s.mu.Lock()
	s.items[key] += n
	s.mu.Unlock()
}

func (s *counterStore) get(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[key]
}

func (s *counterStore) snapshot() ([]string, map[string]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]int64, len(s.items))
	keys := make([]string, 0, len(s.items))
	for k, v := range s.items {
		cp[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, cp
}

// LabelsKey joins label values into a store key.
func LabelsKey(values ...string) string {
	return strings.Join(values, "|")
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

// Metrics holds HTTP and conversion metrics.
type Metrics struct {
	requests    histogramStore // method|route|status
	active      int64
	conversions counterStore   // format|outcome
	rows        histogramStore // format
}

// New returns an empty metrics registry.
func New() *Metrics {
	return &Metrics{
		requests:    histogramStore{items: make(map[string]*histogram)},
		conversions: counterStore{items: make(map[string]int64)},
		rows:        histogramStore{items: make(map[string]*histogram)},
	}
}

// Middleware records request durations by method, route and status.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&m.active, 1)
			defer atomic.AddInt64(&m.active, -1)

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			key := LabelsKey(c.Request().Method, route, strconv.Itoa(status))
			m.requests.getOrCreate(key, durationBuckets).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// RecordConversion counts one conversion. An empty format is reported as
// "unknown".
func (m *Metrics) RecordConversion(format string, rows int, failed bool) {
	if format == "" {
		format = "unknown"
	}
	outcome := "success"
	if failed {
		outcome = "error"
	}
	m.conversions.add(LabelsKey(format, outcome), 1)
	if !failed {
		m.rows.getOrCreate(format, rowBuckets).Observe(float64(rows))
	}
}

// Conversions returns the count for a format and outcome.
func (m *Metrics) Conversions(format, outcome string) int64 {
	return m.conversions.get(LabelsKey(format, outcome))
}

// Requests returns the number of requests observed for the labels.
func (m *Metrics) Requests(method, route string, status int) int64 {
	h := m.requests.get(LabelsKey(method, route, strconv.Itoa(status)))
	if h == nil {
		return 0
	}
	return h.Count()
}

// Observe wraps an audit log so every recorded entry is also counted.
func (m *Metrics) Observe(next audit.Log) audit.Log {
	return &observedLog{Log: next, metrics: m}
}

type observedLog struct {
	audit.Log
	metrics *Metrics
}

func (l *observedLog) Record(ctx context.Context, e audit.Entry) error {
	l.metrics.RecordConversion(e.Format, e.Rows, e.Failed())
	return l.Log.Record(ctx, e)
}

// ---------------------------------------------------------------------------
// Exposition
// ---------------------------------------------------------------------------

// Handler serves the metrics in Prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Blob(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(m.Expose()))
	}
}

// Expose renders every metric. Series are sorted by label values.
func (m *Metrics) Expose() string {
	var b strings.Builder

	b.WriteString("# HELP http_server_request_duration_seconds Duration of HTTP requests in seconds.\n")
	b.WriteString("# TYPE http_server_request_duration_seconds histogram\n")
	for _, key := range m.requests.keys() {
		parts := strings.SplitN(key, "|", 3)
		if len(parts) != 3 {
			continue
		}
		labels := fmt.Sprintf("method=%q,route=%q,status_code=%q", parts[0], parts[1], parts[2])
		writeHistogram(&b, "http_server_request_duration_seconds", labels, m.requests.get(key))
	}
	b.WriteByte('\n')

	b.WriteString("# HELP http_server_active_requests Number of in-flight HTTP requests.\n")
	b.WriteString("# TYPE http_server_active_requests gauge\n")
	fmt.Fprintf(&b, "http_server_active_requests %d\n\n", atomic.LoadInt64(&m.active))

	b.WriteString("# HELP interchange_conversions_total Conversions by detected format and outcome.\n")
	b.WriteString("# TYPE interchange_conversions_total counter\n")
	keys, counts := m.conversions.snapshot()
	for _, key := range keys {
		parts := strings.SplitN(key, "|", 2)
		if len(parts) != 2 {
			continue
		}
		fmt.Fprintf(&b, "interchange_conversions_total{format=%q,outcome=%q} %d\n", parts[0], parts[1], counts[key])
	}
	b.WriteByte('\n')

	b.WriteString("# HELP interchange_conversion_rows Rows produced per successful conversion.\n")
	b.WriteString("# TYPE interchange_conversion_rows histogram\n")
	for _, format := range m.rows.keys() {
		writeHistogram(&b, "interchange_conversion_rows", fmt.Sprintf("format=%q", format), m.rows.get(format))
	}
	return b.String()
}

func writeHistogram(b *strings.Builder, name, labels string, h *histogram) {
	cum := h.cumulativeBuckets()
	total := h.Count()
	for i, boundary := range h.boundaries {
		fmt.Fprintf(b, "%s_bucket{%s,le=\"%g\"} %d\n", name, labels, boundary, cum[i])
	}
	fmt.Fprintf(b, "%s_bucket{%s,le=\"+Inf\"} %d\n", name, labels, total)
	fmt.Fprintf(b, "%s_sum{%s} %g\n", name, labels, h.Sum())
	fmt.Fprintf(b, "%s_count{%s} %d\n", name, labels, total)
}
