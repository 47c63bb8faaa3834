// Package observability provides metrics collection and tracing for CLI operations.
package observability

import (
	"fmt"
	"sync"
	"time"
)

// RequestMetrics holds timing and status information for a single HTTP request.
type RequestMetrics struct {
	Method     string
	URL        string
	StatusCode int
	Duration   time.Duration
	Error      error
}

// OperationMetrics holds timing information for a named endpoint call.
type OperationMetrics struct {
	Service   string
	Operation string
	TokenMode bool
	Duration  time.Duration
	Error     error
}

// SessionMetrics aggregates metrics for an entire CLI session.
type SessionMetrics struct {
	StartTime       time.Time
	EndTime         time.Time
	TotalRequests   int
	FailedRequests  int
	TotalOperations int
	FailedOps       int
	TotalLatency    time.Duration
}

// SessionCollector accumulates metrics across a CLI session.
// It is safe for concurrent use and uses counters instead of unbounded slices.
type SessionCollector struct {
	mu sync.Mutex

	startTime       time.Time
	totalRequests   int
	failedRequests  int
	totalOperations int
	failedOps       int
	totalLatency    time.Duration
}

// NewSessionCollector creates a new SessionCollector.
func NewSessionCollector() *SessionCollector {
	return &SessionCollector{
		startTime: time.Now(),
	}
}

// RecordRequest records metrics for an HTTP request. Anything other than a
// 200 counts as failed.
func (c *SessionCollector) RecordRequest(m RequestMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRequests++
	c.totalLatency += m.Duration
	if m.Error != nil || m.StatusCode != 200 {
		c.failedRequests++
	}
}

// RecordOperation records metrics for an endpoint call.
func (c *SessionCollector) RecordOperation(m OperationMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalOperations++
	if m.Error != nil {
		c.failedOps++
	}
}

// Summary returns aggregated metrics for the session.
func (c *SessionCollector) Summary() SessionMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return SessionMetrics{
		StartTime:       c.startTime,
		EndTime:         time.Now(),
		TotalRequests:   c.totalRequests,
		FailedRequests:  c.failedRequests,
		TotalOperations: c.totalOperations,
		FailedOps:       c.failedOps,
		TotalLatency:    c.totalLatency,
	}
}

// Reset clears all collected metrics and resets the start time.
func (c *SessionCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTime = time.Now()
	c.totalRequests = 0
	c.failedRequests = 0
	c.totalOperations = 0
	c.failedOps = 0
	c.totalLatency = 0
}

// ToMap flattens the metrics for the output envelope's meta.stats.
func (m SessionMetrics) ToMap() map[string]any {
	return map[string]any{
		"duration_ms":      m.EndTime.Sub(m.StartTime).Milliseconds(),
		"requests":         m.TotalRequests,
		"failed_requests":  m.FailedRequests,
		"operations":       m.TotalOperations,
		"failed_ops":       m.FailedOps,
		"total_latency_ms": m.TotalLatency.Milliseconds(),
	}
}

// SessionMetricsFromMap is the inverse of ToMap. Numbers may arrive as
// int, int64 or float64 depending on whether the map went through JSON.
func SessionMetricsFromMap(v map[string]any) SessionMetrics {
	num := func(key string) int64 {
		switch n := v[key].(type) {
		case int:
			return int64(n)
		case int64:
			return n
		case float64:
			return int64(n)
		}
		return 0
	}

	start := time.Time{}
	return SessionMetrics{
		StartTime:       start,
		EndTime:         start.Add(time.Duration(num("duration_ms")) * time.Millisecond),
		TotalRequests:   int(num("requests")),
		FailedRequests:  int(num("failed_requests")),
		TotalOperations: int(num("operations")),
		FailedOps:       int(num("failed_ops")),
		TotalLatency:    time.Duration(num("total_latency_ms")) * time.Millisecond,
	}
}

// FormatParts renders the compact "120ms | 2 requests | 1 failed" pieces.
func (m SessionMetrics) FormatParts() []string {
	var parts []string

	duration := m.EndTime.Sub(m.StartTime)
	if duration < time.Second {
		parts = append(parts, fmt.Sprintf("%dms", duration.Milliseconds()))
	} else {
		parts = append(parts, fmt.Sprintf("%.1fs", duration.Seconds()))
	}

	switch m.TotalRequests {
	case 0:
	case 1:
		parts = append(parts, "1 request")
	default:
		parts = append(parts, fmt.Sprintf("%d requests", m.TotalRequests))
	}

	if m.FailedRequests > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", m.FailedRequests))
	}
	return parts
}
