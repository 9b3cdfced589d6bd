package service

import (
	"sync/atomic"
	"time"
)

// Metrics tracks service counters since startup.
type Metrics struct {
	startTime time.Time

	requests      atomic.Int64
	successes     atomic.Int64
	failures      atomic.Int64
	upstreamCalls atomic.Int64
	searches      atomic.Int64
}

// NewMetrics creates a metrics tracker starting now
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

func (m *Metrics) IncRequests()      { m.requests.Add(1) }
func (m *Metrics) IncSuccesses()     { m.successes.Add(1) }
func (m *Metrics) IncFailures()      { m.failures.Add(1) }
func (m *Metrics) IncUpstreamCalls() { m.upstreamCalls.Add(1) }
func (m *Metrics) IncSearches()      { m.searches.Add(1) }

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	Requests      int64   `json:"total_requests"`
	Successes     int64   `json:"successful_requests"`
	Failures      int64   `json:"failed_requests"`
	UpstreamCalls int64   `json:"upstream_calls"`
	Searches      int64   `json:"search_queries"`
}

// Snapshot returns the current counter values
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		UptimeSeconds: time.Since(m.startTime).Seconds(),
		Requests:      m.requests.Load(),
		Successes:     m.successes.Load(),
		Failures:      m.failures.Load(),
		UpstreamCalls: m.upstreamCalls.Load(),
		Searches:      m.searches.Load(),
	}
}
