package simulation

import (
	"slices"
	"sync"
	"time"
)

const defaultWindow = 512

// TickMetricsSnapshot summarises observed tick durations.
type TickMetricsSnapshot struct {
	Samples  int           `json:"samples"`
	Average  time.Duration `json:"average"`
	Max      time.Duration `json:"max"`
	Last     time.Duration `json:"last"`
	P50      time.Duration `json:"p50"`
	P95      time.Duration `json:"p95"`
	Overruns uint64        `json:"overruns"`
	Budget   time.Duration `json:"budget"`
}

// AverageFPS derives the frames-per-second equivalent of the sampled tick duration.
func (s TickMetricsSnapshot) AverageFPS() float64 {
	if s.Average <= 0 {
		return 0
	}
	return float64(time.Second) / float64(s.Average)
}

// TickMonitor accumulates timing statistics for the simulation loop.
// Percentiles cover the most recent window of samples.
type TickMonitor struct {
	mu       sync.Mutex
	budget   time.Duration
	samples  int
	total    time.Duration
	max      time.Duration
	last     time.Duration
	overruns uint64
	window   []time.Duration
	next     int
}

// NewTickMonitor constructs a monitor; ticks longer than budget count as overruns.
func NewTickMonitor(budget time.Duration) *TickMonitor {
	return &TickMonitor{budget: budget, window: make([]time.Duration, 0, defaultWindow)}
}

// Observe records the duration of a completed simulation tick.
func (m *TickMonitor) Observe(duration time.Duration) {
	if m == nil || duration < 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	//1.- Aggregate totals for the average.
	m.samples++
	m.total += duration
	if duration > m.max {
		m.max = duration
	}
	m.last = duration
	if m.budget > 0 && duration > m.budget {
		m.overruns++
	}
	//2.- Keep a ring of recent samples for percentiles.
	if len(m.window) < cap(m.window) {
		m.window = append(m.window, duration)
	} else {
		m.window[m.next] = duration
		m.next = (m.next + 1) % len(m.window)
	}
}

// Snapshot returns a copy of the aggregated tick statistics.
func (m *TickMonitor) Snapshot() TickMetricsSnapshot {
	if m == nil {
		return TickMetricsSnapshot{}
	}
	m.mu.Lock()
	snap := TickMetricsSnapshot{
		Samples:  m.samples,
		Max:      m.max,
		Last:     m.last,
		Overruns: m.overruns,
		Budget:   m.budget,
	}
	total := m.total
	recent := slices.Clone(m.window)
	m.mu.Unlock()

	if snap.Samples > 0 {
		snap.Average = total / time.Duration(snap.Samples)
	}
	if len(recent) > 0 {
		slices.Sort(recent)
		snap.P50 = percentile(recent, 0.50)
		snap.P95 = percentile(recent, 0.95)
	}
	return snap
}

// percentile uses nearest-rank on sorted samples.
func percentile(sorted []time.Duration, q float64) time.Duration {
	rank := int(q*float64(len(sorted))+0.999999) - 1
	rank = max(0, min(rank, len(sorted)-1))
	return sorted[rank]
}

// Reset clears the accumulated statistics.
func (m *TickMonitor) Reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.samples = 0
	m.total = 0
	m.max = 0
	m.last = 0
	m.overruns = 0
	m.window = m.window[:0]
	m.next = 0
	m.mu.Unlock()
}
