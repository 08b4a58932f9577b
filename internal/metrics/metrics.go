// Package metrics provides the in-process request counters backing the
// metrics summary endpoint. A Counter is constructed once at startup and
// passed by handle to the middleware and handlers; there is no package-level
// singleton.
package metrics

import (
	"math"
	"sync"
	"sync/atomic"
)

// The traffic window keeps the last 12 samples, one per request, oldest
// evicted first. The req/min label on the dashboard is approximate; this is
// not a true per-minute rate.
const trafficWindowSize = 12

// Counter accumulates request metrics. Scalar counters use lock-free
// atomics; the latency accumulator, per-route map, and traffic window each
// sit behind a narrow mutex held only for the duration of the update.
type Counter struct {
	total  atomic.Int64
	errors atomic.Int64

	latencyMu      sync.Mutex
	totalLatencyMs float64

	routeMu  sync.RWMutex
	perRoute map[string]int64

	trafficMu sync.Mutex
	traffic   []int
}

func NewCounter() *Counter {
	return &Counter{
		perRoute: make(map[string]int64),
		traffic:  make([]int, 0, trafficWindowSize),
	}
}

// Record registers one completed request. Status codes >= 500 count as
// errors. Safe for concurrent use.
func (c *Counter) Record(route string, status int, elapsedMs float64) {
	c.total.Add(1)
	if status >= 500 {
		c.errors.Add(1)
	}

	c.latencyMu.Lock()
	c.totalLatencyMs += elapsedMs
	c.latencyMu.Unlock()

	c.routeMu.Lock()
	c.perRoute[route]++
	c.routeMu.Unlock()

	c.trafficMu.Lock()
	c.traffic = append(c.traffic, 1)
	if len(c.traffic) > trafficWindowSize {
		c.traffic = c.traffic[1:]
	}
	c.trafficMu.Unlock()
}

// Snapshot is a point-in-time copy of the counters, with display rounding
// applied: average latency to two decimals, error rate to one.
type Snapshot struct {
	Total            int64
	Errors           int64
	AvgLatencyMs     float64
	ErrorRatePercent float64
	PerRoute         map[string]int64
	TrafficWindow    []int
}

func (c *Counter) Snapshot() Snapshot {
	total := c.total.Load()
	errs := c.errors.Load()

	c.latencyMu.Lock()
	totalLatency := c.totalLatencyMs
	c.latencyMu.Unlock()

	var avgLatency, errorRate float64
	if total > 0 {
		avgLatency = round(totalLatency/float64(total), 2)
		errorRate = round(float64(errs)/float64(total)*100, 1)
	}

	c.routeMu.RLock()
	perRoute := make(map[string]int64, len(c.perRoute))
	for route, count := range c.perRoute {
		perRoute[route] = count
	}
	c.routeMu.RUnlock()

	c.trafficMu.Lock()
	traffic := make([]int, len(c.traffic))
	copy(traffic, c.traffic)
	c.trafficMu.Unlock()

	return Snapshot{
		Total:            total,
		Errors:           errs,
		AvgLatencyMs:     avgLatency,
		ErrorRatePercent: errorRate,
		PerRoute:         perRoute,
		TrafficWindow:    traffic,
	}
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
