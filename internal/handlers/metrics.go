package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/authapi/apiserver/internal/metrics"
)

// UserCounter reports the number of registered accounts.
type UserCounter interface {
	Count(ctx context.Context) (int, error)
}

// MetricsHandler serves the request-metrics summary. It holds the router so
// the endpoint count reflects whatever routes are registered at request
// time.
type MetricsHandler struct {
	counter   *metrics.Counter
	users     UserCounter
	router    chi.Routes
	startedAt time.Time
}

func NewMetricsHandler(counter *metrics.Counter, users UserCounter, router chi.Routes) *MetricsHandler {
	return &MetricsHandler{
		counter:   counter,
		users:     users,
		router:    router,
		startedAt: time.Now(),
	}
}

type RouteCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type MetricsSummary struct {
	Endpoints      int          `json:"endpoints"`
	Users          int          `json:"users"`
	RequestsTotal  int64        `json:"requestsTotal"`
	ErrorsTotal    int64        `json:"errorsTotal"`
	ErrorRate      float64      `json:"errorRate"`
	AvgLatencyMs   float64      `json:"avgLatencyMs"`
	Uptime         string       `json:"uptime"`
	ActiveSessions int          `json:"activeSessions"`
	TrafficSpark   []int        `json:"trafficSpark"`
	ByEndpoint     []RouteCount `json:"byEndpoint"`
}

// Summary returns the metrics snapshot plus account count, uptime, and the
// number of registered routes. Tokens are stateless, so there is no session
// table to count; activeSessions is always zero.
func (h *MetricsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	snapshot := h.counter.Snapshot()

	users, err := h.users.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load metrics")
		return
	}

	byEndpoint := make([]RouteCount, 0, len(snapshot.PerRoute))
	for route, count := range snapshot.PerRoute {
		byEndpoint = append(byEndpoint, RouteCount{Name: route, Count: count})
	}
	sort.Slice(byEndpoint, func(i, j int) bool {
		if byEndpoint[i].Count != byEndpoint[j].Count {
			return byEndpoint[i].Count > byEndpoint[j].Count
		}
		return byEndpoint[i].Name < byEndpoint[j].Name
	})

	writeJSON(w, http.StatusOK, MetricsSummary{
		Endpoints:      h.endpointCount(),
		Users:          users,
		RequestsTotal:  snapshot.Total,
		ErrorsTotal:    snapshot.Errors,
		ErrorRate:      snapshot.ErrorRatePercent,
		AvgLatencyMs:   snapshot.AvgLatencyMs,
		Uptime:         formatUptime(time.Since(h.startedAt)),
		ActiveSessions: 0,
		TrafficSpark:   snapshot.TrafficWindow,
		ByEndpoint:     byEndpoint,
	})
}

func (h *MetricsHandler) endpointCount() int {
	seen := make(map[string]struct{})
	_ = chi.Walk(h.router, func(method, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		seen[strings.TrimSuffix(route, "/")] = struct{}{}
		return nil
	})
	return len(seen)
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
}
