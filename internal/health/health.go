// Package health evaluates named probes for the admin /healthz endpoint.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Probe represents a health check function that returns an error on failure.
type Probe func(ctx context.Context) error

// Registry maintains a set of named probes and evaluates them on demand.
type Registry struct {
	mu     sync.RWMutex
	probes map[string]Probe
}

// Status holds the evaluation result for a probe.
type Status struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

// Result represents the overall health payload.
type Result struct {
	Status string            `json:"status"`
	Checks map[string]Status `json:"checks"`
}

// Healthy reports whether every probe passed.
func (r Result) Healthy() bool {
	for _, check := range r.Checks {
		if !check.Healthy {
			return false
		}
	}
	return true
}

// NewRegistry initializes an empty registry.
func NewRegistry() *Registry {
	return &Registry{probes: map[string]Probe{}}
}

// Register adds or replaces a probe.
func (r *Registry) Register(name string, probe Probe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probes[name] = probe
}

// Names lists registered probes in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.probes))
	for name := range r.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluate executes every probe and returns a result map.
func (r *Registry) Evaluate(ctx context.Context) Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	checks := make(map[string]Status, len(r.probes))
	for name, probe := range r.probes {
		start := time.Now()
		err := probe(ctx)
		status := Status{
			Healthy: err == nil,
			Latency: time.Since(start).String(),
		}
		if err != nil {
			status.Error = err.Error()
		}
		checks[name] = status
	}

	result := Result{Status: "ok", Checks: checks}
	if !result.Healthy() {
		result.Status = "degraded"
	}
	return result
}

// Handler returns an HTTP handler that emits JSON health responses,
// 503 when any probe fails.
func Handler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		result := reg.Evaluate(ctx)
		status := http.StatusOK
		if !result.Healthy() {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(result)
	}
}
