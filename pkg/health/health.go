// Package health exposes the storefront's liveness and readiness probes.
// Readiness reflects the dependencies a request actually needs: the Redis
// cart store and the Kafka event producer.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// checkTimeout bounds a full readiness pass; a hung dependency must not
// hold the probe open past the kubelet's own timeout.
const checkTimeout = 5 * time.Second

// Checker pings one dependency.
type Checker func(ctx context.Context) error

// Status is "up" or "down", per dependency and overall.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Report is the probe response body.
type Report struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is one dependency's verdict.
type CheckResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Handler serves the probe endpoints over a named set of checkers.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

func NewHandler() *Handler {
	return &Handler{checkers: make(map[string]Checker)}
}

// Register adds a named dependency check. Registering the same name again
// replaces the previous checker.
func (h *Handler) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

func writeReport(w http.ResponseWriter, status int, rep Report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(rep) //nolint:errcheck
}

// LivenessHandler answers 200 whenever the process can serve HTTP at all.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeReport(w, http.StatusOK, Report{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs every registered checker concurrently and answers
// 503 if any dependency is down.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		h.mu.RLock()
		names := make([]string, 0, len(h.checkers))
		checkers := make([]Checker, 0, len(h.checkers))
		for name, c := range h.checkers {
			names = append(names, name)
			checkers = append(checkers, c)
		}
		h.mu.RUnlock()

		results := make([]CheckResult, len(checkers))
		var wg sync.WaitGroup
		for i, check := range checkers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := check(ctx); err != nil {
					results[i] = CheckResult{Status: StatusDown, Error: err.Error()}
				} else {
					results[i] = CheckResult{Status: StatusUp}
				}
			}()
		}
		wg.Wait()

		rep := Report{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
			Checks:    make(map[string]CheckResult, len(results)),
		}
		for i, name := range names {
			rep.Checks[name] = results[i]
			if results[i].Status == StatusDown {
				rep.Status = StatusDown
			}
		}

		status := http.StatusOK
		if rep.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeReport(w, status, rep)
	}
}
