// Package health serves liveness and readiness endpoints backed by named
// dependency checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Checker reports whether a dependency is usable.
type Checker func(ctx context.Context) error

type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Response is the health endpoint body.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
}

type check struct {
	fn       Checker
	critical bool
}

// Handler aggregates dependency checks. A critical check that fails makes
// readiness report 503; a non-critical one only marks the service degraded.
type Handler struct {
	mu      sync.RWMutex
	checks  map[string]check
	timeout time.Duration
	now     func() time.Time
}

// Option customises a Handler.
type Option func(*Handler)

// WithTimeout bounds one readiness evaluation. The default is 5s.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		checks:  make(map[string]check),
		timeout: 5 * time.Second,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register is RegisterCritical.
func (h *Handler) Register(name string, fn Checker) { h.add(name, fn, true) }

func (h *Handler) RegisterCritical(name string, fn Checker) { h.add(name, fn, true) }

func (h *Handler) RegisterNonCritical(name string, fn Checker) { h.add(name, fn, false) }

// add replaces any check already registered under name.
func (h *Handler) add(name string, fn Checker, critical bool) {
	h.mu.Lock()
	h.checks[name] = check{fn: fn, critical: critical}
	h.mu.Unlock()
}

// Check runs every check concurrently under the handler timeout.
func (h *Handler) Check(ctx context.Context) Response {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	h.mu.RLock()
	results := make(map[string]CheckResult, len(h.checks))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, c := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := CheckResult{Status: StatusUp, Critical: c.critical}
			if err := c.fn(ctx); err != nil {
				res.Status, res.Error = StatusDown, err.Error()
			}
			mu.Lock()
			results[name] = res
			mu.Unlock()
		}()
	}
	h.mu.RUnlock()
	wg.Wait()

	return Response{Status: overall(results), Timestamp: h.now(), Checks: results}
}

func overall(results map[string]CheckResult) Status {
	status := StatusUp
	for _, res := range results {
		switch {
		case res.Status != StatusDown:
		case res.Critical:
			return StatusDown
		default:
			status = StatusDegraded
		}
	}
	return status
}

// LivenessHandler answers 200 while the process runs.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, Response{Status: StatusUp, Timestamp: h.now()})
	}
}

// ReadinessHandler answers 200 when up or degraded and 503 when down.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h.Check(r.Context())
		code := http.StatusOK
		if resp.Status == StatusDown {
			code = http.StatusServiceUnavailable
		}
		respond(w, code, resp)
	}
}

func respond(w http.ResponseWriter, code int, v Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
