// Package health runs named dependency checks for the liveness and
// readiness probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// DefaultTimeout bounds a single readiness check.
const DefaultTimeout = 2 * time.Second

// CheckFunc reports a dependency as unhealthy by returning an error.
type CheckFunc func(ctx context.Context) error

// Checker holds the registered checks. Register is safe to call while
// probes are being served.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	timeout time.Duration
	started time.Time
}

func NewChecker() *Checker {
	return &Checker{
		checks:  make(map[string]CheckFunc),
		timeout: DefaultTimeout,
		started: time.Now(),
	}
}

// WithTimeout sets the per-check deadline. Non-positive values are ignored.
func (c *Checker) WithTimeout(d time.Duration) *Checker {
	if d > 0 {
		c.timeout = d
	}
	return c
}

func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// CheckResult is the readiness body. Details maps each check to "ok" or its
// error text; Latency maps it to how long it ran.
type CheckResult struct {
	Status  Status            `json:"status"`
	Details map[string]string `json:"details,omitempty"`
	Latency map[string]string `json:"latency,omitempty"`
}

type outcome struct {
	name    string
	err     error
	elapsed time.Duration
}

// Check runs every registered check concurrently, each under its own
// deadline, and waits for all of them.
func (c *Checker) Check(ctx context.Context) CheckResult {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	timeout := c.timeout
	c.mu.RUnlock()

	outcomes := make(chan outcome, len(checks))
	var wg sync.WaitGroup
	for name, fn := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			start := time.Now()
			err := fn(checkCtx)
			outcomes <- outcome{name: name, err: err, elapsed: time.Since(start)}
		}()
	}
	wg.Wait()
	close(outcomes)

	result := CheckResult{
		Status:  StatusHealthy,
		Details: make(map[string]string, len(checks)),
		Latency: make(map[string]string, len(checks)),
	}
	for o := range outcomes {
		result.Latency[o.name] = o.elapsed.Round(time.Microsecond).String()
		if o.err != nil {
			result.Status = StatusUnhealthy
			result.Details[o.name] = o.err.Error()
			continue
		}
		result.Details[o.name] = "ok"
	}
	return result
}

// LivenessHandler answers 200 as long as the process serves HTTP.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "alive",
			"uptime": time.Since(c.started).Round(time.Second).String(),
		})
	}
}

// ReadinessHandler answers 503 when any check fails.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := c.Check(r.Context())
		code := http.StatusOK
		if result.Status != StatusHealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, result)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
