package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusUnauthorized = "not authorized"
)

// HealthChecker serves liveness and readiness endpoints. Readiness requires a
// loaded credential, since every tool call would otherwise block on
// interactive authorization.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker creates a HealthChecker that starts out ready. sc may be
// nil, in which case only the ready flag is checked.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status     string `json:"status"`
	Uptime     string `json:"uptime"`
	Authorized bool   `json:"authorized"`
	ReadOnly   bool   `json:"read_only"`
}

type healthCheck struct {
	name    string
	ok      bool
	failure string
}

// checks evaluates the readiness conditions in reporting order. Authorized
// reads an atomic flag, so a pending browser consent never stalls a probe.
func (h *HealthChecker) checks() []healthCheck {
	sc := h.serverContext
	return []healthCheck{
		{name: "ready", ok: h.ready.Load(), failure: healthStatusNotReady},
		{name: "shutdown", ok: sc == nil || !sc.IsShutdown(), failure: healthStatusShuttingDown},
		{name: "credential", ok: sc != nil && sc.Authorized(), failure: healthStatusUnauthorized},
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// LivenessHandler serves /healthz. It only reports that the process runs.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler serves /readyz with one entry per check.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: healthStatusOK, Checks: make(map[string]string)}
		code := http.StatusOK
		for _, c := range h.checks() {
			if c.ok {
				resp.Checks[c.name] = healthStatusOK
				continue
			}
			resp.Checks[c.name] = c.failure
			resp.Status = healthStatusNotReady
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	})
}

// DetailedHealthHandler serves /healthz/detailed. Status is the first failing
// check, or ok.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := DetailedHealthResponse{
			Status: healthStatusOK,
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
		}
		if sc := h.serverContext; sc != nil {
			resp.Authorized = sc.Authorized()
			resp.ReadOnly = sc.ReadOnly()
		}

		code := http.StatusOK
		for _, c := range h.checks() {
			if !c.ok {
				resp.Status = c.failure
				code = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, code, resp)
	})
}

// RegisterHealthEndpoints registers the health endpoints on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}
