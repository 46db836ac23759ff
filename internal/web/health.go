// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"net/http"
	"slices"
	"sync"

	"go.geekbrox.name/autoblog/internal/version"
)

// HealthHandler reports the health of the bot's subsystems as JSON. It
// responds with 503 when any check fails so a supervisor can restart it.
type HealthHandler struct {
	mu     sync.RWMutex
	checks map[string]HealthFunc
}

// HealthFunc reports the state of one subsystem. It must be safe for
// concurrent use.
type HealthFunc func() (status string, ok bool)

// NewHealth returns a HealthHandler without checks.
func NewHealth() *HealthHandler {
	return &HealthHandler{checks: make(map[string]HealthFunc)}
}

// RegisterFunc adds a check. It panics if name is already registered.
func (h *HealthHandler) RegisterFunc(name string, f HealthFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, dup := h.checks[name]; dup {
		panic("web: duplicate health check " + name)
	}
	h.checks[name] = f
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	OK      bool                     `json:"ok"`
	Version string                   `json:"version"`
	Checks  map[string]CheckResponse `json:"checks"`
	// Failing lists the names of failed checks, sorted.
	Failing []string `json:"failing,omitempty"`
}

// CheckResponse is the result of one check.
type CheckResponse struct {
	Status string `json:"status"`
	OK     bool   `json:"ok"`
}

// Check runs all checks.
func (h *HealthHandler) Check() *HealthResponse {
	hr := &HealthResponse{
		OK:      true,
		Version: version.Short(),
		Checks:  make(map[string]CheckResponse),
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for name, f := range h.checks {
		status, ok := f()
		if !ok {
			hr.OK = false
			hr.Failing = append(hr.Failing, name)
		}
		hr.Checks[name] = CheckResponse{Status: status, OK: ok}
	}
	slices.Sort(hr.Failing)
	return hr
}

// ServeHTTP implements [http.Handler].
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	hr := h.Check()
	w.Header().Set("Content-Type", "application/json")
	if hr.OK {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	respondJSON(w, hr, true)
}
