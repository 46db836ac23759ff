// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"go.geekbrox.name/autoblog/internal/bot"
	"go.geekbrox.name/autoblog/internal/logger"
	"go.geekbrox.name/autoblog/internal/metrics"
	"go.geekbrox.name/autoblog/internal/sharedstate"
	"go.geekbrox.name/autoblog/internal/web"
)

const (
	defaultLogEntries = 20
	maxLogEntries     = 200
)

type statusResponse struct {
	State *sharedstate.State `json:"state"`
	Bot   bot.Stats          `json:"bot"`
}

func newRouter(b *bot.Bot, state *sharedstate.Store, logs *logger.Streamer, logf logger.Logf) http.Handler {
	health := web.NewHealth()
	health.RegisterFunc("state", func() (string, bool) {
		if _, err := os.Stat(state.Dir()); err != nil {
			return err.Error(), false
		}
		return "ok", true
	})
	health.RegisterFunc("queue", func() (string, bool) {
		st := b.Stats()
		return fmt.Sprintf("%d queued, %d calls in the last minute", st.Queued, st.Rate.Recent), true
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Method(http.MethodGet, "/health", health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Method(http.MethodGet, "/debug/logs", logs)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			web.RespondJSON(w, &statusResponse{State: state.Load(), Bot: b.Stats()})
		})
		r.Get("/log", func(w http.ResponseWriter, r *http.Request) {
			n := defaultLogEntries
			if v := r.URL.Query().Get("n"); v != "" {
				var err error
				n, err = strconv.Atoi(v)
				if err != nil || n <= 0 || n > maxLogEntries {
					web.RespondJSONError(logf, w, fmt.Errorf("n must be between 1 and %d: %w", maxLogEntries, web.ErrBadRequest))
					return
				}
			}
			entries := state.ActivityLog()
			web.RespondJSON(w, entries[max(0, len(entries)-n):])
		})
		r.Get("/conflicts", func(w http.ResponseWriter, r *http.Request) {
			web.RespondJSON(w, state.Conflicts())
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		web.RespondJSONError(logf, w, web.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		web.RespondJSONError(logf, w, web.ErrMethodNotAllowed)
	})
	return r
}
