/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/friendsincode/slotguide/internal/config"
	"github.com/friendsincode/slotguide/internal/linker"
	"github.com/friendsincode/slotguide/internal/logbuffer"
	"github.com/friendsincode/slotguide/internal/scheduler"
	"github.com/friendsincode/slotguide/internal/telemetry"
	"github.com/friendsincode/slotguide/internal/version"
)

// Generator produces guides; *linker.Pipeline implements it.
type Generator interface {
	Run(ctx context.Context, opts linker.Options) (*linker.Guide, error)
	Cached(ctx context.Context, date string) (*linker.Guide, bool)
}

// rolloverCheck is how often the refresher looks for a new target day.
const rolloverCheck = time.Minute

// Server serves the current guide and keeps it fresh.
type Server struct {
	cfg        *config.Config
	gen        Generator
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error
	now        func() time.Time
	logs       *logbuffer.Buffer

	guide       atomic.Pointer[linker.Guide]
	lastRefresh atomic.Int64 // unix nanos
	refreshMu   sync.Mutex

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New builds the router and HTTP server. Call Start to begin refreshing.
func New(cfg *config.Config, gen Generator, logger zerolog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware(telemetry.ServiceName + "-http"))
	router.Use(telemetry.MetricsMiddleware)
	router.Use(middleware.Timeout(60 * time.Second))

	srv := &Server{
		cfg:    cfg,
		gen:    gen,
		logger: logger.With().Str("component", "server").Logger(),
		router: router,
		now:    time.Now,
	}
	srv.configureRoutes()

	srv.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort),
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// AttachLogs exposes buf at /api/v1/logs.
func (s *Server) AttachLogs(buf *logbuffer.Buffer) {
	s.logs = buf
}

// Guide returns the guide currently served, or nil before the first run.
func (s *Server) Guide() *linker.Guide {
	return s.guide.Load()
}

// Refresh generates the guide for the current target day and swaps it in.
// On the first call a cached guide for the day is used when present.
func (s *Server) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	date := s.cfg.Date(s.now())
	day := date.Format(config.DateLayout)

	if s.guide.Load() == nil {
		if g, ok := s.gen.Cached(ctx, day); ok {
			s.guide.Store(g)
			s.lastRefresh.Store(s.now().UnixNano())
			s.logger.Info().Str("target_date", day).Msg("serving cached guide")
			return nil
		}
	}

	opts := linker.OptionsFromConfig(s.cfg, date)
	opts.OutputPath = ""
	g, err := s.gen.Run(ctx, opts)
	if err != nil {
		return err
	}
	s.guide.Store(g)
	s.lastRefresh.Store(s.now().UnixNano())
	return nil
}

// due reports whether the guide is stale or for another day.
func (s *Server) due() bool {
	g := s.guide.Load()
	if g == nil {
		return true
	}
	if g.TargetDate != s.cfg.Date(s.now()).Format(config.DateLayout) {
		return true
	}
	last := time.Unix(0, s.lastRefresh.Load())
	return s.now().Sub(last) >= s.cfg.RefreshInterval
}

// Start runs the first refresh and the background refresher.
func (s *Server) Start(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Error().Err(err).Msg("initial guide generation failed")
	}

	bgCtx, cancel := context.WithCancel(ctx)
	s.bgCancel = cancel
	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		ticker := time.NewTicker(min(rolloverCheck, s.cfg.RefreshInterval))
		defer ticker.Stop()
		for {
			select {
			case <-bgCtx.Done():
				return
			case <-ticker.C:
				if !s.due() {
					continue
				}
				if err := s.Refresh(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
					s.logger.Error().Err(err).Msg("guide refresh failed")
				}
			}
		}
	}()
}

// Close stops the refresher and releases owned resources in reverse order.
func (s *Server) Close() error {
	if s.bgCancel != nil {
		s.bgCancel()
		s.bgWG.Wait()
		s.bgCancel = nil
	}
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", telemetry.Handler())

	s.router.Get("/epg.xml", s.handleGuide(false))
	s.router.Get("/epg.xml.gz", s.handleGuide(true))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/channels", s.handleChannels)
		r.Get("/channels/{id}/schedule", s.handleSchedule)
		r.Get("/logs", s.handleLogs)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": version.Version,
		"ready":   false,
	}
	if g := s.guide.Load(); g != nil {
		resp["ready"] = true
		resp["target_date"] = g.TargetDate
		resp["generated_at"] = g.GeneratedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGuide(gz bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		g := s.guide.Load()
		if g == nil {
			writeError(w, http.StatusServiceUnavailable, "guide not generated yet")
			return
		}
		w.Header().Set("Last-Modified", g.GeneratedAt.UTC().Format(http.TimeFormat))
		if gz {
			w.Header().Set("Content-Type", "application/gzip")
			_, _ = w.Write(g.Gzip)
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		_, _ = w.Write(g.XML)
	}
}

// channelSummary is a channel without its blocks.
type channelSummary struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Family         string            `json:"family"`
	Outcome        scheduler.Outcome `json:"outcome"`
	Classification string            `json:"classification"`
	Payload        string            `json:"payload,omitempty"`
	EventStart     *time.Time        `json:"event_start,omitempty"`
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	g := s.guide.Load()
	if g == nil {
		writeError(w, http.StatusServiceUnavailable, "guide not generated yet")
		return
	}

	outcome := scheduler.Outcome(r.URL.Query().Get("outcome"))
	channels := make([]channelSummary, 0, len(g.Channels))
	for _, c := range g.Channels {
		if outcome != "" && c.Outcome != outcome {
			continue
		}
		channels = append(channels, channelSummary{
			ID:             c.ID,
			Name:           c.Name,
			Family:         c.Family,
			Outcome:        c.Outcome,
			Classification: c.Classification,
			Payload:        c.Payload,
			EventStart:     c.EventStart,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"target_date":  g.TargetDate,
		"timezone":     g.Timezone,
		"generated_at": g.GeneratedAt,
		"stats":        g.Stats,
		"channels":     channels,
	})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	g := s.guide.Load()
	if g == nil {
		writeError(w, http.StatusServiceUnavailable, "guide not generated yet")
		return
	}
	ch, ok := g.Channel(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if s.logs == nil {
		writeError(w, http.StatusNotFound, "log capture disabled")
		return
	}
	q := r.URL.Query()
	params := logbuffer.QueryParams{
		Level:      q.Get("level"),
		Component:  q.Get("component"),
		RunID:      q.Get("run_id"),
		Search:     q.Get("search"),
		Limit:      200,
		Descending: true,
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		params.Limit = n
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since, want RFC 3339")
			return
		}
		params.Since = t
	}

	entries := s.logs.Query(params)
	if entries == nil {
		entries = []logbuffer.LogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":   s.logs.Stats(),
		"entries": entries,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
