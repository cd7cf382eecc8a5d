// Package web exposes the conversion pipeline over HTTP.
package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/UncleDan/ics-to-word/internal/config"
	"github.com/UncleDan/ics-to-word/internal/convert"
	"github.com/UncleDan/ics-to-word/internal/ics"
	appLog "github.com/UncleDan/ics-to-word/internal/log"
	"github.com/UncleDan/ics-to-word/internal/output"
	"github.com/UncleDan/ics-to-word/internal/render"
)

const eventsCacheTTL = 30 * time.Second

// Server provides the HTTP conversion API.
type Server struct {
	cfg     *config.Config
	conv    *convert.Converter
	fetcher *ics.Fetcher
	router  chi.Router

	// In-memory cache for /api/events responses keyed by source ID, to
	// avoid refetching a feed on every request.
	eventsMu    sync.RWMutex
	eventsCache map[string]eventsCacheEntry
}

type eventsCacheEntry struct {
	resp      eventsResponse
	updatedAt time.Time
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, conv *convert.Converter) *Server {
	s := &Server{
		cfg:         cfg,
		conv:        conv,
		fetcher:     ics.NewFetcher(cfg.Fetch.CacheDir),
		eventsCache: make(map[string]eventsCacheEntry),
	}
	s.router = s.routes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestIDHeader)
	r.Use(chimw.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.basicAuthEnabled() {
			appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Server.Listen)
			r.Use(s.basicAuthMiddleware)
		}
		r.Post("/api/convert", s.handleConvert)
		r.Get("/api/events", s.handleEvents)
		r.Get("/api/formats", s.handleFormats)
	})
	return r
}

// StartServer serves the API on cfg.Server.Listen until ctx is canceled,
// then shuts down gracefully.
func StartServer(ctx context.Context, cfg *config.Config, conv *convert.Converter) error {
	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           NewServer(cfg, conv).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Server.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLog.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestIDHeader echoes the chi request ID back to the client.
func requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			w.Header().Set(chimw.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	a := s.cfg.Server.BasicAuth
	return a.Username != "" && a.Password != ""
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.Server.BasicAuth.Username
	password := s.cfg.Server.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="ics2word", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default": s.cfg.Output.Format,
		"formats": render.Formats(),
	})
}

// handleConvert converts the request body and streams back the report.
//
// POST /api/convert?format=pdf&name=team.ics
//   - format: output format (default: config output.format)
//   - name:   input file name; titles the report and the download
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = s.cfg.Output.Format
	}
	rnd, err := render.ForFormat(format, s.renderOptions())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := q.Get("name")
	if name == "" {
		name = "calendar.ics"
	}
	src := ics.Source{ID: chimw.GetReqID(r.Context()), Location: name}

	limit := int64(s.cfg.Server.MaxUploadMB) << 20
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("body exceeds %d MB", s.cfg.Server.MaxUploadMB))
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	doc, err := s.conv.ConvertBytes(r.Context(), src, body)
	if err != nil {
		writeConvertError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := rnd.Render(r.Context(), &buf, doc); err != nil {
		appLog.Error("api convert: render failed", err, "format", rnd.Format(), "document_id", doc.ID)
		writeError(w, http.StatusInternalServerError, "failed to render document")
		return
	}

	filename := output.DefaultPath(name, ".", s.cfg.Output.Suffix, rnd.Extension())
	w.Header().Set("Content-Type", rnd.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("X-Document-Id", doc.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// eventsResponse is the JSON response shape for /api/events.
type eventsResponse struct {
	Source    string             `json:"source"`
	Title     string             `json:"title"`
	FromCache bool               `json:"from_cache"`
	Events    []render.EventJSON `json:"events"`
}

// handleEvents returns the sorted events of a configured watch source.
//
// GET /api/events?name=team
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	sc, ok := s.sourceByID(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown source %q", name))
		return
	}

	s.eventsMu.RLock()
	cached, hit := s.eventsCache[sc.ID]
	s.eventsMu.RUnlock()
	if hit && time.Since(cached.updatedAt) < eventsCacheTTL {
		writeJSON(w, http.StatusOK, cached.resp)
		return
	}

	src := sc.Source()
	res, err := s.fetcher.Load(r.Context(), src)
	if err != nil {
		appLog.Error("api events: load failed", err, "id", sc.ID)
		writeError(w, http.StatusBadGateway, "failed to load calendar")
		return
	}

	events, err := s.conv.EventsBytes(src, res.Body)
	if err != nil {
		writeConvertError(w, err)
		return
	}

	resp := eventsResponse{
		Source:    sc.ID,
		Title:     src.BaseName(),
		FromCache: res.FromCache,
		Events:    render.EventsJSON(events),
	}

	s.eventsMu.Lock()
	s.eventsCache[sc.ID] = eventsCacheEntry{resp: resp, updatedAt: time.Now()}
	s.eventsMu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) sourceByID(id string) (config.SourceConfig, bool) {
	if id == "" {
		return config.SourceConfig{}, false
	}
	for _, sc := range s.cfg.Watch.Sources {
		if sc.ID == id {
			return sc, true
		}
	}
	return config.SourceConfig{}, false
}

func (s *Server) renderOptions() render.Options {
	return render.Options{PDFTimeout: time.Duration(s.cfg.PDF.TimeoutSeconds) * time.Second}
}

// writeConvertError maps pipeline failures to status codes: bad input is
// 422, anything else 500.
func writeConvertError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ics.ErrDecode), errors.Is(err, ics.ErrParse), errors.Is(err, ics.ErrExtract):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request canceled")
	default:
		appLog.Error("api convert failed", err)
		writeError(w, http.StatusInternalServerError, "conversion failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
