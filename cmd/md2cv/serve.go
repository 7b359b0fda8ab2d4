package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	md2cv "github.com/alnah/go-md2cv"
)

// shutdownTimeout bounds graceful server shutdown.
const shutdownTimeout = 5 * time.Second

// previewServer serves the live Session over HTTP.
type previewServer struct {
	input   string
	session *md2cv.Session
	engine  *md2cv.Engine
	pool    *md2cv.EnginePool
	log     *zap.Logger
}

// routes builds the preview router.
func (s *previewServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/", s.handlePreview)
	r.Get("/thumbnail", s.handleThumbnail)
	r.Get("/pages.json", s.handlePages)
	r.Get("/status", s.handleStatus)
	r.Get("/export.pdf", s.handleExport)
	return r
}

// result returns the published result or writes 503 while none exists.
func (s *previewServer) result(w http.ResponseWriter) *md2cv.Result {
	res := s.session.Result()
	if res == nil {
		msg := "rendering, retry shortly"
		if err := s.session.Err(); err != nil {
			msg = err.Error()
		}
		w.Header().Set("Retry-After", "1")
		http.Error(w, msg, http.StatusServiceUnavailable)
	}
	return res
}

func (s *previewServer) handlePreview(w http.ResponseWriter, _ *http.Request) {
	res := s.result(w)
	if res == nil {
		return
	}
	writeHTML(w, s.engine.PreviewHTML(res))
}

func (s *previewServer) handleThumbnail(w http.ResponseWriter, _ *http.Request) {
	res := s.result(w)
	if res == nil {
		return
	}
	doc, err := md2cv.ThumbnailHTML(res, "md2cv-thumb-"+uuid.NewString())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeHTML(w, doc)
}

func (s *previewServer) handlePages(w http.ResponseWriter, _ *http.Request) {
	res := s.result(w)
	if res == nil {
		return
	}
	writeJSON(w, http.StatusOK, summarize(res))
}

// statusResponse reports the session pipeline.
type statusResponse struct {
	State  string `json:"state"`
	Passes uint64 `json:"passes"`
	Pages  int    `json:"pages"`
	Error  string `json:"error,omitempty"`
}

func (s *previewServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		State:  s.session.State().String(),
		Passes: s.session.Passes(),
		Pages:  s.session.Result().PageCount(),
	}
	if err := s.session.Err(); err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleExport renders the published result as PDF on a pooled engine, so
// concurrent downloads do not share one browser.
func (s *previewServer) handleExport(w http.ResponseWriter, r *http.Request) {
	res := s.result(w)
	if res == nil {
		return
	}

	e, err := s.pool.Acquire(r.Context())
	if err != nil {
		s.exportError(w, err)
		return
	}
	defer s.pool.Release(e)

	data, err := e.ExportPDF(r.Context(), res)
	if err != nil {
		s.exportError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outputName(s.input, res, ".pdf")))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *previewServer) exportError(w http.ResponseWriter, err error) {
	s.log.Warn("export failed", zap.Error(err))
	status := http.StatusInternalServerError
	switch {
	case md2cv.IsBrowserError(err):
		status = http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	http.Error(w, err.Error(), status)
}

func writeHTML(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// runServe serves a live preview of the input until interrupted.
func runServe(ctx context.Context, args []string, env *Environment) error {
	p, err := prepare("serve", args, env)
	if err != nil {
		return err
	}
	defer p.Close()

	pool := md2cv.NewEnginePool(md2cv.ResolvePoolSize(0), func() (*md2cv.Engine, error) {
		return env.NewEngine(p.settings.opts...)
	})
	defer func() { _ = pool.Close() }()

	l, err := startLive(ctx, p)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	srv := &previewServer{
		input:   p.input,
		session: l.session,
		engine:  p.engine,
		pool:    pool,
		log:     p.settings.log.Named("serve"),
	}
	httpSrv := &http.Server{
		Addr:              p.settings.addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	go func() {
		if err := watchFiles(ctx, l.paths(), p.settings.log, l.changed); err != nil {
			p.settings.log.Warn("live reload disabled", zap.Error(err))
		}
	}()

	if !p.flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Serving %s on http://%s\n", p.input, p.settings.addr)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving preview: %w", err)
	}
}
