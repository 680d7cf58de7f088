package cli

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/config"
	"github.com/matzehuels/timegrid/pkg/errors"
	"github.com/matzehuels/timegrid/pkg/grid"
	"github.com/matzehuels/timegrid/pkg/layout"
	"github.com/matzehuels/timegrid/pkg/pipeline"
	"github.com/matzehuels/timegrid/pkg/source"
)

// maxRequestBody caps API request bodies.
const maxRequestBody = 8 << 20

// serveCommand creates the serve command, which exposes layout and export
// over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		listen  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout and export HTTP API",
		Long: `Serve the layout and export HTTP API.

Endpoints:
  GET  /health              liveness check
  GET  /v1/presets          page presets
  POST /v1/layout           {events, date, view, target} -> {layout, excluded}
  POST /v1/export?format=   same body -> the rendered file

Events use the JSON export format of 'export --events'. Invalid layout
configuration, unknown targets, views or formats, and malformed events
answer 400 with {code, message}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx, noCache)
			if err != nil {
				return err
			}
			defer s.Close()
			return runServer(ctx, cmp.Or(listen, s.cfg.Serve.Listen), newServer(s))
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default from config, else "+config.DefaultListen+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// runServer serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func runServer(ctx context.Context, addr string, h *server) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		h.logger.Info("listening", "addr", "http://"+addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// server handles the HTTP API. Requests share the session's runner and
// therefore its artifact cache.
type server struct {
	runner *pipeline.Runner
	cfg    *config.File
	loc    *time.Location
	logger *log.Logger
}

func newServer(s *session) *server {
	return &server{runner: s.runner, cfg: s.cfg, loc: s.loc, logger: s.logger.WithPrefix("http")}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/presets", s.handlePresets)
		r.Post("/layout", s.handleLayout)
		r.Post("/export", s.handleExport)
	})
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

// apiRequest is the body of /v1/layout and /v1/export.
type apiRequest struct {
	Events    json.RawMessage `json:"events"`
	Date      string          `json:"date"`
	View      string          `json:"view"`
	Target    string          `json:"target"`
	Title     string          `json:"title"`
	StartHour *int            `json:"startHour"`
	EndHour   *int            `json:"endHour"`
	Scale     float64         `json:"scale"`
}

type layoutResponse struct {
	Layout   layout.Resolved  `json:"layout"`
	Excluded []grid.Exclusion `json:"excluded"`
	Pages    []pipeline.Page  `json:"pages,omitempty"` // planner view only
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, config.Presets())
}

func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	events, opts, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	pages, err := s.runner.Layout(r.Context(), events, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := layoutResponse{Layout: pages[0].Layout, Excluded: []grid.Exclusion{}}
	resp.Excluded = append(resp.Excluded, pipeline.ExcludedEvents(pages)...)
	if len(pages) > 1 {
		resp.Pages = pages
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := cmp.Or(r.URL.Query().Get("format"), pipeline.FormatSVG)
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	events, opts, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), events, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(result.Artifacts) != 1 {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported,
			"%s produces %d files for the %s view; use pdf or json", format, len(result.Artifacts), opts.View))
		return
	}

	a := result.Artifacts[0]
	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", a.Name))
	w.Header().Set("X-Timegrid-Excluded", strconv.Itoa(result.Excluded()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data)
}

// decode reads the request body into events and export options.
func (s *server) decode(w http.ResponseWriter, r *http.Request) ([]calendar.Event, pipeline.Options, error) {
	var req apiRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		return nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}

	var events []calendar.Event
	if len(req.Events) > 0 && string(req.Events) != "null" {
		evs, err := source.ParseJSON(req.Events, s.loc, calendar.SourceHint{})
		if err != nil {
			return nil, pipeline.Options{}, err
		}
		events = evs
	}

	date, err := parseDate(req.Date, s.loc)
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	cfg := *s.cfg
	cfg.Target = cmp.Or(req.Target, cfg.Target)
	if req.StartHour != nil {
		cfg.StartHour = req.StartHour
	}
	if req.EndHour != nil {
		cfg.EndHour = req.EndHour
	}
	lc, err := cfg.Layout()
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	if lc, err = withScale(lc, req.Scale); err != nil {
		return nil, pipeline.Options{}, err
	}

	opts := pipeline.Options{
		Date:   date,
		View:   cmp.Or(req.View, pipeline.DefaultView),
		Target: cfg.Target,
		Title:  req.Title,
		Layout: lc,
		Logger: s.logger,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, pipeline.Options{}, err
	}
	return events, opts, nil
}

// statusFor maps an error to an HTTP status: caller mistakes are 400,
// everything else 500.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfiguration,
		errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidTarget,
		errors.ErrCodeInvalidSource,
		errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
