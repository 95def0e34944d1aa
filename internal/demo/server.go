package demo

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/vcrobe/lazydom/lazyref"
	"github.com/vcrobe/lazydom/runtime"
	"github.com/vcrobe/lazydom/snapshot"
)

// Server serves demo pages over HTTP.
type Server struct {
	logger   *slog.Logger
	resolver *lazyref.Resolver
	repo     snapshot.Repository
	metrics  *runtime.Metrics
	gatherer prometheus.Gatherer
	opts     []runtime.Option

	mu    sync.Mutex
	pages map[string]*Page
}

// NewServer creates a server. Pages share resolver and metrics; snapshots
// go to repo. Extra renderer options are applied to every page.
func NewServer(logger *slog.Logger, resolver *lazyref.Resolver, repo snapshot.Repository, reg *prometheus.Registry, opts ...runtime.Option) *Server {
	return &Server{
		logger:   logger,
		resolver: resolver,
		repo:     repo,
		metrics:  runtime.NewMetrics(reg),
		gatherer: reg,
		opts:     opts,
		pages:    make(map[string]*Page),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/components/{name}", s.renderComponent)
	r.Post("/pages", s.createPage)
	r.Route("/pages/{id}", func(r chi.Router) {
		r.Get("/", s.getPage)
		r.Delete("/", s.deletePage)
		r.Post("/click", s.click)
		r.Post("/snapshot", s.saveSnapshot)
	})
	r.Post("/snapshots/{id}/resume", s.resume)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) pageOptions() []runtime.Option {
	opts := []runtime.Option{
		runtime.WithLogger(s.logger),
		runtime.WithResolver(s.resolver),
		runtime.WithMetrics(s.metrics),
	}
	return append(opts, s.opts...)
}

func (s *Server) renderComponent(w http.ResponseWriter, r *http.Request) {
	page, err := NewPage(r.Context(), chi.URLParam(r, "name"), queryProps(r), s.pageOptions()...)
	if err != nil {
		s.fail(w, err)
		return
	}
	defer page.Close()
	writeHTML(w, page.HTML())
}

func (s *Server) createPage(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("component")
	if name == "" {
		http.Error(w, "component is required", http.StatusBadRequest)
		return
	}
	props := queryProps(r)
	delete(props, "component")
	page, err := NewPage(r.Context(), name, props, s.pageOptions()...)
	if err != nil {
		s.fail(w, err)
		return
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.pages[id] = page
	s.mu.Unlock()
	s.logger.Info("page created", "id", id, "component", name)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) (*Page, bool) {
	s.mu.Lock()
	page, ok := s.pages[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "page not found", http.StatusNotFound)
	}
	return page, ok
}

func (s *Server) getPage(w http.ResponseWriter, r *http.Request) {
	if page, ok := s.page(w, r); ok {
		writeHTML(w, page.HTML())
	}
}

func (s *Server) deletePage(w http.ResponseWriter, r *http.Request) {
	page, ok := s.page(w, r)
	if !ok {
		return
	}
	page.Close()
	s.mu.Lock()
	delete(s.pages, chi.URLParam(r, "id"))
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) click(w http.ResponseWriter, r *http.Request) {
	page, ok := s.page(w, r)
	if !ok {
		return
	}
	if err := page.Click(r.Context(), r.URL.Query().Get("selector")); err != nil {
		s.fail(w, err)
		return
	}
	writeHTML(w, page.AppHTML())
}

func (s *Server) saveSnapshot(w http.ResponseWriter, r *http.Request) {
	page, ok := s.page(w, r)
	if !ok {
		return
	}
	snap, err := page.Snapshot()
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.repo.Save(r.Context(), snap); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": snap.ID, "refs": len(snap.Refs)})
}

func (s *Server) resume(w http.ResponseWriter, r *http.Request) {
	snap, err := s.repo.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	index, err := strconv.Atoi(r.URL.Query().Get("ref"))
	if err != nil {
		http.Error(w, "ref must be an index", http.StatusBadRequest)
		return
	}
	scope, err := Resume(r.Context(), snap, index, s.resolver)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scope": scope})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	var (
		recErr *runtime.ReconciliationError
		resErr *lazyref.ResolutionError
	)
	switch {
	case errors.Is(err, snapshot.ErrNotFound), errors.As(err, &recErr):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNoMatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &resErr):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		s.logger.Error("request failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// queryProps reads query parameters as props. Values are parsed as YAML
// scalars, so "15" is an int and "true" a bool.
func queryProps(r *http.Request) runtime.Props {
	props := runtime.Props{}
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			props[k] = ParseValue(vs[0])
		}
	}
	return props
}

// ParseValue reads a YAML scalar, falling back to the raw string.
func ParseValue(raw string) any {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return raw
	}
	return v
}

func writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
