// Package designstub serves the design service routes from memory. It
// assigns GUIDs and echoes entities back without designing anything, for
// tests and offline dry runs.
package designstub

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"Roofline/internal/auth"
	"Roofline/internal/calc/bearing"
	"Roofline/internal/calc/roof"
	"Roofline/internal/calc/truss"
	"Roofline/internal/designapi"
	"Roofline/internal/geom"
	"Roofline/internal/metrics"
)

type Server struct {
	repo    Repository
	eps     float64
	newGUID func() string
	limiter *IPRateLimiter
	metrics *metrics.PrometheusRecorder
	logger  *slog.Logger

	mu       sync.Mutex
	calls    []string
	keep     int
	requests int
}

type Option func(*Server)

func WithRepository(r Repository) Option { return func(s *Server) { s.repo = r } }

// WithEpsilon sets the vertex coincidence tolerance used to infer adjacency.
func WithEpsilon(eps float64) Option { return func(s *Server) { s.eps = eps } }

func WithRateLimit(r rate.Limit, burst int) Option {
	return func(s *Server) { s.limiter = NewIPRateLimiter(r, burst) }
}

func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

func WithGUIDs(fn func() string) Option { return func(s *Server) { s.newGUID = fn } }

// WithCallHistory keeps only the n most recent routes for Calls; zero keeps
// none. Without it every route is kept.
func WithCallHistory(n int) Option { return func(s *Server) { s.keep = n } }

func New(opts ...Option) *Server {
	s := &Server{
		repo:    NewMemoryRepository(),
		eps:     roof.DefaultEpsilon,
		newGUID: uuid.NewString,
		metrics: metrics.NewPrometheusRecorder(nil),
		logger:  slog.Default(),
		keep:    -1,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Calls returns the route templates served so far, in arrival order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Requests counts authorized requests, including those no longer in Calls.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	if s.limiter != nil {
		api.Use(s.limiter.LimitMiddleware)
	}
	api.Use(auth.Middleware, s.record)

	api.HandleFunc(designapi.RouteProjects, s.createProject).Methods(http.MethodPost)
	api.HandleFunc(designapi.RouteBearingEnvelopes, s.createBearing).Methods(http.MethodPost)
	api.HandleFunc(designapi.RouteRoofContainers, s.createContainer).Methods(http.MethodPost)
	api.HandleFunc(designapi.RoutePlanesFromFaces, s.createPlanes(true)).Methods(http.MethodPost)
	api.HandleFunc(designapi.RoutePlanesFromPolygon, s.createPlanes(false)).Methods(http.MethodPost)
	api.HandleFunc(designapi.RouteTrussEnvelopes, s.createEnvelope).Methods(http.MethodPost)
	api.HandleFunc(designapi.RouteCreateTrusses, s.createTrusses).Methods(http.MethodPost)
	api.HandleFunc(designapi.RouteProfileTruss, s.createProfileTruss).Methods(http.MethodPost)
	return r
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.mu.Lock()
		s.requests++
		if s.keep != 0 {
			s.calls = append(s.calls, route)
			if s.keep > 0 && len(s.calls) > s.keep {
				s.calls = append(s.calls[:0], s.calls[len(s.calls)-s.keep:]...)
			}
		}
		s.mu.Unlock()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		s.metrics.ObserveCall(route, time.Since(start), sw.status)
		s.logger.Debug("stub request", slog.String("route", route), slog.Int("status", sw.status))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// fail maps repository and validation errors to status codes.
func fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	}
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var p designapi.Project
	if !decode(w, r, &p) {
		return
	}
	if p.Name == "" {
		http.Error(w, "project name required", http.StatusBadRequest)
		return
	}
	p.GUID = s.newGUID()
	if err := s.repo.CreateProject(r.Context(), p); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) createBearing(w http.ResponseWriter, r *http.Request) {
	var e bearing.Envelope
	if !decode(w, r, &e) {
		return
	}
	if err := bearing.Validate(e); err != nil {
		fail(w, err)
		return
	}
	e.GUID = s.newGUID()
	if err := s.repo.AddBearing(r.Context(), mux.Vars(r)["p"], e); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) createContainer(w http.ResponseWriter, r *http.Request) {
	var c roof.Container
	if !decode(w, r, &c) {
		return
	}
	if err := roof.Validate(c, s.eps); err != nil {
		fail(w, err)
		return
	}
	c.GUID = s.newGUID()
	if err := s.repo.AddContainer(r.Context(), mux.Vars(r)["p"], c); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) createPlanes(fromFaces bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var points [][]geom.Point3D
		if fromFaces {
			var req designapi.FacesRequest
			if !decode(w, r, &req) {
				return
			}
			points = req.Faces
		} else {
			var req designapi.PolygonsRequest
			if !decode(w, r, &req) {
				return
			}
			points = req.Polygons
		}
		loops := make([]roof.Loop, len(points))
		for i, p := range points {
			loops[i] = roof.Loop{Key: strconv.Itoa(i), Points: p}
		}
		if err := roof.ValidateLoops(loops, s.eps, fromFaces); err != nil {
			fail(w, err)
			return
		}
		project := mux.Vars(r)["p"]
		bearings, err := s.repo.Bearings(r.Context(), project)
		if err != nil {
			fail(w, err)
			return
		}
		guids := make([]string, len(loops))
		for i := range guids {
			guids[i] = s.newGUID()
		}
		planes := derivePlanes(loops, guids, bearings, s.eps, fromFaces)
		if err := s.repo.AddPlanes(r.Context(), project, planes); err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, planes)
	}
}

func (s *Server) createEnvelope(w http.ResponseWriter, r *http.Request) {
	var e truss.Envelope
	if !decode(w, r, &e) {
		return
	}
	if err := truss.Validate(e); err != nil {
		fail(w, err)
		return
	}
	var containers, planes []string
	switch b := e.Bound.(type) {
	case truss.ContainerBound:
		containers = append(containers, b.Container)
	case truss.CutBound:
		for _, c := range append(append([]truss.Cut{}, b.Top...), b.Bottom...) {
			if c.Kind == truss.CutRoofPlane {
				planes = append(planes, c.Ref)
			}
		}
	}
	project := mux.Vars(r)["p"]
	ok, err := s.repo.Resolved(r.Context(), project, containers, planes)
	if err != nil {
		fail(w, err)
		return
	}
	if !ok {
		http.Error(w, fmt.Sprintf("truss envelope %q references unknown roof geometry", e.Name), http.StatusUnprocessableEntity)
		return
	}
	e.GUID = s.newGUID()
	e.ComponentDesignGUID = ""
	if err := s.repo.AddEnvelope(r.Context(), project, e); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) createTrusses(w http.ResponseWriter, r *http.Request) {
	var guids []string
	if !decode(w, r, &guids) {
		return
	}
	if len(guids) == 0 {
		http.Error(w, "no truss envelopes", http.StatusBadRequest)
		return
	}
	out, err := s.repo.Design(r.Context(), mux.Vars(r)["p"], guids, s.newGUID)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createProfileTruss(w http.ResponseWriter, r *http.Request) {
	var p truss.Profile
	if !decode(w, r, &p) {
		return
	}
	if err := truss.ValidateProfile(p); err != nil {
		fail(w, err)
		return
	}
	guid := s.newGUID()
	if err := s.repo.AddProfile(r.Context(), mux.Vars(r)["p"], guid, p); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, guid)
}
