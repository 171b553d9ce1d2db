package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimewatch/internal/domain"
	apimw "github.com/hamed0406/uptimewatch/internal/httpapi/middleware"
	"github.com/hamed0406/uptimewatch/internal/monitor"
	"github.com/hamed0406/uptimewatch/internal/repo"
	"github.com/hamed0406/uptimewatch/internal/scheduler"
)

// Monitor is the read side of the monitoring engine.
type Monitor interface {
	ComputeStats(ctx context.Context, id domain.EndpointID, now time.Time) (domain.Stats, error)
	RecentTicks(id domain.EndpointID) []domain.Tick
	Forget(id domain.EndpointID)
}

// CycleRunner triggers probes on demand.
type CycleRunner interface {
	RunCycleOnce(ctx context.Context) (scheduler.CycleReport, error)
	ProbeNow(ctx context.Context, ep domain.Endpoint) (monitor.Observation, error)
}

type Server struct {
	Logger   *zap.Logger
	Catalog  repo.EndpointCatalog
	Downtime repo.DowntimeStore
	Monitor  Monitor
	Cycles   CycleRunner
	Now      func() time.Time
}

func NewServer(l *zap.Logger, catalog repo.EndpointCatalog, downtime repo.DowntimeStore, mon Monitor, cycles CycleRunner) *Server {
	return &Server{
		Logger:   l,
		Catalog:  catalog,
		Downtime: downtime,
		Monitor:  mon,
		Cycles:   cycles,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// Router wires the API. Empty key lists disable the matching auth check and
// an empty origin list allows any origin.
func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, pubRPM, pubBurst, admRPM, admBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)
	r.Use(corsHandler(allowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAny(keys))
		r.Use(apimw.RateLimit(pubRPM, pubBurst))

		r.Get("/api/endpoints", s.handleListEndpoints)
		r.Get("/api/endpoints/{id}", s.handleGetEndpoint)
		r.Get("/api/endpoints/{id}/stats", s.handleStats)
		r.Get("/api/endpoints/{id}/ticks", s.handleTicks)
		r.Get("/api/endpoints/{id}/downtime", s.handleDowntime)
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAdmin(keys))
		r.Use(apimw.RateLimit(admRPM, admBurst))

		r.Post("/api/endpoints", s.handleCreateEndpoint)
		r.Put("/api/endpoints/{id}", s.handleUpdateEndpoint)
		r.Delete("/api/endpoints/{id}", s.handleDeleteEndpoint)
		r.Post("/api/endpoints/{id}/check", s.handleCheckEndpoint)
		r.Post("/api/cycles", s.handleRunCycle)
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
