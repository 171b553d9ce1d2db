package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimewatch/internal/domain"
	"github.com/hamed0406/uptimewatch/internal/repo"
	"github.com/hamed0406/uptimewatch/internal/scheduler"
)

const recentDowntimeInList = 5

type endpointView struct {
	domain.Endpoint
	Stats          domain.Stats              `json:"stats"`
	RecentDowntime []domain.DowntimeInterval `json:"recent_downtime"`
	Ticks          []domain.Tick             `json:"ticks,omitempty"`
}

func (s *Server) view(ctx context.Context, e domain.Endpoint, withTicks bool) (endpointView, error) {
	v := endpointView{Endpoint: e}
	st, err := s.Monitor.ComputeStats(ctx, e.ID, s.Now())
	if err != nil {
		return v, err
	}
	v.Stats = st
	recent, err := s.Downtime.RecentDowntime(ctx, e.ID, recentDowntimeInList)
	if err != nil {
		return v, err
	}
	if recent == nil {
		recent = []domain.DowntimeInterval{}
	}
	v.RecentDowntime = recent
	if withTicks {
		v.Ticks = s.Monitor.RecentTicks(e.ID)
	}
	return v, nil
}

func (s *Server) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	eps, err := s.Catalog.List(r.Context())
	if err != nil {
		s.Logger.Warn("list_endpoints_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	out := make([]endpointView, 0, len(eps))
	for _, e := range eps {
		v, err := s.view(r.Context(), e, false)
		if err != nil {
			s.Logger.Warn("endpoint_view_error", zap.String("endpoint_id", string(e.ID)), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list error")
			return
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

// loadEndpoint resolves {id} or writes the error response and returns nil.
func (s *Server) loadEndpoint(w http.ResponseWriter, r *http.Request) *domain.Endpoint {
	id := domain.EndpointID(chi.URLParam(r, "id"))
	e, err := s.Catalog.Get(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "endpoint not found")
		return nil
	}
	if err != nil {
		s.Logger.Warn("get_endpoint_error", zap.String("endpoint_id", string(id)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lookup error")
		return nil
	}
	return e
}

func (s *Server) handleGetEndpoint(w http.ResponseWriter, r *http.Request) {
	e := s.loadEndpoint(w, r)
	if e == nil {
		return
	}
	v, err := s.view(r.Context(), *e, true)
	if err != nil {
		s.Logger.Warn("endpoint_view_error", zap.String("endpoint_id", string(e.ID)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lookup error")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	e := s.loadEndpoint(w, r)
	if e == nil {
		return
	}
	st, err := s.Monitor.ComputeStats(r.Context(), e.ID, s.Now())
	if err != nil {
		s.Logger.Warn("compute_stats_error", zap.String("endpoint_id", string(e.ID)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "stats error")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleTicks(w http.ResponseWriter, r *http.Request) {
	e := s.loadEndpoint(w, r)
	if e == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.Monitor.RecentTicks(e.ID))
}

func (s *Server) handleDowntime(w http.ResponseWriter, r *http.Request) {
	e := s.loadEndpoint(w, r)
	if e == nil {
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be 1..500")
			return
		}
		limit = n
	}
	rows, err := s.Downtime.RecentDowntime(r.Context(), e.ID, limit)
	if err != nil {
		s.Logger.Warn("recent_downtime_error", zap.String("endpoint_id", string(e.ID)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "downtime error")
		return
	}
	if rows == nil {
		rows = []domain.DowntimeInterval{}
	}
	writeJSON(w, http.StatusOK, rows)
}

type endpointPayload struct {
	Name   *string `json:"name"`
	URL    *string `json:"url"`
	Email  *string `json:"email"`
	Active *bool   `json:"is_active"`
}

// apply copies the provided fields onto e and validates the result.
func (p endpointPayload) apply(e *domain.Endpoint) string {
	if p.URL != nil {
		if !domain.ValidHTTPURL(*p.URL) {
			return "url must be an absolute http(s) URL"
		}
		e.URL = domain.NormalizeURL(*p.URL)
	}
	if p.Name != nil {
		e.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		e.NotifyEmail = strings.TrimSpace(*p.Email)
	}
	if p.Active != nil {
		e.Active = *p.Active
	}

	if e.URL == "" {
		return "url is required"
	}
	if e.Name == "" {
		if u, err := url.Parse(e.URL); err == nil {
			e.Name = u.Hostname()
		}
	}
	if e.NotifyEmail != "" && !domain.ValidEmail(e.NotifyEmail) {
		return "email is not a valid address"
	}
	return ""
}

func (s *Server) handleCreateEndpoint(w http.ResponseWriter, r *http.Request) {
	var p endpointPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	e := &domain.Endpoint{Active: true, Status: domain.StatusUnknown}
	if msg := p.apply(e); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if existing, err := s.Catalog.GetByURL(r.Context(), e.URL); err == nil && existing != nil {
		writeError(w, http.StatusConflict, "endpoint already exists")
		return
	}
	if err := s.Catalog.Create(r.Context(), e); err != nil {
		if errors.Is(err, repo.ErrDuplicateURL) {
			writeError(w, http.StatusConflict, "endpoint already exists")
			return
		}
		s.Logger.Warn("create_endpoint_error", zap.String("url", e.URL), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not add")
		return
	}

	s.Logger.Info("endpoint_added",
		zap.String("endpoint_id", string(e.ID)),
		zap.String("url", e.URL),
		zap.Bool("active", e.Active),
	)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateEndpoint(w http.ResponseWriter, r *http.Request) {
	e := s.loadEndpoint(w, r)
	if e == nil {
		return
	}
	var p endpointPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	oldURL := e.URL
	if msg := p.apply(e); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if err := s.Catalog.Update(r.Context(), e); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateURL):
			writeError(w, http.StatusConflict, "endpoint already exists")
		case errors.Is(err, repo.ErrNotFound):
			writeError(w, http.StatusNotFound, "endpoint not found")
		default:
			s.Logger.Warn("update_endpoint_error", zap.String("endpoint_id", string(e.ID)), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not update")
		}
		return
	}
	// a new target starts a fresh timeline
	if e.URL != oldURL {
		s.Monitor.Forget(e.ID)
	}
	s.Logger.Info("endpoint_updated", zap.String("endpoint_id", string(e.ID)), zap.String("url", e.URL), zap.Bool("active", e.Active))
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	id := domain.EndpointID(chi.URLParam(r, "id"))
	if err := s.Catalog.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "endpoint not found")
			return
		}
		s.Logger.Warn("delete_endpoint_error", zap.String("endpoint_id", string(id)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not delete")
		return
	}
	s.Monitor.Forget(id)
	s.Logger.Info("endpoint_deleted", zap.String("endpoint_id", string(id)))
	w.WriteHeader(http.StatusNoContent)
}

type checkView struct {
	EndpointID     domain.EndpointID `json:"endpoint_id"`
	Status         domain.Status     `json:"status"`
	Previous       domain.Status     `json:"previous"`
	Transition     string            `json:"transition"`
	Downtime       string            `json:"downtime"`
	HTTPStatus     int               `json:"http_status"`
	ResponseTimeMS *int64            `json:"response_time_ms"`
	Reason         string            `json:"reason"`
	CheckedAt      time.Time         `json:"checked_at"`
}

func (s *Server) handleCheckEndpoint(w http.ResponseWriter, r *http.Request) {
	e := s.loadEndpoint(w, r)
	if e == nil {
		return
	}
	obs, err := s.Cycles.ProbeNow(r.Context(), *e)
	if errors.Is(err, scheduler.ErrEndpointInFlight) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil && obs.At.IsZero() {
		s.Logger.Warn("probe_now_error", zap.String("endpoint_id", string(e.ID)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "check failed")
		return
	}
	if err != nil {
		// observed, but a store write failed; report the observation anyway
		s.Logger.Warn("probe_now_store_error", zap.String("endpoint_id", string(e.ID)), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, checkView{
		EndpointID:     e.ID,
		Status:         obs.Status,
		Previous:       obs.Previous,
		Transition:     obs.Transition.String(),
		Downtime:       obs.Action.String(),
		HTTPStatus:     obs.Result.StatusCode,
		ResponseTimeMS: obs.Result.ResponseTimeMS,
		Reason:         obs.Result.Reason,
		CheckedAt:      obs.At,
	})
}

type cycleView struct {
	Started    time.Time `json:"started"`
	DurationMS int64     `json:"duration_ms"`
	Endpoints  int       `json:"endpoints"`
	Probed     int       `json:"probed"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Down       int       `json:"down"`
}

func (s *Server) handleRunCycle(w http.ResponseWriter, r *http.Request) {
	// finish the cycle even if the caller goes away
	rep, err := s.Cycles.RunCycleOnce(context.WithoutCancel(r.Context()))
	if errors.Is(err, scheduler.ErrCycleInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.Logger.Warn("run_cycle_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "cycle failed")
		return
	}
	writeJSON(w, http.StatusOK, cycleView{
		Started:    rep.Started,
		DurationMS: rep.Duration.Milliseconds(),
		Endpoints:  rep.Endpoints,
		Probed:     rep.Probed,
		Skipped:    rep.Skipped,
		Failed:     rep.Failed,
		Down:       rep.Down,
	})
}
