package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimewatch/internal/domain"
	apimw "github.com/hamed0406/uptimewatch/internal/httpapi/middleware"
	"github.com/hamed0406/uptimewatch/internal/monitor"
	"github.com/hamed0406/uptimewatch/internal/probe"
	"github.com/hamed0406/uptimewatch/internal/repo/memory"
	"github.com/hamed0406/uptimewatch/internal/scheduler"
)

// ---- test helpers ----

type fakeChecker struct {
	out probe.Result
}

func (f *fakeChecker) Check(_ context.Context, _ string) probe.Result {
	// always return the same result so tests are deterministic
	return f.out
}

type env struct {
	ts     *httptest.Server
	store  *memory.Store
	engine *monitor.Engine
}

func setup(t *testing.T, chk probe.Checker, cycles CycleRunner) *env {
	t.Helper()
	log := zap.NewNop()
	store := memory.New()
	eng := monitor.New(log, store, store, chk, nil, monitor.Options{})
	if cycles == nil {
		cycles = scheduler.New(log, store, eng, scheduler.Options{Concurrency: 4})
	}

	srv := NewServer(log, store, store, eng, cycles)
	keys := apimw.Keys{
		Public: []string{"pub_test"},
		Admin:  []string{"adm_test"},
	}
	// very high rate limits to avoid flakiness in tests
	ts := httptest.NewServer(srv.Router(keys, nil, 10_000, 10_000, 10_000, 10_000))
	t.Cleanup(ts.Close)
	return &env{ts: ts, store: store, engine: eng}
}

func (e *env) do(t *testing.T, method, path, key, body string) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	}
	req, _ := http.NewRequest(method, e.ts.URL+path, rd)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, raw
}

func (e *env) create(t *testing.T, body string) domain.Endpoint {
	t.Helper()
	code, raw := e.do(t, http.MethodPost, "/api/endpoints", "adm_test", body)
	if code != http.StatusCreated {
		t.Fatalf("create: want 201, got %d: %s", code, raw)
	}
	var ep domain.Endpoint
	if err := json.Unmarshal(raw, &ep); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	return ep
}

func down500() probe.Result { return probe.Result{StatusCode: 500, Reason: "HTTP 500"} }

// ---- tests ----

func TestCreateEndpoint_OK_Duplicate_Invalid(t *testing.T) {
	e := setup(t, &fakeChecker{out: down500()}, nil)

	ep := e.create(t, `{"name":"Example","url":"https://EXAMPLE.com/","email":"ops@example.com"}`)
	if ep.URL != "https://example.com" || !ep.Active || ep.Status != domain.StatusUnknown {
		t.Fatalf("unexpected endpoint: %+v", ep)
	}

	cases := []struct {
		body string
		want int
	}{
		{`{"url":"https://example.com:443"}`, http.StatusConflict},
		{`{"url":"ftp://bad"}`, http.StatusBadRequest},
		{`{"name":"no url"}`, http.StatusBadRequest},
		{`{"url":"https://other.example","email":"not-an-email"}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if code, raw := e.do(t, http.MethodPost, "/api/endpoints", "adm_test", tc.body); code != tc.want {
			t.Errorf("POST %s: want %d, got %d: %s", tc.body, tc.want, code, raw)
		}
	}
}

func TestCreateEndpoint_DefaultsNameToHost(t *testing.T) {
	e := setup(t, &fakeChecker{}, nil)
	ep := e.create(t, `{"url":"https://status.example.org/health","is_active":false}`)
	if ep.Name != "status.example.org" || ep.Active {
		t.Fatalf("unexpected defaults: %+v", ep)
	}
}

func TestAuth_PublicCannotWrite(t *testing.T) {
	e := setup(t, &fakeChecker{}, nil)

	if code, _ := e.do(t, http.MethodPost, "/api/endpoints", "pub_test", `{"url":"https://a.example"}`); code != http.StatusForbidden {
		t.Fatalf("public key on admin route: want 403, got %d", code)
	}
	if code, _ := e.do(t, http.MethodGet, "/api/endpoints", "", ""); code != http.StatusUnauthorized {
		t.Fatalf("no key on public route: want 401, got %d", code)
	}
	if code, _ := e.do(t, http.MethodGet, "/api/endpoints", "adm_test", ""); code != http.StatusOK {
		t.Fatalf("admin key on public route: want 200, got %d", code)
	}
	if code, _ := e.do(t, http.MethodGet, "/healthz", "", ""); code != http.StatusOK {
		t.Fatalf("healthz should be open, got %d", code)
	}
}

func TestCycleThenReadViews(t *testing.T) {
	e := setup(t, &fakeChecker{out: down500()}, nil)
	ep := e.create(t, `{"url":"https://down.example"}`)

	code, raw := e.do(t, http.MethodPost, "/api/cycles", "adm_test", "")
	if code != http.StatusOK {
		t.Fatalf("cycle: want 200, got %d: %s", code, raw)
	}
	var rep cycleView
	_ = json.Unmarshal(raw, &rep)
	if rep.Probed != 1 || rep.Down != 1 {
		t.Fatalf("cycle report: %+v", rep)
	}

	code, raw = e.do(t, http.MethodGet, "/api/endpoints", "pub_test", "")
	if code != http.StatusOK {
		t.Fatalf("list: want 200, got %d", code)
	}
	var list []endpointView
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Status != domain.StatusDown {
		t.Fatalf("unexpected list: %s", raw)
	}
	if list[0].Stats.DowntimeCount != 1 || len(list[0].RecentDowntime) != 1 || !list[0].RecentDowntime[0].Open() {
		t.Fatalf("list missing downtime: %+v", list[0])
	}

	code, raw = e.do(t, http.MethodGet, "/api/endpoints/"+string(ep.ID)+"/ticks", "pub_test", "")
	var ticks []domain.Tick
	_ = json.Unmarshal(raw, &ticks)
	if code != http.StatusOK || len(ticks) != 1 || ticks[0].Status != domain.StatusDown {
		t.Fatalf("ticks: %d %s", code, raw)
	}

	code, raw = e.do(t, http.MethodGet, "/api/endpoints/"+string(ep.ID)+"/stats", "pub_test", "")
	var st domain.Stats
	_ = json.Unmarshal(raw, &st)
	if code != http.StatusOK || st.DowntimeCount != 1 || st.UptimePercentage > 100 {
		t.Fatalf("stats: %d %s", code, raw)
	}

	code, raw = e.do(t, http.MethodGet, "/api/endpoints/"+string(ep.ID)+"/downtime?limit=3", "pub_test", "")
	var rows []domain.DowntimeInterval
	_ = json.Unmarshal(raw, &rows)
	if code != http.StatusOK || len(rows) != 1 || rows[0].Reason != "HTTP 500" {
		t.Fatalf("downtime: %d %s", code, raw)
	}
	if code, _ := e.do(t, http.MethodGet, "/api/endpoints/"+string(ep.ID)+"/downtime?limit=0", "pub_test", ""); code != http.StatusBadRequest {
		t.Fatalf("bad limit: want 400, got %d", code)
	}

	code, raw = e.do(t, http.MethodGet, "/api/endpoints/"+string(ep.ID), "pub_test", "")
	var one endpointView
	_ = json.Unmarshal(raw, &one)
	if code != http.StatusOK || len(one.Ticks) != 1 {
		t.Fatalf("get: %d %s", code, raw)
	}
}

func TestGetUnknownEndpoint404(t *testing.T) {
	e := setup(t, &fakeChecker{}, nil)
	for _, p := range []string{"/api/endpoints/nope", "/api/endpoints/nope/stats", "/api/endpoints/nope/ticks"} {
		if code, _ := e.do(t, http.MethodGet, p, "pub_test", ""); code != http.StatusNotFound {
			t.Fatalf("GET %s: want 404, got %d", p, code)
		}
	}
}

func TestUpdateEndpoint(t *testing.T) {
	e := setup(t, &fakeChecker{}, nil)
	a := e.create(t, `{"url":"https://a.example"}`)
	e.create(t, `{"url":"https://b.example"}`)

	code, raw := e.do(t, http.MethodPut, "/api/endpoints/"+string(a.ID), "adm_test", `{"is_active":false,"name":"Alpha"}`)
	var got domain.Endpoint
	_ = json.Unmarshal(raw, &got)
	if code != http.StatusOK || got.Active || got.Name != "Alpha" || got.URL != "https://a.example" {
		t.Fatalf("pause: %d %s", code, raw)
	}

	if code, _ := e.do(t, http.MethodPut, "/api/endpoints/"+string(a.ID), "adm_test", `{"url":"https://B.example/"}`); code != http.StatusConflict {
		t.Fatalf("dup url on update: want 409, got %d", code)
	}
	if code, _ := e.do(t, http.MethodPut, "/api/endpoints/nope", "adm_test", `{"name":"x"}`); code != http.StatusNotFound {
		t.Fatalf("update unknown: want 404, got %d", code)
	}
}

func TestDeleteEndpointForgetsState(t *testing.T) {
	e := setup(t, &fakeChecker{out: down500()}, nil)
	ep := e.create(t, `{"url":"https://gone.example"}`)

	if code, _ := e.do(t, http.MethodPost, "/api/endpoints/"+string(ep.ID)+"/check", "adm_test", ""); code != http.StatusOK {
		t.Fatalf("check: want 200, got %d", code)
	}
	if len(e.engine.RecentTicks(ep.ID)) != 1 {
		t.Fatalf("expected a tick before delete")
	}

	if code, _ := e.do(t, http.MethodDelete, "/api/endpoints/"+string(ep.ID), "adm_test", ""); code != http.StatusNoContent {
		t.Fatalf("delete: want 204, got %d", code)
	}
	if len(e.engine.RecentTicks(ep.ID)) != 0 || e.engine.CachedStatus(ep.ID) != domain.StatusUnknown {
		t.Fatalf("in-memory state not forgotten")
	}
	if code, _ := e.do(t, http.MethodDelete, "/api/endpoints/"+string(ep.ID), "adm_test", ""); code != http.StatusNotFound {
		t.Fatalf("second delete: want 404, got %d", code)
	}
}

func TestCheckEndpointReportsObservation(t *testing.T) {
	ms := int64(9)
	e := setup(t, &fakeChecker{out: probe.Result{Up: true, StatusCode: 204, ResponseTimeMS: &ms}}, nil)
	ep := e.create(t, `{"url":"https://up.example"}`)

	code, raw := e.do(t, http.MethodPost, "/api/endpoints/"+string(ep.ID)+"/check", "adm_test", "")
	var v checkView
	_ = json.Unmarshal(raw, &v)
	if code != http.StatusOK || v.Status != domain.StatusUp || v.HTTPStatus != 204 || v.Previous != domain.StatusUnknown {
		t.Fatalf("check: %d %s", code, raw)
	}
	if v.ResponseTimeMS == nil || *v.ResponseTimeMS != 9 {
		t.Fatalf("latency not reported: %s", raw)
	}
}

type busyCycles struct{}

func (busyCycles) RunCycleOnce(context.Context) (scheduler.CycleReport, error) {
	return scheduler.CycleReport{}, scheduler.ErrCycleInProgress
}

func (busyCycles) ProbeNow(context.Context, domain.Endpoint) (monitor.Observation, error) {
	return monitor.Observation{}, scheduler.ErrEndpointInFlight
}

func TestCyclesConflictWhenBusy(t *testing.T) {
	e := setup(t, &fakeChecker{}, busyCycles{})
	ep := e.create(t, `{"url":"https://busy.example"}`)

	if code, _ := e.do(t, http.MethodPost, "/api/cycles", "adm_test", ""); code != http.StatusConflict {
		t.Fatalf("cycle in progress: want 409, got %d", code)
	}
	if code, _ := e.do(t, http.MethodPost, "/api/endpoints/"+string(ep.ID)+"/check", "adm_test", ""); code != http.StatusConflict {
		t.Fatalf("endpoint in flight: want 409, got %d", code)
	}
}
