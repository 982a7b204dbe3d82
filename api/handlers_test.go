package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/tadeyemo32/vanguard-staffing/funnel"
	"github.com/tadeyemo32/vanguard-staffing/health"
	"github.com/tadeyemo32/vanguard-staffing/internal/config"
	"github.com/tadeyemo32/vanguard-staffing/matcher"
	"github.com/tadeyemo32/vanguard-staffing/services"
)

type testServer struct {
	router *gin.Engine
	store  *services.Store
	token  string
}

func newTestServer(t *testing.T, cfg config.Config) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := services.OpenDB(":memory:", false)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store := services.NewStore(db, time.Minute)

	templates, err := funnel.DefaultTemplates()
	if err != nil {
		t.Fatalf("DefaultTemplates: %v", err)
	}
	if _, err := store.SeedTemplates(context.Background(), templates); err != nil {
		t.Fatalf("SeedTemplates: %v", err)
	}

	auth := services.NewTokenAuth("test-secret")
	token, err := auth.GenerateJWT("dana")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	planner := services.NewPlanner(store, store, services.PlannerConfig{MatchTimeout: 5 * time.Second, Parallel: 2})
	r := gin.New()
	SetupRoutes(r, NewHandler(planner, templates, auth), cfg)
	return &testServer{router: r, store: store, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) authed(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, method, path, body, "Authorization", "Bearer "+s.token)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t, config.Config{})
	w := s.do(t, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	w = s.do(t, http.MethodGet, "/api/health", nil, "X-Request-ID", "abc-123")
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want caller's", got)
	}
}

func TestBackendKey(t *testing.T) {
	hash, err := services.HashKey("hashed-key")
	if err != nil {
		t.Fatalf("HashKey: %v", err)
	}
	tests := []struct {
		name   string
		cfg    config.Config
		header string
		want   int
	}{
		{"no key configured", config.Config{}, "", http.StatusOK},
		{"plain key ok", config.Config{APIKey: "k"}, "k", http.StatusOK},
		{"plain key wrong", config.Config{APIKey: "k"}, "nope", http.StatusUnauthorized},
		{"hash ok", config.Config{APIKeyHash: hash}, "hashed-key", http.StatusOK},
		{"hash missing header", config.Config{APIKeyHash: hash}, "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.cfg)
			w := s.do(t, http.MethodGet, "/api/health", nil, "X-Vanguard-Key", tt.header)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestCalculate(t *testing.T) {
	s := newTestServer(t, config.Config{})

	body := map[string]any{
		"target_hires": 4,
		"target_date":  "2026-01-30",
		"stages": []map[string]any{
			{"name": "Sourcing", "order": 1, "conversion_rate": 50, "tat_days": 2},
			{"name": "Screening", "order": 2, "conversion_rate": 60, "tat_days": 3},
			{"name": "Tech", "order": 3, "conversion_rate": 70, "tat_days": 5},
			{"name": "Client", "order": 4, "conversion_rate": 80, "tat_days": 7},
			{"name": "Staffed", "order": 5, "conversion_rate": 100, "tat_days": 1},
			{"name": "Rejected", "order": -1, "conversion_rate": 0},
		},
	}
	w := s.do(t, http.MethodPost, "/api/funnel/calculate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	got := decode[struct {
		Requirements []funnel.StageRequirement `json:"requirements"`
	}](t, w)

	var needed []int
	for _, r := range got.Requirements {
		needed = append(needed, r.CandidatesNeeded)
	}
	if diff := cmp.Diff([]int{28, 14, 8, 5, 4}, needed); diff != "" {
		t.Errorf("needed mismatch (-want +got):\n%s", diff)
	}
	if d := got.Requirements[0].NeededByDate; !d.Equal(funnel.NewDate(2026, time.January, 12)) {
		t.Errorf("Sourcing needed by %s, want 2026-01-12", d)
	}
}

func TestCalculate_Errors(t *testing.T) {
	s := newTestServer(t, config.Config{})
	exitsOnly := []map[string]any{{"name": "Rejected", "order": -1, "conversion_rate": 0}}

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"no plannable stages", map[string]any{"target_hires": 2, "target_date": "2026-01-30", "stages": exitsOnly}, http.StatusUnprocessableEntity},
		{"missing date", map[string]any{"target_hires": 2, "stages": exitsOnly}, http.StatusBadRequest},
		{"bad date", map[string]any{"target_hires": 2, "target_date": "30 Jan", "stages": exitsOnly}, http.StatusBadRequest},
		{"unknown pipeline", map[string]any{"target_hires": 2, "target_date": "2026-01-30", "pipeline_id": 999}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/funnel/calculate", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestClassify(t *testing.T) {
	s := newTestServer(t, config.Config{})
	w := s.do(t, http.MethodPost, "/api/health/classify", map[string]any{
		"actual": 4, "required": 5, "needed_by": "2026-02-01", "today": "2026-01-20",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if got := decode[health.StageHealth](t, w); got.Color != health.Amber {
		t.Errorf("color = %s, want Amber", got.Color)
	}
}

func TestPipelinePerformance(t *testing.T) {
	s := newTestServer(t, config.Config{})
	w := s.do(t, http.MethodGet, "/api/pipelines/1/performance?industry=Sales", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	got := decode[struct {
		Metrics         funnel.PipelineMetrics  `json:"metrics"`
		Recommendations []funnel.Recommendation `json:"recommendations"`
	}](t, w)
	if got.Metrics.StageCount == 0 {
		t.Error("empty metrics")
	}

	if w := s.do(t, http.MethodGet, "/api/pipelines/abc/performance", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d", w.Code)
	}
}

func TestFromTemplate(t *testing.T) {
	s := newTestServer(t, config.Config{})

	w := s.authed(t, http.MethodPost, "/api/pipelines/from-template", map[string]any{"template": "fast track sales", "name": "Sales Copy"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	w = s.authed(t, http.MethodPost, "/api/pipelines/from-template", map[string]any{"template": "fast track sales", "name": "Sales Copy"})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want 409", w.Code)
	}
	w = s.authed(t, http.MethodPost, "/api/pipelines/from-template", map[string]any{"template": "nope"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown template: status = %d, want 404", w.Code)
	}
	w = s.do(t, http.MethodPost, "/api/pipelines/from-template", map[string]any{"template": "fast track sales"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}
}

func TestPlanLifecycle(t *testing.T) {
	s := newTestServer(t, config.Config{})
	ctx := context.Background()

	w := s.authed(t, http.MethodPost, "/api/plans", map[string]any{"plan_name": "Q1 Hiring", "client": "Acme", "owner": "mallory"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create plan: %d %s", w.Code, w.Body.String())
	}
	plan := decode[struct {
		ID        uint   `json:"ID"`
		CreatedBy string `json:"created_by"`
	}](t, w)
	if plan.CreatedBy != "dana" {
		t.Errorf("owner = %q, want token subject dana", plan.CreatedBy)
	}

	w = s.authed(t, http.MethodPost, fmt.Sprintf("/api/plans/%d/roles", plan.ID), map[string]any{
		"role": "Backend Engineer", "pipeline_id": 1, "target_hires": 4, "target_date": "2026-01-30",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add role: %d %s", w.Code, w.Body.String())
	}
	role := decode[struct {
		ID uint `json:"ID"`
	}](t, w)

	var rows []services.CandidateRow
	for i := 0; i < 20; i++ {
		rows = append(rows, services.CandidateRow{
			ExternalID: fmt.Sprintf("c-%d", i), Client: "Acme", PlanName: "Q1 Hiring",
			StaffingRole: "Backend Engineer", Role: "Backend Engineer", Owner: "dana", Status: "Initial Screening",
		})
	}
	if _, err := s.store.ImportCandidates(ctx, rows); err != nil {
		t.Fatalf("ImportCandidates: %v", err)
	}

	base := fmt.Sprintf("/api/plans/%d/roles/%d", plan.ID, role.ID)
	w = s.authed(t, http.MethodPost, base+"/generate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, base+"/reconcile?today=2026-01-10&cumulative=false", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reconcile: %d %s", w.Code, w.Body.String())
	}
	view := decode[services.RoleView](t, w)
	if len(view.Stages) != 5 {
		t.Fatalf("got %d stages", len(view.Stages))
	}
	first := view.Stages[0]
	if first.Actuals.ActiveCount != 20 || first.Health == nil || first.Health.Color != health.Amber {
		t.Errorf("Initial Screening = %+v", first)
	}
	if view.Overall != health.Red {
		t.Errorf("overall = %s, want Red", view.Overall)
	}

	w = s.do(t, http.MethodGet, base+"/history", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history: %d %s", w.Code, w.Body.String())
	}
	history := decode[[]services.SnapshotEntry](t, w)
	if len(history) != 2 || history[0].Kind != services.SnapshotReconciled || history[1].Kind != services.SnapshotRequirements {
		t.Errorf("history kinds = %+v", history)
	}

	if w := s.do(t, http.MethodGet, fmt.Sprintf("/api/plans/%d/roles/999/reconcile", plan.ID), nil); w.Code != http.StatusNotFound {
		t.Errorf("missing role: status = %d, want 404", w.Code)
	}
	if w := s.do(t, http.MethodGet, base+"/reconcile?today=tomorrow", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad today: status = %d, want 400", w.Code)
	}
}

func TestCandidateCount(t *testing.T) {
	s := newTestServer(t, config.Config{})
	ctx := context.Background()
	if _, err := s.store.CreatePlan(ctx, "Q1 Hiring", "Acme", "dana"); err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	_, err := s.store.ImportCandidates(ctx, []services.CandidateRow{
		{ExternalID: "a", Client: "Acme", PlanName: "Q1 Hiring", StaffingRole: "QA", Role: "QA", Status: "Selected"},
		{ExternalID: "b", Client: "Acme", PlanName: "Q1 Hiring", StaffingRole: "QA", Role: "QA", Status: "Rejected"},
	})
	if err != nil {
		t.Fatalf("ImportCandidates: %v", err)
	}

	w := s.do(t, http.MethodGet, "/api/candidates/count?client=Acme&plan=Q1+Hiring&role=QA&stage=Final+Selection&cumulative=false", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	res := decode[matcher.CountResult](t, w)
	if res.Count != 1 || res.MatchLevel != matcher.LevelExact {
		t.Errorf("count = %+v", res)
	}

	w = s.do(t, http.MethodGet, "/api/candidates/count?client=Acme&plan=Q1+Hiring&role=QA&type=rejected", nil)
	if res := decode[matcher.CountResult](t, w); res.Count != 1 {
		t.Errorf("rejected = %+v", res)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"client=Globex&role=QA&stage=Staffed", http.StatusNotFound},
		{"client=Acme&role=QA&stage=Nowhere", http.StatusBadRequest},
		{"client=Acme&role=QA&type=sideways", http.StatusBadRequest},
		{"role=QA", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if w := s.do(t, http.MethodGet, "/api/candidates/count?"+tt.query, nil); w.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.query, w.Code, tt.want)
		}
	}

	w = s.do(t, http.MethodGet, "/api/candidates/quality", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("quality: %d", w.Code)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", services.ErrPlanNotFound), http.StatusNotFound},
		{funnel.ErrNoPlannableStages, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: boom", matcher.ErrDataSourceUnavailable), http.StatusBadGateway},
		{matcher.ErrClientNotResolved, http.StatusNotFound},
		{funnel.ErrInvalidTarget, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
