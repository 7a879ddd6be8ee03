package reporthandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"speakup/internal/domain/audit"
	"speakup/internal/domain/auth"
	"speakup/internal/domain/report"
	"speakup/internal/platform/crypto"
	trackhandler "speakup/internal/transport/http/handlers/track"
	"speakup/internal/transport/http/middleware"
)

const (
	testJWTSecret = "handler-test-secret"
	testDataKey   = "0f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c4b5a69788796a5b4c3d2e1f0"
	testIDSecret  = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
)

type memStore struct {
	reports map[uuid.UUID]*report.Report
	notes   map[uuid.UUID][]report.InvestigationNote
	logs    []audit.Entry
}

func newMemStore() *memStore {
	return &memStore{
		reports: map[uuid.UUID]*report.Report{},
		notes:   map[uuid.UUID][]report.InvestigationNote{},
	}
}

func (s *memStore) CreateReport(_ context.Context, r *report.Report) error {
	for _, existing := range s.reports {
		if existing.AnonymousID == r.AnonymousID {
			return report.ErrDuplicateAnonymousID
		}
	}
	clone := *r
	s.reports[r.ID] = &clone
	return nil
}

func (s *memStore) GetReportByID(_ context.Context, id uuid.UUID) (*report.Report, error) {
	r, ok := s.reports[id]
	if !ok {
		return nil, report.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (s *memStore) GetReportByAnonymousID(_ context.Context, anonymousID string) (*report.Report, error) {
	for _, r := range s.reports {
		if r.AnonymousID == anonymousID {
			clone := *r
			return &clone, nil
		}
	}
	return nil, report.ErrNotFound
}

func (s *memStore) UpdateReportStatus(_ context.Context, r *report.Report, expected report.Status) error {
	stored, ok := s.reports[r.ID]
	if !ok {
		return report.ErrNotFound
	}
	if stored.Status != expected {
		return report.ErrConflict
	}
	clone := *r
	s.reports[r.ID] = &clone
	return nil
}

func (s *memStore) AppendNote(_ context.Context, note *report.InvestigationNote) error {
	s.notes[note.ReportID] = append(s.notes[note.ReportID], *note)
	return nil
}

func (s *memStore) ListNotes(_ context.Context, reportID uuid.UUID) ([]report.InvestigationNote, error) {
	return s.notes[reportID], nil
}

func (s *memStore) CountByStatus(_ context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, r := range s.reports {
		out[string(r.Status)]++
	}
	return out, nil
}

func (s *memStore) CountBySeverity(_ context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, r := range s.reports {
		out[string(r.Severity)]++
	}
	return out, nil
}

func (s *memStore) CountByCategory(_ context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, r := range s.reports {
		out[string(r.Category)]++
	}
	return out, nil
}

func (s *memStore) AppendAccessLog(_ context.Context, entry audit.Entry) error {
	entry.Seq = int64(len(s.logs) + 1)
	s.logs = append(s.logs, entry)
	return nil
}

func (s *memStore) ListAccessLogs(_ context.Context, reportID uuid.UUID, limit, offset int) ([]audit.Entry, error) {
	var out []audit.Entry
	for i := len(s.logs) - 1; i >= 0; i-- {
		if s.logs[i].ReportID == reportID {
			out = append(out, s.logs[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestRouter(t *testing.T) (http.Handler, *memStore) {
	t.Helper()

	vault, err := crypto.New(testDataKey)
	if err != nil {
		t.Fatalf("crypto.New: %v", err)
	}
	ids, err := report.NewIDGenerator(testIDSecret)
	if err != nil {
		t.Fatalf("NewIDGenerator: %v", err)
	}

	store := newMemStore()
	trail := audit.NewTrail(store, filepath.Join(t.TempDir(), "audit.jsonl"))
	service := report.NewService(store, vault, trail, ids)
	service.StorageDir = t.TempDir()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(testJWTSecret))
	NewHandler(service).RegisterRoutes(router)
	trackhandler.NewHandler(service).RegisterRoutes(router)
	return router, store
}

func bearerFor(t *testing.T, level uint8) string {
	t.Helper()
	token, err := auth.GenerateToken(testJWTSecret, auth.Claims{
		UserID: fmt.Sprintf("u-%d", level), DisplayName: "Tester", Level: level,
	}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return "Bearer " + token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, router http.Handler, method, path, bearer string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope from %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func TestSubmitAndTrackFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/reports", "", map[string]any{
		"category":    "safety",
		"title":       "Blocked fire exit",
		"content":     "the east exit is blocked by pallets",
		"isAnonymous": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body.String())
	}

	var submitted struct {
		AnonymousID           string `json:"anonymousId"`
		Severity              string `json:"severity"`
		EstimatedResponseTime string `json:"estimatedResponseTime"`
	}
	if err := json.Unmarshal(env.Data, &submitted); err != nil {
		t.Fatalf("decode submit data: %v", err)
	}
	if submitted.Severity != "high" {
		t.Errorf("severity = %s, want high for a safety report", submitted.Severity)
	}

	rec, env = doJSON(t, router, http.MethodGet, "/track/"+submitted.AnonymousID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("track status = %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(string(env.Data), "Blocked fire exit") {
		t.Errorf("tracking response leaks the title: %s", env.Data)
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/track/garbage", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed token status = %d, want 400", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/track/ANON-2026-XXXXXX", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown token status = %d, want 404", rec.Code)
	}
}

func TestDetailRequiresAuthAndClearance(t *testing.T) {
	router, store := newTestRouter(t)

	_, env := doJSON(t, router, http.MethodPost, "/reports", "", map[string]any{
		"category": "safety", "title": "t", "content": "someone brought a weapon", "isAnonymous": true,
	})
	var submitted struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &submitted); err != nil {
		t.Fatalf("decode submit data: %v", err)
	}

	rec, _ := doJSON(t, router, http.MethodGet, "/reports/"+submitted.ID, "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated detail = %d, want 401", rec.Code)
	}

	// critical severity is above the investigate tier's ceiling
	rec, env = doJSON(t, router, http.MethodGet, "/reports/"+submitted.ID, bearerFor(t, 3), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("over-ceiling detail = %d, want 404, body %s", rec.Code, rec.Body.String())
	}

	rec, env = doJSON(t, router, http.MethodGet, "/reports/"+submitted.ID, bearerFor(t, 7), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("top-tier detail = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(string(env.Data), `"confidential"`) {
		t.Errorf("top-tier detail missing confidential block: %s", env.Data)
	}

	found := false
	for _, entry := range store.logs {
		if entry.Action == audit.ActionViewed && strings.Contains(string(entry.Detail), "denied") {
			found = true
		}
	}
	if !found {
		t.Error("denied view not audited")
	}
}

func TestStatusRouteRunsLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	_, env := doJSON(t, router, http.MethodPost, "/reports", "", map[string]any{
		"category": "other", "title": "t", "content": "c", "isAnonymous": true,
	})
	var submitted struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &submitted); err != nil {
		t.Fatalf("decode submit data: %v", err)
	}

	rec, _ := doJSON(t, router, http.MethodPost, "/reports/"+submitted.ID+"/status", bearerFor(t, 3), map[string]any{
		"status": "triaging",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("triaging status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec, env = doJSON(t, router, http.MethodPost, "/reports/"+submitted.ID+"/status", bearerFor(t, 3), map[string]any{
		"status": "resolved", "resolutionSummary": "done",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid edge status = %d, want 422, body %s", rec.Code, rec.Body.String())
	}
	if env.Error == nil || env.Error.Code != "invalid_transition" {
		t.Errorf("error envelope = %+v", env.Error)
	}
}

func TestStatsRouteGated(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/reports/stats", bearerFor(t, 1), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("below-tier stats = %d, want 403", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/reports/stats", bearerFor(t, 2), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats = %d, want 200", rec.Code)
	}
}
