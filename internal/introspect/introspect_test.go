package introspect

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nerfeatures/internal/features"
	"nerfeatures/internal/metrics"
)

func newTestModel(t *testing.T) *features.Model {
	t.Helper()
	m := features.NewModel()
	if err := m.ParseConfig([]string{"Form 1", "Tag 0"}); err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	return m
}

func TestHandleStatus_ReportsModelSummary(t *testing.T) {
	s := New(newTestModel(t), metrics.New(), "127.0.0.1", 0, "")
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var body struct {
		Status         string   `json:"status"`
		ProcessorCount int      `json:"processorCount"`
		Processors     []string `json:"processors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Status != "ready" {
		t.Errorf("status field: got %q, want ready", body.Status)
	}
	if body.ProcessorCount != 2 {
		t.Errorf("processorCount: got %d, want 2", body.ProcessorCount)
	}
}

func TestHandleMetrics_ReportsSnapshot(t *testing.T) {
	m := metrics.New()
	m.ProcessorsParsed.Store(5)
	s := New(newTestModel(t), m, "127.0.0.1", 0, "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var snap metrics.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if snap.Build.ProcessorsParsed != 5 {
		t.Errorf("ProcessorsParsed: got %d, want 5", snap.Build.ProcessorsParsed)
	}
}

func TestAuthMiddleware_RejectsMissingToken(t *testing.T) {
	s := New(newTestModel(t), metrics.New(), "127.0.0.1", 0, "secret")
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestAuthMiddleware_AcceptsMatchingToken(t *testing.T) {
	s := New(newTestModel(t), metrics.New(), "127.0.0.1", 0, "secret")
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}

func TestAuthMiddleware_RejectsWrongToken(t *testing.T) {
	s := New(newTestModel(t), metrics.New(), "127.0.0.1", 0, "secret")
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}
