package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jobpilot/jobpilot/internal/inbox"
	"github.com/jobpilot/jobpilot/internal/jobs"
	"github.com/jobpilot/jobpilot/internal/scoring"
	"github.com/jobpilot/jobpilot/internal/stats"
	"github.com/jobpilot/jobpilot/internal/storage"
	"github.com/jobpilot/jobpilot/internal/tailoring"

	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Server, *tailoring.Store, storage.Store) {
	t.Helper()

	tailoredStore, err := tailoring.NewStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("tailored store: %v", err)
	}
	appStore, err := storage.NewFSStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("app store: %v", err)
	}

	server := New(Config{
		Scorer:   scoring.NewEngine(nil, scoring.Config{}, zap.NewNop()),
		Scanner:  inbox.NewScanService(t.TempDir(), zap.NewNop()),
		Stats:    stats.NewService(appStore, zap.NewNop()),
		Tailored: tailoredStore,
	}, zap.NewNop())

	return server, tailoredStore, appStore
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestHealth(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}

func TestScoreEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)

	payload := `{"resume_text": "supply chain operations", "job_description": "supply chain operations role"}`
	req := httptest.NewRequest(http.MethodPost, "/api/score", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.App().Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if _, ok := body["score"]; !ok {
		t.Fatalf("response missing score: %v", body)
	}
	if _, ok := body["alignment_notes"]; !ok {
		t.Fatalf("response missing alignment notes: %v", body)
	}
}

func TestScoreEndpointRequiresJobDescription(t *testing.T) {
	server, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/score", strings.NewReader(`{"resume_text": "x"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.App().Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestScanEndpointWithoutCredentials(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := server.App().Test(httptest.NewRequest(http.MethodPost, "/api/scan", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing credentials, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	message, _ := body["error"].(string)
	if !strings.Contains(message, "Missing inbox credentials") {
		t.Fatalf("unexpected error message: %q", message)
	}
}

func TestStatsEndpoint(t *testing.T) {
	server, _, appStore := newTestServer(t)

	if err := appStore.SaveApplication(&jobs.Application{ID: "acme_planner", Status: "applied"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["total_applications"] != float64(1) || body["successful"] != float64(1) {
		t.Fatalf("unexpected stats: %v", body)
	}
}

func TestTailoredLifecycleEndpoints(t *testing.T) {
	server, tailoredStore, _ := newTestServer(t)

	engine := tailoring.NewEngine(nil, nil, tailoredStore, zap.NewNop())
	if _, err := engine.Tailor(context.Background(), &tailoring.Request{
		JobID:    "acme_planner",
		JobTitle: "Planner",
		Company:  "Acme",
	}); err != nil {
		t.Fatalf("tailor: %v", err)
	}

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/api/tailored", nil))
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	var records []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(records) != 1 || records[0]["status"] != "pending" {
		t.Fatalf("unexpected records: %v", records)
	}

	resp, err = server.App().Test(httptest.NewRequest(http.MethodPost, "/api/tailored/acme_planner/confirm", nil))
	if err != nil {
		t.Fatalf("confirm request: %v", err)
	}
	body := decodeBody(t, resp)
	if body["status"] != "confirmed" {
		t.Fatalf("expected confirmed, got %v", body)
	}

	// Discard after confirm is absorbed by the terminal state.
	resp, err = server.App().Test(httptest.NewRequest(http.MethodPost, "/api/tailored/acme_planner/discard", nil))
	if err != nil {
		t.Fatalf("discard request: %v", err)
	}
	body = decodeBody(t, resp)
	if body["status"] != "confirmed" {
		t.Fatalf("terminal state should absorb, got %v", body)
	}

	resp, err = server.App().Test(httptest.NewRequest(http.MethodPost, "/api/tailored/missing/confirm", nil))
	if err != nil {
		t.Fatalf("missing request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
