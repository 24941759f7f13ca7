package tailoring

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jobpilot/jobpilot/internal/scoring"

	"go.uber.org/zap"
)

type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Invoke(context.Context, string) (string, error) {
	return s.response, s.err
}

func (s *stubCompleter) Model() string { return "stub-model" }

type stubRenderer struct {
	pdf []byte
	err error
}

func (s *stubRenderer) RenderPDF(string, string) ([]byte, error) {
	return s.pdf, s.err
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func testRequest() *Request {
	return &Request{
		JobID:          "acme_supply_chain_manager",
		JobTitle:       "Supply Chain Manager",
		Company:        "Acme",
		JobDescription: "Own S&OP and vendor management.",
		ResumeText:     "Operations leader with ERP experience.",
		Analysis: &scoring.Analysis{
			Score:           78,
			MissingKeywords: []string{"s&op", "vendor management"},
			SurvivalTweaks:  []string{"Mention S&OP cadence ownership."},
		},
	}
}

func TestTailorWithCompleter(t *testing.T) {
	store := newTestStore(t)
	stub := &stubCompleter{response: `{"tailored_resume": "## Professional Summary\n- S&OP operations leader", "interview_highlights": ["Walk through your S&OP cadence", "Quantify vendor savings"]}`}
	engine := NewEngine(stub, &stubRenderer{pdf: []byte("%PDF-fake")}, store, zap.NewNop())

	record, err := engine.Tailor(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("tailor: %v", err)
	}

	if record.Status != StatusPending {
		t.Fatalf("expected pending, got %q", record.Status)
	}
	if record.ATSScore != 78 {
		t.Fatalf("expected score 78, got %d", record.ATSScore)
	}
	if record.PDF == "" {
		t.Fatal("expected pdf artifact")
	}

	yamlRaw, err := os.ReadFile(record.TailoredYAML)
	if err != nil {
		t.Fatalf("read tailored yaml: %v", err)
	}
	if !strings.Contains(string(yamlRaw), "_tailored: true") {
		t.Fatalf("tailored yaml missing marker:\n%s", yamlRaw)
	}
	if !strings.Contains(string(yamlRaw), "S&OP operations leader") {
		t.Fatalf("tailored yaml missing rewritten text:\n%s", yamlRaw)
	}

	highlights, err := os.ReadFile(record.Highlights)
	if err != nil {
		t.Fatalf("read highlights: %v", err)
	}
	if !strings.Contains(string(highlights), "INTERVIEW PREPARATION GUIDE") {
		t.Fatal("highlights missing header")
	}
	if !strings.Contains(string(highlights), "1. Walk through your S&OP cadence") {
		t.Fatalf("highlights missing talking point:\n%s", highlights)
	}
}

func TestTailorFallsBackOnCompleterError(t *testing.T) {
	store := newTestStore(t)
	engine := NewEngine(&stubCompleter{err: errors.New("backend down")}, nil, store, zap.NewNop())

	record, err := engine.Tailor(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("tailor: %v", err)
	}

	yamlRaw, err := os.ReadFile(record.TailoredYAML)
	if err != nil {
		t.Fatalf("read tailored yaml: %v", err)
	}
	if !strings.Contains(string(yamlRaw), "Core Competencies (ATS-Enhanced)") {
		t.Fatalf("expected rule-based competencies section:\n%s", yamlRaw)
	}
	if record.PDF != "" {
		t.Fatal("no renderer, no pdf expected")
	}
}

func TestDiscardDeletesPDFKeepsYAML(t *testing.T) {
	store := newTestStore(t)
	engine := NewEngine(nil, &stubRenderer{pdf: []byte("%PDF-fake")}, store, zap.NewNop())

	record, err := engine.Tailor(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("tailor: %v", err)
	}
	pdfPath := record.PDF

	discarded, err := store.Discard(record.JobID)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	if discarded.Status != StatusDiscarded {
		t.Fatalf("expected discarded, got %q", discarded.Status)
	}
	if discarded.PDF != "" {
		t.Fatal("pdf path should be cleared")
	}
	if _, err := os.Stat(pdfPath); !os.IsNotExist(err) {
		t.Fatal("pdf file should be deleted")
	}
	if _, err := os.Stat(discarded.TailoredYAML); err != nil {
		t.Fatalf("yaml artifact should survive discard: %v", err)
	}
}

func TestLifecycleTerminalStatesAbsorb(t *testing.T) {
	store := newTestStore(t)
	engine := NewEngine(nil, nil, store, zap.NewNop())

	record, err := engine.Tailor(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("tailor: %v", err)
	}

	if _, err := store.Discard(record.JobID); err != nil {
		t.Fatalf("discard: %v", err)
	}

	// Confirm after discard must not resurrect the record.
	after, err := store.Confirm(record.JobID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if after.Status != StatusDiscarded {
		t.Fatalf("expected discarded to stick, got %q", after.Status)
	}

	// Repeated discard stays a no-op.
	again, err := store.Discard(record.JobID)
	if err != nil {
		t.Fatalf("second discard: %v", err)
	}
	if again.Status != StatusDiscarded {
		t.Fatalf("expected discarded, got %q", again.Status)
	}
}

func TestStoreListAndLoad(t *testing.T) {
	store := newTestStore(t)
	engine := NewEngine(nil, nil, store, zap.NewNop())

	first := testRequest()
	second := testRequest()
	second.JobID = "globex_logistics_manager"
	second.Company = "Globex"

	for _, req := range []*Request{first, second} {
		if _, err := engine.Tailor(context.Background(), req); err != nil {
			t.Fatalf("tailor %s: %v", req.JobID, err)
		}
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].JobID != "acme_supply_chain_manager" {
		t.Fatalf("expected sorted order, got %v", records[0].JobID)
	}

	loaded, err := store.Load("globex_logistics_manager")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Company != "Globex" {
		t.Fatalf("unexpected company %q", loaded.Company)
	}

	if _, err := store.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Stray files in the root are ignored by List.
	if err := os.WriteFile(filepath.Join(store.root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	records, err = store.List()
	if err != nil || len(records) != 2 {
		t.Fatalf("list after stray file: %v %d", err, len(records))
	}
}
