package stats

import (
	"testing"

	"github.com/jobpilot/jobpilot/internal/jobs"
	"github.com/jobpilot/jobpilot/internal/storage"

	"go.uber.org/zap"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		status string
		want   Outcome
	}{
		{"applied", OutcomeSuccess},
		{"applied_dry_run", OutcomeSuccess},
		{"submitted", OutcomeSuccess},
		{"pipeline_confirmed", OutcomeUnknown},
		{"interview scheduled", OutcomeSuccess},
		{"failed", OutcomeFailure},
		{"rejected", OutcomeFailure},
		{"applied but later declined", OutcomeFailure},
		{"pending review", OutcomeUnknown},
		{"", OutcomeUnknown},
	}

	for _, tc := range cases {
		if got := Classify(tc.status); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestCollectBucketsRecords(t *testing.T) {
	store, err := storage.NewFSStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	records := []*jobs.Application{
		{ID: "acme_planner", Status: "applied"},
		{ID: "globex_buyer", Status: "failed"},
		{ID: "initech_analyst", Status: "pending review"},
	}
	for _, rec := range records {
		if err := store.SaveApplication(rec); err != nil {
			t.Fatalf("save %s: %v", rec.ID, err)
		}
	}

	summary, err := NewService(store, zap.NewNop()).Collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	if summary.Total != 3 {
		t.Fatalf("expected 3 records, got %d", summary.Total)
	}
	if summary.Successful != 1 || summary.Failed != 1 || summary.Unknown != 1 {
		t.Fatalf("unexpected buckets: %+v", summary)
	}
	if summary.SuccessRate < 33.2 || summary.SuccessRate > 33.4 {
		t.Fatalf("unexpected success rate %f", summary.SuccessRate)
	}
	if summary.ByStatus["applied"] != 1 || summary.ByStatus["pending review"] != 1 {
		t.Fatalf("unexpected by_status: %v", summary.ByStatus)
	}
}

func TestCollectEmptyStore(t *testing.T) {
	store, err := storage.NewFSStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	summary, err := NewService(store, zap.NewNop()).Collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if summary.Total != 0 || summary.SuccessRate != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}
