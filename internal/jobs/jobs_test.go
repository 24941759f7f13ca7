package jobs

import "testing"

func TestDeriveID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		company string
		role    string
		expect  string
	}{
		{
			name:    "lowercases and underscores",
			company: "Acme Corp",
			role:    "Supply Chain Manager",
			expect:  "acme_corp_supply_chain_manager",
		},
		{
			name:    "already canonical",
			company: "botworks",
			role:    "planner",
			expect:  "botworks_planner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DeriveID(tt.company, tt.role); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestDeriveIDFallsBackToRandom(t *testing.T) {
	first := DeriveID("", "")
	second := DeriveID("", "")
	if first == "" || first == second {
		t.Fatalf("expected unique fallback ids, got %q and %q", first, second)
	}
}

func TestNewApplication(t *testing.T) {
	posting := &Posting{Role: "Operations Manager", Company: "MockCorp", Location: "Remote"}
	app := NewApplication(posting, StatusApplied, "linkedin")

	if app.ID != "mockcorp_operations_manager" {
		t.Fatalf("unexpected id: %q", app.ID)
	}
	if app.Status != StatusApplied || app.Platform != "linkedin" {
		t.Fatalf("unexpected record: %+v", app)
	}
	if app.Timestamp == "" {
		t.Fatal("expected timestamp to be set")
	}
}

func TestDecodeData(t *testing.T) {
	app := &Application{ApplicationData: map[string]any{"score": 83, "match_summary": "good fit"}}

	var payload struct {
		Score        int    `mapstructure:"score"`
		MatchSummary string `mapstructure:"match_summary"`
	}
	if err := app.DecodeData(&payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Score != 83 || payload.MatchSummary != "good fit" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}
