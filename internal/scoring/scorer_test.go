package scoring

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubCompleter struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubCompleter) Invoke(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubCompleter) Model() string { return "stub-model" }

func TestScoreParsesCompletionResponse(t *testing.T) {
	stub := &stubCompleter{response: "```json\n{\"score\": 70, \"match_summary\": \"Solid operations background\", \"missing_keywords\": [\"s&op\"], \"strong_points\": [\"inventory\"], \"survival_tweaks\": [\"mention erp\"]}\n```"}
	engine := NewEngine(stub, Config{}, zap.NewNop())

	analysis := engine.Score(context.Background(),
		"supply chain operations inventory",
		"Operations Manager role covering supply chain planning and inventory",
	)

	if analysis.BaseScore != 70 {
		t.Fatalf("expected base score 70, got %d", analysis.BaseScore)
	}
	if analysis.MatchSummary != "Solid operations background" {
		t.Fatalf("unexpected summary: %q", analysis.MatchSummary)
	}
	if len(analysis.MissingKeywords) != 1 || analysis.MissingKeywords[0] != "s&op" {
		t.Fatalf("unexpected missing keywords: %v", analysis.MissingKeywords)
	}
	if analysis.Score <= analysis.BaseScore {
		t.Fatalf("expected positive alignment adjustment, got %d -> %d", analysis.BaseScore, analysis.Score)
	}
	if !strings.Contains(stub.lastPrompt, "JOB DESCRIPTION:") {
		t.Fatalf("expected prompt to carry the job description section")
	}
}

func TestScoreFallsBackOnCompleterError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("quota exhausted")}
	engine := NewEngine(stub, Config{}, zap.NewNop())

	analysis := engine.Score(context.Background(), "resume text", "job description text")

	if !strings.Contains(analysis.MatchSummary, "quota exhausted") {
		t.Fatalf("expected explanatory summary, got %q", analysis.MatchSummary)
	}
	if analysis.Score < 0 || analysis.Score > 100 {
		t.Fatalf("score out of range: %d", analysis.Score)
	}
}

func TestScoreFallsBackOnMalformedPayload(t *testing.T) {
	stub := &stubCompleter{response: "I cannot answer that."}
	engine := NewEngine(stub, Config{}, zap.NewNop())

	analysis := engine.Score(context.Background(), "a b c", "a b c")
	if !strings.Contains(analysis.MatchSummary, "unparseable") {
		t.Fatalf("expected unparseable-payload summary, got %q", analysis.MatchSummary)
	}
}

func TestHeuristicScoring(t *testing.T) {
	engine := NewEngine(nil, Config{}, zap.NewNop())

	analysis := engine.Score(context.Background(),
		"supply chain operations logistics",
		"supply chain operations warehouse",
	)

	// Three shared tokens doubled, plus min(3*3,15)=9 in-scope and +5
	// shared-keyword bonus.
	if analysis.BaseScore != 6 {
		t.Fatalf("expected heuristic base 6, got %d", analysis.BaseScore)
	}
	if analysis.AlignmentAdjustment != 14 {
		t.Fatalf("expected adjustment 14, got %d", analysis.AlignmentAdjustment)
	}
	if analysis.Score != 20 {
		t.Fatalf("expected final score 20, got %d", analysis.Score)
	}
}

func TestHardMismatchCapsScore(t *testing.T) {
	stub := &stubCompleter{response: `{"score": 95, "match_summary": "great"}`}
	engine := NewEngine(stub, Config{}, zap.NewNop())

	analysis := engine.Score(context.Background(),
		"operations resume with procurement experience",
		"Senior Software Engineer working on frontend systems",
	)

	if !analysis.AlignmentNotes.HardMismatch {
		t.Fatal("expected hard mismatch flag")
	}
	if analysis.Score > 45 {
		t.Fatalf("expected score capped at 45, got %d", analysis.Score)
	}
	if len(analysis.AlignmentNotes.OutOfScopeHits) != 2 {
		t.Fatalf("expected 2 out-of-scope hits, got %v", analysis.AlignmentNotes.OutOfScopeHits)
	}
}

func TestScoreClampedToHundred(t *testing.T) {
	stub := &stubCompleter{response: `{"score": 95}`}
	engine := NewEngine(stub, Config{}, zap.NewNop())

	analysis := engine.Score(context.Background(),
		"supply chain operations logistics procurement inventory warehouse",
		"supply chain operations logistics procurement inventory warehouse planning",
	)

	if analysis.Score != 100 {
		t.Fatalf("expected clamp at 100, got %d", analysis.Score)
	}
}

func TestScoreClampedToZero(t *testing.T) {
	stub := &stubCompleter{response: `{"score": 5}`}
	engine := NewEngine(stub, Config{}, zap.NewNop())

	analysis := engine.Score(context.Background(),
		"operations resume",
		"software engineer backend frontend full stack devops engineer role",
	)

	if analysis.Score != 0 {
		t.Fatalf("expected clamp at 0, got %d", analysis.Score)
	}
}
