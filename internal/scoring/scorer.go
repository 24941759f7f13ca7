package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/jobpilot/jobpilot/internal/ai"
	"github.com/jobpilot/jobpilot/internal/util"

	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

const (
	hardMismatchCap     = 45
	defaultMaxLogLength = 200
)

// AlignmentNotes records what the deterministic adjustment layer saw.
type AlignmentNotes struct {
	InScopeHits        []string `json:"in_scope_hits" mapstructure:"in_scope_hits"`
	OutOfScopeHits     []string `json:"out_of_scope_hits" mapstructure:"out_of_scope_hits"`
	ResumeStrengthHits []string `json:"resume_strength_hits" mapstructure:"resume_strength_hits"`
	HardMismatch       bool     `json:"hard_mismatch" mapstructure:"hard_mismatch"`
}

// Analysis is the full scoring result for one (resume, job description) pair.
// Final score = clamp(base + adjustment, 0, 100), capped at 45 on a hard
// domain mismatch.
type Analysis struct {
	Score               int            `json:"score" mapstructure:"score"`
	BaseScore           int            `json:"base_score" mapstructure:"base_score"`
	AlignmentAdjustment int            `json:"alignment_adjustment" mapstructure:"alignment_adjustment"`
	MatchSummary        string         `json:"match_summary" mapstructure:"match_summary"`
	MissingKeywords     []string       `json:"missing_keywords" mapstructure:"missing_keywords"`
	StrongPoints        []string       `json:"strong_points" mapstructure:"strong_points"`
	SurvivalTweaks      []string       `json:"survival_tweaks" mapstructure:"survival_tweaks"`
	AlignmentNotes      AlignmentNotes `json:"alignment_notes" mapstructure:"alignment_notes"`
}

// AsData flattens the analysis into the opaque payload attached to an
// application record.
func (a *Analysis) AsData() map[string]any {
	raw, err := json.Marshal(a)
	if err != nil {
		return map[string]any{"score": a.Score}
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return map[string]any{"score": a.Score}
	}
	return data
}

// Config carries the scoring keyword sets. Empty slices fall back to the
// built-in defaults.
type Config struct {
	InScopeKeywords    []string
	OutOfScopeKeywords []string
	MaxLogLength       int
}

// Engine computes ATS-style match scores. The completer is optional; without
// one (or on any completer failure) the engine degrades to the token-overlap
// heuristic. Score never returns an error.
type Engine struct {
	completer ai.Completer
	inScope   []string
	outScope  []string
	maxLogLen int
	logger    *zap.Logger
}

// NewEngine builds a scoring engine. completer may be nil.
func NewEngine(completer ai.Completer, cfg Config, logger *zap.Logger) *Engine {
	inScope := cfg.InScopeKeywords
	if len(inScope) == 0 {
		inScope = defaultInScopeKeywords
	}

	outScope := cfg.OutOfScopeKeywords
	if len(outScope) == 0 {
		outScope = defaultOutOfScopeKeywords
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		completer: completer,
		inScope:   inScope,
		outScope:  outScope,
		maxLogLen: maxLogLen,
		logger:    logger,
	}
}

// Score analyses the resume against the job description. The result always
// has a score in [0, 100]; total backend failure yields the heuristic score
// with an explanatory summary.
func (e *Engine) Score(ctx context.Context, resumeText, jobDescription string) *Analysis {
	analysis := e.baseAnalysis(ctx, resumeText, jobDescription)
	e.applyAlignment(analysis, resumeText, jobDescription)
	return analysis
}

func (e *Engine) baseAnalysis(ctx context.Context, resumeText, jobDescription string) *Analysis {
	if e.completer == nil {
		return e.heuristicAnalysis(resumeText, jobDescription)
	}

	prompt := buildPrompt(resumeText, jobDescription)

	e.logger.Debug("requesting ats score",
		zap.String("model", e.completer.Model()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	raw, err := e.completer.Invoke(ctx, prompt)
	if err != nil {
		e.logger.Warn("completion failed, falling back to heuristic scoring", zap.Error(err))
		fallback := e.heuristicAnalysis(resumeText, jobDescription)
		fallback.MatchSummary = fmt.Sprintf("Completion backend unavailable, used heuristic scoring. Reason: %v", err)
		return fallback
	}

	e.logger.Debug("ats score response",
		zap.String("response_preview", util.TruncateForLog(raw, e.maxLogLen)),
	)

	data, err := ai.DecodePayload(raw)
	if err != nil {
		e.logger.Warn("unparseable completion payload, falling back to heuristic scoring", zap.Error(err))
		fallback := e.heuristicAnalysis(resumeText, jobDescription)
		fallback.MatchSummary = fmt.Sprintf("Completion payload unparseable, used heuristic scoring. Reason: %v", err)
		return fallback
	}

	return &Analysis{
		Score:           ai.CoerceInt(data["score"], 0),
		MatchSummary:    ai.CoerceString(data["match_summary"]),
		MissingKeywords: ai.CoerceStringSlice(data["missing_keywords"]),
		StrongPoints:    ai.CoerceStringSlice(data["strong_points"]),
		SurvivalTweaks:  ai.CoerceStringSlice(data["survival_tweaks"]),
	}
}

// heuristicAnalysis is the deliberately crude fallback: raw lowercase
// whitespace tokens, set intersection, doubled and capped at 100. No
// stemming, no stopwords.
func (e *Engine) heuristicAnalysis(resumeText, jobDescription string) *Analysis {
	resumeTokens := tokenize(resumeText)
	jdTokens := tokenize(jobDescription)

	overlap := 0
	for token := range jdTokens {
		if _, ok := resumeTokens[token]; ok {
			overlap++
		}
	}

	coverage := overlap * 2
	if coverage > 100 {
		coverage = 100
	}

	return &Analysis{
		Score:        coverage,
		MatchSummary: "Heuristic ATS estimate based on token overlap.",
		SurvivalTweaks: []string{
			"Use role-specific keywords from the job posting in your experience bullets.",
			"Quantify outcomes in operations/supply chain terms (cost, cycle time, fill rate).",
			"Place the exact role title in your headline if it matches your target role.",
		},
	}
}

// applyAlignment layers the deterministic domain adjustment on top of the
// base score, regardless of which backend produced it.
func (e *Engine) applyAlignment(analysis *Analysis, resumeText, jobDescription string) {
	resumeLower := strings.ToLower(resumeText)
	jdLower := strings.ToLower(jobDescription)

	inHits := keywordHits(jdLower, e.inScope)
	outHits := keywordHits(jdLower, e.outScope)
	resumeHits := keywordHits(resumeLower, e.inScope)

	adjustment := min(len(inHits)*3, 15)
	adjustment -= min(len(outHits)*8, 32)

	if len(resumeHits) > 0 && len(inHits) > 0 {
		adjustment += 5
	}

	hardMismatch := len(outHits) >= 2 && len(inHits) == 0

	score := analysis.Score + adjustment
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	if hardMismatch && score > hardMismatchCap {
		score = hardMismatchCap
	}

	analysis.BaseScore = analysis.Score
	analysis.AlignmentAdjustment = adjustment
	analysis.Score = score
	analysis.AlignmentNotes = AlignmentNotes{
		InScopeHits:        inHits,
		OutOfScopeHits:     outHits,
		ResumeStrengthHits: resumeHits,
		HardMismatch:       hardMismatch,
	}
}

func buildPrompt(resumeText, jobDescription string) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{RESUME}}", resumeText)
	return strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", jobDescription)
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(text)) {
		tokens[token] = struct{}{}
	}
	return tokens
}

func keywordHits(text string, keywords []string) []string {
	hits := make([]string, 0)
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			hits = append(hits, keyword)
		}
	}
	return hits
}
