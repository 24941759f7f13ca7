package tailoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "embed"

	"github.com/jobpilot/jobpilot/internal/ai"
	"github.com/jobpilot/jobpilot/internal/render"
	"github.com/jobpilot/jobpilot/internal/scoring"

	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

const jobDescriptionExcerptLimit = 3000

// Request carries everything needed to tailor the base resume for one role.
type Request struct {
	JobID          string
	JobTitle       string
	Company        string
	JobDescription string
	ResumeText     string
	// BaseData is the parsed base resume YAML, copied into the tailored
	// artifact alongside the rewritten text. May be nil.
	BaseData map[string]any
	Analysis *scoring.Analysis
}

// Engine produces job-specific resume variants. With a completer it rewrites
// the resume through the LLM; without one, or on any LLM failure, it falls
// back to appending the missing keywords as a competencies section. PDF
// rendering is best effort.
type Engine struct {
	completer ai.Completer
	renderer  render.Renderer
	store     *Store
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine builds a tailoring engine. completer and renderer may be nil.
func NewEngine(completer ai.Completer, renderer render.Renderer, store *Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		completer: completer,
		renderer:  renderer,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// Tailor creates the tailored resume artifacts and returns the pending
// record. Artifact persistence errors are fatal; LLM and PDF failures
// degrade gracefully.
func (e *Engine) Tailor(ctx context.Context, req *Request) (*TailoredResume, error) {
	analysis := req.Analysis
	if analysis == nil {
		analysis = &scoring.Analysis{}
	}

	var tailoredText, highlights string
	if e.completer != nil {
		tailoredText, highlights = e.llmTailor(ctx, req, analysis)
	} else {
		tailoredText, highlights = e.ruleTailor(req.ResumeText, analysis)
	}

	var pdf []byte
	if e.renderer != nil {
		rendered, err := e.renderer.RenderPDF(
			fmt.Sprintf("Tailored Resume: %s @ %s", req.JobTitle, req.Company),
			tailoredText+"\n\n"+highlights,
		)
		if err != nil {
			e.logger.Warn("pdf generation skipped", zap.String("job_id", req.JobID), zap.Error(err))
		} else {
			pdf = rendered
		}
	}

	record := &TailoredResume{
		JobID:     req.JobID,
		JobTitle:  req.JobTitle,
		Company:   req.Company,
		ATSScore:  analysis.Score,
		Status:    StatusPending,
		CreatedAt: e.now().UTC().Format(time.RFC3339),
	}

	if err := e.store.Save(record, req.BaseData, tailoredText, highlights, pdf); err != nil {
		return nil, fmt.Errorf("persist tailored resume %s: %w", req.JobID, err)
	}

	e.logger.Info("tailored resume created",
		zap.String("job_id", req.JobID),
		zap.Int("ats_score", record.ATSScore),
		zap.Bool("pdf", record.PDF != ""),
	)
	return record, nil
}

func (e *Engine) llmTailor(ctx context.Context, req *Request, analysis *scoring.Analysis) (string, string) {
	prompt := buildPrompt(req, analysis)

	raw, err := e.completer.Invoke(ctx, prompt)
	if err != nil {
		e.logger.Warn("llm tailoring failed, using rule-based fallback", zap.Error(err))
		return e.ruleTailor(req.ResumeText, analysis)
	}

	data, err := ai.DecodePayload(raw)
	if err != nil {
		e.logger.Warn("unparseable tailoring payload, using rule-based fallback", zap.Error(err))
		return e.ruleTailor(req.ResumeText, analysis)
	}

	tailoredText := ai.CoerceString(data["tailored_resume"])
	if tailoredText == "" {
		tailoredText = req.ResumeText
	}
	highlights := formatHighlights(ai.CoerceStringSlice(data["interview_highlights"]), req.JobTitle, req.Company, e.now())
	return tailoredText, highlights
}

// ruleTailor appends the top missing keywords as a competencies section and
// turns the survival tweaks into the interview guide.
func (e *Engine) ruleTailor(resumeText string, analysis *scoring.Analysis) (string, string) {
	tailoredText := resumeText
	if len(analysis.MissingKeywords) > 0 {
		keywords := analysis.MissingKeywords
		if len(keywords) > 10 {
			keywords = keywords[:10]
		}
		tailoredText += fmt.Sprintf("\n\n## Core Competencies (ATS-Enhanced)\n- %s\n", strings.Join(keywords, ", "))
	}

	highlights := formatHighlights(analysis.SurvivalTweaks, "target role", "this company", e.now())
	return tailoredText, highlights
}

func buildPrompt(req *Request, analysis *scoring.Analysis) string {
	description := req.JobDescription
	if len(description) > jobDescriptionExcerptLimit {
		description = description[:jobDescriptionExcerptLimit]
	}

	replacer := strings.NewReplacer(
		"{{JOB_TITLE}}", req.JobTitle,
		"{{COMPANY}}", req.Company,
		"{{JOB_DESCRIPTION}}", description,
		"{{RESUME}}", req.ResumeText,
		"{{MISSING_KEYWORDS}}", jsonList(analysis.MissingKeywords),
		"{{SURVIVAL_TWEAKS}}", jsonList(analysis.SurvivalTweaks),
		"{{STRONG_POINTS}}", jsonList(analysis.StrongPoints),
	)
	return replacer.Replace(promptTemplate)
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// formatHighlights renders the interview preparation guide.
func formatHighlights(items []string, jobTitle, company string, now time.Time) string {
	divider := strings.Repeat("=", 60)
	lines := []string{
		"INTERVIEW PREPARATION GUIDE",
		fmt.Sprintf("Role: %s  |  Company: %s", jobTitle, company),
		"Generated: " + now.UTC().Format("2006-01-02 15:04 UTC"),
		divider,
		"",
		"KEY TALKING POINTS FOR YOUR INTERVIEW:",
		"",
	}
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, wrapText(item, 72, "     ")))
	}
	lines = append(lines,
		"",
		divider,
		"TIP: Practice each point with a STAR story (Situation, Task,",
		"     Action, Result) before your interview.",
	)
	return strings.Join(lines, "\n")
}

func wrapText(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		if i == 0 {
			b.WriteString(word)
			lineLen = len(word)
			continue
		}
		if lineLen+1+len(word) > width {
			b.WriteString("\n" + indent + word)
			lineLen = len(indent) + len(word)
			continue
		}
		b.WriteString(" " + word)
		lineLen += 1 + len(word)
	}
	return b.String()
}
