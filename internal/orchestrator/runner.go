package orchestrator

import (
	"context"
	"fmt"

	"github.com/jobpilot/jobpilot/internal/boards"
	"github.com/jobpilot/jobpilot/internal/jobs"
	"github.com/jobpilot/jobpilot/internal/notify"
	"github.com/jobpilot/jobpilot/internal/resume"
	"github.com/jobpilot/jobpilot/internal/scoring"
	"github.com/jobpilot/jobpilot/internal/storage"
	"github.com/jobpilot/jobpilot/internal/tailoring"

	"go.uber.org/zap"
)

// Defaults applied when the configuration leaves search settings empty.
var defaultLocations = []string{"United States"}

const (
	defaultTarget   = 5
	defaultMinScore = 70
)

// Config carries the batch settings.
type Config struct {
	// Positions to search for. Empty means derive from the resume, falling
	// back to the built-in supply chain titles.
	Positions []string
	Locations []string
	// MinScore is the ATS threshold a posting must clear to be applied to.
	MinScore int
	// BlockedCompanies are never applied to.
	BlockedCompanies []string
	DryRun           bool
	ResumePath       string
}

// Result summarizes one finished batch.
type Result struct {
	Platform string `json:"platform"`
	Target   int    `json:"target"`
	Applied  int    `json:"applied"`
	Scored   int    `json:"scored"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
	DryRun   bool   `json:"dry_run"`
}

// Runner walks positions and locations, screens postings through the gates,
// scores each survivor, and applies until the target count is reached.
type Runner struct {
	registry *boards.Registry
	store    storage.Store
	scorer   *scoring.Engine
	tailor   *tailoring.Engine
	notifier notify.Notifier
	cfg      Config
	logger   *zap.Logger
}

// NewRunner builds a batch runner. tailor and notifier may be nil.
func NewRunner(registry *boards.Registry, store storage.Store, scorer *scoring.Engine, tailor *tailoring.Engine, notifier notify.Notifier, cfg Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		registry: registry,
		store:    store,
		scorer:   scorer,
		tailor:   tailor,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// RunBatch applies to up to target postings on the platform. Per-posting
// failures are logged and skipped; the batch only fails on setup errors.
// Postings are processed in search order, no re-ranking.
func (r *Runner) RunBatch(ctx context.Context, platform string, target int) (*Result, error) {
	if target <= 0 {
		target = defaultTarget
	}

	board, err := r.registry.Open(platform)
	if err != nil {
		return nil, err
	}

	r.logger.Info("starting batch",
		zap.String("platform", platform),
		zap.Int("target", target),
		zap.Bool("dry_run", r.cfg.DryRun),
	)

	if r.cfg.DryRun {
		r.logger.Info("dry-run enabled, skipping login and submitting simulated applications")
	} else if err := board.Login(ctx); err != nil {
		return nil, fmt.Errorf("login to %s: %w", platform, err)
	}

	baseResume := resume.Load(r.cfg.ResumePath)
	resumeText := baseResume.Text()
	if r.cfg.ResumePath != "" && resumeText == "" {
		return nil, fmt.Errorf("resume %q yielded no text, check the file format", r.cfg.ResumePath)
	}
	positions := r.positions(baseResume)
	locations := r.cfg.Locations
	if len(locations) == 0 {
		locations = defaultLocations
	}

	gates := []Gate{
		NewAppliedHistory(),
		NewBlockedCompanies(r.cfg.BlockedCompanies),
	}
	deps := GateDeps{Store: r.store, Logger: r.logger}

	result := &Result{Platform: platform, Target: target, DryRun: r.cfg.DryRun}

search:
	for _, position := range positions {
		for _, location := range locations {
			if result.Applied >= target {
				break search
			}

			r.logger.Info("searching postings",
				zap.String("position", position),
				zap.String("location", location),
			)

			postings, err := board.Search(ctx, position, location)
			if err != nil {
				r.logger.Error("search failed", zap.String("position", position), zap.Error(err))
				continue
			}

			postings, err = RunGates(ctx, deps, gates, postings)
			if err != nil {
				return nil, err
			}

			for _, posting := range postings {
				if result.Applied >= target {
					break search
				}
				r.processPosting(ctx, board, posting, resumeText, result)
			}
		}
	}

	r.logger.Info("batch finished",
		zap.String("platform", platform),
		zap.Int("applied", result.Applied),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)

	r.notifyResult(result)
	return result, nil
}

func (r *Runner) processPosting(ctx context.Context, board boards.Source, posting *jobs.Posting, resumeText string, result *Result) {
	description := posting.Description
	if description == "" {
		description = fmt.Sprintf("%s at %s", posting.Role, posting.Company)
	}

	r.logger.Info("scoring posting",
		zap.String("role", posting.Role),
		zap.String("company", posting.Company),
	)
	analysis := r.scorer.Score(ctx, resumeText, description)
	result.Scored++

	minScore := r.cfg.MinScore
	if minScore <= 0 {
		minScore = defaultMinScore
	}
	if analysis.Score < minScore {
		r.logger.Warn("skipping low-scoring posting",
			zap.String("company", posting.Company),
			zap.Int("score", analysis.Score),
			zap.Int("min_score", minScore),
		)
		result.Skipped++
		return
	}

	r.logger.Info("score clears threshold, applying",
		zap.Int("score", analysis.Score),
		zap.Int("min_score", minScore),
	)

	tailored := r.tailorResume(ctx, posting, description, resumeText, analysis)

	var app *jobs.Application
	if r.cfg.DryRun {
		app = jobs.NewApplication(posting, jobs.StatusAppliedDryRun, board.Name())
	} else {
		applied, err := board.Apply(ctx, posting)
		if err != nil {
			r.logger.Error("apply failed",
				zap.String("company", posting.Company),
				zap.Error(err),
			)
			result.Failed++
			return
		}
		app = applied
	}

	app.ApplicationData = analysis.AsData()
	app.ResumePath = r.cfg.ResumePath
	if tailored != nil {
		app.TailoredResumePath = tailored.PDF
		if app.TailoredResumePath == "" {
			app.TailoredResumePath = tailored.TailoredYAML
		}
		app.TailoredResumeStatus = tailored.Status
	}

	if err := r.store.SaveApplication(app); err != nil {
		r.logger.Error("persist application failed",
			zap.String("job_id", app.ID),
			zap.Error(err),
		)
		result.Failed++
		return
	}

	result.Applied++
	r.logger.Info("applied",
		zap.String("role", posting.Role),
		zap.String("company", posting.Company),
		zap.Bool("tailored_resume", tailored != nil),
	)
}

// tailorResume is best effort: a tailoring failure never blocks the
// application.
func (r *Runner) tailorResume(ctx context.Context, posting *jobs.Posting, description, resumeText string, analysis *scoring.Analysis) *tailoring.TailoredResume {
	if r.tailor == nil {
		return nil
	}

	tailored, err := r.tailor.Tailor(ctx, &tailoring.Request{
		JobID:          posting.ID(),
		JobTitle:       posting.Role,
		Company:        posting.Company,
		JobDescription: description,
		ResumeText:     resumeText,
		Analysis:       analysis,
	})
	if err != nil {
		r.logger.Warn("resume tailoring skipped",
			zap.String("job_id", posting.ID()),
			zap.Error(err),
		)
		return nil
	}
	return tailored
}

func (r *Runner) positions(baseResume *resume.Resume) []string {
	if len(r.cfg.Positions) > 0 {
		return r.cfg.Positions
	}
	if positions := baseResume.Positions(); len(positions) > 0 {
		return positions
	}
	return resume.DefaultPositions
}

func (r *Runner) notifyResult(result *Result) {
	if r.notifier == nil {
		return
	}

	message := fmt.Sprintf("<b>Batch finished</b> on %s: applied %d/%d, skipped %d, failed %d",
		result.Platform, result.Applied, result.Target, result.Skipped, result.Failed)
	if err := r.notifier.Send(message); err != nil {
		r.logger.Warn("notification failed", zap.Error(err))
	}
}
