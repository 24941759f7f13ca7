package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/jobpilot/jobpilot/internal/jobs"
	"github.com/jobpilot/jobpilot/internal/storage"

	"go.uber.org/zap"
)

// Gate is a single screening step applied to a batch of postings before
// scoring. Gates drop postings, never reorder them.
type Gate interface {
	Name() string
	Apply(ctx context.Context, deps GateDeps, postings []*jobs.Posting) ([]*jobs.Posting, Step, error)
}

// GateDeps aggregates dependencies shared across gates.
type GateDeps struct {
	Store  storage.Store
	Logger *zap.Logger
}

// Step describes the result of executing one gate.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// RunGates executes the gates sequentially with per-step logging.
func RunGates(ctx context.Context, deps GateDeps, gates []Gate, postings []*jobs.Posting) ([]*jobs.Posting, error) {
	for _, gate := range gates {
		next, info, err := gate.Apply(ctx, deps, postings)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", gate.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("gate step",
				zap.String("name", gate.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		postings = next
	}
	return postings, nil
}

type appliedHistoryGate struct{}

// NewAppliedHistory creates a gate that drops postings already present in
// the application record store.
func NewAppliedHistory() Gate {
	return &appliedHistoryGate{}
}

func (g *appliedHistoryGate) Name() string { return "applied_history" }

func (g *appliedHistoryGate) Apply(_ context.Context, deps GateDeps, postings []*jobs.Posting) ([]*jobs.Posting, Step, error) {
	initial := len(postings)
	if deps.Store == nil {
		return postings, Step{Initial: initial, Left: initial}, nil
	}

	existing, err := deps.Store.ListApplications()
	if err != nil {
		return nil, Step{}, fmt.Errorf("list applied history: %w", err)
	}

	applied := make(map[string]struct{}, len(existing))
	for _, app := range existing {
		applied[app.ID] = struct{}{}
	}

	kept := make([]*jobs.Posting, 0, initial)
	var excluded []string
	for _, posting := range postings {
		if _, done := applied[posting.ID()]; done {
			excluded = append(excluded, posting.ID())
			continue
		}
		kept = append(kept, posting)
	}

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding postings already applied to",
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(excluded), Left: len(kept)}, nil
}

type companiesGate struct {
	blocked []string
}

// NewBlockedCompanies creates a gate that drops postings from the configured
// company block list. Matching is case-insensitive on the company name.
func NewBlockedCompanies(blocked []string) Gate {
	return &companiesGate{blocked: blocked}
}

func (g *companiesGate) Name() string { return "blocked_companies" }

func (g *companiesGate) Apply(_ context.Context, deps GateDeps, postings []*jobs.Posting) ([]*jobs.Posting, Step, error) {
	initial := len(postings)
	if len(g.blocked) == 0 {
		return postings, Step{Initial: initial, Left: initial}, nil
	}

	kept := make([]*jobs.Posting, 0, initial)
	var excluded []string
	for _, posting := range postings {
		if g.isBlocked(posting.Company) {
			excluded = append(excluded, posting.ID())
			continue
		}
		kept = append(kept, posting)
	}

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding postings by company block list",
			zap.Strings("blocked_companies", g.blocked),
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(excluded), Left: len(kept)}, nil
}

func (g *companiesGate) isBlocked(company string) bool {
	for _, blocked := range g.blocked {
		if strings.EqualFold(strings.TrimSpace(blocked), strings.TrimSpace(company)) {
			return true
		}
	}
	return false
}
