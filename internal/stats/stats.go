package stats

import (
	"fmt"
	"strings"

	"github.com/jobpilot/jobpilot/internal/storage"

	"go.uber.org/zap"
)

// Outcome buckets. Failure keywords are matched before success keywords so a
// status like "applied_then_failed" counts as a failure.
var (
	failureKeywords = []string{"failed", "error", "rejected", "declined", "cancelled"}
	successKeywords = []string{"applied", "submitted", "success", "succeeded", "interview", "offer"}
)

// Summary aggregates every persisted application record into outcome buckets.
type Summary struct {
	Total       int            `json:"total_applications"`
	Successful  int            `json:"successful"`
	Failed      int            `json:"failed"`
	Unknown     int            `json:"unknown"`
	SuccessRate float64        `json:"success_rate"`
	ByStatus    map[string]int `json:"by_status"`
}

// Service computes application statistics from the record store.
type Service struct {
	store  storage.Store
	logger *zap.Logger
}

func NewService(store storage.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Collect classifies every stored record. Records with an empty or
// unrecognized status land in the unknown bucket rather than failing the run.
func (s *Service) Collect() (*Summary, error) {
	apps, err := s.store.ListApplications()
	if err != nil {
		return nil, fmt.Errorf("collect stats: %w", err)
	}

	summary := &Summary{ByStatus: make(map[string]int)}
	for _, app := range apps {
		summary.Total++

		status := strings.ToLower(strings.TrimSpace(app.Status))
		label := status
		if label == "" {
			label = "unknown"
		}
		summary.ByStatus[label]++

		switch Classify(status) {
		case OutcomeSuccess:
			summary.Successful++
		case OutcomeFailure:
			summary.Failed++
		default:
			summary.Unknown++
		}
	}

	if summary.Total > 0 {
		summary.SuccessRate = float64(summary.Successful) / float64(summary.Total) * 100
	}

	s.logger.Debug("collected application stats",
		zap.Int("total", summary.Total),
		zap.Int("successful", summary.Successful),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// Outcome is the coarse bucket a status string maps to.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

// Classify maps a status string to an outcome bucket by keyword substring.
// Failure keywords win over success keywords.
func Classify(status string) Outcome {
	status = strings.ToLower(status)
	for _, keyword := range failureKeywords {
		if strings.Contains(status, keyword) {
			return OutcomeFailure
		}
	}
	for _, keyword := range successKeywords {
		if strings.Contains(status, keyword) {
			return OutcomeSuccess
		}
	}
	return OutcomeUnknown
}
