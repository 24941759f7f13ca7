package jobs

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

// Application statuses. pipeline_confirmed and rejected are applied by the
// inbox auto-update after the fact.
const (
	StatusPending           = "pending"
	StatusApplied           = "applied"
	StatusAppliedDryRun     = "applied_dry_run"
	StatusFailed            = "failed"
	StatusSkipped           = "skipped"
	StatusRejected          = "rejected"
	StatusPipelineConfirmed = "pipeline_confirmed"
)

// Posting is a single job advertisement as returned by a job board.
// Immutable once fetched; downstream identity is the (company, role) pair.
type Posting struct {
	Role        string `json:"role"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Link        string `json:"link"`
	Description string `json:"description,omitempty"`
}

// ID returns the derived identity for the posting.
func (p *Posting) ID() string {
	return DeriveID(p.Company, p.Role)
}

// DeriveID builds the canonical job identity from company and role:
// lowercase, spaces replaced with underscores. Falls back to a random
// identifier when both parts are empty so a record can still be keyed.
func DeriveID(company, role string) string {
	id := strings.TrimSpace(company + "_" + role)
	if id == "_" {
		return uuid.NewString()
	}
	return strings.ToLower(strings.ReplaceAll(id, " ", "_"))
}

// Application is the durable record of one application attempt. Created once
// per attempted application; after persistence it is only ever rewritten by
// the inbox auto-update (status transition to rejected/pipeline_confirmed).
type Application struct {
	Job                  Posting        `json:"job"`
	ID                   string         `json:"id"`
	Status               string         `json:"status"`
	Platform             string         `json:"platform"`
	Timestamp            string         `json:"timestamp"`
	ResumePath           string         `json:"resume_path,omitempty"`
	CoverLetterPath      string         `json:"cover_letter_path,omitempty"`
	TailoredResumePath   string         `json:"tailored_resume_path,omitempty"`
	TailoredResumeStatus string         `json:"tailored_resume_status,omitempty"`
	ApplicationData      map[string]any `json:"application_data,omitempty"`
}

// NewApplication creates an application record for the posting with a derived
// identity and a creation timestamp.
func NewApplication(posting *Posting, status, platform string) *Application {
	return &Application{
		Job:       *posting,
		ID:        posting.ID(),
		Status:    status,
		Platform:  platform,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// DecodeData maps the opaque scoring payload onto a typed structure.
func (a *Application) DecodeData(target any) error {
	return mapstructure.Decode(a.ApplicationData, target)
}
