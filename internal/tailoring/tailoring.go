package tailoring

// Tailored resume lifecycle. A record starts pending when the application is
// sent. Terminal states are absorbing: confirming or discarding twice is a
// no-op, and a discarded record cannot be confirmed afterwards.
const (
	StatusPending   = "pending"
	StatusDiscarded = "discarded"
	StatusConfirmed = "confirmed"
)

// TailoredResume describes one job-specific resume variant and its artifacts
// on disk. Serialized as metadata.yaml next to the artifacts.
type TailoredResume struct {
	JobID        string `yaml:"job_id" json:"job_id"`
	JobTitle     string `yaml:"job_title" json:"job_title"`
	Company      string `yaml:"company" json:"company"`
	ATSScore     int    `yaml:"ats_score" json:"ats_score"`
	Status       string `yaml:"status" json:"status"`
	CreatedAt    string `yaml:"created_at" json:"created_at"`
	TailoredYAML string `yaml:"tailored_yaml" json:"tailored_yaml"`
	Highlights   string `yaml:"highlights" json:"highlights"`
	PDF          string `yaml:"pdf,omitempty" json:"pdf,omitempty"`
}

// Terminal reports whether the record has left the pending state.
func (t *TailoredResume) Terminal() bool {
	return t.Status == StatusDiscarded || t.Status == StatusConfirmed
}
