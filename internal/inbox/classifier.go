package inbox

import (
	"strings"

	"github.com/jobpilot/jobpilot/internal/mail"
)

// Category is the coarse inbox bucket for a message.
type Category string

const (
	CategoryRejection Category = "rejection"
	CategoryRecruiter Category = "recruiter"
	CategoryInterview Category = "interview"
	CategoryOther     Category = "other"
)

// Categories in report order.
var Categories = []Category{
	CategoryRejection,
	CategoryRecruiter,
	CategoryInterview,
	CategoryOther,
}

var rejectionPatterns = []string{
	"move forward with other candidates",
	"we will not be moving forward",
	"position has been filled",
	"decided to pursue other applicants",
	"regret to inform you",
	"unfortunately",
	"not selected",
}

var interviewPatterns = []string{
	"interview",
	"schedule a call",
	"screening call",
	"technical interview",
	"availability",
	"available for a call",
	"next step",
}

var recruiterPatterns = []string{
	"recruiter",
	"talent acquisition",
	"hiring team",
	"would like to connect",
	"came across your profile",
	"opportunity",
	"opening on our team",
}

// Classify buckets a message by case-insensitive keyword match on subject and
// body. Interview signals win over rejection signals, which win over
// recruiter outreach, so a "thanks for interviewing, unfortunately..." mail
// surfaces as interview traffic rather than silently dropping into rejection.
func Classify(message *mail.Message) (Category, string) {
	combined := strings.ToLower(message.Subject + "\n" + message.Body)

	if containsAny(combined, interviewPatterns) {
		return CategoryInterview, "matched interview intent keywords"
	}
	if containsAny(combined, rejectionPatterns) {
		return CategoryRejection, "matched rejection intent keywords"
	}
	if containsAny(combined, recruiterPatterns) {
		return CategoryRecruiter, "matched recruiter outreach keywords"
	}
	return CategoryOther, "no high-confidence keyword matches"
}

func containsAny(text string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(text, pattern) {
			return true
		}
	}
	return false
}
