package inbox

import (
	"regexp"
	"strings"

	"github.com/jobpilot/jobpilot/internal/mail"
)

// Signal classifications used by the application auto-update. Distinct from
// the scan categories: this layer only decides whether a mail moves an
// application forward or out of the pipeline.
const (
	SignalRejection = "rejection"
	SignalPipeline  = "pipeline"
	SignalUnknown   = "unknown"
)

var rejectionSignals = []string{
	"not moving forward",
	"not selected",
	"decided to move forward with other",
	"we have decided not to proceed",
	"your application was not successful",
	"we regret",
	"unfortunately",
	"position has been filled",
	"we will not be moving forward",
	"not a fit",
	"no longer considering",
	"rejected",
	"decline",
	"not a match",
}

var pipelineSignals = []string{
	"interview",
	"next step",
	"schedule a call",
	"offer",
	"move forward",
	"would like to connect",
	"moving you",
	"shortlisted",
	"congratulations",
	"pleased to inform",
	"excited to offer",
	"background check",
	"reference check",
	"start date",
	"onboarding",
	"welcome to the team",
}

var senderDomainPattern = regexp.MustCompile(`@([\w.-]+)`)

var freeMailProviders = []string{"gmail", "yahoo", "outlook", "hotmail"}

// Event is one classified inbox message with a best-effort company hint.
type Event struct {
	UID            string `json:"uid"`
	Subject        string `json:"subject"`
	Sender         string `json:"sender"`
	Date           string `json:"date"`
	Snippet        string `json:"snippet"`
	Classification string `json:"classification"`
	CompanyHint    string `json:"company_hint"`
}

// ClassifySignal votes rejection signals against pipeline signals over the
// lowercased text. Rejection wins only with strictly more hits; any pipeline
// hit otherwise classifies as pipeline.
func ClassifySignal(text string) string {
	text = strings.ToLower(text)

	rejHits := 0
	for _, signal := range rejectionSignals {
		if strings.Contains(text, signal) {
			rejHits++
		}
	}

	pipHits := 0
	for _, signal := range pipelineSignals {
		if strings.Contains(text, signal) {
			pipHits++
		}
	}

	if rejHits > pipHits && rejHits > 0 {
		return SignalRejection
	}
	if pipHits > 0 {
		return SignalPipeline
	}
	return SignalUnknown
}

// NewEvent classifies a message and derives the company hint from the sender
// domain, skipping free-mail providers.
func NewEvent(message *mail.Message) *Event {
	snippet := message.Body
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}

	return &Event{
		UID:            message.UID,
		Subject:        message.Subject,
		Sender:         message.Sender,
		Date:           message.ReceivedAt,
		Snippet:        snippet,
		Classification: ClassifySignal(message.Subject + " " + message.Body),
		CompanyHint:    companyHint(message.Sender),
	}
}

// Mentions reports whether the event refers to the company in its sender,
// subject, or snippet.
func (e *Event) Mentions(company string) bool {
	company = strings.ToLower(strings.TrimSpace(company))
	if company == "" {
		return false
	}
	return strings.Contains(strings.ToLower(e.Sender), company) ||
		strings.Contains(strings.ToLower(e.Subject), company) ||
		strings.Contains(strings.ToLower(e.Snippet), company)
}

func companyHint(sender string) string {
	match := senderDomainPattern.FindStringSubmatch(sender)
	if match == nil {
		return ""
	}

	domain := match[1]
	for _, provider := range freeMailProviders {
		if strings.Contains(domain, provider) {
			return ""
		}
	}

	name, _, _ := strings.Cut(domain, ".")
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
