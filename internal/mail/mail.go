package mail

import "context"

// Message is one unit of inbound email as consumed by the classifiers.
type Message struct {
	UID        string `json:"uid"`
	Subject    string `json:"subject"`
	Sender     string `json:"sender"`
	ReceivedAt string `json:"received_at"`
	Body       string `json:"body"`
}

// Fetcher is the mail-fetch capability. Injected so the scan service can be
// tested without a live mailbox.
type Fetcher interface {
	Fetch(ctx context.Context, lookbackHours int) ([]*Message, error)
}
