package mail

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	gomail "github.com/emersion/go-message/mail"

	"go.uber.org/zap"
)

var defaultIMAPHosts = map[string]string{
	"gmail":   "imap.gmail.com",
	"outlook": "outlook.office365.com",
	"yahoo":   "imap.mail.yahoo.com",
}

const defaultIMAPPort = 993

// IMAPConfig describes how to reach the mailbox.
type IMAPConfig struct {
	Address  string
	Password string
	Provider string
	Host     string
	Port     int
	Folder   string
}

// IMAPFetcher fetches recent messages from an IMAP mailbox over TLS.
type IMAPFetcher struct {
	cfg    IMAPConfig
	logger *zap.Logger
}

// NewIMAPFetcher validates the config and resolves the IMAP host from the
// provider when not set explicitly.
func NewIMAPFetcher(cfg IMAPConfig, logger *zap.Logger) (*IMAPFetcher, error) {
	if cfg.Host == "" {
		provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
		if provider == "" {
			provider = "gmail"
		}
		cfg.Host = defaultIMAPHosts[provider]
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("unable to determine IMAP host: set provider to gmail/outlook/yahoo or provide a host")
	}

	if cfg.Port == 0 {
		cfg.Port = defaultIMAPPort
	}
	if cfg.Folder == "" {
		cfg.Folder = "INBOX"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &IMAPFetcher{cfg: cfg, logger: logger}, nil
}

// Fetch returns every message received in the last lookbackHours. Messages
// that fail to parse are skipped, not fatal.
func (f *IMAPFetcher) Fetch(ctx context.Context, lookbackHours int) ([]*Message, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", f.cfg.Host, f.cfg.Port), nil)
	if err != nil {
		return nil, fmt.Errorf("dial imap: %w", err)
	}
	defer c.Logout()

	if err := c.Login(f.cfg.Address, f.cfg.Password); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}

	if _, err := c.Select(f.cfg.Folder, true); err != nil {
		return nil, fmt.Errorf("select %s: %w", f.cfg.Folder, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}

	if len(uids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, items, messages)
	}()

	result := f.collect(ctx, messages, section)

	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// collect parses messages until the channel closes. On cancellation it stops
// parsing but keeps draining, the fetch goroutine must always be able to
// finish sending.
func (f *IMAPFetcher) collect(ctx context.Context, messages <-chan *imap.Message, section *imap.BodySectionName) []*Message {
	result := []*Message{}
	for msg := range messages {
		if ctx.Err() != nil {
			continue
		}

		parsed := f.parseMessage(msg, section)
		if parsed != nil {
			result = append(result, parsed)
		}
	}
	return result
}

func (f *IMAPFetcher) parseMessage(msg *imap.Message, section *imap.BodySectionName) *Message {
	if msg == nil || msg.Envelope == nil {
		return nil
	}

	sender := ""
	if len(msg.Envelope.From) > 0 {
		sender = msg.Envelope.From[0].Address()
	}

	parsed := &Message{
		UID:        fmt.Sprintf("%d", msg.Uid),
		Subject:    msg.Envelope.Subject,
		Sender:     sender,
		ReceivedAt: msg.Envelope.Date.UTC().Format(time.RFC3339),
	}

	body := msg.GetBody(section)
	if body == nil {
		return parsed
	}

	reader, err := gomail.CreateReader(body)
	if err != nil {
		f.logger.Debug("unreadable message body", zap.String("uid", parsed.UID), zap.Error(err))
		return parsed
	}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		if _, ok := part.Header.(*gomail.InlineHeader); ok {
			data, err := io.ReadAll(part.Body)
			if err == nil && len(data) > 0 {
				parsed.Body = string(data)
				break
			}
		}
	}

	return parsed
}
