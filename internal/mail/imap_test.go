package mail

import (
	"context"
	"testing"
	"time"

	"github.com/emersion/go-imap"

	"go.uber.org/zap"
)

func newTestFetcher(t *testing.T) *IMAPFetcher {
	t.Helper()
	f, err := NewIMAPFetcher(IMAPConfig{Address: "a@b.c", Password: "x"}, zap.NewNop())
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}
	return f
}

func fakeIMAPMessage(uid uint32, subject string) *imap.Message {
	return &imap.Message{
		Uid: uid,
		Envelope: &imap.Envelope{
			Subject: subject,
			Date:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			From:    []*imap.Address{{MailboxName: "recruiter", HostName: "acme.com"}},
		},
	}
}

func TestNewIMAPFetcherResolvesProviderHost(t *testing.T) {
	f := newTestFetcher(t)
	if f.cfg.Host != "imap.gmail.com" || f.cfg.Port != defaultIMAPPort {
		t.Fatalf("unexpected defaults: %s:%d", f.cfg.Host, f.cfg.Port)
	}

	if _, err := NewIMAPFetcher(IMAPConfig{Provider: "unknown-provider"}, nil); err == nil {
		t.Fatal("expected error for unresolvable host")
	}
}

func TestCollectParsesMessages(t *testing.T) {
	f := newTestFetcher(t)

	messages := make(chan *imap.Message, 2)
	messages <- fakeIMAPMessage(7, "Interview invitation")
	messages <- &imap.Message{Uid: 8} // no envelope, skipped
	close(messages)

	section := &imap.BodySectionName{Peek: true}
	got := f.collect(context.Background(), messages, section)
	if len(got) != 1 {
		t.Fatalf("expected 1 parsed message, got %d", len(got))
	}
	if got[0].UID != "7" || got[0].Subject != "Interview invitation" || got[0].Sender != "recruiter@acme.com" {
		t.Fatalf("unexpected message: %+v", got[0])
	}
}

func TestCollectDrainsAfterCancellation(t *testing.T) {
	f := newTestFetcher(t)

	messages := make(chan *imap.Message, 3)
	for i := uint32(1); i <= 3; i++ {
		messages <- fakeIMAPMessage(i, "subject")
	}
	close(messages)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	section := &imap.BodySectionName{Peek: true}
	got := f.collect(ctx, messages, section)
	if len(got) != 0 {
		t.Fatalf("cancelled collect must not parse, got %d messages", len(got))
	}
	// The channel must be fully consumed so the sender can exit.
	if _, open := <-messages; open {
		t.Fatal("collect left messages in the channel")
	}
}
