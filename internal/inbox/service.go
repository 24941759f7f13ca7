package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jobpilot/jobpilot/internal/jobs"
	"github.com/jobpilot/jobpilot/internal/mail"
	"github.com/jobpilot/jobpilot/internal/storage"
	"github.com/jobpilot/jobpilot/internal/tailoring"

	"go.uber.org/zap"
)

// ErrMissingCredentials is returned when the inbox email or app password is
// absent from the secrets.
var ErrMissingCredentials = errors.New(
	"Missing inbox credentials. Add 'inbox_email' and 'inbox_app_password' to the secrets file")

// ErrScanFailed wraps fetch and transport failures so callers can tell them
// apart from configuration errors.
var ErrScanFailed = errors.New("inbox scan failed")

// DefaultLookbackHours covers one week of mail.
const DefaultLookbackHours = 168

// Credentials hold the mailbox access settings from the secrets file.
type Credentials struct {
	Email    string
	Password string
	Provider string
	Host     string
	Port     int
}

// StatusUpdate records one application moved by the auto-update.
type StatusUpdate struct {
	JobID      string `json:"job_id"`
	Company    string `json:"company"`
	Signal     string `json:"signal"`
	NewStatus  string `json:"new_status"`
	MessageUID string `json:"message_uid"`
}

// Summary is the persisted scan report.
type Summary struct {
	ScannedAt           string                      `json:"scanned_at"`
	SourceEmail         string                      `json:"source_email"`
	LookbackHours       int                         `json:"lookback_hours"`
	TotalMessages       int                         `json:"total_messages"`
	RejectionMessages   int                         `json:"rejection_messages"`
	RecruiterMessages   int                         `json:"recruiter_messages"`
	InterviewMessages   int                         `json:"interview_messages"`
	OtherMessages       int                         `json:"other_messages"`
	CategorizedMessages map[Category][]*mail.Message `json:"categorized_messages"`

	// Populated by the auto-update pass, not part of the report file.
	Updates []StatusUpdate `json:"-"`
}

// ScanService fetches recent mail, buckets it, writes the scan reports, and
// optionally pushes rejection/pipeline signals into the tailored resume
// lifecycle and the application records.
type ScanService struct {
	outputDir string
	fetcher   mail.Fetcher
	tailored  *tailoring.Store
	apps      storage.Store
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a ScanService.
type Option func(*ScanService)

// WithFetcher injects a mail fetcher, bypassing the IMAP connection built
// from the credentials.
func WithFetcher(fetcher mail.Fetcher) Option {
	return func(s *ScanService) { s.fetcher = fetcher }
}

// WithAutoUpdate wires the stores the auto-update pass writes to.
func WithAutoUpdate(tailored *tailoring.Store, apps storage.Store) Option {
	return func(s *ScanService) {
		s.tailored = tailored
		s.apps = apps
	}
}

// NewScanService builds a scan service writing reports under outputDir.
func NewScanService(outputDir string, logger *zap.Logger, opts ...Option) *ScanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ScanService{
		outputDir: outputDir,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scans the mailbox and writes the dated and latest reports. The
// credential check happens before anything else, so an unconfigured inbox
// fails fast even when a fetcher is injected.
func (s *ScanService) Run(ctx context.Context, creds Credentials, lookbackHours int) (*Summary, error) {
	email := strings.TrimSpace(creds.Email)
	password := strings.TrimSpace(creds.Password)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	if lookbackHours <= 0 {
		lookbackHours = DefaultLookbackHours
	}

	fetcher := s.fetcher
	if fetcher == nil {
		imapFetcher, err := mail.NewIMAPFetcher(mail.IMAPConfig{
			Address:  email,
			Password: password,
			Provider: creds.Provider,
			Host:     creds.Host,
			Port:     creds.Port,
		}, s.logger)
		if err != nil {
			return nil, err
		}
		fetcher = imapFetcher
	}

	s.logger.Info("scanning inbox", zap.Int("lookback_hours", lookbackHours))

	messages, err := fetcher.Fetch(ctx, lookbackHours)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}

	categorized := make(map[Category][]*mail.Message)
	for _, category := range Categories {
		categorized[category] = []*mail.Message{}
	}
	for _, message := range messages {
		category, _ := Classify(message)
		categorized[category] = append(categorized[category], message)
	}

	summary := &Summary{
		ScannedAt:           s.now().UTC().Format(time.RFC3339),
		SourceEmail:         email,
		LookbackHours:       lookbackHours,
		TotalMessages:       len(messages),
		RejectionMessages:   len(categorized[CategoryRejection]),
		RecruiterMessages:   len(categorized[CategoryRecruiter]),
		InterviewMessages:   len(categorized[CategoryInterview]),
		OtherMessages:       len(categorized[CategoryOther]),
		CategorizedMessages: categorized,
	}

	if err := s.saveReport(summary); err != nil {
		return nil, err
	}

	if s.tailored != nil {
		summary.Updates = s.autoUpdate(messages)
	}

	return summary, nil
}

// saveReport writes both the dated report and the latest-pointer copy.
func (s *ScanService) saveReport(summary *Summary) error {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	raw, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scan report: %w", err)
	}

	timestamp := s.now().UTC().Format("20060102_150405")
	dated := filepath.Join(s.outputDir, fmt.Sprintf("email_scan_report_%s.json", timestamp))
	latest := filepath.Join(s.outputDir, "email_scan_report_latest.json")

	if err := os.WriteFile(dated, raw, 0o644); err != nil {
		return fmt.Errorf("write scan report: %w", err)
	}
	if err := os.WriteFile(latest, raw, 0o644); err != nil {
		return fmt.Errorf("write latest scan report: %w", err)
	}

	s.logger.Info("inbox scan report saved", zap.String("report", dated))
	return nil
}

// autoUpdate matches scanned mail against pending tailored resumes by
// company mention and applies the voting signal: rejection discards the
// resume and marks the application rejected, a pipeline signal confirms the
// resume and marks the application pipeline_confirmed. Per-record failures
// are logged and skipped.
func (s *ScanService) autoUpdate(messages []*mail.Message) []StatusUpdate {
	records, err := s.tailored.List()
	if err != nil {
		s.logger.Warn("auto-update skipped, tailored resumes unreadable", zap.Error(err))
		return nil
	}

	events := make([]*Event, 0, len(messages))
	for _, message := range messages {
		events = append(events, NewEvent(message))
	}

	var updates []StatusUpdate
	for _, record := range records {
		if record.Terminal() {
			continue
		}

		for _, event := range events {
			if event.Classification == SignalUnknown || !event.Mentions(record.Company) {
				continue
			}

			update := StatusUpdate{
				JobID:      record.JobID,
				Company:    record.Company,
				Signal:     event.Classification,
				MessageUID: event.UID,
			}

			switch event.Classification {
			case SignalRejection:
				if _, err := s.tailored.Discard(record.JobID); err != nil {
					s.logger.Warn("auto-discard failed", zap.String("job_id", record.JobID), zap.Error(err))
					continue
				}
				update.NewStatus = jobs.StatusRejected
			case SignalPipeline:
				if _, err := s.tailored.Confirm(record.JobID); err != nil {
					s.logger.Warn("auto-confirm failed", zap.String("job_id", record.JobID), zap.Error(err))
					continue
				}
				update.NewStatus = jobs.StatusPipelineConfirmed
			}

			s.updateApplication(record.JobID, update.NewStatus)
			updates = append(updates, update)

			s.logger.Info("application auto-updated",
				zap.String("job_id", record.JobID),
				zap.String("signal", event.Classification),
				zap.String("new_status", update.NewStatus),
			)
			break
		}
	}
	return updates
}

func (s *ScanService) updateApplication(jobID, status string) {
	if s.apps == nil {
		return
	}

	app, err := s.apps.LoadApplication(jobID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("application record unreadable", zap.String("job_id", jobID), zap.Error(err))
		}
		return
	}

	app.Status = status
	app.TailoredResumeStatus = ""
	if record, err := s.tailored.Load(jobID); err == nil {
		app.TailoredResumeStatus = record.Status
	}

	if err := s.apps.SaveApplication(app); err != nil {
		s.logger.Warn("application record update failed", zap.String("job_id", jobID), zap.Error(err))
	}
}
