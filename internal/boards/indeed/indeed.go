package indeed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/jobpilot/jobpilot/internal/jobs"
	"github.com/jobpilot/jobpilot/internal/util"

	"go.uber.org/zap"
)

const (
	defaultAPIURL = "https://apis.indeed.com"
	searchPath    = "/v2/jobs/search"
	applyPath     = "/v2/applications"
	userAgent     = "jobpilot/1.0"
	// Max page size the API accepts.
	perPage = "100"
)

// jobItem is one search result as returned by the API.
type jobItem struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Board talks to the Indeed partner API with a bearer token. No interactive
// login; Login only verifies the token is present.
type Board struct {
	token  string
	logger *zap.Logger

	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New builds an Indeed board client.
func New(token string, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		token:  token,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
		APIURL:    defaultAPIURL,
	}
}

func (b *Board) Name() string { return "indeed" }

// Login validates that a token is configured.
func (b *Board) Login(ctx context.Context) error {
	if b.token == "" {
		return fmt.Errorf("indeed api token missing")
	}
	return nil
}

// Search fetches every result page for the query and location.
func (b *Board) Search(ctx context.Context, query, location string) ([]*jobs.Posting, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("location", location)
	q.Set("per_page", perPage)

	items, err := b.getItems(ctx, b.APIURL+searchPath, q)
	if err != nil {
		return nil, fmt.Errorf("indeed search: %w", err)
	}

	var results []jobItem
	cfg := &mapstructure.DecoderConfig{
		Result:  &results,
		TagName: "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode indeed results: %w", err)
	}

	postings := make([]*jobs.Posting, 0, len(results))
	for _, item := range results {
		if item.Title == "" || item.Company == "" {
			continue
		}
		postings = append(postings, &jobs.Posting{
			Role:     item.Title,
			Company:  item.Company,
			Location: item.Location,
			Link:     item.URL,
			// The API ships descriptions as HTML, scoring wants plain words.
			Description: util.HTMLToText(item.Description),
		})
	}

	b.logger.Info("indeed search finished",
		zap.String("query", query),
		zap.String("location", location),
		zap.Int("postings", len(postings)),
	)
	return postings, nil
}

// Apply submits the application as a form post.
func (b *Board) Apply(ctx context.Context, posting *jobs.Posting) (*jobs.Application, error) {
	err := b.postFormData(ctx, b.APIURL+applyPath, map[string]string{
		"job_url": posting.Link,
		"company": posting.Company,
		"role":    posting.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("indeed apply: %w", err)
	}

	b.logger.Info("applied on indeed",
		zap.String("role", posting.Role),
		zap.String("company", posting.Company),
	)
	return jobs.NewApplication(posting, jobs.StatusApplied, b.Name()), nil
}
