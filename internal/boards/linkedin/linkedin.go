package linkedin

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/jobpilot/jobpilot/internal/jobs"
	"github.com/jobpilot/jobpilot/internal/util"

	"go.uber.org/zap"
)

const (
	loginURL     = "https://www.linkedin.com/login"
	searchURLFmt = "https://www.linkedin.com/jobs/search/?keywords=%s&location=%s"

	navTimeout      = 30000
	selectorTimeout = 15000
	maxPostings     = 25
)

// Config holds LinkedIn credentials and browser settings.
type Config struct {
	Email    string
	Password string
	Headless bool
}

// Board drives LinkedIn through a Playwright-controlled Chromium session.
type Board struct {
	cfg    Config
	logger *zap.Logger

	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

// New builds a LinkedIn board. The browser starts lazily on Login.
func New(cfg Config, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{cfg: cfg, logger: logger}
}

func (b *Board) Name() string { return "linkedin" }

// Login opens the browser and signs in with the configured credentials.
func (b *Board) Login(ctx context.Context) error {
	if b.cfg.Email == "" || b.cfg.Password == "" {
		return fmt.Errorf("linkedin credentials missing")
	}

	if err := b.startBrowser(); err != nil {
		return err
	}

	if _, err := b.page.Goto(loginURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navTimeout),
	}); err != nil {
		return fmt.Errorf("load login page: %w", err)
	}

	if err := b.page.Locator("#username").Fill(b.cfg.Email); err != nil {
		return fmt.Errorf("fill email: %w", err)
	}
	if err := b.page.Locator("#password").Fill(b.cfg.Password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := b.page.Locator("button[type=submit]").Click(); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}

	// The global nav only renders for signed-in sessions.
	if _, err := b.page.WaitForSelector("#global-nav", playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(selectorTimeout),
	}); err != nil {
		return fmt.Errorf("login verification failed: %w", err)
	}

	b.logger.Info("logged into linkedin")
	return nil
}

// Search loads the jobs search page for the query and location and extracts
// the visible result cards. Cards missing a title or company are skipped.
func (b *Board) Search(ctx context.Context, query, location string) ([]*jobs.Posting, error) {
	if b.page == nil {
		if err := b.startBrowser(); err != nil {
			return nil, err
		}
	}

	searchURL := fmt.Sprintf(searchURLFmt, url.QueryEscape(query), url.QueryEscape(location))
	b.logger.Debug("loading linkedin search", zap.String("url", searchURL))

	if _, err := b.page.Goto(searchURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navTimeout),
	}); err != nil {
		return nil, fmt.Errorf("load search page: %w", err)
	}

	if _, err := b.page.WaitForSelector("li.scaffold-layout__list-item, .job-card-container", playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(selectorTimeout),
	}); err != nil {
		b.logger.Debug("no linkedin results rendered", zap.String("query", query))
		return nil, nil
	}

	cards, err := b.page.Locator("li.scaffold-layout__list-item, li.jobs-search-results__list-item").All()
	if err != nil {
		return nil, fmt.Errorf("collect result cards: %w", err)
	}

	postings := make([]*jobs.Posting, 0, len(cards))
	for i, card := range cards {
		if i == maxPostings {
			break
		}

		title := textOf(card.Locator("a.job-card-container__link").First())
		company := textOf(card.Locator(".artdeco-entity-lockup__subtitle").First())
		if title == "" || company == "" {
			continue
		}

		link, _ := card.Locator("a.job-card-container__link").First().GetAttribute("href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = "https://www.linkedin.com" + link
		}
		// Drop tracking params so the same job dedupes to one link.
		link, _, _ = strings.Cut(link, "?")

		postings = append(postings, &jobs.Posting{
			Role:     title,
			Company:  company,
			Location: location,
			Link:     link,
		})
	}

	b.logger.Info("linkedin search finished",
		zap.String("query", query),
		zap.String("location", location),
		zap.Int("postings", len(postings)),
	)
	return postings, nil
}

// Apply opens the posting and submits an Easy Apply application. A paced
// wait keeps the session below automation-detection thresholds.
func (b *Board) Apply(ctx context.Context, posting *jobs.Posting) (*jobs.Application, error) {
	if b.page == nil {
		return nil, fmt.Errorf("not logged in")
	}

	if err := util.WaitFor(ctx, randomPause()); err != nil {
		return nil, err
	}

	if _, err := b.page.Goto(posting.Link, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navTimeout),
	}); err != nil {
		return nil, fmt.Errorf("load posting: %w", err)
	}

	if err := b.page.Locator("button.jobs-apply-button").First().Click(); err != nil {
		return nil, fmt.Errorf("open apply dialog: %w", err)
	}
	if err := b.page.Locator("button[aria-label='Submit application']").Click(); err != nil {
		return nil, fmt.Errorf("submit application: %w", err)
	}

	b.logger.Info("applied on linkedin",
		zap.String("role", posting.Role),
		zap.String("company", posting.Company),
	)
	return jobs.NewApplication(posting, jobs.StatusApplied, b.Name()), nil
}

// Close shuts the browser down.
func (b *Board) Close() error {
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			return err
		}
		b.browser = nil
	}
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			return err
		}
		b.pw = nil
	}
	b.page = nil
	return nil
}

func (b *Board) startBrowser() error {
	if b.page != nil {
		return nil
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.cfg.Headless),
	})
	if err != nil {
		pw.Stop()
		return fmt.Errorf("launch chromium: %w", err)
	}

	page, err := browser.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return fmt.Errorf("open page: %w", err)
	}

	b.pw = pw
	b.browser = browser
	b.page = page
	return nil
}

func textOf(locator playwright.Locator) string {
	text, err := locator.TextContent()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func randomPause() time.Duration {
	return time.Duration(3000+rand.Intn(3000)) * time.Millisecond
}
