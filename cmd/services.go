package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jobpilot/jobpilot/internal/ai"
	"github.com/jobpilot/jobpilot/internal/ai/gemini"
	"github.com/jobpilot/jobpilot/internal/ai/openai"
	"github.com/jobpilot/jobpilot/internal/boards"
	"github.com/jobpilot/jobpilot/internal/boards/indeed"
	"github.com/jobpilot/jobpilot/internal/boards/linkedin"
	"github.com/jobpilot/jobpilot/internal/inbox"
	"github.com/jobpilot/jobpilot/internal/notify"
	"github.com/jobpilot/jobpilot/internal/orchestrator"
	"github.com/jobpilot/jobpilot/internal/render"
	"github.com/jobpilot/jobpilot/internal/scoring"
	"github.com/jobpilot/jobpilot/internal/secrets"
	"github.com/jobpilot/jobpilot/internal/stats"
	"github.com/jobpilot/jobpilot/internal/storage"
	"github.com/jobpilot/jobpilot/internal/tailoring"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// loadSecretsFile reads the flat key/value secrets file. A missing file is
// not an error, every key simply resolves to the empty string.
func loadSecretsFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets file %q: %w", path, err)
	}

	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing secrets file %q: %w", path, err)
	}
	for key, value := range values {
		values[key] = strings.TrimSpace(value)
	}
	return values, nil
}

func newStore(config *Config, logger *zap.Logger) (storage.Store, error) {
	if config.Storage != nil && config.Storage.Driver == "postgres" {
		dsn, err := secrets.Load(secrets.Source{
			Name:  "postgres dsn",
			Value: config.Storage.DSN,
			File:  config.Storage.DSNFile,
			Env:   "JOBPILOT_POSTGRES_DSN",
		})
		if err != nil {
			return nil, err
		}
		return storage.NewPostgresStore(dsn, logger)
	}

	return storage.NewFSStore(config.DataDir, logger)
}

// newCompleter builds the configured LLM backend. Disabled or unconfigured AI
// yields a nil completer, which downgrades scoring and tailoring to their
// rule-based paths.
func newCompleter(ctx context.Context, config *AIConfig, logger *zap.Logger) (ai.Completer, error) {
	if config == nil || !config.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	switch provider {
	case "", "gemini":
		if config.Gemini == nil {
			return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: config.Gemini.APIKeyFile,
			Env:  "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, err
		}
		return gemini.New(ctx, apiKey, config.Gemini.Model, config.Gemini.MaxRetries, logger)
	case "openai":
		if config.OpenAI == nil {
			return nil, fmt.Errorf("openai configuration is required when ai is enabled")
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name: "openai api key",
			File: config.OpenAI.APIKeyFile,
			Env:  "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, err
		}
		return openai.New(apiKey, config.OpenAI.Model)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}
}

func newScorer(completer ai.Completer, config *AIConfig, logger *zap.Logger) *scoring.Engine {
	cfg := scoring.Config{}
	if config != nil {
		cfg.MaxLogLength = config.MaxLogLength
	}
	return scoring.NewEngine(completer, cfg, logger)
}

// newTailorEngine wires the tailoring pipeline. The PDF renderer is best
// effort, without a working Chromium the engine keeps producing YAML only.
func newTailorEngine(completer ai.Completer, store *tailoring.Store, logger *zap.Logger) *tailoring.Engine {
	var renderer render.Renderer
	chromium, err := render.NewChromiumRenderer()
	if err != nil {
		logger.Warn("pdf rendering disabled", zap.Error(err))
	} else {
		renderer = chromium
	}
	return tailoring.NewEngine(completer, renderer, store, logger)
}

func newRegistry(config *Config, secretValues map[string]string, logger *zap.Logger) *boards.Registry {
	registry := boards.NewRegistry()

	registry.Register("linkedin", func() (boards.Source, error) {
		email := secretValues["linkedin_email"]
		password := secretValues["linkedin_password"]
		if email == "" || password == "" {
			return nil, fmt.Errorf("add 'linkedin_email' and 'linkedin_password' to the secrets file")
		}

		headless := true
		if config.Boards != nil && config.Boards.LinkedIn != nil {
			headless = config.Boards.LinkedIn.Headless
		}
		return linkedin.New(linkedin.Config{
			Email:    email,
			Password: password,
			Headless: headless,
		}, logger), nil
	})

	registry.Register("indeed", func() (boards.Source, error) {
		tokenFile := ""
		if config.Boards != nil && config.Boards.Indeed != nil {
			tokenFile = config.Boards.Indeed.TokenFile
		}
		token, err := secrets.Load(secrets.Source{
			Name:  "indeed api token",
			Value: secretValues["indeed_token"],
			File:  tokenFile,
			Env:   "INDEED_TOKEN",
		})
		if err != nil {
			return nil, err
		}
		return indeed.New(token, logger), nil
	})

	return registry
}

func newNotifier(config *TelegramConfig, logger *zap.Logger) notify.Notifier {
	if config == nil || !config.Enabled {
		return nil
	}

	token, err := secrets.Load(secrets.Source{
		Name: "telegram bot token",
		File: config.TokenFile,
		Env:  "TELEGRAM_BOT_TOKEN",
	})
	if err != nil {
		logger.Warn("telegram notifications disabled", zap.Error(err))
		return nil
	}

	notifier, err := notify.NewTelegramNotifier(token, config.ChatID)
	if err != nil {
		logger.Warn("telegram notifications disabled", zap.Error(err))
		return nil
	}
	return notifier
}

func newRunner(ctx context.Context, config *Config, runnerCfg orchestrator.Config, logger *zap.Logger) (*orchestrator.Runner, error) {
	secretValues, err := loadSecretsFile(config.SecretsFile)
	if err != nil {
		return nil, err
	}

	store, err := newStore(config, logger)
	if err != nil {
		return nil, err
	}

	completer, err := newCompleter(ctx, config.AI, logger)
	if err != nil {
		return nil, err
	}

	tailoredStore, err := tailoring.NewStore(config.TempResumesDir, logger)
	if err != nil {
		return nil, err
	}

	return orchestrator.NewRunner(
		newRegistry(config, secretValues, logger),
		store,
		newScorer(completer, config.AI, logger),
		newTailorEngine(completer, tailoredStore, logger),
		newNotifier(config.Telegram, logger),
		runnerCfg,
		logger,
	), nil
}

func newStatsService(config *Config, logger *zap.Logger) (*stats.Service, error) {
	store, err := newStore(config, logger)
	if err != nil {
		return nil, err
	}
	return stats.NewService(store, logger), nil
}

func inboxCredentials(config *InboxConfig, secretValues map[string]string) inbox.Credentials {
	creds := inbox.Credentials{
		Email:    secretValues["inbox_email"],
		Password: secretValues["inbox_app_password"],
	}
	if config != nil {
		creds.Provider = config.Provider
		creds.Host = config.Host
		creds.Port = config.Port
	}
	return creds
}

func runnerConfigFromSearch(config *Config) orchestrator.Config {
	cfg := orchestrator.Config{ResumePath: config.Resume}
	if config.Search != nil {
		cfg.Positions = config.Search.Positions
		cfg.Locations = config.Search.Locations
		cfg.MinScore = config.Search.MinScore
		cfg.BlockedCompanies = config.Search.BlockedCompanies
	}
	return cfg
}
