package cmd

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobpilot"
)

type Config struct {
	// DataDir holds one directory per application record.
	DataDir string `mapstructure:"data-dir"`
	// TempResumesDir holds tailored resume artifacts awaiting review.
	TempResumesDir string `mapstructure:"temp-resumes-dir"`
	// ReportsDir receives inbox scan reports.
	ReportsDir  string `mapstructure:"reports-dir"`
	SecretsFile string `mapstructure:"secrets-file"`
	// Resume is the path to the base resume, YAML or PDF.
	Resume string `mapstructure:"resume"`

	Search   *SearchConfig   `mapstructure:"search"`
	Storage  *StorageConfig  `mapstructure:"storage"`
	AI       *AIConfig       `mapstructure:"ai"`
	Inbox    *InboxConfig    `mapstructure:"inbox"`
	Telegram *TelegramConfig `mapstructure:"telegram"`
	Boards   *BoardsConfig   `mapstructure:"boards"`
	Server   *ServerConfig   `mapstructure:"server"`
}

type SearchConfig struct {
	// Positions to search for. Empty means derive them from the resume.
	Positions        []string `mapstructure:"positions"`
	Locations        []string `mapstructure:"locations"`
	MinScore         int      `mapstructure:"min-score"`
	BlockedCompanies []string `mapstructure:"blocked-companies"`
}

type StorageConfig struct {
	// Driver is "fs" (default) or "postgres".
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
	DSNFile string `mapstructure:"dsn-file"`
}

type AIConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Provider is "gemini" (default) or "openai".
	Provider     string        `mapstructure:"provider"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
	OpenAI       *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type OpenAIConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type InboxConfig struct {
	Provider      string `mapstructure:"provider"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	LookbackHours int    `mapstructure:"lookback-hours"`
}

type TelegramConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	TokenFile string `mapstructure:"token-file"`
	ChatID    int64  `mapstructure:"chat-id"`
}

type BoardsConfig struct {
	LinkedIn *LinkedInConfig `mapstructure:"linkedin"`
	Indeed   *IndeedConfig   `mapstructure:"indeed"`
}

type LinkedInConfig struct {
	Headless bool `mapstructure:"headless"`
}

type IndeedConfig struct {
	TokenFile string `mapstructure:"token-file"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobpilot searches job boards, scores postings against your resume, and applies for you",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("secrets-file", "JOBPILOT_SECRETS_FILE"); err != nil {
		log.Fatalf("binding JOBPILOT_SECRETS_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobpilot.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Local .env files are optional.
	_ = godotenv.Load()

	viper.SetDefault("data-dir", "applications")
	viper.SetDefault("temp-resumes-dir", "temp-resumes")
	viper.SetDefault("reports-dir", ".")
	viper.SetDefault("secrets-file", "secrets.yaml")
	viper.SetDefault("resume", "resume.yaml")
	viper.SetDefault("storage.driver", "fs")
	viper.SetDefault("ai.provider", "gemini")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	err := viper.ReadInConfig()
	if err == nil {
		return
	}

	// Running with built-in defaults is fine, a broken config file is not.
	var notFound viper.ConfigFileNotFoundError
	if cfgFile == "" && errors.As(err, &notFound) {
		return
	}
	log.Fatal(err)
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Search == nil {
		config.Search = &SearchConfig{}
	}
	if config.Storage == nil {
		config.Storage = &StorageConfig{Driver: "fs"}
	}

	return config, nil
}
