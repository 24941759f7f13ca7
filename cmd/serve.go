package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jobpilot/jobpilot/internal/inbox"
	"github.com/jobpilot/jobpilot/internal/logger"
	"github.com/jobpilot/jobpilot/internal/tailoring"
	"github.com/jobpilot/jobpilot/internal/web"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
}

func serve(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	secretValues, err := loadSecretsFile(config.SecretsFile)
	if err != nil {
		logger.Fatal("loading secrets", zap.Error(err))
	}

	runner, err := newRunner(ctx, config, runnerConfigFromSearch(config), logger)
	if err != nil {
		logger.Fatal("building the batch runner", zap.Error(err))
	}

	completer, err := newCompleter(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("serving without the llm backend", zap.Error(err))
	}

	statsService, err := newStatsService(config, logger)
	if err != nil {
		logger.Fatal("opening the application store", zap.Error(err))
	}

	tailoredStore, err := tailoring.NewStore(config.TempResumesDir, logger)
	if err != nil {
		logger.Fatal("opening the tailored resume store", zap.Error(err))
	}
	appStore, err := newStore(config, logger)
	if err != nil {
		logger.Fatal("opening the application store", zap.Error(err))
	}

	server := web.New(web.Config{
		Runner:      runner,
		Scorer:      newScorer(completer, config.AI, logger),
		Scanner:     inbox.NewScanService(config.ReportsDir, logger, inbox.WithAutoUpdate(tailoredStore, appStore)),
		Credentials: inboxCredentials(config.Inbox, secretValues),
		Stats:       statsService,
		Tailored:    tailoredStore,
	}, logger)

	addr := cmd.Flag("addr").Value.String()
	if addr == "" && config.Server != nil {
		addr = config.Server.Addr
	}
	if addr == "" {
		addr = ":8080"
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("api server failed", zap.Error(err))
		}
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}
}
