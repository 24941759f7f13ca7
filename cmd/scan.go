package cmd

import (
	"context"
	"log"

	"github.com/jobpilot/jobpilot/internal/inbox"
	"github.com/jobpilot/jobpilot/internal/logger"
	"github.com/jobpilot/jobpilot/internal/tailoring"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the inbox for recruiter replies and update application statuses",
	Run: func(cmd *cobra.Command, _ []string) {
		scan(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Int("lookback", 0, "hours of mail to scan (default one week)")
	scanCmd.Flags().Bool("no-update", false, "only write the report, do not touch application statuses")
}

func scan(cmd *cobra.Command) {
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

	lookback, err := cmd.Flags().GetInt("lookback")
	if err != nil {
		logger.Fatal("reading lookback flag", zap.Error(err))
	}
	if lookback == 0 && config.Inbox != nil {
		lookback = config.Inbox.LookbackHours
	}

	opts := []inbox.Option{}
	if cmd.Flag("no-update").Value.String() == "false" {
		tailoredStore, err := tailoring.NewStore(config.TempResumesDir, logger)
		if err != nil {
			logger.Fatal("opening the tailored resume store", zap.Error(err))
		}
		appStore, err := newStore(config, logger)
		if err != nil {
			logger.Fatal("opening the application store", zap.Error(err))
		}
		opts = append(opts, inbox.WithAutoUpdate(tailoredStore, appStore))
	}

	service := inbox.NewScanService(config.ReportsDir, logger, opts...)

	summary, err := service.Run(ctx, inboxCredentials(config.Inbox, secretValues), lookback)
	if err != nil {
		logger.Fatal("inbox scan failed", zap.Error(err))
	}

	logger.Info("inbox scan finished",
		zap.Int("total_messages", summary.TotalMessages),
		zap.Int("rejections", summary.RejectionMessages),
		zap.Int("recruiter", summary.RecruiterMessages),
		zap.Int("interviews", summary.InterviewMessages),
		zap.Int("status_updates", len(summary.Updates)),
	)

	for _, update := range summary.Updates {
		logger.Info("application status updated",
			zap.String("job_id", update.JobID),
			zap.String("company", update.Company),
			zap.String("new_status", update.NewStatus),
		)
	}
}
