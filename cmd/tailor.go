package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/jobpilot/jobpilot/internal/logger"
	"github.com/jobpilot/jobpilot/internal/tailoring"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Review tailored resumes awaiting confirmation",
}

var tailorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tailored resumes and their review status",
	Run: func(_ *cobra.Command, _ []string) {
		withTailoredStore(func(store *tailoring.Store, logger *zap.Logger) {
			records, err := store.List()
			if err != nil {
				logger.Fatal("listing tailored resumes", zap.Error(err))
			}

			pretty, _ := json.MarshalIndent(records, "", "  ")
			fmt.Println(string(pretty))
		})
	},
}

var tailorConfirmCmd = &cobra.Command{
	Use:   "confirm <job-id>",
	Short: "Confirm a tailored resume, keeping its PDF",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		withTailoredStore(func(store *tailoring.Store, logger *zap.Logger) {
			record, err := store.Confirm(args[0])
			if err != nil {
				logger.Fatal("confirming tailored resume", zap.String("job_id", args[0]), zap.Error(err))
			}
			logger.Info("tailored resume confirmed",
				zap.String("job_id", record.JobID),
				zap.String("status", record.Status),
			)
		})
	},
}

var tailorDiscardCmd = &cobra.Command{
	Use:   "discard <job-id>",
	Short: "Discard a tailored resume, deleting its PDF",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		withTailoredStore(func(store *tailoring.Store, logger *zap.Logger) {
			record, err := store.Discard(args[0])
			if err != nil {
				logger.Fatal("discarding tailored resume", zap.String("job_id", args[0]), zap.Error(err))
			}
			logger.Info("tailored resume discarded",
				zap.String("job_id", record.JobID),
				zap.String("status", record.Status),
			)
		})
	},
}

func init() {
	rootCmd.AddCommand(tailorCmd)
	tailorCmd.AddCommand(tailorListCmd)
	tailorCmd.AddCommand(tailorConfirmCmd)
	tailorCmd.AddCommand(tailorDiscardCmd)
}

func withTailoredStore(fn func(*tailoring.Store, *zap.Logger)) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store, err := tailoring.NewStore(config.TempResumesDir, logger)
	if err != nil {
		logger.Fatal("opening the tailored resume store", zap.Error(err))
	}

	fn(store, logger)
}
