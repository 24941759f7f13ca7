package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/jobpilot/jobpilot/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the outcomes of tracked applications",
	Run: func(_ *cobra.Command, _ []string) {
		applicationStats()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func applicationStats() {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	service, err := newStatsService(config, logger)
	if err != nil {
		logger.Fatal("opening the application store", zap.Error(err))
	}

	summary, err := service.Collect()
	if err != nil {
		logger.Fatal("collecting stats", zap.Error(err))
	}

	pretty, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(pretty))
}
