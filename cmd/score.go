package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jobpilot/jobpilot/internal/logger"
	"github.com/jobpilot/jobpilot/internal/resume"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var scoreCmd = &cobra.Command{
	Use:   "score <job-description-file>",
	Short: "Score the configured resume against a job description",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		score(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("resume", "r", "", "resume file to score (default from config)")
}

func score(cmd *cobra.Command, descriptionFile string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	description, err := os.ReadFile(descriptionFile)
	if err != nil {
		logger.Fatal("reading job description", zap.Error(err))
	}

	resumePath := cmd.Flag("resume").Value.String()
	if resumePath == "" {
		resumePath = config.Resume
	}

	resumeText, err := resume.ExtractDocumentText(resumePath)
	if err != nil {
		logger.Fatal("reading resume", zap.String("path", resumePath), zap.Error(err))
	}

	completer, err := newCompleter(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("scoring without the llm backend", zap.Error(err))
	}

	analysis := newScorer(completer, config.AI, logger).Score(ctx, resumeText, string(description))

	pretty, _ := json.MarshalIndent(analysis, "", "  ")
	fmt.Println(string(pretty))
}
