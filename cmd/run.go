package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jobpilot/jobpilot/internal/logger"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search postings, score them against the resume, and apply in a batch",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("platform", "p", "linkedin", "job board to run against")
	runCmd.Flags().IntP("count", "n", 0, "target number of applications (default from config)")
	runCmd.Flags().Bool("dry-run", false, "score and tailor without logging in or submitting")
	runCmd.Flags().BoolP("auto-aprove", "y", false, "do not ask for confirmation before applying")
	runCmd.Flags().Int("min-score", 0, "minimum ATS score a posting must reach")

	viper.BindPFlag("search.min-score", runCmd.Flags().Lookup("min-score"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting jobpilot", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	platform := cmd.Flag("platform").Value.String()
	dryRun := cmd.Flag("dry-run").Value.String() == "true"

	count, err := cmd.Flags().GetInt("count")
	if err != nil {
		logger.Fatal("reading count flag", zap.Error(err))
	}

	runnerCfg := runnerConfigFromSearch(config)
	runnerCfg.DryRun = dryRun

	if !dryRun && cmd.Flag("auto-aprove").Value.String() == "false" {
		logger.Info("about to submit real applications",
			zap.String("platform", platform),
			zap.Int("target", count),
		)
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	runner, err := newRunner(ctx, config, runnerCfg, logger)
	if err != nil {
		logger.Fatal("building the batch runner", zap.Error(err))
	}

	result, err := runner.RunBatch(ctx, platform, count)
	if err != nil {
		logger.Fatal("batch failed", zap.Error(err))
	}

	summary, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(summary))
}
