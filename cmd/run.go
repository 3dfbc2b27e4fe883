package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lisun-ai/DocAgent/internal/agent"
	"github.com/lisun-ai/DocAgent/internal/batch"
	"github.com/lisun-ai/DocAgent/internal/config"
)

var runDataDir string
var runSamplesDir string
var runResultsDir string
var runConfigFile string
var runModel string
var runMaxRounds int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the question-answering batch",
	Long: `Run the Actor / Reviewer / Reflection protocol over every question
sample, sharing the memory guideline across the batch. Existing job
artifacts are skipped, so an interrupted batch can be resumed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(runConfigFile)
		if err != nil {
			return err
		}
		if runModel != "" {
			cfg.Model = runModel
		}
		if runMaxRounds > 0 {
			cfg.MaxRounds = runMaxRounds
		}

		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}

		runner := &batch.Runner{
			DataDir:    runDataDir,
			SamplesDir: runSamplesDir,
			ResultsDir: runResultsDir,
			Completer:  agent.NewOpenAICompleter(apiKey),
			Config:     cfg,
			Output:     cmd.OutOrStdout(),
		}
		return runner.Run(context.Background())
	},
}

func init() {
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "./preprocess/processed_output", "Preprocessed document directory")
	runCmd.Flags().StringVar(&runSamplesDir, "samples-dir", "./sample_data", "Raw question samples directory")
	runCmd.Flags().StringVar(&runResultsDir, "results-dir", "./sample_results", "Directory for job artifacts")
	runCmd.Flags().StringVar(&runConfigFile, "config", "docagent.yaml", "Config file path")

	// Model flag with env var fallback
	defaultModel := ""
	if envModel := os.Getenv("DOCAGENT_MODEL"); envModel != "" {
		defaultModel = envModel
	}
	runCmd.Flags().StringVar(&runModel, "model", defaultModel, "Override the configured chat model")
	runCmd.Flags().IntVarP(&runMaxRounds, "max-rounds", "n", 0, "Override the maximum tool-calling rounds")

	rootCmd.AddCommand(runCmd)
}
