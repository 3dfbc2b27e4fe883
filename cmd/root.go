package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lisun-ai/DocAgent/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "docagent",
	Short: "Agentic question answering over long structured documents",
	Long: `DocAgent answers natural-language questions about long structured
documents (reports with headings, tables, and figures) by letting a
reasoning model explore the document through retrieval tools, then
validating and refining its answer over multiple passes.

Documents must be preprocessed into per-document directories containing
records.jsonl, figures/, and page_images/.`,
}

func init() {
	// Optional .env for OPENAI_API_KEY and friends
	_ = godotenv.Load()

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("docagent %s\n", version.String()))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
