package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lisun-ai/DocAgent/internal/batch"
	"github.com/lisun-ai/DocAgent/internal/config"
	"github.com/lisun-ai/DocAgent/internal/doctree"
)

var searchDataDir string
var searchConfigFile string

var searchCmd = &cobra.Command{
	Use:   "search <doc-id> <keyword>",
	Short: "Search a preprocessed document for a keyword",
	Long: `Build the document tree for one preprocessed document and run the
case-insensitive keyword search the agent's search tool uses.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(searchConfigFile)
		if err != nil {
			return err
		}

		doc, err := batch.LoadDocument(searchDataDir, args[0], cfg.MaxSectionDepth)
		if err != nil {
			return err
		}

		matches := doc.Tree.Search(args[1])
		if len(matches) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no results for %q\n", args[1])
			return nil
		}
		if len(matches) > cfg.MaxSearchResults {
			fmt.Fprintf(cmd.OutOrStdout(), "showing first %d of %d results\n", cfg.MaxSearchResults, len(matches))
			matches = matches[:cfg.MaxSearchResults]
		}
		fmt.Fprint(cmd.OutOrStdout(), doctree.RenderMatches(matches))
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchDataDir, "data-dir", "./preprocess/processed_output", "Preprocessed document directory")
	searchCmd.Flags().StringVar(&searchConfigFile, "config", "docagent.yaml", "Config file path")

	rootCmd.AddCommand(searchCmd)
}
