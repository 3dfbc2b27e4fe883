package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lisun-ai/DocAgent/internal/batch"
	"github.com/lisun-ai/DocAgent/internal/config"
	"github.com/lisun-ai/DocAgent/internal/doctree"
)

var outlineDataDir string
var outlineConfigFile string

var outlineCmd = &cobra.Command{
	Use:   "outline <doc-id>",
	Short: "Print the pruned outline of a preprocessed document",
	Long: `Build the document tree for one preprocessed document and print the
pruned outline projection exactly as the actor prompt would see it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(outlineConfigFile)
		if err != nil {
			return err
		}

		doc, err := batch.LoadDocument(outlineDataDir, args[0], cfg.MaxSectionDepth)
		if err != nil {
			return err
		}

		outline := doc.Tree.Outline(cfg.OutlineSkipPage, cfg.OutlineCaptionPage)
		fmt.Fprint(cmd.OutOrStdout(), doctree.Render(outline))
		return nil
	},
}

func init() {
	outlineCmd.Flags().StringVar(&outlineDataDir, "data-dir", "./preprocess/processed_output", "Preprocessed document directory")
	outlineCmd.Flags().StringVar(&outlineConfigFile, "config", "docagent.yaml", "Config file path")

	rootCmd.AddCommand(outlineCmd)
}
