package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nakia73/autowordpress/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "autowordpress",
	Short: "SEO article generator with search-grounded research",
	Long: `autowordpress generates publish-ready SEO articles from a target keyword.

Each run performs multi-phase web research, plans an outline, writes the
article HTML, produces a meta description and optionally generates a
thumbnail and section images.`,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		logger.Init()
	})

	rootCmd.AddCommand(NewGenerateCmd())
}
