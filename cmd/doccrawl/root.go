// Package main provides the entry point for the doccrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for doccrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doccrawl",
		Short: "Collect clinical program pages from treatment-provider sites",
		Long: `doccrawl crawls treatment-provider websites and collects the pages that
matter for aftercare documentation: treatment programs, clinical
approaches, and the conditions a provider treats.

Links are prioritized by clinical relevance, fetched in small polite
batches, and a speculative second-level pass follows the most valuable
links found on high-value pages.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
