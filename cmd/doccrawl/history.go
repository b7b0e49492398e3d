package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jimmyjon121/Doc-Creator-sub009/internal/config"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past crawl sessions from the journal",
		Long: `History lists recorded crawl sessions: when each ran, how many pages
were collected, and how many URLs failed. The journal stores metadata
only, never page content.

Examples:
  # Show the last 10 sessions
  doccrawl history

  # Show the last 3 sessions with their visited URLs
  doccrawl history --limit 3 --urls

  # Remove sessions older than 30 days
  doccrawl history --prune 720h`,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 10,
		"Maximum number of sessions to show")
	cmd.Flags().Bool("urls", false,
		"Show the visited URLs for each session")
	cmd.Flags().Duration("prune", 0,
		"Remove sessions older than this duration instead of listing")
	cmd.Flags().String("db-dir", "",
		"Directory for the crawl journal (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	showURLs, err := cmd.Flags().GetBool("urls")
	if err != nil {
		return err
	}

	prune, err := cmd.Flags().GetDuration("prune")
	if err != nil {
		return err
	}

	// The journal must already exist; history never creates one
	journal, err := database.Open(dbDir, database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no crawl journal found (run a crawl first): %w", err)
	}
	defer journal.Close()

	ctx := cmd.Context()

	if prune > 0 {
		removed, err := journal.PurgeBefore(ctx, time.Now().Add(-prune))
		if err != nil {
			return fmt.Errorf("failed to prune journal: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d session(s) older than %s\n", removed, prune)
		return nil
	}

	sessions, err := journal.RecentSessions(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl sessions recorded yet.")
		return nil
	}

	for _, s := range sessions {
		fmt.Fprintf(cmd.OutOrStdout(), "#%d  %s  seeds=%d pages=%d cached=%d failed=%d\n",
			s.ID,
			s.StartedAt.Format("2006-01-02 15:04:05"),
			s.Seeds,
			s.Pages,
			s.Cached,
			s.Failed,
		)

		if !showURLs {
			continue
		}

		visits, err := journal.SessionVisits(ctx, s.ID)
		if err != nil {
			return fmt.Errorf("failed to list visits for session %d: %w", s.ID, err)
		}
		for _, v := range visits {
			marker := " "
			if v.SecondLevel {
				marker = ">"
			}
			origin := "network"
			if v.FromCache {
				origin = "cache"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s (%s, %d bytes)\n", marker, v.URL, origin, v.ContentLength)
		}
	}

	return nil
}
