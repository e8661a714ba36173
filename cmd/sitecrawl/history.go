package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitecrawl/internal/config"
	"github.com/nao1215/sitecrawl/internal/database"
	"github.com/nao1215/sitecrawl/internal/report"
)

// defaultHistoryLimit is the number of runs listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [hostname]",
		Short: "List recorded crawl runs",
		Long: `History lists crawl runs recorded in the sitecrawl database, newest first.

Without a hostname, runs for every host are listed. --run shows one run in
detail and --url shows when a single URL was last expanded.

Examples:
  # Recent runs for all hosts
  sitecrawl history

  # Runs for one host as a Markdown table
  sitecrawl history example.com --markdown

  # Hosts that have been crawled, with their visited URL counts
  sitecrawl history --hosts

  # Details of run 42
  sitecrawl history --run 42

  # When was this page last expanded?
  sitecrawl history --url https://example.com/about`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("markdown", "m", false, "Output a Markdown report")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of runs to list (0 lists all)")
	cmd.Flags().Bool("hosts", false, "List crawled hostnames instead of runs")
	cmd.Flags().Int64("run", 0, "Show the run with this ID")
	cmd.Flags().String("url", "", "Show the last recorded visit of this URL")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	markdown, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	hostsOnly, err := flags.GetBool("hosts")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	runID, err := flags.GetInt64("run")
	if err != nil {
		return err
	}
	pageURL, err := flags.GetString("url")
	if err != nil {
		return err
	}

	var hostname string
	if len(args) > 0 {
		hostname = args[0]
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case runID != 0:
		run, err := db.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		if markdown {
			_, err = report.NewMarkdownWriter(out).WriteRun(run)
			return err
		}
		_, err = report.NewSimpleWriter(out).WriteRun(run)
		return err

	case pageURL != "":
		at, ok, err := db.LastVisit(ctx, pageURL)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(out, "%s\tnever visited\n", pageURL)
			return nil
		}
		fmt.Fprintf(out, "%s\tlast visited %s\n", pageURL, at.Local().Format(time.RFC3339))
		return nil
	}

	if hostsOnly {
		hosts, err := db.ListHosts(ctx)
		if err != nil {
			return err
		}
		for _, h := range hosts {
			visited, err := db.CountVisits(ctx, h)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\t%d urls visited\n", h, visited)
		}
		return nil
	}

	runs, err := db.ListRuns(ctx, hostname, limit)
	if err != nil {
		return err
	}

	if markdown {
		_, err = report.NewMarkdownWriter(out).WriteHistory(hostname, runs)
		return err
	}
	_, err = report.NewSimpleWriter(out).WriteHistory(runs)
	return err
}
