package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mkurosawa/github-org-pulse/internal/aggregator"
	"github.com/mkurosawa/github-org-pulse/internal/collector"
	"github.com/mkurosawa/github-org-pulse/internal/config"
	"github.com/mkurosawa/github-org-pulse/internal/storage"
	"github.com/mkurosawa/github-org-pulse/internal/storage/postgres"
	"github.com/mkurosawa/github-org-pulse/internal/storage/sqlite"
	"github.com/mkurosawa/github-org-pulse/internal/syncer"
)

var (
	outputJSON bool
	weekDate   string
)

var rootCmd = &cobra.Command{
	Use:   "org-pulse",
	Short: "GitHub organization activity tool",
	Long: `A CLI tool for syncing GitHub organization activity and deriving reports.

It resolves an organization, merges its membership, collects per-repository
activity series, and reduces them into a weekly code-delta report and a
7x24 commit-activity grid.`,
}

var syncCmd = &cobra.Command{
	Use:   "sync [org]",
	Short: "Run one sync cycle for an organization",
	Long:  `Resolve the organization, merge its membership and refresh member repository stats.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSync,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Derive reports from synced data",
}

var reportCodeFreqCmd = &cobra.Command{
	Use:   "codefreq [org]",
	Short: "Show the weekly code-delta report",
	Long:  `Display per-member, per-repository additions and deletions for one week.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runReportCodeFreq,
}

var reportPunchCardCmd = &cobra.Command{
	Use:   "punchcard [org]",
	Short: "Show the commit-activity grid",
	Long:  `Display commit counts bucketed by day of week and hour of day.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runReportPunchCard,
}

var reportCyclesCmd = &cobra.Command{
	Use:   "cycles [org]",
	Short: "Show recent sync cycles",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportCycles,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	reportCodeFreqCmd.Flags().StringVar(&weekDate, "week", "", "week boundary (YYYY-MM-DD, default last completed Saturday)")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportCodeFreqCmd)
	reportCmd.AddCommand(reportPunchCardCmd)
	reportCmd.AddCommand(reportCyclesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageType {
	case "postgres":
		return postgres.NewPostgresStorage(cfg.PostgresURL)
	default:
		return sqlite.NewSQLiteStorage(cfg.SQLitePath)
	}
}

func getWindow() (aggregator.WindowFunc, error) {
	if weekDate == "" {
		return aggregator.LastCompletedWeek(time.Now(), time.Local), nil
	}
	boundary, err := time.Parse("2006-01-02", weekDate)
	if err != nil {
		return nil, fmt.Errorf("invalid --week value %q: %w", weekDate, err)
	}
	return aggregator.ExactWeek(boundary), nil
}

func runSync(cmd *cobra.Command, args []string) error {
	org := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	source := collector.NewGitHubSource(cfg.GitHubToken)
	sync := syncer.New(store, source, cfg.SyncPageSize, cfg.StatsWorkers)

	fmt.Printf("Syncing organization: %s\n", org)
	doc, err := sync.Sync(context.Background(), org)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	repoCount := 0
	for _, member := range doc.Members {
		repoCount += len(member.Repos)
	}
	fmt.Printf("Synced %s: %d members, %d recently updated repositories\n", doc.Username, len(doc.Members), repoCount)
	return nil
}

func runReportCodeFreq(cmd *cobra.Command, args []string) error {
	org := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	window, err := getWindow()
	if err != nil {
		return err
	}

	agg := aggregator.NewAggregator(store)
	entries, err := agg.CodeFrequencyReport(context.Background(), org, window)
	if err != nil {
		return fmt.Errorf("failed to derive report: %w", err)
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(entries)
	}

	fmt.Printf("\nWeekly Code Delta: %s\n\n", org)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Member", "Repository", "Additions", "Deletions", "Net"})
	for _, e := range entries {
		table.Append([]string{
			e.Username,
			e.Repo,
			fmt.Sprintf("%d", e.Additions),
			fmt.Sprintf("%d", e.Deletions),
			fmt.Sprintf("%d", e.Net),
		})
	}
	table.Render()

	return nil
}

func runReportPunchCard(cmd *cobra.Command, args []string) error {
	org := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	agg := aggregator.NewAggregator(store)
	buckets, err := agg.PunchCardReport(context.Background(), org)
	if err != nil {
		return fmt.Errorf("failed to derive report: %w", err)
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(buckets)
	}

	fmt.Printf("\nCommit Activity: %s\n\n", org)

	// One row per day, one column per hour.
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	header := []string{"Day"}
	for hour := 0; hour < 24; hour++ {
		header = append(header, fmt.Sprintf("%02d", hour))
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	for day := 0; day < 7; day++ {
		row := []string{days[day]}
		for hour := 0; hour < 24; hour++ {
			row = append(row, fmt.Sprintf("%d", buckets[day*24+hour].Commits))
		}
		table.Append(row)
	}
	table.Render()

	return nil
}

func runReportCycles(cmd *cobra.Command, args []string) error {
	org := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	cycles, err := store.GetSyncCycles(context.Background(), org, 20)
	if err != nil {
		return fmt.Errorf("failed to get sync cycles: %w", err)
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(cycles)
	}

	fmt.Printf("\nSync Cycles: %s\n\n", org)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "State", "Started", "Finished", "Error"})
	for _, c := range cycles {
		finished := ""
		if c.FinishedAt != nil {
			finished = c.FinishedAt.Format(time.RFC3339)
		}
		table.Append([]string{
			c.ID,
			string(c.State),
			c.StartedAt.Format(time.RFC3339),
			finished,
			c.Error,
		})
	}
	table.Render()

	return nil
}
