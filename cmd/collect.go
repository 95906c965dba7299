package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mlsweep/sweepctl/internal/collector"
	"github.com/mlsweep/sweepctl/internal/config"
	"github.com/mlsweep/sweepctl/internal/manifest"
	"github.com/mlsweep/sweepctl/internal/models"
	"github.com/mlsweep/sweepctl/internal/platform"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect sweep results into one table",
	Long: `Collect the results of a completed hyperparameter sweep.

Child runs are fetched in rank order (ranked by the sweep's primary metric),
each child's result artifacts are downloaded and parsed, and every row is
joined with the child's parameters and identifiers. The combined table is
written locally and uploaded back to the parent run.

A child that fails (missing artifact, unparsable file) contributes nothing
and is listed in the summary; use --strict to abort on the first failure
instead.`,
	Example: `  # Collect a sweep into ./results
  sweepctl collect --sweep-id <run-id> --output results

  # Resume a previously interrupted collection
  sweepctl collect --sweep-id <run-id> --output results --resume`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().String("sweep-id", "", "Parent run ID of the sweep (required)")
	collectCmd.Flags().String("output", "results", "Local output directory")
	collectCmd.Flags().String("manifest", "", "Sweep manifest YAML (default: built-in)")
	collectCmd.Flags().String("remote-name", "all_results", "Artifact folder name attached to the parent run")
	collectCmd.Flags().String("primary-metric", "", "Override the sweep's primary metric tag")
	collectCmd.Flags().String("goal", "", "Override the goal direction (maximize/minimize)")
	collectCmd.Flags().Int("concurrency", 0, "Parallel child fetches (default: config, 1)")
	collectCmd.Flags().Bool("strict", false, "Abort on the first child failure")
	collectCmd.Flags().Bool("resume", false, "Reuse children already recorded in the journal")
	collectCmd.MarkFlagRequired("sweep-id")
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	client, err := platform.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create tracking client: %w", err)
	}

	sweepID, _ := cmd.Flags().GetString("sweep-id")
	outputDir, _ := cmd.Flags().GetString("output")
	manifestPath, _ := cmd.Flags().GetString("manifest")
	remoteName, _ := cmd.Flags().GetString("remote-name")
	primaryMetric, _ := cmd.Flags().GetString("primary-metric")
	goalFlag, _ := cmd.Flags().GetString("goal")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	strict, _ := cmd.Flags().GetBool("strict")
	resume, _ := cmd.Flags().GetBool("resume")

	m := manifest.Default()
	if manifestPath != "" {
		m, err = manifest.Load(manifestPath)
		if err != nil {
			return err
		}
	}

	var goal models.Goal
	if goalFlag != "" {
		parsed, ok := models.ParseGoal(goalFlag)
		if !ok {
			return fmt.Errorf("invalid goal: %s (valid: maximize, minimize)", goalFlag)
		}
		goal = parsed
	}

	if concurrency == 0 {
		concurrency = cfg.Concurrency
	}

	journal, err := collector.OpenJournal(filepath.Join(outputDir, "collection.db"))
	if err != nil {
		return err
	}
	defer journal.Close()

	coll := collector.New(client, journal, collector.Options{
		Manifest:      m,
		ScratchDir:    cfg.ScratchDir,
		OutputDir:     outputDir,
		RemoteName:    remoteName,
		Strict:        strict,
		Concurrency:   concurrency,
		Resume:        resume,
		PrimaryMetric: primaryMetric,
		Goal:          goal,
	})

	ctx := context.Background()
	report, err := coll.Collect(ctx, sweepID)
	if err != nil {
		return err
	}

	printReport(report)

	if report.Partial() {
		exitCode = exitPartial
	}
	if report.Empty() && len(report.Failed) > 0 {
		return fmt.Errorf("no child run contributed any rows")
	}
	return nil
}

func printReport(report *models.CollectionReport) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	for _, id := range report.Succeeded {
		fmt.Printf("  %s %s\n", green("collected"), id)
	}
	for _, id := range report.Skipped {
		fmt.Printf("  %s  %s\n", yellow("resumed"), id)
	}
	for _, f := range report.Failed {
		fmt.Printf("  %s    %s: %v\n", red("failed"), f.RunID, f.Err)
	}

	fmt.Printf("\nSweep: %s\n", report.SweepID)
	fmt.Printf("Rows: %d (%d collected, %d resumed, %d failed)\n",
		report.Rows, len(report.Succeeded), len(report.Skipped), len(report.Failed))
	fmt.Printf("Table: %s\n", report.TablePath)
}
