package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mlsweep/sweepctl/internal/config"
	"github.com/mlsweep/sweepctl/internal/platform"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Inspect sweep runs",
	Long:  "Inspect a sweep's parent run and its ranked child runs",
}

var sweepShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a sweep's configuration",
	RunE:  sweepShow,
}

var sweepChildrenCmd = &cobra.Command{
	Use:   "children",
	Short: "List a sweep's child runs in rank order",
	RunE:  sweepChildren,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.AddCommand(sweepShowCmd)
	sweepCmd.AddCommand(sweepChildrenCmd)

	sweepShowCmd.Flags().String("sweep-id", "", "Parent run ID of the sweep (required)")
	sweepShowCmd.MarkFlagRequired("sweep-id")

	sweepChildrenCmd.Flags().String("sweep-id", "", "Parent run ID of the sweep (required)")
	sweepChildrenCmd.MarkFlagRequired("sweep-id")
}

func sweepShow(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	client, err := platform.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create tracking client: %w", err)
	}

	sweepID, _ := cmd.Flags().GetString("sweep-id")

	ctx := context.Background()
	sweep, err := client.GetSweep(ctx, sweepID)
	if err != nil {
		return err
	}

	fmt.Printf("Run ID: %s\n", sweep.RunID)
	fmt.Printf("Experiment: %s\n", sweep.ExperimentID)
	if sweep.Name != "" {
		fmt.Printf("Name: %s\n", sweep.Name)
	}
	fmt.Printf("Status: %s\n", sweep.Status)
	fmt.Printf("Primary metric: %s (%s)\n", sweep.PrimaryMetric, sweep.Goal)

	params, err := client.GetRunParams(ctx, sweepID)
	if err != nil {
		return err
	}
	if len(params) > 0 {
		fmt.Printf("Parameters:\n")
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s: %s\n", k, params[k])
		}
	}

	return nil
}

func sweepChildren(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	client, err := platform.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create tracking client: %w", err)
	}

	sweepID, _ := cmd.Flags().GetString("sweep-id")

	ctx := context.Background()
	sweep, err := client.GetSweep(ctx, sweepID)
	if err != nil {
		return err
	}

	children, err := client.ListChildRuns(ctx, sweep)
	if err != nil {
		return err
	}

	for i, child := range children {
		metric := "-"
		if child.PrimaryMetricValue != nil {
			metric = fmt.Sprintf("%g", *child.PrimaryMetricValue)
		}
		fmt.Printf("%3d  %s  %s=%s  %s\n", i+1, child.RunID, sweep.PrimaryMetric, metric, child.Status)
	}
	fmt.Printf("\n%d child runs\n", len(children))

	return nil
}
