package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mlsweep/sweepctl/internal/config"
	"github.com/mlsweep/sweepctl/internal/platform"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Transfer run artifacts",
	Long:  "Upload and download run artifacts directly, without collection",
}

var dataUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload files as run artifacts",
	Example: `  # Upload a file with its original name
  sweepctl data upload --run-id <run-id> --file input.vcf

  # Upload a file under a custom artifact path
  sweepctl data upload --run-id <run-id> --file input.vcf --artifact-path data/cohort.vcf`,
	RunE: dataUpload,
}

var dataDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download a run artifact",
	RunE:  dataDownload,
}

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataUploadCmd)
	dataCmd.AddCommand(dataDownloadCmd)

	dataUploadCmd.Flags().String("run-id", "", "Run ID to upload artifacts to (required)")
	dataUploadCmd.Flags().StringSlice("file", []string{}, "File path to upload (can be specified multiple times)")
	dataUploadCmd.Flags().String("artifact-path", "", "Custom artifact path (only valid when uploading a single file)")
	dataUploadCmd.MarkFlagRequired("run-id")
	dataUploadCmd.MarkFlagRequired("file")

	dataDownloadCmd.Flags().String("run-id", "", "Run ID to download from (required)")
	dataDownloadCmd.Flags().String("path", "", "Remote artifact path (required)")
	dataDownloadCmd.Flags().String("output", "", "Local destination (default: artifact file name)")
	dataDownloadCmd.MarkFlagRequired("run-id")
	dataDownloadCmd.MarkFlagRequired("path")
}

func dataUpload(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	client, err := platform.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create tracking client: %w", err)
	}

	runID, _ := cmd.Flags().GetString("run-id")
	files, _ := cmd.Flags().GetStringSlice("file")
	artifactPath, _ := cmd.Flags().GetString("artifact-path")

	if len(files) > 1 && artifactPath != "" {
		return fmt.Errorf("--artifact-path can only be used when uploading a single file")
	}

	ctx := context.Background()
	successCount := 0

	for _, filePath := range files {
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "File not found: %s\n", filePath)
			continue
		}

		targetPath := artifactPath
		if targetPath == "" {
			targetPath = filepath.Base(filePath)
		}

		if err := client.UploadArtifact(ctx, runID, filePath, targetPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to upload %s: %v\n", filePath, err)
			continue
		}
		successCount++
	}

	if successCount == 0 {
		return fmt.Errorf("failed to upload any artifacts")
	}

	fmt.Printf("Successfully uploaded %d/%d artifacts\n", successCount, len(files))
	return nil
}

func dataDownload(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	client, err := platform.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create tracking client: %w", err)
	}

	runID, _ := cmd.Flags().GetString("run-id")
	remotePath, _ := cmd.Flags().GetString("path")
	output, _ := cmd.Flags().GetString("output")

	if output == "" {
		output = filepath.Base(remotePath)
	}

	ctx := context.Background()
	if err := client.DownloadArtifact(ctx, runID, remotePath, output); err != nil {
		return err
	}

	fmt.Printf("Downloaded %s to %s\n", remotePath, output)
	return nil
}
