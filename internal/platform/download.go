package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DownloadArtifact fetches one artifact of a run into localPath, creating
// parent directories as needed. A nonexistent artifact yields an error
// wrapping ErrArtifactNotFound.
func (c *Client) DownloadArtifact(ctx context.Context, runID, remotePath, localPath string) error {
	artifactURI, err := c.getArtifactURI(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get artifact URI: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	switch {
	case strings.HasPrefix(artifactURI, "mlflow-artifacts:/"):
		return c.downloadFromMLflowArtifacts(ctx, artifactURI, remotePath, localPath)
	case strings.HasPrefix(artifactURI, "dbfs:/"):
		return c.downloadFromDBFS(ctx, artifactURI, remotePath, localPath)
	case strings.HasPrefix(artifactURI, "file://") || strings.HasPrefix(artifactURI, "/"):
		return downloadFromLocalFS(artifactURI, remotePath, localPath)
	default:
		return fmt.Errorf("unsupported artifact URI scheme: %s", artifactURI)
	}
}

// downloadFromMLflowArtifacts fetches via the MLflow Artifacts Service.
func (c *Client) downloadFromMLflowArtifacts(ctx context.Context, artifactURI, remotePath, localPath string) error {
	experimentID, runID, err := extractIDsFromArtifactURI(artifactURI)
	if err != nil {
		return fmt.Errorf("failed to extract IDs from artifact URI: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.mlflowArtifactsURL(experimentID, runID, remotePath), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.addAuthHeaders(req)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download from MLflow Artifacts Service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s (run %s)", ErrArtifactNotFound, remotePath, runID)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("MLflow Artifacts Service download failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return writeToFile(localPath, resp.Body)
}

// downloadFromDBFS fetches via a Databricks read-scoped signed URI.
func (c *Client) downloadFromDBFS(ctx context.Context, artifactURI, remotePath, localPath string) error {
	runID, err := extractRunIDFromDBFSURI(artifactURI)
	if err != nil {
		return fmt.Errorf("failed to extract run ID from DBFS URI: %w", err)
	}

	credentials, err := c.getArtifactCredentials(ctx, "credentials-for-read", runID, []string{remotePath})
	if err != nil {
		return fmt.Errorf("failed to get read credentials: %w", err)
	}
	if len(credentials) == 0 {
		return fmt.Errorf("no credentials returned for path: %s", remotePath)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", credentials[0].SignedURI, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	setSignedURIHeaders(req, credentials[0], false)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download from signed URI: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s (run %s)", ErrArtifactNotFound, remotePath, runID)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("signed URI download failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return writeToFile(localPath, resp.Body)
}

// downloadFromLocalFS copies an artifact out of a filesystem-backed store.
func downloadFromLocalFS(artifactURI, remotePath, localPath string) error {
	sourcePath := filepath.Join(strings.TrimPrefix(artifactURI, "file://"), remotePath)

	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrArtifactNotFound, remotePath)
		}
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer sourceFile.Close()

	return writeToFile(localPath, sourceFile)
}

func writeToFile(localPath string, r io.Reader) error {
	destFile, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, r); err != nil {
		return fmt.Errorf("failed to write artifact content: %w", err)
	}

	return nil
}
