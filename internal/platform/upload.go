package platform

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// UploadArtifact uploads a file as an artifact to the specified run
func (c *Client) UploadArtifact(ctx context.Context, runID, filePath, artifactPath string) error {
	artifactURI, err := c.getArtifactURI(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get artifact URI: %w", err)
	}

	// Use filename if artifact path is not specified
	if artifactPath == "" {
		artifactPath = filepath.Base(filePath)
	}

	switch {
	case strings.HasPrefix(artifactURI, "mlflow-artifacts:/"):
		return c.uploadToMLflowArtifacts(ctx, artifactURI, filePath, artifactPath)
	case strings.HasPrefix(artifactURI, "dbfs:/"):
		return c.uploadToDBFS(ctx, artifactURI, filePath, artifactPath)
	case strings.HasPrefix(artifactURI, "file://") || strings.HasPrefix(artifactURI, "/"):
		return uploadToLocalFS(artifactURI, filePath, artifactPath)
	default:
		return fmt.Errorf("unsupported artifact URI scheme: %s", artifactURI)
	}
}

// UploadFolder uploads every regular file under localDir to the run, rooted
// at remoteName. Relative layout inside the folder is preserved.
func (c *Client) UploadFolder(ctx context.Context, runID, localDir, remoteName string) error {
	return filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return fmt.Errorf("failed to resolve relative path for %s: %w", p, err)
		}

		artifactPath := path.Join(remoteName, filepath.ToSlash(rel))
		if err := c.UploadArtifact(ctx, runID, p, artifactPath); err != nil {
			return fmt.Errorf("failed to upload %s: %w", rel, err)
		}
		return nil
	})
}

// uploadToMLflowArtifacts uploads using MLflow Artifacts Service
func (c *Client) uploadToMLflowArtifacts(ctx context.Context, artifactURI, filePath, artifactPath string) error {
	experimentID, runID, err := extractIDsFromArtifactURI(artifactURI)
	if err != nil {
		return fmt.Errorf("failed to extract IDs from artifact URI: %w", err)
	}

	file, fileInfo, err := openFileWithInfo(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, "PUT", c.mlflowArtifactsURL(experimentID, runID, artifactPath), file)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.ContentLength = fileInfo.Size()
	req.Header.Set("Content-Type", "application/octet-stream")
	c.addAuthHeaders(req)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload to MLflow Artifacts Service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("MLflow Artifacts Service upload failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// uploadToDBFS uploads via a Databricks write-scoped signed URI.
func (c *Client) uploadToDBFS(ctx context.Context, artifactURI, filePath, artifactPath string) error {
	runID, err := extractRunIDFromDBFSURI(artifactURI)
	if err != nil {
		return fmt.Errorf("failed to extract run ID from DBFS URI: %w", err)
	}

	credentials, err := c.getArtifactCredentials(ctx, "credentials-for-write", runID, []string{artifactPath})
	if err != nil {
		return fmt.Errorf("failed to get write credentials: %w", err)
	}
	if len(credentials) == 0 {
		return fmt.Errorf("no credentials returned for path: %s", artifactPath)
	}

	file, fileInfo, err := openFileWithInfo(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, "PUT", credentials[0].SignedURI, file)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Content-Length must be set explicitly; some providers reject chunked uploads
	req.ContentLength = fileInfo.Size()
	setSignedURIHeaders(req, credentials[0], true)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload to signed URI: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("signed URI upload failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// uploadToLocalFS copies a file into a filesystem-backed artifact store.
func uploadToLocalFS(artifactURI, filePath, artifactPath string) error {
	localPath := filepath.Join(strings.TrimPrefix(artifactURI, "file://"), artifactPath)

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(localPath), err)
	}

	sourceFile, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	return nil
}
