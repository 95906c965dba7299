package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/databricks/databricks-sdk-go/service/ml"
)

// ErrArtifactNotFound reports that a named artifact does not exist for a run,
// as opposed to a transport or authentication failure.
var ErrArtifactNotFound = errors.New("artifact not found")

// artifactCredentialsRequest is the request body for the Databricks
// credentials-for-read/credentials-for-write APIs.
type artifactCredentialsRequest struct {
	RunID string   `json:"run_id"`
	Path  []string `json:"path"`
}

type artifactCredentialsResponse struct {
	CredentialInfos []ArtifactCredentialInfo `json:"credential_infos"`
}

// ArtifactCredentialInfo is a signed URI grant for one artifact path.
type ArtifactCredentialInfo struct {
	RunID     string       `json:"run_id"`
	Path      string       `json:"path"`
	SignedURI string       `json:"signed_uri"`
	Headers   []HTTPHeader `json:"headers"`
	Type      string       `json:"type"`
}

// HTTPHeader represents HTTP header
type HTTPHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// getArtifactURI retrieves the artifact URI for a given run
func (c *Client) getArtifactURI(ctx context.Context, runID string) (string, error) {
	resp, err := c.client.Experiments.GetRun(ctx, ml.GetRunRequest{
		RunId: runID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get run: %w", err)
	}

	if resp.Run.Info.ArtifactUri == "" {
		return "", fmt.Errorf("artifact URI not found for run %s", runID)
	}

	return resp.Run.Info.ArtifactUri, nil
}

// extractIDsFromArtifactURI extracts experiment ID and run ID from an
// mlflow-artifacts URI like mlflow-artifacts:/0/47485d6a.../artifacts
func extractIDsFromArtifactURI(artifactURI string) (string, string, error) {
	parts := strings.Split(strings.TrimPrefix(artifactURI, "mlflow-artifacts:"), "/")
	if len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	if len(parts) < 2 {
		return "", "", fmt.Errorf("invalid mlflow-artifacts URI format: %s", artifactURI)
	}
	return parts[0], parts[1], nil
}

// extractRunIDFromDBFSURI extracts the run ID from a DBFS artifact URI like
// dbfs:/databricks/mlflow-tracking/{experiment_id}/{run_id}/artifacts
func extractRunIDFromDBFSURI(artifactURI string) (string, error) {
	if !strings.HasPrefix(artifactURI, "dbfs:/databricks/mlflow-tracking/") {
		return "", fmt.Errorf("invalid DBFS artifact URI format: %s", artifactURI)
	}

	path := strings.TrimPrefix(artifactURI, "dbfs:/databricks/mlflow-tracking/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[1] == "" {
		return "", fmt.Errorf("run ID not found in DBFS URI: %s", artifactURI)
	}

	return parts[1], nil
}

// mlflowArtifactsURL builds the tracking-server REST URL for one artifact.
func (c *Client) mlflowArtifactsURL(experimentID, runID, artifactPath string) string {
	baseURL := strings.TrimSuffix(c.config.TrackingURI, "/")
	return fmt.Sprintf("%s/api/2.0/mlflow-artifacts/artifacts/%s/%s/artifacts/%s", baseURL, experimentID, runID, artifactPath)
}

// getArtifactCredentials fetches signed-URI credentials from the Databricks
// artifacts API. endpoint is "credentials-for-read" or "credentials-for-write".
func (c *Client) getArtifactCredentials(ctx context.Context, endpoint, runID string, paths []string) ([]ArtifactCredentialInfo, error) {
	if !c.config.IsDatabricks() {
		return nil, fmt.Errorf("non-Databricks tracking servers do not support DBFS artifacts")
	}

	body, err := json.Marshal(artifactCredentialsRequest{
		RunID: runID,
		Path:  paths,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", endpoint, err)
	}

	url := fmt.Sprintf("%s/api/2.0/mlflow/artifacts/%s", strings.TrimSuffix(c.config.TrackingURI, "/"), endpoint)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.addAuthHeaders(req)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s request failed with status %d: %s", endpoint, resp.StatusCode, string(bodyBytes))
	}

	var credentials artifactCredentialsResponse
	if err := json.NewDecoder(resp.Body).Decode(&credentials); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	return credentials.CredentialInfos, nil
}

// addAuthHeaders adds appropriate authentication headers to the request
func (c *Client) addAuthHeaders(req *http.Request) {
	if c.config.IsDatabricks() {
		// Use token from SDK client if available
		if c.client != nil && c.client.Config != nil && c.client.Config.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.client.Config.Token)
		} else if c.config.DatabricksToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.DatabricksToken)
		}
	}
}

// setSignedURIHeaders sets cloud-provider specific headers for a signed URI
// request. Upload requests need a content type; some providers require more.
func setSignedURIHeaders(req *http.Request, credential ArtifactCredentialInfo, upload bool) {
	if upload {
		req.Header.Set("Content-Type", "application/octet-stream")
		switch credential.Type {
		case "AWS_PRESIGNED_URL":
			// S3 does not support Transfer-Encoding header, explicitly remove it
			req.Header.Del("Transfer-Encoding")
		case "AZURE_SAS_URI":
			req.Header.Set("x-ms-blob-type", "BlockBlob")
		}
	}

	for _, header := range credential.Headers {
		req.Header.Set(header.Name, header.Value)
	}
}

// openFileWithInfo opens a file and returns the file handle and file info
func openFileWithInfo(filePath string) (*os.File, os.FileInfo, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to get file info: %w", err)
	}

	return file, fileInfo, nil
}
