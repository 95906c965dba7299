package platform

import (
	"context"
	"fmt"
	"strings"

	"github.com/databricks/databricks-sdk-go/service/ml"
)

// GetRunParams returns the parameters logged on a run as a key/value map.
// This is the self-describing decode path: the submission step logged each
// parameter under its own name.
func (c *Client) GetRunParams(ctx context.Context, runID string) (map[string]string, error) {
	resp, err := c.client.Experiments.GetRun(ctx, ml.GetRunRequest{
		RunId: runID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}

	params := make(map[string]string)
	for _, p := range resp.Run.Data.Params {
		params[p.Key] = p.Value
	}

	return params, nil
}

// GetRunArguments returns the raw argument token vector the run was submitted
// with, as recorded in the sweep.arguments tag. Tokens are space-joined at
// submission time; argument values never contain spaces in this pipeline.
func (c *Client) GetRunArguments(ctx context.Context, runID string) ([]string, error) {
	resp, err := c.client.Experiments.GetRun(ctx, ml.GetRunRequest{
		RunId: runID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}

	for _, tag := range resp.Run.Data.Tags {
		if tag.Key == TagArguments {
			if tag.Value == "" {
				return nil, nil
			}
			return strings.Fields(tag.Value), nil
		}
	}

	return nil, nil
}
