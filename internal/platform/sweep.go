package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/databricks/databricks-sdk-go/service/ml"

	"github.com/mlsweep/sweepctl/internal/models"
)

// Tags a sweep submission stamps on its runs. The collector reads them back
// instead of relying on out-of-band knowledge.
const (
	TagParentRunID   = "mlflow.parentRunId"
	TagRunName       = "mlflow.runName"
	TagPrimaryMetric = "sweep.primary_metric"
	TagGoal          = "sweep.goal"
	TagArguments     = "sweep.arguments"
)

const searchPageSize = 100

// GetSweep fetches the parent run of a sweep and its ranking configuration.
func (c *Client) GetSweep(ctx context.Context, runID string) (*models.SweepRun, error) {
	resp, err := c.client.Experiments.GetRun(ctx, ml.GetRunRequest{
		RunId: runID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get sweep run: %w", err)
	}

	run := resp.Run
	tags := make(map[string]string)
	for _, tag := range run.Data.Tags {
		tags[tag.Key] = tag.Value
	}

	goal, ok := models.ParseGoal(tags[TagGoal])
	if !ok {
		return nil, fmt.Errorf("sweep run %s has invalid %s tag: %q", runID, TagGoal, tags[TagGoal])
	}

	sweep := &models.SweepRun{
		RunID:         run.Info.RunId,
		ExperimentID:  run.Info.ExperimentId,
		Name:          tags[TagRunName],
		Status:        string(run.Info.Status),
		PrimaryMetric: tags[TagPrimaryMetric],
		Goal:          goal,
		StartTime:     time.Unix(run.Info.StartTime/1000, 0),
		Tags:          tags,
	}

	if run.Info.EndTime != 0 {
		endTime := time.Unix(run.Info.EndTime/1000, 0)
		sweep.EndTime = &endTime
	}

	return sweep, nil
}

// ListChildRuns enumerates the sweep's child runs ranked by the primary
// metric. Ranking is delegated to the tracking server's search order, not
// recomputed here.
func (c *Client) ListChildRuns(ctx context.Context, sweep *models.SweepRun) ([]models.ChildRun, error) {
	if sweep.PrimaryMetric == "" {
		return nil, fmt.Errorf("sweep %s has no primary metric configured", sweep.RunID)
	}

	direction := "DESC"
	if sweep.Goal == models.GoalMinimize {
		direction = "ASC"
	}
	orderBy := fmt.Sprintf("metrics.`%s` %s", sweep.PrimaryMetric, direction)
	filter := fmt.Sprintf("tags.`%s` = '%s'", TagParentRunID, sweep.RunID)

	// SearchRunsAll paginates internally.
	runs, err := c.client.Experiments.SearchRunsAll(ctx, ml.SearchRuns{
		ExperimentIds: []string{sweep.ExperimentID},
		Filter:        filter,
		OrderBy:       []string{orderBy},
		MaxResults:    searchPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search child runs of %s: %w", sweep.RunID, err)
	}

	children := make([]models.ChildRun, 0, len(runs))
	for _, run := range runs {
		children = append(children, buildChildRun(sweep, run))
	}

	return children, nil
}

func buildChildRun(sweep *models.SweepRun, run ml.Run) models.ChildRun {
	tags := make(map[string]string)
	for _, tag := range run.Data.Tags {
		tags[tag.Key] = tag.Value
	}

	params := make(map[string]string)
	for _, p := range run.Data.Params {
		params[p.Key] = p.Value
	}

	child := models.ChildRun{
		RunID:       run.Info.RunId,
		ParentRunID: sweep.RunID,
		Name:        tags[TagRunName],
		Status:      string(run.Info.Status),
		Params:      params,
		Tags:        tags,
	}

	for _, m := range run.Data.Metrics {
		if m.Key == sweep.PrimaryMetric {
			value := m.Value
			child.PrimaryMetricValue = &value
			break
		}
	}

	return child
}
