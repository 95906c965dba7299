package models

import "time"

// Goal is the optimization direction of a sweep's primary metric.
type Goal string

const (
	GoalMaximize Goal = "maximize"
	GoalMinimize Goal = "minimize"
)

// ParseGoal normalizes a goal string. Empty input defaults to maximize.
func ParseGoal(s string) (Goal, bool) {
	switch s {
	case "", "maximize", "MAXIMIZE":
		return GoalMaximize, true
	case "minimize", "MINIMIZE":
		return GoalMinimize, true
	}
	return "", false
}

// SweepRun is the parent run of a hyperparameter sweep.
type SweepRun struct {
	RunID         string            `json:"run_id"`
	ExperimentID  string            `json:"experiment_id"`
	Name          string            `json:"name,omitempty"`
	Status        string            `json:"status"`
	PrimaryMetric string            `json:"primary_metric"`
	Goal          Goal              `json:"goal"`
	StartTime     time.Time         `json:"start_time"`
	EndTime       *time.Time        `json:"end_time,omitempty"`
	Tags          map[string]string `json:"tags,omitempty"`
}

// ChildRun is one trial of a sweep. The platform owns its lifecycle; we only
// read it after completion.
type ChildRun struct {
	RunID              string            `json:"run_id"`
	ParentRunID        string            `json:"parent_run_id"`
	Name               string            `json:"name,omitempty"`
	Status             string            `json:"status"`
	PrimaryMetricValue *float64          `json:"primary_metric_value,omitempty"`
	Params             map[string]string `json:"params,omitempty"`
	Tags               map[string]string `json:"tags,omitempty"`
}
