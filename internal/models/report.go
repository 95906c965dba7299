package models

// ChildFailure records why one child run contributed nothing to the table.
type ChildFailure struct {
	RunID string `json:"run_id"`
	Err   error  `json:"-"`
}

// CollectionReport summarizes one collection pass over a sweep.
type CollectionReport struct {
	SweepID   string         `json:"sweep_id"`
	Succeeded []string       `json:"succeeded"`
	Failed    []ChildFailure `json:"failed,omitempty"`
	Skipped   []string       `json:"skipped,omitempty"` // resumed from journal
	Rows      int            `json:"rows"`
	TablePath string         `json:"table_path"`
}

// Partial reports whether some, but not all, children contributed rows.
func (r *CollectionReport) Partial() bool {
	return len(r.Failed) > 0 && (len(r.Succeeded) > 0 || len(r.Skipped) > 0)
}

// Empty reports whether no child contributed any rows.
func (r *CollectionReport) Empty() bool {
	return len(r.Succeeded) == 0 && len(r.Skipped) == 0
}
