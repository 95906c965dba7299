package collector

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// ResultTable is the flat aggregation of every child run's result rows.
// Column layout: [parent_run_id, child_run_id, <params…>, <metrics…>, source].
// Metric columns are adopted from the first parsed artifact; every later
// artifact must carry the same header. Rows are append-only and the table is
// written exactly once.
type ResultTable struct {
	paramNames []string
	metricCols []string
	rows       [][]string
}

func NewResultTable(paramNames []string) *ResultTable {
	return &ResultTable{paramNames: paramNames}
}

// Columns returns the header row.
func (t *ResultTable) Columns() []string {
	cols := make([]string, 0, 2+len(t.paramNames)+len(t.metricCols)+1)
	cols = append(cols, "parent_run_id", "child_run_id")
	cols = append(cols, t.paramNames...)
	cols = append(cols, t.metricCols...)
	cols = append(cols, "source")
	return cols
}

func (t *ResultTable) Len() int {
	return len(t.rows)
}

func (t *ResultTable) Rows() [][]string {
	return t.rows
}

// Append joins one parsed artifact's rows with the child's decoded parameters
// and identifiers, stamps the source tag, and appends them in file order.
func (t *ResultTable) Append(parentID, childID string, params map[string]string, header []string, rows [][]string, source string) error {
	if t.metricCols == nil {
		t.metricCols = append([]string(nil), header...)
	} else if !equalColumns(t.metricCols, header) {
		return fmt.Errorf("artifact header %v does not match table metric columns %v", header, t.metricCols)
	}

	for i, row := range rows {
		if len(row) != len(t.metricCols) {
			return fmt.Errorf("row %d has %d fields, expected %d", i, len(row), len(t.metricCols))
		}

		out := make([]string, 0, 2+len(t.paramNames)+len(t.metricCols)+1)
		out = append(out, parentID, childID)
		for _, name := range t.paramNames {
			out = append(out, params[name])
		}
		out = append(out, row...)
		out = append(out, source)
		t.rows = append(t.rows, out)
	}

	return nil
}

// WriteCSV persists the table. Each collection pass writes a fresh file.
func (t *ResultTable) WriteCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create table file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range t.rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush table file: %w", err)
	}
	return nil
}

// readArtifactCSV parses one downloaded artifact as header plus rows.
func readArtifactCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("artifact is empty")
	}

	return records[0], records[1:], nil
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
