package collector

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// Journal persists each child run's contribution as soon as it is collected,
// so a failure late in a long sweep does not discard earlier work. A resumed
// pass reuses journaled children instead of refetching them.
type Journal struct {
	db *sql.DB
}

const journalSchema = `
CREATE TABLE IF NOT EXISTS children (
	run_id      TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	params_json TEXT NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS artifacts (
	child_run_id TEXT NOT NULL,
	idx          INTEGER NOT NULL,
	source       TEXT NOT NULL,
	header_json  TEXT NOT NULL,
	rows_json    TEXT NOT NULL,
	PRIMARY KEY (child_run_id, idx)
);
`

const (
	childStatusCollected = "collected"
	childStatusFailed    = "failed"
)

func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite allows one writer at a time; children commit from concurrent
	// goroutines, so funnel everything through a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal busy timeout: %w", err)
	}

	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// CommitChild records a successfully collected child and its parsed artifact
// blocks in one transaction.
func (j *Journal) CommitChild(childID string, params map[string]string, artifacts []parsedArtifact) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}

	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin journal transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO children (run_id, status, error, params_json) VALUES (?, ?, '', ?)`,
		childID, childStatusCollected, string(paramsJSON),
	); err != nil {
		return fmt.Errorf("failed to record child %s: %w", childID, err)
	}

	if _, err := tx.Exec(`DELETE FROM artifacts WHERE child_run_id = ?`, childID); err != nil {
		return fmt.Errorf("failed to clear stale artifacts for %s: %w", childID, err)
	}

	for i, a := range artifacts {
		headerJSON, err := json.Marshal(a.Header)
		if err != nil {
			return fmt.Errorf("failed to encode header: %w", err)
		}
		rowsJSON, err := json.Marshal(a.Rows)
		if err != nil {
			return fmt.Errorf("failed to encode rows: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO artifacts (child_run_id, idx, source, header_json, rows_json) VALUES (?, ?, ?, ?, ?)`,
			childID, i, a.Source, string(headerJSON), string(rowsJSON),
		); err != nil {
			return fmt.Errorf("failed to record artifact %s for %s: %w", a.Source, childID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit journal transaction: %w", err)
	}
	return nil
}

// CommitFailure records that a child contributed nothing and why.
func (j *Journal) CommitFailure(childID, message string) error {
	if _, err := j.db.Exec(
		`INSERT OR REPLACE INTO children (run_id, status, error, params_json) VALUES (?, ?, ?, '{}')`,
		childID, childStatusFailed, message,
	); err != nil {
		return fmt.Errorf("failed to record failure for %s: %w", childID, err)
	}
	return nil
}

// CollectedChildren returns the set of child run IDs already journaled as
// collected.
func (j *Journal) CollectedChildren() (map[string]bool, error) {
	rows, err := j.db.Query(`SELECT run_id FROM children WHERE status = ?`, childStatusCollected)
	if err != nil {
		return nil, fmt.Errorf("failed to query journaled children: %w", err)
	}
	defer rows.Close()

	collected := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		collected[id] = true
	}
	return collected, rows.Err()
}

// LoadChild restores one journaled child's params and artifact blocks.
func (j *Journal) LoadChild(childID string) (map[string]string, []parsedArtifact, error) {
	var paramsJSON string
	err := j.db.QueryRow(
		`SELECT params_json FROM children WHERE run_id = ? AND status = ?`,
		childID, childStatusCollected,
	).Scan(&paramsJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load journaled child %s: %w", childID, err)
	}

	var params map[string]string
	if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
		return nil, nil, fmt.Errorf("failed to decode params for %s: %w", childID, err)
	}

	rows, err := j.db.Query(
		`SELECT source, header_json, rows_json FROM artifacts WHERE child_run_id = ? ORDER BY idx`,
		childID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load artifacts for %s: %w", childID, err)
	}
	defer rows.Close()

	var artifacts []parsedArtifact
	for rows.Next() {
		var a parsedArtifact
		var headerJSON, rowsJSON string
		if err := rows.Scan(&a.Source, &headerJSON, &rowsJSON); err != nil {
			return nil, nil, fmt.Errorf("failed to scan artifact row: %w", err)
		}
		if err := json.Unmarshal([]byte(headerJSON), &a.Header); err != nil {
			return nil, nil, fmt.Errorf("failed to decode artifact header: %w", err)
		}
		if err := json.Unmarshal([]byte(rowsJSON), &a.Rows); err != nil {
			return nil, nil, fmt.Errorf("failed to decode artifact rows: %w", err)
		}
		artifacts = append(artifacts, a)
	}

	return params, artifacts, rows.Err()
}
