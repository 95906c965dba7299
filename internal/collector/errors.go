package collector

import "fmt"

// RetrievalError reports that child-run metadata could not be enumerated or
// fetched from the tracking server.
type RetrievalError struct {
	RunID string
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("failed to retrieve run %s: %v", e.RunID, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// ArtifactMissingError reports that an expected output artifact is absent for
// a completed child run.
type ArtifactMissingError struct {
	RunID string
	Path  string
	Err   error
}

func (e *ArtifactMissingError) Error() string {
	return fmt.Sprintf("artifact %s missing for run %s: %v", e.Path, e.RunID, e.Err)
}

func (e *ArtifactMissingError) Unwrap() error { return e.Err }

// ParseError reports artifact content that is not in the expected tabular
// shape, or an argument vector that cannot be decoded.
type ParseError struct {
	RunID string
	Path  string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to decode run %s: %v", e.RunID, e.Err)
	}
	return fmt.Sprintf("failed to parse %s for run %s: %v", e.Path, e.RunID, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
