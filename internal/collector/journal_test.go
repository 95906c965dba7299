package collector

import (
	"path/filepath"
	"reflect"
	"testing"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "collection.db"))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpenJournal_CreatesParentDir(t *testing.T) {
	// The default output directory does not exist until the table is written,
	// which happens after the journal opens.
	path := filepath.Join(t.TempDir(), "results", "collection.db")
	j, err := OpenJournal(path)
	if err != nil {
		t.Fatalf("OpenJournal failed for missing parent dir: %v", err)
	}
	defer j.Close()

	if err := j.CommitFailure("child-1", "artifact missing"); err != nil {
		t.Errorf("journal not usable: %v", err)
	}
}

func TestJournal_CommitAndLoad(t *testing.T) {
	j := openTestJournal(t)

	params := map[string]string{"quality": "high", "imputation": "mean"}
	artifacts := []parsedArtifact{
		{Source: "lr_results", Header: []string{"fold", "auc"}, Rows: [][]string{{"0", "0.9"}, {"1", "0.91"}}},
		{Source: "rf_result", Header: []string{"fold", "auc"}, Rows: [][]string{{"0", "0.8"}}},
	}

	if err := j.CommitChild("child-1", params, artifacts); err != nil {
		t.Fatalf("CommitChild failed: %v", err)
	}

	gotParams, gotArtifacts, err := j.LoadChild("child-1")
	if err != nil {
		t.Fatalf("LoadChild failed: %v", err)
	}
	if !reflect.DeepEqual(gotParams, params) {
		t.Errorf("params = %v, want %v", gotParams, params)
	}
	if !reflect.DeepEqual(gotArtifacts, artifacts) {
		t.Errorf("artifacts = %+v, want %+v", gotArtifacts, artifacts)
	}
}

func TestJournal_CollectedChildren(t *testing.T) {
	j := openTestJournal(t)

	if err := j.CommitChild("child-ok", map[string]string{"quality": "high"}, []parsedArtifact{
		{Source: "lr_results", Header: []string{"fold"}, Rows: [][]string{{"0"}}},
	}); err != nil {
		t.Fatalf("CommitChild failed: %v", err)
	}
	if err := j.CommitFailure("child-bad", "artifact missing"); err != nil {
		t.Fatalf("CommitFailure failed: %v", err)
	}

	collected, err := j.CollectedChildren()
	if err != nil {
		t.Fatalf("CollectedChildren failed: %v", err)
	}
	if !collected["child-ok"] {
		t.Error("child-ok should be collected")
	}
	if collected["child-bad"] {
		t.Error("child-bad must not count as collected")
	}
}

func TestJournal_RecommitReplacesArtifacts(t *testing.T) {
	j := openTestJournal(t)

	old := []parsedArtifact{
		{Source: "lr_results", Header: []string{"fold"}, Rows: [][]string{{"0"}, {"1"}}},
	}
	if err := j.CommitChild("child-1", map[string]string{"quality": "low"}, old); err != nil {
		t.Fatalf("CommitChild failed: %v", err)
	}

	fresh := []parsedArtifact{
		{Source: "lr_results", Header: []string{"fold"}, Rows: [][]string{{"0"}}},
	}
	if err := j.CommitChild("child-1", map[string]string{"quality": "high"}, fresh); err != nil {
		t.Fatalf("recommit failed: %v", err)
	}

	params, artifacts, err := j.LoadChild("child-1")
	if err != nil {
		t.Fatalf("LoadChild failed: %v", err)
	}
	if params["quality"] != "high" {
		t.Errorf("params not replaced: %v", params)
	}
	if len(artifacts) != 1 || len(artifacts[0].Rows) != 1 {
		t.Errorf("stale artifacts survived recommit: %+v", artifacts)
	}
}

func TestJournal_FailureThenSuccess(t *testing.T) {
	j := openTestJournal(t)

	if err := j.CommitFailure("child-1", "transient error"); err != nil {
		t.Fatalf("CommitFailure failed: %v", err)
	}
	if err := j.CommitChild("child-1", map[string]string{"quality": "high"}, []parsedArtifact{
		{Source: "lr_results", Header: []string{"fold"}, Rows: [][]string{{"0"}}},
	}); err != nil {
		t.Fatalf("CommitChild after failure failed: %v", err)
	}

	collected, err := j.CollectedChildren()
	if err != nil {
		t.Fatalf("CollectedChildren failed: %v", err)
	}
	if !collected["child-1"] {
		t.Error("retried child should be collected")
	}
}
