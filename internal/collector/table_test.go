package collector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResultTable_RowCountInvariant(t *testing.T) {
	table := NewResultTable([]string{"quality"})
	params := map[string]string{"quality": "high"}
	header := []string{"fold", "auc"}

	blocks := [][][]string{
		{{"0", "0.9"}, {"1", "0.91"}, {"2", "0.92"}},
		{{"0", "0.8"}, {"1", "0.81"}},
	}

	total := 0
	for i, rows := range blocks {
		source := "lr_results"
		if i == 1 {
			source = "rf_result"
		}
		if err := table.Append("parent", "child", params, header, rows, source); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		total += len(rows)
	}

	if table.Len() != total {
		t.Errorf("table has %d rows, want %d", table.Len(), total)
	}
}

func TestResultTable_Columns(t *testing.T) {
	table := NewResultTable([]string{"quality", "imputation"})
	if err := table.Append("p", "c", map[string]string{"quality": "q", "imputation": "i"},
		[]string{"fold", "auc"}, [][]string{{"0", "0.9"}}, "lr_results"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	want := []string{"parent_run_id", "child_run_id", "quality", "imputation", "fold", "auc", "source"}
	got := table.Columns()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Columns = %v, want %v", got, want)
	}

	row := table.Rows()[0]
	wantRow := []string{"p", "c", "q", "i", "0", "0.9", "lr_results"}
	if strings.Join(row, ",") != strings.Join(wantRow, ",") {
		t.Errorf("row = %v, want %v", row, wantRow)
	}
}

func TestResultTable_HeaderMismatch(t *testing.T) {
	table := NewResultTable([]string{"quality"})
	params := map[string]string{"quality": "high"}

	if err := table.Append("p", "c", params, []string{"fold", "auc"}, [][]string{{"0", "0.9"}}, "lr_results"); err != nil {
		t.Fatalf("first Append failed: %v", err)
	}
	if err := table.Append("p", "c", params, []string{"fold", "f1"}, [][]string{{"0", "0.9"}}, "rf_result"); err == nil {
		t.Error("expected header mismatch error")
	}
}

func TestResultTable_RowWidthMismatch(t *testing.T) {
	table := NewResultTable([]string{"quality"})
	err := table.Append("p", "c", map[string]string{"quality": "high"},
		[]string{"fold", "auc"}, [][]string{{"0"}}, "lr_results")
	if err == nil {
		t.Error("expected row width error")
	}
}

func TestResultTable_WriteCSV(t *testing.T) {
	table := NewResultTable([]string{"quality"})
	if err := table.Append("p", "c", map[string]string{"quality": "high"},
		[]string{"fold", "auc"}, [][]string{{"0", "0.9"}, {"1", "0.91"}}, "lr_results"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out", "all_results.csv")
	if err := table.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read table: %v", err)
	}

	want := "parent_run_id,child_run_id,quality,fold,auc,source\n" +
		"p,c,high,0,0.9,lr_results\n" +
		"p,c,high,1,0.91,lr_results\n"
	if string(data) != want {
		t.Errorf("table content:\n%s\nwant:\n%s", data, want)
	}
}

func TestReadArtifactCSV(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "lr_results.csv")
	if err := os.WriteFile(path, []byte("fold,auc\n0,0.9\n1,0.91\n"), 0644); err != nil {
		t.Fatal(err)
	}

	header, rows, err := readArtifactCSV(path)
	if err != nil {
		t.Fatalf("readArtifactCSV failed: %v", err)
	}
	if strings.Join(header, ",") != "fold,auc" {
		t.Errorf("header = %v", header)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}

	empty := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := readArtifactCSV(empty); err == nil {
		t.Error("expected error for empty artifact")
	}
}
