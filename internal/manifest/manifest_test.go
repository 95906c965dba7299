package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	m := Default()
	if err := m.Validate(); err != nil {
		t.Fatalf("default manifest is invalid: %v", err)
	}

	wantParams := []string{
		"vcf_filename", "cadd_snv_filename", "cadd_indel_filename",
		"categorical", "imputation", "quality", "restriction",
		"transcript", "vus_inclusion",
	}
	got := m.ParamNames()
	if strings.Join(got, ",") != strings.Join(wantParams, ",") {
		t.Errorf("ParamNames = %v, want %v", got, wantParams)
	}

	if len(m.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(m.Artifacts))
	}
	if m.Artifacts[0].Source != "lr_results" || m.Artifacts[1].Source != "rf_result" {
		t.Errorf("unexpected source tags: %s, %s", m.Artifacts[0].Source, m.Artifacts[1].Source)
	}
}

func TestParse(t *testing.T) {
	yaml := `
primary_metric: best_cv_score
goal: minimize
args:
  - flag: --quality
    param: quality
artifacts:
  - path: outputs/lr_results.csv
    source: lr_results
`
	m, err := Parse(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if m.PrimaryMetric != "best_cv_score" || m.Goal != "minimize" {
		t.Errorf("unexpected ranking config: %s / %s", m.PrimaryMetric, m.Goal)
	}
	if len(m.Args) != 1 || m.Args[0].Param != "quality" {
		t.Errorf("unexpected args: %+v", m.Args)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing primary metric",
			yaml: "goal: maximize\nargs:\n  - {flag: --q, param: q}\nartifacts:\n  - {path: a.csv, source: s}\n",
		},
		{
			name: "bad goal",
			yaml: "primary_metric: m\ngoal: sideways\nargs:\n  - {flag: --q, param: q}\nartifacts:\n  - {path: a.csv, source: s}\n",
		},
		{
			name: "no args",
			yaml: "primary_metric: m\ngoal: maximize\nartifacts:\n  - {path: a.csv, source: s}\n",
		},
		{
			name: "duplicate param",
			yaml: "primary_metric: m\ngoal: maximize\nargs:\n  - {flag: --a, param: q}\n  - {flag: --b, param: q}\nartifacts:\n  - {path: a.csv, source: s}\n",
		},
		{
			name: "no artifacts",
			yaml: "primary_metric: m\ngoal: maximize\nargs:\n  - {flag: --q, param: q}\n",
		},
		{
			name: "artifact without source",
			yaml: "primary_metric: m\ngoal: maximize\nargs:\n  - {flag: --q, param: q}\nartifacts:\n  - {path: a.csv}\n",
		},
		{
			name: "not yaml",
			yaml: "{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	content := `
primary_metric: best_cv_score
goal: maximize
args:
  - flag: --quality
    param: quality
artifacts:
  - path: outputs/lr_results.csv
    source: lr_results
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.PrimaryMetric != "best_cv_score" {
		t.Errorf("primary_metric = %s", m.PrimaryMetric)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
