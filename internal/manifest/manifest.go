package manifest

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mlsweep/sweepctl/internal/models"
)

// Arg binds one submitted command-line flag to the parameter column it carries.
// The slice order in Manifest.Args is the submission order and therefore the
// positional-decode order.
type Arg struct {
	Flag  string `yaml:"flag"`
	Param string `yaml:"param"`
}

// Artifact names one expected per-child output file and the source tag its
// rows are stamped with.
type Artifact struct {
	Path   string `yaml:"path"`
	Source string `yaml:"source"`
}

// Manifest makes the submit/collect contract explicit: which flags were
// submitted in which order, which artifacts every child is expected to
// produce, and how children are ranked.
type Manifest struct {
	PrimaryMetric string     `yaml:"primary_metric"`
	Goal          string     `yaml:"goal"`
	Args          []Arg      `yaml:"args"`
	Artifacts     []Artifact `yaml:"artifacts"`
}

// Default returns the built-in manifest for the variant-classification sweep.
func Default() *Manifest {
	return &Manifest{
		PrimaryMetric: "best_cv_score",
		Goal:          string(models.GoalMaximize),
		Args: []Arg{
			{Flag: "--vcf_filename", Param: "vcf_filename"},
			{Flag: "--cadd_snv_filename", Param: "cadd_snv_filename"},
			{Flag: "--cadd_indel_filename", Param: "cadd_indel_filename"},
			{Flag: "--categorical", Param: "categorical"},
			{Flag: "--imputation", Param: "imputation"},
			{Flag: "--quality", Param: "quality"},
			{Flag: "--restriction", Param: "restriction"},
			{Flag: "--transcript", Param: "transcript"},
			{Flag: "--vus_inclusion", Param: "vus_inclusion"},
		},
		Artifacts: []Artifact{
			{Path: "outputs/lr_results.csv", Source: "lr_results"},
			{Path: "outputs/rf_results.csv", Source: "rf_result"},
		},
	}
}

// Load reads and validates a manifest from a YAML file.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes and validates a manifest from a reader.
func Parse(r io.Reader) (*Manifest, error) {
	var m Manifest
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) Validate() error {
	if m.PrimaryMetric == "" {
		return fmt.Errorf("manifest: primary_metric is required")
	}
	if _, ok := models.ParseGoal(m.Goal); !ok {
		return fmt.Errorf("manifest: invalid goal: %s (valid: maximize, minimize)", m.Goal)
	}
	if len(m.Args) == 0 {
		return fmt.Errorf("manifest: at least one arg binding is required")
	}
	seen := make(map[string]bool, len(m.Args))
	for i, a := range m.Args {
		if a.Flag == "" || a.Param == "" {
			return fmt.Errorf("manifest: args[%d]: flag and param are required", i)
		}
		if seen[a.Param] {
			return fmt.Errorf("manifest: duplicate param: %s", a.Param)
		}
		seen[a.Param] = true
	}
	if len(m.Artifacts) == 0 {
		return fmt.Errorf("manifest: at least one artifact is required")
	}
	for i, a := range m.Artifacts {
		if a.Path == "" || a.Source == "" {
			return fmt.Errorf("manifest: artifacts[%d]: path and source are required", i)
		}
	}
	return nil
}

// ParamNames returns the parameter column names in submission order.
func (m *Manifest) ParamNames() []string {
	names := make([]string, len(m.Args))
	for i, a := range m.Args {
		names[i] = a.Param
	}
	return names
}
