package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mlsweep/sweepctl/internal/manifest"
	"github.com/mlsweep/sweepctl/internal/models"
	"github.com/mlsweep/sweepctl/internal/platform"
)

// Platform is the tracking-server surface the collector consumes. All five
// operations are delegated to the vendor SDK; *platform.Client implements it.
type Platform interface {
	GetSweep(ctx context.Context, runID string) (*models.SweepRun, error)
	ListChildRuns(ctx context.Context, sweep *models.SweepRun) ([]models.ChildRun, error)
	GetRunArguments(ctx context.Context, runID string) ([]string, error)
	DownloadArtifact(ctx context.Context, runID, remotePath, localPath string) error
	UploadFolder(ctx context.Context, runID, localDir, remoteName string) error
}

// Options tunes one collection pass.
type Options struct {
	Manifest   *manifest.Manifest
	ScratchDir string // base for per-(child, artifact) download dirs
	OutputDir  string // where the table and journal are written
	RemoteName string // artifact folder name attached to the parent run
	TableName  string // CSV file name inside the folder

	// Strict aborts the whole pass on the first child failure instead of
	// isolating it in the report.
	Strict bool

	// Concurrency bounds parallel child fetches. Assembly is always in rank
	// order, so the output is identical regardless of this setting.
	Concurrency int

	// Resume reuses children already committed to the journal.
	Resume bool

	// Overrides for the sweep's tagged ranking configuration.
	PrimaryMetric string
	Goal          models.Goal
}

func (o *Options) withDefaults() Options {
	opts := *o
	if opts.Manifest == nil {
		opts.Manifest = manifest.Default()
	}
	if opts.ScratchDir == "" {
		opts.ScratchDir = os.TempDir()
	}
	if opts.RemoteName == "" {
		opts.RemoteName = "all_results"
	}
	if opts.TableName == "" {
		opts.TableName = "all_results.csv"
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return opts
}

// parsedArtifact is one downloaded and parsed result file, already tagged
// with its source discriminator.
type parsedArtifact struct {
	Source string
	Header []string
	Rows   [][]string
}

// childBlock is everything one child run contributes to the table.
type childBlock struct {
	childID   string
	params    map[string]string
	artifacts []parsedArtifact
}

type childResult struct {
	childID string
	block   *childBlock
	err     error
	resumed bool
}

// Collector reassembles a completed sweep's per-child result files into one
// flat table attached to the parent run.
type Collector struct {
	platform Platform
	journal  *Journal
	opts     Options
}

func New(p Platform, journal *Journal, opts Options) *Collector {
	return &Collector{
		platform: p,
		journal:  journal,
		opts:     opts.withDefaults(),
	}
}

// Collect runs one aggregation pass over the sweep. Failures enumerating the
// sweep or persisting the table are fatal; per-child failures are isolated in
// the report unless Strict is set.
func (c *Collector) Collect(ctx context.Context, sweepID string) (*models.CollectionReport, error) {
	sweep, err := c.platform.GetSweep(ctx, sweepID)
	if err != nil {
		return nil, &RetrievalError{RunID: sweepID, Err: err}
	}

	if c.opts.PrimaryMetric != "" {
		sweep.PrimaryMetric = c.opts.PrimaryMetric
	}
	if c.opts.Goal != "" {
		sweep.Goal = c.opts.Goal
	}
	if sweep.PrimaryMetric == "" {
		sweep.PrimaryMetric = c.opts.Manifest.PrimaryMetric
		if goal, ok := models.ParseGoal(c.opts.Manifest.Goal); ok && c.opts.Goal == "" {
			sweep.Goal = goal
		}
	}

	children, err := c.platform.ListChildRuns(ctx, sweep)
	if err != nil {
		return nil, &RetrievalError{RunID: sweepID, Err: err}
	}

	results, err := c.collectChildren(ctx, sweep, children)
	if err != nil {
		return nil, err
	}

	report := &models.CollectionReport{SweepID: sweepID}
	table := NewResultTable(c.opts.Manifest.ParamNames())

	// Assembly is strictly in rank order regardless of fetch concurrency.
	for _, res := range results {
		if res.err != nil {
			report.Failed = append(report.Failed, models.ChildFailure{RunID: res.childID, Err: res.err})
			continue
		}

		if err := appendBlock(table, sweep.RunID, res.block); err != nil {
			err = &ParseError{RunID: res.childID, Err: err}
			if c.opts.Strict {
				return nil, err
			}
			report.Failed = append(report.Failed, models.ChildFailure{RunID: res.childID, Err: err})
			continue
		}

		if res.resumed {
			report.Skipped = append(report.Skipped, res.childID)
		} else {
			report.Succeeded = append(report.Succeeded, res.childID)
		}
	}
	report.Rows = table.Len()

	tableDir := filepath.Join(c.opts.OutputDir, c.opts.RemoteName)
	tablePath := filepath.Join(tableDir, c.opts.TableName)
	if err := table.WriteCSV(tablePath); err != nil {
		return nil, fmt.Errorf("failed to persist result table: %w", err)
	}
	report.TablePath = tablePath

	if err := c.platform.UploadFolder(ctx, sweep.RunID, tableDir, c.opts.RemoteName); err != nil {
		return nil, fmt.Errorf("failed to upload result table to sweep %s: %w", sweep.RunID, err)
	}

	return report, nil
}

// collectChildren fetches every child's contribution, bounded-parallel, and
// returns results indexed by rank.
func (c *Collector) collectChildren(ctx context.Context, sweep *models.SweepRun, children []models.ChildRun) ([]childResult, error) {
	var resumed map[string]bool
	if c.opts.Resume && c.journal != nil {
		var err error
		resumed, err = c.journal.CollectedChildren()
		if err != nil {
			return nil, err
		}
	}

	results := make([]childResult, len(children))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)

	for i, child := range children {
		i, child := i, child
		results[i].childID = child.RunID

		if resumed[child.RunID] {
			params, artifacts, err := c.journal.LoadChild(child.RunID)
			if err != nil {
				return nil, err
			}
			results[i].block = &childBlock{childID: child.RunID, params: params, artifacts: artifacts}
			results[i].resumed = true
			continue
		}

		g.Go(func() error {
			block, err := c.collectChild(gctx, child)
			if err != nil {
				results[i].err = err
				if c.journal != nil {
					if jerr := c.journal.CommitFailure(child.RunID, err.Error()); jerr != nil {
						return jerr
					}
				}
				if c.opts.Strict {
					return err
				}
				return nil
			}

			results[i].block = block
			if c.journal != nil {
				return c.journal.CommitChild(child.RunID, block.params, block.artifacts)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// collectChild produces one child's block: decoded parameters plus its parsed
// result artifacts, in manifest order.
func (c *Collector) collectChild(ctx context.Context, child models.ChildRun) (*childBlock, error) {
	params, err := c.resolveChildParams(ctx, child)
	if err != nil {
		return nil, err
	}

	block := &childBlock{childID: child.RunID, params: params}
	for _, a := range c.opts.Manifest.Artifacts {
		parsed, err := c.fetchArtifact(ctx, child.RunID, a)
		if err != nil {
			return nil, err
		}
		block.artifacts = append(block.artifacts, parsed)
	}

	return block, nil
}

func (c *Collector) resolveChildParams(ctx context.Context, child models.ChildRun) (map[string]string, error) {
	logged := child.Params
	if logged == nil {
		logged = map[string]string{}
	}

	// Only reach for the submitted token vector when the logged params are
	// incomplete; positional decode is the fallback, not the default.
	incomplete := false
	for _, arg := range c.opts.Manifest.Args {
		if _, ok := logged[arg.Param]; !ok {
			incomplete = true
			break
		}
	}

	var tokens []string
	if incomplete {
		var err error
		tokens, err = c.platform.GetRunArguments(ctx, child.RunID)
		if err != nil {
			return nil, &RetrievalError{RunID: child.RunID, Err: err}
		}
	}

	params, err := ResolveParams(c.opts.Manifest, logged, tokens)
	if err != nil {
		return nil, &ParseError{RunID: child.RunID, Err: err}
	}
	return params, nil
}

// fetchArtifact downloads one artifact into its own scratch directory, parses
// it, and removes the directory before returning on every path.
func (c *Collector) fetchArtifact(ctx context.Context, childID string, a manifest.Artifact) (parsed parsedArtifact, err error) {
	dir := filepath.Join(c.opts.ScratchDir, "sweepctl-"+uuid.NewString())
	defer os.RemoveAll(dir)

	local := filepath.Join(dir, filepath.Base(a.Path))
	if err := c.platform.DownloadArtifact(ctx, childID, a.Path, local); err != nil {
		if errors.Is(err, platform.ErrArtifactNotFound) {
			return parsed, &ArtifactMissingError{RunID: childID, Path: a.Path, Err: err}
		}
		return parsed, &RetrievalError{RunID: childID, Err: err}
	}

	header, rows, err := readArtifactCSV(local)
	if err != nil {
		return parsed, &ParseError{RunID: childID, Path: a.Path, Err: err}
	}

	return parsedArtifact{Source: a.Source, Header: header, Rows: rows}, nil
}

func appendBlock(table *ResultTable, parentID string, block *childBlock) error {
	for _, a := range block.artifacts {
		if err := table.Append(parentID, block.childID, block.params, a.Header, a.Rows, a.Source); err != nil {
			return fmt.Errorf("artifact %s: %w", a.Source, err)
		}
	}
	return nil
}
