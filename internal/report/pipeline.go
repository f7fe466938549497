// Package report runs report jobs: fetch, render and export inside a private
// workspace, producing a manifest of the generated files.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chrissnell/wxreport/internal/charts"
	"github.com/chrissnell/wxreport/internal/export"
	"github.com/chrissnell/wxreport/internal/fetcher"
	"github.com/chrissnell/wxreport/internal/metrics"
	"github.com/chrissnell/wxreport/internal/types"
)

// workspacePrefix marks directories created by the pipeline; Cleanup refuses anything else
const workspacePrefix = "wxreport-job-"

// Options configures the pipeline
type Options struct {
	// WorkspaceRoot is the parent of job workspaces; empty uses os.TempDir
	WorkspaceRoot string
	JobTimeout    time.Duration
}

// Pipeline sequences fetching, rendering and exporting for each job
type Pipeline struct {
	fetcher *fetcher.Fetcher
	charts  *charts.Generator
	tables  *export.TableExporter
	opts    Options
	logger  *zap.SugaredLogger
	metrics *metrics.Recorder
}

func NewPipeline(f *fetcher.Fetcher, g *charts.Generator, t *export.TableExporter, opts Options, logger *zap.SugaredLogger, rec *metrics.Recorder) *Pipeline {
	return &Pipeline{
		fetcher: f,
		charts:  g,
		tables:  t,
		opts:    opts,
		logger:  logger,
		metrics: rec,
	}
}

// Job is one run of the pipeline. Workspace is set as soon as it exists, even when
// Run fails, and must be passed to Cleanup.
type Job struct {
	ID        string
	Workspace string
	Manifest  *Manifest

	mu    sync.Mutex
	state State
}

// State returns the current state of the job
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

func (j *Job) transition(s State) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = s
	j.Manifest.States = append(j.Manifest.States, s)
}

// Run executes one report job. The returned job is nil only when the request is
// invalid; otherwise the caller owns job.Workspace and must call Cleanup on it.
func (p *Pipeline) Run(ctx context.Context, req types.RequestSpec) (*Job, error) {
	started := time.Now()

	if err := req.Validate(); err != nil {
		p.metrics.JobFinished("invalid_request", time.Since(started))
		return nil, err
	}

	job := &Job{ID: uuid.NewString()}
	job.Manifest = newManifest(job.ID, started.UTC())
	logger := p.logger.With("job", job.ID)

	workspace, err := os.MkdirTemp(p.opts.WorkspaceRoot, workspacePrefix+job.ID+"-")
	if err != nil {
		return p.fail(job, "workspace_error", &WorkspaceError{Op: "create", Path: p.opts.WorkspaceRoot, Err: err})
	}
	job.Workspace = workspace
	job.transition(StateCreated)

	jobCtx := ctx
	if p.opts.JobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, p.opts.JobTimeout)
		defer cancel()
	}

	job.transition(StateFetching)
	res := p.fetcher.Fetch(jobCtx, req)
	job.Manifest.summarise(res.Series, res.HasData, res.Failures)

	if job.Manifest.Stats.TotalPoints == 0 {
		logger.Infow("report job produced no data", "stations", req.Stations, "parameters", req.Parameters)
		return p.fail(job, "no_data", ErrNoDataAvailable)
	}

	var (
		g      errgroup.Group
		images []types.Artifact
		tables []types.Artifact
	)
	if req.Images {
		job.transition(StateRendering)
		g.Go(func() error {
			images = p.charts.Generate(jobCtx, workspace, res.Series, res.HasData, req)
			return nil
		})
	}
	if req.Tables {
		job.transition(StateExporting)
		// Tables are still written from the fetched data after the job deadline
		exportCtx := context.WithoutCancel(jobCtx)
		g.Go(func() error {
			tables = p.tables.Export(exportCtx, workspace, res.Series, req)
			return nil
		})
	}
	_ = g.Wait()

	job.Manifest.addArtifacts(images)
	job.Manifest.addArtifacts(tables)
	job.transition(StateDone)
	job.Manifest.Elapsed = time.Since(started).String()

	if err := job.Manifest.WriteJSON(filepath.Join(workspace, ManifestFileName)); err != nil {
		logger.Warnw("could not write manifest file", "error", err)
	}

	p.metrics.JobFinished("success", time.Since(started))
	logger.Infow("report job finished",
		"points", job.Manifest.Stats.TotalPoints,
		"images", job.Manifest.Stats.ImagesGenerated,
		"tables", job.Manifest.Stats.TablesGenerated,
		"pairFailures", res.Failures,
		"elapsed", job.Manifest.Elapsed)

	return job, nil
}

func (p *Pipeline) fail(job *Job, outcome string, err error) (*Job, error) {
	job.transition(StateFailed)
	job.Manifest.Elapsed = time.Since(job.Manifest.StartedAt).String()
	p.metrics.JobFinished(outcome, time.Since(job.Manifest.StartedAt))
	p.logger.Warnw("report job failed", "job", job.ID, "error", err)
	return job, err
}

// Cleanup removes a job workspace and everything in it. Removing a workspace that is
// already gone, or passing an empty path, is not an error.
func (p *Pipeline) Cleanup(workspace string) error {
	if workspace == "" {
		return nil
	}
	if !strings.HasPrefix(filepath.Base(workspace), workspacePrefix) {
		return &WorkspaceError{Op: "cleanup", Path: workspace, Err: errors.New("not a job workspace")}
	}
	if err := os.RemoveAll(workspace); err != nil {
		return &WorkspaceError{Op: "cleanup", Path: workspace, Err: err}
	}
	return nil
}

// String describes the job for logs
func (j *Job) String() string {
	return fmt.Sprintf("job %s (%s)", j.ID, j.State())
}
