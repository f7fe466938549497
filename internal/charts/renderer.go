package charts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/wxreport/internal/metrics"
	"github.com/chrissnell/wxreport/internal/types"
)

// Renderer opens rendering sessions. A session owns whatever expensive engine state
// the renderer needs and is used for every chart of one job.
type Renderer interface {
	Open(ctx context.Context) (Session, error)
}

// Session draws specs to image files
type Session interface {
	Render(ctx context.Context, spec Spec, path string) error
	Close() error
}

// Options controls chart dimensions and per-chart time limits
type Options struct {
	Width         int
	Height        int
	RenderTimeout time.Duration
}

// Generator renders one chart per parameter that has data
type Generator struct {
	renderer Renderer
	opts     Options
	logger   *zap.SugaredLogger
	metrics  *metrics.Recorder
}

func NewGenerator(r Renderer, opts Options, logger *zap.SugaredLogger, rec *metrics.Recorder) *Generator {
	if opts.Width <= 0 {
		opts.Width = 1200
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = 30 * time.Second
	}
	return &Generator{
		renderer: r,
		opts:     opts,
		logger:   logger,
		metrics:  rec,
	}
}

// ChartPath is where the chart for key is written inside dir
func ChartPath(dir string, key types.ParameterKey) string {
	return filepath.Join(dir, fmt.Sprintf("%s.png", key))
}

// Generate renders a chart for each parameter of req that has data and writes it into
// dir. A chart that fails to render is logged and left out; Generate returns the
// charts that were written.
func (g *Generator) Generate(ctx context.Context, dir string, data types.SeriesMap, hasData map[types.ParameterKey]bool, req types.RequestSpec) []types.Artifact {
	var artifacts []types.Artifact

	session, err := g.renderer.Open(ctx)
	if err != nil {
		g.logger.Errorw("could not start chart renderer", "error", err)
		for _, key := range req.Parameters {
			if hasData[key] {
				g.metrics.Rendered(false)
			}
		}
		return nil
	}
	defer func() {
		if err := session.Close(); err != nil {
			g.logger.Warnw("closing chart renderer", "error", err)
		}
	}()

	for _, key := range req.Parameters {
		if !hasData[key] {
			continue
		}

		param, err := types.LookupParameter(key)
		if err != nil {
			g.logger.Errorw("skipping chart", "parameter", key, "error", err)
			continue
		}

		spec := BuildSpec(param, data[key].NonEmpty(), req.Stations, req, g.opts.Width, g.opts.Height)
		if spec.Empty() {
			g.logger.Infow("skipping empty chart", "parameter", key)
			continue
		}

		path := ChartPath(dir, key)
		if err := g.renderOne(ctx, session, spec, path); err != nil {
			g.metrics.Rendered(false)
			g.logger.Errorw("chart render failed", "parameter", key, "path", path, "error", err)
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				g.logger.Warnw("removing partial chart", "path", path, "error", rmErr)
			}
			continue
		}

		g.metrics.Rendered(true)
		g.logger.Debugw("chart rendered", "parameter", key, "path", path, "series", len(spec.Series))
		artifacts = append(artifacts, types.Artifact{Kind: types.ArtifactChart, Parameter: key, Path: path})
	}

	return artifacts
}

func (g *Generator) renderOne(ctx context.Context, session Session, spec Spec, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while rendering: %v", r)
		}
	}()

	rctx, cancel := context.WithTimeout(ctx, g.opts.RenderTimeout)
	defer cancel()

	return session.Render(rctx, spec, path)
}
