package charts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// EChartsCDN is used when no local copy of the charting library is configured
const EChartsCDN = "https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js"

const (
	chartSelector  = "#chart"
	vectorSelector = "#chart svg"
	pollInterval   = 250 * time.Millisecond
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<script src="%s"></script>
<style>html,body{margin:0;padding:0;background:#ffffff;}</style>
</head>
<body>
<div id="chart" style="width:%dpx;height:%dpx;"></div>
<script>(function(){var el=document.getElementById('chart');var c=echarts.init(el,null,{renderer:'svg'});c.setOption(%s);})();</script>
</body>
</html>`

// BrowserConfig configures the headless Chrome renderer
type BrowserConfig struct {
	// ChromePath overrides the browser executable; empty searches the usual locations
	ChromePath string
	// EChartsAsset is a local echarts.min.js. When empty the CDN copy is used.
	EChartsAsset     string
	DebugScreenshots bool
}

// BrowserRenderer draws ECharts specs in headless Chrome
type BrowserRenderer struct {
	cfg    BrowserConfig
	logger *zap.SugaredLogger

	assetOnce sync.Once
	asset     []byte
	assetErr  error
}

func NewBrowserRenderer(cfg BrowserConfig, logger *zap.SugaredLogger) *BrowserRenderer {
	return &BrowserRenderer{cfg: cfg, logger: logger}
}

// loadAsset reads the local charting library the first time it is needed
func (r *BrowserRenderer) loadAsset() ([]byte, error) {
	r.assetOnce.Do(func() {
		if r.cfg.EChartsAsset == "" {
			return
		}
		r.asset, r.assetErr = os.ReadFile(r.cfg.EChartsAsset)
		if r.assetErr != nil {
			r.assetErr = fmt.Errorf("reading echarts asset: %w", r.assetErr)
		}
	})
	return r.asset, r.assetErr
}

// Open starts one browser process for the caller's rendering phase
func (r *BrowserRenderer) Open(ctx context.Context) (Session, error) {
	asset, err := r.loadAsset()
	if err != nil {
		return nil, err
	}

	pageDir, err := os.MkdirTemp("", "wxreport-page-")
	if err != nil {
		return nil, fmt.Errorf("creating page directory: %w", err)
	}

	scriptSrc := EChartsCDN
	if asset != nil {
		if err := os.WriteFile(filepath.Join(pageDir, "echarts.min.js"), asset, 0o644); err != nil {
			os.RemoveAll(pageDir)
			return nil, fmt.Errorf("staging echarts asset: %w", err)
		}
		scriptSrc = "echarts.min.js"
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("allow-file-access-from-files", true),
	)
	if r.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.cfg.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(r.logger.Debugf),
		chromedp.WithErrorf(r.logger.Debugf),
	)

	// An empty Run launches the browser
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		os.RemoveAll(pageDir)
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	return &browserSession{
		renderer:      r,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		pageDir:       pageDir,
		scriptSrc:     scriptSrc,
	}, nil
}

type browserSession struct {
	renderer      *BrowserRenderer
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	pageDir       string
	scriptSrc     string

	closeOnce sync.Once
}

// Render draws spec in a fresh tab and screenshots the chart container to path
func (s *browserSession) Render(ctx context.Context, spec Spec, path string) error {
	option, err := spec.OptionJSON()
	if err != nil {
		return fmt.Errorf("encoding chart option: %w", err)
	}

	page := filepath.Join(s.pageDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".html")
	html := fmt.Sprintf(pageTemplate, s.scriptSrc, spec.Width, spec.Height, option)
	if err := os.WriteFile(page, []byte(html), 0o644); err != nil {
		return fmt.Errorf("writing chart page: %w", err)
	}

	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()

	// Create the tab before any deadline is attached so a timeout only abandons the render
	if err := chromedp.Run(tabCtx); err != nil {
		return fmt.Errorf("opening tab: %w", err)
	}

	// The tab follows the caller's deadline and cancellation
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithDeadline(tabCtx, deadline)
		defer cancel()
	}
	var cancelRun context.CancelFunc
	tabCtx, cancelRun = context.WithCancel(tabCtx)
	defer cancelRun()
	stop := context.AfterFunc(ctx, cancelRun)
	defer stop()

	err = chromedp.Run(tabCtx,
		emulation.SetDeviceMetricsOverride(int64(spec.Width), int64(spec.Height), 1, false),
		chromedp.Navigate("file://"+page),
	)
	if err == nil {
		err = waitForChart(tabCtx)
	}

	var buf []byte
	if err == nil {
		err = chromedp.Run(tabCtx, chromedp.Screenshot(chartSelector, &buf, chromedp.NodeVisible, chromedp.ByQuery))
	}
	if err != nil {
		if s.renderer.cfg.DebugScreenshots {
			s.debugScreenshot(tabCtx, path)
		}
		return fmt.Errorf("rendering %s: %w", spec.Parameter.Key, err)
	}

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("writing chart image: %w", err)
	}
	return nil
}

// waitForChart waits for the chart's SVG output. WaitVisible gets half the remaining
// time; after that the DOM is polled until the deadline.
func waitForChart(ctx context.Context) error {
	waitCtx := ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, time.Until(deadline)/2)
		defer cancel()
	}

	err := chromedp.Run(waitCtx, chromedp.WaitVisible(vectorSelector, chromedp.ByQuery))
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		var ready bool
		if perr := chromedp.Run(ctx, chromedp.Evaluate(`document.querySelector('`+vectorSelector+`') !== null`, &ready)); perr == nil && ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (s *browserSession) debugScreenshot(ctx context.Context, path string) {
	debugPath := strings.TrimSuffix(path, filepath.Ext(path)) + "_debug.png"

	// The render context may already be spent
	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(shotCtx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		s.renderer.logger.Warnw("debug screenshot failed", "path", debugPath, "error", err)
		return
	}
	if err := os.WriteFile(debugPath, buf, 0o644); err != nil {
		s.renderer.logger.Warnw("writing debug screenshot", "path", debugPath, "error", err)
		return
	}
	s.renderer.logger.Infow("captured debug screenshot", "path", debugPath)
}

// Close shuts the browser down and removes the staged pages. It is safe to call more than once.
func (s *browserSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancelBrowser()
		s.cancelAlloc()
		err = os.RemoveAll(s.pageDir)
	})
	return err
}
