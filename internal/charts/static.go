package charts

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/chrissnell/wxreport/internal/types"
)

// StaticRenderer draws specs with go-chart. It needs no browser and is used where
// Chrome is not installed.
type StaticRenderer struct{}

func NewStaticRenderer() *StaticRenderer {
	return &StaticRenderer{}
}

func (r *StaticRenderer) Open(ctx context.Context) (Session, error) {
	return staticSession{}, nil
}

type staticSession struct{}

func (staticSession) Close() error { return nil }

func (staticSession) Render(ctx context.Context, spec Spec, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	graph := staticChart(spec)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func staticChart(spec Spec) chart.Chart {
	var series []chart.Series
	for _, ss := range spec.Series {
		color := drawing.ColorFromHex(strings.TrimPrefix(ss.Color, "#"))
		style := chart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
		}
		// Bar-style parameters are drawn as filled areas
		if spec.Parameter.Style == types.ChartStyleBar {
			style.FillColor = color.WithAlpha(96)
		}

		xs := make([]time.Time, len(ss.Points))
		ys := make([]float64, len(ss.Points))
		for i, p := range ss.Points {
			xs[i] = p.Timestamp
			ys[i] = p.Value
		}
		series = append(series, chart.TimeSeries{
			Name:    ss.Station,
			Style:   style,
			XValues: xs,
			YValues: ys,
		})
	}

	graph := chart.Chart{
		Title: spec.Title,
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:  spec.Width,
		Height: spec.Height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style: chart.Style{
				FontSize: 9,
			},
		},
		YAxis: chart.YAxis{
			Name: spec.Parameter.Unit,
			Range: &chart.ContinuousRange{
				Min: spec.YMin,
				Max: spec.YMax,
			},
			Style: chart.Style{
				FontSize: 10,
			},
		},
		Series: series,
	}

	// A single timestamp gives the x axis no width
	if first, last := spec.timeRange(); !first.IsZero() && first.Equal(last) {
		graph.XAxis.Range = &chart.ContinuousRange{
			Min: chart.TimeToFloat64(first.Add(-24 * time.Hour)),
			Max: chart.TimeToFloat64(last.Add(24 * time.Hour)),
		}
	}

	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}
