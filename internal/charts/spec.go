// Package charts turns one parameter's station series into a raster chart.
//
// A Spec is built once per parameter and is independent of the engine that draws
// it. BrowserRenderer hands the Spec to ECharts inside headless Chrome;
// StaticRenderer draws it with go-chart and needs no browser.
package charts

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/chrissnell/wxreport/internal/types"
)

// axisPadding is the fraction of the observed value span added above and below the data
const axisPadding = 0.1

// palette is indexed by a station's position in the request
var palette = []string{
	"#5470c6", "#91cc75", "#fac858", "#ee6666", "#73c0de",
	"#3ba272", "#fc8452", "#9a60b4", "#ea7ccc", "#2f4554",
}

// StationColor returns the color assigned to the station at index i of the request
func StationColor(i int) string {
	return palette[i%len(palette)]
}

// SeriesSpec is one station's visual series
type SeriesSpec struct {
	Station string
	Color   string
	Points  types.Series
}

// Spec is the declarative description of one chart
type Spec struct {
	Parameter types.Parameter
	Title     string
	Series    []SeriesSpec
	YMin      float64
	YMax      float64
	Width     int
	Height    int
}

// Empty reports whether the spec has nothing to draw
func (s Spec) Empty() bool {
	for _, ss := range s.Series {
		if len(ss.Points) > 0 {
			return false
		}
	}
	return true
}

// BuildSpec assembles the chart for one parameter. stations fixes the series order and
// the color of each station; stations without points in data are left out but keep
// their palette slot.
func BuildSpec(param types.Parameter, data types.StationSeries, stations []string, req types.RequestSpec, width, height int) Spec {
	spec := Spec{
		Parameter: param,
		Title:     Title(param, req),
		Width:     width,
		Height:    height,
	}

	var values []float64
	for i, station := range stations {
		s := data[station]
		if len(s) == 0 {
			continue
		}
		spec.Series = append(spec.Series, SeriesSpec{
			Station: station,
			Color:   StationColor(i),
			Points:  s,
		})
		values = append(values, s.Values()...)
	}

	spec.YMin, spec.YMax = axisBounds(values)
	return spec
}

// Title describes the parameter, the window and the bucket size
func Title(param types.Parameter, req types.RequestSpec) string {
	return fmt.Sprintf("%s (%s) - %s, %s", param.Label, param.Unit, req.RangeLabel(), req.Averaging.Label())
}

// axisBounds pads the observed range and never lets the lower bound drop below zero
func axisBounds(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 1
	}
	lo, hi = floats.Min(values), floats.Max(values)

	span := hi - lo
	if span == 0 {
		span = math.Max(math.Abs(hi), 1)
	}
	lo -= span * axisPadding
	hi += span * axisPadding

	if lo < 0 {
		lo = 0
	}
	if hi <= lo {
		hi = lo + 1
	}
	return round2(lo), round2(hi)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Option returns the ECharts option object for the spec
func (s Spec) Option() map[string]interface{} {
	seriesType := "line"
	if s.Parameter.Style == types.ChartStyleBar {
		seriesType = "bar"
	}

	names := make([]string, 0, len(s.Series))
	colors := make([]string, 0, len(s.Series))
	series := make([]interface{}, 0, len(s.Series))
	for _, ss := range s.Series {
		names = append(names, ss.Station)
		colors = append(colors, ss.Color)

		data := make([][]interface{}, len(ss.Points))
		for i, p := range ss.Points {
			data[i] = []interface{}{p.Timestamp.UnixMilli(), p.Value}
		}

		entry := map[string]interface{}{
			"name":      ss.Station,
			"type":      seriesType,
			"data":      data,
			"itemStyle": map[string]interface{}{"color": ss.Color},
		}
		if seriesType == "line" {
			entry["showSymbol"] = len(ss.Points) <= 60
			entry["lineStyle"] = map[string]interface{}{"width": 2, "color": ss.Color}
		}
		series = append(series, entry)
	}

	return map[string]interface{}{
		"animation": false,
		"title": map[string]interface{}{
			"text": s.Title,
			"left": "center",
		},
		"tooltip": map[string]interface{}{"trigger": "axis"},
		"legend": map[string]interface{}{
			"data":   names,
			"bottom": 0,
		},
		"grid": map[string]interface{}{"left": "6%", "right": "4%", "bottom": "12%", "containLabel": true},
		"xAxis": map[string]interface{}{
			"type": "time",
		},
		"yAxis": map[string]interface{}{
			"type": "value",
			"name": s.Parameter.Unit,
			"min":  s.YMin,
			"max":  s.YMax,
		},
		"color":  colors,
		"series": series,
	}
}

// OptionJSON marshals Option
func (s Spec) OptionJSON() ([]byte, error) {
	return json.Marshal(s.Option())
}

// timeRange returns the first and last timestamps across all series
func (s Spec) timeRange() (first, last time.Time) {
	for _, ss := range s.Series {
		if len(ss.Points) == 0 {
			continue
		}
		if first.IsZero() || ss.Points[0].Timestamp.Before(first) {
			first = ss.Points[0].Timestamp
		}
		if l := ss.Points.Last().Timestamp; l.After(last) {
			last = l
		}
	}
	return first, last
}
