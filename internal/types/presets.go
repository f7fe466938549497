package types

import "fmt"

// RangeMode selects between a named preset window and an explicit date pair
type RangeMode string

const (
	RangeModePreset RangeMode = "preset"
	RangeModeCustom RangeMode = "custom"
)

// RangePreset is a named window measured back from the newest point of a series
type RangePreset string

const (
	Range1D  RangePreset = "1D"
	Range1W  RangePreset = "1W"
	Range1M  RangePreset = "1M"
	Range3M  RangePreset = "3M"
	Range6M  RangePreset = "6M"
	Range1Y  RangePreset = "1Y"
	Range5Y  RangePreset = "5Y"
	Range10Y RangePreset = "10Y"
	Range20Y RangePreset = "20Y"
	Range30Y RangePreset = "30Y"
	Range50Y RangePreset = "50Y"
	RangeAll RangePreset = "All"
)

// Multi-year presets use 365 days per year; leap days are not accounted for.
var rangePresetDays = map[RangePreset]int{
	Range1D:  1,
	Range1W:  7,
	Range1M:  30,
	Range3M:  90,
	Range6M:  180,
	Range1Y:  365,
	Range5Y:  1825,
	Range10Y: 3650,
	Range20Y: 7300,
	Range30Y: 10950,
	Range50Y: 18250,
}

var rangePresetLabels = map[RangePreset]string{
	Range1D:  "Last day",
	Range1W:  "Last week",
	Range1M:  "Last month",
	Range3M:  "Last 3 months",
	Range6M:  "Last 6 months",
	Range1Y:  "Last year",
	Range5Y:  "Last 5 years",
	Range10Y: "Last 10 years",
	Range20Y: "Last 20 years",
	Range30Y: "Last 30 years",
	Range50Y: "Last 50 years",
	RangeAll: "All data",
}

// Days returns the window length of the preset. ok is false for All and for unknown presets.
func (p RangePreset) Days() (days int, ok bool) {
	days, ok = rangePresetDays[p]
	return days, ok
}

// Valid reports whether p is a known range preset
func (p RangePreset) Valid() bool {
	_, ok := rangePresetLabels[p]
	return ok
}

// Label returns a human-readable description of the window
func (p RangePreset) Label() string {
	if l, ok := rangePresetLabels[p]; ok {
		return l
	}
	return string(p)
}

// AveragingPreset is the bucket granularity used when resampling a series
type AveragingPreset string

const (
	AverageNone AveragingPreset = "None"
	Average1W   AveragingPreset = "1W"
	Average1M   AveragingPreset = "1M"
	Average3M   AveragingPreset = "3M"
	Average6M   AveragingPreset = "6M"
	Average1Y   AveragingPreset = "1Y"
	Average5Y   AveragingPreset = "5Y"
	Average10Y  AveragingPreset = "10Y"
	Average20Y  AveragingPreset = "20Y"
	Average30Y  AveragingPreset = "30Y"
)

// averagingMonths maps each preset to its bucket width in months. 1W is handled
// separately by the resampler and carries no month width.
var averagingMonths = map[AveragingPreset]int{
	AverageNone: 0,
	Average1W:   0,
	Average1M:   1,
	Average3M:   3,
	Average6M:   6,
	Average1Y:   12,
	Average5Y:   60,
	Average10Y:  120,
	Average20Y:  240,
	Average30Y:  360,
}

var averagingLabels = map[AveragingPreset]string{
	AverageNone: "daily values",
	Average1W:   "weekly average",
	Average1M:   "monthly average",
	Average3M:   "3-month average",
	Average6M:   "6-month average",
	Average1Y:   "yearly average",
	Average5Y:   "5-year average",
	Average10Y:  "10-year average",
	Average20Y:  "20-year average",
	Average30Y:  "30-year average",
}

// Normalized maps the empty preset to None
func (a AveragingPreset) Normalized() AveragingPreset {
	if a == "" {
		return AverageNone
	}
	return a
}

// Valid reports whether a is a known averaging preset
func (a AveragingPreset) Valid() bool {
	_, ok := averagingMonths[a.Normalized()]
	return ok
}

// IntervalMonths returns the bucket width in months (0 for None and 1W)
func (a AveragingPreset) IntervalMonths() (int, error) {
	m, ok := averagingMonths[a.Normalized()]
	if !ok {
		return 0, fmt.Errorf("unknown averaging preset %q", a)
	}
	return m, nil
}

// Label returns a human-readable description of the averaging
func (a AveragingPreset) Label() string {
	if l, ok := averagingLabels[a.Normalized()]; ok {
		return l
	}
	return string(a)
}

// RangePresets returns every range preset, shortest first
func RangePresets() []RangePreset {
	return []RangePreset{Range1D, Range1W, Range1M, Range3M, Range6M, Range1Y, Range5Y, Range10Y, Range20Y, Range30Y, Range50Y, RangeAll}
}

// AveragingPresets returns every averaging preset, finest first
func AveragingPresets() []AveragingPreset {
	return []AveragingPreset{AverageNone, Average1W, Average1M, Average3M, Average6M, Average1Y, Average5Y, Average10Y, Average20Y, Average30Y}
}
