package types

import (
	"sort"
	"time"
)

// DaysPerRecord is the number of day columns carried by one monthly record
const DaysPerRecord = 31

// RawMonthlyRecord is one stored row of daily values for a station and month.
// Days[0] holds day 1. A nil entry means no value was recorded for that day.
type RawMonthlyRecord struct {
	Station string
	Year    int
	Month   int
	Days    [DaysPerRecord]*float64
}

// Point is a single observation in a time series
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is a time-ordered sequence of points with strictly increasing timestamps
type Series []Point

// Last returns the final point of the series. It must not be called on an empty series.
func (s Series) Last() Point {
	return s[len(s)-1]
}

// Values returns the point values in series order
func (s Series) Values() []float64 {
	vals := make([]float64, len(s))
	for i, p := range s {
		vals[i] = p.Value
	}
	return vals
}

// Normalize sorts the points by timestamp and drops every point whose timestamp
// repeats an earlier one, so the result stays strictly ordered by time.
func Normalize(points []Point) Series {
	if len(points) == 0 {
		return Series{}
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	out := make(Series, 0, len(sorted))
	for _, p := range sorted {
		if len(out) > 0 && out.Last().Timestamp.Equal(p.Timestamp) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// StationSeries maps station ID to that station's series
type StationSeries map[string]Series

// SeriesMap maps parameter -> station -> series
type SeriesMap map[ParameterKey]StationSeries

// PointCount returns the total number of points across every parameter and station
func (m SeriesMap) PointCount() int {
	total := 0
	for _, stations := range m {
		for _, s := range stations {
			total += len(s)
		}
	}
	return total
}

// NonEmpty returns a copy of the station map without the stations that have no points
func (ss StationSeries) NonEmpty() StationSeries {
	out := make(StationSeries, len(ss))
	for station, s := range ss {
		if len(s) > 0 {
			out[station] = s
		}
	}
	return out
}
