// Package timeseries turns stored monthly records into ordered series and
// provides the range filtering and bucket resampling applied to them.
package timeseries

import (
	"time"

	"github.com/chrissnell/wxreport/internal/types"
)

// Extract converts a station's monthly records into a calendar-validated series.
// Records with an impossible year or month are skipped. A day value is kept only
// if (year, month, day) names a real calendar date.
func Extract(records []types.RawMonthlyRecord) types.Series {
	points := make([]types.Point, 0, len(records)*types.DaysPerRecord)

	for _, rec := range records {
		if !validYearMonth(rec.Year, rec.Month) {
			continue
		}

		for i, v := range rec.Days {
			if v == nil {
				continue
			}
			day := i + 1
			ts, ok := calendarDate(rec.Year, rec.Month, day)
			if !ok {
				continue
			}
			points = append(points, types.Point{Timestamp: ts, Value: *v})
		}
	}

	return types.Normalize(points)
}

func validYearMonth(year, month int) bool {
	return year > 0 && year <= 9999 && month >= 1 && month <= 12
}

// calendarDate builds the UTC midnight of (year, month, day). time.Date normalizes
// overflowing days into the next month, so the result is checked against the input.
func calendarDate(year, month, day int) (time.Time, bool) {
	ts := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if ts.Day() != day || int(ts.Month()) != month {
		return time.Time{}, false
	}
	return ts, true
}
