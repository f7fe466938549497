package timeseries

import (
	"fmt"
	"time"

	"github.com/chrissnell/wxreport/internal/types"
)

const day = 24 * time.Hour

// FilterCustom returns the points that fall between 00:00:00.000 on start's
// calendar day and 23:59:59.999 on end's calendar day, both inclusive.
func FilterCustom(s types.Series, start, end time.Time) types.Series {
	from := startOfDay(start)
	to := startOfDay(end).Add(day - time.Millisecond)
	return within(s, from, to)
}

// FilterPreset returns the points within the preset window measured back from
// the newest point of s. The anchor is the data's own last timestamp, never the
// current time.
func FilterPreset(s types.Series, preset types.RangePreset) (types.Series, error) {
	if !preset.Valid() {
		return nil, fmt.Errorf("unknown range preset %q", preset)
	}
	if len(s) == 0 {
		return types.Series{}, nil
	}
	if preset == types.RangeAll {
		return s, nil
	}

	days, _ := preset.Days()
	anchor := s.Last().Timestamp
	return within(s, anchor.Add(-time.Duration(days)*day), anchor), nil
}

// Filter applies the range selection described by the request
func Filter(s types.Series, req types.RequestSpec) (types.Series, error) {
	switch req.RangeMode {
	case types.RangeModeCustom:
		start, end, err := req.CustomRange()
		if err != nil {
			return nil, err
		}
		return FilterCustom(s, start, end), nil
	case types.RangeModePreset:
		return FilterPreset(s, req.Preset)
	default:
		return nil, fmt.Errorf("unknown range mode %q", req.RangeMode)
	}
}

func within(s types.Series, from, to time.Time) types.Series {
	out := make(types.Series, 0, len(s))
	for _, p := range s {
		if p.Timestamp.Before(from) || p.Timestamp.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
