package timeseries

import (
	"fmt"
	"sort"
	"time"

	"github.com/chrissnell/wxreport/internal/types"
)

// periodKey identifies a bucket by calendar fields of the points assigned to it
type periodKey struct {
	year  int
	index int
}

// bucket accumulates the raw values assigned to one period
type bucket struct {
	sum            float64
	count          int
	representative time.Time
}

// bucketRule derives a point's period key and the representative timestamp of a key.
// representative must depend on the key alone.
type bucketRule struct {
	key            func(t time.Time) periodKey
	representative func(k periodKey) time.Time
}

// Resample groups s into buckets of the given averaging preset and emits one
// averaged point per non-empty bucket, placed at the bucket's representative
// timestamp. AverageNone returns s unchanged.
func Resample(s types.Series, avg types.AveragingPreset) (types.Series, error) {
	avg = avg.Normalized()
	if avg == types.AverageNone {
		return s, nil
	}

	rule, err := ruleFor(avg)
	if err != nil {
		return nil, err
	}
	if len(s) == 0 {
		return types.Series{}, nil
	}

	buckets := make(map[periodKey]*bucket)
	for _, p := range s {
		k := rule.key(p.Timestamp.UTC())
		b, ok := buckets[k]
		if !ok {
			b = &bucket{representative: rule.representative(k)}
			buckets[k] = b
		}
		b.sum += p.Value
		b.count++
	}

	return emit(buckets), nil
}

// emit turns the buckets into a series sorted by representative timestamp.
// Keys that resolve to the same representative (weekly buckets at a year
// boundary) are merged so timestamps stay strictly increasing.
func emit(buckets map[periodKey]*bucket) types.Series {
	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].representative.Before(ordered[j].representative)
	})

	merged := make([]*bucket, 0, len(ordered))
	for _, b := range ordered {
		if n := len(merged); n > 0 && merged[n-1].representative.Equal(b.representative) {
			merged[n-1] = &bucket{
				sum:            merged[n-1].sum + b.sum,
				count:          merged[n-1].count + b.count,
				representative: b.representative,
			}
			continue
		}
		merged = append(merged, b)
	}

	out := make(types.Series, len(merged))
	for i, b := range merged {
		out[i] = types.Point{Timestamp: b.representative, Value: b.sum / float64(b.count)}
	}
	return out
}

func ruleFor(avg types.AveragingPreset) (bucketRule, error) {
	if avg == types.Average1W {
		return weeklyRule(), nil
	}

	months, err := avg.IntervalMonths()
	if err != nil {
		return bucketRule{}, err
	}
	switch {
	case months <= 0:
		return bucketRule{}, fmt.Errorf("averaging preset %q has no bucket width", avg)
	case months < 12:
		return monthlyRule(months), nil
	default:
		return yearlyRule(months / 12), nil
	}
}

// weeklyRule buckets by (year, zero-based day of year / 7). The representative is
// the Monday on or before the bucket's first day plus three and a half days.
func weeklyRule() bucketRule {
	return bucketRule{
		key: func(t time.Time) periodKey {
			return periodKey{year: t.Year(), index: (t.YearDay() - 1) / 7}
		},
		representative: func(k periodKey) time.Time {
			start := time.Date(k.year, time.January, 1+7*k.index, 0, 0, 0, 0, time.UTC)
			return isoWeekStart(start).Add(3*day + 12*time.Hour)
		},
	}
}

// monthlyRule buckets by (year, zero-based month / interval). The representative
// is the 15th of the bucket's middle month.
func monthlyRule(interval int) bucketRule {
	return bucketRule{
		key: func(t time.Time) periodKey {
			return periodKey{year: t.Year(), index: (int(t.Month()) - 1) / interval}
		},
		representative: func(k periodKey) time.Time {
			middle := k.index*interval + interval/2
			return time.Date(k.year, time.Month(middle+1), 15, 0, 0, 0, 0, time.UTC)
		},
	}
}

// yearlyRule buckets by floor(year / yearsPerBucket) * yearsPerBucket on the
// absolute calendar year, so the first bucket of a series may be partial. The
// representative is July 1 of the bucket's middle year.
func yearlyRule(yearsPerBucket int) bucketRule {
	return bucketRule{
		key: func(t time.Time) periodKey {
			return periodKey{year: floorDiv(t.Year(), yearsPerBucket) * yearsPerBucket}
		},
		representative: func(k periodKey) time.Time {
			return time.Date(k.year+yearsPerBucket/2, time.July, 1, 0, 0, 0, 0, time.UTC)
		},
	}
}

// isoWeekStart returns the Monday on or before t
func isoWeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
