package timeseries

import (
	"testing"
	"time"

	"github.com/chrissnell/wxreport/internal/types"
)

// dailySeries returns one point per day from start through end inclusive
func dailySeries(start, end time.Time) types.Series {
	var s types.Series
	for d, i := start, 0; !d.After(end); d, i = d.AddDate(0, 0, 1), i+1 {
		s = append(s, types.Point{Timestamp: d, Value: float64(i)})
	}
	return s
}

func TestFilterCustom(t *testing.T) {
	s := types.Series{
		{Timestamp: date(2024, time.January, 9).Add(23*time.Hour + 59*time.Minute), Value: 1},
		{Timestamp: date(2024, time.January, 10), Value: 2},
		{Timestamp: date(2024, time.January, 11).Add(12 * time.Hour), Value: 3},
		{Timestamp: date(2024, time.January, 12).Add(23*time.Hour + 59*time.Minute + 59*time.Second), Value: 4},
		{Timestamp: date(2024, time.January, 13), Value: 5},
	}

	tests := []struct {
		name       string
		start, end time.Time
		wantValues []float64
	}{
		{
			name:       "inclusive day bounds",
			start:      date(2024, time.January, 10),
			end:        date(2024, time.January, 12),
			wantValues: []float64{2, 3, 4},
		},
		{
			name:       "time of day on the bounds is ignored",
			start:      date(2024, time.January, 10).Add(15 * time.Hour),
			end:        date(2024, time.January, 12).Add(time.Hour),
			wantValues: []float64{2, 3, 4},
		},
		{
			name:       "single day",
			start:      date(2024, time.January, 13),
			end:        date(2024, time.January, 13),
			wantValues: []float64{5},
		},
		{
			name:       "window outside the data",
			start:      date(2025, time.January, 1),
			end:        date(2025, time.February, 1),
			wantValues: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterCustom(s, tt.start, tt.end)
			if len(got) != len(tt.wantValues) {
				t.Fatalf("expected %d points, got %d", len(tt.wantValues), len(got))
			}
			for i, v := range tt.wantValues {
				if got[i].Value != v {
					t.Errorf("point %d: expected value %v, got %v", i, v, got[i].Value)
				}
			}
		})
	}
}

func TestFilterCustomNeverLeavesWindow(t *testing.T) {
	s := dailySeries(date(2020, time.January, 1), date(2023, time.December, 31))
	start, end := date(2021, time.March, 3), date(2022, time.August, 17)
	lower, upper := start, end.Add(24*time.Hour-time.Millisecond)

	got := FilterCustom(s, start, end)
	if len(got) == 0 {
		t.Fatal("expected points inside the window")
	}
	for _, p := range got {
		if p.Timestamp.Before(lower) || p.Timestamp.After(upper) {
			t.Errorf("point %v outside [%v, %v]", p.Timestamp, lower, upper)
		}
	}
}

func TestFilterPresetAnchorsOnLastPoint(t *testing.T) {
	end := date(2023, time.December, 31)
	s := dailySeries(date(2022, time.January, 1), end)

	got, err := FilterPreset(s, types.Range1Y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	from := end.AddDate(0, 0, -365)
	want := 0
	for _, p := range s {
		if !p.Timestamp.Before(from) && !p.Timestamp.After(end) {
			want++
		}
	}
	if len(got) != want {
		t.Fatalf("expected %d points in [%v, %v], got %d", want, from, end, len(got))
	}
	if !got[0].Timestamp.Equal(from) {
		t.Errorf("expected first point at %v, got %v", from, got[0].Timestamp)
	}
	if !got.Last().Timestamp.Equal(end) {
		t.Errorf("expected last point at %v, got %v", end, got.Last().Timestamp)
	}
}

func TestFilterPreset(t *testing.T) {
	s := dailySeries(date(2010, time.January, 1), date(2012, time.December, 31))

	tests := []struct {
		name    string
		preset  types.RangePreset
		input   types.Series
		want    int
		wantErr bool
	}{
		{name: "one day", preset: types.Range1D, input: s, want: 2},
		{name: "one week", preset: types.Range1W, input: s, want: 8},
		{name: "one month", preset: types.Range1M, input: s, want: 31},
		{name: "all", preset: types.RangeAll, input: s, want: len(s)},
		{name: "window longer than data", preset: types.Range50Y, input: s, want: len(s)},
		{name: "empty input", preset: types.Range1Y, input: types.Series{}, want: 0},
		{name: "unknown preset", preset: "2Q", input: s, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterPreset(tt.input, tt.preset)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d points, got %d", tt.want, len(got))
			}
		})
	}
}

func TestFilterUsesRequestMode(t *testing.T) {
	s := dailySeries(date(2024, time.January, 1), date(2024, time.January, 31))

	custom := types.RequestSpec{RangeMode: types.RangeModeCustom, CustomStart: "2024-01-05", CustomEnd: "2024-01-06"}
	got, err := Filter(s, custom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("custom: expected 2 points, got %d", len(got))
	}

	preset := types.RequestSpec{RangeMode: types.RangeModePreset, Preset: types.Range1W}
	got, err = Filter(s, preset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 8 {
		t.Errorf("preset: expected 8 points, got %d", len(got))
	}
}
