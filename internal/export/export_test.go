package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/wxreport/internal/types"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return rows
}

func newExporter() *TableExporter {
	return NewTableExporter(2, zap.NewNop().Sugar(), nil)
}

func TestWriteParameterTableUnionsTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rainfall.csv")
	data := types.StationSeries{
		"A": {{Timestamp: day(2024, 1, 1), Value: 1}, {Timestamp: day(2024, 1, 3), Value: 3.14159}},
		"B": {{Timestamp: day(2024, 1, 2), Value: 2}, {Timestamp: day(2024, 1, 3), Value: 0}},
	}

	if err := newExporter().WriteParameterTable(path, []string{"A", "B", "C"}, data); err != nil {
		t.Fatalf("WriteParameterTable: %v", err)
	}

	want := [][]string{
		{"Date", "A", "B", "C"},
		{"2024-01-01", "1.00", "", ""},
		{"2024-01-02", "", "2.00", ""},
		{"2024-01-03", "3.14", "0.00", ""},
	}
	got := readCSV(t, path)
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if strings.Join(got[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStationNamesWithDelimiterAreQuoted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "humidity.csv")
	station := "Springfield, North"
	data := types.StationSeries{station: {{Timestamp: day(2024, 5, 1), Value: 55}}}

	if err := newExporter().WriteParameterTable(path, []string{station}, data); err != nil {
		t.Fatalf("WriteParameterTable: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"Springfield, North"`) {
		t.Errorf("expected the station name to be quoted, got %q", raw)
	}
	if rows := readCSV(t, path); rows[0][1] != station {
		t.Errorf("header round trip = %q, want %q", rows[0][1], station)
	}
}

func TestExportCombinedRowCount(t *testing.T) {
	dir := t.TempDir()
	req := types.RequestSpec{
		Stations:   []string{"A", "B"},
		Parameters: []types.ParameterKey{types.Rainfall, types.TemperatureMax, types.Sunshine},
		Tables:     true,
	}
	data := types.SeriesMap{
		types.Rainfall: {
			"A": {{Timestamp: day(2024, 1, 1), Value: 1}, {Timestamp: day(2024, 1, 2), Value: 2}},
			"B": {{Timestamp: day(2024, 1, 1), Value: 5}},
		},
		types.TemperatureMax: {
			"A": {},
			"B": {{Timestamp: day(2024, 1, 1), Value: 30}, {Timestamp: day(2024, 1, 2), Value: 31}, {Timestamp: day(2024, 1, 3), Value: 29.5}},
		},
		types.Sunshine: {"A": {}, "B": {}},
	}

	artifacts := newExporter().Export(context.Background(), dir, data, req)

	if len(artifacts) != 3 {
		t.Fatalf("expected 3 tables, got %d: %+v", len(artifacts), artifacts)
	}
	if artifacts[0].Parameter != types.Rainfall || artifacts[1].Parameter != types.TemperatureMax || artifacts[2].Parameter != "" {
		t.Errorf("unexpected table order %+v", artifacts)
	}
	if _, err := os.Stat(ParameterPath(dir, types.Sunshine)); !os.IsNotExist(err) {
		t.Errorf("expected no table for a parameter without data")
	}

	rows := readCSV(t, filepath.Join(dir, CombinedFileName))
	if got, want := len(rows)-1, data.PointCount(); got != want {
		t.Errorf("combined table has %d data rows, want %d", got, want)
	}
	if strings.Join(rows[0], ",") != "Date,Parameter,Station,Value,Unit" {
		t.Errorf("unexpected header %v", rows[0])
	}
	first := rows[1]
	if first[1] != "Rainfall" || first[2] != "A" || first[4] != "mm" {
		t.Errorf("unexpected first row %v", first)
	}
	last := rows[len(rows)-1]
	if last[1] != "Maximum Temperature" || last[2] != "B" || last[3] != "29.50" {
		t.Errorf("unexpected last row %v", last)
	}
}

func TestExportWithoutPointsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	req := types.RequestSpec{Stations: []string{"A"}, Parameters: []types.ParameterKey{types.Rainfall}}
	data := types.SeriesMap{types.Rainfall: {"A": {}}}

	if artifacts := newExporter().Export(context.Background(), dir, data, req); len(artifacts) != 0 {
		t.Errorf("expected no tables, got %+v", artifacts)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected an empty directory, found %d entries", len(entries))
	}
}

func TestDateFormatter(t *testing.T) {
	tests := []struct {
		name   string
		stamps []time.Time
		want   string
	}{
		{name: "midnights", stamps: []time.Time{day(2024, 2, 15)}, want: "2024-02-15"},
		{name: "resampled timestamps", stamps: []time.Time{day(2024, 2, 15), day(2024, 1, 4).Add(12 * time.Hour)}, want: "2024-02-15T00:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dateFormatter(tt.stamps)(tt.stamps[0]); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportMissingDirectoryFailsEachTable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	req := types.RequestSpec{Stations: []string{"A"}, Parameters: []types.ParameterKey{types.Rainfall}}
	data := types.SeriesMap{types.Rainfall: {"A": {{Timestamp: day(2024, 1, 1), Value: 1}}}}

	if artifacts := newExporter().Export(context.Background(), dir, data, req); len(artifacts) != 0 {
		t.Errorf("expected failed tables to be left out, got %+v", artifacts)
	}
}
