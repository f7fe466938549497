package database

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestMonthlyRowRecord(t *testing.T) {
	row := MonthlyRow{
		Station: "A",
		Year:    2024,
		Month:   2,
		Day1:    sql.NullFloat64{Float64: 1.5, Valid: true},
		Day29:   sql.NullFloat64{Float64: 0, Valid: true},
		Day31:   sql.NullFloat64{Float64: 9, Valid: true},
	}

	rec := row.Record()
	if rec.Station != "A" || rec.Year != 2024 || rec.Month != 2 {
		t.Errorf("unexpected record header %+v", rec)
	}

	tests := []struct {
		day  int
		want *float64
	}{
		{day: 1, want: ptr(1.5)},
		{day: 2, want: nil},
		{day: 29, want: ptr(0)},
		{day: 31, want: ptr(9)},
	}
	for _, tt := range tests {
		got := rec.Days[tt.day-1]
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("day %d: expected no value, got %v", tt.day, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("day %d: expected %v, got %v", tt.day, *tt.want, got)
		}
	}
}

func TestMonthlySelectSQL(t *testing.T) {
	q := MonthlySelectSQL("rainfall_monthly", "$1")

	if !strings.HasPrefix(q, "SELECT station, year, month, day1, day2,") {
		t.Errorf("unexpected column list in %q", q)
	}
	if !strings.Contains(q, "day31 FROM rainfall_monthly WHERE station = $1 ORDER BY year, month") {
		t.Errorf("unexpected query %q", q)
	}
	if n := len(DayColumns()); n != 31 {
		t.Errorf("expected 31 day columns, got %d", n)
	}
}

func TestOpenSQLRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenSQL(context.Background(), "mysql", "dsn"); err == nil {
		t.Error("expected an error for an unsupported driver")
	}
}

func ptr(v float64) *float64 { return &v }
