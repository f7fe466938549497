package database

import (
	"fmt"
	"strings"

	"github.com/chrissnell/wxreport/internal/types"
)

// DayColumns returns day1..day31
func DayColumns() []string {
	cols := make([]string, types.DaysPerRecord)
	for i := range cols {
		cols[i] = fmt.Sprintf("day%d", i+1)
	}
	return cols
}

// MonthlySelectSQL builds the query returning one station's rows of a monthly
// table. placeholder is the dialect's first bind parameter ("?" or "$1").
// table must come from the parameter catalogue, never from user input.
func MonthlySelectSQL(table, placeholder string) string {
	return fmt.Sprintf(
		"SELECT station, year, month, %s FROM %s WHERE station = %s ORDER BY year, month",
		strings.Join(DayColumns(), ", "), table, placeholder,
	)
}
