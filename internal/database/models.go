package database

import (
	"database/sql"

	"github.com/chrissnell/wxreport/internal/types"
)

// MonthlyRow is one row of a per-parameter monthly table
type MonthlyRow struct {
	Station string          `gorm:"column:station;primaryKey"`
	Year    int             `gorm:"column:year;primaryKey"`
	Month   int             `gorm:"column:month;primaryKey"`
	Day1    sql.NullFloat64 `gorm:"column:day1"`
	Day2    sql.NullFloat64 `gorm:"column:day2"`
	Day3    sql.NullFloat64 `gorm:"column:day3"`
	Day4    sql.NullFloat64 `gorm:"column:day4"`
	Day5    sql.NullFloat64 `gorm:"column:day5"`
	Day6    sql.NullFloat64 `gorm:"column:day6"`
	Day7    sql.NullFloat64 `gorm:"column:day7"`
	Day8    sql.NullFloat64 `gorm:"column:day8"`
	Day9    sql.NullFloat64 `gorm:"column:day9"`
	Day10   sql.NullFloat64 `gorm:"column:day10"`
	Day11   sql.NullFloat64 `gorm:"column:day11"`
	Day12   sql.NullFloat64 `gorm:"column:day12"`
	Day13   sql.NullFloat64 `gorm:"column:day13"`
	Day14   sql.NullFloat64 `gorm:"column:day14"`
	Day15   sql.NullFloat64 `gorm:"column:day15"`
	Day16   sql.NullFloat64 `gorm:"column:day16"`
	Day17   sql.NullFloat64 `gorm:"column:day17"`
	Day18   sql.NullFloat64 `gorm:"column:day18"`
	Day19   sql.NullFloat64 `gorm:"column:day19"`
	Day20   sql.NullFloat64 `gorm:"column:day20"`
	Day21   sql.NullFloat64 `gorm:"column:day21"`
	Day22   sql.NullFloat64 `gorm:"column:day22"`
	Day23   sql.NullFloat64 `gorm:"column:day23"`
	Day24   sql.NullFloat64 `gorm:"column:day24"`
	Day25   sql.NullFloat64 `gorm:"column:day25"`
	Day26   sql.NullFloat64 `gorm:"column:day26"`
	Day27   sql.NullFloat64 `gorm:"column:day27"`
	Day28   sql.NullFloat64 `gorm:"column:day28"`
	Day29   sql.NullFloat64 `gorm:"column:day29"`
	Day30   sql.NullFloat64 `gorm:"column:day30"`
	Day31   sql.NullFloat64 `gorm:"column:day31"`
}

// Record converts the row into the store-neutral record type
func (r MonthlyRow) Record() types.RawMonthlyRecord {
	days := [types.DaysPerRecord]sql.NullFloat64{
		r.Day1, r.Day2, r.Day3, r.Day4, r.Day5, r.Day6, r.Day7, r.Day8,
		r.Day9, r.Day10, r.Day11, r.Day12, r.Day13, r.Day14, r.Day15, r.Day16,
		r.Day17, r.Day18, r.Day19, r.Day20, r.Day21, r.Day22, r.Day23, r.Day24,
		r.Day25, r.Day26, r.Day27, r.Day28, r.Day29, r.Day30, r.Day31,
	}
	return RecordFromNulls(r.Station, r.Year, r.Month, days[:])
}

// RecordFromNulls builds a record from scanned nullable day columns
func RecordFromNulls(station string, year, month int, days []sql.NullFloat64) types.RawMonthlyRecord {
	rec := types.RawMonthlyRecord{Station: station, Year: year, Month: month}
	for i := 0; i < len(days) && i < types.DaysPerRecord; i++ {
		if days[i].Valid {
			v := days[i].Float64
			rec.Days[i] = &v
		}
	}
	return rec
}
