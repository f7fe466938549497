// Package export writes report series as CSV tables.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chrissnell/wxreport/internal/metrics"
	"github.com/chrissnell/wxreport/internal/types"
)

// CombinedFileName is the long-format table holding every parameter
const CombinedFileName = "combined.csv"

// TableExporter writes the per-parameter and combined tables of a job
type TableExporter struct {
	precision int
	logger    *zap.SugaredLogger
	metrics   *metrics.Recorder
}

// NewTableExporter creates an exporter that formats values with precision decimals
func NewTableExporter(precision int, logger *zap.SugaredLogger, rec *metrics.Recorder) *TableExporter {
	if precision < 0 {
		precision = 0
	}
	return &TableExporter{
		precision: precision,
		logger:    logger,
		metrics:   rec,
	}
}

// ParameterPath is where the table for key is written inside dir
func ParameterPath(dir string, key types.ParameterKey) string {
	return filepath.Join(dir, fmt.Sprintf("%s.csv", key))
}

type writeJob struct {
	parameter types.ParameterKey
	path      string
	write     func(path string) error
}

// Export writes one table per parameter with data plus the combined table. Tables are
// written concurrently; a table that fails is logged and left out of the result.
func (e *TableExporter) Export(ctx context.Context, dir string, data types.SeriesMap, req types.RequestSpec) []types.Artifact {
	var jobs []writeJob
	for _, key := range req.Parameters {
		stations := data[key]
		if len(stations.NonEmpty()) == 0 {
			e.logger.Debugw("skipping table without data", "parameter", key)
			continue
		}
		jobs = append(jobs, writeJob{
			parameter: key,
			path:      ParameterPath(dir, key),
			write: func(path string) error {
				return e.WriteParameterTable(path, req.Stations, stations)
			},
		})
	}
	if data.PointCount() > 0 {
		jobs = append(jobs, writeJob{
			path: filepath.Join(dir, CombinedFileName),
			write: func(path string) error {
				return e.WriteCombinedTable(path, req, data)
			},
		})
	}

	written := make([]bool, len(jobs))
	var g errgroup.Group
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				e.fail(job, err)
				return nil
			}
			if err := job.write(job.path); err != nil {
				e.fail(job, err)
				return nil
			}
			e.metrics.Exported(true)
			written[i] = true
			return nil
		})
	}
	_ = g.Wait()

	var artifacts []types.Artifact
	for i, job := range jobs {
		if written[i] {
			artifacts = append(artifacts, types.Artifact{Kind: types.ArtifactTable, Parameter: job.parameter, Path: job.path})
		}
	}
	return artifacts
}

func (e *TableExporter) fail(job writeJob, err error) {
	e.metrics.Exported(false)
	e.logger.Errorw("table export failed", "parameter", job.parameter, "path", job.path, "error", err)
	if rmErr := os.Remove(job.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		e.logger.Warnw("removing partial table", "path", job.path, "error", rmErr)
	}
}

// WriteParameterTable writes a wide table with one column per station. Rows are the
// union of the stations' timestamps; a station without a point at a row's timestamp
// gets an empty cell.
func (e *TableExporter) WriteParameterTable(path string, stations []string, data types.StationSeries) error {
	var stamps []time.Time
	seen := make(map[int64]bool)
	cells := make(map[string]map[int64]float64, len(stations))
	for _, station := range stations {
		byTime := make(map[int64]float64, len(data[station]))
		for _, p := range data[station] {
			k := p.Timestamp.UnixNano()
			byTime[k] = p.Value
			if !seen[k] {
				seen[k] = true
				stamps = append(stamps, p.Timestamp)
			}
		}
		cells[station] = byTime
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
	formatDate := dateFormatter(stamps)

	return writeCSV(path, func(w *csv.Writer) error {
		header := append([]string{"Date"}, stations...)
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}

		record := make([]string, len(header))
		for _, ts := range stamps {
			record[0] = formatDate(ts)
			for i, station := range stations {
				record[i+1] = ""
				if v, ok := cells[station][ts.UnixNano()]; ok {
					record[i+1] = e.formatValue(v)
				}
			}
			if err := w.Write(record); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}
		return nil
	})
}

// WriteCombinedTable writes one row per parameter, station and point, in that order
func (e *TableExporter) WriteCombinedTable(path string, req types.RequestSpec, data types.SeriesMap) error {
	var all []time.Time
	for _, stations := range data {
		for _, s := range stations {
			for _, p := range s {
				all = append(all, p.Timestamp)
			}
		}
	}
	formatDate := dateFormatter(all)

	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"Date", "Parameter", "Station", "Value", "Unit"}); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}

		for _, key := range req.Parameters {
			param, err := types.LookupParameter(key)
			if err != nil {
				return err
			}
			for _, station := range req.Stations {
				for _, p := range data[key][station] {
					record := []string{formatDate(p.Timestamp), param.Label, station, e.formatValue(p.Value), param.Unit}
					if err := w.Write(record); err != nil {
						return fmt.Errorf("failed to write record: %w", err)
					}
				}
			}
		}
		return nil
	})
}

func (e *TableExporter) formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', e.precision, 64)
}

func writeCSV(path string, fill func(w *csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := fill(writer); err != nil {
		return err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}
	return file.Close()
}

// dateFormatter uses calendar dates when every timestamp is a UTC midnight and RFC 3339 otherwise
func dateFormatter(stamps []time.Time) func(time.Time) string {
	for _, ts := range stamps {
		u := ts.UTC()
		if u.Hour() != 0 || u.Minute() != 0 || u.Second() != 0 || u.Nanosecond() != 0 {
			return func(t time.Time) string { return t.UTC().Format(time.RFC3339) }
		}
	}
	return func(t time.Time) string { return t.UTC().Format(types.DateLayout) }
}
