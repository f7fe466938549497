// Package fetcher fans the extract, filter and resample steps out across every
// station and parameter of a report request.
package fetcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chrissnell/wxreport/internal/metrics"
	"github.com/chrissnell/wxreport/internal/storage"
	"github.com/chrissnell/wxreport/internal/timeseries"
	"github.com/chrissnell/wxreport/internal/types"
)

// Result is the outcome of fetching every pair of a request
type Result struct {
	Series   types.SeriesMap
	HasData  map[types.ParameterKey]bool
	Failures int
}

// Fetcher builds series for station/parameter pairs on a bounded worker pool
type Fetcher struct {
	store   storage.RecordStore
	workers int
	logger  *zap.SugaredLogger
	metrics *metrics.Recorder
}

// New creates a Fetcher. workers <= 0 means one worker per pair.
func New(store storage.RecordStore, workers int, logger *zap.SugaredLogger, rec *metrics.Recorder) *Fetcher {
	return &Fetcher{
		store:   store,
		workers: workers,
		logger:  logger,
		metrics: rec,
	}
}

type pair struct {
	parameter types.ParameterKey
	station   string
	series    types.Series
	err       error
}

// Fetch processes every (parameter, station) pair of req. A pair that fails for
// any reason is logged and yields an empty series; Fetch itself never fails.
func (f *Fetcher) Fetch(ctx context.Context, req types.RequestSpec) *Result {
	pairs := make([]pair, 0, len(req.Parameters)*len(req.Stations))
	for _, p := range req.Parameters {
		for _, s := range req.Stations {
			pairs = append(pairs, pair{parameter: p, station: s})
		}
	}

	var g errgroup.Group
	if f.workers > 0 {
		g.SetLimit(f.workers)
	}

	// Each worker writes only its own slot of pairs
	for i := range pairs {
		i := i
		g.Go(func() error {
			pairs[i].series, pairs[i].err = f.fetchPair(ctx, pairs[i].parameter, pairs[i].station, req)
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{
		Series:  make(types.SeriesMap, len(req.Parameters)),
		HasData: make(map[types.ParameterKey]bool, len(req.Parameters)),
	}
	for _, p := range req.Parameters {
		res.Series[p] = make(types.StationSeries, len(req.Stations))
		res.HasData[p] = false
	}

	for _, pr := range pairs {
		if pr.err != nil {
			res.Failures++
			f.metrics.PairFailed(string(pr.parameter))
			f.logger.Warnw("pair fetch failed", "parameter", pr.parameter, "station", pr.station, "error", pr.err)
			pr.series = types.Series{}
		}
		if pr.series == nil {
			pr.series = types.Series{}
		}
		res.Series[pr.parameter][pr.station] = pr.series
		if len(pr.series) > 0 {
			res.HasData[pr.parameter] = true
		}
	}

	f.metrics.PointsFetched(res.Series.PointCount())
	return res
}

func (f *Fetcher) fetchPair(ctx context.Context, key types.ParameterKey, station string, req types.RequestSpec) (s types.Series, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing pair: %v", r)
		}
	}()

	param, err := types.LookupParameter(key)
	if err != nil {
		return nil, err
	}

	records, err := f.store.MonthlyRecords(ctx, param, station)
	if err != nil {
		return nil, fmt.Errorf("fetching records: %w", err)
	}

	series := timeseries.Extract(records)

	filtered, err := timeseries.Filter(series, req)
	if err != nil {
		return nil, fmt.Errorf("filtering: %w", err)
	}

	resampled, err := timeseries.Resample(filtered, req.Averaging)
	if err != nil {
		return nil, fmt.Errorf("resampling: %w", err)
	}

	f.logger.Debugw("pair fetched", "parameter", key, "station", station,
		"records", len(records), "raw", len(series), "filtered", len(filtered), "points", len(resampled))
	return resampled, nil
}
