package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/wxreport/internal/charts"
	"github.com/chrissnell/wxreport/internal/export"
	"github.com/chrissnell/wxreport/internal/fetcher"
	"github.com/chrissnell/wxreport/internal/storage"
	"github.com/chrissnell/wxreport/internal/types"
)

func dailyRecords(station string, startYear, endYear int, value float64) []types.RawMonthlyRecord {
	var recs []types.RawMonthlyRecord
	for y := startYear; y <= endYear; y++ {
		for m := 1; m <= 12; m++ {
			rec := types.RawMonthlyRecord{Station: station, Year: y, Month: m}
			for d := range rec.Days {
				v := value
				rec.Days[d] = &v
			}
			recs = append(recs, rec)
		}
	}
	return recs
}

type blockingRenderer struct{}

func (blockingRenderer) Open(ctx context.Context) (charts.Session, error) {
	return blockingSession{}, nil
}

type blockingSession struct{}

func (blockingSession) Render(ctx context.Context, spec charts.Spec, path string) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingSession) Close() error { return nil }

func newPipeline(t *testing.T, store storage.RecordStore, r charts.Renderer, opts Options) *Pipeline {
	t.Helper()
	logger := zap.NewNop().Sugar()
	if opts.WorkspaceRoot == "" {
		opts.WorkspaceRoot = t.TempDir()
	}
	return NewPipeline(
		fetcher.New(store, 4, logger, nil),
		charts.NewGenerator(r, charts.Options{Width: 640, Height: 320, RenderTimeout: 5 * time.Second}, logger, nil),
		export.NewTableExporter(2, logger, nil),
		opts,
		logger,
		nil,
	)
}

func rainfallRequest() types.RequestSpec {
	return types.RequestSpec{
		Stations:   []string{"A", "B"},
		Parameters: []types.ParameterKey{types.Rainfall},
		RangeMode:  types.RangeModePreset,
		Preset:     types.Range1Y,
		Images:     true,
		Tables:     true,
	}
}

func TestRunOneYearWithOneEmptyStation(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Add(types.Rainfall, dailyRecords("A", 2022, 2023, 1.5)...)
	p := newPipeline(t, store, charts.NewStaticRenderer(), Options{})

	job, err := p.Run(context.Background(), rainfallRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer p.Cleanup(job.Workspace)

	m := job.Manifest
	if job.State() != StateDone {
		t.Errorf("expected Done, got %s", job.State())
	}
	// [2022-12-31, 2023-12-31]
	if m.Stats.TotalPoints != 366 || m.Stats.PointsByParameter[types.Rainfall] != 366 {
		t.Errorf("unexpected point counts %+v", m.Stats)
	}
	if m.Stats.ParametersWithData != 1 {
		t.Errorf("expected 1 parameter with data, got %d", m.Stats.ParametersWithData)
	}
	if mean := m.Stats.Means[types.Rainfall]["A"]; math.Abs(mean-1.5) > 1e-9 {
		t.Errorf("expected mean 1.5 for A, got %v", mean)
	}
	if _, ok := m.Stats.Means[types.Rainfall]["B"]; ok {
		t.Error("expected no mean for the empty station")
	}
	if m.Stats.ImagesGenerated != 1 || len(m.Images) != 1 {
		t.Errorf("expected 1 image, got %d", m.Stats.ImagesGenerated)
	}
	if m.Stats.TablesGenerated != 2 || len(m.Tables) != 2 {
		t.Errorf("expected 2 tables, got %d", m.Stats.TablesGenerated)
	}

	wantStates := []State{StateCreated, StateFetching, StateRendering, StateExporting, StateDone}
	if len(m.States) != len(wantStates) {
		t.Fatalf("states = %v, want %v", m.States, wantStates)
	}
	for i := range wantStates {
		if m.States[i] != wantStates[i] {
			t.Errorf("states = %v, want %v", m.States, wantStates)
			break
		}
	}

	f, err := os.Open(filepath.Join(job.Workspace, export.CombinedFileName))
	if err != nil {
		t.Fatalf("opening combined table: %v", err)
	}
	rows, err := csv.NewReader(f).ReadAll()
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows)-1 != m.Stats.TotalPoints {
		t.Errorf("combined table has %d rows, want %d", len(rows)-1, m.Stats.TotalPoints)
	}

	raw, err := os.ReadFile(filepath.Join(job.Workspace, ManifestFileName))
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	var decoded Manifest
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decoding manifest: %v", err)
	}
	if decoded.JobID != job.ID || decoded.Stats.TotalPoints != 366 {
		t.Errorf("unexpected manifest on disk %+v", decoded)
	}
}

func TestRunNoData(t *testing.T) {
	p := newPipeline(t, storage.NewMemoryStore(), charts.NewStaticRenderer(), Options{})

	job, err := p.Run(context.Background(), rainfallRequest())
	if !errors.Is(err, ErrNoDataAvailable) {
		t.Fatalf("expected ErrNoDataAvailable, got %v", err)
	}
	if job == nil || job.Workspace == "" {
		t.Fatal("expected a job with a workspace to clean up")
	}
	if job.State() != StateFailed {
		t.Errorf("expected Failed, got %s", job.State())
	}
	if len(job.Manifest.Artifacts) != 0 {
		t.Errorf("expected no artifacts, got %+v", job.Manifest.Artifacts)
	}
	if err := p.Cleanup(job.Workspace); err != nil {
		t.Errorf("Cleanup: %v", err)
	}
}

func TestRunInvalidRequest(t *testing.T) {
	p := newPipeline(t, storage.NewMemoryStore(), charts.NewStaticRenderer(), Options{})

	tests := []struct {
		name string
		req  types.RequestSpec
	}{
		{name: "no stations", req: types.RequestSpec{Parameters: []types.ParameterKey{types.Rainfall}, RangeMode: types.RangeModePreset, Preset: types.Range1Y}},
		{name: "no parameters", req: types.RequestSpec{Stations: []string{"A"}, RangeMode: types.RangeModePreset, Preset: types.Range1Y}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := p.Run(context.Background(), tt.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
			if job != nil {
				t.Errorf("expected no job, got %v", job)
			}
		})
	}
}

func TestRunWorkspaceError(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(root, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := storage.NewMemoryStore()
	store.Add(types.Rainfall, dailyRecords("A", 2023, 2023, 1)...)
	p := newPipeline(t, store, charts.NewStaticRenderer(), Options{WorkspaceRoot: root})

	job, err := p.Run(context.Background(), rainfallRequest())
	var wsErr *WorkspaceError
	if !errors.As(err, &wsErr) || wsErr.Op != "create" {
		t.Fatalf("expected a create WorkspaceError, got %v", err)
	}
	if job.State() != StateFailed || job.Workspace != "" {
		t.Errorf("unexpected job after workspace failure: %v, workspace %q", job, job.Workspace)
	}
}

func TestCleanupIsIdempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Add(types.Rainfall, dailyRecords("A", 2023, 2023, 1)...)
	p := newPipeline(t, store, charts.NewStaticRenderer(), Options{})

	req := rainfallRequest()
	req.Images = false
	job, err := p.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if err := p.Cleanup(job.Workspace); err != nil {
		t.Fatalf("first Cleanup: %v", err)
	}
	if _, err := os.Stat(job.Workspace); !os.IsNotExist(err) {
		t.Errorf("expected workspace to be removed, stat err=%v", err)
	}
	if err := p.Cleanup(job.Workspace); err != nil {
		t.Errorf("second Cleanup: %v", err)
	}
	if err := p.Cleanup(""); err != nil {
		t.Errorf("Cleanup of empty path: %v", err)
	}
}

func TestCleanupRefusesForeignDirectories(t *testing.T) {
	p := newPipeline(t, storage.NewMemoryStore(), charts.NewStaticRenderer(), Options{})
	dir := t.TempDir()

	var wsErr *WorkspaceError
	if err := p.Cleanup(dir); !errors.As(err, &wsErr) {
		t.Errorf("expected a WorkspaceError, got %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory should still exist: %v", err)
	}
}

func TestRunTimeoutStillExportsTables(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Add(types.Rainfall, dailyRecords("A", 2023, 2023, 2)...)
	p := newPipeline(t, store, blockingRenderer{}, Options{JobTimeout: 300 * time.Millisecond})

	job, err := p.Run(context.Background(), rainfallRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer p.Cleanup(job.Workspace)

	if job.Manifest.Stats.ImagesGenerated != 0 {
		t.Errorf("expected the abandoned chart to be skipped, got %d images", job.Manifest.Stats.ImagesGenerated)
	}
	if job.Manifest.Stats.TablesGenerated != 2 {
		t.Errorf("expected tables despite the timeout, got %d", job.Manifest.Stats.TablesGenerated)
	}
}
