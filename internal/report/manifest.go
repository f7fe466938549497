package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/wxreport/internal/types"
)

// ManifestFileName is written into the workspace next to the artifacts
const ManifestFileName = "manifest.json"

// State is a step of the job state machine
type State string

const (
	StateCreated   State = "Created"
	StateFetching  State = "Fetching"
	StateRendering State = "Rendering"
	StateExporting State = "Exporting"
	StateDone      State = "Done"
	StateFailed    State = "Failed"
)

// Stats summarises a job so callers can tell full, partial and empty results apart
type Stats struct {
	TotalPoints        int                                       `json:"totalPoints"`
	ParametersWithData int                                       `json:"parametersWithData"`
	ImagesGenerated    int                                       `json:"imagesGenerated"`
	TablesGenerated    int                                       `json:"tablesGenerated"`
	PairFailures       int                                       `json:"pairFailures"`
	PointsByParameter  map[types.ParameterKey]int                `json:"pointsByParameter"`
	Means              map[types.ParameterKey]map[string]float64 `json:"means"`
}

// Manifest lists the artifacts of a finished job
type Manifest struct {
	JobID     string           `json:"jobId"`
	Images    []string         `json:"images"`
	Tables    []string         `json:"tables"`
	Artifacts []types.Artifact `json:"artifacts"`
	Stats     Stats            `json:"stats"`
	States    []State          `json:"states"`
	StartedAt time.Time        `json:"startedAt"`
	Elapsed   string           `json:"elapsed"`
}

func newManifest(jobID string, started time.Time) *Manifest {
	return &Manifest{
		JobID:     jobID,
		Images:    []string{},
		Tables:    []string{},
		Artifacts: []types.Artifact{},
		StartedAt: started,
		Stats: Stats{
			PointsByParameter: map[types.ParameterKey]int{},
			Means:             map[types.ParameterKey]map[string]float64{},
		},
	}
}

func (m *Manifest) addArtifacts(artifacts []types.Artifact) {
	for _, a := range artifacts {
		m.Artifacts = append(m.Artifacts, a)
		switch a.Kind {
		case types.ArtifactChart:
			m.Images = append(m.Images, a.Path)
			m.Stats.ImagesGenerated++
		case types.ArtifactTable:
			m.Tables = append(m.Tables, a.Path)
			m.Stats.TablesGenerated++
		}
	}
}

// summarise fills the point counts and per-series means
func (m *Manifest) summarise(data types.SeriesMap, hasData map[types.ParameterKey]bool, failures int) {
	m.Stats.TotalPoints = data.PointCount()
	m.Stats.PairFailures = failures
	for key, stations := range data {
		if hasData[key] {
			m.Stats.ParametersWithData++
		}
		count := 0
		means := make(map[string]float64)
		for station, s := range stations {
			count += len(s)
			if len(s) > 0 {
				means[station] = stat.Mean(s.Values(), nil)
			}
		}
		m.Stats.PointsByParameter[key] = count
		if len(means) > 0 {
			m.Stats.Means[key] = means
		}
	}
}

// WriteJSON writes the manifest to path
func (m *Manifest) WriteJSON(path string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
