package types

// ArtifactKind tags a generated file
type ArtifactKind string

const (
	ArtifactChart ArtifactKind = "Chart"
	ArtifactTable ArtifactKind = "Table"
)

// Artifact is one file produced by a report job. Parameter is empty for the combined table.
type Artifact struct {
	Kind      ArtifactKind `json:"kind"`
	Parameter ParameterKey `json:"parameter,omitempty"`
	Path      string       `json:"path"`
}
