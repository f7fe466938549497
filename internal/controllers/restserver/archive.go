package restserver

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chrissnell/wxreport/internal/report"
	"github.com/chrissnell/wxreport/internal/types"
)

// writeArchive zips every artifact of job plus a manifest whose paths are relative
// to the archive root
func writeArchive(w io.Writer, job *report.Job) error {
	zw := zip.NewWriter(w)

	manifest := *job.Manifest
	manifest.Artifacts = make([]types.Artifact, 0, len(job.Manifest.Artifacts))
	manifest.Images = []string{}
	manifest.Tables = []string{}

	for _, a := range job.Manifest.Artifacts {
		name := filepath.Base(a.Path)
		if err := addFile(zw, name, a.Path); err != nil {
			zw.Close()
			return err
		}

		a.Path = name
		manifest.Artifacts = append(manifest.Artifacts, a)
		switch a.Kind {
		case types.ArtifactChart:
			manifest.Images = append(manifest.Images, name)
		case types.ArtifactTable:
			manifest.Tables = append(manifest.Tables, name)
		}
	}

	mw, err := zw.Create(report.ManifestFileName)
	if err != nil {
		zw.Close()
		return fmt.Errorf("adding manifest: %w", err)
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		zw.Close()
		return fmt.Errorf("encoding manifest: %w", err)
	}

	return zw.Close()
}

func addFile(zw *zip.Writer, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening artifact %s: %w", name, err)
	}
	defer f.Close()

	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("adding artifact %s: %w", name, err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return fmt.Errorf("copying artifact %s: %w", name, err)
	}
	return nil
}
