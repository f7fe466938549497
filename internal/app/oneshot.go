package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chrissnell/wxreport/internal/report"
	"github.com/chrissnell/wxreport/internal/types"
)

// RunOnce runs a single report job and copies its artifacts and manifest into outDir.
// The returned manifest refers to the copies.
func (a *App) RunOnce(ctx context.Context, svc *Services, req types.RequestSpec, outDir string) (*report.Manifest, error) {
	job, err := svc.Pipeline.Run(ctx, req)
	if job != nil {
		defer func() {
			if cerr := svc.Pipeline.Cleanup(job.Workspace); cerr != nil {
				a.logger.Errorw("workspace cleanup failed", "job", job.ID, "error", cerr)
			}
		}()
	}
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	manifest := *job.Manifest
	manifest.Artifacts = make([]types.Artifact, 0, len(job.Manifest.Artifacts))
	manifest.Images = []string{}
	manifest.Tables = []string{}

	for _, art := range job.Manifest.Artifacts {
		dst := filepath.Join(outDir, filepath.Base(art.Path))
		if err := copyFile(art.Path, dst); err != nil {
			return nil, err
		}
		art.Path = dst
		manifest.Artifacts = append(manifest.Artifacts, art)
		switch art.Kind {
		case types.ArtifactChart:
			manifest.Images = append(manifest.Images, dst)
		case types.ArtifactTable:
			manifest.Tables = append(manifest.Tables, dst)
		}
	}

	if err := manifest.WriteJSON(filepath.Join(outDir, report.ManifestFileName)); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
