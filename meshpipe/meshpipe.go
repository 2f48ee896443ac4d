// Package meshpipe analyzes uploaded 3D mesh files and, for oversized
// uploads, decimates them best-effort before analysis.
//
// The pipeline has two paths, selected once per file by size:
//   - small files go straight to the analyzer;
//   - files above the optimization threshold are decimated through the
//     geometry backend chain first, and fall back to unoptimized
//     analysis when every backend attempt fails.
//
// Usage:
//
//	pipe := meshpipe.New(meshpipe.Config{})
//	report, err := pipe.Process(ctx, "part.stl", file)
//	fmt.Println(report.VolumeCm3, report.MassGrams)
package meshpipe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meshforge/printquote/geom"
)

// Pipeline is the mesh analysis and optimization engine. One Pipeline
// serves many requests; all per-request state lives in scratch files
// owned by a single call.
type Pipeline struct {
	cfg     Config
	adapter *geom.Adapter
	logger  *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:     cfg,
		adapter: cfg.Adapter,
		logger:  cfg.Logger,
	}
}

// Process runs the full pipeline on one upload: spool, optional
// size-triggered optimization, analysis. The returned Report carries
// optimization metadata only when the upload was actually decimated.
// Every scratch artifact is removed before Process returns.
func (p *Pipeline) Process(ctx context.Context, filename string, r io.Reader) (*Report, error) {
	format, err := geom.DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	dir, path, size, err := p.spool(filename, r)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !NeedsOptimization(size, p.cfg.OptimizeThreshold) {
		a, err := p.Analyze(ctx, path, format)
		if err != nil {
			return nil, err
		}
		a.Filename = filename
		return &Report{Analysis: *a}, nil
	}

	p.logger.Info("large upload, attempting optimization",
		"filename", filename, "size_bytes", size)

	outcome, optPath, release := p.Optimize(ctx, path, format)
	defer release()

	if outcome.WasOptimized {
		a, err := p.Analyze(ctx, optPath, format)
		if err == nil {
			a.Filename = filename
			return &Report{Analysis: *a, OptimizationMeta: metaFrom(outcome)}, nil
		}
		p.logger.Warn("optimized mesh failed analysis, using original bytes",
			"filename", filename, "error", err)
	}

	// Designed fallback: the original bytes, no optimization keys.
	a, err := p.Analyze(ctx, path, format)
	if err != nil {
		return nil, err
	}
	a.Filename = filename
	return &Report{Analysis: *a}, nil
}

// AnalyzeReader measures one upload without the optimization path.
func (p *Pipeline) AnalyzeReader(ctx context.Context, filename string, r io.Reader) (*Analysis, error) {
	format, err := geom.DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	dir, path, _, err := p.spool(filename, r)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	a, err := p.Analyze(ctx, path, format)
	if err != nil {
		return nil, err
	}
	a.Filename = filename
	return a, nil
}

// spool copies the upload into a per-request scratch directory. The
// caller removes the directory when done.
func (p *Pipeline) spool(filename string, r io.Reader) (dir, path string, size int64, err error) {
	dir, err = os.MkdirTemp(p.cfg.ScratchDir, "meshpipe-")
	if err != nil {
		return "", "", 0, fmt.Errorf("meshpipe: scratch dir: %w", err)
	}
	path = filepath.Join(dir, "original_"+filepath.Base(filename))
	f, err := os.Create(path)
	if err != nil {
		os.RemoveAll(dir)
		return "", "", 0, fmt.Errorf("meshpipe: spool: %w", err)
	}
	size, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.RemoveAll(dir)
		return "", "", 0, fmt.Errorf("meshpipe: spool: %w", err)
	}
	return dir, path, size, nil
}
