package meshpipe

import (
	"context"
	"fmt"
	"os"

	"github.com/meshforge/printquote/geom"
)

// NeedsOptimization reports whether a file of the given size must be
// decimated before analysis. The exact boundary (size == threshold)
// does not trigger optimization.
func NeedsOptimization(sizeBytes, thresholdBytes int64) bool {
	return sizeBytes > thresholdBytes
}

// Optimize attempts a best-effort size reduction of the mesh at path:
// load, cleanup passes (duplicate and degenerate faces), decimation to
// the configured face ratio, export. Any failure along the chain is
// absorbed: the outcome then reports WasOptimized=false and the
// returned path is the original one. The release func removes the
// optimized artifact (if any) and must be called once the caller has
// consumed the returned path, on every code path.
func (p *Pipeline) Optimize(ctx context.Context, path string, format geom.Format) (*Optimization, string, func()) {
	release := func() {}

	info, err := os.Stat(path)
	if err != nil {
		p.logger.Warn("optimization skipped, cannot stat spool file", "path", path, "error", err)
		return &Optimization{OriginalSizeBytes: 0, OptimizedSizeBytes: 0}, path, release
	}
	originalSize := info.Size()
	fallback := &Optimization{
		WasOptimized:       false,
		OriginalSizeBytes:  originalSize,
		OptimizedSizeBytes: originalSize,
	}

	if !NeedsOptimization(originalSize, p.cfg.OptimizeThreshold) {
		return fallback, path, release
	}
	if err := ctx.Err(); err != nil {
		return fallback, path, release
	}

	optPath, backend, err := p.decimateToScratch(path, format)
	if err != nil {
		p.logger.Warn("optimization failed, returning original file",
			"path", path, "error", err)
		return fallback, path, release
	}
	release = func() { os.Remove(optPath) }

	optInfo, err := os.Stat(optPath)
	if err != nil || optInfo.Size() == 0 || optInfo.Size() > originalSize {
		// Never hand back a grown or empty artifact.
		release()
		p.logger.Warn("optimization produced no size win, returning original file",
			"path", path)
		return fallback, path, func() {}
	}

	outcome := &Optimization{
		WasOptimized:       true,
		OriginalSizeBytes:  originalSize,
		OptimizedSizeBytes: optInfo.Size(),
		Backend:            backend,
	}
	p.logger.Info("mesh optimized",
		"original_bytes", outcome.OriginalSizeBytes,
		"optimized_bytes", outcome.OptimizedSizeBytes,
		"backend", outcome.Backend)
	return outcome, optPath, release
}

// decimateToScratch runs the load → clean → decimate → export chain and
// returns the scratch path of the exported mesh plus the backend that
// performed the decimation.
func (p *Pipeline) decimateToScratch(path string, format geom.Format) (string, string, error) {
	m, err := p.adapter.Load(path, format)
	if err != nil {
		return "", "", fmt.Errorf("load: %w", err)
	}
	m = m.Clean()

	reduced, backend, err := p.adapter.Decimate(m, p.cfg.TargetFaceRatio)
	if err != nil {
		return "", "", fmt.Errorf("decimate: %w", err)
	}

	out, err := os.CreateTemp(p.cfg.ScratchDir, "optimized_*."+string(format))
	if err != nil {
		return "", "", fmt.Errorf("scratch file: %w", err)
	}
	outPath := out.Name()
	out.Close()

	if err := p.adapter.Export(reduced, outPath); err != nil {
		os.Remove(outPath)
		return "", "", fmt.Errorf("export: %w", err)
	}
	return outPath, backend, nil
}
