package meshpipe

import (
	"log/slog"
	"os"

	"github.com/meshforge/printquote/geom"
)

// Defaults for the analysis and optimization pipeline.
const (
	// DefaultDensity is the density of the default material (PLA), g/cm³.
	DefaultDensity = 1.24

	// DefaultOptimizeThreshold is the size above which uploads are
	// decimated before analysis (100 MiB).
	DefaultOptimizeThreshold = 100 * 1024 * 1024

	// DefaultFaceRatio is the decimation target: keep 70% of faces.
	DefaultFaceRatio = 0.7
)

// Config configures a Pipeline.
type Config struct {
	// DensityGCm3 converts volume to mass (default: 1.24, PLA).
	DensityGCm3 float64 `json:"density_g_cm3" yaml:"density_g_cm3"`

	// OptimizeThreshold is the byte size above which a file is
	// decimated before analysis (default: 100 MiB).
	OptimizeThreshold int64 `json:"optimize_threshold_bytes" yaml:"optimize_threshold_bytes"`

	// TargetFaceRatio is the decimation target face ratio, in (0,1)
	// (default: 0.7).
	TargetFaceRatio float64 `json:"target_face_ratio" yaml:"target_face_ratio"`

	// ScratchDir hosts per-request spool and optimization artifacts
	// (default: os.TempDir). Artifacts are removed when the request
	// that created them completes, on success and on error alike.
	ScratchDir string `json:"scratch_dir" yaml:"scratch_dir"`

	// Adapter overrides the geometry backend list (default:
	// geom.DefaultAdapter). Mainly for tests.
	Adapter *geom.Adapter `json:"-" yaml:"-"`

	// Logger for debug/warn messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.DensityGCm3 <= 0 {
		c.DensityGCm3 = DefaultDensity
	}
	if c.OptimizeThreshold <= 0 {
		c.OptimizeThreshold = DefaultOptimizeThreshold
	}
	if c.TargetFaceRatio <= 0 || c.TargetFaceRatio >= 1 {
		c.TargetFaceRatio = DefaultFaceRatio
	}
	if c.ScratchDir == "" {
		c.ScratchDir = os.TempDir()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Adapter == nil {
		c.Adapter = geom.DefaultAdapter(c.Logger)
	}
}
