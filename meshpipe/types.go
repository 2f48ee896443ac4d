package meshpipe

import "math"

// Dimensions are bounding-box extents in millimeters.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Analysis is the result of measuring one mesh file. Numeric fields are
// rounded to 2 decimals exactly once, when the struct is built; all
// internal math runs at full precision.
type Analysis struct {
	Filename     string     `json:"filename"`
	VolumeCm3    float64    `json:"volume_cm3"`
	DimensionsMM Dimensions `json:"dimensions_mm"`
	MassGrams    float64    `json:"mass_grams"`
	DensityGCm3  float64    `json:"density_g_cm3"`
}

// Optimization is the outcome of one optimization attempt.
// OptimizedSizeBytes equals OriginalSizeBytes when WasOptimized is
// false and is never larger when it is true.
type Optimization struct {
	WasOptimized       bool
	OriginalSizeBytes  int64
	OptimizedSizeBytes int64
	Backend            string
}

// OptimizationMeta is the presentation form of a successful
// optimization, attached to a Report.
type OptimizationMeta struct {
	WasOptimized     bool    `json:"was_optimized"`
	OriginalSizeMB   float64 `json:"original_size_mb"`
	OptimizedSizeMB  float64 `json:"optimized_size_mb"`
	CompressionRatio float64 `json:"compression_ratio"`
	Backend          string  `json:"optimizer_backend,omitempty"`
}

// Report is the terminal success outcome of the pipeline: an Analysis,
// plus optimization metadata when and only when the upload was
// decimated. The embedded pointer keeps the JSON flat and drops the
// optimization keys entirely on the unoptimized paths.
type Report struct {
	Analysis
	*OptimizationMeta
}

func metaFrom(o *Optimization) *OptimizationMeta {
	const mb = 1024 * 1024
	ratio := 0.0
	if o.OriginalSizeBytes > 0 {
		ratio = (1 - float64(o.OptimizedSizeBytes)/float64(o.OriginalSizeBytes)) * 100
	}
	return &OptimizationMeta{
		WasOptimized:     true,
		OriginalSizeMB:   round2(float64(o.OriginalSizeBytes) / mb),
		OptimizedSizeMB:  round2(float64(o.OptimizedSizeBytes) / mb),
		CompressionRatio: round1(ratio),
		Backend:          o.Backend,
	}
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round1(x float64) float64 { return math.Round(x*10) / 10 }
