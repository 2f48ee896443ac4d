package meshpipe

import (
	"context"
	"fmt"

	"github.com/meshforge/printquote/geom"
)

// Analyze loads the mesh at path and measures it. File coordinates are
// millimeters by convention, so volume converts to cm³ by dividing by
// 1000 while bounding-box extents stay in mm. Every failure wraps
// ErrAnalysis together with the underlying geometry error.
func (p *Pipeline) Analyze(ctx context.Context, path string, format geom.Format) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := p.adapter.Load(path, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	if m.BodyCount > 1 {
		p.logger.Debug("multi-body container, analyzing first body",
			"path", path, "bodies", m.BodyCount)
	}

	volumeCm3 := m.Volume() / 1000.0
	box := m.Bounds()
	mass := volumeCm3 * p.cfg.DensityGCm3

	// The one and only rounding point; everything above runs at full
	// precision.
	return &Analysis{
		VolumeCm3: round2(volumeCm3),
		DimensionsMM: Dimensions{
			Length: round2(box.Max[0] - box.Min[0]),
			Width:  round2(box.Max[1] - box.Min[1]),
			Height: round2(box.Max[2] - box.Min[2]),
		},
		MassGrams:   round2(mass),
		DensityGCm3: p.cfg.DensityGCm3,
	}, nil
}
