package geom

import (
	"fmt"
	"os"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/netisu/aeno"
)

// aenoBackend wraps the netisu/aeno OBJ loader. Measure-only: no
// decimation, no export. It sits last in the default preference list
// and only serves OBJ loads when the tri backend fails.
type aenoBackend struct{}

func (a *aenoBackend) Name() string { return "aeno" }

func (a *aenoBackend) CanLoad(f Format) bool   { return f == FormatOBJ }
func (a *aenoBackend) CanDecimate() bool       { return false }
func (a *aenoBackend) CanExport(f Format) bool { return false }

func (a *aenoBackend) Load(path string, f Format) (*Mesh, error) {
	if f != FormatOBJ {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("aeno: read obj: %w", err)
	}
	am, err := aeno.LoadOBJFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("aeno: parse obj: %w", err)
	}
	// aeno flattens groups while parsing, so the container is a single body.
	m := &Mesh{Format: FormatOBJ, BodyCount: 1}
	m.Triangles = make([]Triangle, 0, len(am.Triangles))
	for _, t := range am.Triangles {
		m.Triangles = append(m.Triangles, Triangle{
			A: vec3d.T{t.V1.Position.X, t.V1.Position.Y, t.V1.Position.Z},
			B: vec3d.T{t.V2.Position.X, t.V2.Position.Y, t.V2.Position.Z},
			C: vec3d.T{t.V3.Position.X, t.V3.Position.Y, t.V3.Position.Z},
		})
	}
	return m, nil
}

func (a *aenoBackend) Decimate(m *Mesh, ratio float64) (*Mesh, error) {
	return nil, ErrDecimationUnsupported
}

func (a *aenoBackend) Export(m *Mesh, path string) error {
	return fmt.Errorf("%w: aeno backend is measure-only", ErrExport)
}
