package geom

import (
	"fmt"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/fogleman/simplify"
)

// quadricBackend wraps fogleman/simplify: quadric edge-collapse
// decimation with binary STL I/O. It is the designated decimator in the
// default preference list; its loader only reads binary STL.
type quadricBackend struct{}

func (q *quadricBackend) Name() string { return "quadric" }

func (q *quadricBackend) CanLoad(f Format) bool   { return f == FormatSTL }
func (q *quadricBackend) CanDecimate() bool       { return true }
func (q *quadricBackend) CanExport(f Format) bool { return f == FormatSTL }

func (q *quadricBackend) Load(path string, f Format) (*Mesh, error) {
	if f != FormatSTL {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	sm, err := simplify.LoadBinarySTL(path)
	if err != nil {
		return nil, fmt.Errorf("quadric: read stl: %w", err)
	}
	return fromSimplify(sm, FormatSTL), nil
}

func (q *quadricBackend) Decimate(m *Mesh, ratio float64) (*Mesh, error) {
	if len(m.Triangles) == 0 {
		return nil, fmt.Errorf("quadric: empty mesh")
	}
	reduced := toSimplify(m).Simplify(ratio)
	if len(reduced.Triangles) == 0 {
		return nil, fmt.Errorf("quadric: decimation collapsed mesh to zero faces")
	}
	out := fromSimplify(reduced, m.Format)
	out.BodyCount = m.BodyCount
	return out, nil
}

func (q *quadricBackend) Export(m *Mesh, path string) error {
	if m.Format != FormatSTL {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, m.Format)
	}
	if err := toSimplify(m).SaveBinarySTL(path); err != nil {
		return fmt.Errorf("quadric: write stl: %w", err)
	}
	return nil
}

func toSimplify(m *Mesh) *simplify.Mesh {
	ts := make([]*simplify.Triangle, 0, len(m.Triangles))
	for i := range m.Triangles {
		t := &m.Triangles[i]
		ts = append(ts, simplify.NewTriangle(
			simplify.Vector{X: t.A[0], Y: t.A[1], Z: t.A[2]},
			simplify.Vector{X: t.B[0], Y: t.B[1], Z: t.B[2]},
			simplify.Vector{X: t.C[0], Y: t.C[1], Z: t.C[2]},
		))
	}
	return simplify.NewMesh(ts)
}

func fromSimplify(sm *simplify.Mesh, f Format) *Mesh {
	m := &Mesh{Format: f, BodyCount: 1}
	m.Triangles = make([]Triangle, 0, len(sm.Triangles))
	for _, t := range sm.Triangles {
		m.Triangles = append(m.Triangles, Triangle{
			A: vec3d.T{t.V1.X, t.V1.Y, t.V1.Z},
			B: vec3d.T{t.V2.X, t.V2.Y, t.V2.Z},
			C: vec3d.T{t.V3.X, t.V3.Y, t.V3.Z},
		})
	}
	return m
}
