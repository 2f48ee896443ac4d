package geom

import (
	vec3d "github.com/flywave/go3d/float64/vec3"
)

// Triangle is one face of a mesh, vertices in winding order.
type Triangle struct {
	A, B, C vec3d.T
}

// Mesh is an in-memory triangle-soup snapshot of one mesh body. It is
// owned by a single analysis or optimization call and never shared
// across requests.
type Mesh struct {
	Format    Format
	Triangles []Triangle

	// BodyCount is the number of bodies the source container declared.
	// When it is greater than one, Triangles holds only the first body.
	BodyCount int
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int { return len(m.Triangles) }

// Volume returns the enclosed volume in cubic source units, as the
// magnitude of the signed tetrahedron sum. Only meaningful for a
// watertight surface; see Watertight.
func (m *Mesh) Volume() float64 {
	var sum float64
	for i := range m.Triangles {
		t := &m.Triangles[i]
		cross := vec3d.Cross(&t.B, &t.C)
		sum += vec3d.Dot(&t.A, &cross)
	}
	v := sum / 6.0
	if v < 0 {
		return -v
	}
	return v
}

// Bounds returns the axis-aligned bounding box in source units.
func (m *Mesh) Bounds() vec3d.Box {
	box := vec3d.MinBox
	for i := range m.Triangles {
		t := &m.Triangles[i]
		box.Extend(&t.A)
		box.Extend(&t.B)
		box.Extend(&t.C)
	}
	return box
}

// Watertight reports whether every edge is shared by exactly two faces,
// the precondition for a valid volume computation.
func (m *Mesh) Watertight() bool {
	if len(m.Triangles) == 0 {
		return false
	}
	edges := make(map[edgeKey]int, len(m.Triangles)*3)
	for i := range m.Triangles {
		t := &m.Triangles[i]
		edges[newEdgeKey(t.A, t.B)]++
		edges[newEdgeKey(t.B, t.C)]++
		edges[newEdgeKey(t.C, t.A)]++
	}
	for _, n := range edges {
		if n != 2 {
			return false
		}
	}
	return true
}

// Clean returns a copy of m without duplicate or degenerate
// (zero-area) faces. This is a normalization pass applied before
// decimation, not a size reduction by itself. Unreferenced vertices
// cannot exist in a triangle soup.
func (m *Mesh) Clean() *Mesh {
	seen := make(map[faceKey]struct{}, len(m.Triangles))
	out := make([]Triangle, 0, len(m.Triangles))
	for i := range m.Triangles {
		t := m.Triangles[i]
		if degenerate(&t) {
			continue
		}
		k := faceKey{t.A, t.B, t.C}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return &Mesh{Format: m.Format, Triangles: out, BodyCount: m.BodyCount}
}

type edgeKey struct{ lo, hi vec3d.T }

// newEdgeKey orders the endpoints so that both windings of an edge map
// to the same key.
func newEdgeKey(a, b vec3d.T) edgeKey {
	if less(b, a) {
		a, b = b, a
	}
	return edgeKey{a, b}
}

func less(a, b vec3d.T) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

type faceKey struct{ a, b, c vec3d.T }

func degenerate(t *Triangle) bool {
	if t.A == t.B || t.B == t.C || t.C == t.A {
		return true
	}
	ab := vec3d.Sub(&t.B, &t.A)
	ac := vec3d.Sub(&t.C, &t.A)
	cross := vec3d.Cross(&ab, &ac)
	return cross.Length() == 0
}
