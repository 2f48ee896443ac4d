package geom

import (
	"math"
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// gridCube builds an axis-aligned cube [0,s]³ with each face split into
// an n×n grid of quads (2n² triangles per face), outward winding.
func gridCube(s float64, n int) *Mesh {
	d := s / float64(n)
	m := &Mesh{Format: FormatSTL, BodyCount: 1}

	face := func(o, du, dv vec3d.T) {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				p00 := o
				for k := 0; k < 3; k++ {
					p00[k] += float64(i)*du[k] + float64(j)*dv[k]
				}
				p10 := vec3d.Add(&p00, &du)
				p01 := vec3d.Add(&p00, &dv)
				p11 := vec3d.Add(&p10, &dv)
				m.Triangles = append(m.Triangles,
					Triangle{A: p00, B: p10, C: p11},
					Triangle{A: p00, B: p11, C: p01},
				)
			}
		}
	}

	face(vec3d.T{0, 0, 0}, vec3d.T{0, d, 0}, vec3d.T{d, 0, 0}) // bottom
	face(vec3d.T{0, 0, s}, vec3d.T{d, 0, 0}, vec3d.T{0, d, 0}) // top
	face(vec3d.T{0, 0, 0}, vec3d.T{d, 0, 0}, vec3d.T{0, 0, d}) // front
	face(vec3d.T{0, s, 0}, vec3d.T{0, 0, d}, vec3d.T{d, 0, 0}) // back
	face(vec3d.T{0, 0, 0}, vec3d.T{0, 0, d}, vec3d.T{0, d, 0}) // left
	face(vec3d.T{s, 0, 0}, vec3d.T{0, d, 0}, vec3d.T{0, 0, d}) // right
	return m
}

func TestMesh_Volume_Cube(t *testing.T) {
	m := gridCube(10, 1)
	if got := m.FaceCount(); got != 12 {
		t.Fatalf("FaceCount = %d, want 12", got)
	}
	if got := m.Volume(); math.Abs(got-1000) > 1e-9 {
		t.Fatalf("Volume = %v, want 1000", got)
	}
}

func TestMesh_Volume_WindingIndependentSign(t *testing.T) {
	m := gridCube(10, 1)
	// Flip every face; the magnitude must not change.
	for i := range m.Triangles {
		m.Triangles[i].B, m.Triangles[i].C = m.Triangles[i].C, m.Triangles[i].B
	}
	if got := m.Volume(); math.Abs(got-1000) > 1e-9 {
		t.Fatalf("Volume after flip = %v, want 1000", got)
	}
}

func TestMesh_Bounds(t *testing.T) {
	m := gridCube(10, 2)
	box := m.Bounds()
	for i := 0; i < 3; i++ {
		if box.Min[i] != 0 || box.Max[i] != 10 {
			t.Fatalf("Bounds axis %d = [%v, %v], want [0, 10]", i, box.Min[i], box.Max[i])
		}
	}
}

func TestMesh_Watertight(t *testing.T) {
	m := gridCube(10, 2)
	if !m.Watertight() {
		t.Fatal("closed cube reported as not watertight")
	}

	// Remove one face: two edges now have count 1.
	m.Triangles = m.Triangles[1:]
	if m.Watertight() {
		t.Fatal("open surface reported as watertight")
	}
}

func TestMesh_Watertight_Empty(t *testing.T) {
	m := &Mesh{Format: FormatSTL}
	if m.Watertight() {
		t.Fatal("empty mesh reported as watertight")
	}
}

func TestMesh_Clean(t *testing.T) {
	m := gridCube(10, 1)
	orig := m.FaceCount()

	// Duplicate a face and add a zero-area sliver.
	m.Triangles = append(m.Triangles, m.Triangles[0])
	p := vec3d.T{1, 2, 3}
	q := vec3d.T{4, 5, 6}
	m.Triangles = append(m.Triangles, Triangle{A: p, B: q, C: q})

	cleaned := m.Clean()
	if cleaned.FaceCount() != orig {
		t.Fatalf("Clean: %d faces, want %d", cleaned.FaceCount(), orig)
	}
	if m.FaceCount() != orig+2 {
		t.Fatal("Clean mutated its receiver")
	}
}

func TestMesh_Clean_CollinearFace(t *testing.T) {
	m := &Mesh{Triangles: []Triangle{
		{A: vec3d.T{0, 0, 0}, B: vec3d.T{1, 0, 0}, C: vec3d.T{2, 0, 0}},
	}}
	if got := m.Clean().FaceCount(); got != 0 {
		t.Fatalf("collinear face survived Clean: %d faces", got)
	}
}
