package geom

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	stl "github.com/flywave/go-stl"
)

const cubeOBJ = `# unit test cube, 10mm
v 0 0 0
v 10 0 0
v 10 10 0
v 0 10 0
v 0 0 10
v 10 0 10
v 10 10 10
v 0 10 10
f 1 4 3 2
f 5 6 7 8
f 1 2 6 5
f 4 8 7 3
f 1 5 8 4
f 2 3 7 6
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTri_LoadOBJ_Cube(t *testing.T) {
	path := writeTemp(t, "cube.obj", cubeOBJ)

	m, err := (&triBackend{}).Load(path, FormatOBJ)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.FaceCount() != 12 {
		t.Fatalf("FaceCount = %d, want 12 (6 quads fan-triangulated)", m.FaceCount())
	}
	if m.BodyCount != 1 {
		t.Fatalf("BodyCount = %d, want 1", m.BodyCount)
	}
	if !m.Watertight() {
		t.Fatal("cube not watertight after triangulation")
	}
	if got := m.Volume(); math.Abs(got-1000) > 1e-6 {
		t.Fatalf("Volume = %v, want 1000", got)
	}
}

func TestTri_LoadOBJ_MultiBodyKeepsFirst(t *testing.T) {
	// Two cubes tagged with different materials: the first run of faces
	// is the selected body, the second is counted but dropped.
	multi := `v 0 0 0
v 10 0 0
v 10 10 0
v 0 10 0
v 0 0 10
v 10 0 10
v 10 10 10
v 0 10 10
v 20 0 0
v 25 0 0
v 25 5 0
v 20 5 0
v 20 0 5
v 25 0 5
v 25 5 5
v 20 5 5
usemtl body_a
f 1 4 3 2
f 5 6 7 8
f 1 2 6 5
f 4 8 7 3
f 1 5 8 4
f 2 3 7 6
usemtl body_b
f 9 12 11 10
f 13 14 15 16
f 9 10 14 13
f 12 16 15 11
f 9 13 16 12
f 10 11 15 14
`
	path := writeTemp(t, "multi.obj", multi)

	m, err := (&triBackend{}).Load(path, FormatOBJ)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.BodyCount != 2 {
		t.Fatalf("BodyCount = %d, want 2", m.BodyCount)
	}
	if m.FaceCount() != 12 {
		t.Fatalf("FaceCount = %d, want 12 (first body only)", m.FaceCount())
	}
	// The kept body is the 10mm cube at the origin, not the 5mm one.
	if got := m.Volume(); math.Abs(got-1000) > 1e-6 {
		t.Fatalf("Volume = %v, want 1000 (first body)", got)
	}
}

func TestTri_LoadOBJ_SkipsOutOfRangeIndices(t *testing.T) {
	bad := `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 99
f 1 2 3
`
	path := writeTemp(t, "bad.obj", bad)

	m, err := (&triBackend{}).Load(path, FormatOBJ)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.FaceCount() != 1 {
		t.Fatalf("FaceCount = %d, want 1 (out-of-range face dropped)", m.FaceCount())
	}
}

func TestTri_STL_ExportLoadRoundtrip(t *testing.T) {
	src := gridCube(10, 1)
	path := filepath.Join(t.TempDir(), "cube.stl")

	back := &triBackend{}
	if err := back.Export(src, path); err != nil {
		t.Fatalf("Export: %v", err)
	}

	m, err := back.Load(path, FormatSTL)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.FaceCount() != 12 {
		t.Fatalf("FaceCount = %d, want 12", m.FaceCount())
	}
	if got := m.Volume(); math.Abs(got-1000) > 1e-3 {
		t.Fatalf("Volume = %v, want 1000", got)
	}
	if !m.Watertight() {
		t.Fatal("roundtripped cube not watertight")
	}
}

// TestTri_STL_ExportWritesUnitNormals reads the exported file back
// through the STL library itself and checks the per-face normals, which
// export computes rather than carrying on the mesh.
func TestTri_STL_ExportWritesUnitNormals(t *testing.T) {
	src := gridCube(10, 1)
	path := filepath.Join(t.TempDir(), "cube.stl")

	if err := (&triBackend{}).Export(src, path); err != nil {
		t.Fatalf("Export: %v", err)
	}

	solid, err := stl.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(solid.Triangles) != 12 {
		t.Fatalf("triangles = %d, want 12", len(solid.Triangles))
	}
	for i := range solid.Triangles {
		n := solid.Triangles[i].Normal
		l := math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))
		if math.Abs(l-1) > 1e-5 {
			t.Fatalf("triangle %d normal length = %v, want 1", i, l)
		}
	}
}

func TestTri_OBJ_ExportLoadRoundtrip(t *testing.T) {
	src := gridCube(10, 1)
	src.Format = FormatOBJ
	path := filepath.Join(t.TempDir(), "cube.obj")

	back := &triBackend{}
	if err := back.Export(src, path); err != nil {
		t.Fatalf("Export: %v", err)
	}

	m, err := back.Load(path, FormatOBJ)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.FaceCount() != 12 {
		t.Fatalf("FaceCount = %d, want 12", m.FaceCount())
	}
	if got := m.Volume(); math.Abs(got-1000) > 1e-6 {
		t.Fatalf("Volume = %v, want 1000", got)
	}
}
