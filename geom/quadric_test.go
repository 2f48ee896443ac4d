package geom

import (
	"math"
	"path/filepath"
	"testing"
)

func TestQuadric_Capabilities(t *testing.T) {
	q := &quadricBackend{}
	if !q.CanLoad(FormatSTL) || q.CanLoad(FormatOBJ) {
		t.Fatal("quadric must load STL only")
	}
	if !q.CanDecimate() {
		t.Fatal("quadric must decimate")
	}
	if !q.CanExport(FormatSTL) || q.CanExport(FormatOBJ) {
		t.Fatal("quadric must export STL only")
	}
}

func TestQuadric_STL_ExportLoadRoundtrip(t *testing.T) {
	src := gridCube(10, 2)
	path := filepath.Join(t.TempDir(), "cube.stl")

	q := &quadricBackend{}
	if err := q.Export(src, path); err != nil {
		t.Fatalf("Export: %v", err)
	}

	m, err := q.Load(path, FormatSTL)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.FaceCount() != src.FaceCount() {
		t.Fatalf("FaceCount = %d, want %d", m.FaceCount(), src.FaceCount())
	}
	if got := m.Volume(); math.Abs(got-1000) > 1e-3 {
		t.Fatalf("Volume = %v, want 1000", got)
	}
}

func TestQuadric_Decimate_ReducesFaces(t *testing.T) {
	// A 4×4 grid per face has plenty of coplanar vertices to collapse.
	src := gridCube(10, 4)
	orig := src.FaceCount()

	q := &quadricBackend{}
	m, err := q.Decimate(src, 0.5)
	if err != nil {
		t.Fatalf("Decimate: %v", err)
	}
	if m.FaceCount() == 0 || m.FaceCount() > orig {
		t.Fatalf("FaceCount = %d, want in (0, %d]", m.FaceCount(), orig)
	}
	// Collapsing coplanar vertices must not change the enclosed shape
	// by much.
	if got := m.Volume(); math.Abs(got-1000) > 50 {
		t.Fatalf("Volume after decimation = %v, want ~1000", got)
	}
}

func TestQuadric_DecimateExportReload(t *testing.T) {
	src := gridCube(10, 4)
	orig := src.FaceCount()
	path := filepath.Join(t.TempDir(), "reduced.stl")

	q := &quadricBackend{}
	reduced, err := q.Decimate(src, 0.5)
	if err != nil {
		t.Fatalf("Decimate: %v", err)
	}
	if err := q.Export(reduced, path); err != nil {
		t.Fatalf("Export: %v", err)
	}

	m, err := q.Load(path, FormatSTL)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.FaceCount() == 0 || m.FaceCount() > orig {
		t.Fatalf("FaceCount = %d, want in (0, %d]", m.FaceCount(), orig)
	}
	if got := m.Volume(); math.Abs(got-1000) > 50 {
		t.Fatalf("Volume after reload = %v, want ~1000", got)
	}
}

func TestQuadric_Decimate_EmptyMesh(t *testing.T) {
	q := &quadricBackend{}
	if _, err := q.Decimate(&Mesh{Format: FormatSTL}, 0.5); err == nil {
		t.Fatal("expected error for empty mesh")
	}
}
