package geom

import (
	"errors"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
		wantErr  bool
	}{
		{"part.stl", FormatSTL, false},
		{"part.STL", FormatSTL, false},
		{"model.obj", FormatOBJ, false},
		{"model.OBJ", FormatOBJ, false},
		{"dir/model.obj", FormatOBJ, false},
		{"scan.ply", "", true},
		{"scene.gltf", "", true},
		{"archive.stl.gz", "", true},
		{"noext", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.filename)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("DetectFormat(%q) error = %v, want ErrUnsupportedFormat", tt.filename, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("DetectFormat(%q): %v", tt.filename, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

// stubBackend serves canned responses for adapter dispatch tests.
type stubBackend struct {
	name     string
	mesh     *Mesh
	loadErr  error
	decimate bool
}

func (s *stubBackend) Name() string          { return s.name }
func (s *stubBackend) CanLoad(Format) bool   { return true }
func (s *stubBackend) CanDecimate() bool     { return s.decimate }
func (s *stubBackend) CanExport(Format) bool { return false }
func (s *stubBackend) Export(*Mesh, string) error {
	return errors.New("stub: export not supported")
}

func (s *stubBackend) Load(path string, f Format) (*Mesh, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.mesh, nil
}

func (s *stubBackend) Decimate(m *Mesh, ratio float64) (*Mesh, error) {
	n := int(float64(len(m.Triangles)) * ratio)
	return &Mesh{Format: m.Format, Triangles: m.Triangles[:n], BodyCount: m.BodyCount}, nil
}

func TestAdapter_Load_FallsThroughFailingBackend(t *testing.T) {
	broken := &stubBackend{name: "broken", loadErr: errors.New("parse failed")}
	good := &stubBackend{name: "good", mesh: gridCube(10, 1)}
	a := NewAdapter(nil, broken, good)

	m, err := a.Load("any.stl", FormatSTL)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.FaceCount() != 12 {
		t.Fatalf("FaceCount = %d, want 12", m.FaceCount())
	}
}

func TestAdapter_Load_EmptyMesh(t *testing.T) {
	a := NewAdapter(nil, &stubBackend{name: "empty", mesh: &Mesh{Format: FormatSTL}})
	_, err := a.Load("any.stl", FormatSTL)
	if !errors.Is(err, ErrNoGeometry) {
		t.Fatalf("error = %v, want ErrNoGeometry", err)
	}
}

func TestAdapter_Load_OpenSurface(t *testing.T) {
	open := gridCube(10, 1)
	open.Triangles = open.Triangles[1:]
	a := NewAdapter(nil, &stubBackend{name: "open", mesh: open})
	_, err := a.Load("any.stl", FormatSTL)
	if !errors.Is(err, ErrDegenerateMesh) {
		t.Fatalf("error = %v, want ErrDegenerateMesh", err)
	}
}

func TestAdapter_Decimate_NoCapableBackend(t *testing.T) {
	a := NewAdapter(nil, &stubBackend{name: "loader", mesh: gridCube(10, 1)})
	_, _, err := a.Decimate(gridCube(10, 1), 0.7)
	if !errors.Is(err, ErrDecimationUnsupported) {
		t.Fatalf("error = %v, want ErrDecimationUnsupported", err)
	}
}

func TestAdapter_Decimate_ReportsBackendName(t *testing.T) {
	a := NewAdapter(nil, &stubBackend{name: "reducer", decimate: true})
	m, backend, err := a.Decimate(gridCube(10, 2), 0.5)
	if err != nil {
		t.Fatalf("Decimate: %v", err)
	}
	if backend != "reducer" {
		t.Fatalf("backend = %q, want reducer", backend)
	}
	if m.FaceCount() != 24 {
		t.Fatalf("FaceCount = %d, want 24", m.FaceCount())
	}
}

func TestDefaultAdapter_Order(t *testing.T) {
	a := DefaultAdapter(nil)
	got := a.Backends()
	want := []string{"tri", "quadric", "aeno"}
	if len(got) != len(want) {
		t.Fatalf("Backends = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Backends[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
