package geom

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	gobj "github.com/flywave/go-obj"
	stl "github.com/flywave/go-stl"
	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/flywave/go3d/vec3"
)

// triBackend is the primary backend: STL (binary and ASCII) via
// flywave/go-stl and OBJ via flywave/go-obj. It loads and exports both
// formats but has no decimation capability.
type triBackend struct{}

func (t *triBackend) Name() string { return "tri" }

func (t *triBackend) CanLoad(f Format) bool   { return f == FormatSTL || f == FormatOBJ }
func (t *triBackend) CanDecimate() bool       { return false }
func (t *triBackend) CanExport(f Format) bool { return f == FormatSTL || f == FormatOBJ }

func (t *triBackend) Load(path string, f Format) (*Mesh, error) {
	switch f {
	case FormatSTL:
		return t.loadSTL(path)
	case FormatOBJ:
		return t.loadOBJ(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

func (t *triBackend) Decimate(m *Mesh, ratio float64) (*Mesh, error) {
	return nil, ErrDecimationUnsupported
}

func (t *triBackend) loadSTL(path string) (*Mesh, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tri: read stl: %w", err)
	}
	m := &Mesh{Format: FormatSTL, BodyCount: 1}
	m.Triangles = make([]Triangle, 0, len(solid.Triangles))
	for i := range solid.Triangles {
		vs := &solid.Triangles[i].Vertices
		m.Triangles = append(m.Triangles, Triangle{
			A: vec3d.T{float64(vs[0][0]), float64(vs[0][1]), float64(vs[0][2])},
			B: vec3d.T{float64(vs[1][0]), float64(vs[1][1]), float64(vs[1][2])},
			C: vec3d.T{float64(vs[2][0]), float64(vs[2][1]), float64(vs[2][2])},
		})
	}
	return m, nil
}

// loadOBJ keeps the first body of the container. go-obj exposes
// grouping only through per-face material tags, so a body is a maximal
// run of consecutive faces sharing a material, in file order; the
// selection is deterministic across runs on identical input.
func (t *triBackend) loadOBJ(path string) (*Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tri: open obj: %w", err)
	}
	defer file.Close()

	reader := &gobj.ObjReader{}
	if err := reader.Read(file); err != nil {
		return nil, fmt.Errorf("tri: read obj: %w", err)
	}

	m := &Mesh{Format: FormatOBJ}
	runs := 0
	var current string
	for _, face := range reader.F {
		if runs == 0 || face.Material != current {
			runs++
			current = face.Material
		}
		if runs > 1 {
			continue
		}
		if len(face.Corners) < 3 {
			continue
		}
		// Fan triangulation.
		for i := 1; i < len(face.Corners)-1; i++ {
			a, okA := objVertex(reader, face.Corners[0].VertexIndex)
			b, okB := objVertex(reader, face.Corners[i].VertexIndex)
			c, okC := objVertex(reader, face.Corners[i+1].VertexIndex)
			if !okA || !okB || !okC {
				continue
			}
			m.Triangles = append(m.Triangles, Triangle{A: a, B: b, C: c})
		}
	}
	m.BodyCount = runs
	return m, nil
}

func objVertex(reader *gobj.ObjReader, vertexIndex int) (vec3d.T, bool) {
	if vertexIndex < 0 || vertexIndex >= len(reader.V) {
		return vec3d.T{}, false
	}
	v := reader.V[vertexIndex]
	return vec3d.T{float64(v[0]), float64(v[1]), float64(v[2])}, true
}

func (t *triBackend) Export(m *Mesh, path string) error {
	switch m.Format {
	case FormatSTL:
		return t.exportSTL(m, path)
	case FormatOBJ:
		return t.exportOBJ(m, path)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, m.Format)
	}
}

func (t *triBackend) exportSTL(m *Mesh, path string) error {
	solid := &stl.Solid{Name: "mesh"}
	solid.Triangles = make([]stl.Triangle, 0, len(m.Triangles))
	for i := range m.Triangles {
		tr := &m.Triangles[i]
		n := faceNormal(tr)
		solid.Triangles = append(solid.Triangles, stl.Triangle{
			Normal: vec3.T{float32(n[0]), float32(n[1]), float32(n[2])},
			Vertices: [3]vec3.T{
				{float32(tr.A[0]), float32(tr.A[1]), float32(tr.A[2])},
				{float32(tr.B[0]), float32(tr.B[1]), float32(tr.B[2])},
				{float32(tr.C[0]), float32(tr.C[1]), float32(tr.C[2])},
			},
		})
	}
	if err := solid.WriteFile(path); err != nil {
		return fmt.Errorf("tri: write stl: %w", err)
	}
	return nil
}

// exportOBJ emits position-only v/f statements. go-obj is read-only,
// and positions are all the analyzer consumes.
func (t *triBackend) exportOBJ(m *Mesh, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tri: create obj: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	index := make(map[vec3d.T]int, len(m.Triangles))
	var faces [][3]int
	for i := range m.Triangles {
		tr := &m.Triangles[i]
		var f [3]int
		for j, v := range [3]vec3d.T{tr.A, tr.B, tr.C} {
			idx, ok := index[v]
			if !ok {
				idx = len(index) + 1 // OBJ indices are 1-based
				index[v] = idx
				fmt.Fprintf(w, "v %s %s %s\n", ftoa(v[0]), ftoa(v[1]), ftoa(v[2]))
			}
			f[j] = idx
		}
		faces = append(faces, f)
	}
	for _, f := range faces {
		fmt.Fprintf(w, "f %d %d %d\n", f[0], f[1], f[2])
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("tri: write obj: %w", err)
	}
	return nil
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func faceNormal(t *Triangle) vec3d.T {
	ab := vec3d.Sub(&t.B, &t.A)
	ac := vec3d.Sub(&t.C, &t.A)
	n := vec3d.Cross(&ab, &ac)
	l := n.Length()
	if l == 0 {
		return vec3d.T{0, 0, 1}
	}
	return vec3d.T{n[0] / l, n[1] / l, n[2] / l}
}
