// Package geom wraps the available mesh-processing backends behind a
// uniform capability surface: load, volume, bounds, decimate, export.
//
// Supported formats:
//   - .stl — stereolithography, binary and ASCII (flywave/go-stl)
//   - .obj — Wavefront OBJ (flywave/go-obj, netisu/aeno)
//
// Backends are tried in the preference order fixed when the Adapter is
// built; each backend advertises which operations and formats it
// supports and the adapter queries capability before dispatch. The
// default order is tri (general load/export), quadric (decimation),
// aeno (OBJ measure-only).
package geom

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Format identifies a mesh container type.
type Format string

const (
	FormatSTL Format = "stl"
	FormatOBJ Format = "obj"
)

// DetectFormat returns the mesh format for a filename based on its
// extension, case-insensitive. Anything but .stl/.obj is rejected with
// ErrUnsupportedFormat before any geometry work happens.
func DetectFormat(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".stl":
		return FormatSTL, nil
	case ".obj":
		return FormatOBJ, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Backend is one underlying mesh-processing library. Capability is
// queried before dispatch; a backend is never asked to perform an
// operation it does not advertise.
type Backend interface {
	Name() string
	CanLoad(f Format) bool
	CanDecimate() bool
	CanExport(f Format) bool

	Load(path string, f Format) (*Mesh, error)
	// Decimate reduces the face count to approximately ratio × the
	// original count. The caller guarantees ratio ∈ (0,1).
	Decimate(m *Mesh, ratio float64) (*Mesh, error)
	Export(m *Mesh, path string) error
}

// Adapter exposes an ordered backend preference list, using the first
// capability-advertising backend that succeeds for each call. The list
// is read-only after construction and safe for concurrent use.
type Adapter struct {
	backends []Backend
	logger   *slog.Logger
}

// NewAdapter builds an adapter with an explicit backend order.
func NewAdapter(logger *slog.Logger, backends ...Backend) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{backends: backends, logger: logger}
}

// DefaultAdapter builds the standard preference list: tri, quadric, aeno.
func DefaultAdapter(logger *slog.Logger) *Adapter {
	return NewAdapter(logger, &triBackend{}, &quadricBackend{}, &aenoBackend{})
}

// Backends returns the backend names in preference order.
func (a *Adapter) Backends() []string {
	names := make([]string, len(a.backends))
	for i, b := range a.backends {
		names[i] = b.Name()
	}
	return names
}

// Load parses the file at path as the given format through the first
// backend that can read it. A parse that yields zero faces fails with
// ErrNoGeometry; a surface without a computable watertight volume fails
// with ErrDegenerateMesh. Multi-body containers keep the first body in
// container-declared order (recorded in Mesh.BodyCount).
func (a *Adapter) Load(path string, f Format) (*Mesh, error) {
	var lastErr error
	tried := false
	for _, b := range a.backends {
		if !b.CanLoad(f) {
			continue
		}
		tried = true
		m, err := b.Load(path, f)
		if err != nil {
			a.logger.Warn("mesh load failed", "backend", b.Name(), "format", f, "error", err)
			lastErr = err
			continue
		}
		if len(m.Triangles) == 0 {
			return nil, fmt.Errorf("%w: %s container holds no mesh body", ErrNoGeometry, f)
		}
		if !m.Watertight() {
			return nil, fmt.Errorf("%w: surface is open or non-manifold", ErrDegenerateMesh)
		}
		return m, nil
	}
	if !tried {
		return nil, fmt.Errorf("%w: no backend loads %q", ErrUnsupportedFormat, f)
	}
	return nil, fmt.Errorf("geom: load %s: %w", f, lastErr)
}

// Decimate reduces m through the first decimation-capable backend that
// succeeds, returning the reduced mesh and the backend name. When no
// registered backend advertises decimation the call fails with
// ErrDecimationUnsupported.
func (a *Adapter) Decimate(m *Mesh, ratio float64) (*Mesh, string, error) {
	var lastErr error
	tried := false
	for _, b := range a.backends {
		if !b.CanDecimate() {
			continue
		}
		tried = true
		dm, err := b.Decimate(m, ratio)
		if err != nil {
			a.logger.Warn("decimation failed", "backend", b.Name(), "error", err)
			lastErr = err
			continue
		}
		return dm, b.Name(), nil
	}
	if !tried {
		return nil, "", ErrDecimationUnsupported
	}
	return nil, "", fmt.Errorf("geom: decimate: %w", lastErr)
}

// Export serializes m back to its native format at path.
func (a *Adapter) Export(m *Mesh, path string) error {
	var lastErr error
	tried := false
	for _, b := range a.backends {
		if !b.CanExport(m.Format) {
			continue
		}
		tried = true
		if err := b.Export(m, path); err != nil {
			a.logger.Warn("mesh export failed", "backend", b.Name(), "format", m.Format, "error", err)
			lastErr = err
			continue
		}
		return nil
	}
	if !tried {
		return fmt.Errorf("%w: no backend exports %q", ErrExport, m.Format)
	}
	return fmt.Errorf("%w: %v", ErrExport, lastErr)
}
