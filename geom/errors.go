package geom

import "errors"

// ErrUnsupportedFormat is returned for extensions outside {stl, obj},
// before any geometry work.
var ErrUnsupportedFormat = errors.New("geom: unsupported mesh format")

// ErrNoGeometry is returned when a parsed container holds zero mesh bodies.
var ErrNoGeometry = errors.New("geom: no geometry found")

// ErrDegenerateMesh is returned when the loaded surface has no computable
// watertight volume.
var ErrDegenerateMesh = errors.New("geom: degenerate mesh")

// ErrDecimationUnsupported is returned when no registered backend
// advertises the decimation capability.
var ErrDecimationUnsupported = errors.New("geom: decimation unsupported")

// ErrExport is returned on backend serialization failure.
var ErrExport = errors.New("geom: export failed")
