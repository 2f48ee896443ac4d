package meshpipe

import "errors"

// ErrAnalysis wraps any analysis failure (unsupported format excluded —
// that is rejected before geometry work). It is the only pipeline error
// that propagates to the request boundary; optimization failures are
// absorbed by the built-in fallback.
var ErrAnalysis = errors.New("meshpipe: analysis failed")
