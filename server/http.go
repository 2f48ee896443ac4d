package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/meshforge/printquote/idgen"
	"github.com/meshforge/printquote/kit"
)

// RequestID assigns every request a short ID, exposed in the response
// headers and the request context for log correlation.
func RequestID(next http.Handler) http.Handler {
	gen := idgen.NanoID(12)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reqID := gen()
		ctx = kit.WithRequestID(ctx, reqID)
		ctx = kit.WithRemoteAddr(ctx, r.RemoteAddr)

		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
