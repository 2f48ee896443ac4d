// Package server exposes the mesh analysis pipeline, pricing and order
// placement over HTTP.
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/meshforge/printquote/events"
	"github.com/meshforge/printquote/geom"
	"github.com/meshforge/printquote/kit"
	"github.com/meshforge/printquote/meshpipe"
	"github.com/meshforge/printquote/orders"
	"github.com/meshforge/printquote/pricing"
)

// Service wires the pipeline, pricing and orders behind HTTP handlers.
type Service struct {
	pipe      *meshpipe.Pipeline
	store     *orders.Store
	placement *orders.Service
	events    *events.Logger
	logger    *slog.Logger
	maxUpload int64
}

// New creates the HTTP service.
func New(cfg *Config, db *sql.DB, logger *slog.Logger, notifiers ...orders.Notifier) *Service {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	pipe := meshpipe.New(meshpipe.Config{
		DensityGCm3:       cfg.Pipeline.DensityGCm3,
		OptimizeThreshold: cfg.Pipeline.OptimizeThresholdMB << 20,
		TargetFaceRatio:   cfg.Pipeline.TargetFaceRatio,
		ScratchDir:        cfg.ScratchDir,
		Logger:            logger,
	})
	store := orders.NewStore(db)
	return &Service{
		pipe:      pipe,
		store:     store,
		placement: orders.NewService(store, logger, notifiers...),
		events:    events.NewLogger(db),
		logger:    logger,
		maxUpload: cfg.MaxUploadMB << 20,
	}
}

// RegisterHTTP mounts all endpoints on the chi router.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Get("/health", s.handleHealth)

	r.Post("/api/upload", s.handleUpload)
	r.Post("/api/analyze", s.handleAnalyze)
	r.Post("/api/price", s.handlePrice)

	r.Post("/api/order", s.handleOrder)
	r.Get("/api/orders", s.handleListOrders)
	r.Get("/api/orders/{order_id}", s.handleGetOrder)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// reqLogger annotates log entries with the request ID and remote
// address set by the RequestID middleware, for correlation with the
// X-Request-ID response header.
func (s *Service) reqLogger(r *http.Request) *slog.Logger {
	ctx := r.Context()
	return s.logger.With(
		"request_id", kit.GetRequestID(ctx),
		"remote_addr", kit.GetRemoteAddr(ctx))
}

type uploadResponse struct {
	Success bool `json:"success"`
	*meshpipe.Report
}

// handleUpload runs the full pipeline on a multipart upload: spool,
// size-triggered optimization, analysis.
func (s *Service) handleUpload(w http.ResponseWriter, r *http.Request) {
	filename, file, ok := s.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	report, err := s.pipe.Process(r.Context(), filename, file)
	if err != nil {
		s.writeMeshError(w, r, filename, err)
		return
	}

	s.events.LogEvent(r.Context(), events.Event{
		Type:       "mesh_analyzed",
		EntityType: "upload",
		EntityID:   filename,
		Action:     "upload",
		Success:    true,
	})
	writeJSON(w, http.StatusOK, uploadResponse{Success: true, Report: report})
}

// handleAnalyze measures a multipart upload without the optimization path.
func (s *Service) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	filename, file, ok := s.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	analysis, err := s.pipe.AnalyzeReader(r.Context(), filename, file)
	if err != nil {
		s.writeMeshError(w, r, filename, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

type priceRequest struct {
	MassGrams float64 `json:"mass_grams"`
	Tech      string  `json:"tech"`
	Material  string  `json:"material"`
}

func (s *Service) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MassGrams < 0 {
		writeError(w, http.StatusBadRequest, "mass_grams must be non-negative")
		return
	}
	writeJSON(w, http.StatusOK, pricing.Calculate(req.MassGrams, req.Tech, req.Material))
}

type orderRequest struct {
	Name    string          `json:"name"`
	Phone   string          `json:"phone"`
	Address string          `json:"address"`
	Email   string          `json:"email"`
	Quote   json.RawMessage `json:"quote"`
}

func (s *Service) handleOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o := &orders.Order{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		Email:   req.Email,
		Quote:   req.Quote,
	}
	receipt, err := s.placement.Place(r.Context(), o)
	if errors.Is(err, orders.ErrInvalidOrder) {
		writeError(w, http.StatusBadRequest, "name, phone, address and quote are required")
		return
	}
	if err != nil {
		s.reqLogger(r).Error("order placement failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not place order")
		return
	}

	s.events.LogEvent(r.Context(), events.Event{
		Type:       "order_placed",
		EntityType: "order",
		EntityID:   receipt.OrderID,
		Action:     "place",
		Success:    true,
	})
	writeJSON(w, http.StatusCreated, receipt)
}

func (s *Service) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "order_id")
	o, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.reqLogger(r).Error("order lookup failed", "order_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Service) handleListOrders(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.reqLogger(r).Error("order list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": list, "count": len(list)})
}

// openUpload extracts the multipart "file" part, enforcing the upload
// size cap. On failure it writes the error response and returns ok=false.
func (s *Service) openUpload(w http.ResponseWriter, r *http.Request) (string, io.ReadCloser, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d MB limit", s.maxUpload>>20))
			return "", nil, false
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return "", nil, false
	}

	filename := sanitizeFilename(header.Filename)
	if filename == "" {
		file.Close()
		writeError(w, http.StatusBadRequest, "missing filename")
		return "", nil, false
	}
	return filename, file, true
}

// writeMeshError maps pipeline errors to HTTP statuses: client errors
// for bad or unsupported geometry, 500 for everything else.
func (s *Service) writeMeshError(w http.ResponseWriter, r *http.Request, filename string, err error) {
	s.events.LogEvent(r.Context(), events.Event{
		Type:       "mesh_analyzed",
		EntityType: "upload",
		EntityID:   filename,
		Action:     "upload",
		Details:    fmt.Sprintf(`{"error":%q}`, err.Error()),
		Success:    false,
	})

	switch {
	case errors.Is(err, geom.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, "unsupported file format, expected .stl or .obj")
	case errors.Is(err, geom.ErrNoGeometry), errors.Is(err, geom.ErrDegenerateMesh):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.reqLogger(r).Error("mesh analysis failed", "filename", filename, "error", err)
		writeError(w, http.StatusInternalServerError, "mesh analysis failed")
	}
}

// sanitizeFilename strips any path components and rejects names that
// reduce to nothing. The extension is preserved for format detection.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}
