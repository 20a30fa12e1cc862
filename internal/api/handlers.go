package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/polarmd/dpinput/internal/config"
	"github.com/polarmd/dpinput/internal/inputstore"
	"github.com/polarmd/dpinput/internal/log"
	"github.com/polarmd/dpinput/internal/metrics"
	"github.com/polarmd/dpinput/internal/schedule"
	"github.com/polarmd/dpinput/internal/spin"
	"github.com/polarmd/dpinput/internal/validate"
)

// maxBodyBytes bounds input document uploads.
const maxBodyBytes = 1 << 20

// defaultPreviewSamples is used when a preview request omits the count.
const defaultPreviewSamples = 50

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
		return nil, false
	}
	return body, true
}

// documentFormat picks the format from the Content-Type header, falling
// back to sniffing: JSON documents open with '{'.
func documentFormat(r *http.Request, body []byte) config.Format {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(ct, "json"):
		return config.FormatJSON
	case strings.Contains(ct, "yaml"):
		return config.FormatYAML
	}
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		return config.FormatJSON
	}
	return config.FormatYAML
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	respondJSON(w, status, ErrorResponse{
		Error:     msg,
		RequestID: log.RequestIDFromContext(r.Context()),
	})
}

// fieldErrors unpacks an aggregated validation error into per-field
// entries. Non-validation errors map to a single document-level entry.
func fieldErrors(err error) []FieldError {
	var verr validate.ValidationError
	if errors.As(err, &verr) {
		out := make([]FieldError, 0, len(verr.Errors()))
		for _, e := range verr.Errors() {
			out = append(out, FieldError{Field: e.Field, Message: e.Message})
		}
		return out
	}
	return []FieldError{{Field: "document", Message: err.Error()}}
}

func conversionNotes(applied []config.Conversion) []string {
	notes := make([]string, 0, len(applied))
	for _, c := range applied {
		notes = append(notes, c.Note)
	}
	return notes
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	format := documentFormat(r, body)
	in, err := config.DecodeInput(body, format)
	if err != nil {
		metrics.ValidationTotal.WithLabelValues("invalid").Inc()
		respondJSON(w, http.StatusUnprocessableEntity, ValidateResponse{
			Valid:  false,
			Errors: fieldErrors(err),
		})
		return
	}

	metrics.ValidationTotal.WithLabelValues("valid").Inc()
	resp := ValidateResponse{
		Valid:   true,
		Species: in.Model.TypeMap,
		HasSpin: in.Model.HasSpin(),
	}
	if in.Model.HasSpin() {
		if layout, err := spin.NewLayout(in.Model); err == nil {
			resp.ExtendedTypeMap = layout.TypeMap
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	format := documentFormat(r, body)
	raw, err := config.ParseRaw(body, format)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	from := config.DetectVersion(raw)
	migrated, applied, err := config.Update(raw)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	metrics.MigrationTotal.WithLabelValues(string(from)).Inc()

	doc, err := json.Marshal(migrated)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "encode migrated document")
		return
	}

	respondJSON(w, http.StatusOK, MigrateResponse{
		FromVersion: string(from),
		Conversions: conversionNotes(applied),
		Document:    doc,
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var req PreviewRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid preview request: "+err.Error())
		return
	}
	if len(req.Document) == 0 {
		respondError(w, r, http.StatusBadRequest, "document is required")
		return
	}
	samples := req.Samples
	if samples == 0 {
		samples = defaultPreviewSamples
	}

	in, err := config.DecodeInput(req.Document, config.FormatJSON)
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, ValidateResponse{
			Valid:  false,
			Errors: fieldErrors(err),
		})
		return
	}

	points, err := schedule.Preview(in, samples)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"samples": points})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var req RegisterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid register request: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, r, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Document) == 0 {
		respondError(w, r, http.StatusBadRequest, "document is required")
		return
	}

	in, err := config.DecodeInput(req.Document, config.FormatJSON)
	if err != nil {
		metrics.ValidationTotal.WithLabelValues("invalid").Inc()
		respondJSON(w, http.StatusUnprocessableEntity, ValidateResponse{
			Valid:  false,
			Errors: fieldErrors(err),
		})
		return
	}

	// Canonicalize before hashing so formatting differences do not
	// produce distinct checksums.
	canonical, err := config.RenderInput(in, config.FormatJSON)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "canonicalize document")
		return
	}
	sum := sha256.Sum256(canonical)

	rec := inputstore.Record{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Checksum:     hex.EncodeToString(sum[:]),
		Species:      in.Model.TypeMap,
		NumbSteps:    in.Training.NumbSteps,
		HasSpin:      in.Model.HasSpin(),
		Document:     canonical,
		RegisteredAt: time.Now().UTC(),
	}

	if err := s.store.Put(r.Context(), rec); err != nil {
		if errors.Is(err, inputstore.ErrDuplicate) {
			respondError(w, r, http.StatusConflict, "input already registered")
			return
		}
		respondError(w, r, http.StatusInternalServerError, "store input")
		return
	}
	metrics.RegisteredInputs.Inc()

	logger := log.FromContext(r.Context())
	logger.Info().
		Str(log.FieldInputID, rec.ID).
		Str("name", rec.Name).
		Msg("input registered")

	respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "list inputs")
		return
	}
	if list == nil {
		list = []inputstore.Record{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, inputstore.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "input not found")
			return
		}
		respondError(w, r, http.StatusInternalServerError, "get input")
		return
	}

	// Full record including the stored document.
	respondJSON(w, http.StatusOK, map[string]any{
		"id":            rec.ID,
		"name":          rec.Name,
		"checksum":      rec.Checksum,
		"species":       rec.Species,
		"numb_steps":    rec.NumbSteps,
		"has_spin":      rec.HasSpin,
		"registered_at": rec.RegisteredAt,
		"document":      json.RawMessage(rec.Document),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
