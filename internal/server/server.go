package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/kiesman99/splitsave/internal/api"
	"github.com/kiesman99/splitsave/internal/config"
	"github.com/kiesman99/splitsave/internal/journal"
	"github.com/kiesman99/splitsave/internal/tiler"
	"github.com/kiesman99/splitsave/pkg/tile"
)

// Server implements api.ServerInterface
type Server struct {
	startTime time.Time
	version   string
	fs        afero.Fs

	mu      sync.RWMutex
	cfg     *config.Config
	journal *journal.Journal
}

// NewServer creates a new server instance saving uploads below
// cfg.Server.Root on fs
func NewServer(version string, cfg *config.Config, fs afero.Fs) *Server {
	return &Server{
		startTime: time.Now(),
		version:   version,
		fs:        fs,
		cfg:       cfg,
	}
}

// SetConfig replaces the settings used by subsequent requests
func (s *Server) SetConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// SetJournal makes the server record every save in j
func (s *Server) SetJournal(j *journal.Journal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journal = j
}

func (s *Server) settings() (*config.Config, *journal.Journal) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.journal
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	response := api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding health response: %v", err)
	}
}

// SaveImage decodes the uploaded image and saves it below the server root
func (s *Server) SaveImage(w http.ResponseWriter, r *http.Request, params api.SaveImageParams) {
	requestID := requestID(r)
	w.Header().Set("X-Request-ID", requestID)

	cfg, jrnl := s.settings()

	if err := validateName(params.Name); err != nil {
		s.writeValidationErrorResponse(w, "name", err.Error(), &requestID)
		return
	}

	if params.Quality != nil {
		if *params.Quality < 0 || *params.Quality > 100 {
			s.writeValidationErrorResponse(w, "quality", "quality must be between 0 and 100", &requestID)
			return
		}
		c := *cfg
		c.Encode.Quality = *params.Quality
		cfg = &c
	}

	enc, err := cfg.Encoder(params.Name)
	if err != nil {
		s.writeValidationErrorResponse(w, "name", err.Error(), &requestID)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, cfg.Server.MaxUpload))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE",
				fmt.Sprintf("Upload exceeds %d bytes", tooBig.Limit), &requestID, nil)
			return
		}
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_BODY",
			"Could not read request body", &requestID, nil)
		return
	}

	img, err := tile.DecodeImage(data)
	if err != nil {
		s.writeErrorResponse(w, http.StatusUnsupportedMediaType, "INVALID_IMAGE",
			err.Error(), &requestID, nil)
		return
	}

	sink := tiler.NewFileSink(s.fs, enc)
	sink.MaxDimension = cfg.Encode.MaxDimension
	sink.MaxPixels = cfg.Encode.MaxPixels

	te := tiler.New(s.fs, sink, tiler.Options{
		Policy:       cfg.Policy(),
		DisableSplit: !cfg.Split.Enabled,
		KeepPartial:  cfg.Split.KeepPartial,
		Logger:       log.New(log.Writer(), fmt.Sprintf("[%s] ", requestID), log.Flags()),
	})

	path := filepath.Join(cfg.Server.Root, params.Name)
	out, err := te.Save(r.Context(), img, path)

	if jrnl != nil {
		entry := journal.NewEntry("upload:"+params.Name, out, time.Now())
		if _, jerr := jrnl.Record(context.WithoutCancel(r.Context()), entry); jerr != nil {
			log.Printf("Error recording save: %v", jerr)
		}
	}

	if err != nil {
		s.handleSaveError(w, out, err, &requestID)
		return
	}

	response := api.SaveResponse{
		Width:     out.Width,
		Height:    out.Height,
		Message:   out.Message(),
		Tried:     out.Tried,
		RequestId: &requestID,
	}

	switch out.Kind {
	case tiler.SingleFileSaved:
		response.Kind = api.Single
		response.Files = []string{relative(cfg.Server.Root, out.Path)}
	case tiler.TiledSaved:
		dir := relative(cfg.Server.Root, out.Directory)
		response.Kind = api.Tiled
		response.Directory = &dir
		response.Steps = &out.Steps
		for _, f := range out.Files {
			response.Files = append(response.Files, relative(cfg.Server.Root, f))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding save response: %v", err)
	}
}

// handleSaveError maps a failed save to an error response
func (s *Server) handleSaveError(w http.ResponseWriter, out *tiler.Outcome, err error, requestID *string) {
	details := map[string]interface{}{
		"width":  out.Width,
		"height": out.Height,
	}
	if len(out.Tried) > 0 {
		details["tried"] = out.Tried
	}

	switch {
	case errors.Is(err, tiler.ErrAllCandidatesExhausted):
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, "ALL_CANDIDATES_EXHAUSTED",
			out.Message(), requestID, details)
	case errors.Is(err, tiler.ErrTooLarge):
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, "IMAGE_TOO_LARGE",
			out.Message(), requestID, details)
	case errors.Is(err, context.DeadlineExceeded):
		s.writeErrorResponse(w, http.StatusGatewayTimeout, "SAVE_TIMEOUT",
			"Saving the image timed out", requestID, details)
	case errors.Is(err, context.Canceled):
		s.writeErrorResponse(w, http.StatusServiceUnavailable, "SAVE_CANCELLED",
			"Saving the image was cancelled", requestID, details)
	default:
		log.Printf("Save failed: %v", err)
		s.writeErrorResponse(w, http.StatusInternalServerError, "SAVE_FAILED",
			out.Message(), requestID, details)
	}
}

// BindErrorHandler reports malformed query parameters as validation errors
func (s *Server) BindErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	requestID := requestID(r)

	field := "request"
	var perr *api.InvalidParamFormatError
	if errors.As(err, &perr) {
		field = perr.ParamName
	}
	s.writeValidationErrorResponse(w, field, err.Error(), &requestID)
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string, requestID *string, details map[string]interface{}) {
	response := api.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestId: requestID,
	}

	if details != nil {
		response.Details = &details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// writeValidationErrorResponse writes a validation error response
func (s *Server) writeValidationErrorResponse(w http.ResponseWriter, field, message string, requestID *string) {
	response := api.ValidationErrorResponse{
		Error:     api.VALIDATIONERROR,
		Message:   message,
		RequestId: requestID,
		ValidationErrors: []struct {
			Code    *string `json:"code,omitempty"`
			Field   string  `json:"field"`
			Message string  `json:"message"`
		}{
			{
				Field:   field,
				Message: message,
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(response)
}

// validateName accepts plain file names only, so uploads stay below the root
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("name must be a plain file name, got %q", name)
	}
	if filepath.Ext(name) == "" {
		return fmt.Errorf("name must have a file extension, got %q", name)
	}
	return nil
}

func relative(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

// requestID reuses the id assigned by the RequestID middleware when present
func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return "req_" + uuid.NewString()
}
