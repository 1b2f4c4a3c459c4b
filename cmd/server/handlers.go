package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/himanishpuri/revsearch/pkg/revsearch"
	"github.com/himanishpuri/revsearch/pkg/utils"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service revsearch.Service
	config  *ServerConfig
	log     revsearch.Logger
	limiter *rate.Limiter
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	TempDir        string
	MaxUploadBytes int64
	AllowedOrigins []string
	// RateLimit is match requests per second across all clients; 0 disables it.
	RateLimit      float64
	RateBurst      int
	RequestTimeout time.Duration
}

func NewServer(service revsearch.Service, config *ServerConfig, log revsearch.Logger) *Server {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 32 << 20
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 2 * time.Minute
	}
	if config.TempDir == "" {
		config.TempDir = os.TempDir()
	}

	s := &Server{service: service, config: config, log: log}
	if config.RateLimit > 0 {
		burst := config.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}
	return s
}

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error: message,
		Code:  statusCode,
	})
}

// respondServiceError maps service errors onto HTTP statuses.
func (s *Server) respondServiceError(w http.ResponseWriter, action string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Errorf("Failed to %s: %v", action, err)
	} else {
		s.log.Warnf("Rejected %s: %v", action, err)
	}
	s.respondError(w, status, fmt.Sprintf("Failed to %s: %v", action, err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, revsearch.ErrBadQuery):
		return http.StatusUnprocessableEntity
	case errors.Is(err, revsearch.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, revsearch.ErrReadOnlyStore):
		return http.StatusForbidden
	case errors.Is(err, revsearch.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "revsearch reverse audio search",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":           "GET /health",
			"metrics":          "GET /api/health/metrics",
			"reverseSearch":    "POST /reverse_search",
			"matchFingerprint": "POST /api/match/fingerprint",
			"tracks":           "GET /api/tracks",
			"addTrack":         "POST /api/tracks",
			"deleteTrack":      "DELETE /api/tracks/{id}",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.log.Errorf("Failed to get corpus stats: %v", err)
		s.respondError(w, statusFor(err), "Failed to retrieve metrics")
		return
	}

	limit := "off"
	if s.limiter != nil {
		limit = fmt.Sprintf("%g/s burst %d", s.config.RateLimit, s.limiter.Burst())
	}
	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:     "healthy",
		Store:      stats.Store,
		TrackCount: stats.Tracks,
		RateLimit:  limit,
	})
}

// saveUpload copies the multipart field into a fresh temp file that keeps the
// upload's extension. The caller removes the file.
func (s *Server) saveUpload(r *http.Request, field string) (string, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = ".webm"
	}
	tempFile := utils.TempPath(s.config.TempDir, "upload-", ext)

	out, err := os.Create(tempFile)
	if err != nil {
		return "", "", fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(tempFile)
		return "", "", fmt.Errorf("saving upload: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tempFile)
		return "", "", fmt.Errorf("saving upload: %w", err)
	}
	return tempFile, header.Filename, nil
}

// parseUpload reads the multipart body and saves field. It writes the error
// response itself and returns ok=false when the request cannot proceed.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request, field string) (path, filename string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return "", "", false
		}
		s.respondError(w, http.StatusBadRequest, "No file uploaded")
		return "", "", false
	}

	path, filename, err := s.saveUpload(r, field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			s.respondError(w, http.StatusBadRequest, "No file uploaded")
			return "", "", false
		}
		s.log.Errorf("Failed to save upload: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to save uploaded file")
		return "", "", false
	}
	return path, filename, true
}

func (s *Server) removeTemp(path string) {
	if err := utils.DeleteFile(path); err != nil && !os.IsNotExist(err) {
		s.log.Warnf("Failed to remove temp file %s: %v", path, err)
	}
}

// handleReverseSearch handles POST /reverse_search (multipart field "file")
func (s *Server) handleReverseSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	tempFile, filename, ok := s.parseUpload(w, r, "file")
	if !ok {
		return
	}
	defer s.removeTemp(tempFile)

	s.log.Infof("Matching uploaded clip: %s", filename)
	res, err := s.service.MatchAudio(ctx, tempFile)
	if err != nil {
		s.respondServiceError(w, "match clip", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toResponse(res))
}

// handleMatchFingerprint handles POST /api/match/fingerprint
func (s *Server) handleMatchFingerprint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	var req MatchFingerprintRequest
	body := http.MaxBytesReader(w, r.Body, MaxFingerprintLength+1024)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.service.FindBestMatch(ctx, []byte(req.Fingerprint))
	if err != nil {
		s.respondServiceError(w, "match fingerprint", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toResponse(res))
}

// handleTracks routes requests to /api/tracks
func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTracks(w, r)
	case http.MethodPost:
		s.handleAddTrack(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.service.ListTracks(r.Context())
	if err != nil {
		s.respondServiceError(w, "list tracks", err)
		return
	}
	if tracks == nil {
		tracks = []string{}
	}
	s.respondJSON(w, http.StatusOK, ListTracksResponse{Tracks: tracks, Count: len(tracks)})
}

// handleAddTrack handles POST /api/tracks (multipart fields "file" and optional "name")
func (s *Server) handleAddTrack(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	tempFile, filename, ok := s.parseUpload(w, r, "file")
	if !ok {
		return
	}
	defer s.removeTemp(tempFile)

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	id, err := s.service.AddTrack(ctx, tempFile, name)
	if err != nil {
		s.respondServiceError(w, "add track", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, AddTrackResponse{
		Message: "Track added successfully",
		ID:      id,
	})
}

// handleTrack handles DELETE /api/tracks/{id}
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/tracks/")
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "Track ID required")
		return
	}
	if r.Method != http.MethodDelete {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := s.service.DeleteTrack(r.Context(), id); err != nil {
		s.respondServiceError(w, "delete track", err)
		return
	}
	s.respondJSON(w, http.StatusOK, DeleteTrackResponse{
		Message: "Track deleted successfully",
		ID:      id,
	})
}

func toResponse(res revsearch.MatchResult) ReverseSearchResponse {
	return ReverseSearchResponse{
		BestMatch: res.Label(),
		Distance:  res.Distance,
		Scanned:   res.Scanned,
		Skipped:   res.Skipped,
	}
}
