package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kiesman99/panorama/internal/api"
	"github.com/kiesman99/panorama/internal/logging"
	"github.com/kiesman99/panorama/internal/stitch"
	"github.com/kiesman99/panorama/internal/stitcher"
	"github.com/kiesman99/panorama/pkg/tile"
)

// Server implements the ServerInterface from the generated API
type Server struct {
	startTime time.Time
	version   string
	stitcher  *stitcher.Stitcher
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*stitcher.Session
}

// NewServer creates a new server instance
func NewServer(version string, st *stitcher.Stitcher, logger *zap.Logger) *Server {
	return &Server{
		startTime: time.Now(),
		version:   version,
		stitcher:  st,
		logger:    logging.OrNop(logger),
		sessions:  make(map[uuid.UUID]*stitcher.Session),
	}
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

	s.writeJSON(w, http.StatusOK, response)
}

// CreateShiftArtifacts writes one shifted artifact per requested direction
func (s *Server) CreateShiftArtifacts(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	var req api.ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON",
			"Invalid JSON in request body", &requestID, nil)
		return
	}

	dirs, field, err := s.validateDirectionRequest(req.Source, req.Directions)
	if err != nil {
		s.writeValidationErrorResponse(w, field, err.Error(), &requestID)
		return
	}
	if !s.sourceExists(w, req.Source, &requestID) {
		return
	}

	paths, err := s.stitcher.Prepare(r.Context(), req.Source, dirs)
	if err != nil {
		s.handleStitchingError(w, err, &requestID)
		return
	}

	s.writeJSON(w, http.StatusOK, api.ShiftResponse{Artifacts: paths})
}

// CreatePanorama stitches the completed strips of each direction
func (s *Server) CreatePanorama(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	var req api.CombineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON",
			"Invalid JSON in request body", &requestID, nil)
		return
	}

	dirs, field, err := s.validateDirectionRequest(req.Source, req.Directions)
	if err != nil {
		s.writeValidationErrorResponse(w, field, err.Error(), &requestID)
		return
	}
	if !s.sourceExists(w, req.Source, &requestID) {
		return
	}

	out, err := s.stitcher.Combine(r.Context(), req.Source, dirs)
	if err != nil {
		s.handleStitchingError(w, err, &requestID)
		return
	}

	s.writeJSON(w, http.StatusOK, api.CombineResponse{Output: out})
}

// CreateSession prepares a tile-by-tile progression for one direction group
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	var req api.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON",
			"Invalid JSON in request body", &requestID, nil)
		return
	}

	if strings.TrimSpace(req.Source) == "" {
		s.writeValidationErrorResponse(w, "source", "source is required", &requestID)
		return
	}
	group, err := stitcher.SelectGroup([]string{string(req.Group)})
	if err != nil {
		s.writeValidationErrorResponse(w, "group", err.Error(), &requestID)
		return
	}
	if !s.sourceExists(w, req.Source, &requestID) {
		return
	}

	ss, err := s.stitcher.NewSession(r.Context(), req.Source, group)
	if err != nil {
		s.handleStitchingError(w, err, &requestID)
		return
	}

	id := uuid.New()
	s.mu.Lock()
	s.sessions[id] = ss
	s.mu.Unlock()

	s.logger.Info("Session created",
		zap.String("session", id.String()),
		zap.String("source", req.Source),
		zap.Stringer("group", group),
		zap.String("request_id", requestID))

	w.Header().Set("Location", "/api/v1/sessions/"+id.String())
	s.writeJSON(w, http.StatusCreated, toAPISession(id, ss, ss.Status()))
}

// GetSession reports the state of a session
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, sessionId api.SessionId) {
	requestID := requestIDFrom(r)

	ss, ok := s.session(sessionId)
	if !ok {
		s.writeErrorResponse(w, http.StatusNotFound, "SESSION_NOT_FOUND",
			fmt.Sprintf("session %s not found", sessionId), &requestID, nil)
		return
	}

	s.writeJSON(w, http.StatusOK, toAPISession(sessionId, ss, ss.Status()))
}

// MarkTileReady advances a session by one step
func (s *Server) MarkTileReady(w http.ResponseWriter, r *http.Request, sessionId api.SessionId) {
	requestID := requestIDFrom(r)

	ss, ok := s.session(sessionId)
	if !ok {
		s.writeErrorResponse(w, http.StatusNotFound, "SESSION_NOT_FOUND",
			fmt.Sprintf("session %s not found", sessionId), &requestID, nil)
		return
	}

	status, err := ss.TileReady(r.Context())
	if err != nil {
		s.handleStitchingError(w, err, &requestID)
		return
	}

	s.logger.Debug("Session advanced",
		zap.String("session", sessionId.String()),
		zap.Stringer("state", status.State),
		zap.String("pending", status.Pending))

	s.writeJSON(w, http.StatusOK, toAPISession(sessionId, ss, status))
}

// HandleParamError reports malformed path parameters in the API's error shape
func (s *Server) HandleParamError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := requestIDFrom(r)

	field := "request"
	var pe *api.InvalidParamFormatError
	if errors.As(err, &pe) {
		field = pe.ParamName
	}
	s.writeValidationErrorResponse(w, field, err.Error(), &requestID)
}

func (s *Server) session(id uuid.UUID) (*stitcher.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ss, ok := s.sessions[id]
	return ss, ok
}

// validateDirectionRequest validates the source and direction list shared by
// the shift and combine endpoints
func (s *Server) validateDirectionRequest(source string, names []api.Direction) ([]tile.Direction, string, error) {
	if strings.TrimSpace(source) == "" {
		return nil, "source", fmt.Errorf("source is required")
	}
	if len(names) == 0 {
		return nil, "directions", fmt.Errorf("at least one direction is required")
	}

	dirs := make([]tile.Direction, 0, len(names))
	for _, n := range names {
		d, err := tile.ParseDirection(string(n))
		if err != nil {
			return nil, "directions", err
		}
		dirs = append(dirs, d)
	}
	return dirs, "", nil
}

func (s *Server) sourceExists(w http.ResponseWriter, source string, requestID *string) bool {
	ok, err := s.stitcher.Processor().Exists(source)
	if err != nil {
		s.handleStitchingError(w, err, requestID)
		return false
	}
	if !ok {
		s.writeErrorResponse(w, http.StatusNotFound, "SOURCE_NOT_FOUND",
			fmt.Sprintf("source image %s not found", source), requestID, nil)
		return false
	}
	return true
}

// handleStitchingError maps workflow errors to API error responses
func (s *Server) handleStitchingError(w http.ResponseWriter, err error, requestID *string) {
	var missing *stitcher.DoneMissingError
	switch {
	case errors.As(err, &missing):
		s.writeErrorResponse(w, http.StatusConflict, "DONE_MISSING",
			"Completed artifact has not been written yet", requestID, map[string]interface{}{
				"path": missing.Path,
			})

	case errors.Is(err, stitcher.ErrSessionComplete):
		s.writeErrorResponse(w, http.StatusConflict, "SESSION_COMPLETE",
			"All directions are already complete", requestID, nil)

	case errors.Is(err, stitch.ErrShapeMismatch),
		errors.Is(err, stitch.ErrTileShape),
		errors.Is(err, stitch.ErrDirectionMismatch):
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, "SHAPE_MISMATCH",
			err.Error(), requestID, nil)

	case errors.Is(err, stitch.ErrUnknownDirection),
		errors.Is(err, stitch.ErrShiftRange),
		errors.Is(err, stitcher.ErrGroupCount),
		errors.Is(err, stitcher.ErrNoDirections):
		s.writeValidationErrorResponse(w, "request", err.Error(), requestID)

	case errors.Is(err, os.ErrNotExist):
		s.writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND",
			err.Error(), requestID, nil)

	case errors.Is(err, context.DeadlineExceeded):
		s.writeErrorResponse(w, http.StatusGatewayTimeout, "TIMEOUT",
			"Request timed out", requestID, nil)

	default:
		s.logger.Error("Request failed", zap.Error(err), zap.Stringp("request_id", requestID))
		s.writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Internal server error", requestID, nil)
	}
}

func toAPISession(id uuid.UUID, ss *stitcher.Session, st stitcher.Status) api.Session {
	out := api.Session{
		Id:     id,
		Source: ss.Source(),
		Group:  api.Group(ss.Group().Name()),
		State:  api.SessionState(st.State.String()),
		Parts:  make(map[string]int, len(st.Parts)),
	}
	for d, n := range st.Parts {
		out.Parts[d.String()] = n
	}
	if st.State == stitcher.AwaitingNextTile {
		dir := api.Direction(st.Direction.String())
		index := st.Index
		pending := st.Pending
		out.Direction = &dir
		out.Index = &index
		out.Pending = &pending
	}
	if st.Output != "" {
		output := st.Output
		out.Output = &output
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Error encoding response", zap.Error(err))
	}
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

	s.writeJSON(w, statusCode, response)
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

	s.writeJSON(w, http.StatusBadRequest, response)
}

// requestIDFrom returns the id assigned by the RequestID middleware, or a
// fresh one when the handler runs without it
func requestIDFrom(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return generateRequestID()
}

// generateRequestID generates a unique request ID
func generateRequestID() string {
	return "req_" + uuid.NewString()
}
