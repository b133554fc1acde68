package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nakamago/pilgrimage/internal/storage"
	"github.com/nakamago/pilgrimage/pkg/companion"
	"github.com/nakamago/pilgrimage/pkg/state"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes a response body with the given status code.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// SessionHandler owns the /v1/session URL space: session lifecycle
// plus the per-session progression subresources.
type SessionHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSessionHandler(storage storage.Storage, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for session operations
// Routes:
// POST /v1/session                     - Create new session
// GET /v1/session/{id}                 - Read session by ID
// DELETE /v1/session/{id}              - Delete session by ID
// POST /v1/session/{id}/restart        - Reset progression, keep identity
// GET /v1/session/{id}/locations       - Filtered location list
// POST /v1/session/{id}/locations      - Submit a new location
// PATCH /v1/session/{id}/filter        - Update map filter
// POST /v1/session/{id}/visit          - Check in at a location
// GET /v1/session/{id}/profile         - Derived profile summary
// GET /v1/session/{id}/missions        - Mission boards
// GET /v1/session/{id}/events          - Consume one-shot signals
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/session"), "/")

	if path == "" {
		if r.Method != http.MethodPost {
			h.logger.Warn("Method not allowed for session endpoint", "method", r.Method)
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	idStr, sub, _ := strings.Cut(path, "/")
	sessionID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", idStr, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, sessionID)
		case http.MethodDelete:
			h.handleDelete(w, r, sessionID)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}

	case "restart":
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleRestart(w, r, sessionID)

	case "locations":
		switch r.Method {
		case http.MethodGet:
			h.handleListLocations(w, r, sessionID)
		case http.MethodPost:
			h.handleSubmitLocation(w, r, sessionID)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, POST")
		}

	case "filter":
		if r.Method != http.MethodPatch {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: PATCH")
			return
		}
		h.handleFilter(w, r, sessionID)

	case "visit":
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleVisit(w, r, sessionID)

	case "profile":
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
			return
		}
		h.handleProfile(w, r, sessionID)

	case "missions":
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
			return
		}
		h.handleMissions(w, r, sessionID)

	case "events":
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
			return
		}
		h.handleEvents(w, r, sessionID)

	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown session resource: "+sub)
	}
}

// CreateSessionRequest defines the request body for creating a new session
type CreateSessionRequest struct {
	UserName    string       `json:"user_name"`              // Required: display name
	CompanionID companion.ID `json:"companion_id,omitempty"` // Optional: defaults to Sakura
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Creating new session")

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	req.UserName = strings.TrimSpace(req.UserName)
	if req.UserName == "" {
		h.logger.Warn("Missing required field: user_name")
		writeError(w, h.logger, http.StatusBadRequest, "user_name field is required")
		return
	}

	if req.CompanionID == "" {
		req.CompanionID = companion.DefaultID
	}
	comp, ok := companion.ByID(req.CompanionID)
	if !ok {
		h.logger.Warn("Unknown companion", "companion_id", req.CompanionID)
		writeError(w, h.logger, http.StatusBadRequest, "Unknown companion: "+string(req.CompanionID))
		return
	}

	s := state.NewSession(req.UserName, comp)

	if err := h.storage.SaveSession(r.Context(), s.ID, s); err != nil {
		h.logger.Error("Failed to save new session", "error", err, "id", s.ID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}

	h.logger.Debug("Session created successfully", "id", s.ID.String(), "companion", comp.ID)
	writeJSON(w, h.logger, http.StatusCreated, s)
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	s, ok := h.loadSession(w, r, sessionID)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	if err := h.storage.DeleteSession(r.Context(), sessionID); err != nil {
		h.logger.Error("Failed to delete session", "error", err, "id", sessionID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	h.logger.Debug("Session deleted successfully", "id", sessionID.String())
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleRestart(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	s, ok := h.loadSession(w, r, sessionID)
	if !ok {
		return
	}

	comp, found := companion.ByID(s.CompanionID)
	if !found {
		comp, _ = companion.ByID(companion.DefaultID)
	}
	s.Restart(comp)

	if err := h.storage.SaveSession(r.Context(), s.ID, s); err != nil {
		h.logger.Error("Failed to save restarted session", "error", err, "id", s.ID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to restart session")
		return
	}

	h.logger.Info("Session restarted", "id", s.ID.String())
	writeJSON(w, h.logger, http.StatusOK, s)
}

// loadSession fetches a session and writes the error response itself
// when the session is missing or storage fails.
func (h *SessionHandler) loadSession(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) (*state.Session, bool) {
	s, err := h.storage.LoadSession(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to load session", "error", err, "id", sessionID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return nil, false
	}
	if s == nil {
		h.logger.Warn("Session not found", "id", sessionID.String())
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return s, true
}
