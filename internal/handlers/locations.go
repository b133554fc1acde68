package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/nakamago/pilgrimage/pkg/catalog"
	"github.com/nakamago/pilgrimage/pkg/state"
	"github.com/nakamago/pilgrimage/pkg/textfilter"
)

// Submissions are visible to other users, so free-text fields are
// sanitized before they are stored.
var profanityFilter = textfilter.NewProfanityFilter()

// LocationsResponse is the filtered map view plus the filter that
// produced it. MapCenter is the fallback coordinate for clients with
// no device position.
type LocationsResponse struct {
	Locations []catalog.Location   `json:"locations"`
	Filter    state.FilterCriteria `json:"filter"`
	Total     int                  `json:"total"`
	MapCenter catalog.Coordinate   `json:"map_center"`
}

func (h *SessionHandler) handleListLocations(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	s, ok := h.loadSession(w, r, sessionID)
	if !ok {
		return
	}

	cat, err := h.storage.GetCatalog(r.Context())
	if err != nil {
		h.logger.Error("Failed to load catalog", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load location catalog")
		return
	}

	locations := s.FilteredLocations(cat)
	resp := LocationsResponse{
		Locations: locations,
		Filter:    s.Filter,
		Total:     len(locations),
	}
	resp.MapCenter = catalog.DefaultMapCenter
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *SessionHandler) handleSubmitLocation(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	s, ok := h.loadSession(w, r, sessionID)
	if !ok {
		return
	}

	var draft catalog.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	draft.Name = profanityFilter.FilterText(draft.Name)
	draft.Description = profanityFilter.FilterText(draft.Description)
	draft.Comment = profanityFilter.FilterText(draft.Comment)

	loc, err := s.SubmitLocation(draft, s.UserName)
	if err != nil {
		h.logger.Warn("Location submission rejected", "error", err, "id", sessionID.String())
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.storage.SaveSession(r.Context(), s.ID, s); err != nil {
		h.logger.Error("Failed to save session after submission", "error", err, "id", s.ID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.logger.Info("Location submitted", "id", sessionID.String(), "location", loc.ID, "name", loc.Name)
	writeJSON(w, h.logger, http.StatusCreated, loc)
}

func (h *SessionHandler) handleFilter(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	s, ok := h.loadSession(w, r, sessionID)
	if !ok {
		return
	}

	var update state.FilterUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	s.SetFilter(update)

	if err := h.storage.SaveSession(r.Context(), s.ID, s); err != nil {
		h.logger.Error("Failed to save session after filter update", "error", err, "id", s.ID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, s.Filter)
}

// VisitRequest identifies the location being checked in at.
type VisitRequest struct {
	LocationID string `json:"location_id"`
}

// VisitResponse reports the visit outcome alongside the refreshed
// profile numbers, so clients can render the XP change in one round
// trip.
type VisitResponse struct {
	state.VisitResult
	Profile state.ProfileSummary `json:"profile"`
}

func (h *SessionHandler) handleVisit(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	s, ok := h.loadSession(w, r, sessionID)
	if !ok {
		return
	}

	var req VisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.LocationID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "location_id field is required")
		return
	}

	cat, err := h.storage.GetCatalog(r.Context())
	if err != nil {
		h.logger.Error("Failed to load catalog", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load location catalog")
		return
	}

	result, err := s.VisitLocation(cat, req.LocationID)
	if err != nil {
		if errors.Is(err, state.ErrLocationNotFound) {
			h.logger.Warn("Visit to unknown location", "location_id", req.LocationID, "id", sessionID.String())
			writeError(w, h.logger, http.StatusNotFound, "Location not found: "+req.LocationID)
			return
		}
		h.logger.Error("Visit failed", "error", err, "id", sessionID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to record visit")
		return
	}

	// Repeat visits change nothing, so skip the save.
	if !result.AlreadyVisited {
		if err := h.storage.SaveSession(r.Context(), s.ID, s); err != nil {
			h.logger.Error("Failed to save session after visit", "error", err, "id", s.ID.String())
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
			return
		}
	}

	h.logger.Info("Visit recorded", "id", sessionID.String(), "location", req.LocationID,
		"already_visited", result.AlreadyVisited, "xp_awarded", result.XPAwarded)
	writeJSON(w, h.logger, http.StatusOK, VisitResponse{
		VisitResult: result,
		Profile:     s.Profile(cat),
	})
}
