package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nakamago/pilgrimage/pkg/state"
)

func (h *SessionHandler) handleProfile(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
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

	writeJSON(w, h.logger, http.StatusOK, s.Profile(cat))
}

// MissionsResponse groups the mission boards by cadence.
type MissionsResponse struct {
	Daily  []state.Mission `json:"daily"`
	Weekly []state.Mission `json:"weekly"`
}

func (h *SessionHandler) handleMissions(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	s, ok := h.loadSession(w, r, sessionID)
	if !ok {
		return
	}

	resp := MissionsResponse{
		Daily:  make([]state.Mission, 0),
		Weekly: make([]state.Mission, 0),
	}
	for _, m := range s.MissionStatus() {
		switch m.Cadence {
		case state.CadenceWeekly:
			resp.Weekly = append(resp.Weekly, m)
		default:
			resp.Daily = append(resp.Daily, m)
		}
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

// handleEvents returns the pending one-shot signals and clears them:
// reading is the acknowledgment. Each level-up and mission completion
// is therefore reported exactly once.
func (h *SessionHandler) handleEvents(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	s, ok := h.loadSession(w, r, sessionID)
	if !ok {
		return
	}

	events := s.ConsumeEvents()

	if err := h.storage.SaveSession(r.Context(), s.ID, s); err != nil {
		h.logger.Error("Failed to save session after event ack", "error", err, "id", s.ID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, events)
}
