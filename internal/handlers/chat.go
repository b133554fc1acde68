package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/nakamago/pilgrimage/internal/services"
	"github.com/nakamago/pilgrimage/internal/storage"
	"github.com/nakamago/pilgrimage/pkg/chat"
	"github.com/nakamago/pilgrimage/pkg/companion"
	"github.com/nakamago/pilgrimage/pkg/state"
)

const chatTimeout = 30 * time.Second

// ChatHandler handles guide chat requests
type ChatHandler struct {
	guideService services.GuideService
	storage      storage.Storage
	logger       *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(guideService services.GuideService, logger *slog.Logger, storage storage.Storage) *ChatHandler {
	return &ChatHandler{
		guideService: guideService,
		storage:      storage,
		logger:       logger,
	}
}

// ServeHTTP handles HTTP requests for chat.
// A chat turn is: persona prompt + recent history to the guide model,
// directive extraction on the reply, then filter or navigation applied
// to the session before saving. When the model call fails the turn
// still succeeds with an in-character canned line.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for chat endpoint",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		writeJSON(w, h.logger, http.StatusMethodNotAllowed, chat.ChatResponse{
			Error: "Method not allowed. Only POST is supported.",
		})
		return
	}

	var request chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, chat.ChatResponse{
			Error: "Invalid request body. Expected JSON with 'session_id' and 'message' fields.",
		})
		return
	}

	if err := request.Validate(); err != nil {
		h.logger.Warn("Invalid chat request", "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, chat.ChatResponse{
			Error: err.Error(),
		})
		return
	}

	s, err := h.storage.LoadSession(r.Context(), request.SessionID)
	if err != nil {
		h.logger.Error("Failed to load session", "error", err, "id", request.SessionID.String())
		writeJSON(w, h.logger, http.StatusInternalServerError, chat.ChatResponse{
			Error: "Failed to load session",
		})
		return
	}
	if s == nil {
		h.logger.Warn("Session not found", "id", request.SessionID.String())
		writeJSON(w, h.logger, http.StatusNotFound, chat.ChatResponse{
			Error: "Session not found",
		})
		return
	}

	cat, err := h.storage.GetCatalog(r.Context())
	if err != nil {
		h.logger.Error("Failed to load catalog", "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, chat.ChatResponse{
			Error: "Failed to load location catalog",
		})
		return
	}

	comp, ok := companion.ByID(s.CompanionID)
	if !ok {
		comp, _ = companion.ByID(companion.DefaultID)
	}

	s.AppendMessage(chat.ChatRoleUser, request.Message)

	messages := make([]chat.ChatMessage, 0, state.PromptHistoryLimit+1)
	messages = append(messages, chat.ChatMessage{
		Role: chat.ChatRoleSystem,
		Content: comp.SystemPrompt(companion.UserContext{
			UserName:     s.UserName,
			Level:        s.Level(),
			VisitedCount: s.TotalVisited,
			Series:       cat.Series(),
		}),
	})
	messages = append(messages, s.HistoryWindow()...)

	ctx, cancel := context.WithTimeout(r.Context(), chatTimeout)
	defer cancel()

	var raw string
	guideResp, err := h.guideService.GetChatResponse(ctx, messages)
	if err != nil {
		// The guide stays in character even when the model is down.
		h.logger.Error("Guide call failed, using fallback line", "error", err, "id", s.ID.String())
		raw = comp.FallbackReply(s.ChatTurns)
	} else {
		raw = guideResp.Message
	}

	directive, clean := chat.ExtractDirective(raw)

	response := chat.ChatResponse{
		SessionID: s.ID,
		Message:   clean,
		Emotion:   string(companion.DetectEmotion(clean)),
	}

	s.RecordChatTurn()
	s.AppendMessage(chat.ChatRoleAgent, clean)

	switch directive.Type {
	case chat.DirectiveNavigate:
		if loc, found := s.RequestNavigation(cat, directive.Arg); found {
			response.NavigateTo = loc.ID
		} else {
			h.logger.Warn("Navigation target not found", "target", directive.Arg, "id", s.ID.String())
		}
	case chat.DirectiveFilter:
		s.RequestFilter(directive.Arg)
		response.FilterApplied = directive.Arg
	}

	if err := h.storage.SaveSession(r.Context(), s.ID, s); err != nil {
		h.logger.Error("Failed to save session after chat", "error", err, "id", s.ID.String())
		writeJSON(w, h.logger, http.StatusInternalServerError, chat.ChatResponse{
			Error: "Failed to save session",
		})
		return
	}

	writeJSON(w, h.logger, http.StatusOK, response)
}
