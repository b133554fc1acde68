package chat

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	ChatRoleUser   = "user"      // the pilgrim
	ChatRoleAgent  = "assistant" // the companion guide
	ChatRoleSystem = "system"    // persona and context injection
)

// ChatMessage is a single message in the guide conversation, in the
// role/content shape the chat-completion APIs expect.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a user chat turn addressed to the guide.
type ChatRequest struct {
	SessionID uuid.UUID `json:"session_id"`
	Message   string    `json:"message"`
}

func (cr *ChatRequest) Validate() error {
	if cr.SessionID == uuid.Nil {
		return fmt.Errorf("session_id cannot be empty")
	}
	if cr.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}

// ChatResponse is the guide's reply after directive extraction. The
// directive fields describe what the reply asked the map to do, not
// the raw tag text (which is stripped from Message).
type ChatResponse struct {
	SessionID     uuid.UUID `json:"session_id,omitempty"`
	Message       string    `json:"message,omitempty"`
	Emotion       string    `json:"emotion,omitempty"`
	NavigateTo    string    `json:"navigate_to,omitempty"`    // resolved location id
	FilterApplied string    `json:"filter_applied,omitempty"` // series filter now active
	Error         string    `json:"error,omitempty"`
}
