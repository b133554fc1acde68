package services

import (
	"context"

	"github.com/nakamago/pilgrimage/pkg/chat"
)

// GuideService defines the interface for the companion guide model
type GuideService interface {
	// InitModel initializes the guide model on startup
	InitModel(ctx context.Context, modelName string) error

	// GetChatResponse generates a raw guide reply. Directive tags are
	// still embedded in the returned message; callers extract them.
	GetChatResponse(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)

	// IsModelReady checks if the specified model is ready for use
	IsModelReady(ctx context.Context, modelName string) (bool, error)
}
