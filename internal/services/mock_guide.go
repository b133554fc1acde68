package services

import (
	"context"
	"sync"

	"github.com/nakamago/pilgrimage/pkg/chat"
)

// MockGuideAPI is a mock implementation of GuideService for testing
type MockGuideAPI struct {
	InitModelFunc       func(ctx context.Context, modelName string) error
	GetChatResponseFunc func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
	IsModelReadyFunc    func(ctx context.Context, modelName string) (bool, error)

	// Track calls for testing
	InitModelCalls       []string
	GetChatResponseCalls []GetChatResponseCall
	IsModelReadyCalls    []string

	mu sync.Mutex // protects all fields above
}

type GetChatResponseCall struct {
	Messages []chat.ChatMessage
}

// Ensure MockGuideAPI implements GuideService interface
var _ GuideService = (*MockGuideAPI)(nil)

// NewMockGuideAPI creates a new mock guide service
func NewMockGuideAPI() *MockGuideAPI {
	return &MockGuideAPI{
		InitModelCalls:       make([]string, 0),
		GetChatResponseCalls: make([]GetChatResponseCall, 0),
		IsModelReadyCalls:    make([]string, 0),
	}
}

// InitModel mocks model initialization
func (m *MockGuideAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)

	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

// GetChatResponse mocks reply generation
func (m *MockGuideAPI) GetChatResponse(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetChatResponseCalls = append(m.GetChatResponseCalls, GetChatResponseCall{
		Messages: messages,
	})

	if m.GetChatResponseFunc != nil {
		return m.GetChatResponseFunc(ctx, messages)
	}

	return &chat.ChatResponse{
		Message: "Mock guide reply",
	}, nil
}

// IsModelReady mocks model readiness check
func (m *MockGuideAPI) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IsModelReadyCalls = append(m.IsModelReadyCalls, modelName)

	if m.IsModelReadyFunc != nil {
		return m.IsModelReadyFunc(ctx, modelName)
	}
	return true, nil
}

// SetGetChatResponseError sets up the mock to fail reply generation
func (m *MockGuideAPI) SetGetChatResponseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetChatResponseFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return nil, err
	}
}

// SetReply sets up the mock to return a fixed raw reply
func (m *MockGuideAPI) SetReply(reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetChatResponseFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return &chat.ChatResponse{Message: reply}, nil
	}
}

// Reset clears all call tracking
func (m *MockGuideAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.GetChatResponseCalls = make([]GetChatResponseCall, 0)
	m.IsModelReadyCalls = make([]string, 0)
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockGuideAPI) GetCalls() ([]string, []GetChatResponseCall, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	initCalls := make([]string, len(m.InitModelCalls))
	copy(initCalls, m.InitModelCalls)

	respCalls := make([]GetChatResponseCall, len(m.GetChatResponseCalls))
	copy(respCalls, m.GetChatResponseCalls)

	readyCalls := make([]string, len(m.IsModelReadyCalls))
	copy(readyCalls, m.IsModelReadyCalls)

	return initCalls, respCalls, readyCalls
}
