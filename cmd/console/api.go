package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/nakamago/pilgrimage/internal/handlers"
	"github.com/nakamago/pilgrimage/pkg/chat"
	"github.com/nakamago/pilgrimage/pkg/companion"
	"github.com/nakamago/pilgrimage/pkg/state"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// decodeOrError reads an API response, mapping non-2xx bodies to the
// server's error message.
func decodeOrError(resp *http.Response, wantStatus int, v any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if v == nil {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func createSession(client *http.Client, baseURL, userName string, companionID companion.ID) (*state.Session, error) {
	req := handlers.CreateSessionRequest{
		UserName:    userName,
		CompanionID: companionID,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/session", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var s state.Session
	if err := decodeOrError(resp, http.StatusCreated, &s); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &s, nil
}

func getSession(client *http.Client, baseURL string, sessionID uuid.UUID) (*state.Session, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/session/%s", baseURL, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var s state.Session
	if err := decodeOrError(resp, http.StatusOK, &s); err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func restartSession(client *http.Client, baseURL string, sessionID uuid.UUID) (*state.Session, error) {
	resp, err := client.Post(fmt.Sprintf("%s/v1/session/%s/restart", baseURL, sessionID), "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var s state.Session
	if err := decodeOrError(resp, http.StatusOK, &s); err != nil {
		return nil, fmt.Errorf("failed to restart session: %w", err)
	}
	return &s, nil
}

func sendChat(client *http.Client, baseURL string, sessionID uuid.UUID, message string) (*chat.ChatResponse, error) {
	chatReq := chat.ChatRequest{
		SessionID: sessionID,
		Message:   message,
	}

	jsonData, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/chat", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var chatResp chat.ChatResponse
	if err := decodeOrError(resp, http.StatusOK, &chatResp); err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	return &chatResp, nil
}

func listLocations(client *http.Client, baseURL string, sessionID uuid.UUID) (*handlers.LocationsResponse, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/session/%s/locations", baseURL, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var locations handlers.LocationsResponse
	if err := decodeOrError(resp, http.StatusOK, &locations); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return &locations, nil
}

func visitLocation(client *http.Client, baseURL string, sessionID uuid.UUID, locationID string) (*handlers.VisitResponse, error) {
	jsonData, err := json.Marshal(handlers.VisitRequest{LocationID: locationID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(fmt.Sprintf("%s/v1/session/%s/visit", baseURL, sessionID),
		"application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var visit handlers.VisitResponse
	if err := decodeOrError(resp, http.StatusOK, &visit); err != nil {
		return nil, fmt.Errorf("failed to record visit: %w", err)
	}
	return &visit, nil
}

func updateFilter(client *http.Client, baseURL string, sessionID uuid.UUID, update state.FilterUpdate) (*state.FilterCriteria, error) {
	jsonData, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPatch,
		fmt.Sprintf("%s/v1/session/%s/filter", baseURL, sessionID), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var filter state.FilterCriteria
	if err := decodeOrError(resp, http.StatusOK, &filter); err != nil {
		return nil, fmt.Errorf("failed to update filter: %w", err)
	}
	return &filter, nil
}

func getProfile(client *http.Client, baseURL string, sessionID uuid.UUID) (*state.ProfileSummary, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/session/%s/profile", baseURL, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var profile state.ProfileSummary
	if err := decodeOrError(resp, http.StatusOK, &profile); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func getMissions(client *http.Client, baseURL string, sessionID uuid.UUID) (*handlers.MissionsResponse, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/session/%s/missions", baseURL, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var missions handlers.MissionsResponse
	if err := decodeOrError(resp, http.StatusOK, &missions); err != nil {
		return nil, fmt.Errorf("failed to get missions: %w", err)
	}
	return &missions, nil
}

func getEvents(client *http.Client, baseURL string, sessionID uuid.UUID) (*state.Events, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/session/%s/events", baseURL, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var events state.Events
	if err := decodeOrError(resp, http.StatusOK, &events); err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	return &events, nil
}
