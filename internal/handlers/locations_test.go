package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nakamago/pilgrimage/pkg/catalog"
	"github.com/nakamago/pilgrimage/pkg/state"
)

func TestSessionHandler_ListLocations(t *testing.T) {
	handler, mockStorage := setupSessionHandler(t)
	s := savedSession(t, mockStorage)

	req := httptest.NewRequest(http.MethodGet, "/v1/session/"+s.ID.String()+"/locations", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp LocationsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "loc_001", resp.Locations[0].ID)
	assert.Equal(t, "loc_002", resp.Locations[1].ID)
	assert.Equal(t, catalog.DefaultMapCenter, resp.MapCenter)
}

func TestSessionHandler_ListLocationsFiltered(t *testing.T) {
	handler, mockStorage := setupSessionHandler(t)
	s := savedSession(t, mockStorage)
	s.Filter = state.FilterCriteria{Series: "slam dunk"}
	require.NoError(t, mockStorage.SaveSession(context.Background(), s.ID, s))

	req := httptest.NewRequest(http.MethodGet, "/v1/session/"+s.ID.String()+"/locations", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp LocationsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "loc_002", resp.Locations[0].ID)
	assert.Equal(t, "slam dunk", resp.Filter.Series)
}

func TestSessionHandler_SubmitLocation(t *testing.T) {
	handler, mockStorage := setupSessionHandler(t)
	s := savedSession(t, mockStorage)

	body := bytes.NewBufferString(`{
		"name": "Hidden Alley Cafe",
		"series_name": "Steins;Gate",
		"category": "anime",
		"description": "Cafe glimpsed in episode 3",
		"lat": 35.7,
		"lng": 139.77
	}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/session/"+s.ID.String()+"/locations", body)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var loc catalog.Location
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&loc))
	assert.Equal(t, catalog.CategoryUserSubmitted, loc.Category)
	assert.Equal(t, "anime", loc.DisplayCategory)
	assert.Equal(t, "Hana", loc.SubmittedBy)
	assert.Equal(t, state.SubmissionXPReward, loc.XPReward)

	stored, err := mockStorage.LoadSession(context.Background(), s.ID)
	require.NoError(t, err)
	require.Len(t, stored.Submitted, 1)
	assert.Equal(t, loc.ID, stored.Submitted[0].ID)
}

func TestSessionHandler_SubmitLocationSanitized(t *testing.T) {
	handler, mockStorage := setupSessionHandler(t)
	s := savedSession(t, mockStorage)

	body := bytes.NewBufferString(`{
		"name": "Damn Steep Stairs",
		"series_name": "Your Name",
		"category": "anime",
		"description": "A hell of a climb",
		"comment": "worth it",
		"lat": 35.68,
		"lng": 139.73
	}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/session/"+s.ID.String()+"/locations", body)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var loc catalog.Location
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&loc))
	assert.Equal(t, "Dang Steep Stairs", loc.Name)
	assert.Equal(t, "A heck of a climb", loc.Description)
}

func TestSessionHandler_SubmitLocationRejected(t *testing.T) {
	handler, mockStorage := setupSessionHandler(t)
	s := savedSession(t, mockStorage)

	body := bytes.NewBufferString(`{"name": "", "category": "anime", "description": "d", "lat": 0, "lng": 0}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/session/"+s.ID.String()+"/locations", body)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	stored, err := mockStorage.LoadSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Submitted, "rejected draft leaves no trace")
}

func TestSessionHandler_UpdateFilter(t *testing.T) {
	handler, mockStorage := setupSessionHandler(t)
	s := savedSession(t, mockStorage)

	body := bytes.NewBufferString(`{"series": "Your Name", "category": "anime"}`)
	req := httptest.NewRequest(http.MethodPatch, "/v1/session/"+s.ID.String()+"/filter", body)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var filter state.FilterCriteria
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&filter))
	assert.Equal(t, "Your Name", filter.Series)
	assert.Equal(t, "anime", filter.Category)

	// A later partial update keeps untouched fields.
	body = bytes.NewBufferString(`{"query": "shrine"}`)
	req = httptest.NewRequest(http.MethodPatch, "/v1/session/"+s.ID.String()+"/filter", body)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&filter))
	assert.Equal(t, "Your Name", filter.Series)
	assert.Equal(t, "shrine", filter.Query)

	// Explicit empty string clears. Cleared fields are omitted from the
	// response, so decode into a fresh struct.
	body = bytes.NewBufferString(`{"series": ""}`)
	req = httptest.NewRequest(http.MethodPatch, "/v1/session/"+s.ID.String()+"/filter", body)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var cleared state.FilterCriteria
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&cleared))
	assert.Empty(t, cleared.Series)
	assert.Equal(t, "shrine", cleared.Query)
}

func TestSessionHandler_Visit(t *testing.T) {
	handler, mockStorage := setupSessionHandler(t)
	s := savedSession(t, mockStorage)

	body := bytes.NewBufferString(`{"location_id": "loc_001"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/session/"+s.ID.String()+"/visit", body)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp VisitResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.False(t, resp.AlreadyVisited)
	// 50 location XP + 50 daily visit mission bonus.
	assert.Equal(t, 100, resp.XPAwarded)
	assert.True(t, resp.LeveledUp)
	assert.Equal(t, 2, resp.Profile.Level)
	assert.Equal(t, 1, resp.Profile.TotalVisited)
}

func TestSessionHandler_VisitIdempotent(t *testing.T) {
	handler, mockStorage := setupSessionHandler(t)
	s := savedSession(t, mockStorage)

	for i := 0; i < 2; i++ {
		body := bytes.NewBufferString(`{"location_id": "loc_001"}`)
		req := httptest.NewRequest(http.MethodPost, "/v1/session/"+s.ID.String()+"/visit", body)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp VisitResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		if i == 0 {
			assert.False(t, resp.AlreadyVisited)
		} else {
			assert.True(t, resp.AlreadyVisited)
			assert.Zero(t, resp.XPAwarded)
		}
	}

	stored, err := mockStorage.LoadSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.XP, "second visit awarded nothing")
	assert.Equal(t, 1, stored.TotalVisited)
}

func TestSessionHandler_VisitUnknownLocation(t *testing.T) {
	handler, mockStorage := setupSessionHandler(t)
	s := savedSession(t, mockStorage)

	body := bytes.NewBufferString(`{"location_id": "loc_999"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/session/"+s.ID.String()+"/visit", body)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSessionHandler_VisitMissingLocationID(t *testing.T) {
	handler, mockStorage := setupSessionHandler(t)
	s := savedSession(t, mockStorage)

	body := bytes.NewBufferString(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/session/"+s.ID.String()+"/visit", body)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
