package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nakamago/pilgrimage/pkg/catalog"
	"github.com/nakamago/pilgrimage/pkg/companion"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Location{
		{
			ID: "loc_001", Name: "Suga Shrine Stairs", SeriesName: "Your Name",
			Lat: 35.6851, Lng: 139.7195,
			Description: "The famous staircase from the final scene",
			XPReward:    50, Difficulty: catalog.DifficultyEasy, Category: catalog.CategoryAnime,
		},
		{
			ID: "loc_002", Name: "Shirakawa-go Village", SeriesName: "Higurashi",
			Lat: 36.2578, Lng: 136.9061,
			Description: "Model for the village of Hinamizawa",
			XPReward:    80, Difficulty: catalog.DifficultyHard, Category: catalog.CategoryAnime,
		},
		{
			ID: "loc_003", Name: "Tokyo Big Sight", SeriesName: "Comic Party",
			Lat: 35.6298, Lng: 139.7947,
			Description: "Convention center hosting Comiket",
			XPReward:    30, Difficulty: catalog.DifficultyEasy, Category: catalog.CategoryManga,
		},
	})
	require.NoError(t, err)
	return cat
}

func testSession() *Session {
	comp, _ := companion.ByID(companion.DefaultID)
	return NewSession("Hana", comp)
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
		{999, 10},
		{-5, 1},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.level, LevelForXP(tc.xp), "xp=%d", tc.xp)
	}
}

func TestVisitLocation(t *testing.T) {
	cat := testCatalog(t)
	s := testSession()

	result, err := s.VisitLocation(cat, "loc_001")
	require.NoError(t, err)
	assert.False(t, result.AlreadyVisited)
	// 50 for the location plus 50 for the daily visit mission.
	assert.Equal(t, 100, result.XPAwarded)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, 100, s.XP)
	assert.Equal(t, 2, s.Level())
	assert.Equal(t, 1, s.TotalVisited)
	assert.True(t, s.JustLeveledUp)
	assert.Contains(t, s.MissionsJustCompleted, "mission_001")
}

func TestVisitLocationIdempotent(t *testing.T) {
	cat := testCatalog(t)
	s := testSession()

	first, err := s.VisitLocation(cat, "loc_001")
	require.NoError(t, err)
	require.False(t, first.AlreadyVisited)
	xpAfterFirst := s.XP

	second, err := s.VisitLocation(cat, "loc_001")
	require.NoError(t, err)
	assert.True(t, second.AlreadyVisited)
	assert.Zero(t, second.XPAwarded)
	assert.False(t, second.LeveledUp)
	assert.Equal(t, xpAfterFirst, s.XP)
	assert.Equal(t, 1, s.TotalVisited)
	assert.Len(t, s.Visited, 1)
}

func TestVisitLocationNotFound(t *testing.T) {
	cat := testCatalog(t)
	s := testSession()

	_, err := s.VisitLocation(cat, "loc_999")
	assert.ErrorIs(t, err, ErrLocationNotFound)
	assert.Zero(t, s.XP)
	assert.Empty(t, s.Visited)
}

func TestVisitLevelBoundary(t *testing.T) {
	cat := testCatalog(t)
	s := testSession()
	s.XP = 80

	// Visit mission already spent so only location XP counts here.
	s.Missions = []Mission{}

	result, err := s.VisitLocation(cat, "loc_003")
	require.NoError(t, err)
	assert.Equal(t, 30, result.XPAwarded)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, 110, s.XP)
	assert.Equal(t, 2, s.Level())
}

func TestMissionBonusAwardedOnce(t *testing.T) {
	cat := testCatalog(t)
	s := testSession()

	_, err := s.VisitLocation(cat, "loc_001")
	require.NoError(t, err)
	require.Contains(t, s.MissionsJustCompleted, "mission_001")
	s.ClearMissionsJustCompleted()

	second, err := s.VisitLocation(cat, "loc_002")
	require.NoError(t, err)
	// Daily visit mission is latched; only the weekly one advances and
	// it is not yet complete, so no bonus repeats.
	assert.Equal(t, 80, second.XPAwarded)
	assert.NotContains(t, s.MissionsJustCompleted, "mission_001")

	for _, m := range s.MissionStatus() {
		if m.ID == "mission_001" {
			assert.True(t, m.Completed)
			assert.Equal(t, m.Target, m.Progress)
		}
	}
}

func TestWeeklyMissionCompletes(t *testing.T) {
	s := testSession()
	locs := make([]catalog.Location, 5)
	for i := range locs {
		locs[i] = catalog.Location{
			ID: string(rune('a' + i)), Name: "Spot", SeriesName: "Series",
			Description: "d", XPReward: 10, Category: catalog.CategoryAnime,
		}
	}
	cat, err := catalog.New(locs)
	require.NoError(t, err)

	for i := range locs {
		_, err := s.VisitLocation(cat, locs[i].ID)
		require.NoError(t, err)
	}
	assert.Contains(t, s.MissionsJustCompleted, "mission_004")
	// 5 visits x 10 XP + daily 50 + weekly 150.
	assert.Equal(t, 250, s.XP)
}

func TestSubmitLocation(t *testing.T) {
	s := testSession()

	loc, err := s.SubmitLocation(catalog.Draft{
		Name:        "Hidden Alley Cafe",
		SeriesName:  "Steins;Gate",
		Category:    catalog.CategoryAnime,
		Description: "Cafe glimpsed in episode 3",
		Lat:         35.7,
		Lng:         139.77,
	}, "Hana")
	require.NoError(t, err)

	assert.True(t, len(loc.ID) > len("user_"))
	assert.Equal(t, "user_", loc.ID[:5])
	assert.Equal(t, catalog.CategoryUserSubmitted, loc.Category)
	assert.Equal(t, catalog.CategoryAnime, loc.DisplayCategory)
	assert.Equal(t, SubmissionXPReward, loc.XPReward)
	assert.Equal(t, catalog.DifficultyEasy, loc.Difficulty)
	assert.Equal(t, "Hana", loc.SubmittedBy)
	require.NotNil(t, loc.SubmittedAt)
	assert.Len(t, s.Submitted, 1)
	assert.Contains(t, s.MissionsJustCompleted, "mission_002")
	// Submission itself awards no XP; the daily submit mission does.
	assert.Equal(t, 30, s.XP)
}

func TestSubmitLocationRejectsInvalidDraft(t *testing.T) {
	tests := []struct {
		name  string
		draft catalog.Draft
		err   error
	}{
		{
			name:  "missing name",
			draft: catalog.Draft{Category: "anime", Description: "d", Lat: 1, Lng: 1},
			err:   catalog.ErrNameRequired,
		},
		{
			name:  "missing category",
			draft: catalog.Draft{Name: "n", Description: "d", Lat: 1, Lng: 1},
			err:   catalog.ErrCategoryRequired,
		},
		{
			name:  "missing description",
			draft: catalog.Draft{Name: "n", Category: "anime", Lat: 1, Lng: 1},
			err:   catalog.ErrDescriptionRequired,
		},
		{
			name:  "latitude out of range",
			draft: catalog.Draft{Name: "n", Category: "anime", Description: "d", Lat: 91, Lng: 0},
			err:   catalog.ErrCoordinatesInvalid,
		},
		{
			name:  "whitespace-only name",
			draft: catalog.Draft{Name: "   ", Category: "anime", Description: "d", Lat: 1, Lng: 1},
			err:   catalog.ErrNameRequired,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := testSession()
			_, err := s.SubmitLocation(tc.draft, "Hana")
			assert.ErrorIs(t, err, tc.err)
			assert.Empty(t, s.Submitted)
			assert.Zero(t, s.XP)
		})
	}
}

func TestVisitSubmittedLocation(t *testing.T) {
	cat := testCatalog(t)
	s := testSession()

	loc, err := s.SubmitLocation(catalog.Draft{
		Name: "Hidden Alley Cafe", Category: "anime",
		Description: "d", Lat: 35.7, Lng: 139.77,
	}, "Hana")
	require.NoError(t, err)

	result, err := s.VisitLocation(cat, loc.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadyVisited)
	// 25 submission reward + 50 daily visit mission.
	assert.Equal(t, 75, result.XPAwarded)
}

func TestRecordChatTurn(t *testing.T) {
	s := testSession()

	for i := 0; i < 5; i++ {
		s.RecordChatTurn()
	}
	assert.Equal(t, 5, s.ChatTurns)
	assert.Contains(t, s.MissionsJustCompleted, "mission_003")
	assert.Equal(t, 20, s.XP)

	s.ClearMissionsJustCompleted()
	s.RecordChatTurn()
	assert.NotContains(t, s.MissionsJustCompleted, "mission_003")
	assert.Equal(t, 20, s.XP)
}

func TestFilteredLocations(t *testing.T) {
	cat := testCatalog(t)
	s := testSession()

	_, err := s.SubmitLocation(catalog.Draft{
		Name: "Fan Mural", SeriesName: "Your Name", Category: "anime",
		Description: "d", Lat: 35.0, Lng: 139.0,
	}, "Hana")
	require.NoError(t, err)

	t.Run("default shows everything in order", func(t *testing.T) {
		got := s.FilteredLocations(cat)
		require.Len(t, got, 4)
		assert.Equal(t, "loc_001", got[0].ID)
		assert.Equal(t, "loc_002", got[1].ID)
		assert.Equal(t, "loc_003", got[2].ID)
		assert.Equal(t, "Fan Mural", got[3].Name)
	})

	t.Run("category is exact and excludes user-submitted", func(t *testing.T) {
		s.Filter = FilterCriteria{Category: catalog.CategoryAnime}
		got := s.FilteredLocations(cat)
		require.Len(t, got, 2)
		assert.Equal(t, "loc_001", got[0].ID)
		assert.Equal(t, "loc_002", got[1].ID)
	})

	t.Run("predicates compose conjunctively", func(t *testing.T) {
		s.Filter = FilterCriteria{Category: catalog.CategoryAnime, Query: "staircase", Series: "your name"}
		got := s.FilteredLocations(cat)
		require.Len(t, got, 1)
		assert.Equal(t, "loc_001", got[0].ID)
	})

	t.Run("query matches description", func(t *testing.T) {
		s.Filter = FilterCriteria{Query: "comiket"}
		got := s.FilteredLocations(cat)
		require.Len(t, got, 1)
		assert.Equal(t, "loc_003", got[0].ID)
	})

	t.Run("unmatched filter yields empty view", func(t *testing.T) {
		s.Filter = FilterCriteria{Series: "no such series"}
		assert.Empty(t, s.FilteredLocations(cat))
	})
}

func TestSetFilterPartialUpdate(t *testing.T) {
	s := testSession()
	series := "Your Name"
	s.SetFilter(FilterUpdate{Series: &series})
	assert.Equal(t, "Your Name", s.Filter.Series)

	query := "shrine"
	s.SetFilter(FilterUpdate{Query: &query})
	assert.Equal(t, "Your Name", s.Filter.Series, "unset fields keep prior value")
	assert.Equal(t, "shrine", s.Filter.Query)

	empty := ""
	s.SetFilter(FilterUpdate{Series: &empty})
	assert.Empty(t, s.Filter.Series, "explicit empty string clears")
	assert.Equal(t, "shrine", s.Filter.Query)
}

func TestRequestNavigation(t *testing.T) {
	cat := testCatalog(t)
	s := testSession()

	tests := []struct {
		name   string
		arg    string
		wantID string
		found  bool
	}{
		{"exact name", "Suga Shrine Stairs", "loc_001", true},
		{"substring of name", "suga shrine", "loc_001", true},
		{"series name", "higurashi", "loc_002", true},
		{"first match wins catalog order", "o", "loc_001", true},
		{"no match", "laputa", "", false},
		{"empty", "", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			loc, ok := s.RequestNavigation(cat, tc.arg)
			assert.Equal(t, tc.found, ok)
			if tc.found {
				assert.Equal(t, tc.wantID, loc.ID)
			}
		})
	}
}

func TestConsumeEvents(t *testing.T) {
	cat := testCatalog(t)
	s := testSession()

	_, err := s.VisitLocation(cat, "loc_001")
	require.NoError(t, err)

	ev := s.ConsumeEvents()
	assert.True(t, ev.JustLeveledUp)
	assert.Contains(t, ev.MissionsJustCompleted, "mission_001")

	again := s.ConsumeEvents()
	assert.False(t, again.JustLeveledUp)
	assert.Empty(t, again.MissionsJustCompleted)
}

func TestProfile(t *testing.T) {
	cat := testCatalog(t)
	s := testSession()
	s.Missions = []Mission{}

	_, err := s.VisitLocation(cat, "loc_001")
	require.NoError(t, err)

	p := s.Profile(cat)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 50, p.XP)
	assert.Equal(t, 50, p.XPToNextLevel)
	assert.Equal(t, 1, p.TotalVisited)
	assert.Equal(t, 33, p.CompletionPercent)
}

func TestRestart(t *testing.T) {
	cat := testCatalog(t)
	s := testSession()
	id := s.ID

	_, err := s.VisitLocation(cat, "loc_001")
	require.NoError(t, err)
	s.RecordChatTurn()
	require.NotZero(t, s.XP)

	comp, _ := companion.ByID(s.CompanionID)
	s.Restart(comp)

	assert.Equal(t, id, s.ID, "restart keeps identity")
	assert.Equal(t, "Hana", s.UserName)
	assert.Equal(t, companion.DefaultID, s.CompanionID)
	assert.Zero(t, s.XP)
	assert.Equal(t, 1, s.Level())
	assert.Empty(t, s.Visited)
	assert.Zero(t, s.ChatTurns)
	assert.False(t, s.JustLeveledUp)
	for _, m := range s.MissionStatus() {
		assert.False(t, m.Completed)
		assert.Zero(t, m.Progress)
	}
	// Fresh greeting only.
	require.Len(t, s.ChatHistory, 1)
}

func TestSessionSurvivesSerialization(t *testing.T) {
	cat := testCatalog(t)
	s := testSession()

	_, err := s.VisitLocation(cat, "loc_001")
	require.NoError(t, err)
	_, err = s.SubmitLocation(catalog.Draft{
		Name: "Fan Mural", Category: "anime", Description: "d", Lat: 35, Lng: 139,
	}, "Hana")
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var loaded Session
	require.NoError(t, json.Unmarshal(data, &loaded))

	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, s.XP, loaded.XP)
	assert.Equal(t, s.Visited, loaded.Visited)
	assert.Len(t, loaded.Submitted, 1)
	assert.Equal(t, s.MissionStatus(), loaded.MissionStatus())
	assert.Equal(t, s.Level(), loaded.Level())

	// Mission latches survive the round trip: revisiting awards nothing.
	result, err := loaded.VisitLocation(cat, "loc_001")
	require.NoError(t, err)
	assert.True(t, result.AlreadyVisited)
}

func TestHistoryWindow(t *testing.T) {
	s := testSession()
	s.ClearHistory()
	for i := 0; i < 25; i++ {
		s.AppendMessage("user", "message")
	}
	assert.Len(t, s.HistoryWindow(), PromptHistoryLimit)
	assert.Len(t, s.ChatHistory, 25, "window does not truncate stored history")
}
