package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nakamago/pilgrimage/pkg/catalog"
	"github.com/nakamago/pilgrimage/pkg/chat"
	"github.com/nakamago/pilgrimage/pkg/companion"
)

// XPPerLevel is the XP span of a single level: level = xp/100 + 1.
const XPPerLevel = 100

// SubmissionXPReward is the fixed reward assigned to user-submitted
// locations.
const SubmissionXPReward = 25

// PromptHistoryLimit caps how many chat messages are replayed to the
// guide per turn.
const PromptHistoryLimit = 10

var ErrLocationNotFound = errors.New("location not found")

// Session is a pilgrim's complete progression state: profile, visited
// set, submitted locations, mission boards, map filter and guide
// conversation. It is the single mutation gateway of the service;
// every action is a synchronous all-or-nothing transition on this
// snapshot, and handlers persist the whole snapshot after each action.
type Session struct {
	ID          uuid.UUID    `json:"id"`
	UserName    string       `json:"user_name"`
	CompanionID companion.ID `json:"companion_id"`

	XP           int      `json:"xp"`
	TotalVisited int      `json:"total_visited"`
	Visited      []string `json:"visited,omitempty"`

	Submitted []catalog.Location `json:"submitted,omitempty"`
	Missions  []Mission          `json:"missions,omitempty"`
	Filter    FilterCriteria     `json:"filter"`

	ChatHistory []chat.ChatMessage `json:"chat_history,omitempty"`
	ChatTurns   int                `json:"chat_turns"`

	// One-shot signals, cleared by acknowledgment.
	JustLeveledUp         bool     `json:"just_leveled_up,omitempty"`
	MissionsJustCompleted []string `json:"missions_just_completed,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a fresh session for a named user and companion,
// seeding the conversation with the companion's greeting.
func NewSession(userName string, comp companion.Companion) *Session {
	s := &Session{
		ID:          uuid.New(),
		UserName:    userName,
		CompanionID: comp.ID,
		Missions:    defaultMissions(),
		Filter:      FilterCriteria{Category: catalog.CategoryAll},
		ChatHistory: make([]chat.ChatMessage, 0),
		CreatedAt:   time.Now().UTC(),
	}
	s.ChatHistory = append(s.ChatHistory, chat.ChatMessage{
		Role:    chat.ChatRoleAgent,
		Content: comp.Greeting(userName),
	})
	return s
}

// Level derives the current level from XP. Level is never stored, so
// it cannot drift from XP.
func (s *Session) Level() int {
	return LevelForXP(s.XP)
}

// LevelForXP is the progression formula: floor(xp/100) + 1.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// gainXP folds an XP delta into the session and latches the level-up
// signal if the delta crossed a level boundary.
func (s *Session) gainXP(delta int) (leveledUp bool) {
	before := s.Level()
	s.XP += delta
	if s.Level() > before {
		s.JustLeveledUp = true
		return true
	}
	return false
}

// VisitResult reports what a visit attempt did. AlreadyVisited is a
// status, not an error: re-checking in at a visited spot is a normal
// UI path and changes nothing.
type VisitResult struct {
	AlreadyVisited bool `json:"already_visited"`
	LeveledUp      bool `json:"leveled_up"`
	XPAwarded      int  `json:"xp_awarded"`
}

// VisitLocation checks the pilgrim in at a location. First visits
// award the location's XP plus any mission bonuses earned in the same
// transition; repeat visits are no-ops. The membership check and the
// award happen in one transition, so a visit can never double-award.
func (s *Session) VisitLocation(cat *catalog.Catalog, locationID string) (VisitResult, error) {
	loc, ok := s.resolve(cat, locationID)
	if !ok {
		return VisitResult{}, fmt.Errorf("%w: %s", ErrLocationNotFound, locationID)
	}
	if s.hasVisited(locationID) {
		return VisitResult{AlreadyVisited: true}, nil
	}

	s.Visited = append(s.Visited, locationID)
	s.TotalVisited = len(s.Visited)

	bonus, completed := s.advanceMissions(MissionVisit)
	s.MissionsJustCompleted = append(s.MissionsJustCompleted, completed...)

	awarded := loc.XPReward + bonus
	leveledUp := s.gainXP(awarded)
	s.touch()

	return VisitResult{LeveledUp: leveledUp, XPAwarded: awarded}, nil
}

// SubmitLocation validates a draft and appends it to the session's
// submitted list with a store-assigned id, the fixed submission reward
// and Easy difficulty. The user's chosen category is kept as the
// display category; the canonical category is "user-submitted".
// Validation failures reject the draft without mutating anything.
func (s *Session) SubmitLocation(draft catalog.Draft, submittedBy string) (catalog.Location, error) {
	if err := draft.Validate(); err != nil {
		return catalog.Location{}, err
	}

	now := time.Now().UTC()
	loc := catalog.Location{
		ID:              "user_" + uuid.NewString(),
		Name:            draft.Name,
		SeriesName:      draft.SeriesName,
		Lat:             draft.Lat,
		Lng:             draft.Lng,
		Description:     draft.Description,
		ImageURL:        draft.ImageURL,
		XPReward:        SubmissionXPReward,
		Difficulty:      catalog.DifficultyEasy,
		Category:        catalog.CategoryUserSubmitted,
		DisplayCategory: draft.Category,
		Comment:         draft.Comment,
		SubmittedBy:     submittedBy,
		SubmittedAt:     &now,
	}
	s.Submitted = append(s.Submitted, loc)

	bonus, completed := s.advanceMissions(MissionSubmit)
	s.MissionsJustCompleted = append(s.MissionsJustCompleted, completed...)
	if bonus > 0 {
		s.gainXP(bonus)
	}
	s.touch()

	return loc, nil
}

// RecordChatTurn counts a user-initiated chat message toward chat
// missions.
func (s *Session) RecordChatTurn() {
	s.ChatTurns++
	bonus, completed := s.advanceMissions(MissionChat)
	s.MissionsJustCompleted = append(s.MissionsJustCompleted, completed...)
	if bonus > 0 {
		s.gainXP(bonus)
	}
	s.touch()
}

// AppendMessage adds a message to the conversation history.
func (s *Session) AppendMessage(role, content string) {
	s.ChatHistory = append(s.ChatHistory, chat.ChatMessage{Role: role, Content: content})
}

// ClearHistory drops the conversation, keeping progression intact.
func (s *Session) ClearHistory() {
	s.ChatHistory = s.ChatHistory[:0]
}

// HistoryWindow returns the most recent messages for prompt replay.
func (s *Session) HistoryWindow() []chat.ChatMessage {
	if len(s.ChatHistory) <= PromptHistoryLimit {
		return s.ChatHistory
	}
	return s.ChatHistory[len(s.ChatHistory)-PromptHistoryLimit:]
}

// ProfileSummary is the derived profile view for rendering.
type ProfileSummary struct {
	Level             int `json:"level"`
	XP                int `json:"xp"`
	XPToNextLevel     int `json:"xp_to_next_level"`
	TotalVisited      int `json:"total_visited"`
	CompletionPercent int `json:"completion_percent"`
}

// Profile derives the summary against the combined catalog size.
func (s *Session) Profile(cat *catalog.Catalog) ProfileSummary {
	total := cat.Len() + len(s.Submitted)
	percent := 0
	if total > 0 {
		percent = s.TotalVisited * 100 / total
	}
	return ProfileSummary{
		Level:             s.Level(),
		XP:                s.XP,
		XPToNextLevel:     XPPerLevel - s.XP%XPPerLevel,
		TotalVisited:      s.TotalVisited,
		CompletionPercent: percent,
	}
}

// Events is the one-shot signal payload consumed by the presentation
// layer.
type Events struct {
	JustLeveledUp         bool     `json:"just_leveled_up"`
	MissionsJustCompleted []string `json:"missions_just_completed,omitempty"`
}

// ConsumeEvents returns the pending one-shot signals and clears them.
func (s *Session) ConsumeEvents() Events {
	ev := Events{
		JustLeveledUp:         s.JustLeveledUp,
		MissionsJustCompleted: s.MissionsJustCompleted,
	}
	s.ClearJustLeveledUp()
	s.ClearMissionsJustCompleted()
	return ev
}

// ClearJustLeveledUp acknowledges the level-up signal.
func (s *Session) ClearJustLeveledUp() {
	s.JustLeveledUp = false
}

// ClearMissionsJustCompleted acknowledges the mission-completed signal.
func (s *Session) ClearMissionsJustCompleted() {
	s.MissionsJustCompleted = nil
}

// Restart wipes progression back to a fresh session, keeping the
// pilgrim's identity and companion choice.
func (s *Session) Restart(comp companion.Companion) {
	fresh := NewSession(s.UserName, comp)
	fresh.ID = s.ID
	fresh.CreatedAt = s.CreatedAt
	*s = *fresh
	s.touch()
}

// resolve finds a location in the combined catalog: built-in first,
// then user-submitted.
func (s *Session) resolve(cat *catalog.Catalog, id string) (catalog.Location, bool) {
	if loc, ok := cat.Get(id); ok {
		return loc, true
	}
	for _, loc := range s.Submitted {
		if loc.ID == id {
			return loc, true
		}
	}
	return catalog.Location{}, false
}

func (s *Session) hasVisited(id string) bool {
	for _, v := range s.Visited {
		if v == id {
			return true
		}
	}
	return false
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
