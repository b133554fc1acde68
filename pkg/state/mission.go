package state

// MissionType names the action a mission counts.
type MissionType string

const (
	MissionVisit  MissionType = "visit"
	MissionSubmit MissionType = "submit"
	MissionChat   MissionType = "chat"
)

// MissionCadence distinguishes the daily board from the weekly board.
type MissionCadence string

const (
	CadenceDaily  MissionCadence = "daily"
	CadenceWeekly MissionCadence = "weekly"
)

// Mission is a counted objective. Completed is a one-way latch: once
// progress reaches target the mission stays completed and its bonus XP
// is awarded exactly once, in the transition that completed it.
type Mission struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Type        MissionType    `json:"type"`
	Cadence     MissionCadence `json:"cadence"`
	Progress    int            `json:"progress"`
	Target      int            `json:"target"`
	XPReward    int            `json:"xp_reward"`
	Completed   bool           `json:"completed"`
}

// defaultMissions returns the starting mission boards. Progress is
// capped at target on write, so a completed mission never overshoots
// its stored progress.
func defaultMissions() []Mission {
	return []Mission{
		{ID: "mission_001", Description: "Visit 1 location", Type: MissionVisit, Cadence: CadenceDaily, Target: 1, XPReward: 50},
		{ID: "mission_002", Description: "Submit a new location", Type: MissionSubmit, Cadence: CadenceDaily, Target: 1, XPReward: 30},
		{ID: "mission_003", Description: "Chat with your guide 5 times", Type: MissionChat, Cadence: CadenceDaily, Target: 5, XPReward: 20},
		{ID: "mission_004", Description: "Visit 5 locations this week", Type: MissionVisit, Cadence: CadenceWeekly, Target: 5, XPReward: 150},
		{ID: "mission_005", Description: "Submit 3 locations this week", Type: MissionSubmit, Cadence: CadenceWeekly, Target: 3, XPReward: 100},
		{ID: "mission_006", Description: "Chat with your guide 20 times this week", Type: MissionChat, Cadence: CadenceWeekly, Target: 20, XPReward: 75},
	}
}

// advanceMissions moves every incomplete mission of the given type one
// step and returns the total bonus XP earned plus the ids of missions
// completed by this step. Callers fold the bonus into the same state
// transition so the level check sees one combined XP delta.
func (s *Session) advanceMissions(t MissionType) (bonus int, completed []string) {
	for i := range s.Missions {
		m := &s.Missions[i]
		if m.Type != t || m.Completed {
			continue
		}
		m.Progress++
		if m.Progress >= m.Target {
			m.Progress = m.Target
			m.Completed = true
			bonus += m.XPReward
			completed = append(completed, m.ID)
		}
	}
	return bonus, completed
}

// MissionStatus returns a snapshot copy of the mission boards.
func (s *Session) MissionStatus() []Mission {
	out := make([]Mission, len(s.Missions))
	copy(out, s.Missions)
	return out
}
