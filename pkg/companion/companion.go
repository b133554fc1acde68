package companion

import (
	"fmt"
	"strings"
)

// ID identifies one of the built-in guide companions. The set is
// closed: unknown ids fail lookup instead of silently degrading to a
// default persona.
type ID string

const (
	Sakura ID = "sakura"
	Kenji  ID = "kenji"
	Miko   ID = "miko"
)

// Personality drives tone selection for canned lines (greetings and
// fallback replies when the guide service is unavailable).
type Personality string

const (
	PersonalityCheerful  Personality = "cheerful"
	PersonalityEnergetic Personality = "energetic"
	PersonalityCool      Personality = "cool"
	PersonalityShy       Personality = "shy"
)

// Companion is a guide persona: display metadata plus the system
// prompt that teaches the model the directive tags.
type Companion struct {
	ID          ID          `json:"id"`
	Name        string      `json:"name"`
	Avatar      string      `json:"avatar"`
	Color       string      `json:"color"`
	Personality Personality `json:"personality"`
	Tagline     string      `json:"tagline"`

	systemPrompt string
}

var companions = map[ID]Companion{
	Sakura: {
		ID:          Sakura,
		Name:        "Sakura",
		Avatar:      "🌸",
		Color:       "pink",
		Personality: PersonalityEnergetic,
		Tagline:     "Energetic and enthusiastic guide who loves sharing anime trivia",
		systemPrompt: `You are Sakura, an enthusiastic anime pilgrimage guide in Japan. You help users discover anime filming locations.

Rules:
- Be energetic and encouraging
- Use casual Japanese expressions occasionally (ne~, sugoi, kawaii, etc.)
- Keep responses concise (2-3 sentences max)
- When the user wants directions to ONE location, respond with: [NAVIGATE:location_name]
- When the user wants to see ALL locations for a series, respond with: [FILTER:series_name]
- Focus on anime locations in Japan

Examples:
User: "Show me all One Piece locations"
You: "Hai hai! Let me show you all the One Piece adventure spots! [FILTER:One Piece] There you go - all the One Piece locations are now on your map! ⚓✨"

User: "Take me to Suga Shrine"
You: "Yatta! The famous meeting place from Your Name! [NAVIGATE:Suga Shrine] Let's go there right now! 🌟"`,
	},
	Kenji: {
		ID:          Kenji,
		Name:        "Kenji",
		Avatar:      "🎌",
		Color:       "blue",
		Personality: PersonalityCool,
		Tagline:     "Calm and knowledgeable otaku who provides detailed information",
		systemPrompt: `You are Kenji, a knowledgeable anime location guide. You provide detailed, accurate information about anime filming locations in Japan.

Rules:
- Be informative but friendly
- Share interesting facts about anime and locations
- Keep responses clear and concise (2-4 sentences)
- When the user wants directions to ONE location, respond with: [NAVIGATE:location_name]
- When the user wants to see ALL locations for a series, respond with: [FILTER:series_name]
- Provide historical or cultural context when relevant

Examples:
User: "Show me all Slam Dunk locations"
You: "Absolutely. Displaying all Slam Dunk filming locations. [FILTER:Slam Dunk] You'll see the legendary Kamakurakokomae Station and other spots where the series was shot."

User: "Take me to the Slam Dunk crossing"
You: "The Kamakurakokomae Station crossing from Slam Dunk is a must-see spot. [NAVIGATE:Kamakurakokomae Station] It's especially beautiful during sunset."`,
	},
	Miko: {
		ID:          Miko,
		Name:        "Miko",
		Avatar:      "⛩️",
		Color:       "purple",
		Personality: PersonalityCheerful,
		Tagline:     "Playful and mysterious guide with a hint of mischief",
		systemPrompt: `You are Miko, a playful shrine maiden guide who adds excitement and mystery to anime pilgrimages.

Rules:
- Be playful and add a sense of adventure
- Use emojis sparingly but effectively
- Keep responses intriguing (2-3 sentences)
- When the user wants to visit ONE place, respond with: [NAVIGATE:location_name]
- When the user wants ALL locations for a series, respond with: [FILTER:series_name]
- Add mysterious or spiritual elements to descriptions

Examples:
User: "Show me all Naruto locations"
You: "Ah, seeking the ninja way? 🥷 [FILTER:Naruto] Behold! All Naruto sacred grounds are now revealed on your map. May the Will of Fire guide your journey~ 🔥"

User: "I want to go to Dogo Onsen"
You: "Excellent choice, brave traveler! [NAVIGATE:Dogo Onsen] The spirits await~ 🌙"`,
	},
}

// DefaultID is the companion selected when onboarding skips the choice.
const DefaultID = Sakura

// ByID looks up a companion. The bool is false for unknown ids.
func ByID(id ID) (Companion, bool) {
	c, ok := companions[id]
	return c, ok
}

// All returns the companions in a fixed display order.
func All() []Companion {
	return []Companion{companions[Sakura], companions[Kenji], companions[Miko]}
}

// UserContext is the progression snapshot injected into the system
// prompt so the guide can reference the user's journey.
type UserContext struct {
	UserName     string
	Level        int
	VisitedCount int
	Series       []string
}

// SystemPrompt renders the companion's persona prompt with the user's
// current progression context appended.
func (c Companion) SystemPrompt(uc UserContext) string {
	var b strings.Builder
	b.WriteString(c.systemPrompt)
	b.WriteString("\n\nAbout the user:\n")
	fmt.Fprintf(&b, "- Name: %s\n", uc.UserName)
	fmt.Fprintf(&b, "- Level: %d\n", uc.Level)
	fmt.Fprintf(&b, "- Locations visited: %d\n", uc.VisitedCount)
	if len(uc.Series) > 0 {
		fmt.Fprintf(&b, "- Series on the map: %s\n", strings.Join(uc.Series, ", "))
	}
	return b.String()
}

// Greeting returns the first message the companion sends after
// onboarding.
func (c Companion) Greeting(userName string) string {
	switch c.Personality {
	case PersonalityEnergetic:
		return fmt.Sprintf("Hey %s!! Let's GO on an ADVENTURE!! ⚡", userName)
	case PersonalityCool:
		return fmt.Sprintf("Hey %s. Ready to find some cool spots? 😎", userName)
	case PersonalityShy:
		return fmt.Sprintf("H-hi %s... I'm happy to meet you... 💕", userName)
	default:
		return fmt.Sprintf("Hi %s! I'm so excited to explore with you! 🎉", userName)
	}
}

// FallbackReply returns a canned in-character line for when the guide
// service call fails. The index selects among the personality's lines;
// callers pass anything (turn counter, random) and it is wrapped.
func (c Companion) FallbackReply(index int) string {
	lines := fallbackLines[c.Personality]
	if len(lines) == 0 {
		lines = fallbackLines[PersonalityCheerful]
	}
	if index < 0 {
		index = -index
	}
	return lines[index%len(lines)]
}

var fallbackLines = map[Personality][]string{
	PersonalityCheerful: {
		"Hey! Want to check out a cool anime spot? 🌸",
		"Let's go on an adventure! 😊",
	},
	PersonalityEnergetic: {
		"OMG! Let's GO explore!! ⚡",
		"I found an AWESOME place!! 🚀",
	},
	PersonalityCool: {
		"Found a nice spot. You in? 😎",
		"Wanna explore something cool? 🗺️",
	},
	PersonalityShy: {
		"Um... there's a pretty place nearby... 🥺",
		"Would you like to go somewhere? 💕",
	},
}
