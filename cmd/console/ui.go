package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nakamago/pilgrimage/internal/handlers"
	"github.com/nakamago/pilgrimage/pkg/chat"
	"github.com/nakamago/pilgrimage/pkg/companion"
	"github.com/nakamago/pilgrimage/pkg/state"
)

const PlaceHolderText = "Ask your guide anything..."

var titleCaser = cases.Title(language.English)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	session      *state.Session
	profile      *state.ProfileSummary
	missions     *handlers.MissionsResponse
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Local activity feed: visit results, level-ups, completed
	// missions. These live only in the UI, not in chat history.
	activity []string

	// Last guide reply, for the /copy command.
	lastReply string

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type chatResponseMsg struct {
	response *chat.ChatResponse
	err      error
}

type sessionMsg struct {
	session  *state.Session
	profile  *state.ProfileSummary
	missions *handlers.MissionsResponse
	events   *state.Events
	err      error
}

type visitMsg struct {
	visit *handlers.VisitResponse
	err   error
}

type locationsMsg struct {
	locations *handlers.LocationsResponse
	err       error
}

type filterMsg struct {
	filter *state.FilterCriteria
	err    error
}

type restartMsg struct {
	session *state.Session
	err     error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	guideStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	activityStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")) // gold

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, s *state.Session) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		client:       client,
		session:      s,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		ready:        false,
	}
}

func (m *ConsoleUI) guideName() string {
	if c, ok := companion.ByID(m.session.CompanionID); ok {
		return c.Name
	}
	return "Guide"
}

// writeChatContent rebuilds the chat panel from session history plus
// the local activity feed, wrapped for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("ANIME PILGRIMAGE") + "\n\n")
	content.WriteString(fmt.Sprintf("Exploring with %s. Ask about locations, series, or directions.\n\n", m.guideName()))
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth-6)) + "\n\n")

	for _, msg := range m.session.ChatHistory {
		switch msg.Role {
		case chat.ChatRoleAgent:
			content.WriteString(m.formatGuideReply(msg.Content, chatWidth) + "\n\n")
		case chat.ChatRoleUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Content, chatWidth-6) + "\n\n")
		}
	}

	for _, line := range m.activity {
		content.WriteString(activityStyle.Render(wordwrap.String(line, chatWidth-4)) + "\n\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) formatGuideReply(reply string, width int) string {
	prefix := m.guideName() + ": "
	wrapped := wordwrap.String(reply, width-len(prefix))
	return speakerStyle.Render(prefix) + guideStyle.Render(wrapped)
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("PILGRIMAGE") + "\n\n")

	content.WriteString("Traveler:\n")
	content.WriteString(m.session.UserName + "\n\n")

	content.WriteString("Guide:\n")
	content.WriteString(m.guideName() + "\n\n")

	if m.profile != nil {
		content.WriteString(fmt.Sprintf("Level %d\n", m.profile.Level))
		content.WriteString(fmt.Sprintf("%d XP (%d to next)\n", m.profile.XP, m.profile.XPToNextLevel))
		content.WriteString(fmt.Sprintf("Visited: %d (%d%%)\n\n", m.profile.TotalVisited, m.profile.CompletionPercent))
	}

	content.WriteString("Filter:\n")
	if m.session.Filter.Series != "" {
		content.WriteString("Series: " + titleCaser.String(m.session.Filter.Series) + "\n")
	}
	if m.session.Filter.Query != "" {
		content.WriteString("Query: " + m.session.Filter.Query + "\n")
	}
	if m.session.Filter.Series == "" && m.session.Filter.Query == "" {
		content.WriteString("All locations\n")
	}
	content.WriteString("\n")

	if m.missions != nil {
		content.WriteString("Daily missions:\n")
		for _, mission := range m.missions.Daily {
			content.WriteString(formatMission(mission))
		}
		content.WriteString("\nWeekly missions:\n")
		for _, mission := range m.missions.Weekly {
			content.WriteString(formatMission(mission))
		}
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• /locations\n")
	content.WriteString("• /visit <id>\n")
	content.WriteString("• /filter <series>\n")
	content.WriteString("• /missions\n")
	content.WriteString("• /restart\n")
	content.WriteString("• /copy\n")
	content.WriteString("• /help\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func formatMission(mission state.Mission) string {
	mark := "○"
	if mission.Completed {
		mark = "●"
	}
	return fmt.Sprintf("%s %s (%d/%d)\n", mark, mission.Description, mission.Progress, mission.Target)
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.refreshSession())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0

			// Echo the user turn locally; the server appends it to
			// history as part of the chat request.
			m.session.ChatHistory = append(m.session.ChatHistory, chat.ChatMessage{
				Role:    chat.ChatRoleUser,
				Content: input,
			})
			m.writeChatContent()

			return m, tea.Batch(m.sendChat(input), progressTick())
		}

	case chatResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.writeChatContent()
			currentContent := m.chatViewport.View()
			errorMsg := errorStyle.Render("Error: "+msg.err.Error()) + "\n\n"
			m.chatViewport.SetContent(currentContent + errorMsg)
		} else {
			m.lastReply = msg.response.Message
			m.session.ChatHistory = append(m.session.ChatHistory, chat.ChatMessage{
				Role:    chat.ChatRoleAgent,
				Content: msg.response.Message,
			})
			if msg.response.NavigateTo != "" {
				m.activity = append(m.activity, fmt.Sprintf("▶ Navigating to %s", msg.response.NavigateTo))
			}
			if msg.response.FilterApplied != "" {
				m.activity = append(m.activity, fmt.Sprintf("▶ Map filtered to %s", titleCaser.String(msg.response.FilterApplied)))
			}
			m.writeChatContent()
		}
		m.chatViewport.GotoBottom()
		return m, m.refreshSession()

	case sessionMsg:
		if msg.err == nil && msg.session != nil {
			m.session = msg.session
			m.profile = msg.profile
			m.missions = msg.missions
			if msg.events != nil {
				m.appendEventActivity(msg.events)
			}
			m.writeChatContent()
			m.metaViewport.SetContent(m.writeMetadata())
		}

	case visitMsg:
		m.loading = false
		if msg.err != nil {
			m.activity = append(m.activity, "✗ "+msg.err.Error())
		} else if msg.visit.AlreadyVisited {
			m.activity = append(m.activity, "You have already visited this location.")
		} else {
			m.activity = append(m.activity, fmt.Sprintf("📍 Visit recorded! +%d XP", msg.visit.XPAwarded))
		}
		m.writeChatContent()
		return m, m.refreshSession()

	case locationsMsg:
		if msg.err != nil {
			m.activity = append(m.activity, "✗ "+msg.err.Error())
		} else {
			m.activity = append(m.activity, formatLocationList(msg.locations))
		}
		m.writeChatContent()

	case filterMsg:
		if msg.err != nil {
			m.activity = append(m.activity, "✗ "+msg.err.Error())
		} else {
			m.session.Filter = *msg.filter
			m.activity = append(m.activity, "Filter updated.")
			m.metaViewport.SetContent(m.writeMetadata())
		}
		m.writeChatContent()

	case restartMsg:
		m.loading = false
		if msg.err != nil {
			m.activity = append(m.activity, "✗ "+msg.err.Error())
		} else {
			m.session = msg.session
			m.lastReply = ""
			m.activity = []string{"Journey restarted. Your progress begins anew."}
		}
		m.writeChatContent()
		return m, m.refreshSession()

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// appendEventActivity turns acknowledged one-shot events into activity
// lines. The server clears the flags on read, so each fires once.
func (m *ConsoleUI) appendEventActivity(events *state.Events) {
	if events.JustLeveledUp && m.profile != nil {
		m.activity = append(m.activity, fmt.Sprintf("⭐ LEVEL UP! You reached level %d!", m.profile.Level))
	}
	for _, id := range events.MissionsJustCompleted {
		label := id
		if m.missions != nil {
			for _, mission := range append(m.missions.Daily, m.missions.Weekly...) {
				if mission.ID == id {
					label = mission.Description
				}
			}
		}
		m.activity = append(m.activity, fmt.Sprintf("🏆 Mission complete: %s", label))
	}
}

func formatLocationList(locations *handlers.LocationsResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Locations (%d):\n", locations.Total)
	for _, loc := range locations.Locations {
		fmt.Fprintf(&b, "  %s — %s [%s] +%d XP\n", loc.ID, loc.Name, titleCaser.String(loc.SeriesName), loc.XPReward)
	}
	return b.String()
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	m.textarea.Reset()

	cmd, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "/help":
		helpText := `
Commands:
• /locations - List locations matching your filter
• /visit <id> - Check in at a location
• /filter <series> - Show one series (or "all")
• /missions - Refresh mission progress
• /restart - Start your journey over
• /copy - Copy the guide's last reply
• Ctrl+C - Quit

Tips:
• Ask your guide for directions to get navigation hints
• Ask to "show all <series> locations" to filter the map
`
		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()
		return m, nil

	case "/locations":
		return m, m.fetchLocations()

	case "/visit":
		if arg == "" {
			m.activity = append(m.activity, "Usage: /visit <location_id>")
			m.writeChatContent()
			return m, nil
		}
		m.loading = true
		m.progressTick = 0
		return m, tea.Batch(m.recordVisit(arg), progressTick())

	case "/filter":
		series := arg
		if strings.EqualFold(series, "all") || strings.EqualFold(series, "clear") {
			series = ""
		}
		return m, m.applyFilter(state.FilterUpdate{Series: &series})

	case "/missions", "/profile":
		return m, m.refreshSession()

	case "/restart":
		m.loading = true
		m.progressTick = 0
		return m, tea.Batch(m.restart(), progressTick())

	case "/copy":
		if m.lastReply == "" {
			m.activity = append(m.activity, "Nothing to copy yet.")
		} else if err := clipboard.WriteAll(m.lastReply); err != nil {
			m.activity = append(m.activity, "✗ Clipboard unavailable: "+err.Error())
		} else {
			m.activity = append(m.activity, "Copied the guide's last reply.")
		}
		m.writeChatContent()
		return m, nil

	default:
		m.activity = append(m.activity, "Unknown command. Try /help.")
		m.writeChatContent()
		return m, nil
	}
}

func (m ConsoleUI) sendChat(message string) tea.Cmd {
	return func() tea.Msg {
		resp, err := sendChat(m.client, m.config.APIBaseURL, m.session.ID, message)
		return chatResponseMsg{resp, err}
	}
}

// refreshSession pulls the full progression snapshot: session, profile,
// missions, and pending events in one pass.
func (m ConsoleUI) refreshSession() tea.Cmd {
	return func() tea.Msg {
		s, err := getSession(m.client, m.config.APIBaseURL, m.session.ID)
		if err != nil {
			return sessionMsg{err: err}
		}
		profile, err := getProfile(m.client, m.config.APIBaseURL, m.session.ID)
		if err != nil {
			return sessionMsg{err: err}
		}
		missions, err := getMissions(m.client, m.config.APIBaseURL, m.session.ID)
		if err != nil {
			return sessionMsg{err: err}
		}
		events, err := getEvents(m.client, m.config.APIBaseURL, m.session.ID)
		if err != nil {
			return sessionMsg{err: err}
		}
		return sessionMsg{session: s, profile: profile, missions: missions, events: events}
	}
}

func (m ConsoleUI) fetchLocations() tea.Cmd {
	return func() tea.Msg {
		locations, err := listLocations(m.client, m.config.APIBaseURL, m.session.ID)
		return locationsMsg{locations, err}
	}
}

func (m ConsoleUI) recordVisit(locationID string) tea.Cmd {
	return func() tea.Msg {
		visit, err := visitLocation(m.client, m.config.APIBaseURL, m.session.ID, locationID)
		return visitMsg{visit, err}
	}
}

func (m ConsoleUI) applyFilter(update state.FilterUpdate) tea.Cmd {
	return func() tea.Msg {
		filter, err := updateFilter(m.client, m.config.APIBaseURL, m.session.ID, update)
		return filterMsg{filter, err}
	}
}

func (m ConsoleUI) restart() tea.Cmd {
	return func() tea.Msg {
		s, err := restartSession(m.client, m.config.APIBaseURL, m.session.ID)
		return restartMsg{s, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Pilgrimage?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress is saved. Come back anytime.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
