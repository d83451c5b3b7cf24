package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	marketDomain "github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/business/scout/domain"
	"github.com/fd1az/arbitrage-scout/pkg/ui/components"
)

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string // "pending", "connecting", "connected", "failed"
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"
	PhaseStartup   Phase = "startup"
	PhaseDashboard Phase = "dashboard"
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

const (
	maxErrors     = 3
	maxLogs       = 5
	maxActivity   = 6
	keptRows      = 200
	visibleRows   = 12
	listedPairs   = 10
	frameInterval = 100 * time.Millisecond
)

var startupOrder = []string{"config", "markets", "scanner"}

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	notifications *components.NotificationsComponent
	markets       *components.MarketsComponent
	stats         *components.StatsComponent
	status        *components.StatusComponent
	keys          KeyMap
	help          help.Model

	phase        Phase
	welcomeStart time.Time

	ready    bool
	quitting bool
	paused   bool // feed frozen, stats keep counting
	width    int
	height   int

	lastScan     time.Time
	lastUpdate   time.Time
	errors       []ErrorEntry
	logs         []string
	activityFeed []string

	startupComplete bool
	startupSteps    map[string]*StartupStep
	startupTime     time.Time
}

// New creates a new TUI model.
func New() Model {
	now := time.Now()
	return Model{
		notifications: components.NewNotificationsComponent(keptRows, visibleRows),
		markets:       components.NewMarketsComponent(listedPairs),
		stats:         components.NewStatsComponent(),
		status:        components.NewStatusComponent(),
		keys:          DefaultKeyMap(),
		help:          help.New(),
		phase:         PhaseWelcome,
		welcomeStart:  now,
		errors:        make([]ErrorEntry, 0, maxErrors),
		logs:          make([]string, 0, maxLogs),
		activityFeed:  make([]string, 0, maxActivity),
		startupSteps: map[string]*StartupStep{
			"config":  {Name: "Loading configuration", Status: "pending"},
			"markets": {Name: "Listing market pairs", Status: "pending"},
			"scanner": {Name: "Starting scanner", Status: "pending"},
		},
		startupTime: now,
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return frameCmd()
}

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		// Any other key skips the welcome screen.
		if m.phase == PhaseWelcome {
			m.leaveWelcome()
			return m, frameCmd()
		}
		switch {
		case key.Matches(msg, m.keys.Clear):
			m.notifications.Clear()
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Up):
			m.notifications.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.notifications.ScrollDown()
		case key.Matches(msg, m.keys.Errors):
			m.errors = m.errors[:0]
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case frameMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.leaveWelcome()
		}
		return m, frameCmd()

	case SetupMsg:
		m.markets.Set(components.MarketsInfo{
			Market1:   msg.Market1,
			Market2:   msg.Market2,
			Pairs:     msg.Pairs,
			Threshold: msg.Threshold,
			Interval:  msg.Interval,
		})
		m.activityFeed = addActivity(m.activityFeed,
			domain.Header(marketDomain.MarketID(msg.Market1), marketDomain.MarketID(msg.Market2)))
		m.lastUpdate = time.Now()

	case NotificationMsg:
		if !m.paused {
			n := msg.Notification
			m.notifications.Add(components.NotificationRow{
				Time:       n.Timestamp.Format(time.TimeOnly),
				Pair:       n.Pair.String(),
				Direction:  n.Direction.Label(),
				BuyMarket:  n.BuyMarket.String(),
				SellMarket: n.SellMarket.String(),
				Ratio:      domain.FormatRatio(n.Ratio),
			})
		}
		m.lastUpdate = time.Now()

	case ScanMsg:
		m.stats.Record(msg.Notifications, msg.Duration, msg.Err != nil)
		m.lastScan = time.Now()
		m.lastUpdate = m.lastScan
		m.startupComplete = true
		if msg.Err != nil {
			m.errors = addError(m.errors, msg.Err.Error())
		}
		if !m.paused {
			m.activityFeed = addActivity(m.activityFeed, fmt.Sprintf("Tick #%d: %d pairs, %d notifications in %s",
				msg.Number, msg.Pairs, msg.Notifications, msg.Duration.Round(time.Millisecond)))
		}

	case MarketStatusMsg:
		m.status.Update(components.MarketStatus{
			Name:       msg.Name,
			Healthy:    msg.Healthy,
			Detail:     msg.Detail,
			LastUpdate: time.Now(),
		})
		m.lastUpdate = time.Now()

	case ErrorMsg:
		m.logs = addLog(m.logs, "error", msg.Error.Error())
		m.errors = addError(m.errors, msg.Error.Error())

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)

	case StartupMsg:
		if step, ok := m.startupSteps[msg.Step]; ok {
			step.Status = msg.Status
		}
		if msg.Status == "failed" && msg.Message != "" {
			m.errors = addError(m.errors, msg.Message)
		}
		all := true
		for _, step := range m.startupSteps {
			if step.Status != "connected" && step.Status != "done" {
				all = false
				break
			}
		}
		if all {
			m.startupComplete = true
		}
	}

	return m, nil
}

func (m *Model) leaveWelcome() {
	m.phase = PhaseStartup
	m.startupTime = time.Now()
	// Don't use Send() from within Update.
	if OnStartModules != nil {
		go OnStartModules()
	}
}

func addError(errs []ErrorEntry, message string) []ErrorEntry {
	errs = append(errs, ErrorEntry{Message: message, Timestamp: time.Now()})
	if len(errs) > maxErrors {
		errs = errs[len(errs)-maxErrors:]
	}
	return errs
}

func addLog(logs []string, level, message string) []string {
	logs = append(logs, fmt.Sprintf("[%s] %s: %s", time.Now().Format(time.TimeOnly), level, message))
	if len(logs) > maxLogs {
		logs = logs[len(logs)-maxLogs:]
	}
	return logs
}

func addActivity(feed []string, message string) []string {
	feed = append(feed, fmt.Sprintf("[%s] %s", time.Now().Format(time.TimeOnly), message))
	if len(feed) > maxActivity {
		feed = feed[len(feed)-maxActivity:]
	}
	return feed
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		if !m.startupComplete {
			return m.renderStartupScreen()
		}
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" Arbitrage Scout "))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	leftCol := m.markets.View()

	var right strings.Builder
	right.WriteString(m.renderActivityFeed())
	right.WriteString("\n\n")
	right.WriteString(m.notifications.View())
	rightCol := right.String()

	if m.width > 100 {
		left := BoxStyle.Width(m.width/3 - 2).Render(leftCol)
		rightBox := BoxStyle.Width(m.width*2/3 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, rightBox))
	} else {
		width := max(m.width-4, 20)
		b.WriteString(BoxStyle.Width(width).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(width).Render(rightCol))
	}
	b.WriteString("\n\n")
	b.WriteString(m.stats.View())
	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		b.WriteString(m.renderErrors())
		b.WriteString("\n")
	}

	if m.paused {
		b.WriteString(WarningText.Bold(true).Render("⏸ PAUSED"))
		b.WriteString(" • ")
	}
	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m Model) renderErrors() string {
	var sb strings.Builder
	sb.WriteString(DangerText.Bold(true).Render("ERRORS"))
	sb.WriteString(MutedValue.Render(" (e: clear)"))
	sb.WriteString("\n")
	for _, err := range m.errors {
		ago := time.Since(err.Timestamp).Round(time.Second)
		sb.WriteString(DangerText.Render(fmt.Sprintf("  • %s ", err.Message)))
		sb.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderActivityFeed() string {
	var sb strings.Builder
	sb.WriteString(SectionStyle.Render("LIVE ACTIVITY"))
	sb.WriteString("\n\n")

	if len(m.activityFeed) == 0 {
		sb.WriteString(MutedValue.Render("  Waiting for the first tick..."))
		return sb.String()
	}
	for _, activity := range m.activityFeed {
		if strings.Contains(activity, "Tick #") {
			sb.WriteString(TickText.Render("  " + activity))
		} else {
			sb.WriteString(MutedValue.Render("  " + activity))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderWelcomeScreen() string {
	dots := strings.Repeat(".", int(time.Since(m.welcomeStart).Milliseconds()/300)%4)

	logo := `
   ███████╗ ██████╗ ██████╗ ██╗   ██╗████████╗
   ██╔════╝██╔════╝██╔═══██╗██║   ██║╚══██╔══╝
   ███████╗██║     ██║   ██║██║   ██║   ██║
   ╚════██║██║     ██║   ██║██║   ██║   ██║
   ███████║╚██████╗╚██████╔╝╚██████╔╝   ██║
   ╚══════╝ ╚═════╝ ╚═════╝  ╚═════╝    ╚═╝
`
	var sb strings.Builder
	sb.WriteString("\n\n\n\n")
	sb.WriteString(SectionStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(MutedValue.Render("          A R B I T R A G E   S C O U T"))
	sb.WriteString("\n\n\n")
	sb.WriteString(WarningText.Bold(true).Render("        Watching the spread between two markets"))
	sb.WriteString("\n\n\n")
	sb.WriteString(SuccessText.Render(fmt.Sprintf("                  Initializing%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("            Press any key to skip, or wait..."))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) renderStartupScreen() string {
	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(SectionStyle.MarginBottom(1).Render("  Arbitrage Scout"))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(ColorText).Render("  Starting up..."))
	sb.WriteString("\n\n")

	for _, k := range startupOrder {
		step, ok := m.startupSteps[k]
		if !ok {
			continue
		}

		var icon, statusText string
		var style lipgloss.Style
		switch step.Status {
		case "connected", "done":
			icon, statusText, style = "✓", "Ready", SuccessText
		case "connecting":
			spinners := []string{"◐", "◓", "◑", "◒"}
			icon = spinners[int(time.Since(m.startupTime).Milliseconds()/200)%len(spinners)]
			statusText, style = "Working...", WarningText
		case "failed":
			icon, statusText, style = "✗", "Failed", DangerText
		default:
			icon, statusText, style = "○", "Pending", MutedValue
		}

		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			style.Render(icon),
			MutedValue.Render(step.Name),
			style.Render(statusText),
		))
	}

	sb.WriteString("\n")
	sb.WriteString(MutedValue.Render(fmt.Sprintf("  Elapsed: %s", time.Since(m.startupTime).Round(time.Second))))
	sb.WriteString("\n\n")
	for _, e := range m.errors {
		sb.WriteString(DangerText.Render("  " + e.Message))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	if time.Since(m.lastScan) < 500*time.Millisecond {
		spinners := []string{"⟳", "◐", "◓", "◑", "◒"}
		idx := int(time.Now().UnixMilli()/100) % len(spinners)
		parts = append(parts, SuccessText.Bold(true).Render(spinners[idx]+" Scanning"))
	}

	parts = append(parts, fmt.Sprintf("Ticks: %d", m.stats.Stats().Ticks))
	parts = append(parts, m.status.View())

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		indicator := ""
		if ago < 2*time.Second {
			indicator = "▪"
		}
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago %s", ago, indicator)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules
// should start. Set by main.
var OnStartModules func()

// Run starts the Bubble Tea program.
func Run() error {
	Program = tea.NewProgram(New(), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
	if _, ok := msg.(StartModulesMsg); ok && OnStartModules != nil {
		OnStartModules()
	}
}
