package screen

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/solmev/mevdash/internal/logger"
	"github.com/solmev/mevdash/internal/ui"
	"github.com/solmev/mevdash/internal/ui/component"
	"github.com/solmev/mevdash/internal/ui/router"
	"github.com/solmev/mevdash/internal/ui/style"
)

const logLevelAll = "all"

// logsRefreshMsg triggers a periodic re-read of the log ring
type logsRefreshMsg time.Time

// LogsScreen shows the in-memory log ring with level, text and logger filters
type LogsScreen struct {
	svc    ui.ServiceProvider
	width  int
	height int
	keyMap ui.KeyMap

	// UI components
	helpBar    *component.HelpBar
	table      *component.Table
	filterForm *component.Form

	// State
	entries         []logger.LogEntry
	currentFilter   string
	searchTerm      string
	loggerFilter    string
	autoRefresh     bool
	refreshInterval time.Duration
	lastUpdate      time.Time
	showFilters     bool
	tailMode        bool
	errors          []string

	// Styling
	titleStyle     lipgloss.Style
	headerStyle    lipgloss.Style
	statusStyle    lipgloss.Style
	errorStyle     lipgloss.Style
	debugStyle     lipgloss.Style
	infoStyle      lipgloss.Style
	warnStyle      lipgloss.Style
	containerStyle lipgloss.Style

	maxLogEntries int
}

// NewLogsScreen creates a new logs screen
func NewLogsScreen(svc ui.ServiceProvider) *LogsScreen {
	palette := style.DefaultPalette()

	s := &LogsScreen{
		svc:             svc,
		keyMap:          ui.DefaultKeyMap(),
		currentFilter:   logLevelAll,
		autoRefresh:     true,
		refreshInterval: 2 * time.Second,
		lastUpdate:      time.Now(),
		tailMode:        true,
		errors:          make([]string, 0),
		maxLogEntries:   500,

		titleStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0).
			Align(lipgloss.Center),

		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 2),

		statusStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 2),

		errorStyle: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),

		debugStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		infoStyle: lipgloss.NewStyle().
			Foreground(palette.Text),

		warnStyle: lipgloss.NewStyle().
			Foreground(palette.Warning).
			Bold(true),

		containerStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(1, 2).
			Margin(1, 0),
	}

	s.initializeTable()
	s.initializeFilterForm()
	s.initializeHelpBar()
	s.reload()

	return s
}

// initializeTable sets up the logs table
func (s *LogsScreen) initializeTable() {
	s.table = component.NewTable().
		AddColumn("Time", 10, lipgloss.Left).
		AddColumn("Level", 7, lipgloss.Center).
		AddColumn("Logger", 16, lipgloss.Left).
		AddColumn("Message", 60, lipgloss.Left).
		SetShowBorder(true).
		SetSelectable(true).
		SetZebra(false) // Rows are colored by log level instead
}

// initializeFilterForm sets up the filter form
func (s *LogsScreen) initializeFilterForm() {
	s.filterForm = component.NewForm().
		AddField("level", component.FieldTypeSelect, "Log Level", false, "Filter by log level").
		AddField("search", component.FieldTypeText, "Search", false, "Search in log messages").
		AddField("logger", component.FieldTypeText, "Logger", false, "Filter by logger name").
		SetFieldOptions("level", []string{logLevelAll, "debug", "info", "warn", "error"})
}

// initializeHelpBar sets up the help bar
func (s *LogsScreen) initializeHelpBar() {
	s.helpBar = component.NewHelpBar().
		SetKeyBindings(s.keyMap.ContextualHelp(ui.RouteLogs)).
		SetCompact(false)
}

// Init initializes the logs screen
func (s *LogsScreen) Init() tea.Cmd {
	return tea.Batch(
		ui.ListenBus(),
		s.startAutoRefresh(),
	)
}

// Update handles screen updates
func (s *LogsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.showFilters {
			switch {
			case key.Matches(msg, s.keyMap.Back), key.Matches(msg, s.keyMap.Enter):
				s.showFilters = false
				s.reload()

			default:
				updated, cmd := s.filterForm.Update(msg)
				s.filterForm = updated
				cmds = append(cmds, cmd)
			}
		} else {
			switch {
			case key.Matches(msg, s.keyMap.Quit):
				return s, tea.Quit

			case key.Matches(msg, s.keyMap.Back):
				cmds = append(cmds, func() tea.Msg {
					return ui.RouterMsg{To: ui.RouteMainMenu}
				})

			case key.Matches(msg, s.keyMap.Up):
				s.table.MoveUp()
				s.tailMode = false // Manual scrolling leaves tail mode

			case key.Matches(msg, s.keyMap.Down):
				s.table.MoveDown()

			case key.Matches(msg, s.keyMap.Refresh):
				s.reload()

			case key.Matches(msg, s.keyMap.FilterInfo):
				s.setLevelFilter("info")

			case key.Matches(msg, s.keyMap.FilterWarn):
				s.setLevelFilter("warn")

			case key.Matches(msg, s.keyMap.FilterError):
				s.setLevelFilter("error")

			case msg.String() == "f4":
				s.setLevelFilter(logLevelAll)

			case key.Matches(msg, s.keyMap.ClearLogs):
				s.svc.GetLogBuffer().Clear()
				s.reload()

			case msg.String() == "f":
				s.showFilters = true

			case msg.String() == "t":
				s.tailMode = !s.tailMode
				if s.tailMode {
					s.scrollToBottom()
				}

			case msg.String() == "a":
				s.autoRefresh = !s.autoRefresh
				if s.autoRefresh {
					cmds = append(cmds, s.startAutoRefresh())
				}
			}
		}

	case logsRefreshMsg:
		s.lastUpdate = time.Time(msg)
		s.reload()
		if s.autoRefresh {
			cmds = append(cmds, s.startAutoRefresh())
		}

	case ui.ErrorMsg:
		s.errors = append(s.errors, msg.Error.Error())

	case ui.SuccessMsg:
		s.errors = make([]string, 0)
	}

	// Continue listening for events
	cmds = append(cmds, ui.ListenBus())

	return s, tea.Batch(cmds...)
}

// View renders the logs screen
func (s *LogsScreen) View() string {
	if s.width == 0 || s.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	title := "📜 Application Logs"
	if s.autoRefresh {
		title += " (Auto-refresh ON)"
	}
	if s.tailMode {
		title += " (Tail mode)"
	}
	content.WriteString(s.titleStyle.Width(s.width).Render(title))
	content.WriteString("\n\n")

	content.WriteString(s.renderStatusBar())
	content.WriteString("\n\n")

	if len(s.errors) > 0 {
		for _, err := range s.errors[:min(len(s.errors), 2)] {
			content.WriteString(s.errorStyle.Render("❌ " + err))
			content.WriteString("\n")
		}
		content.WriteString("\n")
	}

	if s.showFilters {
		content.WriteString(s.containerStyle.Render(s.filterForm.View()))
	} else if len(s.entries) > 0 {
		content.WriteString(s.table.View())
	} else {
		emptyMsg := "No log entries match the current filters.\nPress 'f' to adjust filters."
		content.WriteString(s.statusStyle.Render(emptyMsg))
	}

	content.WriteString("\n")
	content.WriteString(s.renderInstructions())
	content.WriteString("\n")
	content.WriteString(s.helpBar.SetWidth(s.width).View())

	return content.String()
}

// SetSize sets the screen dimensions
func (s *LogsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
	s.filterForm.SetWidth(width - 8)
	s.table.SetSize(width-4, height-15)
}

// renderStatusBar renders the status information
func (s *LogsScreen) renderStatusBar() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Total: %d", s.svc.GetLogBuffer().Len()))
	parts = append(parts, fmt.Sprintf("Shown: %d", len(s.entries)))

	if s.currentFilter != logLevelAll {
		parts = append(parts, fmt.Sprintf("Filter: %s", s.currentFilter))
	}
	if s.searchTerm != "" {
		parts = append(parts, fmt.Sprintf("Search: '%s'", s.searchTerm))
	}

	if _, dropped := s.svc.GetLogBuffer().GetStats(); dropped > 0 {
		parts = append(parts, fmt.Sprintf("Dropped: %d", dropped))
	}

	refreshStatus := "Manual"
	if s.autoRefresh {
		refreshStatus = fmt.Sprintf("Auto (%ds)", int(s.refreshInterval.Seconds()))
	}
	parts = append(parts, fmt.Sprintf("Refresh: %s", refreshStatus))
	parts = append(parts, fmt.Sprintf("Updated: %s", s.lastUpdate.Format("15:04:05")))

	return s.headerStyle.Render(strings.Join(parts, " • "))
}

// renderInstructions renders usage instructions
func (s *LogsScreen) renderInstructions() string {
	var instructions []string

	if s.showFilters {
		instructions = append(instructions, "Enter/Esc: Apply filters")
	} else {
		instructions = append(instructions, "F: Filters")
		instructions = append(instructions, "F1-F3: Quick filter (Info/Warn/Error)")
		instructions = append(instructions, "F4: Show all")
		instructions = append(instructions, "T: Tail mode")
		instructions = append(instructions, "A: Auto-refresh")
		instructions = append(instructions, "R: Refresh")
	}

	return s.statusStyle.Render(strings.Join(instructions, " • "))
}

// setLevelFilter applies a quick level filter and keeps the form in sync
func (s *LogsScreen) setLevelFilter(level string) {
	s.filterForm.SetFieldValue("level", level)
	s.reload()
}

// reload re-reads the log ring and applies the active filters
func (s *LogsScreen) reload() {
	s.currentFilter = s.filterForm.GetValue("level")
	if s.currentFilter == "" {
		s.currentFilter = logLevelAll
	}
	s.searchTerm = s.filterForm.GetValue("search")
	s.loggerFilter = s.filterForm.GetValue("logger")

	recent := s.svc.GetLogBuffer().GetRecentLogs(s.maxLogEntries)

	filtered := make([]logger.LogEntry, 0, len(recent))
	for _, entry := range recent {
		if s.currentFilter != logLevelAll && strings.ToLower(entry.Level) != s.currentFilter {
			continue
		}
		if s.searchTerm != "" && !strings.Contains(strings.ToLower(entry.Message), strings.ToLower(s.searchTerm)) {
			continue
		}
		if s.loggerFilter != "" && !strings.Contains(strings.ToLower(entry.Logger), strings.ToLower(s.loggerFilter)) {
			continue
		}
		filtered = append(filtered, entry)
	}

	s.entries = filtered
	s.updateTableDisplay()

	if s.tailMode {
		s.scrollToBottom()
	}
}

// updateTableDisplay rebuilds the table rows from the filtered entries
func (s *LogsScreen) updateTableDisplay() {
	rows := make([][]string, 0, len(s.entries))

	for _, entry := range s.entries {
		message := entry.Message
		if fields := entry.FieldsLine(); fields != "" {
			message += "  " + fields
		}
		if len(message) > 90 {
			message = message[:87] + "..."
		}

		rows = append(rows, []string{
			entry.Timestamp.Format("15:04:05"),
			strings.ToUpper(entry.Level),
			entry.Logger,
			message,
		})
	}

	s.table.SetRows(rows)

	for i, entry := range s.entries {
		s.table.SetRowStyle(i, s.levelStyle(entry.Level))
	}
}

// levelStyle returns the row style for a log level
func (s *LogsScreen) levelStyle(level string) lipgloss.Style {
	switch strings.ToLower(level) {
	case "debug":
		return s.debugStyle
	case "warn":
		return s.warnStyle
	case "error", "fatal", "panic", "dpanic":
		return s.errorStyle
	default:
		return s.infoStyle
	}
}

// scrollToBottom selects the newest entry
func (s *LogsScreen) scrollToBottom() {
	if len(s.entries) > 0 {
		s.table.SetSelectedRow(len(s.entries) - 1)
	}
}

// startAutoRefresh starts the auto-refresh timer
func (s *LogsScreen) startAutoRefresh() tea.Cmd {
	if !s.autoRefresh {
		return nil
	}
	return tea.Tick(s.refreshInterval, func(t time.Time) tea.Msg {
		return logsRefreshMsg(t)
	})
}
