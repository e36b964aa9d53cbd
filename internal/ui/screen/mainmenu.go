package screen

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/solmev/mevdash/internal/ui"
	"github.com/solmev/mevdash/internal/ui/component"
	"github.com/solmev/mevdash/internal/ui/router"
	"github.com/solmev/mevdash/internal/ui/style"
)

// MenuItem represents a menu item
type MenuItem struct {
	Label       string
	Description string
	Route       ui.Route
	Enabled     bool
}

// MainMenuScreen represents the main menu screen
type MainMenuScreen struct {
	svc    ui.ServiceProvider
	width  int
	height int
	keyMap ui.KeyMap

	// UI components
	helpBar *component.HelpBar
	pnl     *component.PnLGauge

	// State
	selectedIndex int
	menuItems     []MenuItem
	statusMessage string

	// Styling
	titleStyle       lipgloss.Style
	menuItemStyle    lipgloss.Style
	selectedStyle    lipgloss.Style
	descriptionStyle lipgloss.Style
	headerStyle      lipgloss.Style

	lastUpdate time.Time
}

// NewMainMenuScreen creates a new main menu screen
func NewMainMenuScreen(svc ui.ServiceProvider) *MainMenuScreen {
	palette := style.DefaultPalette()
	keyMap := ui.DefaultKeyMap()

	// Define menu items
	menuItems := []MenuItem{
		{
			Label:       "📊 Dashboard",
			Description: "Live engine status, opportunities and trades",
			Route:       ui.RouteDashboard,
			Enabled:     true,
		},
		{
			Label:       "⚙ Engine Setup",
			Description: "Configure wallet and RPC endpoints",
			Route:       ui.RouteSetup,
			Enabled:     true,
		},
		{
			Label:       "📜 Logs",
			Description: "View application logs and activity",
			Route:       ui.RouteLogs,
			Enabled:     true,
		},
	}

	helpBar := component.NewHelpBar().
		SetKeyBindings(keyMap.ContextualHelp(ui.RouteMainMenu)).
		SetCompact(false)

	return &MainMenuScreen{
		svc:           svc,
		keyMap:        keyMap,
		selectedIndex: 0,
		menuItems:     menuItems,
		helpBar:       helpBar,
		pnl:           component.NewPnLGauge(10),
		lastUpdate:    time.Now(),

		titleStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0).
			Align(lipgloss.Center),

		menuItemStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 2).
			Margin(0, 0, 1, 0),

		selectedStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 2).
			Margin(0, 0, 1, 0).
			Bold(true),

		descriptionStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Padding(0, 4).
			Margin(0, 0, 1, 0).
			Italic(true),

		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 2),
	}
}

// Init initializes the main menu screen
func (m *MainMenuScreen) Init() tea.Cmd {
	return tea.Batch(
		ui.ListenBus(),
		tea.Tick(time.Second, func(t time.Time) tea.Msg {
			return tea.Msg(t) // For updating the clock
		}),
	)
}

// Update handles screen updates
func (m *MainMenuScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.Up):
			m.moveUp()

		case key.Matches(msg, m.keyMap.Down):
			m.moveDown()

		case key.Matches(msg, m.keyMap.Enter):
			if m.selectedIndex < len(m.menuItems) && m.menuItems[m.selectedIndex].Enabled {
				// Navigate to selected route
				route := m.menuItems[m.selectedIndex].Route
				cmds = append(cmds, func() tea.Msg {
					return ui.RouterMsg{To: route}
				})
			}

		// Direct shortcuts
		case key.Matches(msg, m.keyMap.Dashboard):
			cmds = append(cmds, func() tea.Msg {
				return ui.RouterMsg{To: ui.RouteDashboard}
			})

		case key.Matches(msg, m.keyMap.Setup):
			cmds = append(cmds, func() tea.Msg {
				return ui.RouterMsg{To: ui.RouteSetup}
			})

		case key.Matches(msg, m.keyMap.Logs):
			cmds = append(cmds, func() tea.Msg {
				return ui.RouterMsg{To: ui.RouteLogs}
			})
		}

	case time.Time:
		m.lastUpdate = msg
		// Schedule next update
		cmds = append(cmds, tea.Tick(time.Second, func(t time.Time) tea.Msg {
			return tea.Msg(t)
		}))

	case ui.StateUpdateMsg:
		// Status line reads the store on render, nothing to cache here

	case ui.ErrorMsg:
		m.statusMessage = style.ErrorStyle.Render(fmt.Sprintf("%s: %v", msg.Title, msg.Error))

	case ui.SuccessMsg:
		m.statusMessage = style.SuccessStyle.Render(fmt.Sprintf("%s: %s", msg.Title, msg.Message))

	case ui.NoticeMsg:
		m.statusMessage = style.InfoStyle.Render(fmt.Sprintf("%s: %s", msg.Title, msg.Message))
	}

	// Continue listening for events
	cmds = append(cmds, ui.ListenBus())

	return m, tea.Batch(cmds...)
}

// View renders the main menu screen
func (m *MainMenuScreen) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	// Header with title and status
	header := m.renderHeader()
	content.WriteString(header)
	content.WriteString("\n\n")

	// Menu items
	menu := m.renderMenu()
	content.WriteString(menu)
	content.WriteString("\n")

	if m.statusMessage != "" {
		content.WriteString(m.statusMessage)
		content.WriteString("\n")
	}

	// Help bar
	help := m.helpBar.SetWidth(m.width).View()
	content.WriteString(help)

	// Center the content if there's enough space
	result := content.String()
	if m.width > 80 {
		result = lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			result)
	}

	return result
}

// SetSize sets the screen dimensions
func (m *MainMenuScreen) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.helpBar.SetWidth(width)
}

// renderHeader renders the screen header
func (m *MainMenuScreen) renderHeader() string {
	// Title
	title := "🚀 MEV Dashboard"
	styledTitle := m.titleStyle.Width(m.width).Render(title)

	snap := m.svc.GetStore().Snapshot()

	engineStr := "Engine: stopped"
	if !snap.SetupComplete {
		engineStr = "Engine: not configured"
	} else if snap.Status != nil && snap.Status.IsRunning {
		engineStr = "Engine: running"
	}

	walletStr := "No wallet"
	if snap.Status != nil && snap.Status.WalletAddress != "" {
		addr := snap.Status.WalletAddress
		if len(addr) > 8 {
			addr = addr[:8] + "..."
		}
		walletStr = "Wallet: " + addr
	}

	pnlStr := ""
	if snap.WalletBalance != nil && snap.WalletBalance.BalanceSOL > 0 {
		m.pnl.SetValue(snap.Metrics.TotalProfit / snap.WalletBalance.BalanceSOL * 100)
		pnlStr = " • PnL: " + m.pnl.ViewCompact()
	}

	// Status line with current time and engine state
	timeStr := m.lastUpdate.Format("15:04:05")
	statusLine := fmt.Sprintf("Time: %s • %s • %s%s", timeStr, engineStr, walletStr, pnlStr)
	styledStatus := m.headerStyle.Width(m.width).Align(lipgloss.Center).Render(statusLine)

	return lipgloss.JoinVertical(lipgloss.Center, styledTitle, styledStatus)
}

// renderMenu renders the menu items
func (m *MainMenuScreen) renderMenu() string {
	var menuItems []string

	for i, item := range m.menuItems {
		var itemStyle lipgloss.Style
		if i == m.selectedIndex {
			itemStyle = m.selectedStyle
		} else {
			itemStyle = m.menuItemStyle
		}

		// Disable styling for disabled items
		if !item.Enabled {
			palette := style.DefaultPalette()
			itemStyle = itemStyle.Foreground(palette.TextMuted)
		}

		styledItem := itemStyle.Render(item.Label)
		menuItems = append(menuItems, styledItem)

		// Add description for selected item
		if i == m.selectedIndex {
			description := m.descriptionStyle.Render(item.Description)
			menuItems = append(menuItems, description)
		}
	}

	menu := strings.Join(menuItems, "\n")

	// Add border around menu
	menuStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.DefaultPalette().Primary).
		Padding(2, 4).
		Margin(1, 0)

	return menuStyle.Render(menu)
}

// moveUp moves selection up
func (m *MainMenuScreen) moveUp() {
	if m.selectedIndex > 0 {
		m.selectedIndex--
	} else {
		m.selectedIndex = len(m.menuItems) - 1
	}
}

// moveDown moves selection down
func (m *MainMenuScreen) moveDown() {
	if m.selectedIndex < len(m.menuItems)-1 {
		m.selectedIndex++
	} else {
		m.selectedIndex = 0
	}
}
