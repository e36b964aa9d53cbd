package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	// Global navigation
	Quit key.Binding
	Back key.Binding
	Help key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	Tab      key.Binding
	ShiftTab key.Binding

	// Application specific
	Dashboard  key.Binding
	Setup      key.Binding
	Logs       key.Binding
	ToggleLogs key.Binding

	// Engine control
	StartEngine   key.Binding
	StopEngine    key.Binding
	EmergencyStop key.Binding

	// Trading
	Snipe    key.Binding
	MicroArb key.Binding

	// Data
	Refresh      key.Binding
	ExportTrades key.Binding
	SaveSnapshot key.Binding

	// Forms
	SubmitForm key.Binding

	// Logs
	FilterInfo  key.Binding
	FilterWarn  key.Binding
	FilterError key.Binding
	ClearLogs   key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Global navigation
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "right"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev"),
		),

		// Application specific
		Dashboard: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dashboard"),
		),
		Setup: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "setup"),
		),
		Logs: key.NewBinding(
			key.WithKeys("f12"),
			key.WithHelp("F12", "logs"),
		),
		ToggleLogs: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "toggle logs"),
		),

		// Engine control
		StartEngine: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		StopEngine: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop"),
		),
		EmergencyStop: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "emergency stop"),
		),

		// Trading
		Snipe: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "snipe token"),
		),
		MicroArb: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "micro arb"),
		),

		// Data
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r/F5", "refresh"),
		),
		ExportTrades: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "export trades"),
		),
		SaveSnapshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save snapshot"),
		),

		// Forms
		SubmitForm: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),

		// Logs
		FilterInfo: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "info"),
		),
		FilterWarn: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("F2", "warn"),
		),
		FilterError: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("F3", "error"),
		),
		ClearLogs: key.NewBinding(
			key.WithKeys("ctrl+shift+l"),
			key.WithHelp("ctrl+shift+l", "clear logs"),
		),
	}
}

// ShortHelp returns key help text for the current context
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns extended help text for the current context
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Enter, k.Tab, k.ShiftTab},
		{k.StartEngine, k.StopEngine, k.EmergencyStop},
		{k.Dashboard, k.Setup, k.Logs, k.Help, k.Quit},
	}
}

// ContextualHelp returns help text based on the current route
func (k KeyMap) ContextualHelp(route Route) []key.Binding {
	switch route {
	case RouteMainMenu:
		return []key.Binding{k.Up, k.Down, k.Enter, k.Quit}
	case RouteDashboard:
		return []key.Binding{k.StartEngine, k.StopEngine, k.EmergencyStop, k.Refresh, k.Snipe, k.MicroArb, k.ExportTrades, k.ToggleLogs, k.Back}
	case RouteSetup:
		return []key.Binding{k.Tab, k.ShiftTab, k.SubmitForm, k.Back, k.Quit}
	case RouteLogs:
		return []key.Binding{k.FilterInfo, k.FilterWarn, k.FilterError, k.ClearLogs, k.Back, k.Quit}
	default:
		return k.ShortHelp()
	}
}
