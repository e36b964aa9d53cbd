package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Tea message types for UI communication

// RouterMsg represents navigation between screens
type RouterMsg struct {
	To Route
}

// StateUpdateMsg signals that the dashboard store holds new data and the
// visible screen should re-read its snapshot
type StateUpdateMsg struct{}

// ErrorMsg represents error conditions
type ErrorMsg struct {
	Error error
	Title string
}

// SuccessMsg represents success conditions
type SuccessMsg struct {
	Message string
	Title   string
}

// NoticeMsg represents informational engine outcomes that are neither
// success nor failure, such as "no opportunity available right now"
type NoticeMsg struct {
	Message string
	Title   string
}

// ConfirmRequestMsg asks the visible screen to show a yes/no prompt.
// Exactly one answer must be sent on Reply
type ConfirmRequestMsg struct {
	Title   string
	Message string
	Reply   chan<- bool
}

// Event Bus for UI communication
var (
	// Bus is the global event bus for UI communication
	Bus = make(chan tea.Msg, 1024)
)

// send puts a message on the bus without blocking and reports delivery.
// It prefers the instrumented GlobalBus when main has initialized one.
func send(msg tea.Msg) bool {
	if GlobalBus != nil {
		return GlobalBus.Send(msg)
	}
	select {
	case Bus <- msg:
		return true
	default:
		// Bus is full, drop the message
		return false
	}
}

// PublishStateUpdate signals that the store changed
func PublishStateUpdate() {
	send(StateUpdateMsg{})
}

// PublishError publishes an error message to the UI bus
func PublishError(err error, title string) {
	send(ErrorMsg{Error: err, Title: title})
}

// PublishSuccess publishes a success message to the UI bus
func PublishSuccess(message, title string) {
	send(SuccessMsg{Message: message, Title: title})
}

// PublishNotice publishes an informational message to the UI bus
func PublishNotice(message, title string) {
	send(NoticeMsg{Message: message, Title: title})
}

// PublishConfirmRequest publishes a confirmation prompt and reports whether
// it was delivered. Callers must treat an undelivered prompt as a decline
func PublishConfirmRequest(msg ConfirmRequestMsg) bool {
	return send(msg)
}

// ListenBus returns a tea.Cmd that listens to the event bus
func ListenBus() tea.Cmd {
	return func() tea.Msg {
		return <-Bus
	}
}

// Route represents different screens in the application
type Route int

const (
	RouteMainMenu Route = iota
	RouteDashboard
	RouteSetup
	RouteLogs
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteMainMenu:
		return "main_menu"
	case RouteDashboard:
		return "dashboard"
	case RouteSetup:
		return "setup"
	case RouteLogs:
		return "logs"
	default:
		return "unknown"
	}
}
