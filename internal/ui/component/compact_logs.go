package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/solmev/mevdash/internal/logger"
	"github.com/solmev/mevdash/internal/ui/style"
)

// LogFilter defines what log levels to show
type LogFilter struct {
	ShowError   bool
	ShowWarning bool
	ShowInfo    bool
	ShowDebug   bool
}

// CompactLogViewer provides a compact log pane backed by the in-memory log buffer
type CompactLogViewer struct {
	buffer   *logger.LogBuffer
	viewport viewport.Model
	filter   LogFilter
	style    style.LogStyles
	width    int
	height   int
	visible  bool
	title    string
}

// NewCompactLogViewer creates a new compact log viewer
func NewCompactLogViewer(logBuffer *logger.LogBuffer) *CompactLogViewer {
	return &CompactLogViewer{
		buffer:  logBuffer,
		visible: true,
		title:   "Recent Logs",
		filter: LogFilter{
			ShowError:   true,
			ShowWarning: true,
			ShowInfo:    true,
			ShowDebug:   false, // Hide debug by default for compact view
		},
		style:    style.NewLogStyles(style.DefaultPalette()),
		viewport: viewport.New(50, 4), // Default size
	}
}

// SetSize sets the component dimensions
func (clv *CompactLogViewer) SetSize(width, height int) {
	clv.width = width
	clv.height = height
	clv.style.Container = clv.style.Container.Width(width - 4)

	// Viewport size accounts for borders and title
	viewportWidth := width - 6   // Border + padding
	viewportHeight := height - 4 // Border + title + padding

	if viewportHeight < 2 {
		viewportHeight = 2
	}

	clv.viewport.Width = viewportWidth
	clv.viewport.Height = viewportHeight
}

// SetVisible toggles the visibility of the log viewer
func (clv *CompactLogViewer) SetVisible(visible bool) {
	clv.visible = visible
}

// IsVisible returns whether the log viewer is visible
func (clv *CompactLogViewer) IsVisible() bool {
	return clv.visible
}

// Update handles viewport updates
func (clv *CompactLogViewer) Update(msg tea.Msg) tea.Cmd {
	if !clv.visible {
		return nil
	}

	var cmd tea.Cmd
	clv.viewport, cmd = clv.viewport.Update(msg)

	// Refresh content from log buffer
	clv.updateViewport()

	return cmd
}

// View renders the compact log viewer
func (clv *CompactLogViewer) View() string {
	if !clv.visible {
		return ""
	}

	// Update content before rendering
	clv.updateViewport()

	title := fmt.Sprintf("%s [ctrl+l] hide", clv.title)
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		clv.style.Title.Render(title),
		clv.viewport.View(),
	)

	return clv.style.Container.Render(content)
}

// updateViewport refreshes the viewport content from the log buffer
func (clv *CompactLogViewer) updateViewport() {
	if clv.buffer == nil {
		clv.viewport.SetContent("No log buffer available")
		return
	}

	entries := clv.buffer.GetRecentLogs(50)

	var filteredEntries []string
	for _, entry := range entries {
		if clv.shouldShowEntry(entry) {
			formatted := clv.formatLogEntry(entry)
			filteredEntries = append(filteredEntries, formatted)
		}
	}

	// If no entries match filter, show message
	if len(filteredEntries) == 0 {
		clv.viewport.SetContent("No logs match current filter")
		return
	}

	// Join all entries and set viewport content
	content := strings.Join(filteredEntries, "\n")
	clv.viewport.SetContent(content)

	// Auto-scroll to bottom for new entries
	clv.viewport.GotoBottom()
}

// shouldShowEntry determines if a log entry should be displayed based on filter
func (clv *CompactLogViewer) shouldShowEntry(entry logger.LogEntry) bool {
	switch strings.ToLower(entry.Level) {
	case "error":
		return clv.filter.ShowError
	case "warning", "warn":
		return clv.filter.ShowWarning
	case "info":
		return clv.filter.ShowInfo
	case "debug":
		return clv.filter.ShowDebug
	default:
		return clv.filter.ShowInfo // Default to info level
	}
}

// formatLogEntry formats a log entry for display
func (clv *CompactLogViewer) formatLogEntry(entry logger.LogEntry) string {
	// Format timestamp
	timestamp := clv.style.Timestamp.Render(entry.Timestamp.Format("15:04:05"))

	// Style message based on level
	var styledMessage string
	switch strings.ToLower(entry.Level) {
	case "error":
		styledMessage = clv.style.Error.Render(entry.Message)
	case "warning", "warn":
		styledMessage = clv.style.Warning.Render(entry.Message)
	case "info":
		styledMessage = clv.style.Info.Render(entry.Message)
	case "debug":
		styledMessage = clv.style.Debug.Render(entry.Message)
	default:
		styledMessage = clv.style.Entry.Render(entry.Message)
	}

	// Combine timestamp and message
	return fmt.Sprintf("%s %s", timestamp, styledMessage)
}

// GetHeight returns the component height for layout calculations
func (clv *CompactLogViewer) GetHeight() int {
	if !clv.visible {
		return 0
	}
	return clv.height
}
