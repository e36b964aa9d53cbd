package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Style bundles for the dashboard screen and its components

// HeaderStyles provides styling for the status header
type HeaderStyles struct {
	Container   lipgloss.Style
	Title       lipgloss.Style
	Wallet      lipgloss.Style
	LinkGood    lipgloss.Style
	LinkBad     lipgloss.Style
	Running     lipgloss.Style
	Stopped     lipgloss.Style
	PnLPositive lipgloss.Style
	PnLNegative lipgloss.Style
	PnLNeutral  lipgloss.Style
}

// NewHeaderStyles creates header styles with the given palette
func NewHeaderStyles(palette Palette) HeaderStyles {
	return HeaderStyles{
		Container: lipgloss.NewStyle().
			Background(palette.Background).
			Foreground(palette.Text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(0, 2).
			MarginBottom(1),

		Title: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		Wallet: lipgloss.NewStyle().
			Foreground(palette.TextSecondary).
			Bold(false),

		LinkGood: lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true),

		LinkBad: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),

		Running: lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true),

		Stopped: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		PnLPositive: lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true),

		PnLNegative: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),

		PnLNeutral: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Bold(false),
	}
}

// MetricsStyles provides styling for the derived metrics panel
type MetricsStyles struct {
	Container lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Positive  lipgloss.Style
	Negative  lipgloss.Style
}

// NewMetricsStyles creates metrics panel styles
func NewMetricsStyles(palette Palette) MetricsStyles {
	return MetricsStyles{
		Container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Secondary).
			Padding(0, 2),

		Label: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		Value: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true),

		Positive: lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true),

		Negative: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),
	}
}

// LogStyles provides styling for the compact log viewer
type LogStyles struct {
	Container lipgloss.Style
	Title     lipgloss.Style
	Entry     lipgloss.Style
	Timestamp lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Info      lipgloss.Style
	Debug     lipgloss.Style
}

// NewLogStyles creates compact log viewer styles
func NewLogStyles(palette Palette) LogStyles {
	return LogStyles{
		Container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Info).
			Padding(1, 2).
			MarginTop(1),

		Title: lipgloss.NewStyle().
			Foreground(palette.Info).
			Bold(true),

		Entry: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		Timestamp: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		Error: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(palette.Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(palette.Info),

		Debug: lipgloss.NewStyle().
			Foreground(palette.TextMuted),
	}
}
