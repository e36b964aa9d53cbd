package component

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/solmev/mevdash/internal/engine"
	"github.com/solmev/mevdash/internal/ui/style"
)

// TradeDetailPane provides a detailed view of a selected trade record
type TradeDetailPane struct {
	trade   *engine.Trade
	style   TradeDetailStyle
	width   int
	visible bool
}

// TradeDetailStyle contains all styling for the trade detail pane
type TradeDetailStyle struct {
	container      lipgloss.Style
	title          lipgloss.Style
	profitPositive lipgloss.Style
	profitNegative lipgloss.Style
	profitNeutral  lipgloss.Style
	stats          lipgloss.Style
	hotkeys        lipgloss.Style
}

// NewTradeDetailPane creates a new trade detail pane component
func NewTradeDetailPane() *TradeDetailPane {
	palette := style.DefaultPalette()

	return &TradeDetailPane{
		visible: false,
		style: TradeDetailStyle{
			container: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Secondary).
				Padding(1, 2).
				MarginTop(1).
				MarginBottom(1),

			title: lipgloss.NewStyle().
				Foreground(palette.Primary).
				Bold(true).
				Align(lipgloss.Center),

			profitPositive: lipgloss.NewStyle().
				Foreground(palette.Success).
				Bold(true),

			profitNegative: lipgloss.NewStyle().
				Foreground(palette.Error).
				Bold(true),

			profitNeutral: lipgloss.NewStyle().
				Foreground(palette.TextMuted).
				Bold(false),

			stats: lipgloss.NewStyle().
				Foreground(palette.Text).
				Padding(0, 1),

			hotkeys: lipgloss.NewStyle().
				Foreground(palette.TextMuted).
				Italic(true).
				Align(lipgloss.Center),
		},
	}
}

// SetTrade updates the trade under inspection
func (tp *TradeDetailPane) SetTrade(trade *engine.Trade) {
	tp.trade = trade
}

// SetVisible toggles the visibility of the detail pane
func (tp *TradeDetailPane) SetVisible(visible bool) {
	tp.visible = visible
}

// IsVisible returns whether the detail pane is visible
func (tp *TradeDetailPane) IsVisible() bool {
	return tp.visible
}

// SetWidth sets the component width for responsive layout
func (tp *TradeDetailPane) SetWidth(width int) {
	tp.width = width
	tp.style.container = tp.style.container.Width(width - 4)
}

// View renders the trade detail pane
func (tp *TradeDetailPane) View() string {
	if !tp.visible || tp.trade == nil {
		return ""
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		tp.renderTitle(),
		tp.renderProfit(),
		tp.renderDetails(),
		tp.renderHotkeys(),
	)

	return tp.style.container.Render(content)
}

// renderTitle renders the title with token and trade type
func (tp *TradeDetailPane) renderTitle() string {
	title := fmt.Sprintf("Trade %s: %s (%s)", shortID(tp.trade.ID), tp.trade.Token, tp.trade.Type)
	return tp.style.title.Render(title)
}

// renderProfit renders the signed profit line
func (tp *TradeDetailPane) renderProfit() string {
	var profitStyle lipgloss.Style
	var emoji string

	if tp.trade.Profit > 0 {
		profitStyle = tp.style.profitPositive
		emoji = " 📈"
	} else if tp.trade.Profit < 0 {
		profitStyle = tp.style.profitNegative
		emoji = " 📉"
	} else {
		profitStyle = tp.style.profitNeutral
	}

	line := fmt.Sprintf("Profit: %+.6f SOL%s", tp.trade.Profit, emoji)
	executed := fmt.Sprintf("Executed: %s", tp.trade.Timestamp.Format("15:04:05"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		profitStyle.Render(line),
		tp.style.stats.Render(executed),
	)
}

// renderDetails renders the per-type payload attached to the trade
func (tp *TradeDetailPane) renderDetails() string {
	var lines []string

	switch d := tp.trade.Details.(type) {
	case engine.ArbitrageDetails:
		lines = append(lines,
			fmt.Sprintf("Buy:  %s @ %.8f SOL", d.BuyDex, d.BuyPrice),
			fmt.Sprintf("Sell: %s @ %.8f SOL", d.SellDex, d.SellPrice),
			fmt.Sprintf("Spread: %.2f%%", d.ProfitPercentage),
		)
	case engine.SnipeDetails:
		lines = append(lines,
			fmt.Sprintf("Mint: %s", shortID(d.MintAddress)),
			fmt.Sprintf("Entry: %.8f SOL", d.InitialPrice),
			fmt.Sprintf("Risk Score: %.1f", d.RiskScore),
		)
	case engine.EmergencyStopDetails:
		reason := d.Reason
		if reason == "" {
			reason = "not reported"
		}
		lines = append(lines, fmt.Sprintf("Reason: %s", reason))
	case engine.GenericDetails:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %v", k, d[k]))
		}
		if len(lines) == 0 {
			lines = append(lines, "No details reported")
		}
	default:
		lines = append(lines, "No details reported")
	}

	return tp.style.stats.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderHotkeys renders hotkey instructions
func (tp *TradeDetailPane) renderHotkeys() string {
	return tp.style.hotkeys.Render("[esc] close  [c] export trades")
}

// GetHeight returns the component height for layout calculations
func (tp *TradeDetailPane) GetHeight() int {
	if !tp.visible || tp.trade == nil {
		return 0
	}
	return 10 // Border + padding + content lines
}

// shortID truncates long identifiers for display
func shortID(id string) string {
	if len(id) > 16 {
		return id[:8] + "..." + id[len(id)-4:]
	}
	return id
}
