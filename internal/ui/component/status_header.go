package component

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/solmev/mevdash/internal/ui/style"
)

// EngineLink represents the health of the connection to the trading engine.
type EngineLink struct {
	Reachable bool
	LastSync  time.Time
	Failures  int
}

// StatusHeader provides a clean header with essential status information
type StatusHeader struct {
	wallet   string
	running  bool
	link     EngineLink
	totalPnL float64
	style    style.HeaderStyles
	width    int
}

// NewStatusHeader creates a new status header component
func NewStatusHeader() *StatusHeader {
	return &StatusHeader{
		wallet:   "Unknown",
		totalPnL: 0.0,
		style:    style.NewHeaderStyles(style.DefaultPalette()),
	}
}

// SetWallet updates the wallet address display
func (sh *StatusHeader) SetWallet(wallet string) {
	if len(wallet) > 8 {
		sh.wallet = wallet[:8] + "..."
	} else if wallet != "" {
		sh.wallet = wallet
	} else {
		sh.wallet = "Unknown"
	}
}

// SetRunning updates the engine run state display
func (sh *StatusHeader) SetRunning(running bool) {
	sh.running = running
}

// SetEngineLink updates the engine connection status
func (sh *StatusHeader) SetEngineLink(link EngineLink) {
	sh.link = link
}

// SetTotalPnL updates the total PnL display
func (sh *StatusHeader) SetTotalPnL(pnl float64) {
	sh.totalPnL = pnl
}

// SetWidth sets the component width for responsive layout
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
	sh.style.Container = sh.style.Container.Width(width - 4)
}

// View renders the status header
func (sh *StatusHeader) View() string {
	title := sh.style.Title.Render("MEV Dashboard")
	runState := sh.renderRunState()
	wallet := sh.style.Wallet.Render(fmt.Sprintf("Wallet: %s", sh.wallet))
	linkStatus := sh.renderLinkStatus()
	pnlStatus := sh.renderPnLStatus()

	content := lipgloss.JoinHorizontal(
		lipgloss.Left,
		title,
		" | ",
		runState,
		" | ",
		wallet,
		" | ",
		linkStatus,
		" | ",
		pnlStatus,
	)

	return sh.style.Container.Render(content)
}

// renderRunState renders the engine run state
func (sh *StatusHeader) renderRunState() string {
	if sh.running {
		return sh.style.Running.Render("▶ RUNNING")
	}
	return sh.style.Stopped.Render("■ STOPPED")
}

// renderLinkStatus renders the engine connection status with emoji
func (sh *StatusHeader) renderLinkStatus() string {
	if sh.link.Reachable {
		age := "never"
		if !sh.link.LastSync.IsZero() {
			age = fmt.Sprintf("%ds ago", int(time.Since(sh.link.LastSync).Seconds()))
		}
		status := fmt.Sprintf("🟢 Engine: OK (%s)", age)
		return sh.style.LinkGood.Render(status)
	}

	status := "🔴 Engine: UNREACHABLE"
	if sh.link.Failures > 0 {
		status = fmt.Sprintf("🔴 Engine: UNREACHABLE (%d failures)", sh.link.Failures)
	}
	return sh.style.LinkBad.Render(status)
}

// renderPnLStatus renders the total PnL with trend emoji
func (sh *StatusHeader) renderPnLStatus() string {
	var emoji string
	var renderer lipgloss.Style

	if sh.totalPnL > 0 {
		emoji = "📈"
		renderer = sh.style.PnLPositive
	} else if sh.totalPnL < 0 {
		emoji = "📉"
		renderer = sh.style.PnLNegative
	} else {
		emoji = ""
		renderer = sh.style.PnLNeutral
	}

	var status string
	if emoji != "" {
		status = fmt.Sprintf("Session PnL: %.4f SOL %s", sh.totalPnL, emoji)
	} else {
		status = fmt.Sprintf("Session PnL: %.4f SOL", sh.totalPnL)
	}

	return renderer.Render(status)
}

// GetHeight returns the component height for layout calculations
func (sh *StatusHeader) GetHeight() int {
	return 3 // Border + padding + content
}
