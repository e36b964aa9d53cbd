package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/solmev/mevdash/internal/dashboard"
	"github.com/solmev/mevdash/internal/export"
	"github.com/solmev/mevdash/internal/ui"
	"github.com/solmev/mevdash/internal/ui/component"
	"github.com/solmev/mevdash/internal/ui/router"
	"github.com/solmev/mevdash/internal/ui/style"
)

// Panes the user can focus with tab
const (
	paneOpportunities = iota
	paneTrades
	panePumpfun
	paneMicro
	paneCount
)

// tickMsg drives the clock and staleness display
type tickMsg time.Time

// confirmPrompt is a pending confirmation request shown as a modal
type confirmPrompt struct {
	title   string
	message string
	reply   chan<- bool
}

// DashboardScreen renders the live engine state: status, derived metrics,
// opportunity feeds, the trade window and dispatched action outcomes.
type DashboardScreen struct {
	svc    ui.ServiceProvider
	width  int
	height int
	keyMap ui.KeyMap

	// UI components
	header      *component.StatusHeader
	helpBar     *component.HelpBar
	oppTable    *component.Table
	tradeTable  *component.Table
	pumpTable   *component.Table
	microTable  *component.Table
	sparkline   *component.Sparkline
	pnlGauge    *component.PnLGauge
	tradeDetail *component.TradeDetailPane
	logPane     *component.CompactLogViewer

	// State
	snap        dashboard.Snapshot
	focusedPane int
	confirm     *confirmPrompt
	errors      []string
	notice      string
	now         time.Time

	metricStyles style.MetricsStyles
}

// NewDashboardScreen creates the dashboard screen
func NewDashboardScreen(svc ui.ServiceProvider) *DashboardScreen {
	keyMap := ui.DefaultKeyMap()

	s := &DashboardScreen{
		svc:          svc,
		keyMap:       keyMap,
		focusedPane:  paneOpportunities,
		errors:       make([]string, 0),
		now:          time.Now(),
		header:       component.NewStatusHeader(),
		sparkline:    component.NewSparkline(24),
		pnlGauge:     component.NewPnLGauge(16),
		tradeDetail:  component.NewTradeDetailPane(),
		logPane:      component.NewCompactLogViewer(svc.GetLogBuffer()),
		metricStyles: style.NewMetricsStyles(style.DefaultPalette()),
	}
	s.sparkline.ShowText(true)
	s.logPane.SetVisible(false)

	s.initializeTables()
	s.initializeHelpBar()
	s.refreshFromStore()

	return s
}

// initializeTables sets up the four feed tables
func (s *DashboardScreen) initializeTables() {
	s.oppTable = component.NewTable().
		AddColumn("Token", 8, lipgloss.Left).
		AddColumn("Route", 16, lipgloss.Left).
		AddColumn("Buy", 11, lipgloss.Right).
		AddColumn("Sell", 11, lipgloss.Right).
		AddColumn("Spread", 8, lipgloss.Right).
		AddColumn("Est SOL", 9, lipgloss.Right).
		AddColumn("Age", 5, lipgloss.Right).
		SetShowBorder(false).
		SetSelectable(true).
		SetZebra(true)

	s.tradeTable = component.NewTable().
		AddColumn("Time", 8, lipgloss.Left).
		AddColumn("Type", 14, lipgloss.Left).
		AddColumn("Token", 10, lipgloss.Left).
		AddColumn("Profit SOL", 11, lipgloss.Right).
		SetShowBorder(false).
		SetSelectable(true).
		SetZebra(true)

	s.pumpTable = component.NewTable().
		AddColumn("Symbol", 8, lipgloss.Left).
		AddColumn("Name", 14, lipgloss.Left).
		AddColumn("MC $", 10, lipgloss.Right).
		AddColumn("Price", 12, lipgloss.Right).
		AddColumn("Risk", 5, lipgloss.Right).
		AddColumn("Size", 7, lipgloss.Right).
		SetShowBorder(false).
		SetSelectable(true).
		SetZebra(true)

	s.microTable = component.NewTable().
		AddColumn("Pair", 12, lipgloss.Left).
		AddColumn("Route", 16, lipgloss.Left).
		AddColumn("Net SOL", 9, lipgloss.Right).
		AddColumn("Spread", 8, lipgloss.Right).
		AddColumn("Fees", 8, lipgloss.Right).
		SetShowBorder(false).
		SetSelectable(true).
		SetZebra(true)
}

// initializeHelpBar sets up the help bar
func (s *DashboardScreen) initializeHelpBar() {
	s.helpBar = component.NewHelpBar().
		SetKeyBindings(s.keyMap.ContextualHelp(ui.RouteDashboard)).
		SetCompact(false)
}

// Init initializes the dashboard screen
func (s *DashboardScreen) Init() tea.Cmd {
	return tea.Batch(
		ui.ListenBus(),
		s.tick(),
	)
}

// Update handles screen updates
func (s *DashboardScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// A pending confirmation swallows every key until answered
		if s.confirm != nil {
			switch msg.String() {
			case "y", "Y", "enter":
				s.confirm.reply <- true
				s.confirm = nil
			case "n", "N", "esc":
				s.confirm.reply <- false
				s.confirm = nil
			}
			cmds = append(cmds, ui.ListenBus())
			return s, tea.Batch(cmds...)
		}

		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, tea.Quit

		case key.Matches(msg, s.keyMap.Back):
			if s.tradeDetail.IsVisible() {
				s.tradeDetail.SetVisible(false)
			} else {
				cmds = append(cmds, func() tea.Msg {
					return ui.RouterMsg{To: ui.RouteMainMenu}
				})
			}

		case key.Matches(msg, s.keyMap.Tab):
			s.focusedPane = (s.focusedPane + 1) % paneCount

		case key.Matches(msg, s.keyMap.ShiftTab):
			s.focusedPane--
			if s.focusedPane < 0 {
				s.focusedPane = paneCount - 1
			}

		case key.Matches(msg, s.keyMap.Up):
			s.focusedTable().MoveUp()
			s.syncTradeDetail()

		case key.Matches(msg, s.keyMap.Down):
			s.focusedTable().MoveDown()
			s.syncTradeDetail()

		case key.Matches(msg, s.keyMap.Enter):
			switch s.focusedPane {
			case paneTrades:
				s.toggleTradeDetail()
			case panePumpfun:
				cmds = append(cmds, s.snipeSelectedCmd())
			}

		case key.Matches(msg, s.keyMap.StartEngine):
			if !s.snap.SetupComplete {
				cmds = append(cmds, func() tea.Msg {
					return ui.RouterMsg{To: ui.RouteSetup}
				})
			} else {
				cmds = append(cmds, s.actionCmd("Start engine", s.svc.GetDispatcher().Start))
			}

		case key.Matches(msg, s.keyMap.StopEngine):
			cmds = append(cmds, s.actionCmd("Stop engine", s.svc.GetDispatcher().Stop))

		case key.Matches(msg, s.keyMap.EmergencyStop):
			cmds = append(cmds, s.actionCmd("Emergency stop", s.svc.GetDispatcher().EmergencyStop))

		case key.Matches(msg, s.keyMap.MicroArb):
			cmds = append(cmds, s.actionCmd("Micro arbitrage", s.svc.GetDispatcher().ExecuteMicroArbitrage))

		case key.Matches(msg, s.keyMap.Snipe):
			cmds = append(cmds, s.snipeSelectedCmd())

		case key.Matches(msg, s.keyMap.Refresh):
			cmds = append(cmds, s.refreshCmd())

		case key.Matches(msg, s.keyMap.ExportTrades):
			cmds = append(cmds, s.exportTradesCmd())

		case key.Matches(msg, s.keyMap.SaveSnapshot):
			cmds = append(cmds, s.saveSnapshotCmd())

		case key.Matches(msg, s.keyMap.ToggleLogs):
			s.logPane.SetVisible(!s.logPane.IsVisible())
		}

	case tea.MouseMsg:
		// Wheel scrolling for the log pane only; table navigation stays on keys
		cmds = append(cmds, s.logPane.Update(msg))

	case tickMsg:
		s.now = time.Time(msg)
		cmds = append(cmds, s.tick())

	case ui.StateUpdateMsg:
		s.refreshFromStore()

	case ui.ConfirmRequestMsg:
		s.confirm = &confirmPrompt{
			title:   msg.Title,
			message: msg.Message,
			reply:   msg.Reply,
		}

	case ui.ErrorMsg:
		s.errors = append(s.errors, msg.Error.Error())
		if len(s.errors) > 3 {
			s.errors = s.errors[len(s.errors)-3:]
		}

	case ui.SuccessMsg:
		s.errors = make([]string, 0) // Clear errors on success
		s.notice = style.SuccessStyle.Render(fmt.Sprintf("✔ %s: %s", msg.Title, msg.Message))

	case ui.NoticeMsg:
		s.notice = style.InfoStyle.Render(fmt.Sprintf("ℹ %s: %s", msg.Title, msg.Message))
	}

	// Continue listening for events
	cmds = append(cmds, ui.ListenBus())

	return s, tea.Batch(cmds...)
}

// View renders the dashboard screen
func (s *DashboardScreen) View() string {
	if s.width == 0 || s.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	content.WriteString(s.header.View())
	content.WriteString("\n")

	// Pending confirmation replaces the body so the answer is deliberate
	if s.confirm != nil {
		content.WriteString(s.renderConfirm())
		content.WriteString("\n")
		content.WriteString(s.helpBar.SetWidth(s.width).View())
		return content.String()
	}

	if !s.snap.SetupComplete {
		banner := style.WarningStyle.Render("⚠ Engine not configured. Press s to open setup.")
		content.WriteString(banner)
		content.WriteString("\n")
	}

	content.WriteString(s.renderStatusBar())
	content.WriteString("\n")

	if s.snap.LastError != "" {
		content.WriteString(style.ErrorStyle.Render("❌ " + s.snap.LastError))
		content.WriteString("\n")
	}
	for _, err := range s.errors {
		content.WriteString(style.ErrorStyle.Render("❌ " + err))
		content.WriteString("\n")
	}
	if s.notice != "" {
		content.WriteString(s.notice)
		content.WriteString("\n")
	}

	// Metrics and alerts side by side
	content.WriteString(style.AdaptiveJoinHorizontal(s.width,
		s.renderMetricsPanel(),
		s.renderAlertsPanel(),
	))
	content.WriteString("\n")

	// Feed panes, two per row
	content.WriteString(style.AdaptiveJoinHorizontal(s.width,
		s.renderPane("Arbitrage Opportunities", s.oppTable.View(), paneOpportunities),
		s.renderPane("Recent Trades", s.tradeTable.View(), paneTrades),
	))
	content.WriteString("\n")
	content.WriteString(style.AdaptiveJoinHorizontal(s.width,
		s.renderPane("Pump.fun Feed", s.pumpTable.View(), panePumpfun),
		s.renderPane("Micro Arbitrage", s.microTable.View(), paneMicro),
	))
	content.WriteString("\n")

	if s.tradeDetail.IsVisible() {
		content.WriteString(s.tradeDetail.View())
		content.WriteString("\n")
	}

	if s.logPane.IsVisible() {
		content.WriteString(s.logPane.View())
		content.WriteString("\n")
	}

	content.WriteString(s.renderInstructions())
	content.WriteString("\n")

	content.WriteString(s.helpBar.SetWidth(s.width).View())

	return content.String()
}

// SetSize sets the screen dimensions
func (s *DashboardScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.header.SetWidth(width)
	s.helpBar.SetWidth(width)
	s.helpBar.SetCompact(width < 110)

	half := style.AdaptiveWidth(width, 50) - 4
	s.oppTable.SetSize(half, 8)
	s.tradeTable.SetSize(half, 8)
	s.pumpTable.SetSize(half, 8)
	s.microTable.SetSize(half, 8)

	s.sparkline.SetWidth(min(style.AdaptiveWidth(width, 30), 32))
	s.tradeDetail.SetWidth(width)
	s.logPane.SetSize(width, 10)
}

// focusedTable returns the table owning keyboard navigation
func (s *DashboardScreen) focusedTable() *component.Table {
	switch s.focusedPane {
	case paneTrades:
		return s.tradeTable
	case panePumpfun:
		return s.pumpTable
	case paneMicro:
		return s.microTable
	default:
		return s.oppTable
	}
}

// toggleTradeDetail opens or closes the detail pane for the selected trade
func (s *DashboardScreen) toggleTradeDetail() {
	if s.tradeDetail.IsVisible() {
		s.tradeDetail.SetVisible(false)
		return
	}
	idx := s.tradeTable.GetSelectedRow()
	if idx < 0 || idx >= len(s.snap.Trades) {
		return
	}
	trade := s.snap.Trades[idx]
	s.tradeDetail.SetTrade(&trade)
	s.tradeDetail.SetVisible(true)
}

// syncTradeDetail follows the trade selection while the detail pane is open
func (s *DashboardScreen) syncTradeDetail() {
	if !s.tradeDetail.IsVisible() || s.focusedPane != paneTrades {
		return
	}
	idx := s.tradeTable.GetSelectedRow()
	if idx < 0 || idx >= len(s.snap.Trades) {
		return
	}
	trade := s.snap.Trades[idx]
	s.tradeDetail.SetTrade(&trade)
}

// renderConfirm renders the confirmation modal
func (s *DashboardScreen) renderConfirm() string {
	palette := style.DefaultPalette()

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(palette.Warning).
		Padding(1, 4).
		Align(lipgloss.Center)

	body := lipgloss.JoinVertical(
		lipgloss.Center,
		style.WarningStyle.Render("⚠ "+s.confirm.title),
		"",
		s.confirm.message,
		"",
		style.HelpStyle.Render("[y] confirm  •  [n] cancel"),
	)

	return lipgloss.Place(s.width, 12, lipgloss.Center, lipgloss.Center, box.Render(body))
}

// renderStatusBar renders feed counts and sync state
func (s *DashboardScreen) renderStatusBar() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Opportunities: %d", len(s.snap.Opportunities)))
	parts = append(parts, fmt.Sprintf("Trades: %d", len(s.snap.Trades)))
	parts = append(parts, fmt.Sprintf("Pump.fun: %d", len(s.snap.Pumpfun)))
	parts = append(parts, fmt.Sprintf("Micro: %d", len(s.snap.Micro)))

	if s.svc.GetPoller().Active() {
		interval := time.Duration(s.svc.GetConfig().PollInterval) * time.Millisecond
		parts = append(parts, fmt.Sprintf("Poll: %ds", int(interval.Seconds())))
	} else {
		parts = append(parts, "Poll: paused")
	}

	if s.snap.Loading {
		parts = append(parts, "Syncing...")
	} else if !s.snap.LastSyncAt.IsZero() {
		parts = append(parts, fmt.Sprintf("Updated: %s", s.snap.LastSyncAt.Format("15:04:05")))
	}

	return style.SubHeaderStyle.Render(strings.Join(parts, " • "))
}

// renderMetricsPanel renders the derived session metrics
func (s *DashboardScreen) renderMetricsPanel() string {
	ms := s.metricStyles
	m := s.snap.Metrics

	profitStyle := ms.Positive
	if m.TotalProfit < 0 {
		profitStyle = ms.Negative
	}

	label := func(text string) string {
		return ms.Label.Render(fmt.Sprintf("%-14s", text))
	}

	lines := []string{
		style.SubHeaderStyle.Render("Session Metrics"),
		label("Profit") + profitStyle.Render(fmt.Sprintf("%+.4f SOL", m.TotalProfit)),
		label("PnL") + s.pnlGauge.View(),
		label("Trend") + s.sparkline.View() + ms.Label.Render(fmt.Sprintf(" (%+.1f%%)", s.sparkline.GetChangePercent())),
		label("Trades") + ms.Value.Render(fmt.Sprintf("%d", m.TotalTrades)),
		label("Success Rate") + ms.Value.Render(fmt.Sprintf("%.1f%%", m.SuccessRate)),
		label("Win Rate") + ms.Value.Render(fmt.Sprintf("%.1f%%", m.WinRate)),
		label("Avg Profit") + ms.Value.Render(fmt.Sprintf("%.4f SOL", m.AvgProfit)),
		label("Best / Worst") + style.ProfitStyle.Render(fmt.Sprintf("%.4f", m.BestTrade)) +
			ms.Label.Render(" / ") + style.LossStyle.Render(fmt.Sprintf("%.4f", m.WorstTrade)),
	}

	if s.snap.Status != nil && s.snap.Status.SessionStats != nil {
		stats := s.snap.Status.SessionStats
		lines = append(lines, label("Scans")+ms.Value.Render(fmt.Sprintf("%d (%d found)", stats.TotalScans, stats.OpportunitiesFound)))
	}
	if perf := s.snap.MicroPerformance; perf != nil {
		netStyle := ms.Positive
		if perf.NetProfitSOL < 0 {
			netStyle = ms.Negative
		}
		lines = append(lines, label("Micro Net")+netStyle.Render(fmt.Sprintf("%+.4f SOL", perf.NetProfitSOL))+
			ms.Label.Render(fmt.Sprintf(" ROI %.1f%%", perf.ROIPercentage)))
	}
	if s.snap.WalletBalance != nil {
		lines = append(lines, label("Balance")+ms.Value.Render(fmt.Sprintf("%.4f SOL ($%.2f)",
			s.snap.WalletBalance.BalanceSOL, s.snap.WalletBalance.BalanceUSD)))
	}

	width := style.AdaptiveWidth(s.width, 60) - 4
	return ms.Container.Width(width).Render(strings.Join(lines, "\n"))
}

// renderAlertsPanel renders the most recent opportunity alerts
func (s *DashboardScreen) renderAlertsPanel() string {
	alerts := s.svc.GetAlerts().Recent(6)

	lines := []string{style.SubHeaderStyle.Render("Alerts")}
	if len(alerts) == 0 {
		lines = append(lines, style.FlatStyle.Render("No alerts yet"))
	}
	for _, alert := range alerts {
		ts := alert.Timestamp.Format("15:04:05")
		lines = append(lines, fmt.Sprintf("%s %s %s",
			style.FlatStyle.Render(ts),
			style.InfoStyle.Render(alert.Token),
			alert.Message))
	}

	width := style.AdaptiveWidth(s.width, 40) - 4
	return style.PanelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// renderPane renders a feed table inside a bordered panel
func (s *DashboardScreen) renderPane(title, body string, pane int) string {
	panel := style.PanelStyle
	if pane == s.focusedPane {
		panel = style.ActivePanelStyle
	}

	width := style.AdaptiveWidth(s.width, 50) - 2
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		style.SubHeaderStyle.Render(title),
		body,
	)
	return panel.Width(width).Render(content)
}

// renderInstructions renders usage instructions
func (s *DashboardScreen) renderInstructions() string {
	var instructions []string

	instructions = append(instructions, "tab: switch pane")
	instructions = append(instructions, "enter: inspect trade / snipe")
	instructions = append(instructions, "s: start")
	instructions = append(instructions, "x: stop")
	instructions = append(instructions, "e: emergency stop")
	instructions = append(instructions, "m: micro arb")
	instructions = append(instructions, "r: refresh")
	instructions = append(instructions, "c: export")
	instructions = append(instructions, "ctrl+s: snapshot")

	return style.HelpStyle.Render(strings.Join(instructions, " • "))
}

// refreshFromStore pulls a fresh snapshot and reflows every component
func (s *DashboardScreen) refreshFromStore() {
	snap := s.svc.GetStore().Snapshot()
	s.snap = snap

	wallet := ""
	running := false
	if snap.Status != nil {
		wallet = snap.Status.WalletAddress
		running = snap.Status.IsRunning
	}
	s.header.SetWallet(wallet)
	s.header.SetRunning(running)
	s.header.SetEngineLink(component.EngineLink{
		Reachable: snap.FetchFailures == 0 && !snap.LastSyncAt.IsZero(),
		LastSync:  snap.LastSyncAt,
		Failures:  snap.FetchFailures,
	})
	s.header.SetTotalPnL(snap.Metrics.TotalProfit)

	s.sparkline.SetData(snap.ProfitSeries)
	if snap.WalletBalance != nil && snap.WalletBalance.BalanceSOL > 0 {
		s.pnlGauge.SetValue(snap.Metrics.TotalProfit / snap.WalletBalance.BalanceSOL * 100)
	} else {
		s.pnlGauge.SetValue(0)
	}

	s.updateTables()
	s.syncTradeDetail()
}

// updateTables reloads table rows from the snapshot
func (s *DashboardScreen) updateTables() {
	oppRows := make([][]string, 0, len(s.snap.Opportunities))
	for _, opp := range s.snap.Opportunities {
		oppRows = append(oppRows, []string{
			opp.TokenSymbol,
			opp.BuyDex + "→" + opp.SellDex,
			fmt.Sprintf("%.6f", opp.BuyPrice),
			fmt.Sprintf("%.6f", opp.SellPrice),
			fmt.Sprintf("%.2f%%", opp.ProfitPercentage),
			fmt.Sprintf("%.4f", opp.ProfitAmount),
			formatAge(opp.Timestamp.Time, s.now),
		})
	}
	s.oppTable.SetRows(oppRows)

	tradeRows := make([][]string, 0, len(s.snap.Trades))
	for _, trade := range s.snap.Trades {
		tradeRows = append(tradeRows, []string{
			trade.Timestamp.Format("15:04:05"),
			string(trade.Type),
			trade.Token,
			fmt.Sprintf("%+.4f", trade.Profit),
		})
	}
	s.tradeTable.SetRows(tradeRows)
	for i, trade := range s.snap.Trades {
		if trade.Profit > 0 {
			s.tradeTable.SetRowStyle(i, style.ProfitStyle)
		} else if trade.Profit < 0 {
			s.tradeTable.SetRowStyle(i, style.LossStyle)
		}
	}

	pumpRows := make([][]string, 0, len(s.snap.Pumpfun))
	for _, opp := range s.snap.Pumpfun {
		pumpRows = append(pumpRows, []string{
			opp.Token.Symbol,
			opp.Token.Name,
			fmt.Sprintf("%.0f", opp.Token.MarketCap),
			fmt.Sprintf("%.8f", opp.Token.Price),
			fmt.Sprintf("%.1f", opp.RiskScore),
			fmt.Sprintf("%.3f", opp.SuggestedSize),
		})
	}
	s.pumpTable.SetRows(pumpRows)
	for i, opp := range s.snap.Pumpfun {
		if opp.RiskScore >= 7 {
			s.pumpTable.SetRowStyle(i, style.LossStyle)
		} else if opp.RiskScore <= 3 {
			s.pumpTable.SetRowStyle(i, style.ProfitStyle)
		}
	}

	microRows := make([][]string, 0, len(s.snap.Micro))
	for _, opp := range s.snap.Micro {
		microRows = append(microRows, []string{
			opp.TokenPair,
			opp.BuyDex + "→" + opp.SellDex,
			fmt.Sprintf("%+.4f", opp.NetProfit),
			fmt.Sprintf("%.2f%%", opp.ProfitPercentage),
			fmt.Sprintf("%.4f", opp.EstimatedFees),
		})
	}
	s.microTable.SetRows(microRows)
	for i, opp := range s.snap.Micro {
		if opp.NetProfit > 0 {
			s.microTable.SetRowStyle(i, style.ProfitStyle)
		} else {
			s.microTable.SetRowStyle(i, style.LossStyle)
		}
	}
}

// tick schedules the next clock update
func (s *DashboardScreen) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// actionCmd dispatches an engine action. Outcomes arrive over the update bus
// from the dispatcher; only the duplicate rejection needs reporting here.
func (s *DashboardScreen) actionCmd(title string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(s.svc.GetContext()); errors.Is(err, dashboard.ErrActionInFlight) {
			return ui.NoticeMsg{Title: title, Message: "Action already in flight"}
		}
		return nil
	}
}

// snipeSelectedCmd dispatches a manual snipe for the selected pump.fun token
func (s *DashboardScreen) snipeSelectedCmd() tea.Cmd {
	idx := s.pumpTable.GetSelectedRow()
	if idx < 0 || idx >= len(s.snap.Pumpfun) {
		return func() tea.Msg {
			return ui.NoticeMsg{Title: "Pump.fun snipe", Message: "No token selected"}
		}
	}
	mint := s.snap.Pumpfun[idx].Token.Mint
	return s.actionCmd("Pump.fun snipe", func(ctx context.Context) error {
		return s.svc.GetDispatcher().ExecutePumpfunTrade(ctx, mint)
	})
}

// refreshCmd forces an immediate poll round
func (s *DashboardScreen) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(s.svc.GetContext(), 10*time.Second)
		defer cancel()
		s.svc.GetPoller().RefreshNow(ctx)
		return nil
	}
}

// exportTradesCmd writes the current trade window to a CSV file
func (s *DashboardScreen) exportTradesCmd() tea.Cmd {
	trades := s.snap.Trades
	outputDir := s.svc.GetConfig().ExportDir
	return func() tea.Msg {
		if len(trades) == 0 {
			return ui.NoticeMsg{Title: "Export", Message: "No trades to export"}
		}
		path, err := s.svc.GetExporter().ExportTrades(trades, export.ExportOptions{
			Format:    export.FormatCSV,
			OutputDir: outputDir,
		})
		if err != nil {
			return ui.ErrorMsg{Error: err, Title: "Export"}
		}
		return ui.SuccessMsg{Title: "Export", Message: "Trades written to " + path}
	}
}

// saveSnapshotCmd writes the full dashboard snapshot to a JSON file
func (s *DashboardScreen) saveSnapshotCmd() tea.Cmd {
	snap := s.snap
	outputDir := s.svc.GetConfig().ExportDir
	return func() tea.Msg {
		path, err := s.svc.GetExporter().ExportSnapshot(snap, outputDir)
		if err != nil {
			return ui.ErrorMsg{Error: err, Title: "Snapshot"}
		}
		return ui.SuccessMsg{Title: "Snapshot", Message: "Snapshot written to " + path}
	}
}

// formatAge renders how long ago a feed item was observed
func formatAge(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	age := now.Sub(t)
	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(age.Hours()))
	}
}
