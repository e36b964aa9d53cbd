package screen

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gagliardetto/solana-go"
	"github.com/solmev/mevdash/internal/dashboard"
	"github.com/solmev/mevdash/internal/engine"
	"github.com/solmev/mevdash/internal/ui"
	"github.com/solmev/mevdash/internal/ui/component"
	"github.com/solmev/mevdash/internal/ui/router"
	"github.com/solmev/mevdash/internal/ui/style"
)

// SetupStep represents the current step in the setup wizard
type SetupStep int

const (
	StepConnection SetupStep = iota
	StepTradingParameters
	StepReview
)

// SetupScreen walks the user through configuring the engine: wallet and RPC
// endpoints first, then the trading parameters applied right after setup.
type SetupScreen struct {
	svc    ui.ServiceProvider
	width  int
	height int
	keyMap ui.KeyMap

	// UI components
	helpBar      *component.HelpBar
	connForm     *component.Form
	tradingForm  *component.Form
	previewTable *component.Table

	// State
	currentStep SetupStep
	errors      []string

	// Styling
	titleStyle     lipgloss.Style
	stepStyle      lipgloss.Style
	errorStyle     lipgloss.Style
	containerStyle lipgloss.Style
	previewStyle   lipgloss.Style
}

// NewSetupScreen creates the setup wizard
func NewSetupScreen(svc ui.ServiceProvider) *SetupScreen {
	palette := style.DefaultPalette()

	s := &SetupScreen{
		svc:         svc,
		keyMap:      ui.DefaultKeyMap(),
		currentStep: StepConnection,
		errors:      make([]string, 0),

		titleStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0).
			Align(lipgloss.Center),

		stepStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 2),

		errorStyle: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true).
			Padding(0, 2),

		containerStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(2, 4).
			Margin(1, 0),

		previewStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(1, 2),
	}

	s.initializeForms()
	s.initializePreviewTable()
	s.initializeHelpBar()

	return s
}

// initializeForms creates the wizard forms and prefills them from the local
// config and, where available, the engine's currently active configuration
func (s *SetupScreen) initializeForms() {
	s.connForm = component.NewForm().
		AddField("wallet_address", component.FieldTypeText, "Wallet Address", true, "Solana wallet public key").
		AddField("rpc_endpoint", component.FieldTypeText, "RPC Endpoint", true, "https://api.mainnet-beta.solana.com").
		AddField("private_rpc_endpoint", component.FieldTypeText, "Private RPC Endpoint", false, "Optional dedicated RPC").
		SetFieldValidation("wallet_address", validateWalletAddress).
		SetFieldValidation("rpc_endpoint", validateEndpoint).
		SetFieldValidation("private_rpc_endpoint", validateEndpoint)

	s.tradingForm = component.NewForm().
		AddField("scan_interval", component.FieldTypeNumber, "Scan Interval (s)", true, "10").
		AddField("max_concurrent_trades", component.FieldTypeNumber, "Max Concurrent Trades", true, "3").
		AddField("stop_loss", component.FieldTypeNumber, "Stop Loss %", true, "5.0").
		AddField("take_profit", component.FieldTypeNumber, "Take Profit %", true, "10.0").
		AddField("min_profit", component.FieldTypeNumber, "Min Profit %", true, "0.5").
		AddField("max_position_size", component.FieldTypeNumber, "Max Position (SOL)", true, "0.1").
		SetFieldValidation("scan_interval", validatePositiveInt).
		SetFieldValidation("max_concurrent_trades", validatePositiveInt).
		SetFieldValidation("stop_loss", validatePercentage).
		SetFieldValidation("take_profit", validatePositiveNumber).
		SetFieldValidation("min_profit", validateNonNegativeNumber).
		SetFieldValidation("max_position_size", validatePositiveNumber)

	// Defaults first, overridden below by anything already known
	s.tradingForm.SetFieldValue("scan_interval", "10")
	s.tradingForm.SetFieldValue("max_concurrent_trades", "3")
	s.tradingForm.SetFieldValue("stop_loss", "5.0")
	s.tradingForm.SetFieldValue("take_profit", "10.0")
	s.tradingForm.SetFieldValue("min_profit", "0.5")
	s.tradingForm.SetFieldValue("max_position_size", "0.1")

	cfg := s.svc.GetConfig()
	if cfg.WalletAddress != "" {
		s.connForm.SetFieldValue("wallet_address", cfg.WalletAddress)
	}
	if cfg.RPCEndpoint != "" {
		s.connForm.SetFieldValue("rpc_endpoint", cfg.RPCEndpoint)
	}
	if cfg.PrivateRPCEndpoint != "" {
		s.connForm.SetFieldValue("private_rpc_endpoint", cfg.PrivateRPCEndpoint)
	}

	snap := s.svc.GetStore().Snapshot()
	if snap.Status != nil && snap.Status.Config != nil {
		active := snap.Status.Config
		s.tradingForm.SetFieldValue("scan_interval", fmt.Sprintf("%.0f", active.ScanInterval))
		s.tradingForm.SetFieldValue("max_concurrent_trades", strconv.Itoa(active.MaxConcurrentTrades))
		s.tradingForm.SetFieldValue("min_profit", fmt.Sprintf("%.2f", active.MinProfitPercentage))
		s.tradingForm.SetFieldValue("max_position_size", fmt.Sprintf("%.3f", active.MaxPositionSize))
	}
}

// initializePreviewTable creates the review table
func (s *SetupScreen) initializePreviewTable() {
	s.previewTable = component.NewTable().
		AddColumn("Setting", 24, lipgloss.Left).
		AddColumn("Value", 44, lipgloss.Left).
		SetShowBorder(true).
		SetSelectable(false)
}

// initializeHelpBar creates the help bar
func (s *SetupScreen) initializeHelpBar() {
	s.helpBar = component.NewHelpBar().
		SetKeyBindings(s.keyMap.ContextualHelp(ui.RouteSetup)).
		SetCompact(false)
}

// Init initializes the setup screen
func (s *SetupScreen) Init() tea.Cmd {
	return tea.Batch(
		ui.ListenBus(),
		s.fetchWalletInfoCmd(),
	)
}

// fetchWalletInfoCmd loads the engine's current wallet view for the
// connection step. Failures stay silent, the panel simply does not render.
func (s *SetupScreen) fetchWalletInfoCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(s.svc.GetContext(), 5*time.Second)
		defer cancel()

		info, err := s.svc.GetEngineClient().GetWalletInfo(ctx)
		if err != nil {
			return nil
		}
		s.svc.GetStore().SetWalletInfo(info)
		return nil
	}
}

// Update handles screen updates
func (s *SetupScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, tea.Quit

		case key.Matches(msg, s.keyMap.Back):
			if s.currentStep == StepConnection {
				cmds = append(cmds, func() tea.Msg {
					return ui.RouterMsg{To: ui.RouteMainMenu}
				})
			} else {
				s.currentStep--
			}

		case key.Matches(msg, s.keyMap.SubmitForm):
			if s.validateAll() {
				cmds = append(cmds, s.submitCmd())
			}

		case key.Matches(msg, s.keyMap.Enter):
			switch s.currentStep {
			case StepReview:
				if s.validateAll() {
					cmds = append(cmds, s.submitCmd())
				}
			default:
				if s.validateCurrentStep() {
					s.currentStep++
				}
			}

		default:
			if s.currentStep < StepReview {
				form := s.currentForm()
				updated, cmd := form.Update(msg)
				*form = *updated
				cmds = append(cmds, cmd)
			}
		}

	case ui.ErrorMsg:
		s.errors = append(s.errors, msg.Error.Error())
		if len(s.errors) > 3 {
			s.errors = s.errors[len(s.errors)-3:]
		}

	case ui.SuccessMsg:
		s.errors = make([]string, 0)

	case ui.NoticeMsg:
		s.errors = append(s.errors, fmt.Sprintf("%s: %s", msg.Title, msg.Message))
	}

	// Continue listening for events
	cmds = append(cmds, ui.ListenBus())

	return s, tea.Batch(cmds...)
}

// View renders the setup screen
func (s *SetupScreen) View() string {
	if s.width == 0 || s.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	title := fmt.Sprintf("⚙ Engine Setup - Step %d/3", int(s.currentStep)+1)
	content.WriteString(s.titleStyle.Width(s.width).Render(title))
	content.WriteString("\n\n")

	content.WriteString(s.renderStepIndicator())
	content.WriteString("\n\n")

	if len(s.errors) > 0 {
		for _, err := range s.errors {
			content.WriteString(s.errorStyle.Render("❌ " + err))
			content.WriteString("\n")
		}
		content.WriteString("\n")
	}

	content.WriteString(s.containerStyle.Render(s.renderCurrentStep()))
	content.WriteString("\n")

	content.WriteString(s.helpBar.SetWidth(s.width).View())

	return content.String()
}

// SetSize sets the screen dimensions
func (s *SetupScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)

	formWidth := width - 8 // Account for container padding
	s.connForm.SetWidth(formWidth)
	s.tradingForm.SetWidth(formWidth)
	s.previewTable.SetSize(formWidth, height-10)
}

// currentForm returns the form for the current step
func (s *SetupScreen) currentForm() *component.Form {
	if s.currentStep == StepTradingParameters {
		return s.tradingForm
	}
	return s.connForm
}

// renderStepIndicator renders the step progress indicator
func (s *SetupScreen) renderStepIndicator() string {
	steps := []string{"Connection", "Trading", "Review"}
	var indicators []string

	palette := style.DefaultPalette()

	for i, stepName := range steps {
		switch {
		case i == int(s.currentStep):
			indicator := lipgloss.NewStyle().
				Foreground(palette.Background).
				Background(palette.Primary).
				Bold(true).
				Padding(0, 1).
				Render(fmt.Sprintf("%d. %s", i+1, stepName))
			indicators = append(indicators, indicator)
		case i < int(s.currentStep):
			indicator := lipgloss.NewStyle().
				Foreground(palette.Success).
				Bold(true).
				Render("✓ " + stepName)
			indicators = append(indicators, indicator)
		default:
			indicator := lipgloss.NewStyle().
				Foreground(palette.TextMuted).
				Render(fmt.Sprintf("%d. %s", i+1, stepName))
			indicators = append(indicators, indicator)
		}
	}

	return strings.Join(indicators, " → ")
}

// renderCurrentStep renders the content for the current step
func (s *SetupScreen) renderCurrentStep() string {
	switch s.currentStep {
	case StepReview:
		return s.renderReview()
	case StepTradingParameters:
		return s.stepStyle.Render("Trading Parameters") + "\n\n" + s.tradingForm.View()
	default:
		content := s.stepStyle.Render("Engine Connection") + "\n\n" + s.connForm.View()
		if panel := s.renderWalletInfo(); panel != "" {
			content += "\n\n" + panel
		}
		return content
	}
}

// renderWalletInfo shows the wallet the engine currently holds, fetched once
// when the wizard opens. Nothing renders until the engine has answered.
func (s *SetupScreen) renderWalletInfo() string {
	snap := s.svc.GetStore().Snapshot()
	if snap.WalletInfo == nil {
		return ""
	}
	info := snap.WalletInfo

	palette := style.DefaultPalette()
	label := lipgloss.NewStyle().Foreground(palette.TextMuted).Render
	lines := []string{
		s.stepStyle.Render("💼 Current Engine Wallet"),
		"",
		fmt.Sprintf("%s %s", label("Address:  "), info.WalletAddress),
		fmt.Sprintf("%s %.4f SOL ($%.2f)", label("Balance:  "), info.BalanceSOL, info.BalanceUSD),
		fmt.Sprintf("%s %.4f SOL", label("Available:"), info.AvailableForTrading),
		fmt.Sprintf("%s %.4f SOL", label("Reserve:  "), info.ReserveBalance),
		fmt.Sprintf("%s %.4f SOL", label("Max trade:"), info.MaxTradeSize),
	}
	return strings.Join(lines, "\n")
}

// renderReview renders the review table before submission
func (s *SetupScreen) renderReview() string {
	conn := s.connForm.GetValues()
	trading := s.tradingForm.GetValues()

	privateRPC := conn["private_rpc_endpoint"]
	if privateRPC == "" {
		privateRPC = "(engine default)"
	}

	rows := [][]string{
		{"Wallet Address", conn["wallet_address"]},
		{"RPC Endpoint", conn["rpc_endpoint"]},
		{"Private RPC Endpoint", privateRPC},
		{"Scan Interval", trading["scan_interval"] + "s"},
		{"Max Concurrent Trades", trading["max_concurrent_trades"]},
		{"Stop Loss", trading["stop_loss"] + "%"},
		{"Take Profit", trading["take_profit"] + "%"},
		{"Min Profit", trading["min_profit"] + "%"},
		{"Max Position Size", trading["max_position_size"] + " SOL"},
	}
	s.previewTable.SetRows(rows)

	var content strings.Builder
	content.WriteString(s.stepStyle.Render("📋 Review Configuration"))
	content.WriteString("\n\n")
	content.WriteString("The engine will be configured with the settings below:")
	content.WriteString("\n\n")
	content.WriteString(s.previewTable.View())
	content.WriteString("\n\n")
	content.WriteString(s.previewStyle.Render("Press ctrl+s to apply, or Esc to go back."))

	return content.String()
}

// validateCurrentStep validates the form of the current step
func (s *SetupScreen) validateCurrentStep() bool {
	s.errors = make([]string, 0)

	if !s.currentForm().Validate() {
		s.errors = append(s.errors, "Please fill in all required fields correctly.")
		return false
	}
	return true
}

// validateAll validates both forms before submission
func (s *SetupScreen) validateAll() bool {
	s.errors = make([]string, 0)

	if !s.connForm.Validate() {
		s.errors = append(s.errors, "Connection settings are incomplete.")
		s.currentStep = StepConnection
		return false
	}
	if !s.tradingForm.Validate() {
		s.errors = append(s.errors, "Trading parameters are incomplete.")
		s.currentStep = StepTradingParameters
		return false
	}
	return true
}

// submitCmd configures the engine and applies the trading parameters.
// Failure outcomes arrive over the update bus from the dispatcher.
func (s *SetupScreen) submitCmd() tea.Cmd {
	req := engine.SetupRequest{
		WalletAddress:      s.connForm.GetValue("wallet_address"),
		RPCEndpoint:        s.connForm.GetValue("rpc_endpoint"),
		PrivateRPCEndpoint: s.connForm.GetValue("private_rpc_endpoint"),
	}
	update := s.buildConfigUpdate()

	return func() tea.Msg {
		ctx := s.svc.GetContext()
		dispatcher := s.svc.GetDispatcher()

		if err := dispatcher.Setup(ctx, req); err != nil {
			if errors.Is(err, dashboard.ErrActionInFlight) {
				return ui.NoticeMsg{Title: "Engine setup", Message: "Action already in flight"}
			}
			return nil
		}

		if err := dispatcher.UpdateConfig(ctx, update); err != nil && errors.Is(err, dashboard.ErrActionInFlight) {
			return ui.NoticeMsg{Title: "Config update", Message: "Action already in flight"}
		}

		return ui.RouterMsg{To: ui.RouteDashboard}
	}
}

// buildConfigUpdate assembles the trading parameters. Values were validated
// before submission, so parse errors only leave zero fields behind.
func (s *SetupScreen) buildConfigUpdate() engine.ConfigUpdate {
	var update engine.ConfigUpdate
	update.ScanInterval, _ = strconv.Atoi(s.tradingForm.GetValue("scan_interval"))
	update.MaxConcurrentTrades, _ = strconv.Atoi(s.tradingForm.GetValue("max_concurrent_trades"))
	update.StopLossPercentage, _ = strconv.ParseFloat(s.tradingForm.GetValue("stop_loss"), 64)
	update.TakeProfitPercentage, _ = strconv.ParseFloat(s.tradingForm.GetValue("take_profit"), 64)
	update.MinProfitPercentage, _ = strconv.ParseFloat(s.tradingForm.GetValue("min_profit"), 64)
	update.MaxPositionSize, _ = strconv.ParseFloat(s.tradingForm.GetValue("max_position_size"), 64)
	return update
}

// validateWalletAddress checks the value decodes as a Solana public key
func validateWalletAddress(value string) error {
	if _, err := solana.PublicKeyFromBase58(value); err != nil {
		return fmt.Errorf("not a valid Solana address")
	}
	return nil
}

// validateEndpoint checks the value looks like an HTTP(S) URL
func validateEndpoint(value string) error {
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return fmt.Errorf("must start with http:// or https://")
	}
	return nil
}

func validatePositiveInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func validatePositiveNumber(value string) error {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

func validateNonNegativeNumber(value string) error {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || n < 0 {
		return fmt.Errorf("must be zero or a positive number")
	}
	return nil
}

func validatePercentage(value string) error {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || n < 0 || n > 100 {
		return fmt.Errorf("must be between 0 and 100")
	}
	return nil
}
