package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/solmev/mevdash/internal/config"
	"github.com/solmev/mevdash/internal/dashboard"
	"github.com/solmev/mevdash/internal/engine"
	"github.com/solmev/mevdash/internal/export"
	"github.com/solmev/mevdash/internal/license"
	"github.com/solmev/mevdash/internal/logger"
	"github.com/solmev/mevdash/internal/ui"
	"github.com/solmev/mevdash/internal/ui/router"
	"github.com/solmev/mevdash/internal/ui/screen"
)

// AppModel is the top-level TUI model. It owns the router and translates
// navigation requests coming over the bus into stack operations.
type AppModel struct {
	router *router.Router
	svc    ui.ServiceProvider
	width  int
	height int
}

// NewAppModel creates a new application model
func NewAppModel(svc ui.ServiceProvider) *AppModel {
	mainMenu := screen.NewMainMenuScreen(svc)

	return &AppModel{
		router: router.New(mainMenu),
		svc:    svc,
	}
}

// Init initializes the application
func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.router.Init(),
		ui.ListenBus(), // Start listening to the event bus
		tea.EnterAltScreen,
	)
}

// Update handles application-level updates
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.forward(msg, &cmds)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.forward(msg, &cmds)

	case ui.RouterMsg:
		if cmd := m.handleNavigation(msg.To); cmd != nil {
			cmds = append(cmds, cmd)
		}

	default:
		m.forward(msg, &cmds)
	}

	// Continue listening for events
	cmds = append(cmds, ui.ListenBus())

	return m, tea.Batch(cmds...)
}

// forward passes a message to the router and collects the resulting command
func (m *AppModel) forward(msg tea.Msg, cmds *[]tea.Cmd) {
	updated, cmd := m.router.Update(msg)
	m.router = updated.(*router.Router)
	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

// handleNavigation maps a route to a screen and a stack operation. The main
// menu resets the stack so back-and-forth navigation cannot grow it without
// bound; every other screen is pushed on top.
func (m *AppModel) handleNavigation(route ui.Route) tea.Cmd {
	switch route {
	case ui.RouteMainMenu:
		return m.router.ResetTo(screen.NewMainMenuScreen(m.svc))

	case ui.RouteDashboard:
		return m.router.Push(screen.NewDashboardScreen(m.svc))

	case ui.RouteSetup:
		return m.router.Push(screen.NewSetupScreen(m.svc))

	case ui.RouteLogs:
		return m.router.Push(screen.NewLogsScreen(m.svc))

	default:
		// Unknown route, stay on current screen
		return nil
	}
}

// View renders the application
func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	return m.router.View()
}

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to config file")
	flag.Parse()

	// Create context with signal handling
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Log to file and to the in-memory ring the logs screen reads from.
	// The console sink stays off so zap never writes over the TUI.
	logBuffer := logger.NewLogBuffer(0)
	appLogger := logger.Init(logger.Options{
		Debug:    cfg.DebugLogging,
		FilePath: cfg.LogFile,
		Buffer:   logBuffer,
		Console:  false,
	})
	defer func() {
		_ = appLogger.Sync()
	}()

	appLogger.Info("🚀 Starting MEV dashboard",
		zap.String("engine_url", cfg.EngineURL),
		zap.String("config_path", *configPath))

	if err := validateLicense(rootCtx, cfg, appLogger); err != nil {
		appLogger.Error("License validation failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "license validation failed: %v\n", err)
		os.Exit(1)
	}

	client := engine.NewClient(engine.ClientConfig{
		BaseURL: cfg.EngineURL,
		Timeout: time.Duration(cfg.RequestTimeout) * time.Millisecond,
	}, appLogger)

	probeEngine(rootCtx, client, appLogger)

	store := dashboard.NewStore(appLogger)
	poller := dashboard.NewPoller(client, store, dashboard.PollerConfig{
		Interval:   time.Duration(cfg.PollInterval) * time.Millisecond,
		TradeLimit: cfg.TradeLimit,
	}, appLogger)

	// Bus wiring must precede the first fetch so bootstrap results reach
	// the UI once it mounts
	ui.InitBus(ui.Bus, appLogger)
	ui.BindStore(store)

	notifier := ui.NewBusNotifier()
	dispatcher := dashboard.NewDispatcher(client, store, poller, notifier, ui.NewBusConfirmer(), appLogger)
	alerts := dashboard.NewAlertWatcher(store, notifier, dashboard.AlertConfig{
		MicroNetProfitMin: cfg.AlertMicroNetProfit,
		PumpfunRiskMax:    cfg.AlertPumpfunRisk,
	}, appLogger)

	svc := &ui.AppServices{
		Ctx:        rootCtx,
		Store:      store,
		Dispatcher: dispatcher,
		Poller:     poller,
		Client:     client,
		Alerts:     alerts,
		Exporter:   export.NewTradeExporter(appLogger),
		LogBuffer:  logBuffer,
		Config:     cfg,
		Logger:     appLogger,
	}

	// One-shot status fetch; a running engine arms the poll groups before
	// the first frame renders
	poller.Bootstrap(rootCtx)

	handler := ui.NewRecoveryHandler(appLogger, func() (tea.Model, []tea.ProgramOption) {
		return ui.NewSafeUIWrapper(NewAppModel(svc), appLogger), []tea.ProgramOption{
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		}
	})

	uiDone := make(chan error, 1)
	go func() {
		uiDone <- handler.RunWithRecovery()
	}()

	select {
	case <-rootCtx.Done():
		appLogger.Info("📡 Shutdown signal received")
		handler.Stop()
		<-uiDone
	case err := <-uiDone:
		if err != nil {
			appLogger.Error("💥 UI exited with error", zap.Error(err))
		}
	}

	appLogger.Info("🛑 Shutting down")
	poller.Stop()
	ui.GlobalBus.Close()
}

// validateLicense gates startup on a Keygen check. An empty key skips the
// gate, which is the local development path. Credentials come from the
// MEVDASH_KEYGEN_* environment variables with built-in distribution
// fallbacks.
func validateLicense(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) error {
	if cfg.License == "" {
		appLogger.Info("No license key configured, skipping validation")
		return nil
	}

	validator := license.NewKeygenValidator(
		os.Getenv("MEVDASH_KEYGEN_ACCOUNT_ID"),
		os.Getenv("MEVDASH_KEYGEN_PRODUCT_TOKEN"),
		os.Getenv("MEVDASH_KEYGEN_PRODUCT_ID"),
		appLogger,
	)

	if err := validator.ValidateLicense(ctx, cfg.License); err != nil {
		return fmt.Errorf("keygen validation failed: %w", err)
	}

	// Keep the machine activation alive for the lifetime of the session
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := validator.HeartbeatLicense(ctx, cfg.License); err != nil {
					appLogger.Warn("License heartbeat failed", zap.Error(err))
				}
			}
		}
	}()

	appLogger.Info("✅ License validated")
	return nil
}

// probeEngine waits for the engine to answer before the TUI starts. A
// not-configured engine is a valid answer. Probe failure degrades to a
// warning since the poller keeps retrying on its own cadence.
func probeEngine(ctx context.Context, client *engine.Client, appLogger *zap.Logger) {
	probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := backoff.Retry(probeCtx, func() (*engine.EngineStatus, error) {
		status, err := client.GetStatus(probeCtx)
		if err != nil && !errors.Is(err, engine.ErrNotConfigured) {
			return nil, err
		}
		return status, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(6))

	if err != nil {
		appLogger.Warn("⚠️ Engine not reachable yet, starting anyway", zap.Error(err))
		return
	}

	appLogger.Info("✅ Engine reachable")
}
