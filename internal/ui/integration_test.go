package ui_test

import (
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/solmev/mevdash/internal/dashboard"
	"github.com/solmev/mevdash/internal/engine"
	"github.com/solmev/mevdash/internal/ui"
)

// simulatedEngineFeed stands in for the poller: it keeps writing fresh
// engine state into the store regardless of what the UI is doing
type simulatedEngineFeed struct {
	store     *dashboard.Store
	writes    int32
	isRunning int32
}

func newSimulatedEngineFeed(store *dashboard.Store) *simulatedEngineFeed {
	return &simulatedEngineFeed{
		store:     store,
		isRunning: 1,
	}
}

func (f *simulatedEngineFeed) start() {
	go func() {
		for atomic.LoadInt32(&f.isRunning) == 1 {
			n := atomic.AddInt32(&f.writes, 1)
			f.store.SetStatus(&engine.EngineStatus{
				IsRunning:            true,
				CurrentOpportunities: int(n % 7),
				SessionStats: &engine.SessionStats{
					ProfitLoss:     float64(n) * 0.001,
					TradesExecuted: int(n),
				},
			})
			time.Sleep(20 * time.Millisecond)
		}
	}()
}

func (f *simulatedEngineFeed) stop() {
	atomic.StoreInt32(&f.isRunning, 0)
}

func (f *simulatedEngineFeed) writeCount() int32 {
	return atomic.LoadInt32(&f.writes)
}

// mockUIModel is a crash-prone UI that consumes store updates
type mockUIModel struct {
	shouldPanic   bool
	updateCount   int32
	snapshotsSeen int32
	store         *dashboard.Store
}

func (m *mockUIModel) Init() tea.Cmd {
	if m.shouldPanic {
		// Panic during init
		panic("UI init panic test")
	}
	return tea.Batch(
		tea.Every(10*time.Millisecond, func(t time.Time) tea.Msg {
			return time.Now()
		}),
		ui.ListenBus(),
	)
}

func (m *mockUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	count := atomic.AddInt32(&m.updateCount, 1)

	// Panic after some updates if configured
	if m.shouldPanic && count > 10 {
		panic("UI update panic test")
	}

	switch msg.(type) {
	case ui.StateUpdateMsg:
		// Re-read the snapshot the way a real screen would
		snap := m.store.Snapshot()
		if snap.Status != nil {
			atomic.AddInt32(&m.snapshotsSeen, 1)
		}
	case time.Time:
		// Check if we should quit
		if count > 50 {
			return m, tea.Quit
		}
	}

	return m, tea.Batch(
		tea.Every(10*time.Millisecond, func(t time.Time) tea.Msg {
			return time.Now()
		}),
		ui.ListenBus(),
	)
}

func (m *mockUIModel) View() string {
	return "Test UI Running"
}

// TestUIIsolationIntegration verifies the engine feed keeps flowing into the
// store while the UI crashes and restarts
func TestUIIsolationIntegration(t *testing.T) {
	logger := zap.NewNop()

	// Initialize UI infrastructure
	ui.InitBus(ui.Bus, logger)
	defer func() {
		ui.GlobalBus.Close()
		ui.GlobalBus = nil
	}()

	store := dashboard.NewStore(zap.NewNop())
	ui.BindStore(store)

	// Start the simulated engine feed
	feed := newSimulatedEngineFeed(store)
	feed.start()
	defer feed.stop()

	// Create a UI that crashes every 3rd restart
	crashCount := int32(0)
	createUI := func() (tea.Model, []tea.ProgramOption) {
		count := atomic.AddInt32(&crashCount, 1)
		shouldCrash := count%3 == 0

		return &mockUIModel{
				shouldPanic: shouldCrash,
				store:       store,
			}, []tea.ProgramOption{
				tea.WithoutSignalHandler(),
			}
	}

	handler := ui.NewRecoveryHandler(logger, createUI)
	uiDone := make(chan struct{})
	go func() {
		defer close(uiDone)
		_ = handler.RunWithRecovery()
	}()

	// Let the system run for a while
	testDuration := 2 * time.Second
	time.Sleep(testDuration)

	// Stop UI and feed
	handler.Stop()
	feed.stop()
	time.Sleep(100 * time.Millisecond)

	writes := feed.writeCount()
	uiRestarts := handler.GetRestartCount()
	sent, dropped := ui.GlobalBus.GetStats()

	t.Logf("Test results after %v:", testDuration)
	t.Logf("  Store writes: %d", writes)
	t.Logf("  UI restarts: %d", uiRestarts)
	t.Logf("  UI messages sent: %d, dropped: %d", sent, dropped)

	// Verify the feed continued while the UI crashed
	expectedMinWrites := int32(testDuration / (20 * time.Millisecond))
	if writes < expectedMinWrites/2 {
		t.Errorf("Expected at least %d store writes, got %d", expectedMinWrites/2, writes)
	}

	// The store must hold the latest state regardless of UI health
	snap := store.Snapshot()
	if snap.Status == nil || !snap.Status.IsRunning {
		t.Error("Expected the store to hold the last written status")
	}
	if snap.Status != nil && snap.Status.SessionStats.TradesExecuted == 0 {
		t.Error("Expected session stats from the last feed write")
	}
}

// TestNonBlockingUpdates verifies store-driven publishes never block
func TestNonBlockingUpdates(t *testing.T) {
	logger := zap.NewNop()

	// Small channel to expose blocking behavior
	msgChan := make(chan tea.Msg, 10)
	ui.InitBus(msgChan, logger)
	defer func() {
		ui.GlobalBus.Close()
		ui.GlobalBus = nil
	}()

	// Measure time to publish many updates
	start := time.Now()
	for i := 0; i < 1000; i++ {
		ui.PublishStateUpdate()
	}
	elapsed := time.Since(start)

	sent, dropped := ui.GlobalBus.GetStats()
	t.Logf("Published 1000 updates in %v", elapsed)
	t.Logf("Actually sent: %d, dropped: %d", sent, dropped)

	// Should complete very quickly (non-blocking)
	if elapsed > 10*time.Millisecond {
		t.Errorf("Publishing updates took too long: %v", elapsed)
	}

	// Should have dropped most messages
	if dropped < 900 {
		t.Errorf("Expected most messages to be dropped, only dropped %d", dropped)
	}
}
