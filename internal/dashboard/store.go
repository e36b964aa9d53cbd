package dashboard

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/solmev/mevdash/internal/engine"
)

// Field identifies one independently-replaced resource slot in the store.
type Field int

const (
	FieldStatus Field = iota
	FieldOpportunities
	FieldTrades
	FieldWalletBalance
	FieldWalletInfo
	FieldPumpfunOpportunities
	FieldMicroOpportunities
	FieldMicroPerformance
	FieldFlags
)

func (f Field) String() string {
	switch f {
	case FieldStatus:
		return "status"
	case FieldOpportunities:
		return "opportunities"
	case FieldTrades:
		return "trades"
	case FieldWalletBalance:
		return "wallet_balance"
	case FieldWalletInfo:
		return "wallet_info"
	case FieldPumpfunOpportunities:
		return "pumpfun_opportunities"
	case FieldMicroOpportunities:
		return "micro_opportunities"
	case FieldMicroPerformance:
		return "micro_performance"
	case FieldFlags:
		return "flags"
	default:
		return "unknown"
	}
}

// Change describes one store mutation, delivered to subscribers after the
// write completes. Status changes additionally carry the running flag so
// subscribers can react without re-reading the store.
type Change struct {
	Field         Field
	Running       bool
	NotConfigured bool
}

// Store holds the latest known value of every engine resource plus the
// view-level flags. Each setter replaces its slot wholesale; concurrent
// writers to different slots never block each other's consistency
// (last-writer-wins per slot, no cross-slot atomicity).
type Store struct {
	mu     sync.RWMutex
	logger *zap.Logger

	status        *engine.EngineStatus
	opportunities []engine.Opportunity
	trades        []engine.Trade
	walletBalance *engine.WalletBalance
	walletInfo    *engine.WalletInfo
	pumpfunOpps   []engine.PumpfunOpportunity
	microOpps     []engine.MicroOpportunity
	microPerf     *engine.MicroPerformance

	metrics DerivedMetrics
	history *ProfitHistory

	setupComplete bool
	loading       bool
	lastError     string
	lastSyncAt    time.Time
	fetchFailures int

	// Statistics (accessed atomically)
	reads  uint64
	writes uint64

	subMu       sync.Mutex
	subscribers []func(Change)
}

// NewStore creates an empty store. It starts in the loading state until the
// first status outcome arrives.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		logger:  logger.Named("store"),
		history: NewProfitHistory(0),
		loading: true,
	}
}

// Subscribe registers a callback invoked after every mutation. Callbacks run
// outside the store lock, on the mutating goroutine, and must not block.
func (s *Store) Subscribe(fn func(Change)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) notify(change Change) {
	s.subMu.Lock()
	subs := make([]func(Change), len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
}

// SetStatus replaces the engine status snapshot and recomputes the derived
// metrics against the current trade window.
func (s *Store) SetStatus(status *engine.EngineStatus) {
	s.mu.Lock()
	s.status = status
	s.setupComplete = true
	s.loading = false
	s.lastSyncAt = time.Now()
	s.fetchFailures = 0
	if status.SessionStats != nil {
		s.metrics = DeriveMetrics(status.SessionStats, s.trades)
		s.history.Record(status.SessionStats.ProfitLoss)
	} else {
		s.metrics = DeriveMetrics(nil, s.trades)
	}
	running := status.IsRunning
	s.mu.Unlock()

	atomic.AddUint64(&s.writes, 1)
	s.logger.Debug("status updated",
		zap.Bool("is_running", running),
		zap.Int("active_positions", status.ActivePositions))
	s.notify(Change{Field: FieldStatus, Running: running})
}

// SetNotConfigured marks the engine as reachable but awaiting setup. The
// previous status snapshot is discarded; polling must never arm in this
// state.
func (s *Store) SetNotConfigured() {
	s.mu.Lock()
	s.status = nil
	s.setupComplete = false
	s.loading = false
	s.lastSyncAt = time.Now()
	s.fetchFailures = 0
	s.mu.Unlock()

	atomic.AddUint64(&s.writes, 1)
	s.logger.Info("engine awaiting setup")
	s.notify(Change{Field: FieldStatus, NotConfigured: true})
}

// SetOpportunities replaces the arbitrage opportunity list.
func (s *Store) SetOpportunities(opportunities []engine.Opportunity) {
	s.mu.Lock()
	s.opportunities = opportunities
	s.lastSyncAt = time.Now()
	s.fetchFailures = 0
	s.mu.Unlock()

	atomic.AddUint64(&s.writes, 1)
	s.notify(Change{Field: FieldOpportunities})
}

// SetTrades replaces the recent-trade window and recomputes the derived
// metrics against the current session stats.
func (s *Store) SetTrades(trades []engine.Trade) {
	s.mu.Lock()
	s.trades = trades
	s.lastSyncAt = time.Now()
	s.fetchFailures = 0
	var stats *engine.SessionStats
	if s.status != nil {
		stats = s.status.SessionStats
	}
	s.metrics = DeriveMetrics(stats, trades)
	s.mu.Unlock()

	atomic.AddUint64(&s.writes, 1)
	s.notify(Change{Field: FieldTrades})
}

// SetWalletBalance replaces the wallet balance snapshot.
func (s *Store) SetWalletBalance(balance *engine.WalletBalance) {
	s.mu.Lock()
	s.walletBalance = balance
	s.lastSyncAt = time.Now()
	s.fetchFailures = 0
	s.mu.Unlock()

	atomic.AddUint64(&s.writes, 1)
	s.notify(Change{Field: FieldWalletBalance})
}

// SetWalletInfo replaces the pre-setup wallet snapshot.
func (s *Store) SetWalletInfo(info *engine.WalletInfo) {
	s.mu.Lock()
	s.walletInfo = info
	s.mu.Unlock()

	atomic.AddUint64(&s.writes, 1)
	s.notify(Change{Field: FieldWalletInfo})
}

// SetPumpfunOpportunities replaces the sniping feed.
func (s *Store) SetPumpfunOpportunities(opportunities []engine.PumpfunOpportunity) {
	s.mu.Lock()
	s.pumpfunOpps = opportunities
	s.lastSyncAt = time.Now()
	s.fetchFailures = 0
	s.mu.Unlock()

	atomic.AddUint64(&s.writes, 1)
	s.notify(Change{Field: FieldPumpfunOpportunities})
}

// SetMicroOpportunities replaces the micro-arbitrage feed.
func (s *Store) SetMicroOpportunities(opportunities []engine.MicroOpportunity) {
	s.mu.Lock()
	s.microOpps = opportunities
	s.lastSyncAt = time.Now()
	s.fetchFailures = 0
	s.mu.Unlock()

	atomic.AddUint64(&s.writes, 1)
	s.notify(Change{Field: FieldMicroOpportunities})
}

// SetMicroPerformance replaces the micro-strategy performance summary.
func (s *Store) SetMicroPerformance(perf *engine.MicroPerformance) {
	s.mu.Lock()
	s.microPerf = perf
	s.lastSyncAt = time.Now()
	s.fetchFailures = 0
	s.mu.Unlock()

	atomic.AddUint64(&s.writes, 1)
	s.notify(Change{Field: FieldMicroPerformance})
}

// RecordFetchFailure notes a failed fetch. The previous value of the
// resource stays in place and no subscriber is told; the failure only shows
// up in logs and in the staleness counters.
func (s *Store) RecordFetchFailure(field Field, err error) {
	s.mu.Lock()
	s.fetchFailures++
	if field == FieldStatus {
		s.loading = false
	}
	failures := s.fetchFailures
	s.mu.Unlock()

	atomic.AddUint64(&s.writes, 1)
	s.logger.Warn("fetch failed, keeping last known value",
		zap.String("resource", field.String()),
		zap.Int("consecutive_failures", failures),
		zap.Error(err))
}

// MarkSetupComplete records an accepted setup request ahead of the next
// status poll confirming it.
func (s *Store) MarkSetupComplete() {
	s.mu.Lock()
	s.setupComplete = true
	s.mu.Unlock()

	atomic.AddUint64(&s.writes, 1)
	s.notify(Change{Field: FieldFlags})
}

// SetLastError records a user-visible error line for the status bar.
func (s *Store) SetLastError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()

	atomic.AddUint64(&s.writes, 1)
	s.notify(Change{Field: FieldFlags})
}

// ClearLastError clears the status-bar error line.
func (s *Store) ClearLastError() {
	s.SetLastError("")
}

// Running reports whether the last observed status says the engine runs.
func (s *Store) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	atomic.AddUint64(&s.reads, 1)
	return s.status != nil && s.status.IsRunning
}

// SetupComplete reports whether the engine has been configured.
func (s *Store) SetupComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	atomic.AddUint64(&s.reads, 1)
	return s.setupComplete
}

// Metrics returns the current derived metrics.
func (s *Store) Metrics() DerivedMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	atomic.AddUint64(&s.reads, 1)
	return s.metrics
}

// Stats returns the read/write counters.
func (s *Store) Stats() (reads, writes uint64) {
	return atomic.LoadUint64(&s.reads), atomic.LoadUint64(&s.writes)
}

// Snapshot is a point-in-time copy of the store for rendering. Slices are
// copied so the caller can hold them across further store writes.
type Snapshot struct {
	Status           *engine.EngineStatus
	Opportunities    []engine.Opportunity
	Trades           []engine.Trade
	WalletBalance    *engine.WalletBalance
	WalletInfo       *engine.WalletInfo
	Pumpfun          []engine.PumpfunOpportunity
	Micro            []engine.MicroOpportunity
	MicroPerformance *engine.MicroPerformance
	Metrics          DerivedMetrics
	ProfitSeries     []float64

	SetupComplete bool
	Loading       bool
	LastError     string
	LastSyncAt    time.Time
	FetchFailures int
}

// Snapshot returns a copy of the current store contents.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	atomic.AddUint64(&s.reads, 1)

	snap := Snapshot{
		Metrics:       s.metrics,
		SetupComplete: s.setupComplete,
		Loading:       s.loading,
		LastError:     s.lastError,
		LastSyncAt:    s.lastSyncAt,
		FetchFailures: s.fetchFailures,
		ProfitSeries:  s.history.Series(),
	}
	if s.status != nil {
		snap.Status = cloneStatus(s.status)
	}
	if s.walletBalance != nil {
		balance := *s.walletBalance
		snap.WalletBalance = &balance
	}
	if s.walletInfo != nil {
		info := *s.walletInfo
		snap.WalletInfo = &info
	}
	if s.microPerf != nil {
		perf := *s.microPerf
		snap.MicroPerformance = &perf
	}
	snap.Opportunities = append([]engine.Opportunity(nil), s.opportunities...)
	snap.Trades = append([]engine.Trade(nil), s.trades...)
	snap.Pumpfun = append([]engine.PumpfunOpportunity(nil), s.pumpfunOpps...)
	snap.Micro = append([]engine.MicroOpportunity(nil), s.microOpps...)
	return snap
}

func cloneStatus(status *engine.EngineStatus) *engine.EngineStatus {
	clone := *status
	if status.SessionStats != nil {
		stats := *status.SessionStats
		clone.SessionStats = &stats
	}
	if status.Config != nil {
		cfg := *status.Config
		cfg.EnabledStrategies = append([]string(nil), status.Config.EnabledStrategies...)
		clone.Config = &cfg
	}
	return &clone
}
