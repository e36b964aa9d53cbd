package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/solmev/mevdash/internal/engine"
)

// FetchAPI is the read-only slice of the engine client the poller consumes.
type FetchAPI interface {
	GetStatus(ctx context.Context) (*engine.EngineStatus, error)
	GetOpportunities(ctx context.Context) ([]engine.Opportunity, error)
	GetTrades(ctx context.Context, limit int) ([]engine.Trade, error)
	GetWalletBalance(ctx context.Context) (*engine.WalletBalance, error)
	GetPumpfunOpportunities(ctx context.Context) ([]engine.PumpfunOpportunity, error)
	GetMicroOpportunities(ctx context.Context) ([]engine.MicroOpportunity, error)
	GetMicroPerformance(ctx context.Context) (*engine.MicroPerformance, error)
}

// PollerConfig carries the poller's tunables.
type PollerConfig struct {
	Interval   time.Duration // cadence of both poll groups
	TradeLimit int           // recent-trade window size requested from the engine
}

// Poller drives the periodic refresh of the store. It owns two poll groups,
// primary (status, opportunities, trades, wallet balance) and feeds
// (pump.fun and micro-arbitrage), both armed while the engine reports
// running and torn down when it stops. Each group is a two-state machine:
// a status update flips it between idle and active, never restarts a live
// timer, and a failed fetch in one group never touches the other.
type Poller struct {
	api    FetchAPI
	store  *Store
	logger *zap.Logger

	interval   time.Duration
	tradeLimit int

	ctx    context.Context
	cancel context.CancelFunc

	primary *pollGroup
	feeds   *pollGroup
}

// NewPoller creates a poller bound to the store and subscribes it to the
// store's status changes.
func NewPoller(api FetchAPI, store *Store, cfg PollerConfig, logger *zap.Logger) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	tradeLimit := cfg.TradeLimit
	if tradeLimit <= 0 {
		tradeLimit = 20
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{
		api:        api,
		store:      store,
		logger:     logger.Named("poller"),
		interval:   interval,
		tradeLimit: tradeLimit,
		ctx:        ctx,
		cancel:     cancel,
	}
	p.primary = newPollGroup("primary", interval, p.primaryRound, p.logger)
	p.feeds = newPollGroup("feeds", interval, p.feedsRound, p.logger)

	store.Subscribe(p.handleChange)
	return p
}

// handleChange re-evaluates the armed state on every published status
// update. Non-status changes are ignored.
func (p *Poller) handleChange(change Change) {
	if change.Field != FieldStatus {
		return
	}
	if change.Running {
		p.primary.arm(p.ctx)
		p.feeds.arm(p.ctx)
		return
	}
	p.primary.disarm()
	p.feeds.disarm()
}

// Bootstrap performs the one-shot status fetch issued on mount. Its outcome
// flows through the store observer, so a running engine arms the groups and
// a not-configured one leaves everything idle.
func (p *Poller) Bootstrap(ctx context.Context) {
	p.logger.Info("🔄 Initial engine status fetch")
	p.fetchStatus(ctx)
}

// RefreshNow runs one unscheduled primary round, plus a feeds round when the
// feeds group is active. Used after control actions.
func (p *Poller) RefreshNow(ctx context.Context) {
	p.primaryRound(ctx)
	if p.feeds.active() {
		p.feedsRound(ctx)
	}
}

// Active reports whether the primary group currently polls.
func (p *Poller) Active() bool {
	return p.primary.active()
}

// Stop tears both groups down and waits for their loops to exit. No fetch
// is issued afterwards.
func (p *Poller) Stop() {
	p.cancel()
	p.primary.disarm()
	p.feeds.disarm()
	p.primary.wait()
	p.feeds.wait()
	p.logger.Info("🛑 Poller stopped")
}

// primaryRound fans the primary fetcher set out concurrently. Completions
// update the store independently; a sibling's failure never gates an update.
func (p *Poller) primaryRound(ctx context.Context) {
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { p.fetchStatus(gCtx); return nil })
	g.Go(func() error { p.fetchOpportunities(gCtx); return nil })
	g.Go(func() error { p.fetchTrades(gCtx); return nil })
	g.Go(func() error { p.fetchWalletBalance(gCtx); return nil })
	_ = g.Wait()
}

// feedsRound fans the feeds fetcher set out concurrently.
func (p *Poller) feedsRound(ctx context.Context) {
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { p.fetchPumpfunOpportunities(gCtx); return nil })
	g.Go(func() error { p.fetchMicroOpportunities(gCtx); return nil })
	g.Go(func() error { p.fetchMicroPerformance(gCtx); return nil })
	_ = g.Wait()
}

func (p *Poller) fetchStatus(ctx context.Context) {
	status, err := p.api.GetStatus(ctx)
	if err != nil {
		if errors.Is(err, engine.ErrNotConfigured) {
			p.store.SetNotConfigured()
			return
		}
		if ctx.Err() != nil {
			return
		}
		p.store.RecordFetchFailure(FieldStatus, err)
		return
	}
	p.store.SetStatus(status)
}

func (p *Poller) fetchOpportunities(ctx context.Context) {
	opportunities, err := p.api.GetOpportunities(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.store.RecordFetchFailure(FieldOpportunities, err)
		return
	}
	p.store.SetOpportunities(opportunities)
}

func (p *Poller) fetchTrades(ctx context.Context) {
	trades, err := p.api.GetTrades(ctx, p.tradeLimit)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.store.RecordFetchFailure(FieldTrades, err)
		return
	}
	p.store.SetTrades(trades)
}

func (p *Poller) fetchWalletBalance(ctx context.Context) {
	balance, err := p.api.GetWalletBalance(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.store.RecordFetchFailure(FieldWalletBalance, err)
		return
	}
	p.store.SetWalletBalance(balance)
}

func (p *Poller) fetchPumpfunOpportunities(ctx context.Context) {
	opportunities, err := p.api.GetPumpfunOpportunities(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.store.RecordFetchFailure(FieldPumpfunOpportunities, err)
		return
	}
	p.store.SetPumpfunOpportunities(opportunities)
}

func (p *Poller) fetchMicroOpportunities(ctx context.Context) {
	opportunities, err := p.api.GetMicroOpportunities(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.store.RecordFetchFailure(FieldMicroOpportunities, err)
		return
	}
	p.store.SetMicroOpportunities(opportunities)
}

func (p *Poller) fetchMicroPerformance(ctx context.Context) {
	perf, err := p.api.GetMicroPerformance(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.store.RecordFetchFailure(FieldMicroPerformance, err)
		return
	}
	p.store.SetMicroPerformance(perf)
}

// pollGroup is one armed/disarmed fetch loop. At most one interval is live
// at a time; arming while active is a no-op, disarming cancels the pending
// timer deterministically. A round in flight at disarm time is cancelled
// with the group context; whatever it already wrote to the store stands.
type pollGroup struct {
	name     string
	interval time.Duration
	round    func(ctx context.Context)
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newPollGroup(name string, interval time.Duration, round func(context.Context), logger *zap.Logger) *pollGroup {
	return &pollGroup{
		name:     name,
		interval: interval,
		round:    round,
		logger:   logger.Named(name),
	}
}

func (g *pollGroup) arm(parent context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		return
	}
	if parent.Err() != nil {
		return
	}

	ctx, cancel := context.WithCancel(parent)
	g.cancel = cancel
	g.wg.Add(1)
	go g.loop(ctx)
	g.logger.Info("📊 Poll group armed", zap.Duration("interval", g.interval))
}

func (g *pollGroup) disarm() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel == nil {
		return
	}
	g.cancel()
	g.cancel = nil
	g.logger.Info("Poll group disarmed")
}

func (g *pollGroup) active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancel != nil
}

func (g *pollGroup) wait() {
	g.wg.Wait()
}

func (g *pollGroup) loop(ctx context.Context) {
	defer g.wg.Done()

	// First round fires immediately, then on each tick.
	g.round(ctx)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.round(ctx)
		case <-ctx.Done():
			g.logger.Debug("poll loop stopped")
			return
		}
	}
}
