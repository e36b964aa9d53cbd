package dashboard

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AlertConfig holds the opportunity alert thresholds. A zero threshold
// disables its trigger.
type AlertConfig struct {
	// Micro opportunities alerting at or above this net profit (SOL).
	MicroNetProfitMin float64 `json:"micro_net_profit_min"`
	// Pumpfun opportunities alerting at or below this risk score.
	PumpfunRiskMax float64 `json:"pumpfun_risk_max"`
}

// Enabled reports whether any trigger is configured.
func (c AlertConfig) Enabled() bool {
	return c.MicroNetProfitMin > 0 || c.PumpfunRiskMax > 0
}

// Alert is one triggered opportunity notice.
type Alert struct {
	Token     string    `json:"token"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

const maxRecentAlerts = 50

// AlertWatcher watches feed updates in the store and raises one notice per
// token per engine run when an opportunity crosses a configured threshold.
// Classification stays derived from the live feed; nothing about it is
// written back to the store.
type AlertWatcher struct {
	store    *Store
	notifier Notifier
	config   AlertConfig
	logger   *zap.Logger

	mu          sync.Mutex
	seen        map[string]struct{}
	recent      []Alert
	lastRunning bool
}

// NewAlertWatcher wires a watcher to the store. With no threshold configured
// it stays dormant.
func NewAlertWatcher(store *Store, notifier Notifier, config AlertConfig, logger *zap.Logger) *AlertWatcher {
	w := &AlertWatcher{
		store:    store,
		notifier: notifier,
		config:   config,
		logger:   logger.Named("alerts"),
		seen:     make(map[string]struct{}),
	}
	store.Subscribe(w.handleChange)
	return w
}

func (w *AlertWatcher) handleChange(change Change) {
	switch change.Field {
	case FieldStatus:
		// An engine restart starts a new alert session
		w.mu.Lock()
		restarted := change.Running && !w.lastRunning
		w.lastRunning = change.Running
		w.mu.Unlock()
		if restarted {
			w.Reset()
		}
	case FieldMicroOpportunities:
		if w.config.MicroNetProfitMin > 0 {
			w.checkMicro()
		}
	case FieldPumpfunOpportunities:
		if w.config.PumpfunRiskMax > 0 {
			w.checkPumpfun()
		}
	}
}

func (w *AlertWatcher) checkMicro() {
	snap := w.store.Snapshot()
	for _, opp := range snap.Micro {
		if opp.NetProfit < w.config.MicroNetProfitMin {
			continue
		}
		w.trigger("micro:"+opp.TokenPair, opp.TokenPair,
			fmt.Sprintf("%s nets %.6f SOL (%s -> %s)",
				opp.TokenPair, opp.NetProfit, opp.BuyDex, opp.SellDex))
	}
}

func (w *AlertWatcher) checkPumpfun() {
	snap := w.store.Snapshot()
	for _, opp := range snap.Pumpfun {
		if opp.RiskScore > w.config.PumpfunRiskMax {
			continue
		}
		w.trigger("pumpfun:"+opp.Token.Mint, opp.Token.Symbol,
			fmt.Sprintf("%s risk %.1f, suggested size %.4f SOL",
				opp.Token.Symbol, opp.RiskScore, opp.SuggestedSize))
	}
}

// trigger raises the alert once per key per run.
func (w *AlertWatcher) trigger(key, token, message string) {
	w.mu.Lock()
	if _, dup := w.seen[key]; dup {
		w.mu.Unlock()
		return
	}
	w.seen[key] = struct{}{}
	alert := Alert{Token: token, Message: message, Timestamp: time.Now()}
	if len(w.recent) >= maxRecentAlerts {
		w.recent = w.recent[1:]
	}
	w.recent = append(w.recent, alert)
	w.mu.Unlock()

	w.logger.Info("🔔 Opportunity alert",
		zap.String("token", token),
		zap.String("message", message))
	if w.notifier != nil {
		w.notifier.Info("Opportunity", message)
	}
}

// Recent returns up to limit alerts, newest last. limit <= 0 returns all.
func (w *AlertWatcher) Recent(limit int) []Alert {
	w.mu.Lock()
	defer w.mu.Unlock()

	if limit <= 0 || limit > len(w.recent) {
		limit = len(w.recent)
	}
	out := make([]Alert, limit)
	copy(out, w.recent[len(w.recent)-limit:])
	return out
}

// Reset starts a fresh alert session: dedup set and recent list cleared.
func (w *AlertWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen = make(map[string]struct{})
	w.recent = nil
}
