package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solmev/mevdash/internal/engine"
)

// ControlAPI is the mutating half of the engine client.
type ControlAPI interface {
	Setup(ctx context.Context, req engine.SetupRequest) (*engine.ActionResult, error)
	Start(ctx context.Context) (*engine.ActionResult, error)
	Stop(ctx context.Context) (*engine.ActionResult, error)
	EmergencyStop(ctx context.Context) (*engine.ActionResult, error)
	ExecutePumpfunTrade(ctx context.Context, tokenMint string) (*engine.ActionResult, error)
	ExecuteMicroArbitrage(ctx context.Context) (*engine.ActionResult, error)
	UpdateConfig(ctx context.Context, update engine.ConfigUpdate) (*engine.ActionResult, error)
}

// Notifier delivers action outcomes to the user. The TUI backs it with the
// update bus; tests use function fakes.
type Notifier interface {
	Success(title, message string)
	Info(title, message string)
	Error(title, message string)
}

// Confirmer asks the user to approve an action before it is dispatched.
type Confirmer interface {
	Confirm(ctx context.Context, title, message string) bool
}

// Refresher pulls fresh engine state after an action settles.
type Refresher interface {
	RefreshNow(ctx context.Context)
}

// ErrActionInFlight rejects a duplicate of an action that has not settled yet.
var ErrActionInFlight = errors.New("action already in flight")

// Single-flight keys. Pumpfun trades key per mint so distinct tokens may
// execute concurrently.
const (
	actionSetup         = "setup"
	actionStart         = "start"
	actionStop          = "stop"
	actionEmergencyStop = "emergency-stop"
	actionMicroArb      = "micro-arbitrage"
	actionConfigUpdate  = "config-update"
)

const refreshTimeout = 10 * time.Second

// Dispatcher issues control actions against the engine. Each action kind is
// single-flight: a duplicate is rejected without a request. Every terminal
// outcome releases the key and triggers an asynchronous refresh; failed
// actions are never retried automatically.
type Dispatcher struct {
	api       ControlAPI
	store     *Store
	refresher Refresher
	notifier  Notifier
	confirmer Confirmer
	logger    *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewDispatcher wires a dispatcher. notifier and confirmer may be nil in
// headless use; a nil confirmer approves everything.
func NewDispatcher(api ControlAPI, store *Store, refresher Refresher, notifier Notifier, confirmer Confirmer, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		api:       api,
		store:     store,
		refresher: refresher,
		notifier:  notifier,
		confirmer: confirmer,
		logger:    logger.Named("dispatcher"),
		inFlight:  make(map[string]struct{}),
	}
}

// Setup sends the wallet configuration to the engine. On success the store
// is marked setup-complete right away rather than waiting for the next
// status poll.
func (d *Dispatcher) Setup(ctx context.Context, req engine.SetupRequest) error {
	if !d.acquire(actionSetup) {
		return ErrActionInFlight
	}
	return d.perform(ctx, actionSetup, "Engine setup", func(ctx context.Context) (*engine.ActionResult, error) {
		res, err := d.api.Setup(ctx, req)
		if err == nil && res.OK() {
			d.store.MarkSetupComplete()
		}
		return res, err
	})
}

// Start asks the engine to begin trading. already_running counts as success.
func (d *Dispatcher) Start(ctx context.Context) error {
	if !d.acquire(actionStart) {
		return ErrActionInFlight
	}
	return d.perform(ctx, actionStart, "Start engine", d.api.Start)
}

// Stop asks the engine to halt after the current cycle. already_stopped
// counts as success.
func (d *Dispatcher) Stop(ctx context.Context) error {
	if !d.acquire(actionStop) {
		return ErrActionInFlight
	}
	return d.perform(ctx, actionStop, "Stop engine", d.api.Stop)
}

// EmergencyStop force-closes all positions. The user must confirm before a
// request is issued; the single-flight key is held across the prompt so a
// second click during confirmation is rejected. Declining releases the key
// without dispatching or refreshing.
func (d *Dispatcher) EmergencyStop(ctx context.Context) error {
	if !d.acquire(actionEmergencyStop) {
		return ErrActionInFlight
	}
	if d.confirmer != nil && !d.confirmer.Confirm(ctx, "Emergency stop",
		"Close all positions and halt the engine immediately?") {
		d.release(actionEmergencyStop)
		d.logger.Info("Emergency stop declined by user")
		return nil
	}
	return d.perform(ctx, actionEmergencyStop, "Emergency stop", d.api.EmergencyStop)
}

// ExecutePumpfunTrade submits a manual snipe for one mint. Keyed per mint:
// two different tokens may run concurrently, the same token may not.
func (d *Dispatcher) ExecutePumpfunTrade(ctx context.Context, tokenMint string) error {
	key := fmt.Sprintf("pumpfun-trade:%s", tokenMint)
	if !d.acquire(key) {
		return ErrActionInFlight
	}
	return d.perform(ctx, key, "Pump.fun snipe", func(ctx context.Context) (*engine.ActionResult, error) {
		return d.api.ExecutePumpfunTrade(ctx, tokenMint)
	})
}

// ExecuteMicroArbitrage asks the engine to take its best current micro
// opportunity. no_opportunities is informational, not a failure.
func (d *Dispatcher) ExecuteMicroArbitrage(ctx context.Context) error {
	if !d.acquire(actionMicroArb) {
		return ErrActionInFlight
	}
	return d.perform(ctx, actionMicroArb, "Micro arbitrage", d.api.ExecuteMicroArbitrage)
}

// UpdateConfig replaces the engine's trading parameters.
func (d *Dispatcher) UpdateConfig(ctx context.Context, update engine.ConfigUpdate) error {
	if !d.acquire(actionConfigUpdate) {
		return ErrActionInFlight
	}
	return d.perform(ctx, actionConfigUpdate, "Config update", func(ctx context.Context) (*engine.ActionResult, error) {
		return d.api.UpdateConfig(ctx, update)
	})
}

// InFlight reports whether an action with the given key is unsettled.
func (d *Dispatcher) InFlight(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.inFlight[key]
	return ok
}

func (d *Dispatcher) acquire(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.inFlight[key]; ok {
		d.logger.Debug("Duplicate action rejected", zap.String("action", key))
		return false
	}
	d.inFlight[key] = struct{}{}
	return true
}

func (d *Dispatcher) release(key string) {
	d.mu.Lock()
	delete(d.inFlight, key)
	d.mu.Unlock()
}

// perform issues the request and settles the action: interpret the envelope,
// notify the user, then release the key and kick a refresh on every terminal
// path. The caller must already hold the key.
func (d *Dispatcher) perform(ctx context.Context, key, title string, call func(context.Context) (*engine.ActionResult, error)) error {
	log := d.logger.With(
		zap.String("action", key),
		zap.String("dispatch_id", uuid.NewString()[:8]))
	log.Info("⚡ Dispatching engine action")

	res, err := call(ctx)

	defer func() {
		d.release(key)
		go d.refresh()
	}()

	if err != nil {
		msg := failureMessage(err)
		if engine.IsEngineReported(err) {
			log.Warn("Engine rejected action", zap.Error(err))
		} else {
			log.Error("Action transport failure", zap.Error(err))
		}
		d.store.SetLastError(fmt.Sprintf("%s: %s", title, msg))
		d.notifyError(title, msg)
		return err
	}

	switch {
	case res.OK():
		log.Info("Action succeeded", zap.String("status", res.Status))
		d.store.ClearLastError()
		d.notifySuccess(title, successMessage(res))
		return nil
	case res.Informational():
		log.Info("Action returned no work", zap.String("status", res.Status))
		d.notifyInfo(title, infoMessage(res))
		return nil
	default:
		msg := res.Message
		if msg == "" {
			msg = fmt.Sprintf("engine returned status %q", res.Status)
		}
		log.Warn("Engine reported action failure",
			zap.String("status", res.Status),
			zap.String("message", res.Message))
		d.store.SetLastError(fmt.Sprintf("%s: %s", title, msg))
		d.notifyError(title, msg)
		return &engine.APIError{Status: res.Status, Message: res.Message}
	}
}

// refresh runs detached from the action's context so a settled action still
// refreshes even if its caller has moved on.
func (d *Dispatcher) refresh() {
	if d.refresher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	d.refresher.RefreshNow(ctx)
}

func (d *Dispatcher) notifySuccess(title, msg string) {
	if d.notifier != nil {
		d.notifier.Success(title, msg)
	}
}

func (d *Dispatcher) notifyInfo(title, msg string) {
	if d.notifier != nil {
		d.notifier.Info(title, msg)
	}
}

func (d *Dispatcher) notifyError(title, msg string) {
	if d.notifier != nil {
		d.notifier.Error(title, msg)
	}
}

func successMessage(res *engine.ActionResult) string {
	if res.Message != "" {
		return res.Message
	}
	switch res.Status {
	case engine.StatusAlreadyRunning:
		return "Engine is already running"
	case engine.StatusAlreadyStopped:
		return "Engine is already stopped"
	}
	return "Done"
}

func infoMessage(res *engine.ActionResult) string {
	if res.Message != "" {
		return res.Message
	}
	return "No opportunities available right now"
}

func failureMessage(err error) string {
	var apiErr *engine.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return apiErr.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "request failed"
}
