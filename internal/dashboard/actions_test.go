package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/solmev/mevdash/internal/engine"
)

// fakeControl scripts action responses and counts requests per endpoint.
type fakeControl struct {
	mu             sync.Mutex
	startCalls     int
	stopCalls      int
	emergencyCalls int
	setupCalls     int
	microCalls     int
	configCalls    int
	pumpfunCalls   map[string]int

	result *engine.ActionResult
	err    error
	gate   chan struct{} // when set, calls block until closed
}

func (f *fakeControl) respond() (*engine.ActionResult, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &engine.ActionResult{Status: engine.StatusSuccess}, nil
}

func (f *fakeControl) Setup(ctx context.Context, req engine.SetupRequest) (*engine.ActionResult, error) {
	f.mu.Lock()
	f.setupCalls++
	f.mu.Unlock()
	return f.respond()
}

func (f *fakeControl) Start(ctx context.Context) (*engine.ActionResult, error) {
	f.mu.Lock()
	f.startCalls++
	f.mu.Unlock()
	return f.respond()
}

func (f *fakeControl) Stop(ctx context.Context) (*engine.ActionResult, error) {
	f.mu.Lock()
	f.stopCalls++
	f.mu.Unlock()
	return f.respond()
}

func (f *fakeControl) EmergencyStop(ctx context.Context) (*engine.ActionResult, error) {
	f.mu.Lock()
	f.emergencyCalls++
	f.mu.Unlock()
	return f.respond()
}

func (f *fakeControl) ExecutePumpfunTrade(ctx context.Context, tokenMint string) (*engine.ActionResult, error) {
	f.mu.Lock()
	if f.pumpfunCalls == nil {
		f.pumpfunCalls = make(map[string]int)
	}
	f.pumpfunCalls[tokenMint]++
	f.mu.Unlock()
	return f.respond()
}

func (f *fakeControl) ExecuteMicroArbitrage(ctx context.Context) (*engine.ActionResult, error) {
	f.mu.Lock()
	f.microCalls++
	f.mu.Unlock()
	return f.respond()
}

func (f *fakeControl) UpdateConfig(ctx context.Context, update engine.ConfigUpdate) (*engine.ActionResult, error) {
	f.mu.Lock()
	f.configCalls++
	f.mu.Unlock()
	return f.respond()
}

type notice struct {
	level, title, message string
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *recordingNotifier) Success(title, message string) { n.record("success", title, message) }
func (n *recordingNotifier) Info(title, message string)    { n.record("info", title, message) }
func (n *recordingNotifier) Error(title, message string)   { n.record("error", title, message) }

func (n *recordingNotifier) record(level, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{level, title, message})
}

func (n *recordingNotifier) last() (notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notices) == 0 {
		return notice{}, false
	}
	return n.notices[len(n.notices)-1], true
}

type countingRefresher struct{ count int64 }

func (r *countingRefresher) RefreshNow(ctx context.Context) { atomic.AddInt64(&r.count, 1) }

func (r *countingRefresher) calls() int64 { return atomic.LoadInt64(&r.count) }

type funcConfirmer func(ctx context.Context, title, message string) bool

func (f funcConfirmer) Confirm(ctx context.Context, title, message string) bool {
	return f(ctx, title, message)
}

func waitRefreshes(t *testing.T, r *countingRefresher, want int64) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for r.calls() < want && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := r.calls(); got != want {
		t.Fatalf("expected %d refreshes, got %d", want, got)
	}
}

func newTestDispatcher(fake *fakeControl, confirm Confirmer) (*Dispatcher, *Store, *recordingNotifier, *countingRefresher) {
	store := NewStore(zap.NewNop())
	notifier := &recordingNotifier{}
	refresher := &countingRefresher{}
	d := NewDispatcher(fake, store, refresher, notifier, confirm, zap.NewNop())
	return d, store, notifier, refresher
}

func TestDispatcherStartSuccess(t *testing.T) {
	fake := &fakeControl{result: &engine.ActionResult{Status: engine.StatusSuccess, Message: "Bot started"}}
	d, store, notifier, refresher := newTestDispatcher(fake, nil)

	store.SetLastError("previous failure")
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fake.startCalls != 1 {
		t.Errorf("expected one request, got %d", fake.startCalls)
	}
	if n, ok := notifier.last(); !ok || n.level != "success" || n.message != "Bot started" {
		t.Errorf("unexpected notice %+v", n)
	}
	if store.Snapshot().LastError != "" {
		t.Error("success must clear the previous error line")
	}
	waitRefreshes(t, refresher, 1)
}

func TestDispatcherIdempotentStatusesAreSuccess(t *testing.T) {
	cases := []struct {
		status string
		call   func(*Dispatcher) error
	}{
		{engine.StatusAlreadyRunning, func(d *Dispatcher) error { return d.Start(context.Background()) }},
		{engine.StatusAlreadyStopped, func(d *Dispatcher) error { return d.Stop(context.Background()) }},
	}
	for _, tc := range cases {
		fake := &fakeControl{result: &engine.ActionResult{Status: tc.status}}
		d, _, notifier, refresher := newTestDispatcher(fake, nil)

		if err := tc.call(d); err != nil {
			t.Errorf("%s: expected success, got %v", tc.status, err)
		}
		if n, ok := notifier.last(); !ok || n.level != "success" {
			t.Errorf("%s: expected success notice, got %+v", tc.status, n)
		}
		waitRefreshes(t, refresher, 1)
	}
}

func TestDispatcherEmergencyStopSingleFlight(t *testing.T) {
	fake := &fakeControl{}
	confirmGate := make(chan struct{})
	confirm := funcConfirmer(func(ctx context.Context, title, message string) bool {
		<-confirmGate
		return true
	})
	d, _, _, refresher := newTestDispatcher(fake, confirm)

	done := make(chan error, 1)
	go func() { done <- d.EmergencyStop(context.Background()) }()

	// The first call holds the key while its confirmation is pending.
	deadline := time.Now().Add(time.Second)
	for !d.InFlight("emergency-stop") && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !d.InFlight("emergency-stop") {
		t.Fatal("first emergency stop never took the key")
	}

	if err := d.EmergencyStop(context.Background()); !errors.Is(err, ErrActionInFlight) {
		t.Fatalf("duplicate must be rejected, got %v", err)
	}

	close(confirmGate)
	if err := <-done; err != nil {
		t.Fatalf("first emergency stop failed: %v", err)
	}
	if fake.emergencyCalls != 1 {
		t.Errorf("exactly one request expected, got %d", fake.emergencyCalls)
	}
	waitRefreshes(t, refresher, 1)
}

func TestDispatcherEmergencyStopDeclined(t *testing.T) {
	fake := &fakeControl{}
	decline := funcConfirmer(func(ctx context.Context, title, message string) bool { return false })
	d, _, notifier, refresher := newTestDispatcher(fake, decline)

	if err := d.EmergencyStop(context.Background()); err != nil {
		t.Fatalf("declining is not an error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if fake.emergencyCalls != 0 {
		t.Error("declined action must not reach the engine")
	}
	if refresher.calls() != 0 {
		t.Error("declined action must not trigger a refresh")
	}
	if _, ok := notifier.last(); ok {
		t.Error("declined action must not notify")
	}
	if d.InFlight("emergency-stop") {
		t.Error("declining must release the key")
	}
}

func TestDispatcherNoOpportunitiesIsInformational(t *testing.T) {
	fake := &fakeControl{result: &engine.ActionResult{Status: engine.StatusNoOpportunities}}
	d, store, notifier, refresher := newTestDispatcher(fake, nil)

	if err := d.ExecuteMicroArbitrage(context.Background()); err != nil {
		t.Fatalf("informational outcome is not an error: %v", err)
	}

	n, ok := notifier.last()
	if !ok || n.level != "info" {
		t.Errorf("expected info notice, got %+v", n)
	}
	if store.Snapshot().LastError != "" {
		t.Error("informational outcome must not set the error line")
	}
	waitRefreshes(t, refresher, 1)
}

func TestDispatcherEngineReportedFailure(t *testing.T) {
	fake := &fakeControl{result: &engine.ActionResult{Status: engine.StatusFailed, Message: "no active session"}}
	d, store, notifier, refresher := newTestDispatcher(fake, nil)

	err := d.Start(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !engine.IsEngineReported(err) {
		t.Errorf("failure envelope must surface as engine-reported, got %v", err)
	}
	if n, ok := notifier.last(); !ok || n.level != "error" || n.message != "no active session" {
		t.Errorf("expected the engine message verbatim, got %+v", n)
	}
	if store.Snapshot().LastError == "" {
		t.Error("failure must set the error line")
	}
	waitRefreshes(t, refresher, 1)
}

func TestDispatcherTransportFailure(t *testing.T) {
	fake := &fakeControl{err: errors.New("connection refused")}
	d, _, notifier, refresher := newTestDispatcher(fake, nil)

	err := d.Stop(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if engine.IsEngineReported(err) {
		t.Error("transport failures are not engine-reported")
	}
	if n, ok := notifier.last(); !ok || n.level != "error" || n.message != "connection refused" {
		t.Errorf("expected the transport detail, got %+v", n)
	}
	waitRefreshes(t, refresher, 1)
}

func TestDispatcherFailureReleasesKey(t *testing.T) {
	fake := &fakeControl{err: errors.New("boom")}
	d, _, _, refresher := newTestDispatcher(fake, nil)

	if err := d.Start(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	waitRefreshes(t, refresher, 1)

	fake.mu.Lock()
	fake.err = nil
	fake.mu.Unlock()
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("retry after failure must be possible: %v", err)
	}
	if fake.startCalls != 2 {
		t.Errorf("expected two requests, got %d", fake.startCalls)
	}
}

func TestDispatcherPumpfunTradeKeyedByMint(t *testing.T) {
	gate := make(chan struct{})
	fake := &fakeControl{gate: gate}
	d, _, _, _ := newTestDispatcher(fake, nil)

	errs := make(chan error, 2)
	go func() { errs <- d.ExecutePumpfunTrade(context.Background(), "MintAAA") }()
	go func() { errs <- d.ExecutePumpfunTrade(context.Background(), "MintBBB") }()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if d.InFlight("pumpfun-trade:MintAAA") && d.InFlight("pumpfun-trade:MintBBB") {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !d.InFlight("pumpfun-trade:MintAAA") || !d.InFlight("pumpfun-trade:MintBBB") {
		t.Fatal("distinct mints must be allowed to run concurrently")
	}

	if err := d.ExecutePumpfunTrade(context.Background(), "MintAAA"); !errors.Is(err, ErrActionInFlight) {
		t.Fatalf("same mint must be rejected while unsettled, got %v", err)
	}

	close(gate)
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Errorf("trade failed: %v", err)
		}
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.pumpfunCalls["MintAAA"] != 1 || fake.pumpfunCalls["MintBBB"] != 1 {
		t.Errorf("unexpected request counts: %v", fake.pumpfunCalls)
	}
}

func TestDispatcherSetupMarksStoreComplete(t *testing.T) {
	fake := &fakeControl{result: &engine.ActionResult{Status: engine.StatusSuccess, WalletAddress: "7xKX...gAsU"}}
	d, store, _, refresher := newTestDispatcher(fake, nil)

	req := engine.SetupRequest{WalletAddress: "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"}
	if err := d.Setup(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.SetupComplete() {
		t.Error("successful setup must mark the store setup-complete")
	}
	waitRefreshes(t, refresher, 1)
}

func TestDispatcherSetupFailureLeavesSetupIncomplete(t *testing.T) {
	fake := &fakeControl{err: &engine.APIError{StatusCode: 500, Message: "invalid wallet address"}}
	d, store, notifier, _ := newTestDispatcher(fake, nil)

	err := d.Setup(context.Background(), engine.SetupRequest{WalletAddress: "bad"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if store.SetupComplete() {
		t.Error("failed setup must not mark the store setup-complete")
	}
	if n, ok := notifier.last(); !ok || n.level != "error" || n.message != "invalid wallet address" {
		t.Errorf("expected the engine detail, got %+v", n)
	}
	if store.Snapshot().LastError == "" {
		t.Error("failed setup must set the error line")
	}
}
