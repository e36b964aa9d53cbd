package ui

import (
	"context"
	"testing"
	"time"
)

func drainBus(t *testing.T) {
	t.Helper()
	for {
		select {
		case <-Bus:
		default:
			return
		}
	}
}

func TestBusNotifier(t *testing.T) {
	drainBus(t)
	notifier := NewBusNotifier()

	notifier.Success("Start", "engine started")
	notifier.Info("Micro Arbitrage", "no opportunity available")
	notifier.Error("Stop", "engine unreachable")

	success, ok := (<-Bus).(SuccessMsg)
	if !ok || success.Title != "Start" {
		t.Fatalf("Expected SuccessMsg with title Start, got %+v", success)
	}

	notice, ok := (<-Bus).(NoticeMsg)
	if !ok || notice.Message != "no opportunity available" {
		t.Fatalf("Expected NoticeMsg, got %+v", notice)
	}

	errMsg, ok := (<-Bus).(ErrorMsg)
	if !ok {
		t.Fatal("Expected ErrorMsg third")
	}
	if errMsg.Error == nil || errMsg.Error.Error() != "engine unreachable" {
		t.Errorf("Unexpected error payload: %v", errMsg.Error)
	}
}

func TestBusConfirmerAnswered(t *testing.T) {
	drainBus(t)
	confirmer := NewBusConfirmer()

	// Answer the prompt the way a screen would
	go func() {
		msg := <-Bus
		req, ok := msg.(ConfirmRequestMsg)
		if !ok {
			return
		}
		req.Reply <- true
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if !confirmer.Confirm(ctx, "Emergency Stop", "Cancel all in-flight trades?") {
		t.Error("Expected confirmation to be accepted")
	}
}

func TestBusConfirmerDeclined(t *testing.T) {
	drainBus(t)
	confirmer := NewBusConfirmer()

	go func() {
		msg := <-Bus
		if req, ok := msg.(ConfirmRequestMsg); ok {
			req.Reply <- false
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if confirmer.Confirm(ctx, "Emergency Stop", "Cancel all in-flight trades?") {
		t.Error("Expected confirmation to be declined")
	}
}

func TestBusConfirmerCancelledContext(t *testing.T) {
	drainBus(t)
	confirmer := NewBusConfirmer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Nobody answers; a cancelled context must decline promptly
	start := time.Now()
	if confirmer.Confirm(ctx, "Emergency Stop", "Cancel all in-flight trades?") {
		t.Error("Expected decline when the context is cancelled")
	}
	if time.Since(start) > time.Second {
		t.Error("Confirm did not return promptly on cancellation")
	}
	drainBus(t)
}
