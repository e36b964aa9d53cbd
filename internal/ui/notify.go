package ui

import (
	"context"
	"errors"
	"time"

	"github.com/solmev/mevdash/internal/dashboard"
)

// confirmTimeout bounds how long an action waits for the operator to answer
// a confirmation prompt before treating it as declined.
const confirmTimeout = 60 * time.Second

// BusNotifier delivers dashboard notifications through the UI event bus.
// It satisfies dashboard.Notifier.
type BusNotifier struct{}

// NewBusNotifier creates a bus-backed notifier
func NewBusNotifier() *BusNotifier {
	return &BusNotifier{}
}

// Success publishes a success notification
func (n *BusNotifier) Success(title, message string) {
	PublishSuccess(message, title)
}

// Info publishes an informational notification
func (n *BusNotifier) Info(title, message string) {
	PublishNotice(message, title)
}

// Error publishes an error notification
func (n *BusNotifier) Error(title, message string) {
	PublishError(errors.New(message), title)
}

// BusConfirmer routes confirmation prompts through the UI event bus and
// blocks until the visible screen answers. It satisfies dashboard.Confirmer.
// A prompt that cannot be shown, times out, or is cancelled counts as a
// decline so destructive actions never proceed silently.
type BusConfirmer struct{}

// NewBusConfirmer creates a bus-backed confirmer
func NewBusConfirmer() *BusConfirmer {
	return &BusConfirmer{}
}

// Confirm shows a yes/no prompt and waits for the answer
func (c *BusConfirmer) Confirm(ctx context.Context, title, message string) bool {
	reply := make(chan bool, 1)

	if !PublishConfirmRequest(ConfirmRequestMsg{Title: title, Message: message, Reply: reply}) {
		return false
	}

	select {
	case answer := <-reply:
		return answer
	case <-ctx.Done():
		return false
	case <-time.After(confirmTimeout):
		return false
	}
}

// BindStore forwards store change notifications onto the bus so the visible
// screen re-reads its snapshot without polling the store itself.
func BindStore(store *dashboard.Store) {
	store.Subscribe(func(dashboard.Change) {
		PublishStateUpdate()
	})
}
