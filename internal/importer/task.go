// ABOUTME: Import task lifecycle: one linear async chain per trigger.
// ABOUTME: States are idle, running, succeeded, failed; transitions are observable.

package importer

import "time"

// State is where an import task is in its lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Event is one observable task transition, streamed to interested clients.
type Event struct {
	TaskID  string    `json:"task_id"`
	State   State     `json:"state"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

// Notifier receives task transitions. Implementations must not block.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}
