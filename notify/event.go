package notify

import (
	"context"
)

// Progress event names.
const (
	EventQueued          = "event.queued"
	EventAnalyzingVideo  = "event.analyzing_video"
	EventExtractingAudio = "event.extracting_audio"
	EventTranscribing    = "event.transcribing"
	EventCompleted       = "event.completed"
	EventFailed          = "event.failed"
)

// Event is a job progress update.
type Event struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Event   string `json:"event"`
	Success bool   `json:"success"`
	Result  any    `json:"result"`
}

// Notifier delivers progress events. Delivery is fire-and-forget:
// implementations log failures and never return them to the job.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Noop discards every event.
type Noop struct{}

// Notify does nothing.
func (Noop) Notify(context.Context, Event) {}

// Multi fans an event out to several notifiers in order.
type Multi []Notifier

// Notify delivers ev to every notifier.
func (m Multi) Notify(ctx context.Context, ev Event) {
	for _, n := range m {
		n.Notify(ctx, ev)
	}
}
