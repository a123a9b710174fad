package notify

import "context"

// Notification is a message destined for a student. Actual delivery (email,
// SMS) is owned by a downstream consumer; this service only publishes.
type Notification struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// Notifier publishes a notification. Callers treat failures as best-effort:
// a failed publish never rolls back committed state.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Noop drops every notification. Used when no broker is configured.
type Noop struct{}

func (Noop) Notify(ctx context.Context, n Notification) error {
	return nil
}
