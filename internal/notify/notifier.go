// Package notify delivers receipt and booking notifications to the
// out-of-process notification collaborator. Publish failures are logged
// by callers and never roll back the business operation that triggered
// them.
package notify

import "context"

type Notifier interface {
	Publish(ctx context.Context, event string, payload any) error
	Close() error
}

// Noop is used when no broker is configured and in tests.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error                               { return nil }
