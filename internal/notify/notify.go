package notify

import (
	"context"

	"go.uber.org/multierr"
)

// Notifier delivers one state-change message. recipient is the endpoint's
// notify address and may be empty; channels without a per-recipient concept
// ignore it.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}

// Multi sends to every channel and combines their failures.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, recipient, subject, body string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Notify(ctx, recipient, subject, body))
	}
	return err
}

// Nop drops every message.
type Nop struct{}

func (Nop) Notify(context.Context, string, string, string) error { return nil }
