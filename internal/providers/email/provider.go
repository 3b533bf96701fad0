package email

import "context"

// Provider delivers a single plain-text message. Implementations must be
// safe for concurrent use.
type Provider interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NoOpProvider drops every message. Used when no provider is configured
// and in tests.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to, subject, body string) error {
	return nil
}
