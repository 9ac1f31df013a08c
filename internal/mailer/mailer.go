package mailer

import "context"

// Sender delivers a single email. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, toName, toAddr, subject, body string) error
}
