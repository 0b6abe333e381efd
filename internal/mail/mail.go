package mail

import "context"

// Message is a single outbound email.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Body    string
}

// Mailer is the opaque send capability. Delivery failures are the caller's
// problem to log; the platform never blocks on email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
