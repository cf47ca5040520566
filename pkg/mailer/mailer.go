package mailer

import "context"

// Recipient identifies a single addressee.
type Recipient struct {
	Name  string
	Email string
}

// Message is a rendered outbound email.
type Message struct {
	To      Recipient
	Subject string
	Text    string
	HTML    string
}

// Mailer sends a single message. Implementations must be safe for
// concurrent use; the notification dispatcher fans out one goroutine
// per recipient.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
