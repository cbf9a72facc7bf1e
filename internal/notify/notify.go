// Package notify renders account lifecycle messages. Delivery is done by a
// Sender; the default one writes messages to the structured log.
package notify

import (
	"context"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dtroode/taskmanager-server/internal/logger"
	"github.com/dtroode/taskmanager-server/internal/model"
)

// Message keys registered in the catalog.
const (
	keyWelcomeSubject      = "welcome.subject"
	keyWelcomeBody         = "welcome.body"
	keyCancellationSubject = "cancellation.subject"
	keyCancellationBody    = "cancellation.body"
)

func init() {
	entries := map[string]string{
		keyWelcomeSubject:      "Welcome to Task Manager!",
		keyWelcomeBody:         "Welcome to the app, %s. Let me know how you get along with the app.",
		keyCancellationSubject: "We're sorry that you quit.",
		keyCancellationBody:    "Hope to see you again, %s.",
	}
	for key, msg := range entries {
		if err := message.SetString(language.English, key, msg); err != nil {
			panic(fmt.Sprintf("notify: register %q: %v", key, err))
		}
	}
}

// Mail is a rendered notification.
type Mail struct {
	To      string
	From    string
	Subject string
	Body    string
}

// Sender delivers a rendered Mail.
type Sender interface {
	Send(ctx context.Context, mail Mail) error
}

var _ model.Notifier = (*Notifier)(nil)

// Notifier renders welcome and cancellation messages and hands them to a Sender.
type Notifier struct {
	sender  Sender
	printer *message.Printer
	from    string
}

// New creates a Notifier rendering messages in lang. Unknown languages fall
// back to English.
func New(sender Sender, lang, from string) *Notifier {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &Notifier{
		sender:  sender,
		printer: message.NewPrinter(tag),
		from:    from,
	}
}

// Welcome greets a newly registered user.
func (n *Notifier) Welcome(ctx context.Context, user model.User) error {
	return n.send(ctx, user, keyWelcomeSubject, keyWelcomeBody)
}

// Cancellation says goodbye to a user whose account was deleted.
func (n *Notifier) Cancellation(ctx context.Context, user model.User) error {
	return n.send(ctx, user, keyCancellationSubject, keyCancellationBody)
}

func (n *Notifier) send(ctx context.Context, user model.User, subjectKey, bodyKey string) error {
	mail := Mail{
		To:      user.Email,
		From:    n.from,
		Subject: n.printer.Sprintf(subjectKey),
		Body:    n.printer.Sprintf(bodyKey, user.Name),
	}
	if err := n.sender.Send(ctx, mail); err != nil {
		return fmt.Errorf("failed to send %q: %w", subjectKey, err)
	}
	return nil
}

// LogSender writes mails to the application log instead of delivering them.
type LogSender struct {
	logger *logger.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *logger.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the mail.
func (s *LogSender) Send(ctx context.Context, mail Mail) error {
	s.logger.InfoContext(ctx, "Notifier: mail",
		"to", mail.To,
		"from", mail.From,
		"subject", mail.Subject,
		"body", mail.Body)
	return nil
}
