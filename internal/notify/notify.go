package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BaselineRecipient always receives submission notifications.
const BaselineRecipient = "family@michele-memorial.org"

const sendTimeout = 30 * time.Second

// Field is one "label: value" line of a notification body.
type Field struct {
	Label string
	Value string
}

// Message is a rendered plain-text notification.
type Message struct {
	To      []string
	Subject string
	Text    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Recipients merges the baseline address with a comma separated list,
// keeping first-seen order and dropping blanks and duplicates.
func Recipients(baseline, list string) []string {
	seen := make(map[string]bool)
	res := make([]string, 0)

	for _, addr := range append([]string{baseline}, strings.Split(list, ",")...) {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)

		if addr == "" || seen[key] {
			continue
		}

		seen[key] = true
		res = append(res, addr)
	}

	return res
}

// FormatText renders one "label: value" line per field. Empty values print as "-".
func FormatText(fields []Field) string {
	var sb strings.Builder

	for i, f := range fields {
		if i > 0 {
			sb.WriteByte('\n')
		}

		v := f.Value
		if strings.TrimSpace(v) == "" {
			v = "-"
		}

		sb.WriteString(f.Label)
		sb.WriteString(": ")
		sb.WriteString(v)
	}

	return sb.String()
}

// Dispatcher delivers submission summaries. Delivery failures are logged and
// never reach the caller.
type Dispatcher struct {
	sender     Sender
	recipients []string
	logger     *zap.Logger
	observe    func(result string)

	wg sync.WaitGroup
}

type Option func(*Dispatcher)

// WithObserver registers a callback receiving "sent", "skipped" or "failed"
// for every delivery attempt.
func WithObserver(fn func(result string)) Option {
	return func(d *Dispatcher) {
		d.observe = fn
	}
}

func NewDispatcher(sender Sender, recipients []string, logger *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender:     sender,
		recipients: recipients,
		logger:     logger.With(zap.String("logger", "notify")),
		observe:    func(string) {},
	}

	for _, o := range opts {
		o(d)
	}

	return d
}

// Send delivers synchronously and returns the transport error, if any.
// An empty recipient set is not an error.
func (d *Dispatcher) Send(ctx context.Context, subject string, fields []Field) error {
	if len(d.recipients) == 0 {
		d.logger.Warn("notification skipped: no recipients configured")
		d.observe("skipped")

		return nil
	}

	err := d.sender.Send(ctx, Message{
		To:      d.recipients,
		Subject: subject,
		Text:    FormatText(fields),
	})
	if err != nil {
		d.observe("failed")
		return err
	}

	d.observe("sent")

	return nil
}

// Dispatch sends in the background. The request context only contributes its
// values: cancelling it does not abort delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, subject string, fields []Field) {
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)

	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()

		if err := d.Send(ctx, subject, fields); err != nil {
			d.logger.Error("unable to send notification email", zap.String("subject", subject), zap.Error(err))
		}
	}()
}

// Wait blocks until every dispatched notification has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
