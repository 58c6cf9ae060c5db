package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"network-ai-monitor/internal/model"

	"github.com/sirupsen/logrus"
)

// Notifier sends one message through an outbound channel
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// NamedNotifier is a notifier with a channel name used in logs
type NamedNotifier struct {
	Name     string
	Notifier Notifier
}

// Dispatcher fans a message out to every configured notifier. A dispatch counts as
// delivered when at least one channel accepted it.
type Dispatcher struct {
	notifiers []NamedNotifier
	logger    *logrus.Logger
}

func NewDispatcher(logger *logrus.Logger, notifiers ...NamedNotifier) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		logger:    logger,
	}
}

func (d *Dispatcher) Register(name string, n Notifier) {
	d.notifiers = append(d.notifiers, NamedNotifier{Name: name, Notifier: n})
}

func (d *Dispatcher) Len() int {
	return len(d.notifiers)
}

// Notify runs every channel concurrently so a hung channel cannot starve the
// others. It returns once all channels answered or ctx is done, and succeeds
// if any channel delivered by then.
func (d *Dispatcher) Notify(ctx context.Context, subject, body string) error {
	if len(d.notifiers) == 0 {
		return fmt.Errorf("%w: no notifiers configured", model.ErrCollaboratorUnavailable)
	}

	type result struct {
		name string
		err  error
	}
	results := make(chan result, len(d.notifiers))
	for _, n := range d.notifiers {
		go func(n NamedNotifier) {
			defer func() {
				if r := recover(); r != nil {
					results <- result{name: n.Name, err: fmt.Errorf("notifier panic: %v", r)}
				}
			}()
			results <- result{name: n.Name, err: n.Notifier.Notify(ctx, subject, body)}
		}(n)
	}

	var errs []error
	delivered := 0
wait:
	for pending := len(d.notifiers); pending > 0; pending-- {
		select {
		case res := <-results:
			if res.err != nil {
				d.logger.Warnf("[Alert] %s notifier failed: %v", res.name, res.err)
				errs = append(errs, fmt.Errorf("%s: %w", res.name, res.err))
				continue
			}
			delivered++
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("%d notifier(s) still pending: %w", pending, ctx.Err()))
			break wait
		}
	}

	if delivered == 0 {
		return fmt.Errorf("%w: %w", model.ErrCollaboratorUnavailable, errors.Join(errs...))
	}
	return nil
}

// FormatMessage builds the subject and body of an anomaly notification
func FormatMessage(cr model.ClassifiedReading) (string, string) {
	subject := fmt.Sprintf("Network Alert on %s", cr.InterfaceID)

	var b strings.Builder
	fmt.Fprintf(&b, "Time      : %s\n", cr.ObservedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Interface : %s (%s)\n\n", cr.InterfaceID, cr.Class)
	fmt.Fprintf(&b, "Inbound   : %s Mbps\n", FormatMbps(cr.InboundMbps))
	fmt.Fprintf(&b, "Outbound  : %s Mbps\n", FormatMbps(cr.OutboundMbps))
	fmt.Fprintf(&b, "Status    : %s\n", cr.Verdict)

	return subject, b.String()
}

// FormatMbps renders a rate with six decimals for humans.
func FormatMbps(v float64) string {
	return model.FormatFixed(v, 6)
}

// SendTestMessage pushes a fixed message through n, used by -test-notify.
func SendTestMessage(ctx context.Context, n Notifier) error {
	return n.Notify(ctx, "Network Monitor test", fmt.Sprintf("Network monitor is working correctly!\nSent at %s", time.Now().Format("2006-01-02 15:04:05")))
}
