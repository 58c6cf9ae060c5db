package alert

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogAlertNotifier sends alerts to local logs
type LogAlertNotifier struct {
	logger *logrus.Logger
}

// NewLogAlertNotifier creates a new log alert notifier
func NewLogAlertNotifier(logger *logrus.Logger) *LogAlertNotifier {
	return &LogAlertNotifier{
		logger: logger,
	}
}

// Notify implements Notifier - writes the alert to the log
func (ln *LogAlertNotifier) Notify(ctx context.Context, subject, body string) error {
	ln.logger.WithField("channel", "log").Warnf("ALERT %s\n%s", subject, body)
	return nil
}
