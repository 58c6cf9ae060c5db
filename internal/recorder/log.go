package recorder

import (
	"context"

	"network-ai-monitor/internal/model"

	"github.com/sirupsen/logrus"
)

// LogRecorder prints each reading as a console line with six decimals
type LogRecorder struct {
	logger *logrus.Logger
}

func NewLogRecorder(logger *logrus.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Append(ctx context.Context, rec model.Record) error {
	r.logger.WithFields(logrus.Fields{
		"interface": rec.InterfaceID,
		"class":     rec.Class,
		"status":    rec.Verdict.String(),
	}).Infof("%s | %s (%s) | In: %s Mbps | Out: %s Mbps -> %s",
		rec.Timestamp.Format(TimestampLayout),
		rec.InterfaceID,
		rec.Class,
		model.FormatFixed(rec.InboundMbps, 6),
		model.FormatFixed(rec.OutboundMbps, 6),
		rec.Verdict)
	return nil
}
