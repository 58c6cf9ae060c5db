package recorder

import (
	"context"
	"errors"
	"fmt"

	"network-ai-monitor/internal/model"
)

// TimestampLayout is the human-readable timestamp used by the CSV and log recorders.
const TimestampLayout = "2006-01-02 15:04:05"

// Recorder persists every classified reading
type Recorder interface {
	Append(ctx context.Context, rec model.Record) error
}

// Closer is implemented by recorders that hold files or connections
type Closer interface {
	Close() error
}

// Multi appends to every recorder and reports all failures together.
type Multi []Recorder

func (m Multi) Append(ctx context.Context, rec model.Record) error {
	var errs []error
	for _, r := range m {
		if err := r.Append(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", model.ErrCollaboratorUnavailable, errors.Join(errs...))
	}
	return nil
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if c, ok := r.(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
