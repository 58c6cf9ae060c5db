package recorder

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"network-ai-monitor/internal/model"
)

var csvHeader = []string{
	"timestamp",
	"interface",
	"class",
	"inbound_mbps",
	"outbound_mbps",
	"status",
}

// CSVRecorder appends one row per reading to a CSV file, writing the header
// only when the file is new or empty.
type CSVRecorder struct {
	path string
	mu   sync.Mutex
}

func NewCSVRecorder(path string) (*CSVRecorder, error) {
	r := &CSVRecorder{path: path}
	if err := r.ensureHeader(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *CSVRecorder) ensureHeader() error {
	info, err := os.Stat(r.path)
	if err == nil && info.Size() > 0 {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", r.path, err)
	}
	return r.write(csvHeader)
}

// Append writes the reading with eight truncated decimals.
func (r *CSVRecorder) Append(ctx context.Context, rec model.Record) error {
	return r.write([]string{
		rec.Timestamp.Format(TimestampLayout),
		rec.InterfaceID,
		rec.Class,
		model.FormatFixed(rec.InboundMbps, 8),
		model.FormatFixed(rec.OutboundMbps, 8),
		rec.Verdict.String(),
	})
}

func (r *CSVRecorder) write(row []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", r.path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(row); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
