package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"network-ai-monitor/internal/model"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS rate_records(
	ts INTEGER NOT NULL,
	interface TEXT NOT NULL,
	class TEXT NOT NULL,
	inbound_mbps REAL NOT NULL,
	outbound_mbps REAL NOT NULL,
	status TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rate_records_ts ON rate_records(ts);`

// SQLiteRecorder stores readings as unrounded doubles in a local SQLite file.
type SQLiteRecorder struct {
	db *sql.DB
}

func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite mkdir %s: %w", dir, err)
		}
	}

	dsn := "file:" + path + "?_pragma=busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite init schema: %w", err)
	}

	return &SQLiteRecorder{db: db}, nil
}

func (r *SQLiteRecorder) Append(ctx context.Context, rec model.Record) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rate_records(ts, interface, class, inbound_mbps, outbound_mbps, status) VALUES(?,?,?,?,?,?)`,
		rec.Timestamp.UnixNano(), rec.InterfaceID, rec.Class, rec.InboundMbps, rec.OutboundMbps, rec.Verdict.String())
	if err != nil {
		return fmt.Errorf("sqlite insert: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
