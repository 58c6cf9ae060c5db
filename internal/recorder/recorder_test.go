package recorder

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"network-ai-monitor/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func sampleRecord(ts time.Time, iface string, in float64) model.Record {
	return model.Record{
		Timestamp:    ts,
		InterfaceID:  iface,
		Class:        "ethernet",
		InboundMbps:  in,
		OutboundMbps: 0.123456789,
		Verdict:      model.Verdict_ANOMALY_INBOUND,
	}
}

func TestCSVRecorder_WritesHeaderOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bandwidth_log.csv")
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.Local)

	r1, err := NewCSVRecorder(path)
	if err != nil {
		t.Fatalf("NewCSVRecorder: %v", err)
	}
	if err := r1.Append(context.Background(), sampleRecord(ts, "eth0", 20)); err != nil {
		t.Fatalf("Append #1: %v", err)
	}

	// Reopening an existing file must not repeat the header.
	r2, err := NewCSVRecorder(path)
	if err != nil {
		t.Fatalf("NewCSVRecorder reopen: %v", err)
	}
	if err := r2.Append(context.Background(), sampleRecord(ts, "eth1", 1.5)); err != nil {
		t.Fatalf("Append #2: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines=%d\n%s", len(lines), string(data))
	}
	if lines[0] != "timestamp,interface,class,inbound_mbps,outbound_mbps,status" {
		t.Fatalf("header=%q", lines[0])
	}
	if want := "2024-05-01 12:30:00,eth0,ethernet,20.00000000,0.12345678,ANOMALY_INBOUND"; lines[1] != want {
		t.Fatalf("row=%q want %q", lines[1], want)
	}
}

type failingRecorder struct{}

func (failingRecorder) Append(ctx context.Context, rec model.Record) error {
	return errors.New("disk full")
}

type countingRecorder struct{ n int }

func (c *countingRecorder) Append(ctx context.Context, rec model.Record) error {
	c.n++
	return nil
}

func TestMulti_ContinuesPastFailures(t *testing.T) {
	t.Parallel()

	counter := &countingRecorder{}
	m := Multi{failingRecorder{}, counter}

	err := m.Append(context.Background(), sampleRecord(time.Now(), "eth0", 1))
	if !errors.Is(err, model.ErrCollaboratorUnavailable) {
		t.Fatalf("err=%v", err)
	}
	if counter.n != 1 {
		t.Fatalf("second recorder calls=%d", counter.n)
	}
}

func TestSQLiteRecorder_StoresUnroundedValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "db", "netmon.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer r.Close()

	ts := time.Unix(1700000000, 0)
	if err := r.Append(context.Background(), sampleRecord(ts, "eth0", 20.000000123)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	var (
		gotTS    int64
		iface    string
		inbound  float64
		outbound float64
		status   string
	)
	row := r.db.QueryRow(`SELECT ts, interface, inbound_mbps, outbound_mbps, status FROM rate_records`)
	if err := row.Scan(&gotTS, &iface, &inbound, &outbound, &status); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if gotTS != ts.UnixNano() || iface != "eth0" || status != "ANOMALY_INBOUND" {
		t.Fatalf("row=%d %s %s", gotTS, iface, status)
	}
	if inbound != 20.000000123 || outbound != 0.123456789 {
		t.Fatalf("values=%v %v", inbound, outbound)
	}
}

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return db, mock, sqlDB
}

func TestMySQLRecorder_Append(t *testing.T) {
	db, mock, sqlDB := newMockGorm(t)
	defer sqlDB.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `rate_records`")).
		WithArgs(sqlmock.AnyArg(), "eth0", "ethernet", 20.0, 0.123456789, "ANOMALY_INBOUND").
		WillReturnResult(sqlmock.NewResult(1, 1))

	r := newGormRecorder(db)
	if err := r.Append(context.Background(), sampleRecord(time.Now(), "eth0", 20)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMySQLRecorder_AppendError(t *testing.T) {
	db, mock, sqlDB := newMockGorm(t)
	defer sqlDB.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `rate_records`")).
		WillReturnError(errors.New("connection refused"))

	r := newGormRecorder(db)
	err := r.Append(context.Background(), sampleRecord(time.Now(), "eth0", 20))
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("err=%v", err)
	}
}

func TestMySQLDSNFromEnv(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_USER", "netmon")
	t.Setenv("MYSQL_PASS", "secret")

	want := "netmon:secret@tcp(db.internal:3306)/netmon?charset=utf8mb4&parseTime=True&loc=Local"
	if got := MySQLDSNFromEnv(); got != want {
		t.Fatalf("dsn=%q", got)
	}

	t.Setenv("MYSQL_DSN", "u:p@tcp(h:1)/d")
	if got := MySQLDSNFromEnv(); got != "u:p@tcp(h:1)/d" {
		t.Fatalf("dsn=%q", got)
	}
}
