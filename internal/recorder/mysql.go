package recorder

import (
	"context"
	"fmt"
	"os"
	"time"

	"network-ai-monitor/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RateRecord is the gorm model of a persisted reading.
type RateRecord struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	RecordedAt   time.Time `gorm:"index;not null"`
	Interface    string    `gorm:"size:64;index;not null"`
	Class        string    `gorm:"size:32;not null"`
	InboundMbps  float64   `gorm:"type:double;not null"`
	OutboundMbps float64   `gorm:"type:double;not null"`
	Status       string    `gorm:"size:32;not null"`
}

// MySQLRecorder writes readings through gorm.
type MySQLRecorder struct {
	db *gorm.DB
}

// MySQLDSNFromEnv builds a DSN from MYSQL_DSN or MYSQL_HOST, MYSQL_PORT,
// MYSQL_USER, MYSQL_PASS and MYSQL_DB.
func MySQLDSNFromEnv() string {
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		return dsn
	}
	host := getenv("MYSQL_HOST", "127.0.0.1")
	port := getenv("MYSQL_PORT", "3306")
	user := getenv("MYSQL_USER", "root")
	pass := getenv("MYSQL_PASS", "")
	dbname := getenv("MYSQL_DB", "netmon")
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", user, pass, host, port, dbname)
}

func NewMySQLRecorder(dsn string) (*MySQLRecorder, error) {
	if dsn == "" {
		dsn = MySQLDSNFromEnv()
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("mysql open: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(4)

	if err := db.AutoMigrate(&RateRecord{}); err != nil {
		return nil, fmt.Errorf("mysql migrate: %w", err)
	}
	return newGormRecorder(db), nil
}

func newGormRecorder(db *gorm.DB) *MySQLRecorder {
	return &MySQLRecorder{db: db}
}

func (r *MySQLRecorder) Append(ctx context.Context, rec model.Record) error {
	row := RateRecord{
		RecordedAt:   rec.Timestamp,
		Interface:    rec.InterfaceID,
		Class:        rec.Class,
		InboundMbps:  rec.InboundMbps,
		OutboundMbps: rec.OutboundMbps,
		Status:       rec.Verdict.String(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("mysql insert: %w", err)
	}
	return nil
}

func (r *MySQLRecorder) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
