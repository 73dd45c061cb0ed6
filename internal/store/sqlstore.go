package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cafedesk/cafedesk/internal/domain"
)

// RecordRow is the single table backing every collection in the SQL
// backend. Insertion order is the auto-increment id.
type RecordRow struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Collection string `gorm:"size:64;index"`
	Payload    string `gorm:"type:text"`
}

// TableName Specify table name
func (RecordRow) TableName() string {
	return "record_rows"
}

type sqlBackend struct {
	db *gorm.DB
}

// OpenSQL connects with the given dialect ("postgres" or "sqlite") and
// migrates the record table.
func OpenSQL(dialect, dsn string, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(dialect) {
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&RecordRow{}); err != nil {
		return nil, err
	}
	return db, nil
}

// NewSQLStore wraps an open gorm handle.
func NewSQLStore(db *gorm.DB) Store {
	return newRecordStore(&sqlBackend{db: db})
}

func (b *sqlBackend) name() string { return "sql" }

func (b *sqlBackend) read(ctx context.Context, s domain.Schema) ([]domain.Row, error) {
	var records []RecordRow
	if err := b.db.WithContext(ctx).
		Where("collection = ?", s.Name).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	rows := make([]domain.Row, 0, len(records))
	for _, rec := range records {
		var row domain.Row
		if err := json.UnmarshalFromString(rec.Payload, &row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (b *sqlBackend) write(ctx context.Context, s domain.Schema, rows []domain.Row) error {
	records := make([]RecordRow, 0, len(rows))
	for _, row := range rows {
		payload, err := json.MarshalToString(row)
		if err != nil {
			return err
		}
		records = append(records, RecordRow{Collection: s.Name, Payload: payload})
	}
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection = ?", s.Name).Delete(&RecordRow{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 200).Error
	})
}

func (b *sqlBackend) appendRow(ctx context.Context, s domain.Schema, row domain.Row) error {
	payload, err := json.MarshalToString(row)
	if err != nil {
		return err
	}
	return b.db.WithContext(ctx).Create(&RecordRow{Collection: s.Name, Payload: payload}).Error
}

func (b *sqlBackend) close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
