package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raykavin/chartdraw/pkg/annotation"
	"github.com/samber/lo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// drawing is the table row of a record. Timestamps are unix nanoseconds
// so ordering keeps sub-second precision on every dialect.
type drawing struct {
	ID      string `gorm:"primaryKey;size:64"`
	Type    string `gorm:"size:32;index"`
	Data    string
	Options string
	Created int64 `gorm:"column:created_at"`
	Updated int64 `gorm:"column:updated_at;index"`
}

func (drawing) TableName() string { return "drawings" }

func toRow(rec annotation.Record) (drawing, error) {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return drawing{}, fmt.Errorf("failed to marshal drawing data: %w", err)
	}
	options, err := json.Marshal(rec.Options)
	if err != nil {
		return drawing{}, fmt.Errorf("failed to marshal drawing options: %w", err)
	}

	return drawing{
		ID:      rec.ID,
		Type:    string(rec.Type),
		Data:    string(data),
		Options: string(options),
		Created: rec.CreatedAt.UnixNano(),
		Updated: rec.UpdatedAt.UnixNano(),
	}, nil
}

func (d drawing) record() (annotation.Record, error) {
	rec := annotation.Record{
		ID:        d.ID,
		Type:      annotation.Type(d.Type),
		CreatedAt: time.Unix(0, d.Created).UTC(),
		UpdatedAt: time.Unix(0, d.Updated).UTC(),
	}
	if err := json.Unmarshal([]byte(d.Data), &rec.Data); err != nil {
		return rec, fmt.Errorf("failed to unmarshal data of drawing %s: %w", d.ID, err)
	}
	if err := json.Unmarshal([]byte(d.Options), &rec.Options); err != nil {
		return rec, fmt.Errorf("failed to unmarshal options of drawing %s: %w", d.ID, err)
	}
	return rec, nil
}

// SQLStorage implements Storage using a SQL database via GORM
type SQLStorage struct {
	db *gorm.DB
}

// FromSQL creates a new SQL storage instance
func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (*SQLStorage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err = db.AutoMigrate(&drawing{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLStorage{db: db}, nil
}

// FromSQLite opens a SQLite database file. ":memory:" opens a private
// in-memory database shared by every pooled connection.
func FromSQLite(path string) (*SQLStorage, error) {
	if path == ":memory:" {
		path = fmt.Sprintf("file:chartdraw-%s?mode=memory&cache=shared", uuid.NewString())
	}
	return FromSQL(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

// Save inserts or replaces a record
func (s *SQLStorage) Save(rec *annotation.Record) error {
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("failed to store drawing: empty id")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing *annotation.Record

		var row drawing
		err := tx.First(&row, "id = ?", rec.ID).Error
		switch {
		case err == nil:
			prev, err := row.record()
			if err != nil {
				return err
			}
			existing = &prev
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to read drawing %s: %w", rec.ID, err)
		}
		stamp(rec, existing)

		row, err = toRow(*rec)
		if err != nil {
			return err
		}
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("failed to store drawing: %w", err)
		}
		return nil
	})
}

// Get returns the record with the given id
func (s *SQLStorage) Get(id string) (annotation.Record, error) {
	var row drawing
	err := s.db.First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return annotation.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return annotation.Record{}, fmt.Errorf("failed to read drawing %s: %w", id, err)
	}
	return row.record()
}

// Delete removes the record with the given id
func (s *SQLStorage) Delete(id string) error {
	result := s.db.Delete(&drawing{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete drawing %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Records retrieves the records passing every filter, filtering in memory
func (s *SQLStorage) Records(filters ...Filter) ([]annotation.Record, error) {
	var rows []drawing
	if err := s.db.Order("updated_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch drawings: %w", err)
	}

	records := make([]annotation.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return lo.Filter(records, func(rec annotation.Record, _ int) bool {
		return matches(rec, filters)
	}), nil
}

// RecordsWithQuery runs a custom GORM query against the drawings table
func (s *SQLStorage) RecordsWithQuery(query func(*gorm.DB) *gorm.DB) ([]annotation.Record, error) {
	var rows []drawing
	if err := query(s.db.Model(&drawing{})).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	records := make([]annotation.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
