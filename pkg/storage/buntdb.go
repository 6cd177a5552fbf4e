package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/raykavin/chartdraw/pkg/annotation"
	"github.com/raykavin/chartdraw/pkg/logger"
	"github.com/tidwall/buntdb"
)

const updateIndex = "update_index"

// BuntStorage implements Storage using BuntDB
type BuntStorage struct {
	db  *buntdb.DB
	log logger.Logger
}

// FromMemory creates an in-memory storage
func FromMemory(log logger.Logger) (*BuntStorage, error) {
	return NewBuntStorage(":memory:", log)
}

// FromFile creates a file-based storage
func FromFile(file string, log logger.Logger) (*BuntStorage, error) {
	return NewBuntStorage(file, log)
}

// NewBuntStorage creates a new BuntDB storage instance
func NewBuntStorage(sourceFile string, log logger.Logger) (*BuntStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	err = db.CreateIndex(updateIndex, "*", buntdb.IndexJSON("updated_at"))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	if log == nil {
		log = logger.Nop()
	}

	return &BuntStorage{db: db, log: log}, nil
}

func get(tx *buntdb.Tx, id string) (annotation.Record, error) {
	value, err := tx.Get(id)
	if errors.Is(err, buntdb.ErrNotFound) {
		return annotation.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return annotation.Record{}, fmt.Errorf("failed to read drawing %s: %w", id, err)
	}

	var rec annotation.Record
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		return annotation.Record{}, fmt.Errorf("failed to unmarshal drawing %s: %w", id, err)
	}
	return rec, nil
}

// Save stores a record, replacing any record with the same id
func (b *BuntStorage) Save(rec *annotation.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("failed to store drawing: empty id")
	}

	return b.db.Update(func(tx *buntdb.Tx) error {
		var existing *annotation.Record
		if prev, err := get(tx, rec.ID); err == nil {
			existing = &prev
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		stamp(rec, existing)

		content, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal drawing: %w", err)
		}

		if _, _, err = tx.Set(rec.ID, string(content), nil); err != nil {
			return fmt.Errorf("failed to store drawing: %w", err)
		}
		return nil
	})
}

// Get returns the record with the given id
func (b *BuntStorage) Get(id string) (annotation.Record, error) {
	var rec annotation.Record
	err := b.db.View(func(tx *buntdb.Tx) error {
		var err error
		rec, err = get(tx, id)
		return err
	})
	return rec, err
}

// Delete removes the record with the given id
func (b *BuntStorage) Delete(id string) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(id)
		if errors.Is(err, buntdb.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to delete drawing %s: %w", id, err)
		}
		return nil
	})
}

// Records retrieves the records passing every filter
func (b *BuntStorage) Records(filters ...Filter) ([]annotation.Record, error) {
	records := make([]annotation.Record, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		err := tx.Ascend(updateIndex, func(key, value string) bool {
			var rec annotation.Record
			if err := json.Unmarshal([]byte(value), &rec); err != nil {
				b.log.WithError(err).WithField("id", key).Warn("skipping unreadable drawing")
				return true
			}

			if matches(rec, filters) {
				records = append(records, rec)
			}
			return true
		})
		if err != nil {
			return fmt.Errorf("failed to iterate over drawings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortByUpdate(records)
	return records, nil
}

// Close closes the database
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

