// Package storage persists drawing records.
package storage

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/raykavin/chartdraw/pkg/annotation"
)

// ErrNotFound is returned when no record has the requested id
var ErrNotFound = errors.New("drawing not found")

// Storage keeps drawing records by id
type Storage interface {
	// Save inserts or replaces a record. It stamps UpdatedAt and keeps the
	// CreatedAt of an existing record.
	Save(rec *annotation.Record) error
	Get(id string) (annotation.Record, error)
	Delete(id string) error
	// Records lists the records matching every filter, oldest update first
	Records(filters ...Filter) ([]annotation.Record, error)
	Close() error
}

// Filter selects records
type Filter func(annotation.Record) bool

// WithType keeps records of one of the given types
func WithType(types ...annotation.Type) Filter {
	return func(rec annotation.Record) bool {
		return slices.Contains(types, rec.Type)
	}
}

// UpdatedSince keeps records updated at or after t
func UpdatedSince(t time.Time) Filter {
	return func(rec annotation.Record) bool {
		return !rec.UpdatedAt.Before(t)
	}
}

var now = func() time.Time { return time.Now().UTC() }

func matches(rec annotation.Record, filters []Filter) bool {
	for _, filter := range filters {
		if !filter(rec) {
			return false
		}
	}
	return true
}

// stamp sets the timestamps of a record about to be written
func stamp(rec *annotation.Record, existing *annotation.Record) {
	rec.UpdatedAt = now()
	switch {
	case existing != nil:
		rec.CreatedAt = existing.CreatedAt
	case rec.CreatedAt.IsZero():
		rec.CreatedAt = rec.UpdatedAt
	}
}

func sortByUpdate(records []annotation.Record) {
	slices.SortStableFunc(records, func(a, b annotation.Record) int {
		if c := a.UpdatedAt.Compare(b.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
