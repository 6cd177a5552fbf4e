package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/raykavin/chartdraw/pkg/primitive"
	"gopkg.in/yaml.v3"
)

// ErrUnknownType is returned for records naming no known drawing
var ErrUnknownType = errors.New("unknown drawing type")

// Type names a drawing kind in records
type Type string

const (
	TypeHorizontalLine Type = "horizontal-line"
	TypeHorizontalRay  Type = "horizontal-ray"
	TypeVerticalLine   Type = "vertical-line"
	TypeRectangle      Type = "rectangle"
	TypeTrendLine      Type = "trend-line"
	TypePosition       Type = "position"
	TypeRegions        Type = "regions"
)

// Drawing is any annotation, whatever its kind
type Drawing interface {
	primitive.Attachable
	ID() string
	Type() string
	MarshalState() (data, options []byte, err error)
	MergeData(patch []byte) error
	MergeOptions(patch []byte) error
	Merge(dataPatch, optionsPatch []byte) error
}

var factories = map[Type]func() Drawing{
	TypeHorizontalLine: func() Drawing { return NewHorizontalLine(HorizontalLineData{}) },
	TypeHorizontalRay:  func() Drawing { return NewHorizontalRay(HorizontalRayData{}) },
	TypeVerticalLine:   func() Drawing { return NewVerticalLine(VerticalLineData{}) },
	TypeRectangle:      func() Drawing { return NewRectangle(RectangleData{}) },
	TypeTrendLine:      func() Drawing { return NewTrendLine(TrendLineData{}) },
	TypePosition:       func() Drawing { return NewPosition(PositionData{}) },
	TypeRegions:        func() Drawing { return NewRegions(RegionsData{}) },
}

// Types lists every known drawing type
func Types() []Type {
	types := make([]Type, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Record is the persisted form of a drawing. Data and Options hold the
// JSON fields of the drawing's data and options; missing option fields
// keep their defaults.
type Record struct {
	ID        string         `json:"id" yaml:"id"`
	Type      Type           `json:"type" yaml:"type"`
	Data      map[string]any `json:"data" yaml:"data"`
	Options   map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitzero" yaml:"created_at,omitempty"`
	UpdatedAt time.Time      `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
}

// Build creates a detached drawing from a record. A record without id gets
// a fresh one, which becomes the drawing's external id.
func Build(rec Record) (Drawing, error) {
	factory, ok := factories[rec.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, rec.Type)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	d := factory()

	if len(rec.Data) > 0 {
		data, err := json.Marshal(rec.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode data of %s: %w", rec.ID, err)
		}
		if err := d.MergeData(data); err != nil {
			return nil, fmt.Errorf("invalid data of %s: %w", rec.ID, err)
		}
	}

	options := make(map[string]any, len(rec.Options)+1)
	for k, v := range rec.Options {
		options[k] = v
	}
	options["externalId"] = rec.ID

	patch, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options of %s: %w", rec.ID, err)
	}
	if err := d.MergeOptions(patch); err != nil {
		return nil, fmt.Errorf("invalid options of %s: %w", rec.ID, err)
	}

	return d, nil
}

// ToRecord captures the current state of a drawing
func ToRecord(d Drawing) (Record, error) {
	data, options, err := d.MarshalState()
	if err != nil {
		return Record{}, err
	}

	rec := Record{ID: d.ID(), Type: Type(d.Type())}
	if err := json.Unmarshal(data, &rec.Data); err != nil {
		return Record{}, fmt.Errorf("failed to decode data of %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(options, &rec.Options); err != nil {
		return Record{}, fmt.Errorf("failed to decode options of %s: %w", rec.ID, err)
	}
	delete(rec.Options, "externalId")

	return rec, nil
}

// Document is a file of drawings
type Document struct {
	Drawings []Record `json:"drawings" yaml:"drawings"`
}

// Format is the encoding of a drawings document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DecodeDocument reads a drawings document
func DecodeDocument(r io.Reader, format Format) (Document, error) {
	var doc Document

	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return doc, fmt.Errorf("failed to decode yaml drawings: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return doc, fmt.Errorf("failed to decode json drawings: %w", err)
		}
	}

	return doc, nil
}

// EncodeDocument writes a drawings document
func EncodeDocument(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml drawings: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json drawings: %w", err)
		}
		return nil
	}
}
