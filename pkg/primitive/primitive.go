// Package primitive holds the attach/update/hit-test machinery shared by
// every drawing. A drawing supplies a Kind that projects its domain state
// into a screen-space snapshot, paints that snapshot and answers hit tests
// against it; Primitive owns the state, the host link and the pane view.
package primitive

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/render"
)

// Host is the chart a primitive is attached to
type Host struct {
	Chart         core.TimeScale
	Series        core.PriceScale
	RequestUpdate func()
}

// Ready reports whether both scales are present
func (h *Host) Ready() bool {
	return h != nil && h.Chart != nil && h.Series != nil
}

// Options is the constraint every options type satisfies
type Options interface {
	ID() string
}

// Kind is the per-drawing strategy
type Kind[D any, O Options, S any] interface {
	// Type names the drawing in records and logs
	Type() string
	// Project converts the domain state to a snapshot. host is always ready.
	Project(host *Host, data D, opts O) S
	// Draw paints a snapshot, doing nothing when a required coordinate is
	// unmapped.
	Draw(t render.Target, snap S)
	// HitTest checks a media pixel position against a snapshot
	HitTest(snap S, x, y float64) (core.HoverResult, bool)
	// Autoscale reports the price range contributed to the logical range
	// [start, end]
	Autoscale(host *Host, data D, opts O, start, end float64) (core.PriceRange, bool)
	ZOrder() core.ZOrder
}

// Normalizer is implemented by kinds that clamp option values after a merge
type Normalizer[O any] interface {
	Normalize(opts O) O
}

// Primitive is one drawing attached to at most one host
type Primitive[D any, O Options, S any] struct {
	kind     Kind[D, O, S]
	host     *Host
	data     D
	options  O
	defaults O
	view     *View[S]
}

// New creates a detached primitive
func New[D any, O Options, S any](kind Kind[D, O, S], data D, defaults O, options ...func(*O)) *Primitive[D, O, S] {
	p := &Primitive[D, O, S]{
		kind:     kind,
		data:     data,
		options:  defaults,
		defaults: defaults,
		view:     NewView[S](kind.ZOrder(), kind.Draw, kind.HitTest),
	}
	for _, option := range options {
		option(&p.options)
	}
	p.options = p.normalize(p.options)
	return p
}

func (p *Primitive[D, O, S]) normalize(opts O) O {
	if n, ok := p.kind.(Normalizer[O]); ok {
		return n.Normalize(opts)
	}
	return opts
}

// Type returns the drawing type name
func (p *Primitive[D, O, S]) Type() string { return p.kind.Type() }

// ID returns the external identifier from the options
func (p *Primitive[D, O, S]) ID() string { return p.options.ID() }

// Attached links the primitive to a host and asks for a repaint. Calling it
// again replaces the previous host.
func (p *Primitive[D, O, S]) Attached(host *Host) {
	p.host = host
	p.RequestUpdate()
}

// Detached drops the host. Domain state and the last snapshot are kept.
func (p *Primitive[D, O, S]) Detached() {
	p.host = nil
}

// IsAttached reports whether a host is linked
func (p *Primitive[D, O, S]) IsAttached() bool { return p.host.Ready() }

// RequestUpdate signals the host, if any, that the drawing changed
func (p *Primitive[D, O, S]) RequestUpdate() {
	if p.host != nil && p.host.RequestUpdate != nil {
		p.host.RequestUpdate()
	}
}

// Data returns the domain state
func (p *Primitive[D, O, S]) Data() D { return p.data }

// SetData replaces the domain state
func (p *Primitive[D, O, S]) SetData(data D) {
	p.data = data
	p.RequestUpdate()
}

// UpdateData changes selected domain fields in place
func (p *Primitive[D, O, S]) UpdateData(fn func(*D)) {
	fn(&p.data)
	p.RequestUpdate()
}

// Options returns the full current options
func (p *Primitive[D, O, S]) Options() O { return p.options }

// ApplyOptions runs option setters over the current options. Fields no
// setter touches keep their value.
func (p *Primitive[D, O, S]) ApplyOptions(options ...func(*O)) {
	next := p.options
	for _, option := range options {
		option(&next)
	}
	p.options = p.normalize(next)
	p.RequestUpdate()
}

// MergeOptions applies a JSON merge patch to the current options. Nested
// objects merge key by key; null restores a field's default.
func (p *Primitive[D, O, S]) MergeOptions(patch []byte) error {
	return p.Merge(nil, patch)
}

// MergeData applies a JSON merge patch to the domain state
func (p *Primitive[D, O, S]) MergeData(patch []byte) error {
	return p.Merge(patch, nil)
}

// Merge applies a data patch and an options patch together. When either
// patch is invalid neither is applied.
func (p *Primitive[D, O, S]) Merge(dataPatch, optionsPatch []byte) error {
	if len(dataPatch) == 0 && len(optionsPatch) == 0 {
		return nil
	}

	data := p.data
	if len(dataPatch) > 0 {
		merged, err := mergeJSON(p.data, dataPatch)
		var next D
		if err == nil {
			err = json.Unmarshal(merged, &next)
		}
		if err != nil {
			return fmt.Errorf("invalid %s data: %w", p.kind.Type(), err)
		}
		data = next
	}

	options := p.options
	if len(optionsPatch) > 0 {
		merged, err := mergeJSON(p.options, optionsPatch)
		if err == nil {
			// fields a null removed fall back to the defaults
			merged, err = mergeJSON(p.defaults, merged)
		}
		var next O
		if err == nil {
			err = json.Unmarshal(merged, &next)
		}
		if err != nil {
			return fmt.Errorf("invalid %s options: %w", p.kind.Type(), err)
		}
		options = p.normalize(next)
	}

	p.data, p.options = data, options
	p.RequestUpdate()
	return nil
}

// mergeJSON encodes base and applies a JSON merge patch over it
func mergeJSON(base any, patch []byte) ([]byte, error) {
	current, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("failed to encode: %w", err)
	}

	merged, err := jsonpatch.MergePatch(current, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to merge: %w", err)
	}
	return merged, nil
}

// MarshalState encodes the domain state and options as JSON documents
func (p *Primitive[D, O, S]) MarshalState() (data, options []byte, err error) {
	if data, err = json.Marshal(p.data); err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s data: %w", p.kind.Type(), err)
	}
	if options, err = json.Marshal(p.options); err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s options: %w", p.kind.Type(), err)
	}
	return data, options, nil
}

// UpdateAllViews recomputes the snapshot. A detached primitive keeps its
// last snapshot.
func (p *Primitive[D, O, S]) UpdateAllViews() {
	if !p.host.Ready() {
		return
	}
	p.view.Update(p.kind.Project(p.host, p.data, p.options))
}

// Snapshot returns the last projected snapshot
func (p *Primitive[D, O, S]) Snapshot() (S, bool) {
	return p.view.renderer.Snapshot()
}

// PaneViews lists the views painted by the host
func (p *Primitive[D, O, S]) PaneViews() []PaneView {
	return []PaneView{p.view}
}

// HitTest checks a media pixel position against the last snapshot
func (p *Primitive[D, O, S]) HitTest(x, y float64) (core.HoverResult, bool) {
	if !p.host.Ready() {
		return core.HoverResult{}, false
	}
	return p.view.renderer.HitTest(x, y)
}

// AutoscaleInfo reports the price range this drawing adds to the visible
// logical range [start, end]
func (p *Primitive[D, O, S]) AutoscaleInfo(start, end float64) (core.PriceRange, bool) {
	if !p.host.Ready() {
		return core.PriceRange{}, false
	}
	return p.kind.Autoscale(p.host, p.data, p.options, start, end)
}
