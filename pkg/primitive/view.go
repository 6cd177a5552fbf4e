package primitive

import (
	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/raykavin/chartdraw/pkg/render"
)

// Renderer paints and hit tests the snapshot it was last given
type Renderer interface {
	Draw(t render.Target)
	HitTest(x, y float64) (core.HoverResult, bool)
}

// PaneView is what the host paints, in z-order
type PaneView interface {
	Renderer() Renderer
	ZOrder() core.ZOrder
}

// Attachable is the surface a host needs from any drawing
type Attachable interface {
	Attached(host *Host)
	Detached()
	PaneViews() []PaneView
	UpdateAllViews()
	HitTest(x, y float64) (core.HoverResult, bool)
	AutoscaleInfo(start, end float64) (core.PriceRange, bool)
}

// SnapshotRenderer caches one snapshot between updates
type SnapshotRenderer[S any] struct {
	draw func(render.Target, S)
	hit  func(S, float64, float64) (core.HoverResult, bool)

	snap S
	set  bool
}

// SetData replaces the cached snapshot
func (r *SnapshotRenderer[S]) SetData(snap S) {
	r.snap = snap
	r.set = true
}

// Snapshot returns the cached snapshot
func (r *SnapshotRenderer[S]) Snapshot() (S, bool) {
	return r.snap, r.set
}

func (r *SnapshotRenderer[S]) Draw(t render.Target) {
	if !r.set || t.Canvas == nil {
		return
	}
	r.draw(t, r.snap)
}

func (r *SnapshotRenderer[S]) HitTest(x, y float64) (core.HoverResult, bool) {
	if !r.set {
		return core.HoverResult{}, false
	}
	return r.hit(r.snap, x, y)
}

// View owns exactly one renderer
type View[S any] struct {
	renderer *SnapshotRenderer[S]
	zOrder   core.ZOrder
}

// NewView creates a view painting snapshots with draw
func NewView[S any](
	zOrder core.ZOrder,
	draw func(render.Target, S),
	hit func(S, float64, float64) (core.HoverResult, bool),
) *View[S] {
	return &View[S]{
		renderer: &SnapshotRenderer[S]{draw: draw, hit: hit},
		zOrder:   zOrder,
	}
}

// Update forwards a new snapshot to the renderer
func (v *View[S]) Update(snap S) { v.renderer.SetData(snap) }

func (v *View[S]) Renderer() Renderer { return v.renderer }

func (v *View[S]) ZOrder() core.ZOrder { return v.zOrder }
