package geometry

import (
	"github.com/samber/lo"
)

// edgeIntersections returns where the infinite line through p1 and p2 meets
// the four edge lines of a width x height box. Vertical and horizontal lines
// only cross two of them.
func edgeIntersections(p1, p2 Point, width, height float64) []Point {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y

	switch {
	case dx == 0 && dy == 0:
		return nil
	case dx == 0:
		return []Point{Pt(p1.X, 0), Pt(p1.X, height)}
	case dy == 0:
		return []Point{Pt(0, p1.Y), Pt(width, p1.Y)}
	}

	slope := dy / dx
	intercept := p1.Y - slope*p1.X

	return []Point{
		Pt(0, intercept),
		Pt(width, slope*width+intercept),
		Pt(-intercept/slope, 0),
		Pt((height-intercept)/slope, height),
	}
}

// ExtendRay projects the ray starting at p1 and passing through p2 to the
// chart boundary. Only intersections ahead of p1 in the p1->p2 direction are
// considered, and the farthest of them wins. It reports false when p1 and p2
// coincide or no boundary lies ahead.
func ExtendRay(p1, p2 Point, width, height float64) (Point, bool) {
	direction := p2.Sub(p1)

	ahead := lo.Filter(edgeIntersections(p1, p2, width, height), func(p Point, _ int) bool {
		return p.Sub(p1).Dot(direction) > 0
	})
	if len(ahead) == 0 {
		return p2, false
	}

	return lo.MaxBy(ahead, func(a, b Point) bool {
		return a.Distance(p1) > b.Distance(p1)
	}), true
}
