package geometry

// Segment is a straight line between two points
type Segment struct {
	A, B Point
}

// Seg creates a Segment
func Seg(a, b Point) Segment {
	return Segment{A: a, B: b}
}

// Horizontal builds a horizontal segment at y from x1 to x2
func Horizontal(x1, x2, y float64) Segment {
	return Segment{A: Pt(x1, y), B: Pt(x2, y)}
}

// Vertical builds a vertical segment at x from y1 to y2
func Vertical(x, y1, y2 float64) Segment {
	return Segment{A: Pt(x, y1), B: Pt(x, y2)}
}

// Length returns the length of the segment
func (s Segment) Length() float64 {
	return s.A.Distance(s.B)
}

// Distance returns the shortest distance from p to the segment.
// A zero-length segment degrades to the distance to its single point.
func (s Segment) Distance(p Point) float64 {
	d := s.B.Sub(s.A)
	lengthSquared := d.Dot(d)
	if lengthSquared == 0 {
		return p.Distance(s.A)
	}

	t := Clamp(p.Sub(s.A).Dot(d)/lengthSquared, 0, 1)
	return p.Distance(s.A.Add(d.Mul(t)))
}

// Near reports whether p lies within tolerance of the segment
func (s Segment) Near(p Point, tolerance float64) bool {
	return s.Distance(p) <= tolerance
}

// DistanceToSegment is a shorthand for Seg(a, b).Distance(p)
func DistanceToSegment(p, a, b Point) float64 {
	return Seg(a, b).Distance(p)
}
