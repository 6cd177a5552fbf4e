package chart

import (
	"math"
	"sort"
	"strconv"

	"github.com/raykavin/chartdraw/pkg/core"
)

// TimeScale places bars at a fixed spacing. Bar i sits at logical index i;
// times between two bars interpolate, times outside the series are
// unmappable.
type TimeScale struct {
	times   []core.Time
	from    float64
	spacing float64
	width   float64
	height  float64
}

var _ core.TimeScale = (*TimeScale)(nil)

// reset lays out the bars so the last one touches the right edge
func (s *TimeScale) reset(times []core.Time, width, height, spacing float64) {
	s.times = times
	s.width = width
	s.height = height
	s.spacing = spacing
	s.from = math.Max(0, float64(len(times))-width/spacing)
}

func (s *TimeScale) timeToLogical(t core.Time) (float64, bool) {
	n := len(s.times)
	i := sort.Search(n, func(i int) bool { return s.times[i] >= t })
	if i == n {
		return 0, false
	}
	if s.times[i] == t {
		return float64(i), true
	}
	if i == 0 {
		return 0, false
	}

	prev := s.times[i-1]
	return float64(i-1) + float64(t-prev)/float64(s.times[i]-prev), true
}

func (s *TimeScale) TimeToCoordinate(t core.Time) (float64, bool) {
	logical, ok := s.timeToLogical(t)
	if !ok {
		return 0, false
	}
	return s.LogicalToCoordinate(logical)
}

func (s *TimeScale) LogicalToCoordinate(logical float64) (float64, bool) {
	if len(s.times) == 0 {
		return 0, false
	}
	return (logical-s.from)*s.spacing + s.spacing/2, true
}

func (s *TimeScale) CoordinateToLogical(x float64) (float64, bool) {
	if len(s.times) == 0 {
		return 0, false
	}
	return (x-s.spacing/2)/s.spacing + s.from, true
}

// VisibleRange returns the logical range between the pane edges
func (s *TimeScale) VisibleRange() (start, end float64, ok bool) {
	if start, ok = s.CoordinateToLogical(0); !ok {
		return 0, 0, false
	}
	end, _ = s.CoordinateToLogical(s.width)
	return start, end, true
}

// Bars returns the indexes of the bars inside the visible range
func (s *TimeScale) Bars() (first, last int) {
	start, end, ok := s.VisibleRange()
	if !ok {
		return 0, -1
	}
	first = max(0, int(math.Ceil(start)))
	last = min(len(s.times)-1, int(math.Floor(end)))
	return first, last
}

func (s *TimeScale) Width() float64 { return s.width }

func (s *TimeScale) PaneHeight() float64 { return s.height }

func (s *TimeScale) BarSpacing() float64 { return s.spacing }

// PriceScale maps the autoscaled price range onto the pane height, keeping
// a margin above and below
type PriceScale struct {
	low, high float64
	valid     bool
	height    float64
	margin    float64
	precision int
}

var _ core.PriceScale = (*PriceScale)(nil)

func (s *PriceScale) reset(r core.PriceRange, ok bool, height float64) {
	s.low, s.high, s.valid, s.height = r.Min, r.Max, ok, height
}

// Range returns the autoscaled price range
func (s *PriceScale) Range() (core.PriceRange, bool) {
	return core.PriceRange{Min: s.low, Max: s.high}, s.valid
}

func (s *PriceScale) PriceToCoordinate(price float64) (float64, bool) {
	if !s.valid {
		return 0, false
	}

	span := s.high - s.low
	if span == 0 {
		return s.height / 2, true
	}

	top := s.height * s.margin
	inner := s.height * (1 - 2*s.margin)
	return top + (s.high-price)/span*inner, true
}

// CoordinateToPrice is the inverse of PriceToCoordinate
func (s *PriceScale) CoordinateToPrice(y float64) (float64, bool) {
	span := s.high - s.low
	if !s.valid || span == 0 {
		return s.low, s.valid
	}

	top := s.height * s.margin
	inner := s.height * (1 - 2*s.margin)
	return s.high - (y-top)/inner*span, true
}

func (s *PriceScale) FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', s.precision, 64)
}
