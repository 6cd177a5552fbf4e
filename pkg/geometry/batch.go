package geometry

import (
	"sort"
)

// Column is one full-height region centered on a bar
type Column struct {
	X     float64
	Color string
}

// Band is a horizontal run of merged columns sharing a color
type Band struct {
	Left  float64
	Right float64
	Color string
}

// Width returns the horizontal size of the band
func (b Band) Width() float64 { return b.Right - b.Left }

// adjacencyFactor is the largest gap, in bar widths, still treated as touching
const adjacencyFactor = 0.5

// BatchColumns merges consecutive same-color columns of the given bar width
// into bands. A gap wider than half a bar or a color change always starts a
// new band, so runs are never bridged across a missing or foreign bar.
func BatchColumns(columns []Column, barWidth float64) []Band {
	if len(columns) == 0 {
		return nil
	}

	sorted := make([]Column, len(columns))
	copy(sorted, columns)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	half := barWidth / 2
	bands := make([]Band, 0, len(sorted))
	current := Band{Left: sorted[0].X - half, Right: sorted[0].X + half, Color: sorted[0].Color}

	for _, column := range sorted[1:] {
		left := column.X - half
		if column.Color == current.Color && left-current.Right <= adjacencyFactor*barWidth {
			current.Right = column.X + half
			continue
		}
		bands = append(bands, current)
		current = Band{Left: left, Right: column.X + half, Color: column.Color}
	}

	return append(bands, current)
}
