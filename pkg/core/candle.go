package core

import (
	"fmt"
	"strconv"
	"time"
)

// Candle represents a bar of OHLCV data plotted by the host chart
type Candle struct {
	Pair     string
	Time     time.Time
	Open     float64
	Close    float64
	Low      float64
	High     float64
	Volume   float64
	Complete bool

	// Additional columns from CSV inputs
	Metadata map[string]float64
}

// ScaleTime returns the horizontal scale value of the candle
func (c Candle) ScaleTime() Time { return TimeOf(c.Time) }

// Bullish reports whether the candle closed at or above its open
func (c Candle) Bullish() bool { return c.Close >= c.Open }

// IsEmpty checks if the candle contains no significant data
func (c Candle) IsEmpty() bool { return c.Pair == "" && c.Close == 0 && c.Open == 0 && c.Volume == 0 }

// ToSlice converts a candle to a string slice for serialization
// with the specified decimal precision
func (c Candle) ToSlice(precision int) []string {
	return []string{
		fmt.Sprintf("%d", c.Time.Unix()),
		strconv.FormatFloat(c.Open, 'f', precision, 64),
		strconv.FormatFloat(c.Close, 'f', precision, 64),
		strconv.FormatFloat(c.Low, 'f', precision, 64),
		strconv.FormatFloat(c.High, 'f', precision, 64),
		strconv.FormatFloat(c.Volume, 'f', precision, 64),
	}
}
