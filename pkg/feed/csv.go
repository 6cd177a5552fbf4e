// Package feed loads the candles the host chart plots from CSV files.
package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/raykavin/chartdraw/pkg/core"
	"github.com/samber/lo"
	"github.com/xhit/go-str2duration/v2"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	defaultHeaderMap    = map[string]int{
		"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
	}
)

// Source is a CSV file of one pair at one timeframe
type Source struct {
	Pair       string
	File       string
	Timeframe  string
	HeikinAshi bool
}

// CSVFeed holds the candles of every source, resampled to a target timeframe
type CSVFeed struct {
	Sources             map[string]Source
	CandlePairTimeFrame map[string][]core.Candle
}

// parseHeaders returns the column index of each field. A first cell that
// parses as an integer means the file has no header row.
func parseHeaders(headers []string) (headerMap map[string]int, additional []string, hasCustomHeaders bool) {
	if _, err := strconv.Atoi(headers[0]); err == nil {
		return defaultHeaderMap, nil, false
	}

	headerMap = make(map[string]int)
	for index, header := range headers {
		headerMap[header] = index
		if _, exists := defaultHeaderMap[header]; !exists {
			additional = append(additional, header)
		}
	}

	for field := range defaultHeaderMap {
		if _, ok := headerMap[field]; !ok {
			return nil, nil, false
		}
	}

	return headerMap, additional, true
}

// NewCSVFeed reads every source and resamples it to targetTimeframe
func NewCSVFeed(targetTimeframe string, sources ...Source) (*CSVFeed, error) {
	feed := &CSVFeed{
		Sources:             make(map[string]Source),
		CandlePairTimeFrame: make(map[string][]core.Candle),
	}

	for _, source := range sources {
		feed.Sources[source.Pair] = source

		candles, err := readFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", source.File, err)
		}
		feed.CandlePairTimeFrame[key(source.Pair, source.Timeframe)] = candles

		resampled, err := Resample(candles, source.Timeframe, targetTimeframe)
		if err != nil {
			return nil, fmt.Errorf("failed to resample %s: %w", source.Pair, err)
		}
		feed.CandlePairTimeFrame[key(source.Pair, targetTimeframe)] = resampled
	}

	return feed, nil
}

func readFile(source Source) ([]core.Candle, error) {
	file, err := os.Open(source.File)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	candles, err := Read(file, source.Pair)
	if err != nil {
		return nil, err
	}

	if source.HeikinAshi {
		candles = HeikinAshi(candles)
	}
	return candles, nil
}

// Read parses candles from CSV. Columns are time (unix seconds), open,
// close, low, high and volume, optionally named by a header row; extra
// named columns land in Candle.Metadata.
func Read(r io.Reader, pair string) ([]core.Candle, error) {
	lines, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty csv", ErrInsufficientData)
	}

	headerMap, additional, hasCustomHeaders := parseHeaders(lines[0])
	if headerMap == nil {
		return nil, fmt.Errorf("csv header misses one of time, open, close, low, high, volume")
	}
	if hasCustomHeaders {
		lines = lines[1:]
	}

	candles := make([]core.Candle, 0, len(lines))
	for i, line := range lines {
		candle, err := parseLine(line, headerMap, additional, pair)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		candles = append(candles, candle)
	}

	return candles, nil
}

func parseLine(line []string, headerMap map[string]int, additional []string, pair string) (core.Candle, error) {
	if len(line) < len(defaultHeaderMap) {
		return core.Candle{}, fmt.Errorf("want at least %d columns, got %d", len(defaultHeaderMap), len(line))
	}

	timestamp, err := strconv.ParseInt(line[headerMap["time"]], 10, 64)
	if err != nil {
		return core.Candle{}, err
	}

	candle := core.Candle{
		Time:     time.Unix(timestamp, 0).UTC(),
		Pair:     pair,
		Complete: true,
	}

	fields := []struct {
		name  string
		value *float64
	}{
		{"open", &candle.Open},
		{"close", &candle.Close},
		{"low", &candle.Low},
		{"high", &candle.High},
		{"volume", &candle.Volume},
	}
	for _, field := range fields {
		if *field.value, err = strconv.ParseFloat(line[headerMap[field.name]], 64); err != nil {
			return core.Candle{}, fmt.Errorf("invalid %s: %w", field.name, err)
		}
	}

	if len(additional) > 0 {
		candle.Metadata = make(map[string]float64, len(additional))
		for _, header := range additional {
			value, err := strconv.ParseFloat(line[headerMap[header]], 64)
			if err != nil {
				return core.Candle{}, fmt.Errorf("invalid %s: %w", header, err)
			}
			candle.Metadata[header] = value
		}
	}

	return candle, nil
}

func key(pair, timeframe string) string {
	return fmt.Sprintf("%s--%s", pair, timeframe)
}

// Candles returns every candle of a pair at a timeframe
func (c *CSVFeed) Candles(pair, timeframe string) []core.Candle {
	return c.CandlePairTimeFrame[key(pair, timeframe)]
}

// Limit keeps only the candles within duration of the last one
func (c *CSVFeed) Limit(duration time.Duration) *CSVFeed {
	for k, candles := range c.CandlePairTimeFrame {
		if len(candles) == 0 {
			continue
		}

		start := candles[len(candles)-1].Time.Add(-duration)
		c.CandlePairTimeFrame[k] = lo.Filter(candles, func(candle core.Candle, _ int) bool {
			return candle.Time.After(start)
		})
	}
	return c
}

// CandlesByPeriod returns the candles within [start, end]
func (c *CSVFeed) CandlesByPeriod(pair, timeframe string, start, end time.Time) []core.Candle {
	return lo.Filter(c.Candles(pair, timeframe), func(candle core.Candle, _ int) bool {
		return !candle.Time.Before(start) && !candle.Time.After(end)
	})
}

// LastCandles returns the last limit candles
func (c *CSVFeed) LastCandles(pair, timeframe string, limit int) ([]core.Candle, error) {
	candles := c.Candles(pair, timeframe)
	if len(candles) < limit {
		return nil, fmt.Errorf("%w: %s has %d candles, want %d", ErrInsufficientData, pair, len(candles), limit)
	}
	return candles[len(candles)-limit:], nil
}

// isFirstCandlePeriod reports whether t opens a period of targetTimeframe
func isFirstCandlePeriod(t time.Time, fromTimeframe, targetTimeframe string) (bool, error) {
	fromDuration, err := str2duration.ParseDuration(fromTimeframe)
	if err != nil {
		return false, err
	}

	prev := t.Add(-fromDuration).UTC()
	return isLastCandlePeriod(prev, fromTimeframe, targetTimeframe)
}

// isLastCandlePeriod reports whether the candle at t closes a period
func isLastCandlePeriod(t time.Time, fromTimeframe, targetTimeframe string) (bool, error) {
	if fromTimeframe == targetTimeframe {
		return true, nil
	}

	fromDuration, err := str2duration.ParseDuration(fromTimeframe)
	if err != nil {
		return false, err
	}

	next := t.Add(fromDuration).UTC()
	return isTimeOnPeriodBoundary(next, targetTimeframe)
}

const week = 7 * 24 * time.Hour

// isTimeOnPeriodBoundary reports whether t starts a period. Weeks start on
// Sunday, shorter periods align to UTC midnight.
func isTimeOnPeriodBoundary(t time.Time, targetTimeframe string) (bool, error) {
	period, err := str2duration.ParseDuration(targetTimeframe)
	if err != nil || period <= 0 || period > week {
		return false, fmt.Errorf("invalid timeframe: %s", targetTimeframe)
	}

	t = t.UTC()
	if period == week {
		return t.Weekday() == time.Sunday && t.Truncate(24*time.Hour).Equal(t), nil
	}
	return t.Truncate(period).Equal(t), nil
}

// Resample groups candles of fromTimeframe into candles of targetTimeframe.
// Candles before the first period boundary and a trailing partial period
// are dropped.
func Resample(candles []core.Candle, fromTimeframe, targetTimeframe string) ([]core.Candle, error) {
	if len(candles) == 0 {
		return nil, nil
	}

	start := 0
	for i := range candles {
		first, err := isFirstCandlePeriod(candles[i].Time, fromTimeframe, targetTimeframe)
		if err != nil {
			return nil, err
		}
		if first {
			start = i
			break
		}
	}

	target := make([]core.Candle, 0, len(candles)-start)

	var current core.Candle
	inPeriod := false
	for _, candle := range candles[start:] {
		last, err := isLastCandlePeriod(candle.Time, fromTimeframe, targetTimeframe)
		if err != nil {
			return nil, err
		}

		if !inPeriod {
			current = candle
			inPeriod = true
		} else {
			current.High = math.Max(current.High, candle.High)
			current.Low = math.Min(current.Low, candle.Low)
			current.Close = candle.Close
			current.Volume += candle.Volume
		}

		if last {
			current.Complete = true
			target = append(target, current)
			inPeriod = false
		}
	}

	return target, nil
}

// HeikinAshi converts candles to Heikin-Ashi candles
func HeikinAshi(candles []core.Candle) []core.Candle {
	out := make([]core.Candle, len(candles))
	for i, c := range candles {
		ha := c
		ha.Close = (c.Open + c.High + c.Low + c.Close) / 4
		if i == 0 {
			ha.Open = (c.Open + c.Close) / 2
		} else {
			prev := out[i-1]
			ha.Open = (prev.Open + prev.Close) / 2
		}
		ha.High = math.Max(c.High, math.Max(ha.Open, ha.Close))
		ha.Low = math.Min(c.Low, math.Min(ha.Open, ha.Close))
		out[i] = ha
	}
	return out
}
