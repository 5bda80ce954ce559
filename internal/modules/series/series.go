// Package series provides date-indexed price/return series and alignment.
package series

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// DateFormat is the canonical date layout for all series dates.
const DateFormat = "2006-01-02"

// ErrEmptyIntersection is returned when two series share no dates.
var ErrEmptyIntersection = errors.New("series share no common dates")

// Series is an ordered sequence of (date, value) observations.
// Dates are "YYYY-MM-DD" strings, strictly ascending, without duplicates.
type Series struct {
	Dates  []string
	Values []float64
}

// New builds a Series from parallel date/value slices. Observations are
// sorted by date; duplicate dates keep the last value seen.
func New(dates []string, values []float64) (*Series, error) {
	if len(dates) != len(values) {
		return nil, fmt.Errorf("dates/values length mismatch: %d vs %d", len(dates), len(values))
	}

	byDate := make(map[string]float64, len(dates))
	for i, d := range dates {
		byDate[d] = values[i]
	}

	sorted := make([]string, 0, len(byDate))
	for d := range byDate {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	out := &Series{
		Dates:  sorted,
		Values: make([]float64, len(sorted)),
	}
	for i, d := range sorted {
		out.Values[i] = byDate[d]
	}
	return out, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Dates)
}

// Align restricts two series to their shared dates (inner join), preserving
// ascending date order. The merge walks both sorted date sequences directly.
// Returns ErrEmptyIntersection when no dates are shared.
func Align(a, b *Series) (*Series, *Series, error) {
	alignedA := &Series{}
	alignedB := &Series{}

	i, j := 0, 0
	for i < a.Len() && j < b.Len() {
		switch {
		case a.Dates[i] < b.Dates[j]:
			i++
		case a.Dates[i] > b.Dates[j]:
			j++
		default:
			alignedA.Dates = append(alignedA.Dates, a.Dates[i])
			alignedA.Values = append(alignedA.Values, a.Values[i])
			alignedB.Dates = append(alignedB.Dates, b.Dates[j])
			alignedB.Values = append(alignedB.Values, b.Values[j])
			i++
			j++
		}
	}

	if alignedA.Len() == 0 {
		return nil, nil, ErrEmptyIntersection
	}
	return alignedA, alignedB, nil
}

// PercentChange converts a price series to daily percent returns:
// return[i] = (price[i+1] - price[i]) / price[i] * 100.
// The output is one observation shorter, indexed by the later date of each
// pair. A zero base price yields NaN rather than an error, matching the
// tolerance expected of financial data.
func (s *Series) PercentChange() *Series {
	if s.Len() < 2 {
		return &Series{}
	}

	out := &Series{
		Dates:  make([]string, s.Len()-1),
		Values: make([]float64, s.Len()-1),
	}
	for i := 1; i < s.Len(); i++ {
		out.Dates[i-1] = s.Dates[i]
		if s.Values[i-1] == 0 {
			out.Values[i-1] = math.NaN()
			continue
		}
		out.Values[i-1] = (s.Values[i] - s.Values[i-1]) / s.Values[i-1] * 100
	}
	return out
}
