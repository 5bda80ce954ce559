package correlation

import (
	"fmt"
	"math"
	"sort"
)

// Matrix holds correlations for all (start date, end date) window pairs of
// the sampled window sizes. Values[r][j] is the correlation of the window of
// WindowSizes[r] observations ending at Dates[j]; the implied start date is
// Dates[j-WindowSizes[r]+1].
//
// Because window sizes are sampled rather than enumerated, the start-date
// axis is resolved into len(WindowSizes) bands. This is a deliberate
// resolution/performance trade-off, not an approximation of individual
// entries: every stored correlation is exact for its window.
type Matrix struct {
	Dates       []string
	WindowSizes []int
	Values      [][]Value

	dateIndex map[string]int
	rowOf     map[int]int
}

// FullWindowMatrix computes one rolling correlation pass per sampled window
// size and assembles the results into a start/end-date matrix. dates must be
// the aligned return dates of x and y. Window sizes below the minimum
// observation floor or larger than the series contribute no entries and are
// dropped from the result.
func (e *Engine) FullWindowMatrix(x, y []float64, dates []string, windowSizes []int) (*Matrix, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	if len(dates) != len(x) {
		return nil, fmt.Errorf("%w: %d dates for %d observations", ErrLengthMismatch, len(dates), len(x))
	}

	sizes := make([]int, 0, len(windowSizes))
	seen := make(map[int]bool, len(windowSizes))
	for _, w := range windowSizes {
		if w < e.minPeriods || w > len(x) || seen[w] {
			continue
		}
		seen[w] = true
		sizes = append(sizes, w)
	}
	sort.Ints(sizes)

	m := &Matrix{
		Dates:       dates,
		WindowSizes: sizes,
		Values:      make([][]Value, len(sizes)),
		dateIndex:   make(map[string]int, len(dates)),
		rowOf:       make(map[int]int, len(sizes)),
	}
	for j, d := range dates {
		m.dateIndex[d] = j
	}

	mom := newMoments(x, y)
	for r, w := range sizes {
		m.rowOf[w] = r
		row := make([]Value, len(x))
		for j := w - 1; j < len(x); j++ {
			row[j] = mom.corr(j-w+1, j)
		}
		m.Values[r] = row
	}

	e.log.Debug().
		Int("observations", len(x)).
		Int("window_sizes", len(sizes)).
		Msg("Built windowed correlation matrix")

	return m, nil
}

// At returns the correlation for the window starting at startDate and ending
// at endDate. The second return is false when either date is unknown, the
// range is inverted, or the implied window size was not sampled.
func (m *Matrix) At(startDate, endDate string) (Value, bool) {
	i, ok := m.dateIndex[startDate]
	if !ok {
		return Undefined, false
	}
	j, ok := m.dateIndex[endDate]
	if !ok || j < i {
		return Undefined, false
	}
	r, ok := m.rowOf[j-i+1]
	if !ok {
		return Undefined, false
	}
	return m.Values[r][j], true
}

// NumEntries counts the defined correlations stored in the matrix.
func (m *Matrix) NumEntries() int {
	count := 0
	for _, row := range m.Values {
		for _, v := range row {
			if v.Valid {
				count++
			}
		}
	}
	return count
}

// StartEndGrid is the matrix reoriented into a start-date-by-end-date grid
// for heatmap rendering. Rows are start-date bands (band r represents the
// start date Dates[StartIndex[r]]); columns are end dates. Cells without a
// sampled window are NaN. The start-axis resolution equals the number of
// bands, i.e. the number of sampled window sizes by default.
type StartEndGrid struct {
	Dates      []string
	StartIndex []int
	Z          [][]float64
}

// StartEndGrid bins every (window size, end date) entry into the nearest
// start-date band. bands <= 0 uses one band per sampled window size.
func (m *Matrix) StartEndGrid(bands int) *StartEndGrid {
	n := len(m.Dates)
	if bands <= 0 {
		bands = len(m.WindowSizes)
	}
	if bands < 1 {
		bands = 1
	}
	if bands > n {
		bands = n
	}

	g := &StartEndGrid{
		Dates:      m.Dates,
		StartIndex: make([]int, bands),
		Z:          make([][]float64, bands),
	}
	for r := 0; r < bands; r++ {
		if bands > 1 {
			g.StartIndex[r] = int(math.Round(float64(r) * float64(n-1) / float64(bands-1)))
		}
		row := make([]float64, n)
		for j := range row {
			row[j] = math.NaN()
		}
		g.Z[r] = row
	}

	for r, w := range m.WindowSizes {
		for j := w - 1; j < n; j++ {
			v := m.Values[r][j]
			if !v.Valid {
				continue
			}
			start := j - w + 1
			band := 0
			if bands > 1 {
				band = int(math.Round(float64(start) * float64(bands-1) / float64(n-1)))
			}
			g.Z[band][j] = v.Float64
		}
	}
	return g
}

// SampleWindowSizes returns up to sampleCount window sizes evenly spaced
// over [minSize, maxSize], deduplicated and ascending. The sampling keeps
// the full-matrix computation bounded while covering the whole range of
// window lengths; sampleCount is the resolution knob.
func SampleWindowSizes(minSize, maxSize, sampleCount int) []int {
	if maxSize < minSize || sampleCount < 1 {
		return nil
	}
	if sampleCount == 1 {
		return []int{maxSize}
	}

	out := make([]int, 0, sampleCount)
	seen := make(map[int]bool, sampleCount)
	step := float64(maxSize-minSize) / float64(sampleCount-1)
	for i := 0; i < sampleCount; i++ {
		w := int(math.Round(float64(minSize) + float64(i)*step))
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
