package correlation

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDates(n int) []string {
	dates := make([]string, n)
	for i := range dates {
		dates[i] = fmt.Sprintf("2024-01-%02d", i+1)
	}
	return dates
}

func TestSampleWindowSizes(t *testing.T) {
	tests := []struct {
		name                    string
		min, max, count         int
		expectFirst, expectLast int
	}{
		{"full coverage", 5, 100, 20, 5, 100},
		{"count exceeds range", 2, 6, 50, 2, 6},
		{"single sample", 5, 50, 1, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sizes := SampleWindowSizes(tt.min, tt.max, tt.count)
			require.NotEmpty(t, sizes)
			assert.Equal(t, tt.expectFirst, sizes[0])
			assert.Equal(t, tt.expectLast, sizes[len(sizes)-1])

			// Ascending, deduplicated, within bounds.
			for i := 1; i < len(sizes); i++ {
				assert.Greater(t, sizes[i], sizes[i-1])
			}
			for _, w := range sizes {
				assert.GreaterOrEqual(t, w, tt.min)
				assert.LessOrEqual(t, w, tt.max)
			}
		})
	}
}

func TestSampleWindowSizes_Degenerate(t *testing.T) {
	assert.Nil(t, SampleWindowSizes(10, 5, 10))
	assert.Nil(t, SampleWindowSizes(5, 10, 0))
}

func TestFullWindowMatrix_GlobalEntry(t *testing.T) {
	e := newTestEngine(3)
	n := 24
	dates := testDates(n)

	rng := rand.New(rand.NewSource(3))
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = rng.NormFloat64()
		y[i] = 0.7*x[i] + 0.3*rng.NormFloat64()
	}

	// Include the full window size so the (first, last) entry exists.
	sizes := SampleWindowSizes(e.MinPeriods(), n, 8)
	m, err := e.FullWindowMatrix(x, y, dates, sizes)
	require.NoError(t, err)

	global, err := e.Pearson(x, y)
	require.NoError(t, err)
	require.True(t, global.Valid)

	v, ok := m.At(dates[0], dates[n-1])
	require.True(t, ok)
	require.True(t, v.Valid)
	assert.InDelta(t, global.Float64, v.Float64, 1e-12)
}

func TestFullWindowMatrix_EntriesMatchRolling(t *testing.T) {
	e := newTestEngine(3)
	n := 16
	dates := testDates(n)

	x := []float64{1, 3, 2, 5, 4, 7, 6, 9, 8, 11, 10, 13, 12, 15, 14, 17}
	y := []float64{2, 1, 4, 3, 6, 5, 8, 7, 10, 9, 12, 11, 14, 13, 16, 15}

	sizes := []int{4, 8}
	m, err := e.FullWindowMatrix(x, y, dates, sizes)
	require.NoError(t, err)
	require.Equal(t, sizes, m.WindowSizes)

	for _, w := range sizes {
		rolled, err := e.Rolling(x, y, w)
		require.NoError(t, err)
		for j := w - 1; j < n; j++ {
			v, ok := m.At(dates[j-w+1], dates[j])
			require.True(t, ok, "window %d ending at %s", w, dates[j])
			assert.Equal(t, rolled[j], v)
		}
	}
}

func TestFullWindowMatrix_SkipsUnusableSizes(t *testing.T) {
	e := newTestEngine(5)
	n := 10
	dates := testDates(n)
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		y[i] = float64(i * i)
	}

	// 3 is below the floor, 50 exceeds the series, 5 appears twice.
	m, err := e.FullWindowMatrix(x, y, dates, []int{3, 50, 5, 5, 10})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 10}, m.WindowSizes)
}

func TestMatrix_At_UnknownLookups(t *testing.T) {
	e := newTestEngine(3)
	n := 12
	dates := testDates(n)
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i) + 0.1*float64(i%3)
		y[i] = float64(i)
	}

	m, err := e.FullWindowMatrix(x, y, dates, []int{4})
	require.NoError(t, err)

	_, ok := m.At("1999-01-01", dates[5])
	assert.False(t, ok, "unknown start date")

	_, ok = m.At(dates[5], dates[2])
	assert.False(t, ok, "inverted range")

	_, ok = m.At(dates[0], dates[5])
	assert.False(t, ok, "window size 6 not sampled")
}

func TestStartEndGrid(t *testing.T) {
	e := newTestEngine(2)
	n := 20
	dates := testDates(n)

	rng := rand.New(rand.NewSource(9))
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = rng.NormFloat64()
		y[i] = rng.NormFloat64()
	}

	sizes := SampleWindowSizes(2, n, 6)
	m, err := e.FullWindowMatrix(x, y, dates, sizes)
	require.NoError(t, err)

	g := m.StartEndGrid(0)
	require.Len(t, g.StartIndex, len(m.WindowSizes))
	require.Len(t, g.Z, len(g.StartIndex))
	for _, row := range g.Z {
		require.Len(t, row, n)
	}

	// First band starts at the first date, and the full-length window lands
	// in it at the last end date, equal to the global correlation.
	assert.Equal(t, 0, g.StartIndex[0])
	global, err := e.Pearson(x, y)
	require.NoError(t, err)
	assert.InDelta(t, global.Float64, g.Z[0][n-1], 1e-12)

	// Cells before any window fits stay NaN.
	assert.True(t, math.IsNaN(g.Z[0][0]))

	defined := 0
	for _, row := range g.Z {
		for _, z := range row {
			if !math.IsNaN(z) {
				defined++
			}
		}
	}
	assert.Greater(t, defined, 0)
	assert.LessOrEqual(t, defined, m.NumEntries())
}
