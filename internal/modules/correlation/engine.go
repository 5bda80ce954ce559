// Package correlation implements the windowed Pearson correlation engine:
// global, expanding, trailing-expanding and rolling correlations over two
// aligned return series, plus the full (start date, end date) window matrix.
//
// All methods are pure functions over their inputs. The engine holds no
// state across calls beyond its configuration.
package correlation

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// DefaultMinPeriods is the default minimum observation floor for windowed
// correlations, mirroring the usual smoothing floor for daily return series.
const DefaultMinPeriods = 5

var (
	// ErrLengthMismatch is returned when the two input series differ in length.
	ErrLengthMismatch = errors.New("input series length mismatch")
	// ErrInsufficientObservations is returned when a requested window is
	// shorter than the engine's minimum observation floor.
	ErrInsufficientObservations = errors.New("insufficient observations")
)

// Engine computes windowed Pearson correlations. Inputs must already be
// aligned (identical date sequences); alignment is the caller's concern.
type Engine struct {
	minPeriods int
	log        zerolog.Logger
}

// NewEngine creates an engine with the given minimum observation floor.
// Values below 2 fall back to DefaultMinPeriods.
func NewEngine(minPeriods int, log zerolog.Logger) *Engine {
	if minPeriods < 2 {
		minPeriods = DefaultMinPeriods
	}
	return &Engine{
		minPeriods: minPeriods,
		log:        log.With().Str("component", "correlation_engine").Logger(),
	}
}

// MinPeriods returns the configured minimum observation floor.
func (e *Engine) MinPeriods() int {
	return e.minPeriods
}

// Pearson computes the global Pearson correlation of x and y using
// population moments: cov(x,y) / sqrt(var(x) * var(y)). The result is
// undefined when either series has zero variance or the inputs contain
// non-finite values. Requires at least two observations.
func (e *Engine) Pearson(x, y []float64) (Value, error) {
	if len(x) != len(y) {
		return Undefined, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < 2 {
		return Undefined, fmt.Errorf("%w: need at least 2, got %d", ErrInsufficientObservations, len(x))
	}
	m := newMoments(x, y)
	return m.corr(0, len(x)-1), nil
}

// Expanding computes the expanding-window correlation anchored at the start:
// out[i] = pearson(x[0..i], y[0..i]). Indices before the minimum observation
// floor are undefined. The output has the same length as the input.
func (e *Engine) Expanding(x, y []float64) ([]Value, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	m := newMoments(x, y)
	out := make([]Value, len(x))
	for i := e.minPeriods - 1; i < len(x); i++ {
		out[i] = m.corr(0, i)
	}
	return out, nil
}

// TrailingExpanding computes the expanding-window correlation anchored at
// the end: out[i] = pearson(x[i..n-1], y[i..n-1]). It is a suffix scan, not
// a reverse-then-expand-then-reverse pass. The first element equals the
// global correlation, matching the last element of Expanding.
func (e *Engine) TrailingExpanding(x, y []float64) ([]Value, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	m := newMoments(x, y)
	n := len(x)
	out := make([]Value, n)
	for i := 0; i+e.minPeriods <= n; i++ {
		out[i] = m.corr(i, n-1)
	}
	return out, nil
}

// Rolling computes the fixed-window correlation ending at each index:
// out[i] = pearson(x[i-w+1..i], y[i-w+1..i]). Indices where the window does
// not fit are undefined; a window larger than the series yields an
// all-undefined output of the input length. Window sizes below the minimum
// observation floor are rejected.
func (e *Engine) Rolling(x, y []float64, windowSize int) ([]Value, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	if windowSize < e.minPeriods {
		return nil, fmt.Errorf("%w: window %d below floor %d", ErrInsufficientObservations, windowSize, e.minPeriods)
	}
	m := newMoments(x, y)
	out := make([]Value, len(x))
	for i := windowSize - 1; i < len(x); i++ {
		out[i] = m.corr(i-windowSize+1, i)
	}
	return out, nil
}

// moments holds prefix sums of the raw moments of an aligned pair, so the
// correlation of any contiguous window is O(1). Non-finite observation
// pairs are excluded from the sums and tracked separately: any window that
// touches one is undefined.
type moments struct {
	sx, sy, sxx, syy, sxy []float64
	bad                   []int
}

func newMoments(x, y []float64) *moments {
	n := len(x)
	m := &moments{
		sx:  make([]float64, n+1),
		sy:  make([]float64, n+1),
		sxx: make([]float64, n+1),
		syy: make([]float64, n+1),
		sxy: make([]float64, n+1),
		bad: make([]int, n+1),
	}
	for i := 0; i < n; i++ {
		m.sx[i+1] = m.sx[i]
		m.sy[i+1] = m.sy[i]
		m.sxx[i+1] = m.sxx[i]
		m.syy[i+1] = m.syy[i]
		m.sxy[i+1] = m.sxy[i]
		m.bad[i+1] = m.bad[i]

		xi, yi := x[i], y[i]
		if math.IsNaN(xi) || math.IsInf(xi, 0) || math.IsNaN(yi) || math.IsInf(yi, 0) {
			m.bad[i+1]++
			continue
		}
		m.sx[i+1] += xi
		m.sy[i+1] += yi
		m.sxx[i+1] += xi * xi
		m.syy[i+1] += yi * yi
		m.sxy[i+1] += xi * yi
	}
	return m
}

// corr returns the population-moment Pearson correlation of the inclusive
// window [i, j].
func (m *moments) corr(i, j int) Value {
	if m.bad[j+1]-m.bad[i] > 0 {
		return Undefined
	}
	n := float64(j - i + 1)
	meanX := (m.sx[j+1] - m.sx[i]) / n
	meanY := (m.sy[j+1] - m.sy[i]) / n
	varX := (m.sxx[j+1]-m.sxx[i])/n - meanX*meanX
	varY := (m.syy[j+1]-m.syy[i])/n - meanY*meanY
	cov := (m.sxy[j+1]-m.sxy[i])/n - meanX*meanY

	// Zero (or numerically negative) variance: constant window, undefined.
	if !(varX > 0) || !(varY > 0) {
		return Undefined
	}

	r := cov / math.Sqrt(varX*varY)
	if math.IsNaN(r) {
		return Undefined
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return Defined(r)
}
