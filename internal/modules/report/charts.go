package report

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/aristath/corrscope/internal/modules/correlation"
	"github.com/aristath/corrscope/internal/modules/series"
)

// renderReturnLines draws both daily percent-return series over time.
func renderReturnLines(path string, dates []string, a, b []float64, labelA, labelB string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Daily Returns: %s vs %s", labelA, labelB)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Return (%)"
	p.X.Tick.Marker = plot.TimeTicks{Format: series.DateFormat}

	times, err := parseDates(dates)
	if err != nil {
		return err
	}

	for i, set := range []struct {
		label  string
		values []float64
	}{{labelA, a}, {labelB, b}} {
		pts := make(plotter.XYs, 0, len(set.values))
		for j, v := range set.values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(times[j].Unix()), Y: v})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build %s line: %w", set.label, err)
		}
		line.LineStyle.Width = vg.Points(0.75)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(set.label, line)
	}

	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}

// renderScatter draws the joint distribution of the two return series.
func renderScatter(path string, a, b []float64, labelA, labelB string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Return Scatter: %s vs %s", labelA, labelB)
	p.X.Label.Text = fmt.Sprintf("%s return (%%)", labelA)
	p.Y.Label.Text = fmt.Sprintf("%s return (%%)", labelB)

	pts := make(plotter.XYs, 0, len(a))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) || math.IsInf(a[i], 0) || math.IsInf(b[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: a[i], Y: b[i]})
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to build scatter: %w", err)
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(1.25)
	scatter.GlyphStyle.Color = plotutil.Color(0)
	p.Add(scatter)

	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

// renderExpanding draws the forward and reverse expanding correlations.
func renderExpanding(path string, dates []string, forward, reverse []correlation.Value) error {
	p := plot.New()
	p.Title.Text = "Expanding-Window Correlation"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Correlation"
	p.X.Tick.Marker = plot.TimeTicks{Format: series.DateFormat}
	p.Y.Min, p.Y.Max = -1, 1

	times, err := parseDates(dates)
	if err != nil {
		return err
	}

	for i, set := range []struct {
		label  string
		values []correlation.Value
	}{{"from start", forward}, {"to end", reverse}} {
		pts := correlationXYs(times, set.values)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build %s line: %w", set.label, err)
		}
		line.LineStyle.Width = vg.Points(1)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(set.label, line)
	}

	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}

// renderRolling draws one line per fixed rolling window size.
func renderRolling(path string, dates []string, rolling map[int][]correlation.Value) error {
	p := plot.New()
	p.Title.Text = "Rolling-Window Correlation"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Correlation"
	p.X.Tick.Marker = plot.TimeTicks{Format: series.DateFormat}
	p.Y.Min, p.Y.Max = -1, 1

	times, err := parseDates(dates)
	if err != nil {
		return err
	}

	for i, w := range sortedKeys(rolling) {
		pts := correlationXYs(times, rolling[w])
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build %d-day line: %w", w, err)
		}
		line.LineStyle.Width = vg.Points(1)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%dd", w), line)
	}

	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}

// renderHeatmap draws the start-date-by-end-date correlation grid. Rows are
// sampled start-date bands; undefined cells are left blank.
func renderHeatmap(path string, grid *correlation.StartEndGrid) error {
	p := plot.New()
	p.Title.Text = "Windowed Correlation by Start/End Date"
	p.X.Label.Text = "Window end"
	p.Y.Label.Text = "Window start"
	p.X.Tick.Marker = dateTicks{dates: grid.Dates}
	p.Y.Tick.Marker = dateTicks{dates: grid.Dates}

	h := plotter.NewHeatMap(corrGrid{grid}, moreland.SmoothBlueRed().Palette(255))
	h.Min, h.Max = -1, 1
	p.Add(h)

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

// corrGrid adapts StartEndGrid to plotter.GridXYZ. X and Y are observation
// indexes into grid.Dates; labels come from dateTicks.
type corrGrid struct {
	g *correlation.StartEndGrid
}

func (cg corrGrid) Dims() (c, r int) {
	return len(cg.g.Dates), len(cg.g.StartIndex)
}

func (cg corrGrid) Z(c, r int) float64 {
	return cg.g.Z[r][c]
}

func (cg corrGrid) X(c int) float64 {
	return float64(c)
}

func (cg corrGrid) Y(r int) float64 {
	return float64(cg.g.StartIndex[r])
}

// dateTicks labels integer observation indexes with their dates.
type dateTicks struct {
	dates []string
}

func (dt dateTicks) Ticks(min, max float64) []plot.Tick {
	if len(dt.dates) == 0 {
		return nil
	}

	lo := int(math.Ceil(min))
	hi := int(math.Floor(max))
	if lo < 0 {
		lo = 0
	}
	if hi > len(dt.dates)-1 {
		hi = len(dt.dates) - 1
	}
	if hi < lo {
		return nil
	}

	const labels = 6
	step := (hi - lo) / (labels - 1)
	if step < 1 {
		step = 1
	}

	var ticks []plot.Tick
	for i := lo; i <= hi; i += step {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: dt.dates[i]})
	}
	return ticks
}

// correlationXYs converts a Value series to plottable points, skipping
// undefined entries.
func correlationXYs(times []time.Time, values []correlation.Value) plotter.XYs {
	pts := make(plotter.XYs, 0, len(values))
	for i, v := range values {
		if !v.Valid {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(times[i].Unix()), Y: v.Float64})
	}
	return pts
}

func parseDates(dates []string) ([]time.Time, error) {
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		t, err := time.Parse(series.DateFormat, d)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date %q: %w", d, err)
		}
		out[i] = t
	}
	return out, nil
}
