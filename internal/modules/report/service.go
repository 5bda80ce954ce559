// Package report orchestrates the correlation analysis and renders its
// artifacts: chart PNGs and a JSON summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/corrscope/internal/modules/correlation"
	"github.com/aristath/corrscope/internal/modules/series"
	"github.com/aristath/corrscope/pkg/formulas"
)

// PriceLoader loads a date-indexed price series from a file path.
// Implemented by marketdata.Loader.
type PriceLoader interface {
	Load(path string) (*series.Series, error)
}

// Params describes one analysis run.
type Params struct {
	PathA, PathB   string
	LabelA, LabelB string
	RollingWindows []int
	SampleCount    int
}

// Summary is the JSON artifact describing the run's numeric results.
type Summary struct {
	LabelA            string   `json:"label_a"`
	LabelB            string   `json:"label_b"`
	Observations      int      `json:"observations"`
	FirstDate         string   `json:"first_date"`
	LastDate          string   `json:"last_date"`
	GlobalCorrelation *float64 `json:"global_correlation"` // null when undefined
	AnnualizedVolA    float64  `json:"annualized_vol_a"`
	AnnualizedVolB    float64  `json:"annualized_vol_b"`
	RollingWindows    []int    `json:"rolling_windows"`
	MatrixWindowSizes int      `json:"matrix_window_sizes"`
	MatrixEntries     int      `json:"matrix_entries"`
	Artifacts         []string `json:"artifacts"`
}

// Service runs the load → align → returns → correlate → render pipeline.
type Service struct {
	loader    PriceLoader
	engine    *correlation.Engine
	outputDir string
	log       zerolog.Logger
}

// NewService creates a report service writing artifacts to outputDir.
func NewService(loader PriceLoader, engine *correlation.Engine, outputDir string, log zerolog.Logger) *Service {
	return &Service{
		loader:    loader,
		engine:    engine,
		outputDir: outputDir,
		log:       log.With().Str("service", "report").Logger(),
	}
}

// Run executes the full analysis and writes all artifacts.
func (s *Service) Run(p Params) (*Summary, error) {
	pricesA, err := s.loader.Load(p.PathA)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s prices: %w", p.LabelA, err)
	}
	pricesB, err := s.loader.Load(p.PathB)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s prices: %w", p.LabelB, err)
	}

	alignedA, alignedB, err := series.Align(pricesA, pricesB)
	if err != nil {
		return nil, fmt.Errorf("failed to align price series: %w", err)
	}

	s.log.Info().
		Str("label_a", p.LabelA).
		Str("label_b", p.LabelB).
		Int("raw_a", pricesA.Len()).
		Int("raw_b", pricesB.Len()).
		Int("aligned", alignedA.Len()).
		Msg("Aligned price series")

	retA := alignedA.PercentChange()
	retB := alignedB.PercentChange()
	if retA.Len() < s.engine.MinPeriods() {
		return nil, fmt.Errorf("%w: %d return observations, floor is %d",
			correlation.ErrInsufficientObservations, retA.Len(), s.engine.MinPeriods())
	}

	global, err := s.engine.Pearson(retA.Values, retB.Values)
	if err != nil {
		return nil, fmt.Errorf("failed to compute global correlation: %w", err)
	}

	expanding, err := s.engine.Expanding(retA.Values, retB.Values)
	if err != nil {
		return nil, fmt.Errorf("failed to compute expanding correlation: %w", err)
	}
	trailing, err := s.engine.TrailingExpanding(retA.Values, retB.Values)
	if err != nil {
		return nil, fmt.Errorf("failed to compute trailing correlation: %w", err)
	}

	rolling := make(map[int][]correlation.Value, len(p.RollingWindows))
	for _, w := range p.RollingWindows {
		out, err := s.engine.Rolling(retA.Values, retB.Values, w)
		if err != nil {
			s.log.Warn().Err(err).Int("window", w).Msg("Skipping rolling window")
			continue
		}
		rolling[w] = out
	}

	sizes := correlation.SampleWindowSizes(s.engine.MinPeriods(), retA.Len(), p.SampleCount)
	matrix, err := s.engine.FullWindowMatrix(retA.Values, retB.Values, retA.Dates, sizes)
	if err != nil {
		return nil, fmt.Errorf("failed to build correlation matrix: %w", err)
	}
	grid := matrix.StartEndGrid(0)

	artifacts, err := s.renderAll(p, retA, retB, expanding, trailing, rolling, grid)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		LabelA:            p.LabelA,
		LabelB:            p.LabelB,
		Observations:      retA.Len(),
		FirstDate:         retA.Dates[0],
		LastDate:          retA.Dates[retA.Len()-1],
		AnnualizedVolA:    formulas.AnnualizedVolatility(scaleReturns(retA.Values)),
		AnnualizedVolB:    formulas.AnnualizedVolatility(scaleReturns(retB.Values)),
		RollingWindows:    sortedKeys(rolling),
		MatrixWindowSizes: len(matrix.WindowSizes),
		MatrixEntries:     matrix.NumEntries(),
		Artifacts:         artifacts,
	}
	if global.Valid {
		summary.GlobalCorrelation = &global.Float64
	}

	summaryPath := filepath.Join(s.outputDir, "summary.json")
	if err := writeSummary(summaryPath, summary); err != nil {
		return nil, err
	}
	summary.Artifacts = append(summary.Artifacts, summaryPath)

	s.log.Info().
		Int("observations", summary.Observations).
		Str("first_date", summary.FirstDate).
		Str("last_date", summary.LastDate).
		Int("matrix_entries", summary.MatrixEntries).
		Msg("Analysis complete")

	return summary, nil
}

// renderAll writes every chart artifact and returns their paths.
func (s *Service) renderAll(
	p Params,
	retA, retB *series.Series,
	expanding, trailing []correlation.Value,
	rolling map[int][]correlation.Value,
	grid *correlation.StartEndGrid,
) ([]string, error) {
	type chart struct {
		name   string
		render func(path string) error
	}

	charts := []chart{
		{"returns.png", func(path string) error {
			return renderReturnLines(path, retA.Dates, retA.Values, retB.Values, p.LabelA, p.LabelB)
		}},
		{"scatter.png", func(path string) error {
			return renderScatter(path, retA.Values, retB.Values, p.LabelA, p.LabelB)
		}},
		{"expanding.png", func(path string) error {
			return renderExpanding(path, retA.Dates, expanding, trailing)
		}},
		{"rolling.png", func(path string) error {
			return renderRolling(path, retA.Dates, rolling)
		}},
		{"heatmap.png", func(path string) error {
			return renderHeatmap(path, grid)
		}},
	}

	artifacts := make([]string, 0, len(charts))
	for _, c := range charts {
		path := filepath.Join(s.outputDir, c.name)
		if err := c.render(path); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", c.name, err)
		}
		s.log.Debug().Str("artifact", path).Msg("Rendered chart")
		artifacts = append(artifacts, path)
	}
	return artifacts, nil
}

func writeSummary(path string, summary *Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// scaleReturns converts percent returns to decimals for volatility math.
func scaleReturns(percent []float64) []float64 {
	out := make([]float64, len(percent))
	for i, v := range percent {
		out[i] = v / 100
	}
	return out
}

func sortedKeys(m map[int][]correlation.Value) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
