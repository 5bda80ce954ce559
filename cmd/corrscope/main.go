// Package main is the entry point for corrscope, a one-shot analysis that
// computes rolling and expanding Pearson correlations between two daily
// price series and renders them as chart artifacts.
//
// Configuration comes from environment variables (optionally via a .env
// file); there is no flag surface. The run is synchronous: load both CSVs,
// align by date, convert to percent returns, compute the correlation
// artifacts, write PNGs and a JSON summary, exit.
package main

import (
	"github.com/aristath/corrscope/internal/config"
	"github.com/aristath/corrscope/internal/modules/correlation"
	"github.com/aristath/corrscope/internal/modules/marketdata"
	"github.com/aristath/corrscope/internal/modules/report"
	"github.com/aristath/corrscope/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("series_a", cfg.SeriesACSV).
		Str("series_b", cfg.SeriesBCSV).
		Str("output_dir", cfg.OutputDir).
		Msg("Starting corrscope")

	loader := marketdata.NewLoader(log)
	engine := correlation.NewEngine(cfg.MinPeriods, log)
	svc := report.NewService(loader, engine, cfg.OutputDir, log)

	summary, err := svc.Run(report.Params{
		PathA:          cfg.SeriesACSV,
		PathB:          cfg.SeriesBCSV,
		LabelA:         cfg.LabelA,
		LabelB:         cfg.LabelB,
		RollingWindows: cfg.RollingWindows,
		SampleCount:    cfg.SampleCount,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	event := log.Info().
		Str("first_date", summary.FirstDate).
		Str("last_date", summary.LastDate).
		Int("observations", summary.Observations).
		Strs("artifacts", summary.Artifacts)
	if summary.GlobalCorrelation != nil {
		event = event.Float64("global_correlation", *summary.GlobalCorrelation)
	}
	event.Msg("corrscope finished")
}
