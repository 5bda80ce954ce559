package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CORR_SERIES_A_CSV", "/data/spy.csv")
	t.Setenv("CORR_SERIES_B_CSV", "/data/xlf.csv")
	t.Setenv("CORR_OUTPUT_DIR", filepath.Join(t.TempDir(), "out"))
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/spy.csv", cfg.SeriesACSV)
	assert.Equal(t, "/data/xlf.csv", cfg.SeriesBCSV)
	assert.Equal(t, "SPY", cfg.LabelA)
	assert.Equal(t, "XLF", cfg.LabelB)
	assert.Equal(t, DefaultMinPeriods, cfg.MinPeriods)
	assert.Equal(t, DefaultSampleCount, cfg.SampleCount)
	assert.Equal(t, DefaultRollingWindows, cfg.RollingWindows)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, filepath.IsAbs(cfg.OutputDir))
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORR_LABEL_A", "QQQ")
	t.Setenv("CORR_MIN_PERIODS", "10")
	t.Setenv("CORR_SAMPLE_COUNT", "50")
	t.Setenv("CORR_ROLLING_WINDOWS", "30, 90,180")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "QQQ", cfg.LabelA)
	assert.Equal(t, 10, cfg.MinPeriods)
	assert.Equal(t, 50, cfg.SampleCount)
	assert.Equal(t, []int{30, 90, 180}, cfg.RollingWindows)
}

func TestLoad_MissingPaths(t *testing.T) {
	t.Setenv("CORR_SERIES_A_CSV", "")
	t.Setenv("CORR_SERIES_B_CSV", "")
	t.Setenv("CORR_OUTPUT_DIR", t.TempDir())

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MalformedWindowListFallsBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORR_ROLLING_WINDOWS", "21,abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultRollingWindows, cfg.RollingWindows)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"min periods too small", func(c *Config) { c.MinPeriods = 1 }, true},
		{"sample count zero", func(c *Config) { c.SampleCount = 0 }, true},
		{"no rolling windows", func(c *Config) { c.RollingWindows = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				SeriesACSV:     "a.csv",
				SeriesBCSV:     "b.csv",
				MinPeriods:     5,
				SampleCount:    100,
				RollingWindows: []int{21},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
