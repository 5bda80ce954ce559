// Package marketdata loads daily close-price series from CSV files.
package marketdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/corrscope/internal/modules/series"
)

// ErrNoUsableRows is returned when a file yields no parsable observations.
var ErrNoUsableRows = errors.New("no usable price rows")

// Header names accepted for the date and close columns, checked
// case-insensitively. "Adj Close" wins over "Close" when both are present.
var (
	dateHeaders  = []string{"date", "timestamp", "day"}
	closeHeaders = []string{"adj close", "adj_close", "close", "price"}
)

// Loader reads date-indexed close prices from delimited text files with a
// header row. Unparsable rows are logged and skipped rather than failing
// the whole file, matching the tolerance daily market data requires.
type Loader struct {
	log zerolog.Logger
}

// NewLoader creates a CSV price loader.
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{
		log: log.With().Str("component", "marketdata_loader").Logger(),
	}
}

// Load parses the CSV file at path into a price Series sorted by date.
func (l *Loader) Load(path string) (*series.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price file: %w", err)
	}
	defer f.Close()

	s, err := l.Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	l.log.Debug().
		Str("path", path).
		Int("observations", s.Len()).
		Msg("Loaded price series")

	return s, nil
}

// Read parses CSV price data from r. Exposed separately from Load so tests
// and other callers can feed in-memory data.
func (l *Loader) Read(r io.Reader) (*series.Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	dateCol, closeCol, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var dates []string
	var values []float64
	skipped := 0

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if dateCol >= len(record) || closeCol >= len(record) {
			skipped++
			continue
		}

		date, ok := parseDate(record[dateCol])
		if !ok {
			skipped++
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[closeCol]), 64)
		if err != nil {
			skipped++
			continue
		}

		dates = append(dates, date)
		values = append(values, value)
	}

	if skipped > 0 {
		l.log.Warn().Int("skipped_rows", skipped).Msg("Skipped unparsable price rows")
	}
	if len(dates) == 0 {
		return nil, ErrNoUsableRows
	}

	return series.New(dates, values)
}

// resolveColumns finds the date and close column indexes from the header.
func resolveColumns(header []string) (dateCol, closeCol int, err error) {
	dateCol, closeCol = -1, -1

	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for _, want := range dateHeaders {
		for i, h := range normalized {
			if h == want {
				dateCol = i
				break
			}
		}
		if dateCol >= 0 {
			break
		}
	}
	for _, want := range closeHeaders {
		for i, h := range normalized {
			if h == want {
				closeCol = i
				break
			}
		}
		if closeCol >= 0 {
			break
		}
	}

	if dateCol < 0 || closeCol < 0 {
		return 0, 0, fmt.Errorf("header %v has no recognizable date/close columns", header)
	}
	return dateCol, closeCol, nil
}

// parseDate normalizes a raw date cell to the canonical YYYY-MM-DD form.
func parseDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{series.DateFormat, "2006-01-02 15:04:05", "01/02/2006", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(series.DateFormat), true
		}
	}
	return "", false
}
