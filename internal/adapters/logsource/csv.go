// Package logsource reads desk-usage logs from CSV exports or SQLite.
package logsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/busyspot/internal/domain/occupancy"
	"github.com/okian/busyspot/pkg/logger"
)

// CSV reads the desk log from a CSV file with a header row.
type CSV struct {
	path string
	cfg  settings
}

// NewCSV creates a CSV source for path.
func NewCSV(path string, opts ...Option) *CSV {
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &CSV{path: path, cfg: cfg}
}

// Path returns the file the source reads.
func (c *CSV) Path() string { return c.path }

// Records reads every row. A missing file or missing required column is ErrSourceUnavailable.
func (c *CSV) Records(ctx context.Context) ([]occupancy.Record, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", occupancy.ErrSourceUnavailable, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			c.cfg.logger.Warn(ctx, "failed to close desk log", logger.Error(err))
		}
	}()
	return readCSV(ctx, f, c.cfg.deskColumn, c.cfg.timestampColumn)
}

func readCSV(ctx context.Context, r io.Reader, deskCol, tsCol string) ([]occupancy.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", occupancy.ErrSourceUnavailable, err)
	}
	cols := HeaderIndex(header)
	deskIdx, okDesk := cols[strings.ToLower(deskCol)]
	tsIdx, okTS := cols[strings.ToLower(tsCol)]
	if !okDesk || !okTS {
		return nil, fmt.Errorf("%w: header lacks %q or %q", occupancy.ErrSourceUnavailable, deskCol, tsCol)
	}

	var out []occupancy.Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("read desk log: %w", err)
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, fmt.Errorf("%w: %w", occupancy.ErrSourceUnavailable, err)
		}
		out = append(out, occupancy.Record{Desk: field(row, deskIdx), Timestamp: field(row, tsIdx)})
	}
	return out, nil
}

// HeaderIndex maps lower-cased, trimmed header names to their column index.
// The first occurrence of a duplicated name wins.
func HeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
