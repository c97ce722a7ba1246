// Package feedbacksource provides feedback rows from a CSV export or PostgreSQL.
package feedbacksource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/okian/busyspot/internal/adapters/logsource"
	"github.com/okian/busyspot/internal/domain/feedback"
	"github.com/okian/busyspot/internal/domain/model"
)

// Column names of the feedback export.
const (
	ColumnSpot      = "spot_id"
	ColumnRating    = "busy_rating"
	ColumnCreatedAt = "created_at"
)

// CSV reads feedback from a CSV file and appends submissions to it.
type CSV struct {
	path string
	mu   sync.Mutex
}

// NewCSV creates a CSV feedback source for path.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Fetch returns every row of the file. The location is not used to pre-filter.
func (c *CSV) Fetch(ctx context.Context, _ model.Location) (feedback.Batch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Open(c.path)
	if err != nil {
		return feedback.Batch{}, fmt.Errorf("%w: %w", feedback.ErrUnavailable, err)
	}
	defer f.Close()
	return readBatch(ctx, f)
}

func readBatch(ctx context.Context, r io.Reader) (feedback.Batch, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return feedback.Batch{}, nil
	}
	if err != nil {
		return feedback.Batch{}, fmt.Errorf("%w: read header: %w", feedback.ErrMalformed, err)
	}
	cols := logsource.HeaderIndex(header)
	spotIdx, okSpot := cols[ColumnSpot]
	ratingIdx, okRating := cols[ColumnRating]
	if !okSpot || !okRating {
		return feedback.Batch{}, fmt.Errorf("%w: header lacks %s or %s", feedback.ErrMalformed, ColumnSpot, ColumnRating)
	}
	createdIdx, hasCreated := cols[ColumnCreatedAt]

	batch := feedback.Batch{HasTimestamps: hasCreated}
	for {
		if err := ctx.Err(); err != nil {
			return feedback.Batch{}, fmt.Errorf("read feedback: %w", err)
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
			return feedback.Batch{}, fmt.Errorf("%w: %w", feedback.ErrUnavailable, err)
		}
		e := feedback.Entry{SpotID: cell(row, spotIdx), Rating: cell(row, ratingIdx)}
		if hasCreated {
			e.CreatedAt = cell(row, createdIdx)
		}
		batch.Entries = append(batch.Entries, e)
	}
	return batch, nil
}

// Submit appends a rating, writing the header first if the file is new.
func (c *CSV) Submit(_ context.Context, s feedback.Submission) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create feedback dir: %w", err)
	}
	info, statErr := os.Stat(c.path)
	fresh := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open feedback file: %w", err)
	}
	w := csv.NewWriter(f)
	if fresh {
		_ = w.Write([]string{ColumnSpot, ColumnRating, ColumnCreatedAt})
	}
	_ = w.Write([]string{
		string(s.Location),
		strconv.FormatFloat(s.Rating, 'f', -1, 64),
		s.At.UTC().Format(time.RFC3339),
	})
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("append feedback: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close feedback file: %w", err)
	}
	return nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// None is a source with no feedback at all.
type None struct{}

// Fetch always reports the source as unavailable.
func (None) Fetch(context.Context, model.Location) (feedback.Batch, error) {
	return feedback.Batch{}, feedback.ErrUnavailable
}
