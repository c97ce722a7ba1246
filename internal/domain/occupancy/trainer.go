// Package occupancy builds the occupancy frequency table from desk-usage logs.
package occupancy

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/okian/busyspot/internal/domain/model"
	"github.com/okian/busyspot/internal/domain/normalize"
	"github.com/okian/busyspot/pkg/logger"
)

// Record is one raw desk-usage log row.
type Record struct {
	Desk      string
	Timestamp string
}

// Source yields the full desk-usage log.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
}

// Stats describes how a training run treated its input.
type Stats struct {
	RecordsRead         int
	RecordsUsed         int
	DroppedUnmapped     int
	DroppedBadTimestamp int
}

// Trainer turns desk logs into normalized per-bin frequencies.
type Trainer struct {
	logger  logger.Logger
	now     func() time.Time
	version func() string
}

// NewTrainer creates a trainer.
func NewTrainer(opts ...Option) *Trainer {
	t := &Trainer{
		logger:  logger.Nop(),
		now:     time.Now,
		version: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type counts [model.BinCount]float64

// Train builds a fresh snapshot from records. Records whose desk does not map to a
// location, or whose timestamp does not parse, are dropped. If nothing survives,
// ErrNoMatchingData is returned.
func (t *Trainer) Train(ctx context.Context, records []Record) (model.Snapshot, Stats, error) {
	stats := Stats{RecordsRead: len(records)}
	perLocation := make(map[model.Location]*counts)
	var global counts

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return model.Snapshot{}, stats, fmt.Errorf("training cancelled: %w", err)
		}
		loc, ok := normalize.Normalize(rec.Desk)
		if !ok || !loc.Valid() {
			stats.DroppedUnmapped++
			continue
		}
		at, err := model.ParseInstant(rec.Timestamp)
		if err != nil {
			stats.DroppedBadTimestamp++
			continue
		}
		bin := model.BinFor(at)
		c, ok := perLocation[loc]
		if !ok {
			c = &counts{}
			perLocation[loc] = c
		}
		c[bin]++
		global[bin]++
		stats.RecordsUsed++
	}

	if stats.RecordsUsed == 0 {
		return model.Snapshot{}, stats, fmt.Errorf("%w: %d read, %d unmapped, %d bad timestamps",
			ErrNoMatchingData, stats.RecordsRead, stats.DroppedUnmapped, stats.DroppedBadTimestamp)
	}

	snap := model.Snapshot{
		PerLibrary: make(map[model.Location]model.BinFrequencies, len(perLocation)),
		Global:     normalizeCounts(global, true),
		Version:    t.version(),
		TrainedAt:  t.now().UTC(),
	}
	for loc, c := range perLocation {
		if freqs := normalizeCounts(*c, false); freqs != nil {
			snap.PerLibrary[loc] = freqs
		}
	}

	t.logger.Debug(ctx, "frequency table built",
		logger.Int("records_used", stats.RecordsUsed),
		logger.Int("locations", len(snap.PerLibrary)),
		logger.String("version", snap.Version))
	return snap, stats, nil
}

// normalizeCounts divides every observed bin by the busiest bin and rounds to 4 decimals.
// Bins with no observations are left out. A zero maximum yields nil, or an all-zero
// table over every bin when zeros is set.
func normalizeCounts(c counts, zeros bool) model.BinFrequencies {
	peak := floats.Max(c[:])
	if peak == 0 {
		if !zeros {
			return nil
		}
		out := make(model.BinFrequencies, model.BinCount)
		for b := range c {
			out[model.TimeBin(b)] = 0
		}
		return out
	}
	out := make(model.BinFrequencies, model.BinCount)
	for b, n := range c {
		if n > 0 {
			out[model.TimeBin(b)] = model.Round4(n / peak)
		}
	}
	return out
}

// Summarize reports the size of a snapshot alongside the run's stats.
func Summarize(snap model.Snapshot, stats Stats) model.TrainingSummary {
	sum := model.TrainingSummary{
		GlobalEntries:       len(snap.Global),
		Version:             snap.Version,
		TrainedAt:           snap.TrainedAt,
		RecordsRead:         stats.RecordsRead,
		RecordsUsed:         stats.RecordsUsed,
		DroppedUnmapped:     stats.DroppedUnmapped,
		DroppedBadTimestamp: stats.DroppedBadTimestamp,
	}
	for loc, freqs := range snap.PerLibrary {
		sum.PerLibraryEntries += len(freqs)
		sum.Locations = append(sum.Locations, loc)
	}
	order := make(map[model.Location]int)
	for i, loc := range model.Locations() {
		order[loc] = i
	}
	sort.Slice(sum.Locations, func(i, j int) bool { return order[sum.Locations[i]] < order[sum.Locations[j]] })
	return sum
}
