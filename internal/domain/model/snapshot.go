package model

import (
	"fmt"
	"time"
)

// BinFrequencies maps a time bin to its normalized frequency in [0,1].
type BinFrequencies map[TimeBin]float64

// Validate checks that every bin is in range and every value is within [0,1].
func (f BinFrequencies) Validate() error {
	for bin, v := range f {
		if !bin.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidBin, int(bin))
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: bin %d = %v", ErrInvalidFrequency, int(bin), v)
		}
	}
	return nil
}

// Snapshot is the persisted occupancy frequency table produced by one training run.
type Snapshot struct {
	PerLibrary map[Location]BinFrequencies `json:"per_library"`
	Global     BinFrequencies              `json:"global"`
	Version    string                      `json:"version"`    // uuid of the training run
	TrainedAt  time.Time                   `json:"trained_at"` // UTC
}

// Validate checks the snapshot's locations and frequency tables.
func (s Snapshot) Validate() error {
	for loc, freqs := range s.PerLibrary {
		if !loc.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidLocation, string(loc))
		}
		if err := freqs.Validate(); err != nil {
			return fmt.Errorf("per_library %s: %w", loc, err)
		}
	}
	if err := s.Global.Validate(); err != nil {
		return fmt.Errorf("global: %w", err)
	}
	return nil
}

// Lookup returns the frequency for a location and bin, if the table has one.
func (s Snapshot) Lookup(loc Location, bin TimeBin) (float64, bool) {
	freqs, ok := s.PerLibrary[loc]
	if !ok {
		return 0, false
	}
	v, ok := freqs[bin]
	return v, ok
}

// GlobalLookup returns the global frequency for a bin, if present.
func (s Snapshot) GlobalLookup(bin TimeBin) (float64, bool) {
	v, ok := s.Global[bin]
	return v, ok
}

// TrainingSummary reports what a training run produced.
type TrainingSummary struct {
	PerLibraryEntries   int        `json:"per_library_entries"` // bins summed over all locations
	GlobalEntries       int        `json:"global_entries"`
	Version             string     `json:"version"`
	TrainedAt           time.Time  `json:"trained_at"`
	Locations           []Location `json:"locations"`
	RecordsRead         int        `json:"records_read"`
	RecordsUsed         int        `json:"records_used"`
	DroppedUnmapped     int        `json:"dropped_unmapped"`
	DroppedBadTimestamp int        `json:"dropped_bad_timestamp"`
}
