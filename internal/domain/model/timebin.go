package model

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Time bin layout: 8 contiguous 3-hour windows covering the day.
const (
	BinCount    = 8
	HoursPerBin = 3
)

// TimeBin indexes a 3-hour window of the day: bin 0 is [00:00,03:00), bin 7 is [21:00,24:00).
// As a map key it serializes as the strings "0".."7"; as a value, as a JSON number.
type TimeBin int

// BinOf returns the bin for an hour of a 24-hour clock.
func BinOf(hour int) TimeBin {
	return TimeBin(hour / HoursPerBin)
}

// BinFor returns the bin for the UTC hour of t.
func BinFor(t time.Time) TimeBin {
	return BinOf(t.UTC().Hour())
}

// Valid reports whether b is within [0,7].
func (b TimeBin) Valid() bool {
	return b >= 0 && b < BinCount
}

func (b TimeBin) String() string { return strconv.Itoa(int(b)) }

// MarshalText implements encoding.TextMarshaler.
func (b TimeBin) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBin, int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *TimeBin) UnmarshalText(text []byte) error {
	n, err := strconv.Atoi(string(text))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidBin, string(text))
	}
	bin := TimeBin(n)
	if !bin.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidBin, string(text))
	}
	*b = bin
	return nil
}

// MarshalJSON writes the bin as a number.
func (b TimeBin) MarshalJSON() ([]byte, error) {
	return b.MarshalText()
}

// UnmarshalJSON accepts a number or a quoted number.
func (b *TimeBin) UnmarshalJSON(data []byte) error {
	return b.UnmarshalText(bytes.Trim(data, `"`))
}
