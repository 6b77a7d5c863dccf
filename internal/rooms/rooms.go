// Package rooms describes the closed set of monitored rooms. Each room carries the
// sensor channels it is built from, its canonical column order, the columns offered for
// spreadsheet export, and the layout of its charts.
package rooms

import (
	"errors"
	"fmt"
	"strings"
)

// Room identifies a monitored room. The zero value is Unsupported.
type Room int

const (
	Unsupported Room = iota
	CBC1to8
	CBC10to12
)

// DefaultTable is the upstream table both Mansfield rooms are recorded in
const DefaultTable = "Mansfield_climati_cbc"

// Raw column names, as they exist in the upstream schema
const (
	ColDate   = "fecha"
	ColHour   = "hora"
	ColMinute = "minuto"
	ColSecond = "segundo"
)

// Canonical column names added or renamed by normalization
const (
	ColTimestamp = "Date"
	ColYear      = "year"
	ColDayName   = "day_name"
	ColMonth     = "month"
	ColDay       = "day"
)

// ErrUnknownRoom is returned by Parse for names outside the supported set
var ErrUnknownRoom = errors.New("unknown room")

var names = map[Room]string{
	CBC1to8:   "CBC 1-8",
	CBC10to12: "CBC 10-12",
}

// All returns every supported room in display order
func All() []Room {
	return []Room{CBC1to8, CBC10to12}
}

// Parse maps a room name ("CBC 1-8", "cbc-10-12", ...) onto a Room. Unknown names
// yield Unsupported together with ErrUnknownRoom so that callers may choose to
// degrade rather than fail.
func Parse(name string) (Room, error) {
	want := squash(name)
	for r, n := range names {
		if squash(n) == want {
			return r, nil
		}
	}
	return Unsupported, fmt.Errorf("%w: %q", ErrUnknownRoom, name)
}

// String returns the display name
func (r Room) String() string {
	if n, ok := names[r]; ok {
		return n
	}
	return "unsupported"
}

// Supported reports whether r has a defined column layout
func (r Room) Supported() bool {
	switch r {
	case CBC1to8, CBC10to12:
		return true
	case Unsupported:
		return false
	default:
		return false
	}
}

// Channels returns the sensor channels that belong to the room
func (r Room) Channels() []string {
	switch r {
	case CBC1to8:
		return []string{
			"Z1_T", "Z2_T", "Z1_HR", "Z2_HR",
			"HA1_T_Iny", "HA1_T_Rec", "HA1_T_Fac", "HA1_T_AHA", "HA1_T_OUT",
			"HA1_2_OUT_HR", "HA1_Dmp_Vout", "HA1_Dmp_Vrec", "HA1_Dmp_Vfac",
		}
	case CBC10to12:
		return []string{
			"Z3_T", "Z3_HR",
			"HA2_T_Iny", "HA2_T_Rec", "HA2_T_Fac", "HA2_T_AHA", "HA2_T_OUT",
			"HA1_T_Fac", "HA1_2_OUT_HR", "HA2_Dmp_Vout", "HA2_Dmp_Vrec", "HA2_Dmp_Vfac",
		}
	default:
		return nil
	}
}

// CanonicalColumns returns the full column order of a normalized frame for the room.
// It returns nil for Unsupported.
func (r Room) CanonicalColumns() []string {
	if !r.Supported() {
		return nil
	}
	cols := []string{ColTimestamp, ColHour, ColMinute, ColSecond}
	cols = append(cols, r.Channels()...)
	return append(cols, ColYear, ColDayName, ColMonth, ColDay)
}

// ExportColumns returns the sensor columns written to the spreadsheet export
func (r Room) ExportColumns() []string {
	switch r {
	case CBC1to8:
		return []string{
			"Z1_T", "Z2_T", "Z1_HR", "Z2_HR", "HA1_T_Iny", "HA1_T_Rec", "HA1_T_AHA",
			"HA1_T_OUT", "HA1_T_Fac", "HA1_2_OUT_HR", "HA1_Dmp_Vout", "HA1_Dmp_Vrec",
			"HA1_Dmp_Vfac",
		}
	case CBC10to12:
		return []string{
			"Z3_T", "Z3_HR", "HA2_T_Iny", "HA2_T_Rec", "HA2_T_AHA", "HA2_T_OUT",
			"HA1_T_Fac", "HA1_2_OUT_HR", "HA2_Dmp_Vout", "HA2_Dmp_Vrec", "HA2_Dmp_Vfac",
		}
	default:
		return nil
	}
}

// squash lowercases and drops separators so "CBC 1-8", "cbc_1-8" and "cbc-1-8" match
func squash(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
