// Package normalize turns raw upstream rows into the canonical, timestamp-indexed frame
// used by charts, health statistics and exports.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/climatewatch/internal/rooms"
	"github.com/chrissnell/climatewatch/internal/table"
)

var dateLayouts = []string{"2006-01-02", "2006/01/02"}

// Normalize builds the canonical frame for room from raw. Rows are never dropped.
//
// For a supported room the frame holds exactly the room's canonical columns, with the
// combined timestamp in "Date" and numbers rounded to two decimals. Any other room keeps
// the raw columns in their original order, with the combined timestamp written into
// "fecha" and the calendar columns appended.
func Normalize(raw *table.Raw, room rooms.Room) (*table.Frame, error) {
	if raw == nil || len(raw.Columns) == 0 {
		raw = table.NewRaw(rooms.ColDate, rooms.ColHour, rooms.ColMinute, rooms.ColSecond)
	}

	stamps, err := timestamps(raw)
	if err != nil {
		return nil, err
	}

	if room.Supported() {
		return canonical(raw, room, stamps)
	}
	return passThrough(raw, stamps)
}

func canonical(raw *table.Raw, room rooms.Room, stamps []time.Time) (*table.Frame, error) {
	columns := room.CanonicalColumns()
	positions := make([]int, len(columns))
	for i, c := range columns {
		positions[i] = raw.Index(c)
	}

	rows := make([][]table.Cell, raw.Len())
	for r, src := range raw.Rows {
		row := make([]table.Cell, len(columns))
		ts := stamps[r]
		for i, c := range columns {
			switch c {
			case rooms.ColTimestamp:
				row[i] = table.At(ts)
			case rooms.ColYear, rooms.ColDayName, rooms.ColMonth, rooms.ColDay:
				row[i] = calendarCell(c, ts)
			default:
				if positions[i] == -1 {
					continue
				}
				cell := parseCell(src[positions[i]])
				if cell.Kind == table.Number {
					cell.Num = round2(cell.Num)
				}
				row[i] = cell
			}
		}
		rows[r] = row
	}

	return table.NewFrame(columns, rooms.ColTimestamp, rows)
}

func passThrough(raw *table.Raw, stamps []time.Time) (*table.Frame, error) {
	columns := append([]string(nil), raw.Columns...)
	derived := []string{rooms.ColYear, rooms.ColDayName, rooms.ColMonth, rooms.ColDay}
	derivedAt := make([]int, len(derived))
	for i, c := range derived {
		idx := raw.Index(c)
		if idx == -1 {
			idx = len(columns)
			columns = append(columns, c)
		}
		derivedAt[i] = idx
	}
	dateIdx := raw.Index(rooms.ColDate)

	rows := make([][]table.Cell, raw.Len())
	for r, src := range raw.Rows {
		row := make([]table.Cell, len(columns))
		for i, v := range src {
			row[i] = parseCell(v)
		}
		row[dateIdx] = table.At(stamps[r])
		for i, c := range derived {
			row[derivedAt[i]] = calendarCell(c, stamps[r])
		}
		rows[r] = row
	}

	return table.NewFrame(columns, rooms.ColDate, rows)
}

// timestamps combines fecha with hora, minuto and segundo for every row
func timestamps(raw *table.Raw) ([]time.Time, error) {
	idx := make(map[string]int, 4)
	for _, c := range []string{rooms.ColDate, rooms.ColHour, rooms.ColMinute, rooms.ColSecond} {
		i := raw.Index(c)
		if i == -1 {
			return nil, fmt.Errorf("missing column %q", c)
		}
		idx[c] = i
	}

	stamps := make([]time.Time, raw.Len())
	for r, row := range raw.Rows {
		base, err := parseDate(row[idx[rooms.ColDate]])
		if err != nil {
			return nil, fmt.Errorf("row %d column %q: %w", r, rooms.ColDate, err)
		}

		ts := base
		for _, part := range []struct {
			col  string
			unit time.Duration
		}{
			{rooms.ColHour, time.Hour},
			{rooms.ColMinute, time.Minute},
			{rooms.ColSecond, time.Second},
		} {
			n, err := parseOffset(row[idx[part.col]])
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", r, part.col, err)
			}
			ts = ts.Add(time.Duration(n) * part.unit)
		}
		stamps[r] = ts
	}
	return stamps, nil
}

// parseDate reads the date part of a date, date-time or RFC 3339 value
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}

// parseOffset reads an integer time component. Whole floats ("7.0") are accepted
// since some drivers render integer columns that way.
func parseOffset(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("unparsable time component %q", s)
	}
	return int64(f), nil
}

func parseCell(s string) table.Cell {
	if s == "" {
		return table.Cell{}
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return table.Num(f)
	}
	return table.Str(s)
}

func calendarCell(column string, ts time.Time) table.Cell {
	switch column {
	case rooms.ColYear:
		return table.Num(float64(ts.Year()))
	case rooms.ColDayName:
		return table.Str(ts.Weekday().String())
	case rooms.ColMonth:
		return table.Num(float64(ts.Month()))
	case rooms.ColDay:
		return table.Num(float64(ts.Day()))
	default:
		return table.Cell{}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
