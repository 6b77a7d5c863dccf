package table

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Kind identifies the type held in a Cell
type Kind uint8

const (
	Null Kind = iota
	Number
	Text
	Timestamp
)

// TimestampLayout is used wherever a timestamp cell is rendered as text
const TimestampLayout = "2006-01-02 15:04:05"

// Cell is a single typed value in a Frame
type Cell struct {
	Kind Kind
	Num  float64
	Str  string
	Time time.Time
}

// Num returns a numeric cell
func Num(v float64) Cell { return Cell{Kind: Number, Num: v} }

// Str returns a text cell
func Str(s string) Cell { return Cell{Kind: Text, Str: s} }

// At returns a timestamp cell
func At(t time.Time) Cell { return Cell{Kind: Timestamp, Time: t} }

// String renders the cell as text. Null cells render as the empty string.
func (c Cell) String() string {
	switch c.Kind {
	case Number:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case Text:
		return c.Str
	case Timestamp:
		return c.Time.Format(TimestampLayout)
	default:
		return ""
	}
}

// Value returns the cell as a plain Go value suitable for JSON encoding
func (c Cell) Value() any {
	switch c.Kind {
	case Number:
		return c.Num
	case Text:
		return c.Str
	case Timestamp:
		return c.Time.Format(TimestampLayout)
	default:
		return nil
	}
}

// Frame is the canonical table: typed cells, rows sorted ascending by the key
// column, and the key column doubling as the frame's lookup index.
type Frame struct {
	Columns []string
	Rows    [][]Cell
	Key     string

	keyIdx int
	keys   []time.Time
}

// NewFrame builds a frame keyed by the named timestamp column. Rows are stably
// sorted by their key. Every row must carry a timestamp cell in the key column.
func NewFrame(columns []string, key string, rows [][]Cell) (*Frame, error) {
	f := &Frame{
		Columns: columns,
		Rows:    rows,
		Key:     key,
		keyIdx:  -1,
	}
	for i, c := range columns {
		if c == key {
			f.keyIdx = i
			break
		}
	}
	if f.keyIdx == -1 {
		return nil, fmt.Errorf("key column %q not in frame columns", key)
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i, len(row), len(columns))
		}
		if row[f.keyIdx].Kind != Timestamp {
			return nil, fmt.Errorf("row %d: key column %q is not a timestamp", i, key)
		}
	}

	sort.SliceStable(f.Rows, func(i, j int) bool {
		return f.Rows[i][f.keyIdx].Time.Before(f.Rows[j][f.keyIdx].Time)
	})

	f.keys = make([]time.Time, len(f.Rows))
	for i, row := range f.Rows {
		f.keys[i] = row[f.keyIdx].Time
	}
	return f, nil
}

// Len returns the number of rows
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// ColumnIndex returns the position of the named column, or -1
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Keys returns the sorted timestamp index
func (f *Frame) Keys() []time.Time {
	return f.keys
}

// Lookup returns the first row whose key equals ts
func (f *Frame) Lookup(ts time.Time) ([]Cell, bool) {
	i := sort.Search(len(f.keys), func(i int) bool { return !f.keys[i].Before(ts) })
	if i < len(f.keys) && f.keys[i].Equal(ts) {
		return f.Rows[i], true
	}
	return nil, false
}

// CountBetween returns the number of rows whose key lies in [from, to]
func (f *Frame) CountBetween(from, to time.Time) int {
	lo, hi := f.bounds(from, to)
	return hi - lo
}

// Between returns a frame with the rows whose key lies in [from, to]. The rows are
// shared with f.
func (f *Frame) Between(from, to time.Time) *Frame {
	lo, hi := f.bounds(from, to)
	return &Frame{
		Columns: f.Columns,
		Rows:    f.Rows[lo:hi],
		Key:     f.Key,
		keyIdx:  f.keyIdx,
		keys:    f.keys[lo:hi],
	}
}

// Series returns the key timestamps and numeric values of a column, skipping rows
// where the column is not a number.
func (f *Frame) Series(column string) ([]time.Time, []float64, error) {
	idx := f.ColumnIndex(column)
	if idx == -1 {
		return nil, nil, fmt.Errorf("column %q not in frame", column)
	}
	xs := make([]time.Time, 0, len(f.Rows))
	ys := make([]float64, 0, len(f.Rows))
	for i, row := range f.Rows {
		if row[idx].Kind != Number {
			continue
		}
		xs = append(xs, f.keys[i])
		ys = append(ys, row[idx].Num)
	}
	return xs, ys, nil
}

// Select returns a frame restricted to the key column followed by the named columns
func (f *Frame) Select(columns ...string) (*Frame, error) {
	positions := make([]int, 0, len(columns)+1)
	names := make([]string, 0, len(columns)+1)
	positions = append(positions, f.keyIdx)
	names = append(names, f.Key)
	for _, c := range columns {
		if c == f.Key {
			continue
		}
		idx := f.ColumnIndex(c)
		if idx == -1 {
			return nil, fmt.Errorf("column %q not in frame", c)
		}
		positions = append(positions, idx)
		names = append(names, c)
	}

	rows := make([][]Cell, len(f.Rows))
	for i, src := range f.Rows {
		row := make([]Cell, len(positions))
		for j, p := range positions {
			row[j] = src[p]
		}
		rows[i] = row
	}
	return &Frame{
		Columns: names,
		Rows:    rows,
		Key:     f.Key,
		keyIdx:  0,
		keys:    f.keys,
	}, nil
}

func (f *Frame) bounds(from, to time.Time) (int, int) {
	lo := sort.Search(len(f.keys), func(i int) bool { return !f.keys[i].Before(from) })
	hi := sort.Search(len(f.keys), func(i int) bool { return f.keys[i].After(to) })
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
