// Package table holds the two tabular shapes the dashboard moves around: the raw table as
// returned by the upstream store, and the canonical, timestamp-indexed frame.
package table

// Raw is a table of string cells with a header naming the upstream columns.
// Cells are kept exactly as rendered from the upstream row so that a table fetched from
// the database and the same table read back from its snapshot compare equal.
type Raw struct {
	Columns []string
	Rows    [][]string
}

// NewRaw returns an empty raw table with the given header
func NewRaw(columns ...string) *Raw {
	return &Raw{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows
func (r *Raw) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Index returns the position of the named column, or -1
func (r *Raw) Index(column string) int {
	for i, c := range r.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// AppendRow appends a single row. Short rows are padded with empty cells.
func (r *Raw) AppendRow(cells ...string) {
	row := make([]string, len(r.Columns))
	copy(row, cells)
	r.Rows = append(r.Rows, row)
}

// Concat appends the rows of other after the rows of r, preserving order.
// Columns are aligned by name; a column present in only one of the tables is
// filled with empty cells on the other side.
func (r *Raw) Concat(other *Raw) {
	if other == nil || len(other.Columns) == 0 {
		return
	}
	if len(r.Columns) == 0 {
		r.Columns = append([]string(nil), other.Columns...)
		for _, row := range other.Rows {
			r.Rows = append(r.Rows, append([]string(nil), row...))
		}
		return
	}

	if sameColumns(r.Columns, other.Columns) {
		for _, row := range other.Rows {
			r.Rows = append(r.Rows, append([]string(nil), row...))
		}
		return
	}

	// Widen r with any columns it has not seen yet
	for _, c := range other.Columns {
		if r.Index(c) == -1 {
			r.Columns = append(r.Columns, c)
			for i := range r.Rows {
				r.Rows[i] = append(r.Rows[i], "")
			}
		}
	}

	positions := make([]int, len(other.Columns))
	for i, c := range other.Columns {
		positions[i] = r.Index(c)
	}
	for _, src := range other.Rows {
		row := make([]string, len(r.Columns))
		for i, v := range src {
			if i < len(positions) {
				row[positions[i]] = v
			}
		}
		r.Rows = append(r.Rows, row)
	}
}

// Equal reports whether both tables have the same header and cells
func (r *Raw) Equal(other *Raw) bool {
	if r.Len() != other.Len() || !sameColumns(r.Columns, other.Columns) {
		return false
	}
	for i := range r.Rows {
		if len(r.Rows[i]) != len(other.Rows[i]) {
			return false
		}
		for j := range r.Rows[i] {
			if r.Rows[i][j] != other.Rows[i][j] {
				return false
			}
		}
	}
	return true
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
