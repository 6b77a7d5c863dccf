package table

import (
	"testing"
	"time"
)

func TestRawConcat(t *testing.T) {
	tests := []struct {
		name            string
		left            *Raw
		right           *Raw
		expectedColumns []string
		expectedRows    [][]string
	}{
		{
			name:            "empty receiver adopts header",
			left:            &Raw{},
			right:           &Raw{Columns: []string{"fecha", "Z1_T"}, Rows: [][]string{{"2023-05-29", "72.4"}}},
			expectedColumns: []string{"fecha", "Z1_T"},
			expectedRows:    [][]string{{"2023-05-29", "72.4"}},
		},
		{
			name:            "same header appends in order",
			left:            &Raw{Columns: []string{"fecha", "Z1_T"}, Rows: [][]string{{"2023-05-29", "72.4"}}},
			right:           &Raw{Columns: []string{"fecha", "Z1_T"}, Rows: [][]string{{"2023-05-30", "71.0"}}},
			expectedColumns: []string{"fecha", "Z1_T"},
			expectedRows:    [][]string{{"2023-05-29", "72.4"}, {"2023-05-30", "71.0"}},
		},
		{
			name:            "differing header aligns by name",
			left:            &Raw{Columns: []string{"fecha", "Z1_T"}, Rows: [][]string{{"2023-05-29", "72.4"}}},
			right:           &Raw{Columns: []string{"Z2_T", "fecha"}, Rows: [][]string{{"68", "2023-05-30"}}},
			expectedColumns: []string{"fecha", "Z1_T", "Z2_T"},
			expectedRows:    [][]string{{"2023-05-29", "72.4", ""}, {"2023-05-30", "", "68"}},
		},
		{
			name:            "headerless right side is ignored",
			left:            &Raw{Columns: []string{"fecha"}, Rows: [][]string{{"2023-05-29"}}},
			right:           &Raw{},
			expectedColumns: []string{"fecha"},
			expectedRows:    [][]string{{"2023-05-29"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.left.Concat(tt.right)
			expected := &Raw{Columns: tt.expectedColumns, Rows: tt.expectedRows}
			if !tt.left.Equal(expected) {
				t.Errorf("Concat produced %v / %v, expected %v / %v",
					tt.left.Columns, tt.left.Rows, tt.expectedColumns, tt.expectedRows)
			}
		})
	}
}

func TestFrameSortsAndIndexes(t *testing.T) {
	base := time.Date(2023, 5, 29, 0, 0, 0, 0, time.UTC)
	rows := [][]Cell{
		{At(base.Add(2 * time.Minute)), Num(3)},
		{At(base), Num(1)},
		{At(base.Add(time.Minute)), Num(2)},
		{At(base.Add(24 * time.Hour)), Num(4)},
	}

	f, err := NewFrame([]string{"Date", "Z1_T"}, "Date", rows)
	if err != nil {
		t.Fatalf("NewFrame returned error: %v", err)
	}

	_, ys, err := f.Series("Z1_T")
	if err != nil {
		t.Fatalf("Series returned error: %v", err)
	}
	for i, expected := range []float64{1, 2, 3, 4} {
		if ys[i] != expected {
			t.Errorf("row %d value = %v, expected %v", i, ys[i], expected)
		}
	}

	row, ok := f.Lookup(base.Add(time.Minute))
	if !ok || row[1].Num != 2 {
		t.Errorf("Lookup returned %v, %v; expected value 2", row, ok)
	}
	if _, ok := f.Lookup(base.Add(30 * time.Second)); ok {
		t.Error("Lookup found a row for a timestamp that is not in the frame")
	}

	dayEnd := base.Add(24*time.Hour - time.Second)
	if n := f.CountBetween(base, dayEnd); n != 3 {
		t.Errorf("CountBetween = %d, expected 3", n)
	}
	if n := f.Between(base.Add(24*time.Hour), base.Add(48*time.Hour)).Len(); n != 1 {
		t.Errorf("Between(next day).Len() = %d, expected 1", n)
	}
}

func TestFrameRejectsNonTimestampKey(t *testing.T) {
	_, err := NewFrame([]string{"Date"}, "Date", [][]Cell{{Str("not a time")}})
	if err == nil {
		t.Fatal("expected error for non-timestamp key cell")
	}
	_, err = NewFrame([]string{"Z1_T"}, "Date", nil)
	if err == nil {
		t.Fatal("expected error for missing key column")
	}
}

func TestFrameSelect(t *testing.T) {
	ts := time.Date(2023, 5, 29, 0, 0, 30, 0, time.UTC)
	f, err := NewFrame([]string{"Date", "hora", "Z1_T", "Z1_HR"}, "Date",
		[][]Cell{{At(ts), Num(0), Num(72.46), Num(35.1)}})
	if err != nil {
		t.Fatalf("NewFrame returned error: %v", err)
	}

	sel, err := f.Select("Z1_HR", "Z1_T")
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	expected := []string{"Date", "Z1_HR", "Z1_T"}
	for i, c := range expected {
		if sel.Columns[i] != c {
			t.Errorf("column %d = %q, expected %q", i, sel.Columns[i], c)
		}
	}
	if sel.Rows[0][1].Num != 35.1 {
		t.Errorf("selected Z1_HR = %v, expected 35.1", sel.Rows[0][1].Num)
	}

	if _, err := f.Select("missing"); err == nil {
		t.Error("expected error selecting a missing column")
	}
}
