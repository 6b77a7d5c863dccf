package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/chrissnell/climatewatch/internal/calendar"
	"github.com/chrissnell/climatewatch/internal/retrieval"
	"github.com/chrissnell/climatewatch/internal/rooms"
	"github.com/chrissnell/climatewatch/internal/table"
	"github.com/xuri/excelize/v2"
)

func testFrame(t *testing.T) *table.Frame {
	t.Helper()
	ts := time.Date(2023, 5, 29, 0, 0, 0, 0, time.UTC)
	rows := [][]table.Cell{
		{table.At(ts.Add(30 * time.Second)), table.Num(0), table.Num(71.5), table.Cell{}, table.Str("Monday")},
		{table.At(ts), table.Num(0), table.Num(72.46), table.Num(40), table.Str("Monday")},
	}
	f, err := table.NewFrame([]string{"Date", "hora", "Z1_T", "Z1_HR", "day_name"}, "Date", rows)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestWorkbook(t *testing.T) {
	data, err := Workbook(testFrame(t), []string{"Z1_HR", "Z1_T"})
	if err != nil {
		t.Fatalf("Workbook() error = %v", err)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("sheets = %v, expected [%s]", sheets, SheetName)
	}

	rows, err := wb.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	expected := [][]string{
		{"Date", "Z1_HR", "Z1_T"},
		{"2023-05-29 00:00:00", "40", "72.46"},
		{"2023-05-29 00:00:30", "", "71.5"},
	}
	if len(rows) != len(expected) {
		t.Fatalf("rows = %v, expected %v", rows, expected)
	}
	for i := range expected {
		for j := range expected[i] {
			if rows[i][j] != expected[i][j] {
				t.Errorf("cell (%d,%d) = %q, expected %q", i, j, rows[i][j], expected[i][j])
			}
		}
	}
}

func TestWorkbookKeepsPassThroughKey(t *testing.T) {
	ts := time.Date(2023, 5, 29, 0, 0, 30, 0, time.UTC)
	f, err := table.NewFrame([]string{"fecha", "hora", "Lobby_T"}, "fecha",
		[][]table.Cell{{table.At(ts), table.Str("0"), table.Str("68.123")}})
	if err != nil {
		t.Fatal(err)
	}

	data, err := Workbook(f, nil)
	if err != nil {
		t.Fatalf("Workbook() error = %v", err)
	}
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{"fecha", "hora", "Lobby_T"}
	if len(rows) != 2 || len(rows[0]) != len(expected) {
		t.Fatalf("rows = %v, expected header %v and one row", rows, expected)
	}
	for i, c := range expected {
		if rows[0][i] != c {
			t.Errorf("header[%d] = %q, expected %q", i, rows[0][i], c)
		}
	}
	if rows[1][0] != "2023-05-29 00:00:30" {
		t.Errorf("key cell = %q, expected %q", rows[1][0], "2023-05-29 00:00:30")
	}
}

func TestWorkbookUnknownColumn(t *testing.T) {
	if _, err := Workbook(testFrame(t), []string{"HA2_T_Iny"}); err == nil {
		t.Error("expected error for a column outside the frame")
	}
}

func TestFileName(t *testing.T) {
	d := calendar.MustParse
	tests := []struct {
		name     string
		room     rooms.Room
		query    retrieval.Query
		expected string
	}{
		{"day", rooms.CBC1to8, retrieval.DayQuery(d("2023-05-29")), "Data_room_CBC_1-8_2023-05-29.xlsx"},
		{"range", rooms.CBC10to12, retrieval.RangeQuery(d("2023-05-29"), d("2023-05-31")),
			"Data_room_CBC_10-12_from_2023-05-29_until_2023-05-31.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileName(tt.room, tt.query); got != tt.expected {
				t.Errorf("FileName() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
