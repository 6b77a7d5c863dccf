// Package export writes normalized frames as xlsx workbooks for download.
package export

import (
	"fmt"
	"strings"

	"github.com/chrissnell/climatewatch/internal/retrieval"
	"github.com/chrissnell/climatewatch/internal/rooms"
	"github.com/chrissnell/climatewatch/internal/table"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single sheet of every exported workbook
const SheetName = "Mansfield_climati_cbc"

// ContentType is the MIME type of an xlsx workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook renders the frame's index followed by columns into an xlsx workbook. A nil
// columns selects every column of the frame.
func Workbook(f *table.Frame, columns []string) ([]byte, error) {
	if columns == nil {
		columns = f.Columns
	}
	view, err := f.Select(columns...)
	if err != nil {
		return nil, fmt.Errorf("failed to select export columns: %w", err)
	}

	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := wb.NewStreamWriter(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet writer: %w", err)
	}

	// The index column keeps the frame's key name: Date, or fecha for pass-through frames
	header := make([]interface{}, len(view.Columns))
	header[0] = view.Key
	for i, c := range view.Columns[1:] {
		header[i+1] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range view.Rows {
		values := make([]interface{}, len(row))
		for i, cell := range row {
			values[i] = cell.Value()
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(axis, values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush sheet: %w", err)
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName names the download for room and q
func FileName(room rooms.Room, q retrieval.Query) string {
	name := strings.ReplaceAll(room.String(), " ", "_")
	if q.Kind == retrieval.SingleDay {
		return fmt.Sprintf("Data_room_%s_%s.xlsx", name, q.Day)
	}
	return fmt.Sprintf("Data_room_%s_from_%s_until_%s.xlsx", name, q.Start, q.End)
}
