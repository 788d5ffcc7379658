// Package tabular converts the Bounceland dataset to and from CSV and XLSX tables.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/okian/bounceland/internal/domain/calendar"
	"github.com/okian/bounceland/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

// Fixed leading columns of an exported table.
const (
	ColUserID   = "user_id"
	ColUsername = "username"
	ColName     = "name"
)

const sheetName = "Bounceland"

// Header returns the export header for the given week ids.
func Header(weekIDs []string) []string {
	h := make([]string, 0, 3+len(model.Modes)+len(weekIDs))
	h = append(h, ColUserID, ColUsername, ColName)
	h = append(h, model.Modes...)
	for _, id := range weekIDs {
		h = append(h, calendar.WeekLabelForID(id))
	}
	return h
}

// Export renders ds as rows, header first, one row per user sorted by id.
func Export(ds *model.Dataset) [][]string {
	weekIDs := ds.WeekIDs()
	rows := [][]string{Header(weekIDs)}
	for _, id := range ds.UserIDs() {
		u := ds.Users[id]
		row := make([]string, 0, len(rows[0]))
		row = append(row, id, u.Username, u.Name)
		for _, m := range model.Modes {
			if u.HasMode(m) {
				row = append(row, "1")
			} else {
				row = append(row, "0")
			}
		}
		for _, w := range weekIDs {
			row = append(row, weightCell(u.Weeks[w]))
		}
		rows = append(rows, row)
	}
	return rows
}

func weightCell(c model.Choice) string {
	switch c {
	case model.FullWeek:
		return "1"
	case model.HalfWeek:
		return "0.5"
	default:
		return "0"
	}
}

// WriteCSV writes ds as CSV.
func WriteCSV(w io.Writer, ds *model.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Export(ds)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// CSV returns ds encoded as CSV.
func CSV(ds *model.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ds); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteXLSX writes ds as a single-sheet workbook with a styled header row.
func WriteXLSX(w io.Writer, ds *model.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	rows := Export(ds)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellStr(sheetName, cell, v); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}

	last, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return fmt.Errorf("column name: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", "C", 16); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
