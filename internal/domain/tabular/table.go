package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const bom = "\uFEFF"

var zipMagic = []byte("PK\x03\x04")

// Row maps header names to cell values. Cells beyond a short row are absent.
type Row map[string]string

// Table is a parsed upload: a header plus its data rows.
type Table struct {
	Header []string
	Rows   []Row
}

// ReadTable parses r as XLSX when it carries the ZIP signature, otherwise as CSV.
func ReadTable(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadableTable, err)
	}
	if bytes.HasPrefix(data, zipMagic) {
		return ReadXLSX(bytes.NewReader(data))
	}
	return ReadCSV(bytes.NewReader(data))
}

// ReadCSV parses UTF-8 CSV with a header line.
func ReadCSV(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadableTable, err)
	}
	if !utf8.Valid(data) {
		return Table{}, fmt.Errorf("%w: not valid UTF-8", ErrUnreadableTable)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadableTable, err)
	}
	return fromRecords(records), nil
}

// ReadXLSX parses the first sheet of a workbook, its first row being the header.
func ReadXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadableTable, err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadableTable, errors.New("workbook has no sheets"))
	}
	records, err := f.GetRows(name)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadableTable, err)
	}
	return fromRecords(records), nil
}

func fromRecords(records [][]string) Table {
	if len(records) == 0 {
		return Table{}
	}
	header := append([]string(nil), records[0]...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}

	t := Table{Header: header}
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func blank(rec []string) bool {
	for _, c := range rec {
		if c != "" {
			return false
		}
	}
	return true
}
