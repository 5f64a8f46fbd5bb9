/*
Package sheet reads badge-swipe exports and writes the high-traffic report.

INPUT:
  The first sheet of an .xlsx workbook, or a .csv file. Legacy .xls
  workbooks are rejected with a decode error asking for .xlsx. The first
  non-blank row is the header; the columns the engine reads are:

    CodePersonel  person id (text or number)
    Description   free text, "Valid credential <name> (...)"
    Timestamp2    fraction of a day, or "H:M:S"
    Datestamp     Excel day serial, or a preformatted DD/MM/YYYY key

  Other columns are ignored. Completely blank rows are skipped. Workbook
  cells keep their stored type (a text "0123" id stays text); CSV cells are
  typed by inference, numbers first.

OUTPUT:
  One sheet, attendance.ReportSheetName, with attendance.ReportHeaders as
  the first row and one row per ranked person.

ERRORS:
  Any failure to read the container is an *attendance.DecodeError, which
  matches attendance.ErrUnparseableFile. Decoding is all-or-nothing.
*/
package sheet

import (
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/warp/traffic-engine/attendance"
	"github.com/xuri/excelize/v2"
)

// Column headers of the input sheet.
const (
	ColPersonID    = "CodePersonel"
	ColDescription = "Description"
	ColTime        = "Timestamp2"
	ColDate        = "Datestamp"
)

// columns maps the input columns to their positions; -1 when absent.
type columns struct {
	id, description, time, date int
}

func locate(header []string) (columns, bool) {
	c := columns{id: -1, description: -1, time: -1, date: -1}
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case ColPersonID:
			c.id = i
		case ColDescription:
			c.description = i
		case ColTime:
			c.time = i
		case ColDate:
			c.date = i
		}
	}
	found := c.id >= 0 || c.description >= 0 || c.time >= 0 || c.date >= 0
	return c, found
}

// Decode reads every row of an upload. The format is chosen by the file
// name's extension; anything other than .csv or .xls is opened as a
// workbook.
func Decode(r io.Reader, filename string) ([]attendance.RawEvent, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return decodeCSV(r, filename)
	case ".xls":
		return nil, &attendance.DecodeError{Source: filename, Reason: "legacy .xls workbooks are not supported; save the file as .xlsx"}
	}
	return decodeWorkbook(r, filename)
}

// =============================================================================
// WORKBOOK
// =============================================================================

func decodeWorkbook(r io.Reader, filename string) ([]attendance.RawEvent, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &attendance.DecodeError{Source: filename, Reason: "not a readable workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &attendance.DecodeError{Source: filename, Reason: "workbook has no sheets"}
	}
	name := sheets[0]

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &attendance.DecodeError{Source: filename, Reason: "cannot read sheet " + name, Err: err}
	}
	h := 0
	for h < len(rows) && blank(rows[h]) {
		h++
	}
	if h == len(rows) {
		return nil, nil
	}
	cols, ok := locate(rows[h])
	if !ok {
		return nil, &attendance.DecodeError{Source: filename, Reason: "no attendance columns in header row"}
	}

	typed := func(rowNum, col int, cells []string) attendance.Value {
		if col < 0 || col >= len(cells) || cells[col] == "" {
			return attendance.Value{}
		}
		raw := cells[col]
		axis, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return attendance.InferValue(raw)
		}
		typ, err := f.GetCellType(name, axis)
		if err != nil {
			return attendance.InferValue(raw)
		}
		switch typ {
		case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool, excelize.CellTypeError:
			return attendance.Text(raw)
		default:
			return attendance.InferValue(raw)
		}
	}

	var events []attendance.RawEvent
	for i, cells := range rows[h+1:] {
		if blank(cells) {
			continue
		}
		rowNum := h + i + 2
		events = append(events, attendance.RawEvent{
			Row:         rowNum,
			PersonID:    typed(rowNum, cols.id, cells),
			Description: typed(rowNum, cols.description, cells),
			Time:        typed(rowNum, cols.time, cells),
			Date:        typed(rowNum, cols.date, cells),
		})
	}
	return events, nil
}

// =============================================================================
// CSV
// =============================================================================

func decodeCSV(r io.Reader, filename string) ([]attendance.RawEvent, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var header []string
	for header == nil || blank(header) {
		var err error
		header, err = cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, &attendance.DecodeError{Source: filename, Reason: "invalid csv header", Err: err}
		}
	}
	cols, ok := locate(header)
	if !ok {
		return nil, &attendance.DecodeError{Source: filename, Reason: "no attendance columns in header row"}
	}

	cell := func(col int, cells []string) attendance.Value {
		if col < 0 || col >= len(cells) {
			return attendance.Value{}
		}
		return attendance.InferValue(cells[col])
	}

	var events []attendance.RawEvent
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &attendance.DecodeError{Source: filename, Reason: "invalid csv", Err: err}
		}
		if blank(cells) {
			continue
		}
		// Rows are numbered by source line, counting the empty lines the
		// reader skips.
		rowNum, _ := cr.FieldPos(0)
		events = append(events, attendance.RawEvent{
			Row:         rowNum,
			PersonID:    cell(cols.id, cells),
			Description: cell(cols.description, cells),
			Time:        cell(cols.time, cells),
			Date:        cell(cols.date, cells),
		})
	}
	return events, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// REPORT
// =============================================================================

// WriteReport encodes the export rows as an .xlsx workbook.
func WriteReport(w io.Writer, rows []attendance.ReportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	name := attendance.ReportSheetName
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return err
	}

	header := make([]any, len(attendance.ReportHeaders))
	for i, h := range attendance.ReportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for i, r := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := r.Values()
		if err := f.SetSheetRow(name, axis, &values); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}
