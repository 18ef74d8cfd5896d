package sheet

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	appLog "practicebot/internal/log"
	"practicebot/internal/model"
)

// MonthlySheets are the schedule sheet names, in the order they are read.
var MonthlySheets = []string{
	"1月", "2月", "3月", "4月", "5月", "6月",
	"7月", "8月", "9月", "10月", "11月", "12月",
}

// Workbook is a set of named sheets, each a grid of cells.
type Workbook struct {
	Sheets []Sheet `yaml:"sheets"`
}

type Sheet struct {
	Name string `yaml:"name"`
	Rows []Row  `yaml:"rows"`
}

// Layout describes where the practice table sits inside a sheet.
type Layout struct {
	// HeaderRows are skipped at the top (title and column headings).
	HeaderRows int
	// FooterRows are skipped at the bottom (the "last updated" line).
	FooterRows int
	// FirstColumn is the zero-based column holding the date.
	FirstColumn int
}

// DefaultLayout matches the shared schedule spreadsheet: two heading rows,
// two footer rows and the table starting at column B.
func DefaultLayout() Layout {
	return Layout{HeaderRows: 2, FooterRows: 2, FirstColumn: 1}
}

// DataRows crops s to the practice table.
func (l Layout) DataRows(s Sheet) []Row {
	last := len(s.Rows) - l.FooterRows
	if l.HeaderRows >= last {
		return nil
	}
	out := make([]Row, 0, last-l.HeaderRows)
	for _, r := range s.Rows[l.HeaderRows:last] {
		if l.FirstColumn >= len(r) {
			out = append(out, Row{})
			continue
		}
		out = append(out, r[l.FirstColumn:])
	}
	return out
}

// DecodeWorkbook reads the YAML workbook format. A cell that is not a
// scalar is malformed input; a body that is not YAML at all is a fetch
// failure.
func DecodeWorkbook(data []byte) (Workbook, error) {
	var wb Workbook
	if err := yaml.Unmarshal(data, &wb); err != nil {
		if errors.Is(err, ErrMalformedInput) {
			return Workbook{}, fmt.Errorf("decode workbook: %w", err)
		}
		return Workbook{}, fmt.Errorf("%w: decode workbook: %w", ErrFetch, err)
	}
	return wb, nil
}

// Sheet returns the first sheet called name.
func (wb Workbook) Sheet(name string) (Sheet, bool) {
	for _, s := range wb.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

// WorkbookOptions selects and crops the sheets to parse.
type WorkbookOptions struct {
	Options

	Layout Layout
	// SheetNames lists the sheets to read, in order. Nil means MonthlySheets.
	SheetNames []string
}

// ParseWorkbook parses the selected sheets in SheetNames order and returns
// their practices concatenated. Missing sheets are skipped. Sheets are read
// as one continuous table: a continuation row at the top of a sheet adds
// its members to the last practice of the previous sheet read.
func ParseWorkbook(wb Workbook, opts WorkbookOptions) ([]model.Practice, error) {
	names := opts.SheetNames
	if names == nil {
		names = MonthlySheets
	}

	p := &rowParser{opts: opts.Options}
	read := 0
	for _, name := range names {
		s, ok := wb.Sheet(name)
		if !ok {
			continue
		}
		read++
		before := len(p.builders)
		if err := p.parseSheet(name, opts.Layout.DataRows(s)); err != nil {
			return nil, err
		}
		appLog.Debug("sheet parsed", "sheet", name, "practices", len(p.builders)-before)
	}

	all := p.practices()
	appLog.Info("workbook parsed", "sheets", read, "practices", len(all))
	return all, nil
}
