package sheet

import (
	"fmt"
	"time"

	appLog "practicebot/internal/log"
	"practicebot/internal/model"
)

// Column positions within a data row, starting at the date column.
const (
	ColDate = iota
	ColDay
	ColTime
	ColCourt
	ColCourtLabel
	ColMember1
	ColMember2
	ColMember3
	ColMember4
	ColBooker

	RowWidth
)

var columnNames = [RowWidth]string{
	"date", "day", "time", "court", "court_label",
	"member1", "member2", "member3", "member4", "booker",
}

// Options carries the values the parser would otherwise read from the clock.
type Options struct {
	// Year is used for dates written without a year and replaces the year of
	// structured date cells, which spreadsheets often get wrong.
	Year int

	// Location is where practice days are anchored. Nil means time.Local.
	Location *time.Location
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// ParseRows turns data rows into practices in row order. A row with an
// empty date cell continues the previous practice: its non-empty member
// cells are added to that roster. Completely blank rows are skipped.
//
// The first malformed cell aborts the parse with a *MalformedInputError and
// no practices.
func ParseRows(rows []Row, opts Options) ([]model.Practice, error) {
	p := &rowParser{opts: opts}
	if err := p.parseSheet("", rows); err != nil {
		return nil, err
	}
	return p.practices(), nil
}

// rowParser holds the practices built so far. A workbook shares one
// rowParser across its sheets, so a continuation row at the top of a sheet
// extends the last practice of the sheet before it.
type rowParser struct {
	opts     Options
	builders []*model.PracticeBuilder
}

func (p *rowParser) parseSheet(name string, rows []Row) error {
	for i, row := range rows {
		rowNum := i + 1
		if row.IsBlank() {
			continue
		}

		if row.Cell(ColDate).IsEmpty() {
			if len(p.builders) == 0 {
				return malformed(name, rowNum, ColDate, row, errOrphanContinuation)
			}
			p.builders[len(p.builders)-1].AddMembers(members(row)...)
			continue
		}

		b, err := newPractice(name, rowNum, row, p.opts)
		if err != nil {
			return err
		}
		p.builders = append(p.builders, b)
	}
	return nil
}

func (p *rowParser) practices() []model.Practice {
	out := make([]model.Practice, 0, len(p.builders))
	for _, b := range p.builders {
		out = append(out, b.Build())
	}
	return out
}

func newPractice(sheetName string, rowNum int, row Row, opts Options) (*model.PracticeBuilder, error) {
	date, err := practiceDate(row.Cell(ColDate), opts)
	if err != nil {
		return nil, malformed(sheetName, rowNum, ColDate, row, err)
	}

	timeCell := row.Cell(ColTime)
	switch timeCell.Kind {
	case CellText:
	case CellDate:
		return nil, malformed(sheetName, rowNum, ColTime, row, errTimeIsDate)
	default:
		return nil, malformed(sheetName, rowNum, ColTime, row, fmt.Errorf("%w: %s", errUnexpectedKind, timeCell.Kind))
	}
	start, end, err := ParseTimeRange(timeCell.Text)
	if err != nil {
		return nil, malformed(sheetName, rowNum, ColTime, row, err)
	}

	b, err := model.NewPracticeBuilder(
		date, start, end,
		row.Cell(ColCourt).String(),
		row.Cell(ColCourtLabel).String(),
		row.Cell(ColBooker).String(),
		members(row),
	)
	if err != nil {
		return nil, malformed(sheetName, rowNum, ColTime, row, err)
	}
	return b, nil
}

// practiceDate reads the date cell. Structured dates keep only month and
// day; the year comes from opts.
func practiceDate(c Cell, opts Options) (time.Time, error) {
	switch c.Kind {
	case CellDate:
		return calendarDay(opts.Year, c.Date.Month(), c.Date.Day(), opts.location())
	case CellText:
		return ParseDateString(c.Text, opts.Year, opts.location())
	default:
		return time.Time{}, fmt.Errorf("%w: %s", errUnexpectedKind, c.Kind)
	}
}

// members returns the non-empty member cells in column order.
func members(row Row) []string {
	out := make([]string, 0, ColMember4-ColMember1+1)
	for col := ColMember1; col <= ColMember4; col++ {
		if c := row.Cell(col); !c.IsEmpty() {
			out = append(out, c.String())
		}
	}
	return out
}

func malformed(sheetName string, rowNum, col int, row Row, err error) *MalformedInputError {
	e := &MalformedInputError{
		Sheet:  sheetName,
		Row:    rowNum,
		Column: columnNames[col],
		Value:  row.Cell(col).String(),
		Err:    err,
	}
	appLog.Debug("sheet row rejected", "sheet", sheetName, "row", rowNum, "column", e.Column, "reason", err)
	return e
}
