package sheet

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// CellKind tells which of the Cell value fields is meaningful.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellDate
	CellNumber
)

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellText:
		return "text"
	case CellDate:
		return "date"
	case CellNumber:
		return "number"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Cell is one spreadsheet value. Spreadsheet sources hand back text,
// structured dates or numbers depending on how the cell was typed in.
type Cell struct {
	Kind   CellKind
	Text   string
	Date   time.Time
	Number float64
}

// Text builds a text cell; the empty string gives an empty cell.
func Text(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

func Date(t time.Time) Cell { return Cell{Kind: CellDate, Date: t} }

func Number(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }

func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// String renders the cell as display text.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellDate:
		return c.Date.Format("2006-01-02")
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// UnmarshalYAML keeps the YAML scalar type: unquoted timestamps become date
// cells and numbers become number cells, matching what a spreadsheet export
// produces for auto-formatted cells.
func (c *Cell) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: cell must be a scalar", ErrMalformedInput, node.Line)
	}
	switch node.ShortTag() {
	case "!!null":
		*c = Cell{}
	case "!!timestamp":
		var t time.Time
		if err := node.Decode(&t); err != nil {
			return err
		}
		*c = Date(t)
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		*c = Number(f)
	default:
		*c = Text(node.Value)
	}
	return nil
}

// Row is one spreadsheet line.
type Row []Cell

// Cell returns the i-th cell, or an empty cell past the end of the row.
func (r Row) Cell(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// IsBlank reports whether every cell of r is empty.
func (r Row) IsBlank() bool {
	for _, c := range r {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
