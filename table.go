package datafmt

import (
	"io"
	"strings"
)

// minColumnWidth is the narrowest a table column gets.
const minColumnWidth = 3

// TableOptions configures table rendering.
type TableOptions struct {
	// Width measures cells. Nil means [Width].
	Width WidthFunc
}

// RenderTable lays out ds as a Markdown-style table of the given fields.
// Missing fields render as null.
func RenderTable(ds Dataset, fields []string) string {
	var sb strings.Builder
	_ = WriteTable(&sb, ds, fields, TableOptions{})
	return sb.String()
}

// WriteTable writes [RenderTable] output to w.
//
// Each column is as wide as its widest cell or header, and at least three
// columns. Headers are centered, cells are left-aligned, and every cell is
// padded by one space on each side.
func WriteTable(w io.Writer, ds Dataset, fields []string, opts TableOptions) error {
	measure := opts.Width
	if measure == nil {
		measure = Width
	}

	rows := make([][]string, len(ds))
	for i, rec := range ds {
		row := make([]string, len(fields))
		for j, f := range fields {
			v, _ := rec.Get(f)
			row[j] = v.String()
		}
		rows[i] = row
	}
	widths := columnWidths(fields, rows, measure)

	if err := writeTableRow(w, fields, widths, measure, alignCenter); err != nil {
		return err
	}
	sep := make([]string, len(widths))
	for i, width := range widths {
		sep[i] = strings.Repeat("-", width)
	}
	if err := writeTableRow(w, sep, widths, measure, alignLeft); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeTableRow(w, row, widths, measure, alignLeft); err != nil {
			return err
		}
	}
	return nil
}

func columnWidths(header []string, rows [][]string, measure WidthFunc) []int {
	widths := make([]int, len(header))
	for i, col := range header {
		widths[i] = max(minColumnWidth, measure(col))
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := measure(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func writeTableRow(w io.Writer, cells []string, widths []int, measure WidthFunc, align alignment) error {
	var sb strings.Builder
	sb.WriteString("|")
	for i, width := range widths {
		sb.WriteString(" ")
		sb.WriteString(alignCell(cells[i], width, measure, align))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

type alignment int

const (
	alignLeft alignment = iota
	alignCenter
)

// alignCell pads s to width. Centering puts the odd space on the right.
func alignCell(s string, width int, measure WidthFunc, align alignment) string {
	pad := width - measure(s)
	if pad <= 0 {
		return s
	}
	switch align {
	case alignCenter:
		left := pad / 2
		right := pad - left
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
	default:
		return s + strings.Repeat(" ", pad)
	}
}
