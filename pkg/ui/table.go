package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Align controls how a cell is padded within its column
type Align string

const (
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
	AlignCenter Align = "center"
)

// TableColumn represents a column in the table
type TableColumn struct {
	Header string
	Width  int // minimum width
	Align  Align
}

// Table renders rows of possibly styled cells. Widths are measured without
// escape sequences, rows alternate between StyleTableRow and
// StyleTableRowAlt, and an optional footer is rendered subtly below.
type Table struct {
	Columns []TableColumn
	Rows    [][]string
	Footer  string
}

// NewTable creates a new table with specified columns
func NewTable(columns []TableColumn) *Table {
	return &Table{
		Columns: columns,
		Rows:    [][]string{},
	}
}

// AddRow adds a row; missing cells render empty and extra cells are dropped
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

func (t *Table) widths() []int {
	w := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		w[i] = max(col.Width, lipgloss.Width(col.Header))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(w) {
				w[i] = max(w[i], lipgloss.Width(cell))
			}
		}
	}
	return w
}

// Render renders the table as a string
func (t *Table) Render() string {
	if len(t.Columns) == 0 {
		return ""
	}

	var b strings.Builder
	widths := t.widths()

	line := func(style lipgloss.Style, cell func(i int) (string, Align)) {
		parts := make([]string, len(t.Columns))
		for i := range t.Columns {
			s, align := cell(i)
			parts[i] = padString(s, widths[i], align)
		}
		b.WriteString(style.Render(strings.Join(parts, "  ")))
		b.WriteString("\n")
	}

	line(StyleTableHeader, func(i int) (string, Align) {
		return t.Columns[i].Header, AlignLeft
	})
	line(StyleTableBorder, func(i int) (string, Align) {
		return strings.Repeat("─", widths[i]), AlignLeft
	})

	for idx, row := range t.Rows {
		style := StyleTableRow
		if idx%2 == 1 {
			style = StyleTableRowAlt
		}
		line(style, func(i int) (string, Align) {
			if i >= len(row) {
				return "", AlignLeft
			}
			return row[i], t.Columns[i].Align
		})
	}

	if t.Footer != "" {
		b.WriteString("\n")
		b.WriteString(StyleSubtle.Render(t.Footer))
		b.WriteString("\n")
	}

	return b.String()
}

// padString pads a string to the specified display width with alignment.
// Styled cells are measured without their escape sequences.
func padString(s string, width int, align Align) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}

	padding := width - w

	switch align {
	case AlignRight:
		return strings.Repeat(" ", padding) + s
	case AlignCenter:
		leftPad := padding / 2
		rightPad := padding - leftPad
		return strings.Repeat(" ", leftPad) + s + strings.Repeat(" ", rightPad)
	default:
		return s + strings.Repeat(" ", padding)
	}
}

// Truncate shortens s to at most n runes, ending with "..."
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// TruncatePath shortens p to at most n runes by dropping leading
// characters, so the file name stays visible
func TruncatePath(p string, n int) string {
	r := []rune(p)
	if len(r) <= n {
		return p
	}
	if n <= 3 {
		return string(r[len(r)-n:])
	}
	return "..." + string(r[len(r)-(n-3):])
}

// RenderList renders items as an indented bulleted list under a heading
func RenderList(heading string, items []string) string {
	var b strings.Builder
	if heading != "" {
		b.WriteString(StyleHeader.Render(heading))
		b.WriteString("\n")
	}
	for _, item := range items {
		b.WriteString(StyleInfo.Render("  • "))
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderKeyValue renders a key-value pair
func RenderKeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s",
		StyleAccent.Render(key),
		value,
	)
}
