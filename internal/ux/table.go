package ux

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Tabular is data the text formatter renders as a table
type Tabular interface {
	Headers() []string
	Rows() [][]string
}

// Table is a ready-made Tabular
type Table struct {
	Head []string
	Body [][]string
	// Footer is printed under the table, e.g. paging information
	Footer string
}

// Headers implements Tabular
func (t Table) Headers() []string { return t.Head }

// Rows implements Tabular
func (t Table) Rows() [][]string { return t.Body }

// String renders the table without color
func (t Table) String() string {
	return RenderTable(t, true)
}

// KeyValues is a two-column property list
type KeyValues [][2]string

// Headers implements Tabular
func (kv KeyValues) Headers() []string { return nil }

// Rows implements Tabular
func (kv KeyValues) Rows() [][]string {
	rows := make([][]string, 0, len(kv))
	for _, pair := range kv {
		rows = append(rows, []string{pair[0], pair[1]})
	}
	return rows
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// RenderTable renders t with a rounded border
func RenderTable(t Tabular, noColor bool) string {
	headers := t.Headers()
	rows := t.Rows()
	if len(rows) == 0 && len(headers) > 0 {
		return "No results."
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Rows(rows...)

	if len(headers) > 0 {
		tbl = tbl.Headers(headers...)
	} else {
		// property list: no header, no inner column rule
		tbl = tbl.BorderColumn(false)
	}

	if !noColor {
		keyed := len(headers) == 0
		tbl = tbl.BorderStyle(borderStyle).StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case keyed && col == 0:
				return keyStyle
			default:
				return cellStyle
			}
		})
	} else {
		tbl = tbl.StyleFunc(func(row, col int) lipgloss.Style { return cellStyle })
	}

	out := tbl.String()
	if tb, ok := t.(Table); ok && tb.Footer != "" {
		out += "\n" + tb.Footer
	}
	return strings.TrimRight(out, "\n")
}
