package formatter

import (
	"fmt"
	"strings"
)

// Table renders rows with left-aligned, padded columns. Widths follow the
// longest cell per column.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			padded := fmt.Sprintf("%-*s", widths[i], cell)
			if style != nil {
				padded = style(padded)
			}
			b.WriteString(padded)
		}
		b.WriteString("\n")
	}

	headerStyle := func(s string) string {
		if !ColorEnabled() {
			return s
		}
		return StyleHeader.Render(s)
	}
	writeRow(headers, headerStyle)
	for _, row := range rows {
		writeRow(row, nil)
	}
	return b.String()
}

// Percent formats a coverage percentage for display.
func Percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}
