package table

import (
	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"

	"github.com/charlie0129/cellentry/pkg/cell"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	keyStyle       = cellStyle.Bold(true)
	highlightStyle = cellStyle.Foreground(lipgloss.Color("10")).Bold(true)
)

// Render draws cells as a bordered table. The largest value of every column
// is highlighted, in every row that holds it.
func Render(cells []*cell.Spec) string {
	maxima := ColumnMax(cells)

	t := lgtable.New().
		Border(lipgloss.NormalBorder()).
		Headers(append([]string{"cell"}, Columns...)...).
		Rows(Rows(cells)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == lgtable.HeaderRow:
				return headerStyle
			case col == 0:
				return keyStyle
			case IsColumnMax(maxima, row, col-1):
				return highlightStyle
			default:
				return cellStyle
			}
		})

	return t.String()
}
