package table

import (
	"strconv"

	"github.com/charlie0129/cellentry/pkg/cell"
)

// Columns is the stable column order of the cell table, excluding the key column.
var Columns = []string{
	"voltage",
	"current",
	"temp",
	"capacity",
	"min_voltage",
	"max_voltage",
}

const (
	// ExportFilename is the suggested download name of an export.
	ExportFilename = "cell_data.csv"
	// ExportContentType is the MIME type of an export.
	ExportContentType = "text/csv"
)

// Values returns the numeric values of c in Columns order.
func Values(c *cell.Spec) []float64 {
	return []float64{
		c.Voltage,
		c.Current,
		c.Temperature,
		c.Capacity,
		c.MinVoltage,
		c.MaxVoltage,
	}
}

// Rows returns one row per cell, the key first and then the values in
// Columns order.
func Rows(cells []*cell.Spec) [][]string {
	rows := make([][]string, 0, len(cells))
	for _, c := range cells {
		row := make([]string, 0, len(Columns)+1)
		row = append(row, c.Key)
		for _, v := range Values(c) {
			row = append(row, FormatFloat(v))
		}
		rows = append(rows, row)
	}
	return rows
}

// ColumnMax returns, per column, the indexes of every row holding the
// largest value, in row order. Tied rows are all included. It returns nil
// for no cells.
func ColumnMax(cells []*cell.Spec) [][]int {
	if len(cells) == 0 {
		return nil
	}
	best := make([]float64, len(Columns))
	rows := make([][]int, len(Columns))
	for i, c := range cells {
		for col, v := range Values(c) {
			switch {
			case i == 0 || v > best[col]:
				best[col] = v
				rows[col] = []int{i}
			case v == best[col]:
				rows[col] = append(rows[col], i)
			}
		}
	}
	return rows
}

// IsColumnMax reports whether row holds a largest value of col in the
// result of ColumnMax.
func IsColumnMax(maxima [][]int, row, col int) bool {
	if col < 0 || col >= len(maxima) {
		return false
	}
	for _, r := range maxima[col] {
		if r == row {
			return true
		}
	}
	return false
}

// FormatFloat prints v with the fewest digits needed, always keeping at
// least one decimal place ("3.6", "0.0", "5.4").
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s
		}
	}
	return s + ".0"
}
