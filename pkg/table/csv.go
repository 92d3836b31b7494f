package table

import (
	"bytes"
	"encoding/csv"
	"io"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/cellentry/pkg/cell"
)

// WriteCSV writes cells as comma-separated UTF-8 text. The header is an
// empty key column followed by Columns.
func WriteCSV(w io.Writer, cells []*cell.Spec) error {
	cw := csv.NewWriter(w)

	header := append([]string{""}, Columns...)
	if err := cw.Write(header); err != nil {
		return pkgerrors.Wrapf(err, "failed to write csv header")
	}
	for _, row := range Rows(cells) {
		if err := cw.Write(row); err != nil {
			return pkgerrors.Wrapf(err, "failed to write csv row %s", row[0])
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return pkgerrors.Wrapf(err, "failed to flush csv")
	}
	return nil
}

// CSV returns the export of cells as bytes.
func CSV(cells []*cell.Spec) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, cells); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
