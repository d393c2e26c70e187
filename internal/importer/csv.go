// Package importer decodes bulk-assignment sources into raw (url, kind) rows.
// Validation of the rows themselves belongs to the task service.
package importer

import (
	"encoding/csv"
	"errors"
	"io"
)

// Row is one raw record from an import source, prior to any validation.
type Row struct {
	URL  string
	Kind string
}

// ReadCSV decodes headerless two-column CSV input into rows. Short records
// and blank lines are tolerated; a structurally broken file is an error.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := Row{}
		if len(record) > 0 {
			row.URL = record[0]
		}
		if len(record) > 1 {
			row.Kind = record[1]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
