package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
)

// LoadCSV reads one region-keyed CSV file into a Table. The file's header
// row drives schema discovery; rows keep file order.
func LoadCSV(name, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %q: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // validated per record in NewTable

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse dataset %q: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %q: empty file", name)
	}

	return NewTable(name, records[0], records[1:])
}
