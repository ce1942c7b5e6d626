package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Region identifies a geographic unit (ZIP code) with its descriptive
// attributes. RegionName is the primary key across all joins.
type Region struct {
	RegionName string
	City       string
	State      string
	Metro      string
}

// Observation is one observed (period, value) pair of a time series.
// Missing cells never produce observations; values are never inferred.
type Observation struct {
	Period time.Time
	Label  string
	Value  float64
}

// Table is one region-keyed dataset: a snapshot table (metric columns) or a
// time series table (period columns). Rows keep file order; lookups go
// through the region index.
type Table struct {
	name    string
	schema  SchemaDescriptor
	colIdx  map[string]int
	periods []periodColumn
	rows    []row
	byID    map[string]int
}

type row struct {
	region Region
	cells  []string
}

// NewTable builds a Table from a header set and raw records. Records shorter
// than the header are rejected; duplicate region codes keep the first row.
func NewTable(name string, headers []string, records [][]string) (*Table, error) {
	schema := ClassifyHeaders(headers)

	t := &Table{
		name:   name,
		schema: schema,
		colIdx: make(map[string]int, len(headers)),
		byID:   make(map[string]int),
	}
	for i, h := range headers {
		t.colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	for _, label := range schema.PeriodColumns {
		at, _ := parsePeriod(label)
		t.periods = append(t.periods, periodColumn{label: label, at: at})
	}

	nameIdx, ok := t.colIdx["regionname"]
	if !ok {
		return nil, fmt.Errorf("dataset %q: missing RegionName column", name)
	}

	for i, rec := range records {
		if len(rec) < len(headers) {
			return nil, fmt.Errorf("dataset %q: record %d has %d fields, want %d", name, i+1, len(rec), len(headers))
		}

		code := strings.TrimSpace(rec[nameIdx])
		if code == "" {
			continue
		}
		if _, dup := t.byID[code]; dup {
			continue
		}

		t.byID[code] = len(t.rows)
		t.rows = append(t.rows, row{
			region: Region{
				RegionName: code,
				City:       t.identity(rec, "city"),
				State:      t.identity(rec, "state"),
				Metro:      t.identity(rec, "metro"),
			},
			cells: rec,
		})
	}

	return t, nil
}

func (t *Table) identity(rec []string, col string) string {
	idx, ok := t.colIdx[col]
	if !ok {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

// Name returns the dataset name.
func (t *Table) Name() string { return t.name }

// Schema returns the table's schema descriptor.
func (t *Table) Schema() SchemaDescriptor { return t.schema }

// Len returns the number of regions in the table.
func (t *Table) Len() int { return len(t.rows) }

// Regions returns all region identities in file order.
func (t *Table) Regions() []Region {
	out := make([]Region, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.region
	}
	return out
}

// Region returns the identity row for a region code.
func (t *Table) Region(code string) (Region, bool) {
	idx, ok := t.byID[code]
	if !ok {
		return Region{}, false
	}
	return t.rows[idx].region, true
}

// Value returns a snapshot metric value for a region. The second return is
// false when the region or the cell is absent.
func (t *Table) Value(code, column string) (float64, bool) {
	idx, ok := t.byID[code]
	if !ok {
		return 0, false
	}
	colIdx, ok := t.colIdx[strings.ToLower(column)]
	if !ok {
		return 0, false
	}
	return parseCell(t.rows[idx].cells[colIdx])
}

// Series returns the chronologically ordered observed values of a region's
// time series. Missing cells are skipped, not interpolated.
func (t *Table) Series(code string) []Observation {
	idx, ok := t.byID[code]
	if !ok {
		return nil
	}

	cells := t.rows[idx].cells
	out := make([]Observation, 0, len(t.periods))
	for _, p := range t.periods {
		v, ok := parseCell(cells[t.colIdx[strings.ToLower(p.label)]])
		if !ok {
			continue
		}
		out = append(out, Observation{Period: p.at, Label: p.label, Value: v})
	}
	return out
}

// LatestValue returns the most recent observed value of a region's series.
func (t *Table) LatestValue(code string) (float64, bool) {
	obs := t.Series(code)
	if len(obs) == 0 {
		return 0, false
	}
	return obs[len(obs)-1].Value, true
}

// LatestPeriod returns the label of the newest period column, or "" for
// snapshot tables.
func (t *Table) LatestPeriod() string {
	if len(t.periods) == 0 {
		return ""
	}
	return t.periods[len(t.periods)-1].label
}

func parseCell(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
