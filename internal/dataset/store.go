package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
)

// Fixed dataset names the scoring pipeline consumes.
const (
	HomeValues    = "zhvi_zip"        // home value index, time series
	DaysToPending = "days_to_pending" // inventory snapshot
	PriceCuts     = "price_cuts"      // price-cut frequency snapshot
	SaleToList    = "sale_to_list"    // sale-to-list ratio snapshot
)

// Snapshot metric columns expected per dataset.
const (
	ColDaysToPending   = "days_to_pending"
	ColPriceCutPct     = "price_cut_pct"
	ColSaleToListRatio = "sale_to_list_ratio"
)

// MissingDatasetError reports a required dataset that is absent or carries a
// malformed schema.
type MissingDatasetError struct {
	Name   string
	Reason string
}

func (e *MissingDatasetError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("required dataset %q is missing", e.Name)
	}
	return fmt.Sprintf("required dataset %q is unusable: %s", e.Name, e.Reason)
}

// Store holds the fixed set of region-indexed tables the engine scores from.
// Construction validates every required dataset so scoring never has to.
type Store struct {
	tables map[string]*Table
}

// NewStore validates and wraps a dataset mapping.
func NewStore(tables map[string]*Table) (*Store, error) {
	s := &Store{tables: tables}

	checks := []struct {
		name     string
		validate func(*Table) string
	}{
		{HomeValues, func(t *Table) string {
			if !t.Schema().IsTimeSeries() {
				return "no period-labeled columns found"
			}
			return ""
		}},
		{DaysToPending, snapshotCheck(ColDaysToPending)},
		{PriceCuts, snapshotCheck(ColPriceCutPct)},
		{SaleToList, snapshotCheck(ColSaleToListRatio)},
	}

	for _, c := range checks {
		t, ok := tables[c.name]
		if !ok || t == nil {
			return nil, &MissingDatasetError{Name: c.name}
		}
		if reason := c.validate(t); reason != "" {
			return nil, &MissingDatasetError{Name: c.name, Reason: reason}
		}
	}

	return s, nil
}

func snapshotCheck(column string) func(*Table) string {
	return func(t *Table) string {
		if !t.Schema().HasMetric(column) {
			return fmt.Sprintf("missing metric column %q", column)
		}
		return ""
	}
}

// LoadDir loads every required dataset from <name>.csv files in dir.
func LoadDir(dir string) (*Store, error) {
	tables := make(map[string]*Table)
	for _, name := range []string{HomeValues, DaysToPending, PriceCuts, SaleToList} {
		t, err := LoadCSV(name, filepath.Join(dir, name+".csv"))
		if err != nil {
			return nil, err
		}
		tables[name] = t
	}
	return NewStore(tables)
}

// Table returns a dataset by name.
func (s *Store) Table(name string) (*Table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, &MissingDatasetError{Name: name}
	}
	return t, nil
}

// Fingerprint returns a deterministic freshness token over the store's
// contents: dataset names, row counts, and newest period labels. Cache keys
// for scored results include it so stale entries die on refresh.
func (s *Store) Fingerprint() string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		t := s.tables[name]
		fmt.Fprintf(h, "%s:%d:%s;", name, t.Len(), t.LatestPeriod())
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
