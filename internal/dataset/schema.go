package dataset

import (
	"sort"
	"strings"
	"time"
)

// Identity column headers shared by all Zillow region exports. Matched
// case-insensitively; anything else is either a period column or a metric.
var identityHeaders = map[string]bool{
	"regionname": true,
	"city":       true,
	"state":      true,
	"metro":      true,
	"countyname": true,
	"regionid":   true,
	"sizerank":   true,
	"regiontype": true,
	"statename":  true,
}

// Layouts accepted for period-labeled columns. History length varies by
// dataset refresh, so discovery never assumes a fixed column count.
var periodLayouts = []string{
	"2006-01-02",
	"2006-01",
	"1/2/2006",
}

// SchemaDescriptor classifies a table's header set.
// PeriodColumns are chronologically ordered regardless of file order.
type SchemaDescriptor struct {
	IdentityColumns []string
	MetricColumns   []string
	PeriodColumns   []string
}

// IsTimeSeries reports whether the table carries period-labeled columns.
func (s SchemaDescriptor) IsTimeSeries() bool {
	return len(s.PeriodColumns) > 0
}

// HasMetric reports whether a snapshot metric column is present.
func (s SchemaDescriptor) HasMetric(name string) bool {
	for _, c := range s.MetricColumns {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// ClassifyHeaders performs the schema discovery pass over a header set,
// splitting identity, metric, and period columns.
func ClassifyHeaders(headers []string) SchemaDescriptor {
	var desc SchemaDescriptor
	periods := make([]periodColumn, 0, len(headers))

	for _, h := range headers {
		trimmed := strings.TrimSpace(h)
		if identityHeaders[strings.ToLower(trimmed)] {
			desc.IdentityColumns = append(desc.IdentityColumns, trimmed)
			continue
		}

		if t, ok := parsePeriod(trimmed); ok {
			periods = append(periods, periodColumn{label: trimmed, at: t})
			continue
		}

		desc.MetricColumns = append(desc.MetricColumns, trimmed)
	}

	sort.Slice(periods, func(i, j int) bool {
		return periods[i].at.Before(periods[j].at)
	})
	for _, p := range periods {
		desc.PeriodColumns = append(desc.PeriodColumns, p.label)
	}

	return desc
}

type periodColumn struct {
	label string
	at    time.Time
}

// parsePeriod reports whether a header label names a time period.
func parsePeriod(label string) (time.Time, bool) {
	for _, layout := range periodLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
