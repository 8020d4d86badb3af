// Package risktable holds the country risk lookup consumed by the
// assessment engine: a mapping from canonical country name to the disease
// evidence records published for that country, together with provenance
// describing where the mapping came from.
package risktable

import (
	"sort"
	"time"

	"github.com/hcid-network/platform/internal/normalize"
)

// Record is one disease evidence row for a country, carried verbatim from
// the source table. The engine never mutates records.
type Record struct {
	Disease  string `json:"disease"`
	Evidence string `json:"evidence"`
	Year     string `json:"year"`
}

// Source identifies where the active table came from
type Source string

const (
	SourceLive          Source = "live"
	SourceFallback      Source = "fallback"
	SourceFallbackError Source = "fallback-error"
)

// Provenance describes the origin of the active table. It is attached to
// output for display only and never participates in decision logic.
type Provenance struct {
	Source     Source     `json:"source"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
}

// Table is an immutable country risk lookup
type Table struct {
	provenance Provenance
	entries    map[string][]Record
}

// New builds a table from raw country names; keys are canonicalized once at
// construction so lookups are a plain map read.
func New(entries map[string][]Record, provenance Provenance) *Table {
	canonical := make(map[string][]Record, len(entries))
	for name, records := range entries {
		key := normalize.Country(name)
		if key == "" {
			continue
		}
		canonical[key] = append(canonical[key], records...)
	}
	return &Table{provenance: provenance, entries: canonical}
}

// Lookup returns the records for a country. Unknown countries return nil,
// which the classifier resolves as "no known HCIDs" rather than an error.
func (t *Table) Lookup(name string) []Record {
	return t.entries[normalize.Country(name)]
}

// Countries returns the sorted canonical country keys
func (t *Table) Countries() []string {
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of countries in the table
func (t *Table) Len() int {
	return len(t.entries)
}

// Provenance returns the table's origin descriptor
func (t *Table) Provenance() Provenance {
	return t.provenance
}
