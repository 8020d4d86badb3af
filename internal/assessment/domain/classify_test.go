package domain

import (
	"reflect"
	"testing"

	"github.com/hcid-network/platform/internal/risktable"
)

func TestClassifyFiltering(t *testing.T) {
	tests := []struct {
		name     string
		records  []risktable.Record
		filtered int
		travel   bool
	}{
		{
			name: "no known HCID excluded",
			records: []risktable.Record{
				{Disease: "No known HCID", Evidence: "No endemic VHF", Year: "2024"},
			},
			filtered: 0,
		},
		{
			name: "travel associated excluded and noted",
			records: []risktable.Record{
				{Disease: "SFTS (travel associated)", Evidence: "Regional human cases", Year: "2023"},
			},
			filtered: 0,
			travel:   true,
		},
		{
			name: "imported cases only excluded",
			records: []risktable.Record{
				{Disease: "CCHF", Evidence: "Imported cases only, associated with a case import", Year: "2020"},
			},
			filtered: 0,
		},
		{
			name: "import-related evidence excluded",
			records: []risktable.Record{
				{Disease: "Lassa fever", Evidence: "Import related cluster", Year: "2019"},
			},
			filtered: 0,
		},
		{
			name: "endemic record survives",
			records: []risktable.Record{
				{Disease: "Lassa fever", Evidence: "Widespread human cases", Year: "2024"},
			},
			filtered: 1,
		},
		{
			name: "mixed list keeps only relevant records",
			records: []risktable.Record{
				{Disease: "Lassa fever", Evidence: "Endemic", Year: "2024"},
				{Disease: "No known HCID", Evidence: "", Year: ""},
				{Disease: "CCHF", Evidence: "Imported cases only", Year: "2020"},
			},
			filtered: 1,
		},
		{
			name:     "nil input yields empty classification",
			records:  nil,
			filtered: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.records)
			if len(c.Filtered) != tt.filtered {
				t.Errorf("expected %d filtered records, got %d", tt.filtered, len(c.Filtered))
			}
			if c.TravelAssociated != tt.travel {
				t.Errorf("expected travel associated %v, got %v", tt.travel, c.TravelAssociated)
			}
		})
	}
}

func TestClassifyBucketing(t *testing.T) {
	tests := []struct {
		name    string
		disease string
		want    HazardSet
	}{
		{"lassa fever", "Lassa fever", HazardSet{Lassa: true}},
		{"ebola virus disease", "Ebola virus disease", HazardSet{EbolaMarburg: true}},
		{"sudan ebolavirus", "Sudan ebolavirus", HazardSet{EbolaMarburg: true}},
		{"dotted abbreviation", "E.V.D", HazardSet{EbolaMarburg: true}},
		{"marburg", "Marburg virus disease", HazardSet{EbolaMarburg: true}},
		{"cchf acronym", "CCHF", HazardSet{CCHF: true}},
		{"crimean-congo spelled out", "Crimean-Congo haemorrhagic fever", HazardSet{CCHF: true}},
		{"crimea congo space variant", "Crimea Congo fever", HazardSet{CCHF: true}},
		{"case insensitive", "lassa FEVER", HazardSet{Lassa: true}},
		{"no bucket", "Nipah virus infection", HazardSet{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify([]risktable.Record{{Disease: tt.disease, Evidence: "Human cases", Year: "2024"}})
			if c.Hazards != tt.want {
				t.Errorf("expected hazards %+v, got %+v", tt.want, c.Hazards)
			}
		})
	}
}

func TestClassifyUnmatchedDiagnostic(t *testing.T) {
	c := Classify([]risktable.Record{
		{Disease: "Nipah virus infection", Evidence: "Annual human cases", Year: "2024"},
		{Disease: "Lassa fever", Evidence: "Endemic", Year: "2024"},
	})

	if len(c.Unmatched) != 1 || c.Unmatched[0] != "Nipah virus infection" {
		t.Errorf("expected Nipah in unmatched diagnostics, got %v", c.Unmatched)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	records := []risktable.Record{
		{Disease: "Lassa fever", Evidence: "Endemic", Year: "2024"},
		{Disease: "No known HCID", Evidence: "", Year: ""},
		{Disease: "Marburg virus disease", Evidence: "Outbreak", Year: "2023"},
		{Disease: "CCHF", Evidence: "Imported cases only", Year: "2020"},
	}

	first := Classify(records)
	second := Classify(first.Filtered)

	if !reflect.DeepEqual(first.Filtered, second.Filtered) {
		t.Errorf("reclassifying filtered output changed it: %v vs %v", first.Filtered, second.Filtered)
	}
	if first.Hazards != second.Hazards {
		t.Errorf("reclassifying filtered output changed hazards: %+v vs %+v", first.Hazards, second.Hazards)
	}
}

func TestClassifyMultipleBuckets(t *testing.T) {
	c := Classify([]risktable.Record{
		{Disease: "Lassa fever", Evidence: "Endemic", Year: "2024"},
		{Disease: "Ebola virus disease", Evidence: "Outbreak", Year: "2022"},
		{Disease: "CCHF", Evidence: "Human cases", Year: "2023"},
	})

	want := HazardSet{Lassa: true, EbolaMarburg: true, CCHF: true}
	if c.Hazards != want {
		t.Errorf("expected all hazards set, got %+v", c.Hazards)
	}
	if !c.Hazards.Any() {
		t.Error("expected Any to report true")
	}
}
