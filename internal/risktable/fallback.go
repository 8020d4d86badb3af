package risktable

import "time"

// fallbackCapturedAt is the date the bundled snapshot was taken from the
// published country risk table.
var fallbackCapturedAt = time.Date(2024, time.November, 4, 0, 0, 0, 0, time.UTC)

// Fallback returns the compiled-in snapshot of the country risk table. The
// service runs on this table whenever the live registry is unavailable; the
// engine behaves identically, only the displayed provenance differs.
func Fallback() *Table {
	captured := fallbackCapturedAt
	return New(fallbackEntries, Provenance{
		Source:     SourceFallback,
		CapturedAt: &captured,
	})
}

// FallbackAfterError returns the snapshot labelled as having been selected
// because a live refresh failed.
func FallbackAfterError() *Table {
	captured := fallbackCapturedAt
	return New(fallbackEntries, Provenance{
		Source:     SourceFallbackError,
		CapturedAt: &captured,
	})
}

var fallbackEntries = map[string][]Record{
	"Nigeria": {
		{Disease: "Lassa fever", Evidence: "Widespread human cases, seasonal outbreaks", Year: "2024"},
		{Disease: "CCHF", Evidence: "Serological evidence in livestock", Year: "2019"},
	},
	"Sierra Leone": {
		{Disease: "Lassa fever", Evidence: "Endemic, sustained human cases", Year: "2023"},
		{Disease: "Ebola virus disease", Evidence: "Outbreak 2014-2016", Year: "2016"},
	},
	"Guinea": {
		{Disease: "Lassa fever", Evidence: "Human cases reported", Year: "2021"},
		{Disease: "Ebola virus disease", Evidence: "Outbreak 2021", Year: "2021"},
		{Disease: "Marburg virus disease", Evidence: "Single confirmed case", Year: "2021"},
	},
	"Liberia": {
		{Disease: "Lassa fever", Evidence: "Endemic, human cases", Year: "2024"},
		{Disease: "Ebola virus disease", Evidence: "Outbreak 2014-2016", Year: "2016"},
	},
	"Democratic Republic of the Congo": {
		{Disease: "Ebola virus disease", Evidence: "Recurrent outbreaks", Year: "2022"},
		{Disease: "CCHF", Evidence: "Sporadic human cases", Year: "2019"},
	},
	"Uganda": {
		{Disease: "Ebola virus disease", Evidence: "Sudan ebolavirus outbreak", Year: "2022"},
		{Disease: "Marburg virus disease", Evidence: "Human cases", Year: "2017"},
		{Disease: "CCHF", Evidence: "Sporadic human cases", Year: "2023"},
	},
	"Ghana": {
		{Disease: "Marburg virus disease", Evidence: "Two confirmed cases", Year: "2022"},
	},
	"Tanzania": {
		{Disease: "Marburg virus disease", Evidence: "Outbreak in Kagera region", Year: "2023"},
	},
	"Equatorial Guinea": {
		{Disease: "Marburg virus disease", Evidence: "Confirmed outbreak", Year: "2023"},
	},
	"Turkey": {
		{Disease: "CCHF", Evidence: "Endemic, annual human cases", Year: "2024"},
	},
	"Pakistan": {
		{Disease: "CCHF", Evidence: "Annual human cases", Year: "2024"},
	},
	"Afghanistan": {
		{Disease: "CCHF", Evidence: "Human cases reported", Year: "2023"},
	},
	"Iraq": {
		{Disease: "CCHF", Evidence: "Outbreak with human cases", Year: "2022"},
	},
	"Kazakhstan": {
		{Disease: "CCHF", Evidence: "Human cases in southern regions", Year: "2022"},
	},
	"Bulgaria": {
		{Disease: "CCHF", Evidence: "Sporadic human cases", Year: "2021"},
	},
	"Spain": {
		{Disease: "CCHF", Evidence: "Sporadic autochthonous human cases", Year: "2023"},
	},
	"Benin": {
		{Disease: "Lassa fever", Evidence: "Human cases reported", Year: "2023"},
	},
	"Togo": {
		{Disease: "Lassa fever", Evidence: "Human cases reported", Year: "2022"},
	},
	"Mali": {
		{Disease: "Lassa fever", Evidence: "Sporadic human cases", Year: "2021"},
		{Disease: "CCHF", Evidence: "Imported cases only, associated with a case import from a neighbouring country", Year: "2020"},
	},
	"Senegal": {
		{Disease: "CCHF", Evidence: "Serological evidence; rare human cases", Year: "2022"},
	},
	"South Africa": {
		{Disease: "CCHF", Evidence: "Sporadic human cases", Year: "2023"},
	},
	"Saudi Arabia": {
		{Disease: "No known HCID", Evidence: "MERS-CoV assessed via separate pathway", Year: "2024"},
	},
	"United Arab Emirates": {
		{Disease: "No known HCID", Evidence: "MERS-CoV assessed via separate pathway", Year: "2024"},
	},
	"France": {
		{Disease: "No known HCID", Evidence: "No endemic VHF", Year: "2024"},
	},
	"Germany": {
		{Disease: "No known HCID", Evidence: "No endemic VHF", Year: "2024"},
	},
	"India": {
		{Disease: "CCHF", Evidence: "Human cases in Gujarat", Year: "2023"},
		{Disease: "Nipah virus infection", Evidence: "Outbreaks in Kerala", Year: "2023"},
	},
	"Bangladesh": {
		{Disease: "Nipah virus infection", Evidence: "Annual human cases", Year: "2024"},
	},
	"Bolivia": {
		{Disease: "Chapare haemorrhagic fever (travel associated)", Evidence: "Cluster reported", Year: "2019"},
	},
	"China": {
		{Disease: "SFTS (travel associated)", Evidence: "Regional human cases", Year: "2023"},
	},
}
