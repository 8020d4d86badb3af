package domain

import (
	"time"

	"github.com/hcid-network/platform/internal/normalize"
)

const (
	// GeneralWindowDays is the maximum incubation period across the VHF
	// family; travel departed more than this many days before onset is
	// resolved outside the window.
	GeneralWindowDays = 21

	// MERSWindowDays is the separate, shorter incubation period for the
	// MERS-CoV notice.
	MERSWindowDays = 14
)

const dateLayout = "2006-01-02"

// mersCountries is the fixed set of countries whose travel triggers the
// separate MERS-CoV assessment notice. Keys are in normalized form.
var mersCountries = map[string]bool{
	"saudi arabia":             true,
	"united arab emirates":     true,
	"qatar":                    true,
	"oman":                     true,
	"kuwait":                   true,
	"bahrain":                  true,
	"jordan":                   true,
	"iraq":                     true,
	"islamic republic of iran": true,
	"yemen":                    true,
}

// DaysBetween returns the whole calendar days from departure to onset.
// Time-of-day is ignored. The second return is false when either date is
// empty or unparseable; callers treat that as "window unknown" and proceed
// to classification.
func DaysBetween(departureDate, onsetDate string) (int, bool) {
	dep, err := time.Parse(dateLayout, departureDate)
	if err != nil {
		return 0, false
	}
	onset, err := time.Parse(dateLayout, onsetDate)
	if err != nil {
		return 0, false
	}

	dep = dep.Truncate(24 * time.Hour)
	onset = onset.Truncate(24 * time.Hour)

	return int(onset.Sub(dep).Hours() / 24), true
}

// OutsideWindow reports whether a departure-to-onset gap rules out the
// general VHF pathway. Negative gaps (onset recorded before departure) are
// deliberately treated as within the window rather than rejected.
func OutsideWindow(days int) bool {
	return days > GeneralWindowDays
}

// MERSNotice reports whether the separate MERS-CoV assessment notice
// applies: a special-risk country left within the MERS incubation period.
// The notice is independent of the general-window tone.
func MERSNotice(country string, departureDate, onsetDate string) bool {
	if !mersCountries[normalize.Country(country)] {
		return false
	}
	days, ok := DaysBetween(departureDate, onsetDate)
	if !ok {
		return false
	}
	return days <= MERSWindowDays
}
