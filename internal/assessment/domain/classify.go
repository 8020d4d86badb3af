package domain

import (
	"regexp"
	"strings"

	"github.com/hcid-network/platform/internal/risktable"
)

// Classification is the result of filtering and bucketing one country's
// disease-evidence records.
type Classification struct {
	// Filtered keeps the records that survived the exclusion predicate
	Filtered []risktable.Record `json:"filtered"`

	// Hazards reports which exposure-question buckets matched
	Hazards HazardSet `json:"hazards"`

	// Unmatched lists disease labels of surviving records that matched no
	// bucket pattern, kept for audit tooling
	Unmatched []string `json:"unmatched,omitempty"`

	// TravelAssociated reports whether any record was excluded for being
	// travel-associated only
	TravelAssociated bool `json:"travel_associated,omitempty"`
}

var (
	importLinkedPattern = regexp.MustCompile(`(?i)imported cases only|associated with a case import|import[-\s]?related`)

	lassaPattern        = regexp.MustCompile(`(?i)lassa`)
	ebolaMarburgPattern = regexp.MustCompile(`(?i)ebolavirus|ebola virus|ebola|e\.v\.d|marburg`)
	cchfPattern         = regexp.MustCompile(`(?i)cchf|crimea(n)?[-\s]congo`)
)

// Excluded reports whether a record should be dropped before bucketing:
// no-known-HCID placeholders, travel-associated-only diseases, and
// import-linked evidence all contribute nothing to the exposure questions.
func Excluded(rec risktable.Record) bool {
	disease := strings.ToLower(rec.Disease)
	if strings.Contains(disease, "no known hcid") {
		return true
	}
	if strings.Contains(disease, "travel associated") {
		return true
	}
	return importLinkedPattern.MatchString(rec.Evidence)
}

// Classify filters a country's records and buckets the survivors into
// hazard categories. It is total: nil input yields an empty classification,
// and a record may match zero, one, or several buckets.
func Classify(records []risktable.Record) Classification {
	var c Classification

	for _, rec := range records {
		if Excluded(rec) {
			if strings.Contains(strings.ToLower(rec.Disease), "travel associated") {
				c.TravelAssociated = true
			}
			continue
		}

		c.Filtered = append(c.Filtered, rec)

		matched := false
		if lassaPattern.MatchString(rec.Disease) {
			c.Hazards.Lassa = true
			matched = true
		}
		if ebolaMarburgPattern.MatchString(rec.Disease) {
			c.Hazards.EbolaMarburg = true
			matched = true
		}
		if cchfPattern.MatchString(rec.Disease) {
			c.Hazards.CCHF = true
			matched = true
		}
		if !matched {
			c.Unmatched = append(c.Unmatched, rec.Disease)
		}
	}

	return c
}
