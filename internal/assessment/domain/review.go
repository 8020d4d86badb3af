package domain

import (
	"github.com/hcid-network/platform/internal/risktable"
)

// Review headings shown on the per-country cards
const (
	HeadingOutsideWindow = "Outside incubation window"
	HeadingNoKnownHCIDs  = "No known HCIDs"
	HeadingConsider      = "Consider the following"
)

// ReviewSegment classifies one travel segment against the risk table. The
// window rule runs first and short-circuits classification; the MERS notice
// is evaluated independently and can accompany any tone.
func ReviewSegment(seg TravelSegment, onsetDate string, table *risktable.Table) SegmentReview {
	review := SegmentReview{
		SegmentID:  seg.ID,
		Country:    seg.Country,
		MERSNotice: MERSNotice(seg.Country, seg.DepartureDate, onsetDate),
	}

	if days, ok := DaysBetween(seg.DepartureDate, onsetDate); ok {
		review.DaysSinceDeparture = &days
		if OutsideWindow(days) {
			review.Tone = ToneGreen
			review.Heading = HeadingOutsideWindow
			return review
		}
	}

	classification := Classify(table.Lookup(seg.Country))
	review.TravelAssociatedNote = classification.TravelAssociated
	review.Unmatched = classification.Unmatched

	if len(classification.Filtered) == 0 {
		review.Tone = ToneGreen
		review.Heading = HeadingNoKnownHCIDs
		return review
	}

	review.Tone = ToneRed
	review.Heading = HeadingConsider
	review.Records = classification.Filtered
	review.Hazards = classification.Hazards
	return review
}

// ReviewAll classifies every segment in order
func ReviewAll(segments []TravelSegment, onsetDate string, table *risktable.Table) []SegmentReview {
	reviews := make([]SegmentReview, 0, len(segments))
	for _, seg := range segments {
		reviews = append(reviews, ReviewSegment(seg, onsetDate, table))
	}
	return reviews
}

// AllGreen reports whether every reviewed segment resolved green, which
// makes the assessment terminal at the review stage.
func AllGreen(reviews []SegmentReview) bool {
	for _, r := range reviews {
		if r.Tone != ToneGreen {
			return false
		}
	}
	return len(reviews) > 0
}
