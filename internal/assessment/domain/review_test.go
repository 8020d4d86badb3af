package domain

import (
	"testing"

	"github.com/hcid-network/platform/internal/risktable"
	"github.com/hcid-network/platform/internal/shared/types"
)

func testTable() *risktable.Table {
	return risktable.New(map[string][]risktable.Record{
		"Nigeria": {
			{Disease: "Lassa fever", Evidence: "Widespread human cases", Year: "2024"},
		},
		"Uganda": {
			{Disease: "Ebola virus disease", Evidence: "Sudan ebolavirus outbreak", Year: "2022"},
			{Disease: "CCHF", Evidence: "Sporadic human cases", Year: "2023"},
		},
		"France": {
			{Disease: "No known HCID", Evidence: "No endemic VHF", Year: "2024"},
		},
		"Bolivia": {
			{Disease: "Chapare haemorrhagic fever (travel associated)", Evidence: "Cluster reported", Year: "2019"},
		},
		"Saudi Arabia": {
			{Disease: "No known HCID", Evidence: "MERS-CoV assessed via separate pathway", Year: "2024"},
		},
	}, risktable.Provenance{Source: risktable.SourceFallback})
}

func segment(country, departure string) TravelSegment {
	return TravelSegment{ID: types.NewID(), Country: country, DepartureDate: departure}
}

func TestReviewSegmentOutsideWindow(t *testing.T) {
	// 25 days since departure beats any risk-table content
	review := ReviewSegment(segment("Nigeria", "2024-06-01"), "2024-06-26", testTable())

	if review.Tone != ToneGreen {
		t.Errorf("expected green, got %s", review.Tone)
	}
	if review.Heading != HeadingOutsideWindow {
		t.Errorf("expected %q heading, got %q", HeadingOutsideWindow, review.Heading)
	}
	if review.DaysSinceDeparture == nil || *review.DaysSinceDeparture != 25 {
		t.Errorf("expected 25 days since departure, got %v", review.DaysSinceDeparture)
	}
	if review.Hazards.Any() {
		t.Error("outside-window segment must not carry hazards")
	}
}

func TestReviewSegmentWithinWindow(t *testing.T) {
	review := ReviewSegment(segment("Nigeria", "2024-06-01"), "2024-06-11", testTable())

	if review.Tone != ToneRed {
		t.Errorf("expected red, got %s", review.Tone)
	}
	if review.Heading != HeadingConsider {
		t.Errorf("expected %q heading, got %q", HeadingConsider, review.Heading)
	}
	if !review.Hazards.Lassa {
		t.Error("expected the Lassa hazard to be flagged")
	}
	if len(review.Records) != 1 {
		t.Errorf("expected one record on the card, got %d", len(review.Records))
	}
}

func TestReviewSegmentNoKnownHCIDs(t *testing.T) {
	review := ReviewSegment(segment("France", "2024-06-01"), "2024-06-11", testTable())

	if review.Tone != ToneGreen {
		t.Errorf("expected green, got %s", review.Tone)
	}
	if review.Heading != HeadingNoKnownHCIDs {
		t.Errorf("expected %q heading, got %q", HeadingNoKnownHCIDs, review.Heading)
	}
	if review.Hazards.Any() {
		t.Error("segment must contribute zero required exposure questions")
	}
}

func TestReviewSegmentUnknownCountry(t *testing.T) {
	review := ReviewSegment(segment("Atlantis", "2024-06-01"), "2024-06-11", testTable())

	if review.Tone != ToneGreen || review.Heading != HeadingNoKnownHCIDs {
		t.Errorf("unknown country should resolve green no-known-HCIDs, got %s %q", review.Tone, review.Heading)
	}
}

func TestReviewSegmentTravelAssociatedNote(t *testing.T) {
	review := ReviewSegment(segment("Bolivia", "2024-06-01"), "2024-06-11", testTable())

	if review.Tone != ToneGreen {
		t.Errorf("expected green, got %s", review.Tone)
	}
	if !review.TravelAssociatedNote {
		t.Error("expected the travel-associated note on the card")
	}
}

func TestReviewSegmentMissingDatesProceedsToClassification(t *testing.T) {
	review := ReviewSegment(segment("Nigeria", ""), "2024-06-11", testTable())

	if review.Tone != ToneRed {
		t.Errorf("missing departure date must not resolve outside window, got %s", review.Tone)
	}
	if review.DaysSinceDeparture != nil {
		t.Error("expected no day count when the departure date is missing")
	}
}

func TestReviewSegmentMERSNoticeIndependentOfTone(t *testing.T) {
	// Departure 25 days before onset: outside the general window, but the
	// table in this test uses a departure that is also within the 14-day
	// MERS window via a second segment.
	outside := ReviewSegment(segment("Saudi Arabia", "2024-06-01"), "2024-06-26", testTable())
	if outside.Tone != ToneGreen || outside.Heading != HeadingOutsideWindow {
		t.Fatalf("expected green outside-window, got %s %q", outside.Tone, outside.Heading)
	}
	if outside.MERSNotice {
		t.Error("notice must respect the 14-day MERS window")
	}

	within := ReviewSegment(segment("Saudi Arabia", "2024-06-01"), "2024-06-10", testTable())
	if !within.MERSNotice {
		t.Error("expected the MERS notice within 14 days")
	}
	if within.Tone != ToneGreen || within.Heading != HeadingNoKnownHCIDs {
		t.Errorf("notice must not change the tone, got %s %q", within.Tone, within.Heading)
	}
}

func TestAllGreen(t *testing.T) {
	if AllGreen(nil) {
		t.Error("no reviews must not count as all green")
	}
	if !AllGreen([]SegmentReview{{Tone: ToneGreen}, {Tone: ToneGreen}}) {
		t.Error("expected all green")
	}
	if AllGreen([]SegmentReview{{Tone: ToneGreen}, {Tone: ToneRed}}) {
		t.Error("a red segment must break all-green")
	}
}
