// Package travelhistory builds a clinician-readable narrative from a
// structured travel history: one sentence per visited country plus the
// reported and denied exposures. It shares the country normalizer with the
// risk engine so the same free-text spellings collapse to one place.
package travelhistory

import (
	"fmt"
	"strings"
	"time"

	"github.com/hcid-network/platform/internal/normalize"
	"github.com/hcid-network/platform/internal/shared/types"
)

// Prompt is one exposure question asked per visited country
type Prompt struct {
	Key    string       `json:"key"`
	Text   string       `json:"text"`
	Answer types.Answer `json:"answer,omitempty"`
}

// DefaultPrompts are the exposure prompts asked for every destination
func DefaultPrompts() []Prompt {
	return []Prompt{
		{Key: "rural_travel", Text: "travel to rural areas"},
		{Key: "animal_contact", Text: "contact with animals"},
		{Key: "healthcare_contact", Text: "contact with healthcare facilities"},
		{Key: "funeral_attendance", Text: "attendance at a funeral"},
		{Key: "fresh_water", Text: "fresh water contact"},
		{Key: "insect_bites", Text: "insect bites"},
	}
}

// Entry is one visited country with its dates and exposure answers
type Entry struct {
	Country       string   `json:"country"`
	ArrivalDate   string   `json:"arrival_date,omitempty"`
	DepartureDate string   `json:"departure_date,omitempty"`
	Prompts       []Prompt `json:"prompts,omitempty"`
}

// MarkRemainingNo answers every unanswered prompt with "no". This is the
// bulk action for the common case where a patient denies all remaining
// exposures; explicitly given answers are never overwritten.
func MarkRemainingNo(prompts []Prompt) []Prompt {
	out := make([]Prompt, len(prompts))
	for i, p := range prompts {
		if !p.Answer.Answered() {
			p.Answer = types.No
		}
		out[i] = p
	}
	return out
}

const dateLayout = "2006-01-02"

// formatDate renders an ISO date for prose, passing unparseable input
// through unchanged.
func formatDate(iso string) string {
	d, err := time.Parse(dateLayout, iso)
	if err != nil {
		return iso
	}
	return d.Format("2 January 2006")
}

// Narrative renders the full travel history as ordered prose
func Narrative(entries []Entry) string {
	if len(entries) == 0 {
		return "No travel history recorded."
	}

	var b strings.Builder
	for i, entry := range entries {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(sentence(entry))
	}
	return b.String()
}

// sentence renders one destination with its exposures
func sentence(entry Entry) string {
	var b strings.Builder

	switch {
	case entry.ArrivalDate != "" && entry.DepartureDate != "":
		fmt.Fprintf(&b, "Travelled to %s from %s to %s.",
			entry.Country, formatDate(entry.ArrivalDate), formatDate(entry.DepartureDate))
	case entry.DepartureDate != "":
		fmt.Fprintf(&b, "Travelled to %s, leaving on %s.", entry.Country, formatDate(entry.DepartureDate))
	default:
		fmt.Fprintf(&b, "Travelled to %s.", entry.Country)
	}

	var reported, denied []string
	for _, p := range entry.Prompts {
		switch {
		case p.Answer.IsYes():
			reported = append(reported, p.Text)
		case p.Answer.IsNo():
			denied = append(denied, p.Text)
		}
	}

	if len(reported) > 0 {
		fmt.Fprintf(&b, " Reported %s.", joinProse(reported))
	}
	if len(denied) > 0 {
		fmt.Fprintf(&b, " Denied %s.", joinProse(denied))
	}

	return b.String()
}

// joinProse joins items as "a, b and c"
func joinProse(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

// Countries returns the distinct canonical countries visited, in first-seen
// order. Spelling variants of the same country collapse to one entry.
func Countries(entries []Entry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, entry := range entries {
		key := normalize.Country(entry.Country)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
