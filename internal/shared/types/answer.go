package types

import "fmt"

// Answer is the tri-state value of a questionnaire question. The zero value
// means the question has not been answered yet.
type Answer string

const (
	Unanswered Answer = ""
	Yes        Answer = "yes"
	No         Answer = "no"
)

// ParseAnswer parses a user-supplied answer string
func ParseAnswer(s string) (Answer, error) {
	switch Answer(s) {
	case Unanswered, Yes, No:
		return Answer(s), nil
	default:
		return Unanswered, fmt.Errorf("invalid answer %q: must be yes, no or empty", s)
	}
}

// Answered reports whether the answer is exactly yes or no
func (a Answer) Answered() bool {
	return a == Yes || a == No
}

// IsYes reports whether the answer is yes
func (a Answer) IsYes() bool {
	return a == Yes
}

// IsNo reports whether the answer is no
func (a Answer) IsNo() bool {
	return a == No
}
