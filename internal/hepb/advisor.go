// Package hepb implements the hepatitis B management advisor: a single-page
// form whose serology inputs map deterministically onto a management
// recommendation. Unlike the travel risk assessment there is no staged
// state machine; one evaluation covers the whole form.
package hepb

import "fmt"

// Surface antigen and e-antigen results
type Serology string

const (
	SerologyPositive Serology = "positive"
	SerologyNegative Serology = "negative"
)

// ALTLevel is the reported alanine aminotransferase band
type ALTLevel string

const (
	ALTNormal   ALTLevel = "normal"
	ALTElevated ALTLevel = "elevated"
)

// Fibrosis is the assessed liver fibrosis stage
type Fibrosis string

const (
	FibrosisNone        Fibrosis = "none"
	FibrosisSignificant Fibrosis = "significant"
	FibrosisCirrhosis   Fibrosis = "cirrhosis"
)

// DNA thresholds in IU/mL from the management guideline
const (
	dnaLowThreshold  = 2000
	dnaHighThreshold = 20000
)

// Input is the completed serology form
type Input struct {
	HBsAg    Serology `json:"hbsag"`
	HBeAg    Serology `json:"hbeag"`
	ALT      ALTLevel `json:"alt"`
	DNALevel int64    `json:"dna_level"`
	Fibrosis Fibrosis `json:"fibrosis"`
}

// Validate checks the form fields hold known values
func (in Input) Validate() error {
	switch in.HBsAg {
	case SerologyPositive, SerologyNegative:
	default:
		return fmt.Errorf("invalid HBsAg result %q", in.HBsAg)
	}
	switch in.HBeAg {
	case SerologyPositive, SerologyNegative, "":
	default:
		return fmt.Errorf("invalid HBeAg result %q", in.HBeAg)
	}
	switch in.ALT {
	case ALTNormal, ALTElevated, "":
	default:
		return fmt.Errorf("invalid ALT level %q", in.ALT)
	}
	switch in.Fibrosis {
	case FibrosisNone, FibrosisSignificant, FibrosisCirrhosis, "":
	default:
		return fmt.Errorf("invalid fibrosis stage %q", in.Fibrosis)
	}
	if in.DNALevel < 0 {
		return fmt.Errorf("DNA level cannot be negative")
	}
	return nil
}

// Category is the management pathway
type Category string

const (
	CategoryNotChronic Category = "not_chronic"
	CategoryMonitor    Category = "monitor"
	CategoryAssess     Category = "assess_for_treatment"
	CategoryTreat      Category = "treat"
)

// Advice is the advisor's output
type Advice struct {
	Category        Category `json:"category"`
	Recommendations []string `json:"recommendations"`
}

// Evaluate maps the form onto a management recommendation. Rules are
// ordered most to least severe; the first match wins.
func Evaluate(in Input) Advice {
	if in.HBsAg == SerologyNegative {
		return Advice{
			Category: CategoryNotChronic,
			Recommendations: []string{
				"Chronic hepatitis B not present",
				"Offer vaccination if non-immune",
			},
		}
	}

	switch {
	case in.Fibrosis == FibrosisCirrhosis && in.DNALevel > 0:
		return Advice{
			Category: CategoryTreat,
			Recommendations: []string{
				"Start antiviral treatment regardless of ALT or DNA level",
				"Enrol in HCC surveillance",
				"Refer to hepatology",
			},
		}

	case in.DNALevel > dnaLowThreshold && in.ALT == ALTElevated:
		return Advice{
			Category: CategoryTreat,
			Recommendations: []string{
				"Start antiviral treatment",
				"Repeat liver function tests after treatment initiation",
			},
		}

	case in.Fibrosis == FibrosisSignificant:
		return Advice{
			Category: CategoryAssess,
			Recommendations: []string{
				"Assess for treatment with elastography and viral load trend",
				"Refer to hepatology",
			},
		}

	case in.DNALevel > dnaHighThreshold && in.HBeAg == SerologyPositive:
		return Advice{
			Category: CategoryAssess,
			Recommendations: []string{
				"Likely immune-tolerant phase; assess ALT trend over 6 months",
				"Repeat DNA level in 6 months",
			},
		}

	default:
		return Advice{
			Category: CategoryMonitor,
			Recommendations: []string{
				"Monitor ALT and DNA level every 6 to 12 months",
				"Reassess if ALT rises or fibrosis progresses",
			},
		}
	}
}
