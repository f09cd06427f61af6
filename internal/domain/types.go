package domain

import (
	"strings"
)

// Impact represents the predicted consequence class of a genetic variant.
// The values follow the Ensembl VEP impact categories.
type Impact string

const (
	HIGH_IMPACT     Impact = "HIGH"
	MODERATE_IMPACT Impact = "MODERATE"
	LOW_IMPACT      Impact = "LOW"
	MODIFIER_IMPACT Impact = "MODIFIER"
)

// Impacts lists every accepted impact value in severity order
var Impacts = []Impact{HIGH_IMPACT, MODERATE_IMPACT, LOW_IMPACT, MODIFIER_IMPACT}

// IsValid reports whether the impact is one of the known categories.
func (i Impact) IsValid() bool {
	switch i {
	case HIGH_IMPACT, MODERATE_IMPACT, LOW_IMPACT, MODIFIER_IMPACT:
		return true
	default:
		return false
	}
}

// String returns the string representation of the impact.
func (i Impact) String() string {
	return string(i)
}

// ParseImpact normalizes user input into an Impact. Matching is case-insensitive.
func ParseImpact(s string) (Impact, bool) {
	impact := Impact(strings.ToUpper(strings.TrimSpace(s)))
	return impact, impact.IsValid()
}

// Field limits mirrored by the database schema
const (
	MaxGeneSymbolLength   = 20
	MaxGeneNameLength     = 255
	MaxChromosomeLength   = 10
	MaxBaseLength         = 5
	MaxImpactLength       = 50
	MaxPatientIDLength    = 255
	AlleleFrequencyDigits = 5
	AlleleFrequencyScale  = 3
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"
