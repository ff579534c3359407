package model

import "unicode/utf8"

// NarrativeMinLength is the minimum length of the owner risk narrative,
// counted in characters (runes), required for export.
const NarrativeMinLength = 50

// Narrative holds the free-text justification attached to a scored record.
// Only OwnerRiskNarrative is required for export; the optional fields
// carry no length constraint.
type Narrative struct {
	OwnerRiskNarrative  string `masq:"secret"`
	MitigationsProposed string `masq:"secret"`
	OpenQuestions       string `masq:"secret"`
}

// MeetsMinimum reports whether the owner risk narrative satisfies the
// export precondition.
func (n Narrative) MeetsMinimum() bool {
	return utf8.RuneCountInString(n.OwnerRiskNarrative) >= NarrativeMinLength
}
