package types

import "regexp"

// idPattern is shared by all configured identifiers (factors, tiers).
// Lowercase alphanumeric with underscores and hyphens, e.g. "decision_criticality".
var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
