package types

import "fmt"

// RecordState represents the lifecycle state of a model record.
//
// A record is UNREGISTERED until it passes validation. Registration,
// scoring and tier classification happen in one synchronous transition,
// so a stored record is always at least SCORED. EXPORTABLE is derived
// from the narrative gate and is not sticky: editing the narrative below
// the minimum length drops the record back to SCORED.
type RecordState string

const (
	RecordStateUnregistered RecordState = "UNREGISTERED"
	RecordStateScored       RecordState = "SCORED"
	RecordStateExportable   RecordState = "EXPORTABLE"
)

// AllRecordStates returns all valid record states
func AllRecordStates() []RecordState {
	return []RecordState{
		RecordStateUnregistered,
		RecordStateScored,
		RecordStateExportable,
	}
}

// IsValid checks if the record state is valid
func (s RecordState) IsValid() bool {
	switch s {
	case RecordStateUnregistered,
		RecordStateScored,
		RecordStateExportable:
		return true
	default:
		return false
	}
}

// String returns the string representation of the record state
func (s RecordState) String() string {
	return string(s)
}

// ParseRecordState parses a string into a RecordState
func ParseRecordState(s string) (RecordState, error) {
	state := RecordState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid record state: %s", s)
	}
	return state, nil
}
