package enums

import "fmt"

// CopyState tracks the physical availability of a single copy.
type CopyState string

const (
	CopyStateInLibrary CopyState = "in_library"
	CopyStateOnLoan    CopyState = "on_loan"
	CopyStateMissing   CopyState = "missing"
	CopyStateDamaged   CopyState = "damaged"
)

var validCopyStates = []CopyState{
	CopyStateInLibrary,
	CopyStateOnLoan,
	CopyStateMissing,
	CopyStateDamaged,
}

// String implements fmt.Stringer.
func (s CopyState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CopyState.
func (s CopyState) IsValid() bool {
	for _, candidate := range validCopyStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCopyState converts raw input into a CopyState, failing closed on
// anything outside the known set.
func ParseCopyState(value string) (CopyState, error) {
	for _, candidate := range validCopyStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid copy state %q", value)
}
