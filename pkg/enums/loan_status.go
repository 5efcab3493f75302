package enums

import "fmt"

// LoanStatus describes the linear room-loan lifecycle.
type LoanStatus string

const (
	LoanStatusRequested LoanStatus = "requested"
	LoanStatusApproved  LoanStatus = "approved"
	LoanStatusOut       LoanStatus = "out"
	LoanStatusReturned  LoanStatus = "returned"
)

var validLoanStatuses = []LoanStatus{
	LoanStatusRequested,
	LoanStatusApproved,
	LoanStatusOut,
	LoanStatusReturned,
}

// String implements fmt.Stringer.
func (s LoanStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LoanStatus.
func (s LoanStatus) IsValid() bool {
	for _, candidate := range validLoanStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLoanStatus converts raw input into a LoanStatus.
func ParseLoanStatus(value string) (LoanStatus, error) {
	for _, candidate := range validLoanStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid loan status %q", value)
}
