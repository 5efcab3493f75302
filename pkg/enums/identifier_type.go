package enums

import "fmt"

// IdentifierType names the external identifier scheme attached to a title.
type IdentifierType string

const (
	IdentifierTypeNone   IdentifierType = "none"
	IdentifierTypeISBN10 IdentifierType = "isbn10"
	IdentifierTypeISBN13 IdentifierType = "isbn13"
	IdentifierTypeISSN   IdentifierType = "issn"
	IdentifierTypeEAN    IdentifierType = "ean"
)

var validIdentifierTypes = []IdentifierType{
	IdentifierTypeNone,
	IdentifierTypeISBN10,
	IdentifierTypeISBN13,
	IdentifierTypeISSN,
	IdentifierTypeEAN,
}

// String implements fmt.Stringer.
func (i IdentifierType) String() string {
	return string(i)
}

// IsValid reports whether the value is a known IdentifierType.
func (i IdentifierType) IsValid() bool {
	for _, candidate := range validIdentifierTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseIdentifierType converts raw input into an IdentifierType.
func ParseIdentifierType(value string) (IdentifierType, error) {
	for _, candidate := range validIdentifierTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid identifier type %q", value)
}
