package enums

import "fmt"

// MediaType classifies the physical medium of a title.
type MediaType string

const (
	MediaTypeBook     MediaType = "book"
	MediaTypeCD       MediaType = "cd"
	MediaTypeDVD      MediaType = "dvd"
	MediaTypeMagazine MediaType = "magazine"
	MediaTypeGame     MediaType = "game"
	MediaTypeOther    MediaType = "other"
)

var validMediaTypes = []MediaType{
	MediaTypeBook,
	MediaTypeCD,
	MediaTypeDVD,
	MediaTypeMagazine,
	MediaTypeGame,
	MediaTypeOther,
}

// String implements fmt.Stringer.
func (m MediaType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MediaType.
func (m MediaType) IsValid() bool {
	for _, candidate := range validMediaTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaType converts raw input into a MediaType.
func ParseMediaType(value string) (MediaType, error) {
	for _, candidate := range validMediaTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media type %q", value)
}
