package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// CodeMaxLen is the mnemonic length for category and subcategory codes.
	CodeMaxLen = 3
	// maxCodeProbes bounds the collision suffix search in the registry.
	maxCodeProbes = 100
)

var diacriticFolder = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"ß", "ss",
)

// DeriveCode turns a free-text name into a short uppercase mnemonic. German
// diacritics fold to their ASCII digraphs before stripping, so "Ökologie"
// yields "OEK" rather than "KOL". Always returns a non-empty string; names
// with no usable characters fall back to "X".
func DeriveCode(name string, maxLen int) string {
	folded := diacriticFolder.Replace(strings.ToLower(name))

	var b strings.Builder
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	code := strings.ToUpper(b.String())
	if len(code) > maxLen {
		code = code[:maxLen]
	}
	if code == "" {
		return "X"
	}
	return code
}

// FormatShortCode composes the globally unique title code from the category
// code, subcategory code and the allocated sequence number.
func FormatShortCode(categoryCode, subcategoryCode string, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", categoryCode, subcategoryCode, seq)
}

// FormatCopyCode appends the zero-padded copy number to a title short code.
// The fixed width keeps lexicographic and numeric ordering aligned, which the
// copy code generator relies on.
func FormatCopyCode(shortCode string, copyNumber int) string {
	return fmt.Sprintf("%s-%02d", shortCode, copyNumber)
}

// ParseCopyNumber extracts the trailing copy number from a copy code.
func ParseCopyNumber(copyCode string) (int, error) {
	idx := strings.LastIndex(copyCode, "-")
	if idx < 0 || idx == len(copyCode)-1 {
		return 0, fmt.Errorf("copy code %q has no numeric suffix", copyCode)
	}
	n, err := strconv.Atoi(copyCode[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("copy code %q has no numeric suffix: %w", copyCode, err)
	}
	return n, nil
}
