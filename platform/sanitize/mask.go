package sanitize

import "strings"

// MaskChar replaces hidden characters in masked identifiers.
const MaskChar = "*"

const (
	identifierKeepHead = 2
	identifierKeepTail = 3
	vinKeepTail        = 6
)

// MaskIdentifier hides the middle of a national identifier (CNP/CUI), keeping
// the first 2 and last 3 characters. Values of 5 characters or fewer are
// returned unchanged.
func MaskIdentifier(value string) string {
	runes := []rune(value)
	if len(runes) <= identifierKeepHead+identifierKeepTail {
		return value
	}

	hidden := len(runes) - identifierKeepHead - identifierKeepTail
	return string(runes[:identifierKeepHead]) +
		strings.Repeat(MaskChar, hidden) +
		string(runes[len(runes)-identifierKeepTail:])
}

// MaskVIN keeps only the last 6 characters of a vehicle identification number.
// VINs of 6 characters or fewer are returned unchanged.
func MaskVIN(value string) string {
	runes := []rune(value)
	if len(runes) <= vinKeepTail {
		return value
	}

	hidden := len(runes) - vinKeepTail
	return strings.Repeat(MaskChar, hidden) + string(runes[hidden:])
}
