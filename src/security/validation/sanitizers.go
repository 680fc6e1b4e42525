package validation

import (
	"strings"
	"unicode"
)

// SanitizeForFormulaInjection neutralizes spreadsheet formula injection by
// prefixing values that begin with a formula trigger character. Imported
// category/description fields may be re-exported to CSV later.
func SanitizeForFormulaInjection(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '=', '+', '-', '@', '\t', '\r':
			return "'" + s
		}
	}
	return s
}

// StripUnprintable drops non-printable runes while keeping common whitespace.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
