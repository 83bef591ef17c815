package chart

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseInterval splits an interval string into its leading numeric run and
// trailing alphabetic code, e.g. "4h" -> ("4", "h"), "1D" -> ("1", "d").
// The alphabetic code is lower-cased. At least one of the two parts must be
// present and nothing may follow the alphabetic code.
func ParseInterval(interval string) (digits string, code string, err error) {
	s := strings.TrimSpace(interval)
	if s == "" {
		return "", "", fmt.Errorf("parse interval: empty string")
	}

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	digits = s[:i]

	rest := s[i:]
	for _, r := range rest {
		if !unicode.IsLetter(r) {
			return "", "", fmt.Errorf("parse interval %q: unexpected character %q", interval, r)
		}
	}
	code = strings.ToLower(rest)

	if digits == "" && code == "" {
		return "", "", fmt.Errorf("parse interval %q: no numeric run or code", interval)
	}
	return digits, code, nil
}
