package storage

import (
	"regexp"
	"time"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// SanitizeName replaces every character outside [A-Za-z0-9_] with an
// underscore so symbols like "BINANCE:BTCUSDT" become safe storage keys.
func SanitizeName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// DeriveOutputName returns the storage key for a capture: the caller-supplied
// name when present, otherwise "chart_<sanitizedSymbol>_<timestamp>" with a
// sortable UTC timestamp truncated to whole seconds.
func DeriveOutputName(explicit, symbol string, now time.Time) string {
	if explicit != "" {
		return SanitizeName(explicit)
	}
	stamp := now.UTC().Truncate(time.Second).Format("20060102T150405Z")
	return "chart_" + SanitizeName(symbol) + "_" + stamp
}
