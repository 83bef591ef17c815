package capture

import (
	"encoding/base64"
	"fmt"
)

const dataURLPrefix = "data:image/png;base64,"

// EncodeBase64 returns the standard base64 text form of the captured bytes.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DataURL returns the data-URL form for an already base64-encoded image.
func DataURL(b64 string) string {
	return dataURLPrefix + b64
}

// Base64Placeholder names the original size of a base64 payload dropped from
// a fallback record.
func Base64Placeholder(originalChars int) string {
	return fmt.Sprintf("[Base64 data too large: %d chars]", originalChars)
}

// DataURLPlaceholder names the original size of a data-URL payload dropped
// from a fallback record.
func DataURLPlaceholder(originalChars int) string {
	return fmt.Sprintf("[Data URL too large: %d chars]", originalChars)
}
