package csv

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const utf8BOM = "\uFEFF"

// StripBOM removes a UTF-8 BOM from the start of s if present.
func StripBOM(s string) string {
	return strings.TrimPrefix(s, utf8BOM)
}

// decodeReader wraps r so that a leading BOM selects the input encoding
// (UTF-8 or UTF-16 LE/BE, BOM removed); input without a BOM is read as UTF-8.
// The text itself is passed through unchanged.
func decodeReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}
