// Package csv reads comma-delimited flight-schedule sources line by line.
//
// Splitting into fields is left to the validator: the schedule format is a
// plain comma split with no quoting rules, so encoding/csv is not used here.
// The reader only takes care of encodings, BOMs and line numbering.
package csv

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxLineBytes bounds the text kept for a single input line. The remainder
// of a longer line is read and discarded.
const maxLineBytes = 1 << 20

const readBufferBytes = 64 * 1024

// RawLine is one line of input text with its 1-based position. It is never
// stored.
type RawLine struct {
	Number int
	Text   string
	// Oversized is set when the line exceeded maxLineBytes; Text then holds
	// only its leading part.
	Oversized bool
}

// ScanLines reads r line by line and calls fn for each line in order. Line
// terminators ("\n" or "\r\n") are removed; no other trimming is done. A line
// longer than maxLineBytes is delivered cut short with Oversized set, and
// scanning continues with the next line.
//
// Scanning stops at the first error returned by fn, on a read error, or when
// ctx is done. The number of lines delivered to fn is returned.
func ScanLines(ctx context.Context, r io.Reader, fn func(RawLine) error) (int, error) {
	br := bufio.NewReaderSize(decodeReader(r), readBufferBytes)
	var buf []byte

	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		var (
			oversized bool
			err       error
		)
		buf, oversized, err = readLine(br, buf[:0])
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("read line %d: %w", n+1, err)
		}
		n++

		text := string(buf)
		if oversized {
			text = strings.ToValidUTF8(text, "")
		}
		if n == 1 {
			text = StripBOM(text)
		}
		if l := len(text); l > 0 && text[l-1] == '\r' {
			text = text[:l-1]
		}
		if err := fn(RawLine{Number: n, Text: text, Oversized: oversized}); err != nil {
			return n, err
		}
	}
}

// readLine appends the next line of br to buf, keeping at most maxLineBytes
// of it. io.EOF is returned only when no line is left.
func readLine(br *bufio.Reader, buf []byte) ([]byte, bool, error) {
	oversized := false
	for {
		chunk, more, err := br.ReadLine()
		if err != nil {
			return buf, oversized, err
		}
		room := maxLineBytes - len(buf)
		if len(chunk) > room {
			chunk = chunk[:room]
			oversized = true
		}
		buf = append(buf, chunk...)
		if !more {
			return buf, oversized, nil
		}
	}
}

// ReadLines collects every line of r.
func ReadLines(ctx context.Context, r io.Reader) ([]RawLine, error) {
	var out []RawLine
	_, err := ScanLines(ctx, r, func(l RawLine) error {
		out = append(out, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
