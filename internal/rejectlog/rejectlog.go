// Package rejectlog writes the human-readable rejection log: one line per
// rejected input line or comment notice.
package rejectlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"flightdb/internal/validator"
)

// arrow separates the original line from its reasons.
const arrow = " → "

// Format renders r as "Line <n>: <text> → <reason1, reason2>".
func Format(r validator.Rejection) string {
	b := make([]byte, 0, len(r.Text)+64)
	b = append(b, "Line "...)
	b = strconv.AppendInt(b, int64(r.Line), 10)
	b = append(b, ": "...)
	b = append(b, r.Text...)
	b = append(b, arrow...)
	b = append(b, r.Reason()...)
	return string(b)
}

// Write writes one formatted line per entry, in order.
func Write(w io.Writer, entries []validator.Rejection) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := bw.WriteString(Format(e)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile replaces path with the log for entries. An empty entry list
// still truncates the file so a rebuild never leaves stale rejections.
func WriteFile(path string, entries []validator.Rejection) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create rejection log: %w", err)
	}
	if err := Write(f, entries); err != nil {
		_ = f.Close()
		return fmt.Errorf("write rejection log %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close rejection log %s: %w", path, err)
	}
	return nil
}
