// Package csvtext provides quote-aware CSV line parsing and formatting.
// All functions are pure - no side effects.
//
// The parser and the formatter implement the same dialect: a double quote
// toggles quoted state, commas inside quotes are literal, and quoted quotes
// are doubled on output. Export must round-trip through ParseLine.
package csvtext

import (
	"errors"
	"strings"
)

// ErrEmptyInput is returned when the input has no data rows
// (empty text or a header-only file).
var ErrEmptyInput = errors.New("csvtext: no data rows in input")

// DefaultBatchSize is the number of lines handed to the normalizer per
// batch during chunked ingestion.
const DefaultBatchSize = 1000

// ParseLine splits a single CSV line into fields.
// A double quote toggles quoted state; a comma outside quotes separates
// fields; the last field is flushed at end of line. The function keeps no
// state between calls, so lines can be parsed in any order or batch.
func ParseLine(line string) []string {
	fields := make([]string, 0, 8)
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			// A doubled quote inside a quoted field is a literal quote.
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	fields = append(fields, current.String())
	return fields
}

// ParseFields parses a line and trims surrounding whitespace from every
// field, matching how headers and values are normalized.
func ParseFields(line string) []string {
	fields := ParseLine(line)
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// SplitLines splits raw CSV text into lines, stripping a UTF-8 BOM from the
// first line only and dropping trailing blank lines. Both \n and \r\n line
// endings are accepted.
func SplitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	// Trim trailing empties so a final newline does not produce a ghost row.
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Document is split CSV text: one header line plus data lines.
type Document struct {
	Header string
	Rows   []string
}

// SplitDocument splits text into a header line and data lines.
// Empty text or a header with no data rows returns ErrEmptyInput.
func SplitDocument(text string) (Document, error) {
	lines := SplitLines(text)
	if len(lines) < 2 {
		return Document{}, ErrEmptyInput
	}
	return Document{Header: lines[0], Rows: lines[1:]}, nil
}

// Batches cuts rows into consecutive batches of at most size lines.
// size <= 0 falls back to DefaultBatchSize. Concatenating the batches
// reproduces rows exactly, so batch size never affects pipeline output.
func Batches(rows []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]string
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}

// EscapeField quotes a field when it contains a comma, quote, or newline.
// Embedded quotes are doubled. The result parses back to the input via
// ParseFields.
func EscapeField(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// FormatLine joins fields into one CSV line using EscapeField.
func FormatLine(fields []string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = EscapeField(f)
	}
	return strings.Join(escaped, ",")
}
