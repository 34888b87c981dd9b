// Package statfile implements the streaming core for frame-oriented
// statistics files: header reading, single-pass position indexing and
// on-demand loading of one (frame, type) pair.
package statfile

import "strings"

// DefaultDelimiter separates the fields of one record.
const DefaultDelimiter byte = ';'

// SplitRecord splits one raw text record on the delimiter. Leading and
// trailing whitespace is trimmed and embedded spaces are removed before
// splitting; there is no quoting or escaping. An empty record yields a
// single empty field, so callers check field 0 before indexing further.
func SplitRecord(line string, delim byte) []string {
	line = strings.TrimSpace(line)
	line = strings.ReplaceAll(line, " ", "")
	return strings.Split(line, string(delim))
}

// isHeaderRecord reports whether the tokenized record is a header record
// (non-empty first field starting with the '%' sentinel).
func isHeaderRecord(fields []string) bool {
	return fields[0] != "" && fields[0][0] == '%'
}
