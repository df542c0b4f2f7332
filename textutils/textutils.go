package textutils

import (
	"bytes"
	"slices"
	"strings"
)

var asciiSpace = [256]bool{'\t': true, '\n': true, '\v': true, '\f': true, '\r': true, ' ': true}

// Prepends indent nIndent times to each line beginning in s,
// except for empty lines.
func IndentString(s string, indent string, nIndent int) string {
	b := []byte(s)

	var res strings.Builder
	res.Grow(len(s) + (bytes.Count(b, []byte{'\n'})+1)*nIndent*len(indent))

	for line := range bytes.Lines(b) {
		if !slices.ContainsFunc(line, func(c byte) bool { return !asciiSpace[c] }) {
			if line[len(line)-1] == '\n' {
				res.WriteByte('\n')
			}
			continue
		}
		for range nIndent {
			res.WriteString(indent)
		}
		res.Write(line)
	}

	return res.String()
}

// WithFinalNewline returns s with all trailing line breaks replaced by
// exactly one "\n".
func WithFinalNewline(s string) string {
	return strings.TrimRight(s, "\r\n") + "\n"
}
