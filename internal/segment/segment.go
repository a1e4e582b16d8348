// Package segment reads delimiter-terminated groups of lines from a stream
// without holding more than one group in memory.
package segment

import (
	"bufio"
	"io"
	"strings"
)

const maxLineSize = 1024 * 1024

// Reader yields successive segments of lines. A segment ends at a line for
// which the delimiter function returns true (the delimiter line itself is
// not part of the segment) or at end of input.
type Reader struct {
	scanner   *bufio.Scanner
	delimiter func(line string) bool
	line      int
	start     int
	done      bool
}

func NewReader(r io.Reader, delimiter func(line string) bool) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Reader{scanner: scanner, delimiter: delimiter}
}

// Blank matches lines that are empty after trimming whitespace.
func Blank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Footer matches lines equal to marker after trimming whitespace.
func Footer(marker string) func(string) bool {
	return func(line string) bool {
		return strings.TrimSpace(line) == marker
	}
}

// Next returns the next segment. An empty, non-nil slice is returned for
// consecutive delimiters. After the final segment Next returns io.EOF, or
// the underlying read error.
func (r *Reader) Next() ([]string, error) {
	if r.done {
		return nil, io.EOF
	}

	lines := []string{}
	r.start = r.line + 1
	for r.scanner.Scan() {
		r.line++
		line := r.scanner.Text()
		if r.delimiter(line) {
			return lines, nil
		}
		lines = append(lines, line)
	}

	r.done = true
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, io.EOF
	}
	return lines, nil
}

// StartLine is the 1-based line number of the first line of the segment
// most recently returned by Next.
func (r *Reader) StartLine() int {
	return r.start
}
