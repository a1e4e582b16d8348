package timecode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	Millisecond int64 = 1000
	Second      int64 = 1000 * Millisecond
	Minute      int64 = 60 * Second
	Hour        int64 = 60 * Minute
)

// [+-][[hh:]mm:]ss[.ffffff], fraction may also use ',' as in SRT files
var timeExpr = regexp.MustCompile(`^([+-])?(?:(?:(\d+):)?(\d+):)?(\d+)(?:[.,](\d+))?$`)

// FormatError reports a time expression that does not match the grammar.
type FormatError struct {
	Text string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf(
		"invalid time %q: expected [+-][[hh:]mm:]ss[.fraction]",
		e.Text,
	)
}

// Parse converts a human readable time expression into signed microseconds.
// Hours and minutes are optional independently, so "90", "1:30" and
// "1:1:30" are all accepted. Fraction digits past microseconds are dropped.
func Parse(text string) (int64, error) {
	m := timeExpr.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, &FormatError{Text: text}
	}

	var total int64
	for _, part := range []struct {
		digits string
		unit   int64
	}{
		{m[2], Hour},
		{m[3], Minute},
		{m[4], Second},
	} {
		if part.digits == "" {
			continue
		}
		v, err := strconv.ParseInt(part.digits, 10, 64)
		if err != nil {
			return 0, &FormatError{Text: text}
		}
		total += v * part.unit
	}

	if frac := m[5]; frac != "" {
		if len(frac) > 6 {
			frac = frac[:6]
		}
		frac += strings.Repeat("0", 6-len(frac))
		v, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, &FormatError{Text: text}
		}
		total += v
	}

	if m[1] == "-" {
		total = -total
	}
	return total, nil
}

// Format renders microseconds as HH:MM:SS,mmm for SRT output. us must be
// non-negative.
func Format(us int64) string {
	hours := us / Hour
	minutes := (us % Hour) / Minute
	seconds := (us % Minute) / Second
	millis := (us % Second) / Millisecond

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
