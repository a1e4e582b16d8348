package subtitle

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const defaultCharset = "utf-8"

// decodingReader yields UTF-8 text. A UTF-8 or UTF-16 byte-order mark wins
// over the declared charset and is stripped.
func decodingReader(r io.Reader, charset string) (io.Reader, error) {
	label := strings.TrimSpace(charset)
	if label == "" {
		label = defaultCharset
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", charset, err)
	}

	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// ValidCharset reports whether label names a supported encoding.
func ValidCharset(label string) bool {
	if strings.TrimSpace(label) == "" {
		return true
	}
	_, err := htmlindex.Get(label)
	return err == nil
}
