package subtitle

import (
	"fmt"
	"io"
	"os"
)

// Read parses the subtitle file at path, choosing the grammar from its
// extension.
func Read(path string, opts ReadOptions) (*Document, error) {
	grammar, err := GrammarFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return Decode(file, path, grammar, opts)
}

// Decode parses r as grammar. path is used only in errors and warnings.
func Decode(
	r io.Reader,
	path string,
	grammar Grammar,
	opts ReadOptions,
) (*Document, error) {
	text, err := decodingReader(r, opts.Charset)
	if err != nil {
		return nil, err
	}

	switch grammar {
	case GrammarSRT:
		return parseSRT(text, path)
	case GrammarSUB:
		return parseSUB(text, path, opts)
	default:
		return nil, fmt.Errorf("unsupported format: %s", grammar)
	}
}

// Encode serializes doc as grammar. resolver is needed only when the
// document's range kind differs from the grammar's.
func Encode(w io.Writer, doc *Document, grammar Grammar, resolver Resolver) error {
	switch grammar {
	case GrammarSRT:
		return writeSRT(w, doc, resolver)
	case GrammarSUB:
		return writeSUB(w, doc, resolver)
	default:
		return fmt.Errorf("unsupported format: %s", grammar)
	}
}
