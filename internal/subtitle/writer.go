package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Write serializes doc to path as grammar. Output goes to a temporary file
// in the same directory which replaces path only after a complete write, so
// a failure never leaves a truncated subtitle behind.
func Write(path string, doc *Document, grammar Grammar, resolver Resolver) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return Encode(w, doc, grammar, resolver)
	})
}

func writeFileAtomic(path string, render func(w io.Writer) error) (err error) {
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = render(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// file extension for a grammar
func GetExtensionForGrammar(grammar Grammar) string {
	switch grammar {
	case GrammarSUB:
		return ".sub"
	default:
		return ".srt"
	}
}
