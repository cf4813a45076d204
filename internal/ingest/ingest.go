// Package ingest loads plain text input for decomposition.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// maxFileSize bounds the text read from a single file.
const maxFileSize = 1 << 20

var (
	// ErrEmpty is returned when the input holds no text.
	ErrEmpty = errors.New("text is empty")
	// ErrNotUTF8 is returned for input that is not valid UTF-8.
	ErrNotUTF8 = errors.New("text is not valid UTF-8")
)

// LoadText reads a UTF-8 text file and folds its whitespace into single spaces.
func LoadText(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()
	return ReadText(file)
}

// ReadText reads r like LoadText.
func ReadText(r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	if len(raw) > maxFileSize {
		return "", fmt.Errorf("text exceeds %d bytes", maxFileSize)
	}
	if !utf8.Valid(raw) {
		return "", ErrNotUTF8
	}
	text := Fold(string(raw))
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

// Fold trims s and collapses every whitespace run, newlines included, to one space.
func Fold(s string) string {
	out, _, err := transform.String(&spaceFolder{}, s)
	if err != nil {
		return s
	}
	return out
}
