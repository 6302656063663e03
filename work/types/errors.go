package types

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyContent is returned when a playlist has no non-empty lines.
	ErrEmptyContent = errors.New("playlist content is empty")

	// ErrEmptyCollection is returned when a random record is requested from an empty collection.
	ErrEmptyCollection = errors.New("no streams available")

	// ErrUnsupportedFormat is returned when saving to a format other than json, m3u or sqlite.
	ErrUnsupportedFormat = errors.New("unsupported output format")

	// ErrInvalidPattern is returned when a filter fragment does not compile as a regular expression.
	ErrInvalidPattern = errors.New("invalid filter pattern")
)

// InvalidKeyError reports a field selector that could not be resolved.
type InvalidKeyError struct {
	Key      string
	Splitter string
	Reason   string
}

func (e *InvalidKeyError) Error() string {
	if e.Splitter != "" {
		return fmt.Sprintf("invalid key %q (splitter %q): %s", e.Key, e.Splitter, e.Reason)
	}
	return fmt.Sprintf("invalid key %q: %s", e.Key, e.Reason)
}

// RetrievalError wraps a failure to obtain playlist content from a path, URL or reader.
type RetrievalError struct {
	Source string
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("failed to retrieve %s: %v", e.Source, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}
