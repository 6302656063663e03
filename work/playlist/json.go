package playlist

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"m3u-parser/work/types"
)

// DefaultIndent is the number of spaces used by GetJSON-style callers.
const DefaultIndent = 4

// EncodeJSON writes records as a JSON array indented by indent spaces; an
// indent of zero or less writes compact JSON. Absent fields are written as
// null and an empty collection as [].
func EncodeJSON(w io.Writer, records []types.StreamRecord, indent int) error {
	if records == nil {
		records = []types.StreamRecord{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}

	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// JSON renders records with EncodeJSON and returns the text without the
// trailing newline.
func JSON(records []types.StreamRecord, indent int) (string, error) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, records, indent); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// DecodeJSON reads records previously written by EncodeJSON.
func DecodeJSON(r io.Reader) ([]types.StreamRecord, error) {
	var records []types.StreamRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}
	if records == nil {
		records = []types.StreamRecord{}
	}
	return records, nil
}
