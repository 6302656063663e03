package playlist

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"m3u-parser/work/database"
	"m3u-parser/work/logger"
	"m3u-parser/work/types"
)

// Supported output formats.
const (
	FormatJSON   = "json"
	FormatM3U    = "m3u"
	FormatSQLite = "sqlite"
	FormatDB     = "db"
)

// ResolveTarget works out the output format and final path. An extension on
// path wins over format; otherwise format (default json) is used and appended
// to path as an extension.
func ResolveTarget(path, format string) (string, string, error) {
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		format = ext
	} else {
		if format == "" {
			format = FormatJSON
		}
		path = path + "." + format
	}

	format = strings.ToLower(format)
	switch format {
	case FormatJSON, FormatM3U, FormatSQLite, FormatDB:
		return path, format, nil
	default:
		return "", "", fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, format)
	}
}

// Save writes records to path in the resolved format and returns the path
// actually written. JSON uses DefaultIndent. The sqlite formats append a new
// snapshot tagged with source to the database at path.
func Save(ctx context.Context, path, format, source string, records []types.StreamRecord) (string, error) {
	path, format, err := ResolveTarget(path, format)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatSQLite, FormatDB:
		if err := saveSnapshot(ctx, path, source, records); err != nil {
			return "", err
		}
	default:
		var buf bytes.Buffer
		if format == FormatJSON {
			err = EncodeJSON(&buf, records, DefaultIndent)
		} else {
			err = EncodeM3U(&buf, records)
		}
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	logger.Info("{playlist - Save} wrote %d records to %s (%s)", len(records), path, format)
	return path, nil
}

func saveSnapshot(ctx context.Context, path, source string, records []types.StreamRecord) error {
	db, err := database.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.SaveSnapshot(ctx, source, records)
	if err != nil {
		return err
	}
	logger.Debug("{playlist - saveSnapshot} saved snapshot %d to %s", id, path)
	return nil
}
