package playlist

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"m3u-parser/work/types"
)

const header = "#EXTM3U"

// EncodeM3U writes records as an extended M3U playlist. Only present
// attributes are emitted, always in the order tvg-id, tvg-name, tvg-url,
// tvg-logo, tvg-country, tvg-language, group-title. Liveness and derived
// country and language names are not written.
func EncodeM3U(w io.Writer, records []types.StreamRecord) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(header)
	bw.WriteByte('\n')

	for i := range records {
		bw.WriteString(extinfLine(&records[i]))
		bw.WriteByte('\n')
		bw.WriteString(records[i].URL)
		bw.WriteByte('\n')
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write m3u: %w", err)
	}
	return nil
}

// M3U renders records with EncodeM3U.
func M3U(records []types.StreamRecord) string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = EncodeM3U(&sb, records)
	return sb.String()
}

func extinfLine(r *types.StreamRecord) string {
	var sb strings.Builder
	sb.WriteString("#EXTINF:-1")

	attr := func(key string, value *string) {
		if value == nil || *value == "" {
			return
		}
		sb.WriteString(" ")
		sb.WriteString(key)
		sb.WriteString(`="`)
		sb.WriteString(*value)
		sb.WriteString(`"`)
	}

	attr("tvg-id", r.Tvg.ID)
	attr("tvg-name", r.Tvg.Name)
	attr("tvg-url", r.Tvg.URL)
	attr("tvg-logo", r.Logo)
	attr("tvg-country", r.Country.Code)
	attr("tvg-language", r.Language.Name)
	attr("group-title", r.Category)

	if r.Name != nil && *r.Name != "" {
		sb.WriteString(",")
		sb.WriteString(*r.Name)
	}

	return sb.String()
}
