package parser

import (
	"strings"

	"github.com/grafana/regexp"
)

// Attribute names a value that can be pulled from an #EXTINF line.
type Attribute string

const (
	AttrTvgName     Attribute = "tvg-name"
	AttrTvgID       Attribute = "tvg-id"
	AttrTvgLogo     Attribute = "tvg-logo"
	AttrTvgURL      Attribute = "tvg-url"
	AttrTvgCountry  Attribute = "tvg-country"
	AttrTvgLanguage Attribute = "tvg-language"
	AttrGroupTitle  Attribute = "group-title"
	AttrTitle       Attribute = "title"
)

// Attributes lists every extractable attribute.
var Attributes = []Attribute{
	AttrTvgName, AttrTvgID, AttrTvgLogo, AttrTvgURL,
	AttrTvgCountry, AttrTvgLanguage, AttrGroupTitle, AttrTitle,
}

// attributePatterns holds the quoted key="value" matchers, compiled once.
// Matching is case-insensitive and captures up to the next double quote.
var attributePatterns = func() map[Attribute]*regexp.Regexp {
	patterns := make(map[Attribute]*regexp.Regexp, len(Attributes))
	for _, attr := range Attributes {
		if attr == AttrTitle {
			continue
		}
		patterns[attr] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(string(attr)) + `="(.*?)"`)
	}
	return patterns
}()

// Extract returns the first value of attr on an #EXTINF line. The boolean is
// false when the attribute is missing.
//
// The title is the trimmed text after the last comma that sits outside a
// quoted attribute value; a line without such a comma has no title.
func Extract(line string, attr Attribute) (string, bool) {
	if attr == AttrTitle {
		return extractTitle(line)
	}

	re, ok := attributePatterns[attr]
	if !ok {
		return "", false
	}

	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// extractTitle returns the text after the last comma that is outside a
// quoted attribute value, scanning from the start of the line.
func extractTitle(line string) (string, bool) {
	inQuotes := false
	last := -1

	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				last = i
			}
		}
	}

	if last < 0 {
		return "", false
	}
	return strings.TrimSpace(line[last+1:]), true
}
