package parser

import (
	"net/url"
	"strings"

	"github.com/grafana/regexp"
)

const extinfMarker = "#EXTINF"

// maxFollowers is how many lines after an #EXTINF line may hold its link.
const maxFollowers = 2

var (
	// directStreamRegex matches custom-protocol stream identifiers that are
	// playable without an HTTP check.
	directStreamRegex = regexp.MustCompile(`^acestream://[a-zA-Z0-9]+`)

	// filePathRegex matches absolute local paths with an extension, POSIX or
	// drive-letter style, and file:// URIs.
	filePathRegex = regexp.MustCompile(`^(?:[a-zA-Z]:\\(?:[^\\]+\\)*[^\\]+\.\w{2,5}|/(?:[^/]+/)*[^/]+\.\w{2,5}|file://\S+)$`)
)

// Link is the stream location found for one #EXTINF line.
type Link struct {
	URL string
	// Live is true when the link needs no probe: direct streams and local files.
	Live bool
}

// Classify looks for the link belonging to the #EXTINF line at lines[idx].
//
// Up to two following lines are examined. Directive lines (starting with '#',
// other than another #EXTINF) are skipped; the first other line decides the
// outcome whether or not it is a usable link. A following #EXTINF ends the
// search with no link.
func Classify(lines []string, idx int) (Link, bool) {
	for i := 1; i <= maxFollowers; i++ {
		pos := idx + i
		if pos >= len(lines) {
			break
		}

		line := lines[pos]
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if strings.Contains(line, extinfMarker) {
				break
			}
			continue
		}

		return classifyLine(line)
	}

	return Link{}, false
}

func classifyLine(line string) (Link, bool) {
	switch {
	case directStreamRegex.MatchString(line):
		return Link{URL: line, Live: true}, true
	case isAbsoluteURL(line):
		return Link{URL: line}, true
	case filePathRegex.MatchString(line):
		return Link{URL: line, Live: true}, true
	default:
		return Link{}, false
	}
}

// isAbsoluteURL reports whether s has both a scheme and a host.
func isAbsoluteURL(s string) bool {
	if strings.ContainsAny(s, " \t") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
