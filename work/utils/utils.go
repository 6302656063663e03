package utils

import (
	"net/url"
	"path/filepath"
	"strings"

	"m3u-parser/work/config"
)

// LogURL returns either the original URL or an obfuscated version for logging
func LogURL(cfg *config.Config, u string) string {
	if cfg != nil && cfg.ObfuscateUrls {
		return ObfuscateURL(u)
	}
	return u
}

// ObfuscateURL keeps scheme and host and masks path, query and fragment.
// Local paths are reduced to their base name.
func ObfuscateURL(urlStr string) string {
	if urlStr == "" {
		return ""
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return "***OBFUSCATED***"
	}
	if u.Scheme == "" || u.Host == "" {
		return ".../" + filepath.Base(urlStr)
	}

	result := u.Scheme + "://" + u.Host
	if u.Path != "" && u.Path != "/" {
		result += "/***"
	}
	if u.RawQuery != "" {
		result += "?***"
	}
	if u.Fragment != "" {
		result += "#***"
	}

	return result
}

// IsRemote reports whether source is an http or https URL.
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
