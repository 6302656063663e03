// Package locale derives display names and codes for the tvg-country and
// tvg-language attributes using the CLDR data shipped with golang.org/x/text.
package locale

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// officialCountryNames holds official short names where the ISO 3166 form
// differs from the CLDR display name.
var officialCountryNames = map[string]string{
	"US": "United States of America",
	"RU": "Russian Federation",
	"KR": "Korea, Republic of",
	"KP": "Korea, Democratic People's Republic of",
	"IR": "Iran, Islamic Republic of",
	"SY": "Syrian Arab Republic",
	"TZ": "Tanzania, United Republic of",
	"MD": "Moldova, Republic of",
	"LA": "Lao People's Democratic Republic",
	"TW": "Taiwan, Province of China",
	"VE": "Venezuela, Bolivarian Republic of",
	"BO": "Bolivia, Plurinational State of",
	"VN": "Viet Nam",
	"CD": "Congo, the Democratic Republic of the",
	"CG": "Congo",
	"PS": "Palestine, State of",
	"FM": "Micronesia, Federated States of",
	"VA": "Holy See (Vatican City State)",
	"MK": "North Macedonia",
	"CZ": "Czech Republic",
}

// languageAliases maps common alternative English names to ISO 639-1 codes.
var languageAliases = map[string]string{
	"bengali":       "bn",
	"kirghiz":       "ky",
	"pushto":        "ps",
	"central khmer": "km",
	"chichewa":      "ny",
	"chewa":         "ny",
	"gaelic":        "gd",
	"haitian":       "ht",
	"flemish":       "nl",
	"castilian":     "es",
	"moldavian":     "ro",
	"moldovan":      "ro",
	"sinhalese":     "si",
	"uighur":        "ug",
	"valencian":     "ca",
	"letzeburgesch": "lb",
	"ossetian":      "os",
	"panjabi":       "pa",
	"divehi":        "dv",
	"dhivehi":       "dv",
	"maldivian":     "dv",
	"kalaallisut":   "kl",
	"greenlandic":   "kl",
	"navaho":        "nv",
	"oriya":         "or",
	"farsi":         "fa",
	"persian":       "fa",
}

var (
	languageIndex map[string]string
	indexOnce     sync.Once
)

// buildLanguageIndex indexes every ISO 639-1 code by its lowercased English
// and native names.
func buildLanguageIndex() {
	idx := make(map[string]string, 512)
	englishNamer := display.English.Languages()

	for a := 'a'; a <= 'z'; a++ {
		for b := 'a'; b <= 'z'; b++ {
			code := string([]rune{a, b})
			base, err := language.ParseBase(code)
			if err != nil || base.String() != code {
				continue
			}
			tag := language.Make(code)

			if name := strings.ToLower(englishNamer.Name(tag)); name != "" {
				if _, taken := idx[name]; !taken {
					idx[name] = code
				}
			}
			if native := strings.ToLower(display.Self.Name(tag)); native != "" {
				if _, taken := idx[native]; !taken {
					idx[native] = code
				}
			}
		}
	}

	for name, code := range languageAliases {
		if _, taken := idx[name]; !taken {
			idx[name] = code
		}
	}

	languageIndex = idx
}

// CountryName returns the official English name for an ISO 3166 region code
// (alpha-2, alpha-3 or numeric, case-insensitive). ok is false for unknown
// codes and for region groups such as "001".
func CountryName(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}

	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return "", false
	}

	if name, ok := officialCountryNames[region.String()]; ok {
		return name, true
	}

	name := display.English.Regions().Name(region)
	if name == "" {
		return "", false
	}
	return name, true
}

// LanguageCode returns the ISO 639-1 code for a language name given in
// English or in the language itself, case-insensitive.
func LanguageCode(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", false
	}

	indexOnce.Do(buildLanguageIndex)

	code, ok := languageIndex[name]
	return code, ok
}
