package types

import (
	"strconv"
	"strings"
)

// DefaultKeySplitter separates group and member in nested keys such as "tvg-id".
const DefaultKeySplitter = "-"

// Field is a resolved selector over a StreamRecord.
type Field int

const (
	FieldName Field = iota
	FieldLogo
	FieldURL
	FieldCategory
	FieldLive
	FieldTvgID
	FieldTvgName
	FieldTvgURL
	FieldCountryCode
	FieldCountryName
	FieldLanguageCode
	FieldLanguageName
)

var topLevelFields = map[string]Field{
	"name":     FieldName,
	"logo":     FieldLogo,
	"url":      FieldURL,
	"category": FieldCategory,
	"live":     FieldLive,
}

var nestedFields = map[string]map[string]Field{
	"tvg": {
		"id":   FieldTvgID,
		"name": FieldTvgName,
		"url":  FieldTvgURL,
	},
	"country": {
		"code": FieldCountryCode,
		"name": FieldCountryName,
	},
	"language": {
		"code": FieldLanguageCode,
		"name": FieldLanguageName,
	},
}

// ResolveField turns a key specification into a Field.
//
// With nested=false the key must be a top-level field name. With nested=true
// the key is split on splitter (DefaultKeySplitter when empty) and must yield
// exactly two non-empty parts naming a group and one of its members.
// Resolution fails with *InvalidKeyError before any record is touched.
func ResolveField(key string, nested bool, splitter string) (Field, error) {
	if !nested {
		f, ok := topLevelFields[key]
		if !ok {
			return 0, &InvalidKeyError{Key: key, Reason: "unknown field"}
		}
		return f, nil
	}

	if splitter == "" {
		splitter = DefaultKeySplitter
	}

	parts := strings.Split(key, splitter)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, &InvalidKeyError{Key: key, Splitter: splitter, Reason: "nested key must have exactly two parts"}
	}

	group, ok := nestedFields[parts[0]]
	if !ok {
		return 0, &InvalidKeyError{Key: key, Splitter: splitter, Reason: "unknown group " + strconv.Quote(parts[0])}
	}
	f, ok := group[parts[1]]
	if !ok {
		return 0, &InvalidKeyError{Key: key, Splitter: splitter, Reason: "unknown member " + strconv.Quote(parts[1])}
	}
	return f, nil
}

// Value reads the field from r. The boolean is false when the value is absent.
func (f Field) Value(r *StreamRecord) (string, bool) {
	var p *string
	switch f {
	case FieldName:
		p = r.Name
	case FieldLogo:
		p = r.Logo
	case FieldURL:
		return r.URL, true
	case FieldCategory:
		p = r.Category
	case FieldLive:
		if r.Live == nil {
			return "", false
		}
		return strconv.FormatBool(*r.Live), true
	case FieldTvgID:
		p = r.Tvg.ID
	case FieldTvgName:
		p = r.Tvg.Name
	case FieldTvgURL:
		p = r.Tvg.URL
	case FieldCountryCode:
		p = r.Country.Code
	case FieldCountryName:
		p = r.Country.Name
	case FieldLanguageCode:
		p = r.Language.Code
	case FieldLanguageName:
		p = r.Language.Name
	}
	if p == nil {
		return "", false
	}
	return *p, true
}

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldLogo:
		return "logo"
	case FieldURL:
		return "url"
	case FieldCategory:
		return "category"
	case FieldLive:
		return "live"
	case FieldTvgID:
		return "tvg.id"
	case FieldTvgName:
		return "tvg.name"
	case FieldTvgURL:
		return "tvg.url"
	case FieldCountryCode:
		return "country.code"
	case FieldCountryName:
		return "country.name"
	case FieldLanguageCode:
		return "language.code"
	case FieldLanguageName:
		return "language.name"
	default:
		return "unknown"
	}
}
