package types

// StreamRecord represents a single playable entry extracted from an M3U playlist.
// Optional textual fields are pointers so an absent value stays distinguishable
// from an empty one and serializes as JSON null.
//
// Live is only populated when the parse requested liveness checking; in that case
// every record carries an explicit true or false.
type StreamRecord struct {
	Name     *string  `json:"name"`           // display title taken from the text after the metadata comma
	Logo     *string  `json:"logo"`           // tvg-logo attribute
	URL      string   `json:"url"`            // link found on a following line
	Category *string  `json:"category"`       // group-title attribute
	Live     *bool    `json:"live,omitempty"` // liveness verdict, nil when not requested
	Tvg      Tvg      `json:"tvg"`            // electronic program guide identifiers
	Country  Country  `json:"country"`        // ISO 3166 alpha-2 code and its English name
	Language Language `json:"language"`       // language name and its ISO 639-1 code
}

// Tvg groups the electronic program guide identifiers of a record.
type Tvg struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
	URL  *string `json:"url"`
}

// Country holds the tvg-country code and the name derived from it.
type Country struct {
	Code *string `json:"code"`
	Name *string `json:"name"`
}

// Language holds the tvg-language name and the code derived from it.
type Language struct {
	Code *string `json:"code"`
	Name *string `json:"name"`
}

// StringPtr returns nil for an empty string and a fresh pointer otherwise.
// Empty captured attribute values are treated as absent.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// BoolPtr returns a fresh pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// Deref returns the pointed-to string, or "" when p is nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns a structurally independent copy of the record. No pointer in
// the copy aliases the receiver.
func (r StreamRecord) Clone() StreamRecord {
	out := StreamRecord{
		Name:     cloneString(r.Name),
		Logo:     cloneString(r.Logo),
		URL:      r.URL,
		Category: cloneString(r.Category),
		Tvg: Tvg{
			ID:   cloneString(r.Tvg.ID),
			Name: cloneString(r.Tvg.Name),
			URL:  cloneString(r.Tvg.URL),
		},
		Country: Country{
			Code: cloneString(r.Country.Code),
			Name: cloneString(r.Country.Name),
		},
		Language: Language{
			Code: cloneString(r.Language.Code),
			Name: cloneString(r.Language.Name),
		},
	}
	if r.Live != nil {
		out.Live = BoolPtr(*r.Live)
	}
	return out
}

// CloneRecords deep-copies a slice of records. A nil input yields an empty,
// non-nil slice so callers always serialize "[]".
func CloneRecords(records []StreamRecord) []StreamRecord {
	out := make([]StreamRecord, len(records))
	for i := range records {
		out[i] = records[i].Clone()
	}
	return out
}
