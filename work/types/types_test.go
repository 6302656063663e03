package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() StreamRecord {
	return StreamRecord{
		Name:     StringPtr("BBC One"),
		Logo:     StringPtr("http://x/logo.png"),
		URL:      "http://x/bbc1.m3u8",
		Category: StringPtr("UK"),
		Live:     BoolPtr(true),
		Tvg:      Tvg{ID: StringPtr("bbc1.uk"), Name: StringPtr("BBC One")},
		Country:  Country{Code: StringPtr("GB"), Name: StringPtr("United Kingdom")},
		Language: Language{Code: StringPtr("en"), Name: StringPtr("English")},
	}
}

func TestStringPtrTreatsEmptyAsAbsent(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	require.NotNil(t, StringPtr("a"))
	assert.Equal(t, "a", *StringPtr("a"))
	assert.Equal(t, "", Deref(nil))
}

func TestCloneIsIndependent(t *testing.T) {
	orig := sampleRecord()
	cp := orig.Clone()
	assert.Equal(t, orig, cp)

	*cp.Name = "changed"
	*cp.Tvg.ID = "changed"
	*cp.Country.Code = "FR"
	*cp.Live = false

	assert.Equal(t, "BBC One", *orig.Name)
	assert.Equal(t, "bbc1.uk", *orig.Tvg.ID)
	assert.Equal(t, "GB", *orig.Country.Code)
	assert.True(t, *orig.Live)
}

func TestCloneRecordsNil(t *testing.T) {
	out := CloneRecords(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestResolveField(t *testing.T) {
	tests := []struct {
		key      string
		nested   bool
		splitter string
		want     Field
		wantErr  bool
	}{
		{"name", false, "", FieldName, false},
		{"category", false, "", FieldCategory, false},
		{"live", false, "", FieldLive, false},
		{"tvg-id", true, "", FieldTvgID, false},
		{"country-code", true, "-", FieldCountryCode, false},
		{"language_name", true, "_", FieldLanguageName, false},
		{"bogus", false, "", 0, true},
		{"tvg-id", false, "", 0, true},
		{"tvg", true, "-", 0, true},
		{"tvg-id-x", true, "-", 0, true},
		{"-id", true, "-", 0, true},
		{"foo-id", true, "-", 0, true},
		{"tvg-logo", true, "-", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := ResolveField(tt.key, tt.nested, tt.splitter)
			if tt.wantErr {
				var keyErr *InvalidKeyError
				require.True(t, errors.As(err, &keyErr), "expected InvalidKeyError, got %v", err)
				assert.Equal(t, tt.key, keyErr.Key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldValue(t *testing.T) {
	r := sampleRecord()

	v, ok := FieldTvgID.Value(&r)
	assert.True(t, ok)
	assert.Equal(t, "bbc1.uk", v)

	v, ok = FieldLive.Value(&r)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	_, ok = FieldTvgURL.Value(&r)
	assert.False(t, ok)

	r.Live = nil
	_, ok = FieldLive.Value(&r)
	assert.False(t, ok)

	v, ok = FieldURL.Value(&r)
	assert.True(t, ok)
	assert.Equal(t, "http://x/bbc1.m3u8", v)
}

func TestRetrievalErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := error(&RetrievalError{Source: "x.m3u", Err: cause})
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "x.m3u")
}
