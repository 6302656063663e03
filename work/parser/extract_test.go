package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const bbcLine = `#EXTINF:-1 tvg-id="BBC" tvg-name="BBC News" tvg-logo="http://x/bbc.png" tvg-country="GB" tvg-language="English" group-title="News",BBC News HD`

func TestExtract(t *testing.T) {
	tests := []struct {
		attr   Attribute
		want   string
		wantOk bool
	}{
		{AttrTvgID, "BBC", true},
		{AttrTvgName, "BBC News", true},
		{AttrTvgLogo, "http://x/bbc.png", true},
		{AttrTvgCountry, "GB", true},
		{AttrTvgLanguage, "English", true},
		{AttrGroupTitle, "News", true},
		{AttrTitle, "BBC News HD", true},
		{AttrTvgURL, "", false},
		{Attribute("tvg-shift"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.attr), func(t *testing.T) {
			got, ok := Extract(bbcLine, tt.attr)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractCaseInsensitive(t *testing.T) {
	got, ok := Extract(`#EXTINF:-1 TVG-ID="abc" Group-Title="Films",X`, AttrTvgID)
	assert.True(t, ok)
	assert.Equal(t, "abc", got)

	got, ok = Extract(`#EXTINF:-1 TVG-ID="abc" Group-Title="Films",X`, AttrGroupTitle)
	assert.True(t, ok)
	assert.Equal(t, "Films", got)
}

func TestExtractNonGreedy(t *testing.T) {
	got, ok := Extract(`#EXTINF:-1 tvg-name="A" tvg-id="B",C`, AttrTvgName)
	assert.True(t, ok)
	assert.Equal(t, "A", got)
}

func TestExtractFirstMatchWins(t *testing.T) {
	got, _ := Extract(`#EXTINF:-1 tvg-id="first" tvg-id="second",C`, AttrTvgID)
	assert.Equal(t, "first", got)
}

func TestExtractEmptyValue(t *testing.T) {
	got, ok := Extract(`#EXTINF:-1 tvg-id="",C`, AttrTvgID)
	assert.True(t, ok)
	assert.Equal(t, "", got)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   string
		wantOk bool
	}{
		{"plain", `#EXTINF:-1,Channel One`, "Channel One", true},
		{"trimmed", `#EXTINF:-1 tvg-id="x",  Spaced  `, "Spaced", true},
		{"comma inside quotes", `#EXTINF:-1 group-title="News, World",CNN`, "CNN", true},
		{"last comma wins", `#EXTINF:-1,Part, Two`, "Two", true},
		{"no comma", `#EXTINF:-1 tvg-id="x"`, "", false},
		{"only quoted comma", `#EXTINF:-1 group-title="a,b"`, "", false},
		{"empty after comma", `#EXTINF:-1 tvg-id="x",`, "", true},
		{"odd quote in title", `#EXTINF:-1 tvg-name="A",Vinyl 12" Hits`, `Vinyl 12" Hits`, true},
		{"quoted title", `#EXTINF:-1 group-title="Music",The "Best" Of`, `The "Best" Of`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.line, AttrTitle)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
