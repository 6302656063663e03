package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		wantURL  string
		wantLive bool
		wantOk   bool
	}{
		{
			name:    "http url",
			lines:   []string{"#EXTINF:-1,A", "http://example.com/a.m3u8"},
			wantURL: "http://example.com/a.m3u8",
			wantOk:  true,
		},
		{
			name:    "other scheme url",
			lines:   []string{"#EXTINF:-1,A", "rtmp://example.com/live/a"},
			wantURL: "rtmp://example.com/live/a",
			wantOk:  true,
		},
		{
			name:     "acestream",
			lines:    []string{"#EXTINF:-1,A", "acestream://abcDEF123"},
			wantURL:  "acestream://abcDEF123",
			wantLive: true,
			wantOk:   true,
		},
		{
			name:     "posix path",
			lines:    []string{"#EXTINF:-1,A", "/media/videos/movie.mkv"},
			wantURL:  "/media/videos/movie.mkv",
			wantLive: true,
			wantOk:   true,
		},
		{
			name:     "windows path",
			lines:    []string{"#EXTINF:-1,A", `C:\Videos\movie.mp4`},
			wantURL:  `C:\Videos\movie.mp4`,
			wantLive: true,
			wantOk:   true,
		},
		{
			name:     "file uri",
			lines:    []string{"#EXTINF:-1,A", "file:///srv/movie.ts"},
			wantURL:  "file:///srv/movie.ts",
			wantLive: true,
			wantOk:   true,
		},
		{
			name:   "first non-directive follower decides",
			lines:  []string{"#EXTINF:-1,A", "not a link", "http://example.com/a.ts"},
			wantOk: false,
		},
		{
			name:   "next entry stops search",
			lines:  []string{"#EXTINF:-1,A", "#EXTINF:-1,B", "http://example.com/b.ts"},
			wantOk: false,
		},
		{
			name:   "link beyond two followers",
			lines:  []string{"#EXTINF:-1,A", "#EXTGRP:x", "#EXTVLCOPT:y", "http://example.com/a.ts"},
			wantOk: false,
		},
		{
			name:   "no follower",
			lines:  []string{"#EXTINF:-1,A"},
			wantOk: false,
		},
		{
			name:   "relative path",
			lines:  []string{"#EXTINF:-1,A", "movie.mp4"},
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, ok := Classify(tt.lines, 0)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantURL, link.URL)
			assert.Equal(t, tt.wantLive, link.Live)
		})
	}
}

// Directive lines between an entry and its link are not decisive: the first
// non-directive follower is.
func TestClassifySkipsDirectiveFollowers(t *testing.T) {
	link, ok := Classify([]string{"#EXTINF:-1,A", "#EXTVLCOPT:http-user-agent=x", "http://example.com/a.ts"}, 0)
	assert.True(t, ok)
	assert.Equal(t, "http://example.com/a.ts", link.URL)

	link, ok = Classify([]string{"#EXTINF:-1,A", "#EXTGRP:News", "/srv/a.mkv"}, 0)
	assert.True(t, ok)
	assert.True(t, link.Live)

	_, ok = Classify([]string{"#EXTINF:-1,A", "#EXTVLCOPT:x", "not a link"}, 0)
	assert.False(t, ok)
}

func TestClassifyOffset(t *testing.T) {
	lines := []string{"#EXTM3U", "#EXTINF:-1,A", "http://example.com/a.ts", "#EXTINF:-1,B", "http://example.com/b.ts"}

	link, ok := Classify(lines, 3)
	assert.True(t, ok)
	assert.Equal(t, "http://example.com/b.ts", link.URL)
}
