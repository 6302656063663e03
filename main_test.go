package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m3u-parser/work/types"
)

const cliPlaylist = `#EXTM3U
#EXTINF:-1 tvg-id="b" group-title="News",Bravo
acestream://b
#EXTINF:-1 tvg-id="a" group-title="Movies",Alpha
acestream://a
#EXTINF:-1 tvg-id="c" group-title="News",Charlie
/srv/media/c.mkv
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		for _, fs := range []*pflag.FlagSet{rootCmd.PersistentFlags(), parseCmd.Flags(), randomCmd.Flags()} {
			resetFlags(fs)
		}
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores defaults so each test parses a clean command line.
func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

func writeCLIPlaylist(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.m3u")
	require.NoError(t, os.WriteFile(path, []byte(cliPlaylist), 0644))
	return path
}

func TestParseCommandJSON(t *testing.T) {
	path := writeCLIPlaylist(t)

	out, err := run(t, "parse", path, "--workers", "2", "--remove-category", "movies", "--sort-by", "name", "--desc")
	require.NoError(t, err)

	var records []types.StreamRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Charlie", types.Deref(records[0].Name))
	assert.Equal(t, "Bravo", types.Deref(records[1].Name))
	assert.Equal(t, 2, cfg.Workers)
}

func TestParseCommandM3U(t *testing.T) {
	path := writeCLIPlaylist(t)

	out, err := run(t, "parse", path, "--no-check-live", "--format", "m3u", "--retrieve-category", "movies")
	require.NoError(t, err)
	assert.Equal(t, "#EXTM3U\n#EXTINF:-1 tvg-id=\"a\" group-title=\"Movies\",Alpha\nacestream://a\n", out)
}

func TestParseCommandOutputFile(t *testing.T) {
	path := writeCLIPlaylist(t)
	target := filepath.Join(t.TempDir(), "out")

	out, err := run(t, "parse", path, "--no-check-live", "-o", target, "--format", "m3u")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target + ".m3u")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "#EXTM3U\n"))
}

func TestParseCommandBadKey(t *testing.T) {
	path := writeCLIPlaylist(t)

	_, err := run(t, "parse", path, "--no-check-live", "--sort-by", "tvg", "--nested")
	var keyErr *types.InvalidKeyError
	assert.ErrorAs(t, err, &keyErr)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}
