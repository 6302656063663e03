package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m3u-parser/work/config"
	"m3u-parser/work/database"
	"m3u-parser/work/types"
)

// Links use schemes that are never probed so tests stay offline.
const content = `#EXTM3U
#EXTINF:-1 tvg-id="b.uk" group-title="News",BBC News
acestream://bbc
#EXTINF:-1 tvg-id="a.fr" group-title="News",France 24
acestream://f24
#EXTINF:-1 tvg-id="c.us" group-title="Sports",ESPN
/srv/media/espn.ts
`

func newTestServer(t *testing.T, modify func(*config.Config)) (*API, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Workers = 2
	if modify != nil {
		modify(cfg)
	}
	api := NewAPI(cfg)
	t.Cleanup(api.Close)

	router := mux.NewRouter()
	Routes(router, api)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return api, srv
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = strings.NewReader(string(b))
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func create(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := do(t, http.MethodPost, srv.URL+"/playlists", CreateRequest{Content: content})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[SessionResponse](t, resp)
	assert.Equal(t, 3, created.Streams)
	require.NotEmpty(t, created.ID)
	return created.ID
}

func names(records []types.StreamRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = types.Deref(r.Name)
	}
	return out
}

func TestSessionLifecycle(t *testing.T) {
	api, srv := newTestServer(t, nil)
	id := create(t, srv)
	assert.Equal(t, 1, api.Len())
	base := srv.URL + "/playlists/" + id

	resp := do(t, http.MethodGet, base+"/streams", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records := decode[[]types.StreamRecord](t, resp)
	assert.Equal(t, []string{"BBC News", "France 24", "ESPN"}, names(records))
	for _, r := range records {
		require.NotNil(t, r.Live)
		assert.True(t, *r.Live)
	}

	resp = do(t, http.MethodPost, base+"/filter", FilterRequest{Key: "category", Filters: []string{"news"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[SessionResponse](t, resp).Streams)

	resp = do(t, http.MethodPost, base+"/sort", SortRequest{Key: "tvg-id", Nested: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/streams", nil)
	assert.Equal(t, []string{"France 24", "BBC News"}, names(decode[[]types.StreamRecord](t, resp)))

	resp = do(t, http.MethodGet, base+"/random?shuffle=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "News", types.Deref(decode[types.StreamRecord](t, resp).Category))

	resp = do(t, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, decode[SessionResponse](t, resp).Streams)

	resp = do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, api.Len())

	resp = do(t, http.MethodGet, base+"/streams", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStreamsM3UGzip(t *testing.T) {
	_, srv := newTestServer(t, nil)
	id := create(t, srv)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/playlists/"+id+"/streams?format=m3u", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")
	tr := &http.Transport{DisableCompression: true}
	resp, err := (&http.Client{Transport: tr}).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	assert.Equal(t, "audio/x-mpegurl", resp.Header.Get("Content-Type"))

	zr, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "#EXTM3U\n#EXTINF:-1 tvg-id=\"b.uk\" group-title=\"News\",BBC News\nacestream://bbc\n"))
}

func TestErrorStatuses(t *testing.T) {
	_, srv := newTestServer(t, nil)
	id := create(t, srv)
	base := srv.URL + "/playlists/" + id

	tests := []struct {
		name   string
		method string
		url    string
		body   any
		want   int
	}{
		{"bad nested key", http.MethodPost, base + "/filter", FilterRequest{Key: "tvg", Filters: []string{"x"}, Nested: true}, http.StatusBadRequest},
		{"unknown key", http.MethodPost, base + "/sort", SortRequest{Key: "rating"}, http.StatusBadRequest},
		{"bad pattern", http.MethodPost, base + "/filter", FilterRequest{Key: "name", Filters: []string{"("}}, http.StatusBadRequest},
		{"bad format", http.MethodGet, base + "/streams?format=xml", nil, http.StatusBadRequest},
		{"empty content", http.MethodPost, srv.URL + "/playlists", CreateRequest{Content: "\n\n"}, http.StatusUnprocessableEntity},
		{"no source", http.MethodPost, srv.URL + "/playlists", CreateRequest{}, http.StatusBadRequest},
		{"missing file", http.MethodPost, srv.URL + "/playlists", CreateRequest{Source: filepath.Join(t.TempDir(), "none.m3u")}, http.StatusBadGateway},
		{"unknown session", http.MethodDelete, srv.URL + "/playlists/nope", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, tt.url, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRandomOnEmptyCollection(t *testing.T) {
	_, srv := newTestServer(t, nil)
	id := create(t, srv)
	base := srv.URL + "/playlists/" + id

	resp := do(t, http.MethodPost, base+"/filter", FilterRequest{Key: "name", Filters: []string{"nothing-matches"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/random", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	_, srv := newTestServer(t, nil)
	create(t, srv)

	resp := do(t, http.MethodGet, srv.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "m3u_parser_sessions")
}

func TestRefreshDefaultSession(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "default.m3u")
	require.NoError(t, os.WriteFile(source, []byte(content), 0644))
	dbPath := filepath.Join(dir, "snapshots.db")

	api, _ := newTestServer(t, func(c *config.Config) {
		c.DefaultSource = source
		c.DatabasePath = dbPath
	})
	ctx := context.Background()

	require.NoError(t, api.Refresh(ctx))
	s, ok := api.Session(DefaultSessionID)
	require.True(t, ok)
	assert.Equal(t, 3, s.Parser.Len())

	require.NoError(t, os.WriteFile(source, []byte("#EXTINF:-1,Only\nacestream://only\n"), 0644))
	require.NoError(t, api.Refresh(ctx))
	assert.Equal(t, 1, s.Parser.Len())

	require.NoError(t, os.Remove(source))
	assert.Error(t, api.Refresh(ctx))
	assert.Equal(t, 1, s.Parser.Len(), "failed refresh keeps records")

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	snapID, err := db.LatestSnapshotID(ctx, source)
	require.NoError(t, err)
	records, err := db.LoadSnapshot(ctx, snapID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Only"}, names(records))
}

func TestRefreshWithoutSource(t *testing.T) {
	api, _ := newTestServer(t, nil)
	require.NoError(t, api.Refresh(context.Background()))
	assert.Equal(t, 0, api.Len())
}
