package fetcher

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/klauspost/compress/gzip"

	"m3u-parser/work/client"
	"m3u-parser/work/config"
	"m3u-parser/work/logger"
	"m3u-parser/work/types"
	"m3u-parser/work/utils"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Fetcher retrieves playlist text from local files or http(s) URLs.
type Fetcher struct {
	client *client.HeaderSettingClient
	cfg    *config.Config
}

// New creates a Fetcher. A nil httpClient gets one built from cfg.
func New(cfg *config.Config, httpClient *client.HeaderSettingClient) *Fetcher {
	if httpClient == nil {
		httpClient = client.NewHeaderSettingClient(cfg)
	}
	return &Fetcher{client: httpClient, cfg: cfg}
}

// Fetch returns the playlist text at source, which is an http(s) URL or a
// local path. Gzip-compressed content is inflated. Every failure is a
// *types.RetrievalError.
func (f *Fetcher) Fetch(ctx context.Context, source string) (string, error) {
	if utils.IsRemote(source) {
		return f.fetchRemote(ctx, source)
	}
	return f.fetchFile(source)
}

func (f *Fetcher) fetchRemote(ctx context.Context, source string) (string, error) {
	logger.Debug("{fetcher - fetchRemote} fetching %s", utils.LogURL(f.cfg, source))

	resp, err := f.client.Get(ctx, source)
	if err != nil {
		return "", &types.RetrievalError{Source: utils.LogURL(f.cfg, source), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &types.RetrievalError{
			Source: utils.LogURL(f.cfg, source),
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	return FromReader(resp.Body, utils.LogURL(f.cfg, source))
}

func (f *Fetcher) fetchFile(path string) (string, error) {
	logger.Debug("{fetcher - fetchFile} reading %s", path)

	file, err := os.Open(path)
	if err != nil {
		return "", &types.RetrievalError{Source: path, Err: err}
	}
	defer file.Close()

	return FromReader(file, path)
}

// FromReader reads all of r, inflating gzip content. name identifies the
// source in errors.
func FromReader(r io.Reader, name string) (string, error) {
	br := bufio.NewReader(r)

	var src io.Reader = br
	if magic, err := br.Peek(len(gzipMagic)); err == nil && bytes.Equal(magic, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return "", &types.RetrievalError{Source: name, Err: fmt.Errorf("failed to open gzip stream: %w", err)}
		}
		defer gz.Close()
		src = gz
		logger.Debug("{fetcher - FromReader} inflating gzip content from %s", name)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", &types.RetrievalError{Source: name, Err: err}
	}
	return string(data), nil
}
