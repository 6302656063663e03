package parser

import (
	"context"
	"io"
	"sync"

	"m3u-parser/work/client"
	"m3u-parser/work/config"
	"m3u-parser/work/fetcher"
	"m3u-parser/work/logger"
	"m3u-parser/work/playlist"
	"m3u-parser/work/probe"
	"m3u-parser/work/store"
	"m3u-parser/work/types"
	"m3u-parser/work/utils"
)

// M3uParser ties retrieval, parsing, the record store and serialization
// together. The embedded Store provides the filter, sort, random and reset
// operations over the most recently parsed playlist.
type M3uParser struct {
	*store.Store

	cfg     *config.Config
	parser  *Parser
	fetcher *fetcher.Fetcher

	mu     sync.RWMutex
	source string
}

// NewM3uParser builds a parser from cfg. The probe and retrieval clients
// share one header-setting HTTP client. Call Close when done.
func NewM3uParser(cfg *config.Config, opts ...store.Option) (*M3uParser, error) {
	httpClient := client.NewHeaderSettingClient(cfg)
	f := fetcher.New(cfg, httpClient)
	p, err := New(cfg, probe.New(cfg, httpClient))
	if err != nil {
		return nil, err
	}

	if cfg.LegacyRemoveByCategory {
		opts = append([]store.Option{store.WithLegacyRemoveByCategory()}, opts...)
	}

	return &M3uParser{
		Store:   store.New(opts...),
		cfg:     cfg,
		parser:  p,
		fetcher: f,
	}, nil
}

// Close releases the worker pool.
func (m *M3uParser) Close() {
	m.parser.Close()
}

// ParseM3u retrieves the playlist at pathOrURL and parses it, replacing any
// previously parsed records. On failure the previous records are kept.
func (m *M3uParser) ParseM3u(ctx context.Context, pathOrURL string, checkLive bool) error {
	content, err := m.fetcher.Fetch(ctx, pathOrURL)
	if err != nil {
		logger.Error("{parser/m3u - ParseM3u} %v", err)
		return err
	}

	if err := m.Parse(ctx, content, checkLive); err != nil {
		return err
	}
	m.setSource(pathOrURL)
	return nil
}

// ParseReader reads a playlist from r and parses it.
func (m *M3uParser) ParseReader(ctx context.Context, r io.Reader, checkLive bool) error {
	content, err := fetcher.FromReader(r, "reader")
	if err != nil {
		return err
	}
	if err := m.Parse(ctx, content, checkLive); err != nil {
		return err
	}
	m.setSource("")
	return nil
}

// Parse parses playlist text, replacing any previously parsed records.
func (m *M3uParser) Parse(ctx context.Context, content string, checkLive bool) error {
	records, err := m.parser.Parse(ctx, content, checkLive)
	if err != nil {
		return err
	}
	m.Load(records)
	return nil
}

// Source returns the path or URL of the last successful ParseM3u.
func (m *M3uParser) Source() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.source
}

func (m *M3uParser) setSource(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.source = source
}

// GetStreamsInfo returns a copy of the current records.
func (m *M3uParser) GetStreamsInfo() []types.StreamRecord {
	return m.Streams()
}

// GetJSON renders the current records as JSON indented by indent spaces.
func (m *M3uParser) GetJSON(indent int) (string, error) {
	return playlist.JSON(m.Streams(), indent)
}

// GetM3U renders the current records as an M3U playlist.
func (m *M3uParser) GetM3U() string {
	return playlist.M3U(m.Streams())
}

// SaveToFile writes the current records to path. The format comes from the
// path's extension when it has one, else from format (default json). It
// returns the path written.
func (m *M3uParser) SaveToFile(ctx context.Context, path, format string) (string, error) {
	source := m.Source()
	written, err := playlist.Save(ctx, path, format, source, m.Streams())
	if err != nil {
		logger.Error("{parser/m3u - SaveToFile} failed to save %s: %v", path, err)
		return "", err
	}
	logger.Debug("{parser/m3u - SaveToFile} saved records from %s", utils.LogURL(m.cfg, source))
	return written, nil
}
