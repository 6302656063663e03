// Package handlers exposes parsed playlists over HTTP. Each playlist lives in
// a session holding its own parser and record store.
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"m3u-parser/work/config"
	"m3u-parser/work/logger"
	"m3u-parser/work/metrics"
	"m3u-parser/work/parser"
	"m3u-parser/work/utils"
)

// DefaultSessionID names the session loaded from config.DefaultSource.
const DefaultSessionID = "default"

// Session is one parsed playlist and the operations applied to it.
type Session struct {
	ID      string
	Parser  *parser.M3uParser
	Created time.Time
}

// API owns the session registry.
type API struct {
	cfg      *config.Config
	sessions *xsync.MapOf[string, *Session]
}

// NewAPI returns an API with no sessions.
func NewAPI(cfg *config.Config) *API {
	return &API{
		cfg:      cfg,
		sessions: xsync.NewMapOf[string, *Session](),
	}
}

// CreateSession parses a playlist into a new session. Exactly one of source
// (path or URL) and content must be set. An empty id gets a random one.
func (a *API) CreateSession(ctx context.Context, id, source, content string, checkLive bool) (*Session, error) {
	if (source == "") == (content == "") {
		return nil, errSourceOrContent
	}

	p, err := parser.NewM3uParser(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}

	if source != "" {
		err = p.ParseM3u(ctx, source, checkLive)
	} else {
		err = p.Parse(ctx, content, checkLive)
	}
	if err != nil {
		p.Close()
		return nil, err
	}

	if id == "" {
		id = uuid.NewString()
	}
	s := &Session{ID: id, Parser: p, Created: time.Now()}
	if old, loaded := a.sessions.LoadAndStore(id, s); loaded {
		old.Parser.Close()
	}
	metrics.Sessions.Set(float64(a.sessions.Size()))

	logger.Info("{handlers/api - CreateSession} session %s holds %d streams", id, p.Len())
	return s, nil
}

// Session looks up a session by id.
func (a *API) Session(id string) (*Session, bool) {
	return a.sessions.Load(id)
}

// DeleteSession drops a session and releases its parser.
func (a *API) DeleteSession(id string) bool {
	s, ok := a.sessions.LoadAndDelete(id)
	if !ok {
		return false
	}
	s.Parser.Close()
	metrics.Sessions.Set(float64(a.sessions.Size()))
	logger.Debug("{handlers/api - DeleteSession} removed session %s", id)
	return true
}

// Len returns the number of sessions.
func (a *API) Len() int {
	return a.sessions.Size()
}

// Close releases every session.
func (a *API) Close() {
	a.sessions.Range(func(id string, s *Session) bool {
		a.DeleteSession(id)
		return true
	})
}

// Refresh re-parses config.DefaultSource into the default session, creating
// it on first use. A failed refresh keeps the previous records. When
// config.DatabasePath is set the result is written there as a snapshot.
func (a *API) Refresh(ctx context.Context) error {
	source := a.cfg.DefaultSource
	if source == "" {
		return nil
	}

	start := time.Now()
	s, ok := a.Session(DefaultSessionID)
	if ok {
		if err := s.Parser.ParseM3u(ctx, source, true); err != nil {
			return fmt.Errorf("failed to refresh %s: %w", utils.LogURL(a.cfg, source), err)
		}
	} else {
		var err error
		if s, err = a.CreateSession(ctx, DefaultSessionID, source, "", true); err != nil {
			return fmt.Errorf("failed to load %s: %w", utils.LogURL(a.cfg, source), err)
		}
	}

	logger.Info("{handlers/api - Refresh} loaded %d streams from %s in %s",
		s.Parser.Len(), utils.LogURL(a.cfg, source), time.Since(start).Round(time.Millisecond))

	if a.cfg.DatabasePath == "" {
		return nil
	}
	written, err := s.Parser.SaveToFile(ctx, a.cfg.DatabasePath, "sqlite")
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	logger.Debug("{handlers/api - Refresh} snapshot written to %s", written)
	return nil
}
