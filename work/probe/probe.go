package probe

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/grafov/m3u8"
	"go.uber.org/ratelimit"

	"m3u-parser/work/cache"
	"m3u-parser/work/client"
	"m3u-parser/work/config"
	"m3u-parser/work/logger"
	"m3u-parser/work/metrics"
	"m3u-parser/work/utils"
)

// Kind classifies a live link by what its response body turned out to be.
type Kind string

const (
	KindNone      Kind = "none"       // not live, or never reached
	KindDirect    Kind = "direct"     // live, body is not an HLS playlist
	KindHLSMaster Kind = "hls-master" // live, body is an HLS master playlist
	KindHLSMedia  Kind = "hls-media"  // live, body is an HLS media playlist
)

// maxPlaylistBytes bounds how much of an HLS response is read for classification.
const maxPlaylistBytes = 1 << 20

// cacheSize bounds the number of remembered probe results.
const cacheSize = 10_000

// Result is the outcome of probing one link.
type Result struct {
	Live     bool // true only when the final attempt answered 200
	Status   int  // status of the final attempt, 0 on transport failure
	Attempts int  // requests actually sent
	Kind     Kind
}

// Prober checks whether stream links answer HTTP 200. It never returns an
// error: every failure is reported as a not-live Result.
type Prober struct {
	client      *client.HeaderSettingClient
	cfg         *config.Config
	limiter     ratelimit.Limiter
	cache       *cache.Cache[Result]
	maxAttempts int
	backoff     time.Duration
}

// Option customizes a Prober.
type Option func(*Prober)

// WithBackoff sets the base delay between attempts; attempt n waits n*d.
func WithBackoff(d time.Duration) Option {
	return func(p *Prober) {
		p.backoff = d
	}
}

// New builds a Prober from cfg. A nil httpClient gets a header-setting
// client built from the same config.
func New(cfg *config.Config, httpClient *client.HeaderSettingClient, opts ...Option) *Prober {
	if httpClient == nil {
		httpClient = client.NewHeaderSettingClient(cfg)
	}

	p := &Prober{
		client:      httpClient,
		cfg:         cfg,
		maxAttempts: cfg.MaxAttempts,
		backoff:     250 * time.Millisecond,
	}
	if p.maxAttempts < 1 {
		p.maxAttempts = 1
	}

	if cfg.ProbeRateLimit > 0 {
		p.limiter = ratelimit.New(cfg.ProbeRateLimit)
	} else {
		p.limiter = ratelimit.NewUnlimited()
	}

	// config validation already rejected unparsable values
	ttl, _ := cfg.CacheTTL()
	p.cache = cache.New[Result](cacheSize, ttl)

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Check probes link and reports whether it is live. Cancelling ctx ends the
// probe early with a not-live result, which is not cached.
func (p *Prober) Check(ctx context.Context, link string) Result {
	if res, ok := p.cache.Get(link); ok {
		metrics.ProbeCacheHits.Inc()
		logger.Debug("{probe - Check} cache hit for %s: live=%v", utils.LogURL(p.cfg, link), res.Live)
		return res
	}

	start := time.Now()
	res := p.check(ctx, link)
	metrics.ProbeDuration.Observe(time.Since(start).Seconds())
	metrics.ProbesTotal.WithLabelValues(resultLabel(res.Live), string(res.Kind)).Inc()

	if ctx.Err() == nil {
		p.cache.Set(link, res)
	}
	return res
}

func (p *Prober) check(ctx context.Context, link string) Result {
	res := Result{Kind: KindNone}

	if !utils.IsRemote(link) {
		logger.Debug("{probe - check} skipping non-http link %s", utils.LogURL(p.cfg, link))
		return res
	}

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return res
			case <-time.After(time.Duration(attempt-1) * p.backoff):
			}
		}

		p.limiter.Take()
		res.Attempts = attempt

		status, kind, err := p.attempt(ctx, link)
		res.Status = status
		if err != nil {
			logger.Debug("{probe - check} attempt %d/%d for %s failed: %v", attempt, p.maxAttempts, utils.LogURL(p.cfg, link), err)
			if ctx.Err() != nil {
				return res
			}
			continue
		}

		if status == http.StatusOK {
			res.Live = true
			res.Kind = kind
			return res
		}

		if !retryable(status) {
			logger.Debug("{probe - check} %s answered %d, not retrying", utils.LogURL(p.cfg, link), status)
			return res
		}
		logger.Debug("{probe - check} attempt %d/%d for %s answered %d", attempt, p.maxAttempts, utils.LogURL(p.cfg, link), status)
	}

	return res
}

// attempt sends a single GET and classifies a 200 response body.
func (p *Prober) attempt(ctx context.Context, link string) (int, Kind, error) {
	resp, err := p.client.Get(ctx, link)
	if err != nil {
		return 0, KindNone, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, KindNone, nil
	}

	return resp.StatusCode, classify(resp), nil
}

// classify inspects an HLS response to tell master from media playlists.
// Anything else, including undecodable playlists, is direct.
func classify(resp *http.Response) Kind {
	if !isPlaylistContentType(resp.Header.Get("Content-Type")) {
		return KindDirect
	}

	_, listType, err := m3u8.DecodeFrom(bufio.NewReader(io.LimitReader(resp.Body, maxPlaylistBytes)), true)
	if err != nil {
		return KindDirect
	}

	switch listType {
	case m3u8.MASTER:
		return KindHLSMaster
	case m3u8.MEDIA:
		return KindHLSMedia
	default:
		return KindDirect
	}
}

func isPlaylistContentType(ct string) bool {
	return strings.Contains(strings.ToLower(ct), "mpegurl")
}

// retryable reports whether a non-200 status warrants another attempt.
func retryable(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}

func resultLabel(live bool) string {
	if live {
		return "live"
	}
	return "dead"
}
