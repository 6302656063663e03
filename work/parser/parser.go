package parser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"m3u-parser/work/config"
	"m3u-parser/work/locale"
	"m3u-parser/work/logger"
	"m3u-parser/work/metrics"
	"m3u-parser/work/probe"
	"m3u-parser/work/types"
	"m3u-parser/work/utils"
)

// Prober reports whether a stream link is live. It must not fail; every
// problem degrades to a not-live result.
type Prober interface {
	Check(ctx context.Context, link string) probe.Result
}

// Parser turns playlist text into ordered stream records. Entries are
// processed concurrently on a bounded worker pool.
type Parser struct {
	cfg    *config.Config
	prober Prober
	pool   *ants.Pool
}

// New creates a Parser with a pool of cfg.Workers goroutines. The pool is
// released by Close.
func New(cfg *config.Config, prober Prober) (*Parser, error) {
	pool, err := ants.NewPool(cfg.Workers, ants.WithPreAlloc(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &Parser{
		cfg:    cfg,
		prober: prober,
		pool:   pool,
	}, nil
}

// Close releases the worker pool.
func (p *Parser) Close() {
	p.pool.Release()
}

// SplitLines splits text on newlines, trims every line and drops the empty ones.
func SplitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Parse extracts one record per #EXTINF line that has a link, in the order
// the lines appear. When checkLive is set every record carries a liveness
// verdict and links that are not known to be live are probed.
//
// Parse fails only with types.ErrEmptyContent. Cancelling ctx makes pending
// probes report not-live; the parse still completes.
func (p *Parser) Parse(ctx context.Context, text string, checkLive bool) ([]types.StreamRecord, error) {
	start := time.Now()

	lines := SplitLines(text)
	if len(lines) == 0 {
		metrics.ParsesTotal.WithLabelValues("empty").Inc()
		return nil, types.ErrEmptyContent
	}

	var entries []int
	for i, line := range lines {
		if strings.Contains(line, extinfMarker) {
			entries = append(entries, i)
		}
	}

	logger.Debug("{parser - Parse} %d lines, %d entries, checkLive=%v", len(lines), len(entries), checkLive)

	// verdicts are shared only within this parse
	var checker Prober
	if checkLive && p.prober != nil {
		checker = probe.NewDedupe(p.prober)
	}

	// every unit owns exactly one slot, so no locking is needed
	slots := make([]*types.StreamRecord, len(entries))

	var wg sync.WaitGroup
	for slot, idx := range entries {
		wg.Add(1)
		unit := func() {
			defer wg.Done()
			slots[slot] = p.parseEntry(ctx, checker, lines, idx, checkLive)
		}

		if err := p.pool.Submit(unit); err != nil {
			logger.Warn("{parser - Parse} pool rejected entry at line %d, running inline: %v", idx, err)
			unit()
		}
	}
	wg.Wait()

	records := make([]types.StreamRecord, 0, len(slots))
	for _, rec := range slots {
		if rec != nil {
			records = append(records, *rec)
		}
	}

	metrics.ParsesTotal.WithLabelValues("ok").Inc()
	metrics.ParseDuration.Observe(time.Since(start).Seconds())
	metrics.Records.Set(float64(len(records)))
	logger.Info("{parser - Parse} parsed %d records from %d entries in %s", len(records), len(entries), time.Since(start).Round(time.Millisecond))

	return records, nil
}

// parseEntry builds the record for the #EXTINF line at lines[idx], or nil
// when the entry has no link.
func (p *Parser) parseEntry(ctx context.Context, checker Prober, lines []string, idx int, checkLive bool) *types.StreamRecord {
	link, ok := Classify(lines, idx)
	if !ok {
		logger.Debug("{parser - parseEntry} no link for entry at line %d", idx)
		return nil
	}

	live := link.Live
	if checkLive && !live && checker != nil {
		res := checker.Check(ctx, link.URL)
		live = res.Live
		logger.Debug("{parser - parseEntry} probed %s: live=%v status=%d attempts=%d", utils.LogURL(p.cfg, link.URL), res.Live, res.Status, res.Attempts)
	}

	return buildRecord(lines[idx], link.URL, live, checkLive)
}

// buildRecord assembles a record from the metadata line and its link.
func buildRecord(info, link string, live, checkLive bool) *types.StreamRecord {
	value := func(attr Attribute) *string {
		v, _ := Extract(info, attr)
		return types.StringPtr(v)
	}

	rec := &types.StreamRecord{
		Name:     value(AttrTitle),
		Logo:     value(AttrTvgLogo),
		URL:      link,
		Category: value(AttrGroupTitle),
		Tvg: types.Tvg{
			ID:   value(AttrTvgID),
			Name: value(AttrTvgName),
			URL:  value(AttrTvgURL),
		},
		Country: types.Country{
			Code: value(AttrTvgCountry),
		},
		Language: types.Language{
			Name: value(AttrTvgLanguage),
		},
	}

	if rec.Country.Code != nil {
		if name, ok := locale.CountryName(*rec.Country.Code); ok {
			rec.Country.Name = types.StringPtr(name)
		}
	}
	if rec.Language.Name != nil {
		if code, ok := locale.LanguageCode(*rec.Language.Name); ok {
			rec.Language.Code = types.StringPtr(code)
		}
	}

	if checkLive {
		rec.Live = types.BoolPtr(live)
	}
	return rec
}
