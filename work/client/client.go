package client

import (
	"context"
	"net/http"
	"time"

	"m3u-parser/work/config"
)

// HeaderSettingClient wraps http.Client to automatically set headers
type HeaderSettingClient struct {
	Client    *http.Client
	userAgent string
}

// NewHeaderSettingClient builds a client whose requests carry the configured
// User-Agent and are bounded by the configured per-request timeout.
func NewHeaderSettingClient(cfg *config.Config) *HeaderSettingClient {
	timeout := cfg.Timeout()
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   timeout,
			ExpectContinueTimeout: 1 * time.Second,
			ResponseHeaderTimeout: timeout,
		},
	}

	return &HeaderSettingClient{
		Client:    client,
		userAgent: cfg.UserAgent,
	}
}

// Do sends req after applying the default headers.
func (hsc *HeaderSettingClient) Do(req *http.Request) (*http.Response, error) {
	hsc.setHeaders(req)
	return hsc.Client.Do(req)
}

// Get issues a GET for rawURL bound to ctx.
func (hsc *HeaderSettingClient) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return hsc.Do(req)
}

func (hsc *HeaderSettingClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", hsc.userAgent)
	req.Header.Set("Accept", "*/*")
}
