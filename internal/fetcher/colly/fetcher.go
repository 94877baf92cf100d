// Package collyfetcher implements monitor.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/Krause140/eudr-monitor-24-7/internal/monitor"
)

// Config controls collector behavior.
type Config struct {
	// UserAgent identifies the monitor to the remote hosts.
	UserAgent string
	// Timeout bounds each page fetch.
	Timeout time.Duration
}

// Fetcher performs single-page GETs using the Colly collector. The body is
// returned byte-exact as served; no normalization happens before hashing.
type Fetcher struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

// New builds a Fetcher with a pooled transport.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	transport := newHTTPTransport()
	c.WithTransport(transport)
	return &Fetcher{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
	}
}

// Fetch executes one HTTP GET and returns the raw body. Failures come back
// as *monitor.FetchError classified as timeout, network, or status.
func (f *Fetcher) Fetch(ctx context.Context, source monitor.Source) ([]byte, error) {
	var (
		body     []byte
		fetchErr error
	)

	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.WithTransport(f.transport)

	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode >= 300 {
			fetchErr = monitor.NewStatusError(source.ID, r.StatusCode)
			return
		}
		fetchErr = monitor.ClassifyFetchError(source.ID, err)
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(source.ID)
	}()

	select {
	case <-ctx.Done():
		return nil, monitor.ClassifyFetchError(source.ID, ctx.Err())
	case err := <-done:
		if fetchErr != nil {
			return nil, fetchErr
		}
		if err != nil {
			return nil, monitor.ClassifyFetchError(source.ID, err)
		}
		return body, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
