package httputil

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

type Clients struct {
	Page *http.Client // listing pages, optionally proxied
	API  *http.Client // direct, for internal calls
}

// NewClients builds the shared HTTP clients. proxyURL may be empty.
func NewClients(pageTimeout time.Duration, proxyURL string) *Clients {
	if pageTimeout <= 0 {
		pageTimeout = 15 * time.Second
	}

	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	return &Clients{
		Page: &http.Client{
			Timeout:   pageTimeout,
			Transport: transport,
		},
		API: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewPageRequest builds a GET request with browser-like headers; listing
// portals reject the default Go user agent.
func NewPageRequest(ctx context.Context, pageURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-CA,en;q=0.9")
	return req, nil
}
