package app

import (
	"net"
	"net/http"
	"time"
)

// newCrawlHTTPClient returns an HTTP client tuned for a sequential crawl
// across many distinct hosts: a small idle pool per host and bounded
// handshake times so one unreachable host cannot stall the batch.
// Per-request deadlines come from the fetcher's contexts, so no
// client-level timeout is set.
func newCrawlHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: transport}
}
