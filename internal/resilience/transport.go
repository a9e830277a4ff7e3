package resilience

import (
	"net"
	"net/http"
	"time"
)

// HTTPClientConfig sizes the shared connection pool for outbound calls
type HTTPClientConfig struct {
	MaxIdle     int
	MaxActive   int
	IdleTimeout time.Duration
	Timeout     time.Duration
}

// NewHTTPClient returns a client backed by one pooled transport. Per-request
// API clients share it so connections are reused across rankings.
func NewHTTPClient(cfg HTTPClientConfig) *http.Client {
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = 20
	}
	if cfg.MaxActive <= 0 {
		cfg.MaxActive = 50
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          cfg.MaxIdle,
		MaxConnsPerHost:       cfg.MaxActive,
		MaxIdleConnsPerHost:   max(cfg.MaxIdle/2, 1),
		IdleConnTimeout:       cfg.IdleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
}
