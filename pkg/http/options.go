package http

import (
	"net/http"
	"time"
)

type HttpOpts func(*clientConfig)

// TransportFunc wraps a RoundTripper. Wrappers apply in the order they are added,
// so the last one added sees the request first.
type TransportFunc func(http.RoundTripper) http.RoundTripper

func WithRequestTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		c.requestTimeout = timeout
	}
}

func WithConnClientTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		c.dialTimeout = timeout
	}
}

func WithClientKeepAlive(keepAlive time.Duration) HttpOpts {
	return func(c *clientConfig) {
		c.keepAlive = keepAlive
	}
}

func WithIdleConnTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		c.idleConnTimeout = timeout
	}
}

func WithResponseHeaderTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		c.responseHeaderTimeout = timeout
	}
}

// WithMaxResponseBytes caps how much of a response body is read
func WithMaxResponseBytes(n int64) HttpOpts {
	return func(c *clientConfig) {
		c.maxResponseBytes = n
	}
}

func WithTransport(transport TransportFunc) HttpOpts {
	return func(c *clientConfig) {
		c.wrappers = append(c.wrappers, transport)
	}
}

// WithAuthToken sends the token as a bearer Authorization header
func WithAuthToken(token string) HttpOpts {
	return WithHeaders(map[string]string{"Authorization": "Bearer " + token}, token != "")
}

// WithUserAgent sets the User-Agent of every request
func WithUserAgent(ua string) HttpOpts {
	return WithHeaders(map[string]string{"User-Agent": ua}, ua != "")
}

// WithHeaders sets static headers on every request when enabled is true
func WithHeaders(headers map[string]string, enabled bool) HttpOpts {
	if !enabled {
		return func(*clientConfig) {}
	}
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{headers: headers, next: rt}
	})
}

// WithRequestLogging logs every outbound request at debug level
func WithRequestLogging() HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &logTransport{next: rt}
	})
}
