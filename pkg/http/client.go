package http

import (
	"net"
	"net/http"
	"time"
)

type clientConfig struct {
	requestTimeout        time.Duration
	dialTimeout           time.Duration
	keepAlive             time.Duration
	idleConnTimeout       time.Duration
	responseHeaderTimeout time.Duration
	maxIdleConns          int
	maxResponseBytes      int64
	wrappers              []TransportFunc
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		requestTimeout:        60 * time.Second,
		dialTimeout:           10 * time.Second,
		keepAlive:             90 * time.Second,
		idleConnTimeout:       90 * time.Second,
		responseHeaderTimeout: 60 * time.Second,
		maxIdleConns:          20,
		maxResponseBytes:      4 << 20,
	}
}

func buildClient(cfg *clientConfig) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.dialTimeout,
		KeepAlive: cfg.keepAlive,
	}

	var rt http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.maxIdleConns,
		MaxIdleConnsPerHost:   cfg.maxIdleConns,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.responseHeaderTimeout,
		IdleConnTimeout:       cfg.idleConnTimeout,
	}
	for _, wrap := range cfg.wrappers {
		rt = wrap(rt)
	}

	return &http.Client{
		Timeout:   cfg.requestTimeout,
		Transport: rt,
	}
}
