package services

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultDialTimeout bounds a single TCP probe.
const DefaultDialTimeout = time.Second

// TCPProbe succeeds once addr accepts a connection.
func TCPProbe(addr string, dialTimeout time.Duration) Check {
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	return func(ctx context.Context) bool {
		d := net.Dialer{Timeout: dialTimeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}
}

// HTTPProbe succeeds once a GET of url answers 200 OK. A nil client uses a
// client with a short timeout.
func HTTPProbe(url string, client *http.Client) Check {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return func(ctx context.Context) bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}
}

// TCPEndpointProbe is a Probe that dials the endpoint.
func TCPEndpointProbe(dialTimeout time.Duration) Probe {
	return func(ep Endpoint) Check {
		return TCPProbe(ep.String(), dialTimeout)
	}
}

// HTTPEndpointProbe is a Probe that GETs path on the endpoint over plain HTTP.
func HTTPEndpointProbe(path string, client *http.Client) Probe {
	path = strings.TrimPrefix(path, "/")
	return func(ep Endpoint) Check {
		return HTTPProbe(ep.URL("http")+path, client)
	}
}
