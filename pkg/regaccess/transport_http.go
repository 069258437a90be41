// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package regaccess

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPTransport speaks to Duet standalone firmware over its HTTP API:
// the command is queued with rr_gcode and its output collected with rr_reply.
type HTTPTransport struct {
	baseURL  *url.URL
	password string
	client   *http.Client

	connected bool
	// ReplyDelay is how long to wait between rr_gcode and rr_reply
	ReplyDelay time.Duration
}

// NewHTTPTransport creates a transport for http(s)://host. A non-empty
// password is sent with rr_connect before the first command.
func NewHTTPTransport(rawURL, password string, skipSSLVerify bool) (*HTTPTransport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use http:// or https://)", u.Scheme)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if u.Scheme == "https" {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: skipSSLVerify}
	}

	return &HTTPTransport{
		baseURL:    u,
		password:   password,
		client:     &http.Client{Timeout: 10 * time.Second, Transport: transport},
		ReplyDelay: 50 * time.Millisecond,
	}, nil
}

func (h *HTTPTransport) endpoint(path string, query url.Values) string {
	u := *h.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + path
	u.RawQuery = query.Encode()
	return u.String()
}

func (h *HTTPTransport) get(ctx context.Context, path string, query url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint(path, query), nil)
	if err != nil {
		return "", err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: HTTP %d", path, resp.StatusCode)
	}
	return string(body), nil
}

// Exchange implements Transport
func (h *HTTPTransport) Exchange(ctx context.Context, line string) (string, error) {
	if !h.connected {
		if _, err := h.get(ctx, "rr_connect", url.Values{"password": {h.password}}); err != nil {
			return "", &RetryableError{Command: line, Err: fmt.Errorf("connect failed: %w", err)}
		}
		h.connected = true
	}

	if _, err := h.get(ctx, "rr_gcode", url.Values{"gcode": {line}}); err != nil {
		h.connected = false
		return "", &RetryableError{Command: line, Err: err}
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(h.ReplyDelay):
	}

	reply, err := h.get(ctx, "rr_reply", nil)
	if err != nil {
		return "", &RetryableError{Command: line, Err: err}
	}
	return strings.TrimSpace(reply), nil
}
