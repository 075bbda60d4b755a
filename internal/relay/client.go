package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout matches the stock Shelly integration.
	DefaultTimeout = 3 * time.Second

	triggerPathFmt = "http://%s/relay/0?turn=on"
	maxDrainBytes  = 4 << 10
)

// Config describes the relay endpoint. Empty strings mean "not set".
type Config struct {
	Host           string
	Username       string
	Password       string
	RequestTimeout time.Duration
}

// Client pulses a Shelly-style relay over HTTP. It holds no state besides its
// immutable config and the underlying http.Client.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a client; a non-positive timeout falls back to DefaultTimeout.
func NewClient(cfg Config) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// Configured reports whether a relay host is set.
func (c *Client) Configured() bool {
	return c.cfg.Host != ""
}

// Host returns the configured relay host.
func (c *Client) Host() string { return c.cfg.Host }

// TriggerOpen issues a single GET that switches relay 0 on. Without a host the
// call is a no-op success. There are no retries.
func (c *Client) TriggerOpen(ctx context.Context) error {
	if !c.Configured() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.triggerURL(), nil)
	if err != nil {
		return &Error{Kind: KindUnreachable, Host: c.cfg.Host, Err: fmt.Errorf("build request: %w", err)}
	}
	if c.cfg.Username != "" && c.cfg.Password != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindUnreachable, Host: c.cfg.Host, Err: err}
	}
	defer func() {
		_, _ = io.CopyN(io.Discard, resp.Body, maxDrainBytes)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &Error{Kind: KindRejected, Host: c.cfg.Host, StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) triggerURL() string {
	return fmt.Sprintf(triggerPathFmt, c.cfg.Host)
}
