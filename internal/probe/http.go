package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTP reports ready when a GET to URL answers with a status below 500.
type HTTP struct {
	URL    string
	client *http.Client
}

func NewHTTP(u string, timeout time.Duration) HTTP {
	return HTTP{URL: u, client: &http.Client{Timeout: timeout}}
}

func (p HTTP) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return err
	}
	c := p.client
	if c == nil {
		c = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s answered %d", p.URL, resp.StatusCode)
	}
	return nil
}

func (p HTTP) Describe() string { return "http:" + p.URL }

// Port returns the URL's explicit port or the scheme default.
func (p HTTP) Port() string {
	u, err := url.Parse(p.URL)
	if err != nil {
		return ""
	}
	if port := u.Port(); port != "" {
		return port
	}
	if u.Scheme == "https" {
		return "443"
	}
	return "80"
}
