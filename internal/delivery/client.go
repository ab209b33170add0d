package delivery

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "demo-data-loader/1.0"
)

// Sink receives JSON payloads and answers with an HTTP status code.
type Sink interface {
	Post(ctx context.Context, body []byte) (int, error)
}

// Client posts payloads to a webhook URL.
type Client struct {
	url       string
	userAgent string
	http      *http.Client
}

// NewClient creates a webhook client. The caller is expected to have
// validated url already.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := &http.Client{
		Timeout: timeout,
		// a redirect is the sink's answer, not something to follow
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &Client{
		url:       url,
		userAgent: DefaultUserAgent,
		http:      hc,
	}
}

// WithUserAgent optionally overrides the User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	c2 := *c
	if strings.TrimSpace(ua) != "" {
		c2.userAgent = ua
	}
	return &c2
}

// Post sends body as a JSON POST and returns the response status. The
// response body is drained so the connection can be reused.
func (c *Client) Post(ctx context.Context, body []byte) (int, error) {
	if c == nil {
		return 0, errors.New("nil webhook client")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode, nil
}
