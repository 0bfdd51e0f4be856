package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrUnexpectedStatus = errors.New("unexpected response status")

// responseLimit caps how much of a downstream body is kept for logs and failure reports.
const responseLimit = 64 << 10

type Client struct {
	http *http.Client
}

type Response struct {
	StatusCode int
	Body       []byte
}

func New(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// PostJSON sends payload and reads the response. A non-2xx status returns both
// the response and an error wrapping ErrUnexpectedStatus.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, payload []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseLimit))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	response := &Response{StatusCode: resp.StatusCode, Body: body}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return response, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return response, nil
}
