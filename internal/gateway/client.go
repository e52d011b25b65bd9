package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/gehenna/gehenna/internal/names"
)

// Client reads the name list from the registry.
type Client struct {
	client *resty.Client
}

// NewClient creates a registry client for baseURL (e.g. http://localhost:8002).
func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	return &Client{client: c}
}

// envelope is the alternative list shape {names: [...], count: n}.
type envelope struct {
	Names []string `json:"names"`
	Count int      `json:"count"`
}

// FetchNames calls GET /api/get. Every failure (transport, timeout, non-2xx,
// undecodable body) is reported as names.ErrUpstreamUnavailable.
func (c *Client) FetchNames(ctx context.Context) ([]string, error) {
	resp, err := c.client.R().SetContext(ctx).Get("/api/get")
	if err != nil {
		return nil, fmt.Errorf("registry request: %w: %w", names.ErrUpstreamUnavailable, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("registry status %d: %w", resp.StatusCode(), names.ErrUpstreamUnavailable)
	}
	out, err := decodeNames(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("decode registry response: %w: %w", names.ErrUpstreamUnavailable, err)
	}
	return out, nil
}

func decodeNames(body []byte) ([]string, error) {
	b := bytes.TrimSpace(body)
	if len(b) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	if b[0] == '{' {
		var env envelope
		if err := json.Unmarshal(b, &env); err != nil {
			return nil, err
		}
		if env.Names == nil {
			return []string{}, nil
		}
		return env.Names, nil
	}
	out := []string{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
