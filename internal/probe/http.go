package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/jobmarket/internal/domain/model"
	"github.com/okian/jobmarket/internal/domain/types"
)

const maxBodyBytes = 4 << 20

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Get performs a GET request and returns status and body.
func (c *HTTPClient) Get(ctx context.Context, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

// Post performs a POST request with an optional JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) (int, []byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// Positions fetches the position catalog.
func (c *HTTPClient) Positions(ctx context.Context) ([]types.Option, error) {
	status, body, err := c.Get(ctx, "/api/positions")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: positions returned %d", ErrUnexpectedStatus, status)
	}
	var out []types.Option
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode positions: %w", err)
	}
	return out, nil
}

// Latest fetches the most recent bundle.
func (c *HTTPClient) Latest(ctx context.Context) (*model.Bundle, []byte, error) {
	status, body, err := c.Get(ctx, "/api/snapshot")
	if err != nil {
		return nil, nil, err
	}
	if status != http.StatusOK {
		return nil, body, fmt.Errorf("%w: snapshot returned %d", ErrUnexpectedStatus, status)
	}
	var b model.Bundle
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, body, fmt.Errorf("failed to decode bundle: %w", err)
	}
	return &b, body, nil
}

// Send submits a change to the endpoint its kind maps to.
func (c *HTTPClient) Send(ctx context.Context, ch Change) (int, []byte, error) {
	switch ch.Kind {
	case ChangeReplace:
		return c.Post(ctx, "/api/filter", map[string]any{
			"min_salary": ch.MinSalary,
			"max_salary": ch.MaxSalary,
			"selected":   nonNil(ch.Selected),
		})
	case ChangeSalary:
		return c.Post(ctx, "/api/filter/salary", map[string]int{
			"min_salary": ch.MinSalary,
			"max_salary": ch.MaxSalary,
		})
	case ChangeToggle:
		return c.Post(ctx, "/api/positions/"+url.PathEscape(ch.Position)+"/toggle", nil)
	default:
		return c.Post(ctx, "/api/refresh", nil)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
