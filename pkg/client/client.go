// Package client is a typed HTTP client for the unit API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bobox/internal/unit"
)

const DefaultBaseURL = "http://localhost:3001"

type Client struct {
	HTTPClient *http.Client
	BaseURL    string
}

func New(baseURL string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    baseURL,
	}
}

// APIError is a non-2xx response decoded from the API error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Allowed    []unit.Status
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("unit api: status=%d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("unit api: status=%d code=%s: %s", e.StatusCode, e.Code, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Allowed []unit.Status `json:"allowed"`
		} `json:"details"`
	} `json:"error"`
}

// List returns all units, or only those in status when it is non-empty.
func (c *Client) List(ctx context.Context, status unit.Status) ([]unit.Unit, error) {
	path := "/api/units"
	if status != "" {
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}
	var out []unit.Unit
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (unit.Unit, error) {
	var out unit.Unit
	err := c.doJSON(ctx, http.MethodGet, "/api/units/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, name string, kind unit.Kind) (unit.Unit, error) {
	var out unit.Unit
	err := c.doJSON(ctx, http.MethodPost, "/api/units", unit.CreateUnitRequest{Name: name, Type: string(kind)}, &out)
	return out, err
}

func (c *Client) UpdateStatus(ctx context.Context, id string, status unit.Status) (unit.Unit, error) {
	var out unit.Unit
	err := c.doJSON(ctx, http.MethodPut, "/api/units/"+url.PathEscape(id), unit.UpdateStatusRequest{Status: string(status)}, &out)
	return out, err
}

func (c *Client) Transitions(ctx context.Context, id string) (unit.TransitionsResponse, error) {
	var out unit.TransitionsResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/units/"+url.PathEscape(id)+"/transitions", nil, &out)
	return out, err
}

func (c *Client) Statuses(ctx context.Context) ([]unit.StatusInfo, error) {
	var out []unit.StatusInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/statuses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody any, respData any) error {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	var body io.Reader
	if reqBody != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
			return err
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, body)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if len(b) > 0 {
		if err := json.Unmarshal(b, &env); err != nil {
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(b))}
			}
			return fmt.Errorf("decode unit api response failed: %w body=%s", err, string(b))
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Allowed = env.Error.Details.Allowed
		}
		return apiErr
	}

	if respData != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, respData); err != nil {
			return fmt.Errorf("decode unit api data failed: %w", err)
		}
	}
	return nil
}
