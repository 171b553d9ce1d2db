package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hamed0406/uptimewatch/internal/domain"
)

// Client talks to the monitor daemon's REST API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			// a manual cycle waits for every probe
			Timeout: 2 * time.Minute,
		},
	}
}

type EndpointView struct {
	domain.Endpoint
	Stats          domain.Stats              `json:"stats"`
	RecentDowntime []domain.DowntimeInterval `json:"recent_downtime"`
	Ticks          []domain.Tick             `json:"ticks,omitempty"`
}

// EndpointInput carries create/update fields; nil fields are left unchanged.
type EndpointInput struct {
	Name   *string `json:"name,omitempty"`
	URL    *string `json:"url,omitempty"`
	Email  *string `json:"email,omitempty"`
	Active *bool   `json:"is_active,omitempty"`
}

type CycleResult struct {
	Started    time.Time `json:"started"`
	DurationMS int64     `json:"duration_ms"`
	Endpoints  int       `json:"endpoints"`
	Probed     int       `json:"probed"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Down       int       `json:"down"`
}

type CheckResult struct {
	EndpointID     domain.EndpointID `json:"endpoint_id"`
	Status         domain.Status     `json:"status"`
	Previous       domain.Status     `json:"previous"`
	Transition     string            `json:"transition"`
	Downtime       string            `json:"downtime"`
	HTTPStatus     int               `json:"http_status"`
	ResponseTimeMS *int64            `json:"response_time_ms"`
	Reason         string            `json:"reason"`
	CheckedAt      time.Time         `json:"checked_at"`
}

// Error is a non-2xx API response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string { return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message) }

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *Client) ListEndpoints(ctx context.Context) ([]EndpointView, error) {
	var out []EndpointView
	if err := c.do(ctx, http.MethodGet, "/api/endpoints", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetEndpoint(ctx context.Context, id string) (*EndpointView, error) {
	var out EndpointView
	if err := c.do(ctx, http.MethodGet, "/api/endpoints/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddEndpoint(ctx context.Context, in EndpointInput) (*domain.Endpoint, error) {
	var out domain.Endpoint
	if err := c.do(ctx, http.MethodPost, "/api/endpoints", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateEndpoint(ctx context.Context, id string, in EndpointInput) (*domain.Endpoint, error) {
	var out domain.Endpoint
	if err := c.do(ctx, http.MethodPut, "/api/endpoints/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEndpoint(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/endpoints/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Stats(ctx context.Context, id string) (*domain.Stats, error) {
	var out domain.Stats
	if err := c.do(ctx, http.MethodGet, "/api/endpoints/"+url.PathEscape(id)+"/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Ticks(ctx context.Context, id string) ([]domain.Tick, error) {
	var out []domain.Tick
	if err := c.do(ctx, http.MethodGet, "/api/endpoints/"+url.PathEscape(id)+"/ticks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Downtime(ctx context.Context, id string, limit int) ([]domain.DowntimeInterval, error) {
	path := "/api/endpoints/" + url.PathEscape(id) + "/downtime"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []domain.DowntimeInterval
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Check(ctx context.Context, id string) (*CheckResult, error) {
	var out CheckResult
	if err := c.do(ctx, http.MethodPost, "/api/endpoints/"+url.PathEscape(id)+"/check", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RunCycle(ctx context.Context) (*CycleResult, error) {
	var out CycleResult
	if err := c.do(ctx, http.MethodPost, "/api/cycles", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(b))
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
