package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hackgods/smart-scheduler/internal/api"
)

// ErrConflict is returned when the server rejects a booking with 409.
var ErrConflict = errors.New("booking conflict")

// StatusError carries any other non-2xx response.
type StatusError struct {
	StatusCode int
	Body       api.ErrorResponse
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s %s", e.StatusCode, e.Body.Error, e.Body.Details)
}

// Client talks to the scheduler HTTP API. Used by the seed and simulate commands.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Book(ctx context.Context, req api.CreateAppointmentRequest) (*api.AppointmentResponse, error) {
	var out api.AppointmentResponse
	if err := c.do(ctx, http.MethodPost, "/api/appointments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Cancel(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/appointments/"+url.PathEscape(id), nil, nil)
}

func (c *Client) List(ctx context.Context, date, customerEmail string) (*api.AppointmentListResponse, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	if customerEmail != "" {
		q.Set("customer_email", customerEmail)
	}

	path := "/api/appointments"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out api.AppointmentListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Availability(ctx context.Context, date, service string) ([]api.SlotResponse, error) {
	q := url.Values{"date": {date}, "service": {service}}

	var out []api.SlotResponse
	if err := c.do(ctx, http.MethodGet, "/api/availability?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Insights(ctx context.Context) (*api.InsightsResponse, error) {
	var out api.InsightsResponse
	if err := c.do(ctx, http.MethodGet, "/api/insights", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrConflict
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&serr.Body)
		return serr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
