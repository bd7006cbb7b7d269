package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"portfolio-backend/internal/resume"
)

// Client is the editor's view of the resume API.
type Client interface {
	Unlock(ctx context.Context, password string) error
	Mutate(ctx context.Context, req resume.MutateRequest) error
	List(ctx context.Context, category resume.Category) ([]resume.Entry, error)
}

// StatusError is a non-2xx answer the client could not map to a resume error.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("resume api status %d: %s", e.Status, e.Message)
}

// HTTPClient talks to the resume endpoints over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient builds a client for an API rooted at baseURL, e.g.
// http://localhost:8080/api/v1.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *HTTPClient) Unlock(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodPost, "/resume/unlock", map[string]string{"password": password}, nil)
}

func (c *HTTPClient) Mutate(ctx context.Context, req resume.MutateRequest) error {
	return c.do(ctx, http.MethodPost, "/resume", req, nil)
}

func (c *HTTPClient) List(ctx context.Context, category resume.Category) ([]resume.Entry, error) {
	var out []resume.Entry
	if err := c.do(ctx, http.MethodGet, "/resume/"+string(category), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("resume api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("resume api response parse: %w", err)
	}
	return nil
}

func statusError(status int, raw []byte) error {
	var parsed struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(raw, &parsed)
	msg := parsed.Error
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch status {
	case http.StatusUnauthorized:
		return resume.ErrUnauthorized
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", resume.ErrInvalidInput, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", resume.ErrNotFound, msg)
	}
	return &StatusError{Status: status, Message: msg}
}

// ServiceClient calls a resume.Service in-process.
type ServiceClient struct {
	Svc *resume.Service
}

func (c ServiceClient) Unlock(_ context.Context, password string) error {
	return c.Svc.Unlock(password)
}

func (c ServiceClient) Mutate(ctx context.Context, req resume.MutateRequest) error {
	return c.Svc.Mutate(ctx, req)
}

func (c ServiceClient) List(ctx context.Context, category resume.Category) ([]resume.Entry, error) {
	return c.Svc.List(ctx, category)
}

// IsUnauthorized reports whether err is a rejected password.
func IsUnauthorized(err error) bool {
	return errors.Is(err, resume.ErrUnauthorized)
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = ServiceClient{}
)
