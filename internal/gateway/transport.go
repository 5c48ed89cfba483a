package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/model"
)

// Transport delivers an envelope and returns the decoded JSON value the backend answered with.
// Any JSON value counts; objects, arrays and scalars are all acknowledgements.
type Transport interface {
	PostJSON(ctx context.Context, endpoint string, env model.Envelope) (interface{}, error)
	GetQuery(ctx context.Context, endpoint string, env model.Envelope) (interface{}, error)
}

// maxBodyBytes caps how much of a backend response is read
const maxBodyBytes = 1 << 20

// HTTPTransport implements Transport over net/http
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client; a nil client gets one with the given timeout
func NewHTTPTransport(client *http.Client, timeout time.Duration) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPTransport{client: client}
}

// PostJSON sends the envelope as the JSON request body
func (t *HTTPTransport) PostJSON(ctx context.Context, endpoint string, env model.Envelope) (interface{}, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return t.do(req)
}

// GetQuery sends action, JSON-encoded data and timestamp as query parameters on the same URL
func (t *HTTPTransport) GetQuery(ctx context.Context, endpoint string, env model.Envelope) (interface{}, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}

	data, err := json.Marshal(env.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data: %w", err)
	}

	q := u.Query()
	q.Set("action", string(env.Action))
	q.Set("data", string(data))
	q.Set("timestamp", env.Timestamp)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return t.do(req)
}

func (t *HTTPTransport) do(req *http.Request) (interface{}, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error: status %d", resp.StatusCode)
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}
	return decoded, nil
}
