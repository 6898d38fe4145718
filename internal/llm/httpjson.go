package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StatusError is a non-2xx reply from a provider's HTTP API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// jsonAPI is a minimal JSON-over-HTTP client for providers without an SDK.
type jsonAPI struct {
	baseURL string
	client  *http.Client
	header  http.Header

	// errorMessage pulls a readable message out of an error body; "" means
	// the raw body is used.
	errorMessage func(body []byte) string
}

func newJSONAPI(baseURL string, client *http.Client, header http.Header, errorMessage func([]byte) string) *jsonAPI {
	if header == nil {
		header = http.Header{}
	}
	return &jsonAPI{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		client:       client,
		header:       header,
		errorMessage: errorMessage,
	}
}

// post sends in as JSON to path and decodes the reply into out.
func (a *jsonAPI) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return a.do(ctx, http.MethodPost, path, bytes.NewReader(body), out)
}

// get fetches path and decodes the reply into out, which may be nil.
func (a *jsonAPI) get(ctx context.Context, path string, out any) error {
	return a.do(ctx, http.MethodGet, path, nil, out)
}

func (a *jsonAPI) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, vs := range a.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if a.errorMessage != nil {
			msg = a.errorMessage(data)
		}
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
