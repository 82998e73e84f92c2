// Package tracker is a minimal GraphQL client for an issue tracker.
//
// A request either succeeds completely, decoding data into the caller's
// value, or fails with a *TransportError and leaves that value untouched.
// Requests are not retried.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"
)

// ErrTransport matches every *TransportError via errors.Is.
var ErrTransport = errors.New("tracker request failed")

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 4 << 10

// GraphQLError is one entry of a GraphQL response's errors array.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// TransportError reports a failed tracker call: a network error, a
// non-2xx status, an undecodable body or GraphQL-level errors.
type TransportError struct {
	StatusCode int
	Body       string
	Errors     []GraphQLError
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case len(e.Errors) > 0:
		msgs := make([]string, len(e.Errors))
		for i, ge := range e.Errors {
			msgs[i] = ge.Message
		}
		return fmt.Sprintf("tracker graphql errors: %s", strings.Join(msgs, "; "))
	case e.StatusCode != 0:
		return fmt.Sprintf("tracker returned status %d: %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("tracker request failed: %v", e.Err)
	default:
		return ErrTransport.Error()
	}
}

// Unwrap returns the underlying network or decode error, if any.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrTransport) match.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Client calls a single GraphQL endpoint with a bearer API key.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New creates a client for endpoint. apiKey may be empty.
func New(endpoint, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the GraphQL URL the client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// Do posts query with variables and decodes the response data into out.
// out may be nil to discard data. On any failure out is not modified.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode tracker request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{StatusCode: resp.StatusCode, Body: truncate(body)}
	}

	var decoded response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return &TransportError{Err: fmt.Errorf("decode tracker response: %w", err)}
	}

	if len(decoded.Errors) > 0 {
		return &TransportError{StatusCode: resp.StatusCode, Errors: decoded.Errors}
	}

	if out == nil || len(decoded.Data) == 0 {
		return nil
	}

	return decodeInto(decoded.Data, out)
}

// decodeInto unmarshals into a fresh value and only then copies it to out,
// so a decode error cannot leave out half-filled.
func decodeInto(data json.RawMessage, out any) error {
	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("decode tracker data: out must be a non-nil pointer, got %T", out)
	}

	fresh := reflect.New(target.Elem().Type())
	if err := json.Unmarshal(data, fresh.Interface()); err != nil {
		return &TransportError{Err: fmt.Errorf("decode tracker data: %w", err)}
	}

	target.Elem().Set(fresh.Elem())
	return nil
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
