// Package api talks to the admission prediction service.
package api

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

	"github.com/p-n-ai/unimatch/internal/catalog"
	"github.com/p-n-ai/unimatch/internal/payload"
)

// Service is the set of remote calls a session makes.
type Service interface {
	FetchUniversities(ctx context.Context) ([]string, error)
	FetchMajors(ctx context.Context) ([]string, map[string]catalog.Detail, error)
	Predict(ctx context.Context, p payload.Payload) (*PredictResult, error)
	Recommend(ctx context.Context, p payload.Payload, params RecommendParams) (*Recommendations, error)
	Chat(ctx context.Context, message string) (*ChatReply, error)
}

// Client is the HTTP implementation of Service. It sets no timeout of its
// own; requests end when the caller's context does.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.client = c
	}
}

// WithBaseURL overrides the base URL passed to NewClient.
func WithBaseURL(u string) Option {
	return func(cl *Client) {
		cl.baseURL = strings.TrimRight(u, "/")
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchUniversities returns the knowledge-base university list.
func (c *Client) FetchUniversities(ctx context.Context) ([]string, error) {
	var out struct {
		Universities []string `json:"universities"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/kb/universities", nil, schemaUniversities, &out); err != nil {
		return nil, fmt.Errorf("fetch universities: %w", err)
	}
	return out.Universities, nil
}

// FetchMajors returns the major list and per-pair details keyed by the
// service's "University | Major" strings.
func (c *Client) FetchMajors(ctx context.Context) ([]string, map[string]catalog.Detail, error) {
	var out struct {
		Majors  []string                  `json:"majors"`
		Details map[string]catalog.Detail `json:"details"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/kb/majors-full", nil, schemaMajors, &out); err != nil {
		return nil, nil, fmt.Errorf("fetch majors: %w", err)
	}
	return out.Majors, out.Details, nil
}

// Predict posts p to /api/predict.
func (c *Client) Predict(ctx context.Context, p payload.Payload) (*PredictResult, error) {
	var out PredictResult
	if err := c.do(ctx, http.MethodPost, "/api/predict", p, schemaPredict, &out); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	return &out, nil
}

// Recommend posts p to /api/recommend with the given limits.
func (c *Client) Recommend(ctx context.Context, p payload.Payload, params RecommendParams) (*Recommendations, error) {
	q := url.Values{}
	q.Set("pref_n", strconv.Itoa(params.PreferredN))
	q.Set("alt_n", strconv.Itoa(params.AltN))
	q.Set("per_uni", strconv.Itoa(params.PerUni))

	var out Recommendations
	if err := c.do(ctx, http.MethodPost, "/api/recommend?"+q.Encode(), p, schemaRecommend, &out); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return &out, nil
}

// Chat sends one chatbot message.
func (c *Client) Chat(ctx context.Context, message string) (*ChatReply, error) {
	var out ChatReply
	req := struct {
		Message string `json:"message"`
	}{message}
	if err := c.do(ctx, http.MethodPost, "/api/chatbot", req, schemaChatbot, &out); err != nil {
		return nil, fmt.Errorf("chatbot: %w", err)
	}
	return &out, nil
}

// HealthChecker is implemented by services that can report reachability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthCheck fetches the university list and discards it.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.FetchUniversities(ctx)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, in any, schema string, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if apiErr := decodeError(resp.StatusCode, respBody); apiErr != nil {
		return apiErr
	}
	if err := checkSchema(schema, respBody); err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// decodeError returns an *Error for non-2xx statuses and for bodies
// carrying an "error" field.
func decodeError(status int, body []byte) *Error {
	var eb errorBody
	hasError := json.Unmarshal(body, &eb) == nil && len(eb.Error) > 0

	if status >= 200 && status < 300 && !hasError {
		return nil
	}
	e := &Error{Status: status}
	if hasError {
		e.Messages = eb.Error
	} else if s := strings.TrimSpace(string(body)); s != "" {
		e.Messages = []string{truncate(s, 200)}
	}
	return e
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
