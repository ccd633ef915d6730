package connect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/letusconnect/connect-gateway-go/internal/config"
	"golang.org/x/oauth2"
)

// Client wraps the remote LetUsConnect REST API: base URL handling, bearer
// token injection and error normalization. All durable state lives behind
// this API; the gateway only reads aggregates and acknowledges reads.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new LetUsConnect API client. The bearer token is
// injected on every request by the oauth2 transport.
func NewClient(cfg config.ConnectConfig) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.APIToken,
		TokenType:   "Bearer",
	})

	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// APIError represents a normalized LetUsConnect API error
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("letusconnect API error [%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

// errorEnvelope mirrors the API's error response body
type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) patch(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = strings.NewReader(string(raw))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return normalizeError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

// normalizeError converts an error response body into a typed APIError,
// falling back to the HTTP status text when the body is not the expected
// envelope.
func normalizeError(statusCode int, raw []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Code:       http.StatusText(statusCode),
		Message:    http.StatusText(statusCode),
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error != nil {
			if envelope.Error.Code != "" {
				apiErr.Code = envelope.Error.Code
			}
			if envelope.Error.Message != "" {
				apiErr.Message = envelope.Error.Message
			}
		} else if envelope.Message != "" {
			apiErr.Message = envelope.Message
		}
	}

	return apiErr
}
