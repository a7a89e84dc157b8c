// Package client provides the HTTP client wrapper for the storefront
// backend: base URL handling, cookie credentials, retry with backoff,
// error classification, and user-safe error normalization.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/faizansiddqui/storefront-client/pkg/logging"
)

// Config holds the client configuration.
type Config struct {
	// BaseURL is the backend root, e.g. "https://api.zaiddecor.example".
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per request. Defaults to 30 seconds.
	Timeout time.Duration

	// Retry overrides DefaultRetryConfig when MaxAttempts > 0.
	Retry RetryConfig

	// HTTPClient overrides the default client (for testing). When set,
	// Timeout is ignored.
	HTTPClient *http.Client
}

// Client is the backend HTTP client. Requests carry cookies (credentials
// included) via a shared jar, mirroring a browser session.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	retry      RetryConfig
	logger     zerolog.Logger
}

// New creates a backend client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Jar:     jar,
		}
	}

	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		retry:      retry,
		logger:     logging.NewLogger("backend-client"),
	}, nil
}

// GetJSON performs a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, "", out)
}

// PostJSON performs a POST request with a JSON body and decodes the
// response into out. A nil in sends an empty body.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, contentType, err := encodeJSON(in)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPost, path, nil, body, contentType, out)
}

// PatchJSON performs a PATCH request with a JSON body.
func (c *Client) PatchJSON(ctx context.Context, path string, in, out any) error {
	body, contentType, err := encodeJSON(in)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPatch, path, nil, body, contentType, out)
}

// DeleteJSON performs a DELETE request.
func (c *Client) DeleteJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, "", out)
}

// FormFile is one file part of a multipart upload.
type FormFile struct {
	Field    string
	Filename string
	Content  []byte
}

// PostMultipart performs a multipart/form-data POST (product uploads,
// review images) and decodes the response into out.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files []FormFile, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for field, value := range fields {
		if err := writer.WriteField(field, value); err != nil {
			return fmt.Errorf("write form field: %w", err)
		}
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return fmt.Errorf("write form file: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	return c.doJSON(ctx, http.MethodPost, path, nil, buf.Bytes(), writer.FormDataContentType(), out)
}

func encodeJSON(in any) ([]byte, string, error) {
	if in == nil {
		return nil, "", nil
	}
	body, err := json.Marshal(in)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request body: %w", err)
	}
	return body, "application/json", nil
}

// doJSON executes one logical request with retry, classification, and
// metrics, then decodes the successful JSON response into out (when out is
// non-nil). Failures come back as *APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body []byte, contentType string, out any) error {
	endpoint := path

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	reqURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var resp *http.Response

	retryErr := c.retryWithBackoff(ctx, func() (ErrorClass, error) {
		req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(body))
		if err != nil {
			return ErrorClassClient, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err = c.httpClient.Do(req)
		if err != nil {
			c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Request failed")
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return ErrorClassNetwork, &APIError{Class: ErrorClassNetwork, Err: err}
		}

		if resp.StatusCode >= 400 {
			class := classify(resp.StatusCode)
			errorsTotal.WithLabelValues(string(class)).Inc()
			requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

			apiErr := &APIError{
				StatusCode: resp.StatusCode,
				Class:      class,
				Message:    readBackendMessage(resp.Body),
			}
			resp.Body.Close()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status_code", resp.StatusCode).
				Str("error_class", string(class)).
				Msg("Backend request error")

			return class, apiErr
		}

		requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return "", nil
	})

	if retryErr != nil {
		return unwrapAPIError(retryErr)
	}

	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassServer,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

// readBackendMessage extracts a message field from an error response body.
// Both {"message": ...} and {"error": ...} envelopes occur in the wild.
func readBackendMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64*1024))
	if err != nil {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}

// unwrapAPIError surfaces the wrapped *APIError from retry failures so
// callers can always errors.As for it.
func unwrapAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return err
}
