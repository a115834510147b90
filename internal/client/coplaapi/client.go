// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package coplaapi is a typed client for the CoPla REST API.

Responses are unwrapped from the {data} envelope; failures in the
{error, code} envelope become [clienterr.Error] values. The session cookie
is kept in a cookie jar and can be exported with [Client.SessionToken] so the
CLI can persist it between runs.
*/
package coplaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/copla/copla/internal/client/clienterr"
	"github.com/copla/copla/internal/platform/constants"
)

// Client talks to one CoPla deployment.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
}

// Option customizes a [Client].
type Option func(*Client)

// WithHTTPClient uses httpClient for transport. A cookie jar is added when it
// has none.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		copied := *httpClient
		if copied.Jar == nil {
			copied.Jar = c.http.Jar
		}
		c.http = &copied
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a client for the API served at baseURL (scheme and host).
func New(baseURL string, options ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, clienterr.New(clienterr.Validation, "Invalid API base URL: %q", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("coplaapi_new_failed: %w", err)
	}

	client := &Client{
		baseURL: parsed,
		http:    &http.Client{Jar: jar, Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}

func (c *Client) apiURL() *url.URL {
	return c.baseURL.JoinPath(constants.SessionCookiePath + "/")
}

// SessionToken returns the current session cookie value, if any.
func (c *Client) SessionToken() string {
	for _, cookie := range c.http.Jar.Cookies(c.apiURL()) {
		if cookie.Name == constants.SessionCookieName {
			return cookie.Value
		}
	}
	return ""
}

// SetSessionToken installs a previously saved session cookie.
func (c *Client) SetSessionToken(token string) {
	c.http.Jar.SetCookies(c.apiURL(), []*http.Cookie{{
		Name:  constants.SessionCookieName,
		Value: token,
		Path:  constants.SessionCookiePath,
	}})
}

// # Transport

type errorEnvelope struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta json.RawMessage `json:"meta"`
}

// call sends body as JSON and decodes the {data} envelope into out.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	result, err := c.do(ctx, method, path, query, body)
	if err != nil || out == nil || len(result.Data) == 0 {
		return err
	}
	if err := json.Unmarshal(result.Data, out); err != nil {
		return clienterr.Transport(fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*envelope, error) {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("coplaapi_encode_failed: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	request, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, clienterr.Transport(err)
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	response, err := c.http.Do(request)
	if err != nil {
		return nil, clienterr.Transport(err)
	}
	defer response.Body.Close()

	c.logger.Debug("api_request",
		slog.String("method", method),
		slog.String("path", target.Path),
		slog.Int("status", response.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	raw, err := io.ReadAll(io.LimitReader(response.Body, 8<<20))
	if err != nil {
		return nil, clienterr.Transport(err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		var failure errorEnvelope
		_ = json.Unmarshal(raw, &failure)

		message := failure.Error
		if message == "" {
			message = failure.Message
		}
		return nil, clienterr.FromStatus(response.StatusCode, message)
	}

	result := &envelope{}
	if len(raw) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return nil, clienterr.Transport(fmt.Errorf("decode %s: %w", target.Path, err))
	}
	return result, nil
}

// userPath builds /api/users/{username}/{rest...} with escaped segments.
func userPath(username string, rest ...string) string {
	segments := append([]string{"api", "users", url.PathEscape(username)}, rest...)
	return "/" + strings.Join(segments, "/")
}
