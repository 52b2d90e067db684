// ABOUTME: HTTP client for the pack service REST API
// ABOUTME: Wraps OAuth2 bearer auth, JSON round-trips, and error classification
package api

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

	"golang.org/x/oauth2"
)

// ErrNotFound marks a 404 from the service. Revocations treat it as success.
var ErrNotFound = errors.New("not found")

// FetchError is any failure to read or write service state: transport errors
// and non-2xx responses alike. Status is zero for transport failures.
type FetchError struct {
	Method string
	Path   string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client talks to the pack service. All store facades hang off it.
type Client struct {
	baseURL string
	http    *http.Client
}

// oauthEndpoint returns the token endpoint for a given server base URL.
func oauthEndpoint(server string) oauth2.Endpoint {
	return oauth2.Endpoint{
		TokenURL: strings.TrimSuffix(server, "/") + "/oauth/token",
	}
}

// NewClient creates a client from config. Requests carry the configured
// bearer token; if a refresh token is present the oauth2 transport renews it
// transparently.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.Server == "" {
		return nil, fmt.Errorf("pack service is not configured (run 'packshare login')")
	}

	base := strings.TrimSuffix(cfg.Server, "/")

	token := &oauth2.Token{
		AccessToken:  cfg.Token,
		RefreshToken: cfg.RefreshToken,
	}
	if cfg.TokenExpires != "" {
		if t, err := time.Parse(time.RFC3339, cfg.TokenExpires); err == nil {
			token.Expiry = t
		}
	}

	oc := &oauth2.Config{Endpoint: oauthEndpoint(base)}
	httpClient := oc.Client(context.Background(), token)
	httpClient.Timeout = 30 * time.Second

	return &Client{baseURL: base, http: httpClient}, nil
}

// NewClientWithHTTP creates a client over a caller-supplied http.Client.
// Used by tests against httptest servers.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: httpClient}
}

// Login exchanges username/password for a token via the password grant and
// returns a config carrying the credentials.
func Login(ctx context.Context, server, username, password string) (*Config, error) {
	base := strings.TrimSuffix(server, "/")
	oc := &oauth2.Config{Endpoint: oauthEndpoint(base)}

	token, err := oc.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with %s: %w", base, err)
	}

	cfg := &Config{
		Server:       base,
		Username:     username,
		Token:        token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		cfg.TokenExpires = token.Expiry.Format(time.RFC3339)
	}
	return cfg, nil
}

// do performs one JSON request. A nil body sends no payload; a nil out
// discards the response body.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Method: method, Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return &FetchError{Method: method, Path: path, Status: resp.StatusCode, Err: ErrNotFound}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{Method: method, Path: path, Status: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &FetchError{Method: method, Path: path, Status: resp.StatusCode, Err: err}
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
