package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pillar-dev/pillar/internal/apierr"
)

// TokenSource supplies the bearer credential for each request. An empty
// token means the request goes out unauthenticated. Threading the
// credential through the client per request avoids the hidden global
// default-header state a shared HTTP client would otherwise carry.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func() string

// Token implements TokenSource.
func (f TokenSourceFunc) Token() string { return f() }

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token() string { return string(s) }

// Client talks to the blog API. All methods take a context and return
// the decoded data payload of the response envelope.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
// Default: a client with a 15 second timeout.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTokenSource sets the credential source consulted on every request.
func WithTokenSource(ts TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithLogger sets the logger for request-level debug logging.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Columns fetches one page of the column list.
func (c *Client) Columns(ctx context.Context, page, size int) (*ColumnList, error) {
	q := url.Values{}
	q.Set("currentPage", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(size))

	var out ColumnList
	if err := c.do(ctx, http.MethodGet, "/columns", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Column fetches a single column by id.
func (c *Client) Column(ctx context.Context, cid string) (*Column, error) {
	var out Column
	if err := c.do(ctx, http.MethodGet, "/columns/"+url.PathEscape(cid), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ColumnPosts fetches all posts belonging to a column.
func (c *Client) ColumnPosts(ctx context.Context, cid string) (*PostList, error) {
	var out PostList
	if err := c.do(ctx, http.MethodGet, "/columns/"+url.PathEscape(cid)+"/posts", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Post fetches a single post by id, including its content body.
func (c *Client) Post(ctx context.Context, id string) (*Post, error) {
	var out Post
	if err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser fetches the profile behind the current credential.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/user/current", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}

	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/user/login", nil, body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// CreatePost creates a post and returns the server's copy of it.
func (c *Client) CreatePost(ctx context.Context, p NewPost) (*Post, error) {
	var out Post
	if err := c.do(ctx, http.MethodPost, "/posts", nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePost patches a post and returns the updated copy.
func (c *Client) UpdatePost(ctx context.Context, id string, patch PostPatch) (*Post, error) {
	var out Post
	if err := c.do(ctx, http.MethodPatch, "/posts/"+url.PathEscape(id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePost deletes a post and returns the server's record of what was
// removed.
func (c *Client) DeletePost(ctx context.Context, id string) (*Post, error) {
	var out Post
	if err := c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs one request and decodes the envelope's data field into out.
// A non-zero envelope code becomes an *apierr.Error regardless of HTTP
// status; out may be nil when the caller discards the payload.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return apierr.Transport(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierr.Transport(err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return apierr.Decode(err, resp.StatusCode)
	}

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"code", env.Code,
		"duration", time.Since(start))

	if env.Code != 0 {
		return apierr.FromEnvelope(env.Code, env.Msg, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Envelope claimed success but transport says otherwise.
		return apierr.FromEnvelope(resp.StatusCode, resp.Status, resp.StatusCode)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apierr.Decode(err, resp.StatusCode)
		}
	}
	return nil
}
