// Package httpapi reads expenses and categories from the bot's REST API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"spendview/internal/core"
	"spendview/internal/source"
)

const (
	expensesPath   = "/v1/expenses"
	categoriesPath = "/v1/categories"
	maxBodyBytes   = 16 << 20
)

var (
	ErrUnauthorized     = errors.New("upstream rejected credentials")
	ErrUnexpectedStatus = errors.New("unexpected upstream status")
)

// Client fetches from the upstream API and revalidates with conditional
// requests: If-Modified-Since for expenses, If-None-Match for categories.
// A 304 answer returns the previously fetched list.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client

	mu           sync.Mutex
	expenses     []core.Expense
	lastModified string
	categories   []core.Category
	etag         string
}

var _ source.Source = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for baseURL. token is sent as "Authorization: tma
// <token>" when not empty.
func New(baseURL, token string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse base URL %q: missing scheme or host", baseURL)
	}
	c := &Client{
		baseURL: u,
		token:   token,
		http:    newHTTPClientWithPooling(timeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newHTTPClientWithPooling keeps a small pool of idle connections to the
// upstream host.
func newHTTPClientWithPooling(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// FetchExpenses implements source.ExpenseFetcher.
func (c *Client) FetchExpenses(ctx context.Context) ([]core.Expense, error) {
	c.mu.Lock()
	since := c.lastModified
	c.mu.Unlock()

	headers := http.Header{}
	if since != "" {
		headers.Set("If-Modified-Since", since)
	}

	var wire []wireExpense
	resp, notModified, err := c.get(ctx, expensesPath, headers, &wire)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if notModified {
		slog.DebugContext(ctx, "Expenses not modified", "since", since)
		return append([]core.Expense(nil), c.expenses...), nil
	}

	out := make([]core.Expense, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toCore())
	}
	c.expenses = out
	c.lastModified = resp.Header.Get("Last-Modified")
	return append([]core.Expense(nil), out...), nil
}

// FetchCategories implements source.CategoryFetcher.
func (c *Client) FetchCategories(ctx context.Context) ([]core.Category, error) {
	c.mu.Lock()
	etag := c.etag
	c.mu.Unlock()

	headers := http.Header{}
	if etag != "" {
		headers.Set("If-None-Match", etag)
	}

	var list []core.Category
	resp, notModified, err := c.get(ctx, categoriesPath, headers, &list)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if notModified {
		return append([]core.Category(nil), c.categories...), nil
	}
	if list == nil {
		list = []core.Category{}
	}
	c.categories = list
	c.etag = resp.Header.Get("ETag")
	return append([]core.Category(nil), list...), nil
}

func (c *Client) get(ctx context.Context, path string, headers http.Header, into any) (*http.Response, bool, error) {
	u := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request %s: %w", path, err)
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "tma "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return resp, true, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, false, fmt.Errorf("get %s: %w (%d)", path, ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		msg := readError(resp.Body)
		return nil, false, fmt.Errorf("get %s: %w %d: %s", path, ErrUnexpectedStatus, resp.StatusCode, msg)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(into); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", path, err)
	}
	return resp, false, nil
}

// readError extracts {"error": "..."} bodies, falling back to the raw text.
func readError(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 4096))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
