package odata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"shopfloor/config"
	"shopfloor/records"
)

// Client fetches entity sets from a SAP OData gateway.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	username   string
	password   string
	sapClient  string
	httpClient *http.Client
}

// FetchRequest names one entity set read, filtered on a single field.
type FetchRequest struct {
	Service     string
	EntitySet   string
	FilterField string
	Value       string
}

// HTTPError is returned when the gateway answers with status >= 400.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("odata HTTP %d: %s", e.Status, e.Body)
}

// NewClient creates a client from the OData config section.
func NewClient(cfg config.ODataConfig) *Client {
	c := &Client{}
	c.Reconfigure(cfg)
	return c
}

// Reconfigure updates the endpoint, credentials and timeout for hot-reload.
func (c *Client) Reconfigure(cfg config.ODataConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(cfg.BaseURL, "/")
	c.username = cfg.Username
	c.password = cfg.Password
	c.sapClient = cfg.SAPClient
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	// Requests in flight keep the client they started with.
	c.httpClient = &http.Client{Timeout: timeout}
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetURL builds the request URL for an entity set read.
func (c *Client) SetURL(req FetchRequest) string {
	c.mu.RLock()
	base, sapClient := c.baseURL, c.sapClient
	c.mu.RUnlock()

	path := base
	if req.Service != "" {
		path += "/" + strings.Trim(req.Service, "/")
	}
	path += "/" + strings.Trim(req.EntitySet, "/")

	q := url.Values{}
	if req.FilterField != "" {
		q.Set("$filter", fmt.Sprintf("%s eq %s", req.FilterField, quoteLiteral(req.Value)))
	}
	q.Set("$format", "json")
	if sapClient != "" {
		q.Set("sap-client", sapClient)
	}
	// Spaces inside $filter must travel as %20, not "+".
	return path + "?" + strings.ReplaceAll(q.Encode(), "+", "%20")
}

// FetchSet reads an entity set and normalizes the response into records.
func (c *Client) FetchSet(ctx context.Context, req FetchRequest) ([]records.Record, error) {
	u := c.SetURL(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("odata request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	c.mu.RLock()
	if c.username != "" {
		httpReq.SetBasicAuth(c.username, c.password)
	}
	hc := c.httpClient
	c.mu.RUnlock()

	resp, err := hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("odata GET %s: %w", req.EntitySet, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("odata read body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: truncate(string(data), 512)}
	}
	recs, err := Normalize(data)
	if err != nil {
		return nil, fmt.Errorf("odata decode %s: %w", req.EntitySet, err)
	}
	return recs, nil
}

// IsTimeout reports whether err came from a request deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// UserMessage turns a fetch error into the text shown to the operator.
func UserMessage(err error) string {
	var he *HTTPError
	switch {
	case err == nil:
		return ""
	case IsTimeout(err):
		return "The SAP system did not respond in time. Please try again."
	case errors.As(err, &he) && (he.Status == http.StatusUnauthorized || he.Status == http.StatusForbidden):
		return "The SAP system rejected the request. Please check your access and try again."
	default:
		return "Failed to load data. Please check your connection and try again."
	}
}

// quoteLiteral renders an OData string literal; embedded quotes are doubled.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// DefaultTimeout applies when the config leaves the timeout unset.
const DefaultTimeout = 30 * time.Second
