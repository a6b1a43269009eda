package linkapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ishanjain/crayond/pkg/netif"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8000"
	userAgent      = "crayonctl/0.1.0"
)

// Client talks to the crayond links API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new links API client. An empty baseURL means DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx answer from the daemon
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// do sends the request and returns the status and body. Only transport
// failures are errors here.
func (c *Client) do(ctx context.Context, method, path string, in interface{}) (int, []byte, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "application/json")
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, bodyBytes, nil
}

func apiError(status int, body []byte) error {
	var e struct {
		Error string `json:"error"`
	}
	msg := string(body)
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		msg = e.Error
	}
	return &APIError{StatusCode: status, Message: msg}
}

func linkPath(name string) string {
	return "/links/" + url.PathEscape(name)
}

// List returns every link known to the daemon
func (c *Client) List(ctx context.Context) ([]netif.Interface, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/links", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(status, body)
	}

	var links []netif.Interface
	if err := json.Unmarshal(body, &links); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return links, nil
}

// Get returns the named link, or nil if the daemon does not know it
func (c *Client) Get(ctx context.Context, name string) (*netif.Interface, error) {
	status, body, err := c.do(ctx, http.MethodGet, linkPath(name), nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, apiError(status, body)
	}

	var link netif.Interface
	if err := json.Unmarshal(body, &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &link, nil
}

// Create asks the daemon to create a link
func (c *Client) Create(ctx context.Context, name string) (*netif.Interface, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/links", map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(status, body)
	}

	var link netif.Interface
	if err := json.Unmarshal(body, &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &link, nil
}

// Delete removes a link and reports whether it existed
func (c *Client) Delete(ctx context.Context, name string) (bool, error) {
	status, body, err := c.do(ctx, http.MethodDelete, linkPath(name), nil)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, apiError(status, body)
	}
}

// Modify updates the address and netmask of a link
func (c *Client) Modify(ctx context.Context, link netif.Interface) (bool, error) {
	req := map[string]string{"addr": link.Addr, "netmask": link.Netmask}
	status, body, err := c.do(ctx, http.MethodPatch, linkPath(link.Name), req)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, apiError(status, body)
	}
}

// Status returns the raw /status document
func (c *Client) Status(ctx context.Context) (map[string]interface{}, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(status, body)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return doc, nil
}
