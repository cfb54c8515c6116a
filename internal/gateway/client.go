package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gopherview/internal/domain"
)

// Client fetches through a remote gateway. It satisfies the same fetcher
// contract as the direct gopher client.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the gateway at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchMenu downloads a directory as a JSON menu payload
func (c *Client) FetchMenu(ctx context.Context, addr domain.Address) ([]byte, error) {
	return c.post(ctx, PathMenu, requestFor(addr, ""))
}

// FetchItem downloads a document
func (c *Client) FetchItem(ctx context.Context, addr domain.Address) ([]byte, error) {
	return c.post(ctx, PathItem, requestFor(addr, ""))
}

// FetchSearch queries a search server
func (c *Client) FetchSearch(ctx context.Context, addr domain.Address, query string) ([]byte, error) {
	return c.post(ctx, PathSearch, requestFor(addr, query))
}

func requestFor(addr domain.Address, query string) Request {
	return Request{
		Hostname: addr.Hostname,
		Port:     Port(addr.Port),
		Selector: addr.Path,
		Type:     addr.Type.String(),
		Query:    query,
		Secure:   addr.Scheme == domain.SchemeSecure,
	}
}

func (c *Client) post(ctx context.Context, path string, body Request) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}
