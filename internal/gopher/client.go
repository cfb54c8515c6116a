// Package gopher is the network client for gopher and gophers servers.
package gopher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"time"

	"golang.org/x/net/proxy"

	"gopherview/internal/domain"
)

// ErrTooLarge is returned when a response exceeds Options.MaxBytes
var ErrTooLarge = errors.New("response exceeds size limit")

// Options configures the client
type Options struct {
	TimeoutSeconds     int
	MaxBytes           int64
	Proxy              string // socks5://host:port, empty for direct
	InsecureSkipVerify bool
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		TimeoutSeconds: 30,
		MaxBytes:       64 << 20,
	}
}

// Client fetches menus, items and search results. It is safe for
// concurrent use; every request opens its own connection.
type Client struct {
	opts   Options
	dialer proxy.ContextDialer
}

// NewClient creates a client, resolving the proxy if one is configured
func NewClient(opts Options) (*Client, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultOptions().MaxBytes
	}

	base := &net.Dialer{Timeout: time.Duration(opts.TimeoutSeconds) * time.Second}
	c := &Client{opts: opts, dialer: base}

	if opts.Proxy != "" {
		u, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("failed to parse proxy url: %w", err)
		}
		d, err := proxy.FromURL(u, base)
		if err != nil {
			return nil, fmt.Errorf("failed to create proxy dialer: %w", err)
		}
		cd, ok := d.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("proxy %s does not support cancellation", u.Scheme)
		}
		c.dialer = cd
	}
	return c, nil
}

// FetchMenu downloads a directory and returns it as a JSON menu payload
func (c *Client) FetchMenu(ctx context.Context, addr domain.Address) ([]byte, error) {
	log.Printf("Downloading menu from %s", addr.String())
	data, err := c.fetch(ctx, addr, addr.Path)
	if err != nil {
		return nil, err
	}
	return EncodeMenu(ParseMenu(data))
}

// FetchItem downloads a document. Text items are returned without the
// transport's dot framing, everything else verbatim.
func (c *Client) FetchItem(ctx context.Context, addr domain.Address) ([]byte, error) {
	log.Printf("Downloading item from %s", addr.String())
	data, err := c.fetch(ctx, addr, addr.Path)
	if err != nil {
		return nil, err
	}
	if addr.Type == domain.TypeText {
		return UnstuffText(data), nil
	}
	return data, nil
}

// FetchSearch queries a search server and returns the result menu
func (c *Client) FetchSearch(ctx context.Context, addr domain.Address, query string) ([]byte, error) {
	log.Printf("Querying %s for %q", addr.String(), query)
	data, err := c.fetch(ctx, addr, addr.Path+"\t"+query)
	if err != nil {
		return nil, err
	}
	return EncodeMenu(ParseMenu(data))
}

func (c *Client) fetch(ctx context.Context, addr domain.Address, request string) ([]byte, error) {
	if c.opts.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.opts.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	hostport := addr.HostPort()
	raw, err := c.dialer.DialContext(ctx, "tcp", hostport)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", hostport, err)
	}
	defer raw.Close()

	// unblocks reads and writes when the request is cancelled
	stop := context.AfterFunc(ctx, func() { raw.Close() })
	defer stop()

	conn := raw
	if addr.Scheme == domain.SchemeSecure {
		tlsConn := tls.Client(raw, &tls.Config{
			ServerName:         addr.Hostname,
			InsecureSkipVerify: c.opts.InsecureSkipVerify,
		})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return nil, c.fail(ctx, "tls handshake with "+hostport, err)
		}
		conn = tlsConn
	}

	if _, err := io.WriteString(conn, request+"\r\n"); err != nil {
		return nil, c.fail(ctx, "send request to "+hostport, err)
	}

	data, err := io.ReadAll(io.LimitReader(conn, c.opts.MaxBytes+1))
	if err != nil {
		return nil, c.fail(ctx, "read response from "+hostport, err)
	}
	if int64(len(data)) > c.opts.MaxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrTooLarge, c.opts.MaxBytes, hostport)
	}
	return data, nil
}

// fail prefers the context error so cancellation reads as such rather
// than as a closed connection
func (c *Client) fail(ctx context.Context, what string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("failed to %s: %w", what, ctxErr)
	}
	return fmt.Errorf("failed to %s: %w", what, err)
}
