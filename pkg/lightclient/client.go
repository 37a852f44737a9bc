// Package lightclient talks to a running light over HTTP and UDP.
package lightclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/haivivi/rgblight/pkg/light"
	"github.com/haivivi/rgblight/pkg/wire"
)

// StatusError is returned for non-200 responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lightclient: status %d: %s", e.Code, e.Body)
}

// Client is an HTTP client for one light.
type Client struct {
	base   *url.URL
	client *http.Client
}

// New returns a client for the light at addr, which is a base URL such as
// "http://10.0.0.7" or a bare host[:port]. If client is nil,
// http.DefaultClient is used.
func New(addr string, client *http.Client) (*Client, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("lightclient: parse address: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("lightclient: no host in %q", addr)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{base: u, client: client}, nil
}

// Get returns the current color.
func (c *Client) Get(ctx context.Context) (light.LogicalColor, error) {
	body, err := c.do(ctx, "/getRGBA", "")
	if err != nil {
		return light.LogicalColor{}, err
	}
	return light.ParseColor(body)
}

// Set applies u and returns the color the light committed.
func (c *Client) Set(ctx context.Context, u light.Update) (light.LogicalColor, error) {
	q := url.Values{}
	for _, ch := range light.Channels {
		if v, ok := u.Lookup(ch); ok {
			q.Set(ch.String(), strconv.Itoa(int(v)))
		}
	}
	body, err := c.do(ctx, "/setRGBA", q.Encode())
	if err != nil {
		return light.LogicalColor{}, err
	}
	return light.ParseColor(body)
}

// Health returns nil if the light answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, "/health", "")
	return err
}

func (c *Client) do(ctx context.Context, path, query string) (string, error) {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = query
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("lightclient: %s: %w", path, err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("lightclient: read %s: %w", path, err)
	}
	if res.StatusCode != http.StatusOK {
		return "", &StatusError{Code: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return string(body), nil
}

// Send writes u as one datagram to the light's UDP port. There is no reply,
// so a nil error only means the datagram left this host.
func Send(ctx context.Context, addr string, u light.Update) error {
	if u.IsEmpty() {
		return errors.New("lightclient: empty update")
	}
	payload := wire.AppendUpdate(make([]byte, 0, wire.MaxDatagramSize), u)
	payload = append(payload, '\n')

	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return fmt.Errorf("lightclient: dial %s: %w", addr, err)
	}
	defer conn.Close()
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("lightclient: send: %w", err)
	}
	return nil
}
