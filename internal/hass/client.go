// Package hass implements the Home Assistant websocket API client used as
// the session transport: connect, authenticate with a long-lived token and
// call services.
package hass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

// Path is the websocket endpoint on the Home Assistant server.
const Path = "/api/websocket"

// Dialer opens connections to a Home Assistant instance.
type Dialer struct {
	HandshakeTimeout time.Duration // default 10s
	Secure           bool          // wss:// instead of ws://
}

// Client is one websocket connection. It is not safe for concurrent use:
// each call is a write followed by reads until the matching result arrives.
type Client struct {
	conn   *websocket.Conn
	nextID int
	// HAVersion is reported by the server in auth_required.
	HAVersion string
}

type message struct {
	ID          int             `json:"id,omitempty"`
	Type        string          `json:"type"`
	HAVersion   string          `json:"ha_version,omitempty"`
	Message     string          `json:"message,omitempty"`
	Success     *bool           `json:"success,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       *resultError    `json:"error,omitempty"`
	AccessToken string          `json:"access_token,omitempty"`
}

type resultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type callServiceRequest struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Domain      string `json:"domain"`
	Service     string `json:"service"`
	ServiceData any    `json:"service_data,omitempty"`
}

// URL builds the websocket URL for host and port.
func (d Dialer) URL(host string, port int) string {
	scheme := "ws"
	if d.Secure {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: net.JoinHostPort(host, strconv.Itoa(port)), Path: Path}
	return u.String()
}

// Dial connects and waits for the server's auth_required greeting.
func (d Dialer) Dial(ctx context.Context, host string, port int) (*Client, error) {
	timeout := d.HandshakeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: timeout,
	}

	target := d.URL(host, port)
	conn, resp, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connect %s (HTTP %d): %w", target, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("connect %s: %w", target, err)
	}

	c := &Client{conn: conn}
	var hello message
	if err := c.read(ctx, &hello); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("read greeting from %s: %w", target, err)
	}
	if hello.Type != "auth_required" {
		_ = conn.Close()
		return nil, fmt.Errorf("unexpected greeting %q from %s", hello.Type, target)
	}
	c.HAVersion = hello.HAVersion
	return c, nil
}

// Authenticate sends the long-lived access token.
func (c *Client) Authenticate(ctx context.Context, token string) error {
	if err := c.write(ctx, message{Type: "auth", AccessToken: token}); err != nil {
		return fmt.Errorf("send auth: %w", err)
	}

	var reply message
	if err := c.read(ctx, &reply); err != nil {
		return fmt.Errorf("read auth reply: %w", err)
	}
	switch reply.Type {
	case "auth_ok":
		if reply.HAVersion != "" {
			c.HAVersion = reply.HAVersion
		}
		return nil
	case "auth_invalid":
		return &AuthError{Message: reply.Message}
	default:
		return fmt.Errorf("unexpected auth reply %q", reply.Type)
	}
}

// CallService invokes domain.service with data and returns the raw result.
func (c *Client) CallService(ctx context.Context, domain, service string, data any) (json.RawMessage, error) {
	c.nextID++
	id := c.nextID

	req := callServiceRequest{
		ID:          id,
		Type:        "call_service",
		Domain:      domain,
		Service:     service,
		ServiceData: data,
	}
	if err := c.write(ctx, req); err != nil {
		return nil, fmt.Errorf("send call_service: %w", err)
	}

	for {
		var reply message
		if err := c.read(ctx, &reply); err != nil {
			return nil, fmt.Errorf("read call_service result: %w", err)
		}
		// Anything else (pongs, stray events) is skipped.
		if reply.Type != "result" || reply.ID != id {
			continue
		}
		if reply.Success != nil && *reply.Success {
			return reply.Result, nil
		}
		if reply.Error != nil {
			return nil, &ResultError{Code: reply.Error.Code, Message: reply.Error.Message}
		}
		return nil, &ResultError{Message: "service call failed"}
	}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}

// abortOn closes the connection when ctx ends, since gorilla reads and
// writes only honor deadlines. The client is unusable afterwards.
func (c *Client) abortOn(ctx context.Context) (stop func() bool) {
	return context.AfterFunc(ctx, func() { _ = c.conn.Close() })
}

func (c *Client) write(ctx context.Context, v any) error {
	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(dl)
		defer func() { _ = c.conn.SetWriteDeadline(time.Time{}) }()
	}
	defer c.abortOn(ctx)()
	if err := c.conn.WriteJSON(v); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("aborted: %w", ctx.Err())
		}
		return err
	}
	return nil
}

func (c *Client) read(ctx context.Context, v any) error {
	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(dl)
		defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()
	}
	defer c.abortOn(ctx)()
	if err := c.conn.ReadJSON(v); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("aborted: %w", ctx.Err())
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return fmt.Errorf("malformed message: %w", err)
		}
		return err
	}
	return nil
}
