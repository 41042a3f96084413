// Package genclient dials the generation service and performs the
// single request/response exchange the protocol allows per connection.
package genclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/arunkumar2k5/clapclient/internal/genwire"
	"github.com/arunkumar2k5/clapclient/internal/observability"
)

const (
	clientName    = "clapclient"
	clientVersion = "0.1"

	handshakeTimeout = 10 * time.Second
)

// Caller performs one llm.generate round trip. Implemented by *Client;
// the compare service accepts the interface so tests can stub the
// generation backend.
type Caller interface {
	Generate(ctx context.Context, params genwire.Params) (*genwire.Data, error)
}

var _ Caller = (*Client)(nil)

// Client opens one connection per Generate call: handshake, one
// request, one response, close. Responses are not correlated by id, so
// a single outstanding request per connection is the only safe mode.
type Client struct {
	url    string
	dialer *websocket.Dialer
}

func New(serverURL string) *Client {
	return &Client{
		url: serverURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

// Generate sends one llm.generate request and returns the generated
// payload. Any non-ready handshake reply or non-ok result is surfaced
// verbatim as the error text.
func (c *Client) Generate(ctx context.Context, params genwire.Params) (*genwire.Data, error) {
	start := time.Now()
	data, err := c.generate(ctx, params)
	observability.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.GenerationRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	observability.GenerationRequestsTotal.WithLabelValues("ok").Inc()
	return data, nil
}

func (c *Client) generate(ctx context.Context, params genwire.Params) (*genwire.Data, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer conn.Close()

	conn.SetReadLimit(genwire.MaxFrameSize)
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	if err := conn.WriteJSON(genwire.Initialize{
		Type:    genwire.TypeInitialize,
		Client:  clientName,
		Version: clientVersion,
	}); err != nil {
		return nil, fmt.Errorf("send initialize: %w", err)
	}

	raw, err := readFrame(conn)
	if err != nil {
		return nil, fmt.Errorf("read handshake: %w", err)
	}
	var env genwire.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode handshake: %w", err)
	}
	if env.Type != genwire.TypeReady {
		return nil, fmt.Errorf("unexpected handshake response: %s", raw)
	}

	if err := conn.WriteJSON(genwire.Request{
		Type:   genwire.TypeRequest,
		ID:     uuid.NewString(),
		Method: genwire.MethodGenerate,
		Params: params,
	}); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	raw, err = readFrame(conn)
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}
	var result genwire.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	if result.Type != genwire.TypeResult || !result.OK || result.Data == nil {
		// Failure payloads are opaque; hand them to the caller as-is.
		return nil, fmt.Errorf("server error: %s", raw)
	}
	return result.Data, nil
}

func readFrame(conn *websocket.Conn) ([]byte, error) {
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return raw, nil
}
