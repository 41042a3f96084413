package genserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/arunkumar2k5/clapclient/internal/genclient"
	"github.com/arunkumar2k5/clapclient/internal/genwire"
)

func startServer(t *testing.T, gen Generator) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/ws", New(gen).WSHandler())

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestServer_EndToEndWithClient(t *testing.T) {
	url := startServer(t, EchoGenerator{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	data, err := genclient.New(url).Generate(ctx, genwire.Params{
		Prompt: "compare MLX90393 and HMC5883L",
		Model:  "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !strings.Contains(data.Text, "MLX90393") {
		t.Fatalf("echo text should contain the prompt, got %q", data.Text)
	}
	if data.Usage["mode"] != "echo" {
		t.Fatalf("usage = %#v", data.Usage)
	}
}

func TestServer_ReadyFrameShape(t *testing.T) {
	conn := dial(t, startServer(t, EchoGenerator{}))

	if err := conn.WriteJSON(genwire.Initialize{Type: genwire.TypeInitialize, Client: "test", Version: "0"}); err != nil {
		t.Fatalf("write initialize: %v", err)
	}

	var ready genwire.Ready
	if err := conn.ReadJSON(&ready); err != nil {
		t.Fatalf("read ready: %v", err)
	}
	if ready.Type != genwire.TypeReady || ready.Server != ServerName {
		t.Fatalf("ready frame = %#v", ready)
	}
	if len(ready.Capabilities) == 0 {
		t.Fatal("ready frame must carry capabilities")
	}
}

func TestServer_RejectsRequestBeforeHandshake(t *testing.T) {
	conn := dial(t, startServer(t, EchoGenerator{}))

	if err := conn.WriteJSON(genwire.Request{
		Type:   genwire.TypeRequest,
		ID:     "1",
		Method: genwire.MethodGenerate,
	}); err != nil {
		t.Fatalf("write request: %v", err)
	}

	var reply genwire.Error
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply.Type == genwire.TypeReady || reply.OK {
		t.Fatalf("request before handshake must be rejected, got %#v", reply)
	}
}

func TestServer_UnknownMethodAndGeneratorError(t *testing.T) {
	fail := generatorFunc(func(ctx context.Context, p genwire.Params) (string, map[string]any, error) {
		return "", nil, context.DeadlineExceeded
	})
	conn := dial(t, startServer(t, fail))

	if err := conn.WriteJSON(genwire.Initialize{Type: genwire.TypeInitialize, Client: "test", Version: "0"}); err != nil {
		t.Fatalf("write initialize: %v", err)
	}
	var ready genwire.Ready
	if err := conn.ReadJSON(&ready); err != nil {
		t.Fatalf("read ready: %v", err)
	}

	// Unknown method is answered, not dropped.
	if err := conn.WriteJSON(genwire.Request{Type: genwire.TypeRequest, ID: "a", Method: "llm.embed"}); err != nil {
		t.Fatalf("write request: %v", err)
	}
	var methodErr genwire.Error
	if err := conn.ReadJSON(&methodErr); err != nil {
		t.Fatalf("read method error: %v", err)
	}
	if methodErr.OK || !strings.Contains(methodErr.Error, "llm.embed") {
		t.Fatalf("method error = %#v", methodErr)
	}

	// Generator failure becomes an ok=false frame with the id echoed.
	if err := conn.WriteJSON(genwire.Request{Type: genwire.TypeRequest, ID: "b", Method: genwire.MethodGenerate}); err != nil {
		t.Fatalf("write request: %v", err)
	}
	var genErr genwire.Error
	if err := conn.ReadJSON(&genErr); err != nil {
		t.Fatalf("read generator error: %v", err)
	}
	if genErr.OK || genErr.ID != "b" {
		t.Fatalf("generator error = %#v", genErr)
	}
}

func TestServer_ResultEchoesRequestID(t *testing.T) {
	conn := dial(t, startServer(t, EchoGenerator{}))

	_ = conn.WriteJSON(genwire.Initialize{Type: genwire.TypeInitialize, Client: "test", Version: "0"})
	var ready genwire.Ready
	if err := conn.ReadJSON(&ready); err != nil {
		t.Fatalf("read ready: %v", err)
	}

	_ = conn.WriteJSON(genwire.Request{Type: genwire.TypeRequest, ID: "req-7", Method: genwire.MethodGenerate, Params: genwire.Params{Prompt: "p"}})

	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err != nil {
		t.Fatalf("read result: %v", err)
	}
	var result genwire.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.OK || result.ID != "req-7" {
		t.Fatalf("result = %#v", result)
	}
}

// generatorFunc adapts a function to the Generator interface for tests.
type generatorFunc func(ctx context.Context, p genwire.Params) (string, map[string]any, error)

func (generatorFunc) Name() string { return "test" }

func (f generatorFunc) Generate(ctx context.Context, p genwire.Params) (string, map[string]any, error) {
	return f(ctx, p)
}
