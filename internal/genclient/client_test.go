package genclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arunkumar2k5/clapclient/internal/genwire"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsServer runs handler for each websocket connection and returns the
// ws:// URL to dial.
func wsServer(t *testing.T, handler func(conn *websocket.Conn)) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Errorf("server read: %v", err)
		return
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Errorf("server decode: %v", err)
	}
}

func TestGenerate_HappyPath(t *testing.T) {
	var gotInit genwire.Initialize
	var gotReq genwire.Request

	url := wsServer(t, func(conn *websocket.Conn) {
		readJSON(t, conn, &gotInit)
		_ = conn.WriteJSON(genwire.Ready{Type: genwire.TypeReady, Server: "test", Capabilities: json.RawMessage(`{}`)})

		readJSON(t, conn, &gotReq)
		_ = conn.WriteJSON(genwire.Result{
			Type: genwire.TypeResult,
			ID:   gotReq.ID,
			OK:   true,
			Data: &genwire.Data{Text: "comparison text", Usage: map[string]any{"total_tokens": 42}},
		})
	})

	data, err := New(url).Generate(testCtx(t), genwire.Params{
		Prompt:      "compare MLX90393 and HMC5883L",
		System:      "Be concise.",
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		Format:      "markdown",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if data.Text != "comparison text" {
		t.Fatalf("text = %q", data.Text)
	}
	if gotInit.Type != genwire.TypeInitialize || gotInit.Client == "" || gotInit.Version == "" {
		t.Fatalf("initialize frame = %#v", gotInit)
	}
	if gotReq.Type != genwire.TypeRequest || gotReq.Method != genwire.MethodGenerate {
		t.Fatalf("request frame = %#v", gotReq)
	}
	if gotReq.ID == "" {
		t.Fatal("request id must be set")
	}
	if gotReq.Params.Model != "gpt-4o-mini" || gotReq.Params.Format != "markdown" {
		t.Fatalf("params = %#v", gotReq.Params)
	}
}

func TestGenerate_NonReadyHandshakeIsFatal(t *testing.T) {
	url := wsServer(t, func(conn *websocket.Conn) {
		var init genwire.Initialize
		readJSON(t, conn, &init)
		_ = conn.WriteJSON(map[string]any{"type": "busy", "retry_in": 5})
	})

	_, err := New(url).Generate(testCtx(t), genwire.Params{Prompt: "x"})
	if err == nil {
		t.Fatal("expected error for non-ready handshake")
	}
	if !strings.Contains(err.Error(), "busy") {
		t.Fatalf("error should carry the payload verbatim, got: %v", err)
	}
}

func TestGenerate_NonOKResultSurfacedVerbatim(t *testing.T) {
	url := wsServer(t, func(conn *websocket.Conn) {
		var init genwire.Initialize
		readJSON(t, conn, &init)
		_ = conn.WriteJSON(genwire.Ready{Type: genwire.TypeReady, Server: "test"})

		var req genwire.Request
		readJSON(t, conn, &req)
		_ = conn.WriteJSON(map[string]any{"type": "result", "ok": false, "error": "model overloaded"})
	})

	_, err := New(url).Generate(testCtx(t), genwire.Params{Prompt: "x"})
	if err == nil {
		t.Fatal("expected error for ok=false result")
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("error should carry the payload verbatim, got: %v", err)
	}
}

func TestGenerate_DialFailure(t *testing.T) {
	_, err := New("ws://127.0.0.1:1/nope").Generate(testCtx(t), genwire.Params{Prompt: "x"})
	if err == nil {
		t.Fatal("expected dial error")
	}
}
