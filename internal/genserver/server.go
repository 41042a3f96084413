// Package genserver is a development generation server speaking the
// same WebSocket protocol the clients dial. It exists so the compare
// flows are runnable end to end without the real backend.
package genserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/arunkumar2k5/clapclient/internal/genwire"
)

const ServerName = "clap-gen-server"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // dev server; restrict if this ever leaves localhost
	},
}

// Generator produces text for one llm.generate request. It returns the
// generated text and an opaque usage mapping.
type Generator interface {
	Name() string
	Generate(ctx context.Context, params genwire.Params) (string, map[string]any, error)
}

type Server struct {
	gen Generator
}

func New(gen Generator) *Server {
	return &Server{gen: gen}
}

// WSHandler upgrades the connection and runs one protocol session.
func (s *Server) WSHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		log.Println("[gen-server] client connected")
		s.serve(c.Request.Context(), conn)
		log.Println("[gen-server] client disconnected")
	}
}

// serve enforces the handshake, then answers requests until the peer
// goes away. Clients send one request per connection, but nothing here
// depends on that.
func (s *Server) serve(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadLimit(genwire.MaxFrameSize)

	raw, err := readFrame(conn)
	if err != nil {
		return
	}

	var env genwire.Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Type != genwire.TypeInitialize {
		// A request before the handshake is a protocol violation;
		// reject it rather than leaving the behavior undefined.
		writeError(conn, "", "initialize handshake required before any request")
		return
	}

	var init genwire.Initialize
	_ = json.Unmarshal(raw, &init)
	log.Printf("[gen-server] handshake from %s/%s", init.Client, init.Version)

	if err := conn.WriteJSON(genwire.Ready{
		Type:         genwire.TypeReady,
		Server:       ServerName,
		Capabilities: json.RawMessage(`{"methods":["llm.generate"],"generator":"` + s.gen.Name() + `"}`),
	}); err != nil {
		return
	}

	for {
		raw, err := readFrame(conn)
		if err != nil {
			return
		}

		var req genwire.Request
		if err := json.Unmarshal(raw, &req); err != nil || req.Type != genwire.TypeRequest {
			writeError(conn, "", "expected a request frame")
			continue
		}
		if req.Method != genwire.MethodGenerate {
			writeError(conn, req.ID, "unknown method: "+req.Method)
			continue
		}

		text, usage, err := s.gen.Generate(ctx, req.Params)
		if err != nil {
			log.Printf("[gen-server] generate failed: %v", err)
			writeError(conn, req.ID, err.Error())
			continue
		}

		// id is echoed back even though current clients do not match on
		// it; a future correlating client works unchanged.
		if err := conn.WriteJSON(genwire.Result{
			Type: genwire.TypeResult,
			ID:   req.ID,
			OK:   true,
			Data: &genwire.Data{Text: text, Usage: usage},
		}); err != nil {
			return
		}
	}
}

func readFrame(conn *websocket.Conn) ([]byte, error) {
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func writeError(conn *websocket.Conn, id, msg string) {
	_ = conn.WriteJSON(genwire.Error{
		Type:  genwire.TypeError,
		ID:    id,
		OK:    false,
		Error: msg,
	})
}
