// Package genwire holds the frame types of the generation-service
// protocol: one UTF-8 JSON object per WebSocket frame, an
// initialize/ready handshake, then exactly one request/result pair per
// connection.
package genwire

import "encoding/json"

const (
	TypeInitialize = "initialize"
	TypeReady      = "ready"
	TypeRequest    = "request"
	TypeResult     = "result"
	TypeError      = "error"

	MethodGenerate = "llm.generate"

	// MaxFrameSize is the minimum inbound frame budget either side must
	// accept, large enough for big generated texts (8 MiB).
	MaxFrameSize = 1 << 23
)

// Envelope carries the fields needed to classify any inbound frame
// before full decoding.
type Envelope struct {
	Type string `json:"type"`
	OK   bool   `json:"ok"`
}

type Initialize struct {
	Type    string `json:"type"`
	Client  string `json:"client"`
	Version string `json:"version"`
}

type Ready struct {
	Type         string          `json:"type"`
	Server       string          `json:"server"`
	Capabilities json.RawMessage `json:"capabilities"`
}

type Request struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Method string `json:"method"`
	Params Params `json:"params"`
}

type Params struct {
	Prompt      string  `json:"prompt"`
	System      string  `json:"system"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	Format      string  `json:"format"`
}

type Result struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	OK   bool   `json:"ok"`
	Data *Data  `json:"data,omitempty"`
}

// Data is the payload of a successful generation.
type Data struct {
	Text  string         `json:"text"`
	Usage map[string]any `json:"usage,omitempty"`
}

// Error is the frame the dev server sends for protocol violations and
// failed generations. Clients treat any non-result frame as opaque.
type Error struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
