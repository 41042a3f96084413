package main

import (
	"flag"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/arunkumar2k5/clapclient/internal/config"
	"github.com/arunkumar2k5/clapclient/internal/genserver"
)

// go run ./cmd/gen-server -addr 127.0.0.1:8765
func main() {
	addr := flag.String("addr", "127.0.0.1:8765", "listen address for the generation server")
	flag.Parse()

	cfg := config.Load()

	var gen genserver.Generator
	if cfg.OpenAIKey != "" {
		gen = genserver.NewOpenAIGenerator(cfg.OpenAIKey, cfg.GenModel)
		log.Println("[gen-server] using OpenAI backend")
	} else {
		gen = genserver.EchoGenerator{}
		log.Println("[gen-server] OPENAI_API_KEY not set, echo mode")
	}

	router := gin.Default()
	router.GET("/", genserver.New(gen).WSHandler())

	log.Printf("[gen-server] listening on ws://%s", *addr)
	if err := router.Run(*addr); err != nil {
		log.Fatalf("gen-server failed: %v", err)
	}
}
