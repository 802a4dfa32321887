package main

import (
	"log"
	"os"
)

func main() {
	// Everything on stdout is JSON-RPC; logs go to stderr.
	log.SetOutput(os.Stderr)
	log.SetPrefix("blueprint-lsp: ")

	server := NewLanguageServer(os.Stdout)
	server.Start()
}
