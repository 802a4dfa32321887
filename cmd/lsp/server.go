package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
)

// DocumentState tracks one open fragment buffer.
type DocumentState struct {
	URI     string
	Path    string
	Content string
	Version int
}

// LanguageServer publishes project diagnostics over stdio JSON-RPC.
type LanguageServer struct {
	documents map[string]*DocumentState // URI -> document state
	mu        sync.RWMutex              // protects the documents map
	writer    io.Writer                 // output stream for JSON-RPC responses
	writeMu   sync.Mutex                // serializes frames on writer
	rootPath  string                    // workspace root for project-wide validation
}

func NewLanguageServer(writer io.Writer) *LanguageServer {
	if writer == nil {
		writer = os.Stdout
	}
	return &LanguageServer{
		documents: make(map[string]*DocumentState),
		writer:    writer,
	}
}

func (s *LanguageServer) Start() {
	reader := bufio.NewReader(os.Stdin)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("Error reading header: %v", err)
			}
			break
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "Content-Length: ") {
			continue
		}
		contentLength, err := strconv.Atoi(strings.TrimPrefix(line, "Content-Length: "))
		if err != nil {
			log.Printf("Error parsing Content-Length: %v", err)
			continue
		}

		// Read until the empty separator line.
		for {
			sep, err := reader.ReadString('\n')
			if err != nil {
				log.Printf("Error reading separator: %v", err)
				return
			}
			if strings.TrimRight(sep, "\r\n") == "" {
				break
			}
		}

		content := make([]byte, contentLength)
		if _, err := io.ReadFull(reader, content); err != nil {
			log.Printf("Error reading content: %v", err)
			break
		}

		if err := s.handleMessage(content); err != nil {
			log.Printf("Error handling message: %v", err)
		}
	}
}

func (s *LanguageServer) handleMessage(content []byte) error {
	var msg struct {
		ID     interface{}     `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(content, &msg); err != nil {
		return err
	}

	switch msg.Method {
	case "initialize":
		var params InitializeParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		return s.handleInitialize(msg.ID, params)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg.ID)
	case "exit":
		os.Exit(0)
		return nil
	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDidOpen(params)
	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDidChange(params)
	case "textDocument/didSave":
		var params DidSaveTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDidSave(params)
	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDidClose(params)
	default:
		// Requests we don't implement get an empty result so clients
		// don't hang; notifications are silently ignored.
		if msg.ID != nil {
			return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: msg.ID, Result: nil})
		}
		return nil
	}
}

func (s *LanguageServer) sendResponse(response ResponseMessage) error {
	return s.writeFrame(response)
}

func (s *LanguageServer) sendNotification(notification NotificationMessage) error {
	return s.writeFrame(notification)
}

func (s *LanguageServer) writeFrame(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err = fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(payload), payload)
	return err
}

func (s *LanguageServer) uriToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	return u.Path
}

func (s *LanguageServer) pathToURI(path string) string {
	return "file://" + path
}
