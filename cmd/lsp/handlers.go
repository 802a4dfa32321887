package main

import (
	"log"
	"path/filepath"
)

func (s *LanguageServer) handleInitialize(id interface{}, params InitializeParams) error {
	log.Printf("Handling initialize request with ID: %v", id)

	if params.RootURI != nil && *params.RootURI != "" {
		s.rootPath = s.uriToPath(*params.RootURI)
	} else if params.RootPath != nil && *params.RootPath != "" {
		s.rootPath = *params.RootPath
	}

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: 1, // full sync
			HoverProvider:    false,
		},
	}

	return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: result})
}

func (s *LanguageServer) handleShutdown(id interface{}) error {
	return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: nil})
}

func (s *LanguageServer) handleDidOpen(params DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.mu.Lock()
	s.documents[uri] = &DocumentState{
		URI:     uri,
		Path:    filepath.Clean(s.uriToPath(uri)),
		Content: params.TextDocument.Text,
		Version: params.TextDocument.Version,
	}
	s.mu.Unlock()

	return s.validateProject()
}

func (s *LanguageServer) handleDidChange(params DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	uri := params.TextDocument.URI

	s.mu.Lock()
	doc, ok := s.documents[uri]
	if ok {
		// Stale-change guard: an editor may deliver changes out of order.
		if params.TextDocument.Version < doc.Version {
			s.mu.Unlock()
			return nil
		}
		doc.Content = params.ContentChanges[len(params.ContentChanges)-1].Text
		doc.Version = params.TextDocument.Version
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}

	return s.validateProject()
}

func (s *LanguageServer) handleDidSave(params DidSaveTextDocumentParams) error {
	return s.validateProject()
}

func (s *LanguageServer) handleDidClose(params DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.mu.Lock()
	delete(s.documents, uri)
	s.mu.Unlock()

	// Clear diagnostics for the closed buffer; the project revalidation
	// will republish for files that are still open.
	if err := s.sendNotification(NotificationMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  PublishDiagnosticsParams{URI: uri, Diagnostics: []Diagnostic{}},
	}); err != nil {
		return err
	}
	return s.validateProject()
}
