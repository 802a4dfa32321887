package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/blueprintdsl/blueprint/internal/checker"
	"github.com/blueprintdsl/blueprint/internal/diagnostics"
	"github.com/blueprintdsl/blueprint/internal/linker"
	"github.com/blueprintdsl/blueprint/internal/loader"
)

// validateProject reruns the whole load/link/check pass with open buffers
// overlaid on the workspace, then publishes per-file diagnostics for every
// open document. The core is pure, so a full rerun per change is safe; the
// version check in didChange discards stale buffers before we get here.
func (s *LanguageServer) validateProject() error {
	s.mu.RLock()
	root := s.rootPath
	overlay := make(map[string][]byte, len(s.documents))
	var open []*DocumentState
	for _, doc := range s.documents {
		overlay[doc.Path] = []byte(doc.Content)
		open = append(open, doc)
	}
	s.mu.RUnlock()

	if len(open) == 0 {
		return nil
	}
	if root == "" {
		root = filepath.Dir(open[0].Path)
	}

	byFile := make(map[string][]Diagnostic)

	mods, err := loader.LoadDirOverlay(root, overlay)
	if err != nil {
		s.assignProjectError(byFile, open, err.Error())
		return s.publishAll(byFile, open)
	}

	app, _, linkErr := linker.Link(mods)
	if linkErr != nil {
		s.assignProjectError(byFile, open, linkErr.Error())
		return s.publishAll(byFile, open)
	}

	fileOf := make(map[string]string, len(app.Modules)) // module name -> file
	for _, mod := range app.Modules {
		fileOf[mod.Name] = mod.File
	}

	// Reference violations carry no position; rewalk the ref fields here so
	// each violation lands at the top of the owning module's file.
	for _, entity := range app.Entities {
		for _, field := range entity.Fields {
			if !field.IsRef() {
				continue
			}
			if _, ok := app.Symbols.Resolve(field.Ref); ok {
				continue
			}
			file := filepath.Clean(fileOf[entity.Module])
			byFile[file] = append(byFile[file], Diagnostic{
				Range:    Range{Start: Position{0, 0}, End: Position{0, 1}},
				Severity: DiagSeverityError,
				Code:     diagnostics.ErrE004,
				Message: fmt.Sprintf("Entity '%s' field '%s' references unknown entity '%s'",
					entity.Name, field.Name, field.Ref),
				Source: "blueprint",
			})
		}
	}
	for _, d := range checker.Check(app) {
		file := filepath.Clean(d.File)
		byFile[file] = append(byFile[file], convertDiagnostic(d))
	}

	return s.publishAll(byFile, open)
}

// assignProjectError publishes a module-level failure: to the file named in
// the message when one matches an open buffer, otherwise to every open
// buffer, since a structural error invalidates the whole project.
func (s *LanguageServer) assignProjectError(byFile map[string][]Diagnostic, open []*DocumentState, msg string) {
	diag := Diagnostic{
		Range:    Range{Start: Position{0, 0}, End: Position{0, 1}},
		Severity: DiagSeverityError,
		Message:  msg,
		Source:   "blueprint",
	}
	matched := false
	for _, doc := range open {
		if strings.Contains(msg, doc.Path) || strings.Contains(msg, filepath.Base(doc.Path)) {
			byFile[doc.Path] = append(byFile[doc.Path], diag)
			matched = true
		}
	}
	if !matched {
		for _, doc := range open {
			byFile[doc.Path] = append(byFile[doc.Path], diag)
		}
	}
}

func (s *LanguageServer) publishAll(byFile map[string][]Diagnostic, open []*DocumentState) error {
	for _, doc := range open {
		diags := byFile[doc.Path]
		if diags == nil {
			diags = []Diagnostic{}
		}
		if err := s.sendNotification(NotificationMessage{
			Jsonrpc: "2.0",
			Method:  "textDocument/publishDiagnostics",
			Params:  PublishDiagnosticsParams{URI: doc.URI, Diagnostics: diags},
		}); err != nil {
			log.Printf("Error publishing diagnostics for %s: %v", doc.URI, err)
			return err
		}
	}
	return nil
}

func convertDiagnostic(d *diagnostics.DiagnosticError) Diagnostic {
	severity := DiagSeverityError
	if d.Severity == diagnostics.SeverityWarning {
		severity = DiagSeverityWarning
	}
	line, col := d.Line, d.Column
	if line < 1 {
		line, col = 1, 1
	}
	if col < 1 {
		col = 1
	}
	return Diagnostic{
		Range: Range{
			// LSP positions are 0-based.
			Start: Position{Line: line - 1, Character: col - 1},
			End:   Position{Line: line - 1, Character: col},
		},
		Severity: severity,
		Code:     d.Code,
		Message:  d.Message,
		Source:   "blueprint",
	}
}
