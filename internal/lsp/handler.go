// Package lsp implements a Language Server Protocol handler for the .tcg
// textual assembly language: parse/build/optimize diagnostics only, no
// completion or semantic tokens (there is no meaningful identifier
// namespace to complete against beyond the mnemonic table).
package lsp

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"tcgopt/internal/asm"
)

// Handler implements the LSP server handlers for the .tcg listing format.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
	results map[string]*asm.Result
}

// NewHandler creates a Handler with empty per-document state.
func NewHandler() *Handler {
	return &Handler{
		content: make(map[string]string),
		results: make(map[string]*asm.Result),
	}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("tcgopt-lsp: initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	return nil
}

func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Printf("tcgopt-lsp: opened %s", params.TextDocument.URI)
	return h.refresh(ctx, params.TextDocument.URI)
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Printf("tcgopt-lsp: changed %s", params.TextDocument.URI)
	return h.refresh(ctx, params.TextDocument.URI)
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	h.mu.Lock()
	delete(h.content, path)
	delete(h.results, path)
	h.mu.Unlock()
	return nil
}

// refresh re-reads the document from disk, then re-parses, re-assembles,
// and re-optimizes it, publishing fresh diagnostics (possibly an empty
// list, clearing stale ones). It reads from disk rather than the editor's
// in-memory buffer, so a client that hasn't saved yet keeps seeing the
// diagnostics for the last saved revision.
func (h *Handler) refresh(ctx *glsp.Context, uri protocol.DocumentUri) error {
	path, err := uriToPath(uri)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", uri, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	text := string(content)

	result, buildErr := asm.OptimizeSource(path, text)

	h.mu.Lock()
	h.content[path] = text
	if buildErr == nil {
		h.results[path] = result
	} else {
		delete(h.results, path)
	}
	h.mu.Unlock()

	var diagnostics []protocol.Diagnostic
	if buildErr != nil {
		diagnostics = append(diagnostics, toProtocolDiagnostic(buildErr))
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	return nil
}

func uriToPath(rawURI protocol.DocumentUri) (string, error) {
	u, err := url.Parse(string(rawURI))
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
