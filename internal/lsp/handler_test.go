package lsp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"tcgopt/internal/lsp"
)

func TestInitializeAdvertisesFullSync(t *testing.T) {
	handler := lsp.NewHandler()

	result, err := handler.Initialize(&glsp.Context{}, &protocol.InitializeParams{})
	require.NoError(t, err)

	init, ok := result.(*protocol.InitializeResult)
	require.True(t, ok)
	require.NotNil(t, init.Capabilities.TextDocumentSync)

	sync, ok := init.Capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
	require.True(t, ok)
	assert.True(t, *sync.OpenClose)
	assert.Equal(t, protocol.TextDocumentSyncKindFull, *sync.Change)
}

func TestTextDocumentDidCloseIsIdempotent(t *testing.T) {
	handler := lsp.NewHandler()
	params := &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///does/not/exist.tcg"},
	}

	assert.NoError(t, handler.TextDocumentDidClose(&glsp.Context{}, params))
	assert.NoError(t, handler.TextDocumentDidClose(&glsp.Context{}, params))
}

func TestInitializedAndShutdownAreNoOps(t *testing.T) {
	handler := lsp.NewHandler()
	assert.NoError(t, handler.Initialized(&glsp.Context{}, &protocol.InitializedParams{}))
	assert.NoError(t, handler.Shutdown(&glsp.Context{}))
	assert.NoError(t, handler.SetTrace(&glsp.Context{}, &protocol.SetTraceParams{}))
}
