package lsp

import (
	"errors"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// ErrUnknownDocument marks store operations against a URI that was never
// opened (or already closed).
var ErrUnknownDocument = errors.New("unknown document")

// fileNotOpened is the JSON-RPC error returned when a query request targets
// an unopened document. Lifecycle notifications never surface it; they log
// and drop instead, since clients vary in rigor.
func fileNotOpened(uri protocol.DocumentURI) *jsonrpc2.Error {
	return jsonrpc2.Errorf(jsonrpc2.InvalidParams, "file not opened: %s", uri)
}

// internalError wraps a server-side failure (formatter breakage and the
// like) as a JSON-RPC internal error.
func internalError(err error) *jsonrpc2.Error {
	return jsonrpc2.Errorf(jsonrpc2.InternalError, "%s", err)
}
