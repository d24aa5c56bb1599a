// Package lsp implements the Language Server Protocol server for the query
// language: document sync, completion, navigation, symbols, folding,
// signature help and formatting over partially written source.
package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/digitallyserviced/flux-lsp/analysis"
	"github.com/digitallyserviced/flux-lsp/flux"
)

// serverName and serverVersion identify the server to clients.
const (
	serverName    = "flux-lsp"
	serverVersion = "2.0"
)

// Options is the process-wide configuration fixed at construction. Only
// DisableFolding changes the advertised capabilities; the connection fields
// are stored with the options and no handler reads them.
type Options struct {
	DisableFolding bool
	InfluxDBURL    string
	Token          string
	Org            string
}

// Server implements the LSP Server interface.
type Server struct {
	client    protocol.Client
	logger    *zap.Logger
	store     *Store
	callbacks Callbacks
	options   Options

	initialized bool
	shutdown    bool
}

// NewServer creates an LSP server. callbacks may be nil when the host
// environment offers no bucket or tag lookups.
func NewServer(client protocol.Client, logger *zap.Logger, callbacks Callbacks, options Options) *Server {
	if callbacks == nil {
		callbacks = noopCallbacks{}
	}

	return &Server{
		client:    client,
		logger:    logger,
		store:     NewStore(logger),
		callbacks: callbacks,
		options:   options,
	}
}

// Initialize handles the initialize request.
func (s *Server) Initialize(_ context.Context, _ *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("Initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			// Full document sync; range edits from eager clients are
			// still applied by the store.
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider:   true,
				TriggerCharacters: []string{".", ":", "(", ",", "\""},
			},
			DefinitionProvider:         true,
			DocumentFormattingProvider: true,
			DocumentSymbolProvider:     true,
			FoldingRangeProvider:       !s.options.DisableFolding,
			// Advertised for client compatibility; responses are empty.
			HoverProvider:      true,
			ReferencesProvider: true,
			RenameProvider:     true,
			SignatureHelpProvider: &protocol.SignatureHelpOptions{
				TriggerCharacters:   []string{"("},
				RetriggerCharacters: []string{"("},
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    serverName,
			Version: serverVersion,
		},
	}, nil
}

// Initialized handles the initialized notification.
func (s *Server) Initialized(_ context.Context, _ *protocol.InitializedParams) error {
	s.initialized = true

	return nil
}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info("Shutdown")
	s.shutdown = true

	return nil
}

// Exit handles the exit notification; the transport loop terminates after.
func (s *Server) Exit(_ context.Context) error {
	return nil
}

// DidOpen handles textDocument/didOpen notifications.
func (s *Server) DidOpen(_ context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.logger.Info("DidOpen", zap.String("uri", string(params.TextDocument.URI)))

	s.store.Open(params.TextDocument.URI, params.TextDocument.Text)

	return nil
}

// DidChange handles textDocument/didChange notifications, applying events
// in the order received.
func (s *Server) DidChange(_ context.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.logger.Debug("DidChange",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Int32("version", params.TextDocument.Version))

	s.store.Apply(params.TextDocument.URI, params.ContentChanges)

	return nil
}

// DidSave handles textDocument/didSave notifications.
func (s *Server) DidSave(_ context.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.logger.Debug("DidSave", zap.String("uri", string(params.TextDocument.URI)))

	if params.Text != "" {
		s.store.Save(params.TextDocument.URI, params.Text)
	}

	return nil
}

// DidClose handles textDocument/didClose notifications.
func (s *Server) DidClose(_ context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.logger.Info("DidClose", zap.String("uri", string(params.TextDocument.URI)))

	s.store.Close(params.TextDocument.URI)

	return nil
}

// snapshotPackage snapshots a document and analyzes it. The returned error
// is the JSON-RPC unknown-document error; a nil package with nil error
// means analysis failed and the request should produce a null result.
func (s *Server) snapshotPackage(uri protocol.DocumentURI) (*flux.Package, string, error) {
	contents, err := s.store.Snapshot(uri)
	if err != nil {
		s.logger.Error("request against unopened file", zap.String("uri", string(uri)))

		return nil, "", fileNotOpened(uri)
	}

	pkg, err := analysis.Analyze(string(uri), contents)
	if err != nil {
		s.logger.Debug("analysis failed", zap.String("uri", string(uri)), zap.Error(err))

		return nil, contents, nil
	}

	return pkg, contents, nil
}
