package lsp_test

import (
	"context"
	"testing"

	"go.lsp.dev/protocol"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/digitallyserviced/flux-lsp/lsp"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockClient implements protocol.Client for testing.
type mockClient struct {
	diagnostics []protocol.PublishDiagnosticsParams
}

func (m *mockClient) PublishDiagnostics(_ context.Context, params *protocol.PublishDiagnosticsParams) error {
	m.diagnostics = append(m.diagnostics, *params)

	return nil
}

// Stub out remaining Client interface methods.
func (m *mockClient) Progress(context.Context, *protocol.ProgressParams) error { return nil }
func (m *mockClient) WorkDoneProgressCreate(context.Context, *protocol.WorkDoneProgressCreateParams) error {
	return nil
}
func (m *mockClient) ShowMessage(context.Context, *protocol.ShowMessageParams) error { return nil }
func (m *mockClient) ShowMessageRequest(
	context.Context, *protocol.ShowMessageRequestParams,
) (*protocol.MessageActionItem, error) {
	return nil, nil //nolint:nilnil // Mock stub returns nil for tests
}
func (m *mockClient) LogMessage(context.Context, *protocol.LogMessageParams) error { return nil }
func (m *mockClient) Telemetry(context.Context, interface{}) error                 { return nil }
func (m *mockClient) RegisterCapability(context.Context, *protocol.RegistrationParams) error {
	return nil
}
func (m *mockClient) UnregisterCapability(context.Context, *protocol.UnregistrationParams) error {
	return nil
}
func (m *mockClient) ApplyEdit(context.Context, *protocol.ApplyWorkspaceEditParams) (bool, error) {
	return false, nil
}
func (m *mockClient) Configuration(context.Context, *protocol.ConfigurationParams) ([]interface{}, error) {
	return nil, nil
}
func (m *mockClient) WorkspaceFolders(context.Context) ([]protocol.WorkspaceFolder, error) {
	return nil, nil
}

// mockCallbacks implements lsp.Callbacks with canned host data.
type mockCallbacks struct {
	buckets []string
}

func (m *mockCallbacks) GetBuckets(context.Context) ([]string, error) {
	return m.buckets, nil
}

func (m *mockCallbacks) GetMeasurements(context.Context, string) ([]string, error) {
	return nil, nil
}

func (m *mockCallbacks) GetTagKeys(context.Context, string) ([]string, error) {
	return nil, nil
}

func (m *mockCallbacks) GetTagValues(context.Context, string, string) ([]string, error) {
	return nil, nil
}

const testURI = protocol.DocumentURI("file:///home/user/file.flux")

func newTestServer(t *testing.T) (*lsp.Server, *mockClient) {
	t.Helper()

	client := &mockClient{}

	return lsp.NewServer(client, zap.NewNop(), &mockCallbacks{buckets: []string{"telegraf", "monitoring"}}, lsp.Options{}), client
}

func openFile(t *testing.T, server *lsp.Server, text string) {
	t.Helper()

	err := server.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        testURI,
			LanguageID: "flux",
			Version:    1,
			Text:       text,
		},
	})
	if err != nil {
		t.Fatalf("DidOpen() error: %v", err)
	}
}

func TestServer_Initialize(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	result, err := server.Initialize(context.Background(), &protocol.InitializeParams{})
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	if result.ServerInfo == nil || result.ServerInfo.Name != "flux-lsp" {
		t.Fatalf("unexpected server info: %+v", result.ServerInfo)
	}
	if result.ServerInfo.Version != "2.0" {
		t.Errorf("expected version 2.0, got %s", result.ServerInfo.Version)
	}

	caps := result.Capabilities
	completion := caps.CompletionProvider
	if completion == nil {
		t.Fatal("expected completion provider")
	}
	want := []string{".", ":", "(", ",", "\""}
	if len(completion.TriggerCharacters) != len(want) {
		t.Errorf("trigger characters = %v, want %v", completion.TriggerCharacters, want)
	}
	if !completion.ResolveProvider {
		t.Error("expected resolve provider")
	}

	if folding, ok := caps.FoldingRangeProvider.(bool); !ok || !folding {
		t.Errorf("expected folding enabled, got %v", caps.FoldingRangeProvider)
	}

	sig := caps.SignatureHelpProvider
	if sig == nil || len(sig.TriggerCharacters) != 1 || sig.TriggerCharacters[0] != "(" {
		t.Errorf("unexpected signature help options: %+v", sig)
	}
}

func TestServer_Initialize_DisableFolding(t *testing.T) {
	t.Parallel()

	server := lsp.NewServer(&mockClient{}, zap.NewNop(), nil, lsp.Options{DisableFolding: true})

	result, err := server.Initialize(context.Background(), &protocol.InitializeParams{})
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	if folding, ok := result.Capabilities.FoldingRangeProvider.(bool); !ok || folding {
		t.Errorf("expected folding disabled, got %v", result.Capabilities.FoldingRangeProvider)
	}
}

func TestServer_Shutdown(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	if err := server.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
}

func TestServer_Hover_AlwaysNull(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	openFile(t, server, "x = 1")

	result, err := server.Hover(context.Background(), &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
			Position:     protocol.Position{Line: 0, Character: 0},
		},
	})
	if err != nil {
		t.Fatalf("Hover() error: %v", err)
	}
	if result != nil {
		t.Errorf("expected null hover, got %+v", result)
	}
}

func TestServer_CompletionResolve_Echoes(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	item := &protocol.CompletionItem{Label: "from", Detail: "whatever"}
	result, err := server.CompletionResolve(context.Background(), item)
	if err != nil {
		t.Fatalf("CompletionResolve() error: %v", err)
	}
	if result != item {
		t.Error("expected the identical item back")
	}
}
