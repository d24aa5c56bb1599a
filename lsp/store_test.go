package lsp_test

import (
	"testing"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/digitallyserviced/flux-lsp/lsp"
)

func TestStore_OpenThenSnapshotFidelity(t *testing.T) {
	t.Parallel()

	store := lsp.NewStore(zap.NewNop())
	text := "from(bucket: \"b\")\n    |> last()\n"
	store.Open(testURI, text)

	got, err := store.Snapshot(testURI)
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if got != text {
		t.Errorf("snapshot = %q, want %q", got, text)
	}
}

func TestStore_DuplicateOpenIgnored(t *testing.T) {
	t.Parallel()

	store := lsp.NewStore(zap.NewNop())
	store.Open(testURI, "original")
	store.Open(testURI, "second open")

	got, _ := store.Snapshot(testURI)
	if got != "original" {
		t.Errorf("duplicate open replaced text: %q", got)
	}
}

func TestStore_FullReplacementReplay(t *testing.T) {
	t.Parallel()

	store := lsp.NewStore(zap.NewNop())
	store.Open(testURI, "one")

	store.Apply(testURI, []protocol.TextDocumentContentChangeEvent{
		{Text: "two"},
		{Text: "three"},
	})

	got, _ := store.Snapshot(testURI)
	if got != "three" {
		t.Errorf("expected last event's text, got %q", got)
	}
}

func TestStore_RangeEdit(t *testing.T) {
	t.Parallel()

	store := lsp.NewStore(zap.NewNop())
	store.Open(testURI, "from(bucket: \"bucket\")\n|> last()")

	store.Apply(testURI, []protocol.TextDocumentContentChangeEvent{
		{
			Range: protocol.Range{
				Start: protocol.Position{Line: 1, Character: 3},
				End:   protocol.Position{Line: 1, Character: 8},
			},
			Text: " first()",
		},
	})

	got, _ := store.Snapshot(testURI)
	want := "from(bucket: \"bucket\")\n|>  first()"
	if got != want {
		t.Errorf("range edit = %q, want %q", got, want)
	}
}

func TestStore_MultilineRangeEdit(t *testing.T) {
	t.Parallel()

	store := lsp.NewStore(zap.NewNop())
	store.Open(testURI, "first line\nsecond line\nthird line")

	store.Apply(testURI, []protocol.TextDocumentContentChangeEvent{
		{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 5},
				End:   protocol.Position{Line: 2, Character: 0},
			},
			Text: "_",
		},
	})

	got, _ := store.Snapshot(testURI)
	if got != "first_hird line" {
		t.Errorf("multiline range edit = %q", got)
	}
}

func TestStore_InvertedRangeIsDropped(t *testing.T) {
	t.Parallel()

	store := lsp.NewStore(zap.NewNop())
	text := "abc\ndef"
	store.Open(testURI, text)

	// The end position does not exist in the document, so its offset never
	// resolves past the start; the edit must be dropped whole.
	store.Apply(testURI, []protocol.TextDocumentContentChangeEvent{
		{
			Range: protocol.Range{
				Start: protocol.Position{Line: 1, Character: 1},
				End:   protocol.Position{Line: 99, Character: 0},
			},
			Text: "XXX",
		},
	})

	got, _ := store.Snapshot(testURI)
	if got != text {
		t.Errorf("inverted range corrupted the buffer: %q", got)
	}
}

func TestStore_UnknownDocumentIdempotence(t *testing.T) {
	t.Parallel()

	store := lsp.NewStore(zap.NewNop())

	// None of these may create or alter state.
	store.Apply(testURI, []protocol.TextDocumentContentChangeEvent{{Text: "x"}})
	store.Save(testURI, "y")
	store.Close(testURI)

	if _, err := store.Snapshot(testURI); err == nil {
		t.Fatal("expected ErrUnknownDocument")
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	t.Parallel()

	store := lsp.NewStore(zap.NewNop())
	store.Open(testURI, "draft")
	store.Save(testURI, "saved")

	got, _ := store.Snapshot(testURI)
	if got != "saved" {
		t.Errorf("save did not replace: %q", got)
	}
}

func TestStore_CloseRemoves(t *testing.T) {
	t.Parallel()

	store := lsp.NewStore(zap.NewNop())
	store.Open(testURI, "text")
	store.Close(testURI)

	if _, err := store.Snapshot(testURI); err == nil {
		t.Fatal("expected error after close")
	}
}
