package lsp

import (
	"context"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/digitallyserviced/flux-lsp/analysis"
	"github.com/digitallyserviced/flux-lsp/flux"
)

// Formatting handles textDocument/formatting requests: the whole document
// is rewritten canonically and returned as a single edit covering the
// original text.
func (s *Server) Formatting(_ context.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	s.logger.Debug("Formatting", zap.String("uri", string(params.TextDocument.URI)))

	contents, err := s.store.Snapshot(params.TextDocument.URI)
	if err != nil {
		s.logger.Error("formatting failed: file not open on server",
			zap.String("uri", string(params.TextDocument.URI)))

		return nil, fileNotOpened(params.TextDocument.URI)
	}

	formatted := flux.Format(flux.Parse(string(params.TextDocument.URI), contents))

	if params.Options.TrimTrailingWhitespace {
		s.logger.Info("formatting requested trimming trailing whitespace, but the formatter always trims")
	}
	if params.Options.InsertFinalNewline && !strings.HasSuffix(formatted, "\n") {
		formatted += "\n"
	}
	if params.Options.TrimFinalNewlines {
		s.logger.Info("formatting requested trimming final newlines, but the formatter always trims")
	}

	// The edit covers the range of the original text, not of the
	// replacement.
	return []protocol.TextEdit{
		{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   analysis.EndOfText(contents),
			},
			NewText: formatted,
		},
	}, nil
}
