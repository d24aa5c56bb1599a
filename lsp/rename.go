package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/digitallyserviced/flux-lsp/analysis"
)

// Rename handles textDocument/rename requests. The edit set is exactly the
// reference set: one text edit per location, assembled into a workspace
// edit keyed by the document's URI.
func (s *Server) Rename(_ context.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	s.logger.Debug("Rename",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character),
		zap.String("newName", params.NewName))

	pkg, _, err := s.snapshotPackage(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, nil //nolint:nilnil // analysis failure yields a null result
	}

	pos := analysis.PositionToLexer(params.Position)
	locations := analysis.ReferenceLocations(pkg, params.TextDocument.URI, pos)

	edits := make([]protocol.TextEdit, 0, len(locations))
	for _, loc := range locations {
		edits = append(edits, protocol.TextEdit{
			Range:   loc.Range,
			NewText: params.NewName,
		})
	}

	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentURI][]protocol.TextEdit{
			params.TextDocument.URI: edits,
		},
	}, nil
}
