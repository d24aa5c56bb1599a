package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/digitallyserviced/flux-lsp/analysis"
)

// Definition handles textDocument/definition requests: the identifier at
// the position resolves to the assignment that binds it, or to its own
// parameter declaration inside a function.
func (s *Server) Definition(_ context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	s.logger.Debug("Definition",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	pkg, _, err := s.snapshotPackage(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, nil
	}

	pos := analysis.PositionToLexer(params.Position)
	def := analysis.Definition(pkg, pos)
	if def == nil {
		return nil, nil
	}

	return []protocol.Location{analysis.NodeLocation(params.TextDocument.URI, def)}, nil
}
