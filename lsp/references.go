package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/digitallyserviced/flux-lsp/analysis"
)

// References handles textDocument/references requests through the scope
// engine: the nearest binding construct is located first, then every use of
// the name within it. The declaration is always included.
func (s *Server) References(_ context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	s.logger.Debug("References",
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

	return analysis.ReferenceLocations(pkg, params.TextDocument.URI, pos), nil
}
