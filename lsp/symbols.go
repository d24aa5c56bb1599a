package lsp

import (
	"context"
	"sort"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/digitallyserviced/flux-lsp/analysis"
)

// DocumentSymbol handles textDocument/documentSymbol requests with a flat
// symbol list sorted by (start line, start character).
func (s *Server) DocumentSymbol(_ context.Context, params *protocol.DocumentSymbolParams) ([]interface{}, error) {
	s.logger.Debug("DocumentSymbol", zap.String("uri", string(params.TextDocument.URI)))

	pkg, _, err := s.snapshotPackage(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, nil
	}

	symbols := analysis.Symbols(params.TextDocument.URI, pkg)
	sort.SliceStable(symbols, func(i, j int) bool {
		a := symbols[i].Location.Range.Start
		b := symbols[j].Location.Range.Start
		if a.Line == b.Line {
			return a.Character < b.Character
		}

		return a.Line < b.Line
	})

	result := make([]interface{}, len(symbols))
	for i, sym := range symbols {
		result[i] = sym
	}

	return result, nil
}
