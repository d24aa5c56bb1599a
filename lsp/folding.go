package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/digitallyserviced/flux-lsp/analysis"
)

// FoldingRanges handles textDocument/foldingRange requests: one Region
// range per multi-line foldable node, which means function bodies and pipe
// chains.
func (s *Server) FoldingRanges(_ context.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	s.logger.Debug("FoldingRanges", zap.String("uri", string(params.TextDocument.URI)))

	pkg, _, err := s.snapshotPackage(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, nil
	}

	var ranges []protocol.FoldingRange
	for _, node := range analysis.FindFolds(pkg) {
		rng := analysis.SpanToRange(node.Span())
		ranges = append(ranges, protocol.FoldingRange{
			StartLine:      rng.Start.Line,
			StartCharacter: rng.Start.Character,
			EndLine:        rng.End.Line,
			EndCharacter:   rng.End.Character,
			Kind:           protocol.RegionFoldingRange,
		})
	}

	return ranges, nil
}
