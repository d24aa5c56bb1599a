package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/digitallyserviced/flux-lsp/analysis"
	"github.com/digitallyserviced/flux-lsp/flux"
	"github.com/digitallyserviced/flux-lsp/stdlib"
)

// SignatureHelp handles textDocument/signatureHelp requests. A call with a
// member callee pkg.fn resolves against the catalog's package functions, a
// bare identifier callee against the prelude. Anything else answers with
// zero signatures rather than an error; the user may simply be between
// calls.
func (s *Server) SignatureHelp(_ context.Context, params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	s.logger.Debug("SignatureHelp",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	pkg, _, err := s.snapshotPackage(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, nil //nolint:nilnil // analysis failure yields a null result
	}

	help := &protocol.SignatureHelp{Signatures: []protocol.SignatureInformation{}}

	pos := analysis.PositionToLexer(params.Position)
	result := analysis.FindNode(pkg, pos)

	call, ok := result.Node.(*flux.CallExpression)
	if !ok {
		s.logger.Debug("signature help on non-call expression")

		return help, nil
	}

	switch callee := call.Callee.(type) {
	case *flux.MemberExpression:
		if obj, isIdent := callee.Object.(*flux.IdentifierExpression); isIdent && callee.Property != nil {
			help.Signatures = append(help.Signatures,
				stdlib.Get().Signatures(callee.Property.Name, obj.Name)...)
		}

	case *flux.IdentifierExpression:
		help.Signatures = append(help.Signatures,
			stdlib.Get().Signatures(callee.Name, stdlib.BuiltinPackage)...)

	default:
		s.logger.Debug("signature help on non-member, non-identifier callee")
	}

	return help, nil
}
