package lsp

import (
	"context"

	"go.lsp.dev/protocol"
)

// Hover handles textDocument/hover. The capability is advertised for
// client compatibility, but hover content is out of scope; the response is
// always null.
func (s *Server) Hover(_ context.Context, _ *protocol.HoverParams) (*protocol.Hover, error) {
	return nil, nil //nolint:nilnil // hover is always empty
}
