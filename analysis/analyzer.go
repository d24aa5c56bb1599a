// Package analysis provides the semantic-analysis facade and the tree
// visitors behind the language server's features. Everything here operates
// on partially written source: the parser recovers rather than rejects, and
// every visitor tolerates missing subtrees.
package analysis

import (
	"github.com/digitallyserviced/flux-lsp/flux"
)

// Analyze parses source with all syntactic and semantic validation disabled
// and wraps it in a single-file package tree. Recovered syntax problems are
// retained on the file but do not fail analysis; users request intelligence
// mid-keystroke, so rejecting ill-formed input would make the server
// useless.
func Analyze(filename, src string) (*flux.Package, error) {
	file := flux.Parse(filename, src)

	return &flux.Package{
		Start: file.Start,
		End:   file.End,
		Files: []*flux.File{file},
	}, nil
}
