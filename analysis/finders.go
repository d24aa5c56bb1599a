package analysis

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/digitallyserviced/flux-lsp/flux"
)

// NodeFinderResult is the node at a position plus the chain of its
// ancestors from the root.
type NodeFinderResult struct {
	Node flux.Node
	Path []flux.Node
}

// FindNode locates the deepest node containing pos within the tree. When
// siblings both touch the position the first one in source order wins.
func FindNode(root flux.Node, pos lexer.Position) NodeFinderResult {
	f := &nodeFinder{pos: pos}
	flux.Walk(f, root)

	return NodeFinderResult{Node: f.node, Path: f.path}
}

type nodeFinder struct {
	pos      lexer.Position
	depth    int
	maxDepth int
	node     flux.Node
	path     []flux.Node
}

func (f *nodeFinder) Visit(n flux.Node) bool {
	if !n.Span().Contains(f.pos) {
		return false
	}
	// A containing sibling at this depth has already been explored; the
	// first child whose range holds the position wins.
	if f.depth < f.maxDepth {
		return false
	}
	f.depth++
	f.maxDepth = f.depth
	if f.node != nil {
		f.path = append(f.path, f.node)
	}
	f.node = n

	return true
}

func (f *nodeFinder) Done(n flux.Node) {
	if n.Span().Contains(f.pos) {
		f.depth--
	}
}

// FindDefinition returns the first node introducing name within root: a
// variable assignment or a function parameter. Nil when the name is unbound.
func FindDefinition(root flux.Node, name string) flux.Node {
	f := &definitionFinder{name: name}
	flux.Walk(f, root)

	return f.node
}

type definitionFinder struct {
	name string
	node flux.Node
}

func (f *definitionFinder) Visit(n flux.Node) bool {
	if f.node != nil {
		return false
	}

	switch d := n.(type) {
	case *flux.VariableAssignment:
		if d.ID != nil && d.ID.Name == f.name {
			f.node = d

			return false
		}

	case *flux.FunctionParameter:
		if d.Key != nil && d.Key.Name == f.name {
			f.node = d

			return false
		}
	}

	return true
}

func (f *definitionFinder) Done(flux.Node) {}

// FindIdents collects, in source order, every identifier or identifier
// expression named name within root. Member-access properties are not
// identifiers of the enclosing scope and are excluded.
func FindIdents(root flux.Node, name string) []flux.Node {
	f := &identFinder{name: name, skip: map[*flux.Identifier]bool{}}
	flux.Walk(f, root)

	return f.idents
}

type identFinder struct {
	name   string
	skip   map[*flux.Identifier]bool
	idents []flux.Node
}

func (f *identFinder) Visit(n flux.Node) bool {
	switch node := n.(type) {
	case *flux.MemberExpression:
		if node.Property != nil {
			f.skip[node.Property] = true
		}

	case *flux.Identifier:
		if node.Name == f.name && !f.skip[node] {
			f.idents = append(f.idents, node)
		}

	case *flux.IdentifierExpression:
		if node.Name == f.name {
			f.idents = append(f.idents, node)
		}
	}

	return true
}

func (f *identFinder) Done(flux.Node) {}

// FindImports returns the import paths declared in the tree.
func FindImports(root flux.Node) []string {
	var paths []string
	flux.Walk(flux.VisitorFunc(func(n flux.Node) bool {
		if imp, ok := n.(*flux.ImportDeclaration); ok {
			if imp.Path != nil {
				paths = append(paths, imp.Path.Value)
			}

			return false
		}

		return true
	}), root)

	return paths
}

// FindFolds collects the foldable nodes of the tree: function bodies and
// pipe chains whose source spans more than one line. Nested pipes fold as a
// single chain.
func FindFolds(root flux.Node) []flux.Node {
	f := &foldFinder{}
	flux.Walk(f, root)

	return f.nodes
}

type foldFinder struct {
	nodes     []flux.Node
	pipeDepth int
}

func (f *foldFinder) Visit(n flux.Node) bool {
	switch node := n.(type) {
	case *flux.FunctionExpression:
		if node.Body != nil && node.Body.Span().MultiLine() {
			f.nodes = append(f.nodes, node.Body)
		}

	case *flux.PipeExpression:
		if f.pipeDepth == 0 && node.Span().MultiLine() {
			f.nodes = append(f.nodes, node)
		}
		f.pipeDepth++
	}

	return true
}

func (f *foldFinder) Done(n flux.Node) {
	if _, ok := n.(*flux.PipeExpression); ok {
		f.pipeDepth--
	}
}
