package analysis

import (
	"github.com/alecthomas/participle/v2/lexer"
	"go.lsp.dev/protocol"

	"github.com/digitallyserviced/flux-lsp/flux"
)

// identName resolves the name under the cursor; only identifiers and
// identifier expressions participate in scoping.
func identName(node flux.Node) (string, bool) {
	switch n := node.(type) {
	case *flux.Identifier:
		return n.Name, true
	case *flux.IdentifierExpression:
		return n.Name, true
	}

	return "", false
}

// functionDefines reports whether fn's parameter list binds name, returning
// the matching parameter.
func functionDefines(fn *flux.FunctionExpression, name string) (*flux.FunctionParameter, bool) {
	for _, param := range fn.Params {
		if param.Key != nil && param.Key.Name == name {
			return param, true
		}
	}

	return nil, false
}

// findScope walks the ancestor path from the innermost node outward and
// returns the nearest construct binding name: a function whose parameter
// list contains it, or a file or package in which a definition scan
// succeeds.
func findScope(path []flux.Node, name string) flux.Node {
	for i := len(path) - 1; i >= 0; i-- {
		switch n := path[i].(type) {
		case *flux.FunctionExpression:
			if _, ok := functionDefines(n, name); ok {
				return n
			}

		case *flux.File, *flux.Package:
			if FindDefinition(n, name) != nil {
				return n
			}
		}
	}

	return nil
}

// ReferenceLocations enumerates every use of the identifier at pos within
// its binding scope, the definition included. Powers references and rename.
func ReferenceLocations(pkg *flux.Package, uri protocol.DocumentURI, pos lexer.Position) []protocol.Location {
	result := FindNode(pkg, pos)
	if result.Node == nil {
		return nil
	}

	name, ok := identName(result.Node)
	if !ok {
		return nil
	}

	scope := findScope(result.Path, name)
	if scope == nil {
		return nil
	}

	idents := FindIdents(scope, name)
	locations := make([]protocol.Location, 0, len(idents))
	for _, ident := range idents {
		locations = append(locations, NodeLocation(uri, ident))
	}

	return locations
}

// Definition resolves the binding for the identifier at pos: the variable
// assignment introducing it, or, for function parameters, the parameter
// declaration itself. Nil when the position holds no resolvable identifier.
func Definition(pkg *flux.Package, pos lexer.Position) flux.Node {
	result := FindNode(pkg, pos)
	if result.Node == nil {
		return nil
	}

	name, ok := identName(result.Node)
	if !ok {
		return nil
	}

	for i := len(result.Path) - 1; i >= 0; i-- {
		switch n := result.Path[i].(type) {
		case *flux.FunctionExpression:
			if param, ok := functionDefines(n, name); ok {
				return param
			}

		case *flux.File, *flux.Package:
			if def := FindDefinition(n, name); def != nil {
				return def
			}
		}
	}

	return nil
}
