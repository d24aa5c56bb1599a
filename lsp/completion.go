package lsp

import (
	"context"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/digitallyserviced/flux-lsp/analysis"
	"github.com/digitallyserviced/flux-lsp/flux"
	"github.com/digitallyserviced/flux-lsp/stdlib"
)

// Completion handles textDocument/completion requests. The trigger
// character decides the mode: "." and plain invocation complete
// identifiers, ":" completes argument values through the host callbacks,
// "(" and "," complete parameter names of the enclosing call.
func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	s.logger.Debug("Completion",
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

	pos := analysis.PositionToLexer(params.Position)

	if params.Context != nil && params.Context.TriggerKind == protocol.CompletionTriggerKindTriggerCharacter {
		switch params.Context.TriggerCharacter {
		case ":":
			return s.completeArgumentValues(ctx, pkg, pos)
		case "(", ",":
			return s.completeParameterNames(pkg, pos)
		}
		// "." falls through: dot completion is identifier completion
		// with a dotted name context. "\"" is reserved and defers to
		// the invoked path as well.
	}

	return s.completeIdentifiers(ctx, pkg, pos)
}

// CompletionResolve handles completionItem/resolve; items are emitted fully
// formed, so the item echoes back unchanged.
func (s *Server) CompletionResolve(_ context.Context, item *protocol.CompletionItem) (*protocol.CompletionItem, error) {
	return item, nil
}

// completeIdentifiers merges stdlib completables with the document's own,
// both filtered by the lexical name context. Stdlib matches always precede
// user matches.
func (s *Server) completeIdentifiers(ctx context.Context, pkg *flux.Package, pos lexer.Position) (*protocol.CompletionList, error) {
	list := &protocol.CompletionList{Items: []protocol.CompletionItem{}}

	name, ok := nameContext(pkg, pos)
	if !ok {
		return list, nil
	}

	imports := analysis.FindImports(pkg)

	var matched []stdlib.Completable
	for _, c := range stdlib.Get().Completables() {
		if c.Matches(name, imports) {
			matched = append(matched, c)
		}
	}
	for _, c := range analysis.UserCompletables(pkg, pos) {
		if c.Matches(name, imports) {
			matched = append(matched, c)
		}
	}

	cctx := s.completeContext(ctx, matched)
	for _, c := range matched {
		list.Items = append(list.Items, c.CompletionItem(cctx))
	}

	return list, nil
}

// completeContext resolves host data the matched completables need for
// their items, currently the bucket list for choice snippets.
func (s *Server) completeContext(ctx context.Context, matched []stdlib.Completable) stdlib.CompleteContext {
	if !anyWantsBuckets(matched) {
		return stdlib.CompleteContext{}
	}

	buckets, err := s.callbacks.GetBuckets(ctx)
	if err != nil {
		s.logger.Warn("bucket callback failed", zap.Error(err))

		return stdlib.CompleteContext{}
	}

	return stdlib.CompleteContext{Buckets: buckets}
}

func anyWantsBuckets(matched []stdlib.Completable) bool {
	for _, c := range matched {
		if f, ok := c.(stdlib.FunctionResult); ok {
			for _, arg := range f.RequiredArgs {
				if arg == "bucket" {
					return true
				}
			}
		}
	}

	return false
}

// nameContext classifies the lexical context at pos into the text the
// matching rules run against: "pkg." in a dotted member access, the bare
// identifier otherwise, a parameter key inside a parameter list, or the
// trailing argument key inside a call.
func nameContext(pkg *flux.Package, pos lexer.Position) (string, bool) {
	result := analysis.FindNode(pkg, pos)
	if result.Node == nil {
		return "", false
	}

	var parent flux.Node
	if len(result.Path) > 0 {
		parent = result.Path[len(result.Path)-1]
	}

	switch node := result.Node.(type) {
	case *flux.IdentifierExpression:
		if member, ok := parent.(*flux.MemberExpression); ok && member.Object == node {
			return node.Name + ".", true
		}

		return node.Name, true

	case *flux.Identifier:
		switch p := parent.(type) {
		case *flux.MemberExpression:
			// On a dangling or partial property the context is the
			// object's dotted prefix.
			if p.Property == node {
				if obj, ok := p.Object.(*flux.IdentifierExpression); ok {
					return obj.Name + ".", true
				}
			}
		case *flux.FunctionParameter:
			return node.Name, true
		}

		return node.Name, true

	case *flux.MemberExpression:
		if obj, ok := node.Object.(*flux.IdentifierExpression); ok {
			return obj.Name + ".", true
		}

		return "", false

	case *flux.FunctionParameter:
		if node.Key != nil {
			return node.Key.Name, true
		}

		return "", false

	case *flux.Property:
		if node.Key != nil {
			return node.Key.Name, true
		}

		return "", false

	case *flux.CallExpression:
		if len(node.Arguments) > 0 {
			if key := node.Arguments[len(node.Arguments)-1].Key; key != nil {
				return key.Name, true
			}
		}

		return "", false
	}

	return "", false
}

// completeParameterNames suggests keyword argument names for the call
// enclosing pos, skipping arguments already present.
func (s *Server) completeParameterNames(pkg *flux.Package, pos lexer.Position) (*protocol.CompletionList, error) {
	list := &protocol.CompletionList{Items: []protocol.CompletionItem{}}

	call := enclosingCall(pkg, pos)
	if call == nil {
		return list, nil
	}

	params, ok := calleeParameters(pkg, call)
	if !ok {
		return list, nil
	}

	present := map[string]bool{}
	for _, arg := range call.Arguments {
		if arg.Key != nil {
			present[arg.Key.Name] = true
		}
	}

	for _, param := range params {
		if present[param] {
			continue
		}
		list.Items = append(list.Items, protocol.CompletionItem{
			Label:            param,
			FilterText:       param,
			InsertText:       param + ": ",
			InsertTextFormat: protocol.InsertTextFormatPlainText,
			Kind:             protocol.CompletionItemKindField,
			SortText:         param,
		})
	}

	return list, nil
}

// enclosingCall finds the call expression at or above pos.
func enclosingCall(pkg *flux.Package, pos lexer.Position) *flux.CallExpression {
	result := analysis.FindNode(pkg, pos)
	if result.Node == nil {
		return nil
	}

	if call, ok := result.Node.(*flux.CallExpression); ok {
		return call
	}
	for i := len(result.Path) - 1; i >= 0; i-- {
		if call, ok := result.Path[i].(*flux.CallExpression); ok {
			return call
		}
	}

	return nil
}

// calleeParameters resolves the parameter names of a call's callee: through
// the catalog for package members and builtins, through the document for
// user lambdas and record fields.
func calleeParameters(pkg *flux.Package, call *flux.CallExpression) ([]string, bool) {
	switch callee := call.Callee.(type) {
	case *flux.MemberExpression:
		obj, ok := callee.Object.(*flux.IdentifierExpression)
		if !ok || callee.Property == nil {
			return nil, false
		}
		if fn, ok := stdlib.Get().Function(callee.Property.Name, obj.Name); ok {
			return fn.SortedArgs(), true
		}

		return analysis.RecordFunctionParams(pkg, obj.Name, callee.Property.Name)

	case *flux.IdentifierExpression:
		if params, ok := analysis.UserFunctionParams(pkg, callee.Name); ok {
			return params, true
		}
		if fn, ok := stdlib.Get().Function(callee.Name, stdlib.BuiltinPackage); ok {
			return fn.SortedArgs(), true
		}
	}

	return nil, false
}

// completeArgumentValues suggests values for the keyword argument preceding
// a ":" trigger. Buckets resolve through the host callback; other argument
// names currently produce nothing.
func (s *Server) completeArgumentValues(ctx context.Context, pkg *flux.Package, pos lexer.Position) (*protocol.CompletionList, error) {
	list := &protocol.CompletionList{Items: []protocol.CompletionItem{}}

	name, ok := nameContext(pkg, pos)
	if !ok || strings.HasSuffix(name, ".") {
		return list, nil
	}

	if name != "bucket" {
		return list, nil
	}

	buckets, err := s.callbacks.GetBuckets(ctx)
	if err != nil {
		s.logger.Warn("bucket callback failed", zap.Error(err))

		return list, nil
	}

	for _, bucket := range buckets {
		list.Items = append(list.Items, protocol.CompletionItem{
			Label:            bucket,
			InsertTextFormat: protocol.InsertTextFormatPlainText,
			Kind:             protocol.CompletionItemKindText,
		})
	}

	return list, nil
}
