package analysis

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"go.lsp.dev/protocol"

	"github.com/digitallyserviced/flux-lsp/flux"
	"github.com/digitallyserviced/flux-lsp/stdlib"
)

// UserVar is a document-local binding offered alongside the stdlib catalog.
type UserVar struct {
	Name   string
	Detail string
}

// Matches implements stdlib.Completable; local names never complete in a
// dotted context.
func (v UserVar) Matches(text string, _ []string) bool {
	return !strings.HasSuffix(text, ".")
}

// CompletionItem implements stdlib.Completable.
func (v UserVar) CompletionItem(stdlib.CompleteContext) protocol.CompletionItem {
	return protocol.CompletionItem{
		Label:            v.Name,
		Detail:           v.Detail,
		FilterText:       v.Name,
		InsertText:       v.Name,
		InsertTextFormat: protocol.InsertTextFormatPlainText,
		Kind:             protocol.CompletionItemKindVariable,
		SortText:         v.Name,
	}
}

// UserFunction is a document-local lambda binding.
type UserFunction struct {
	Name         string
	RequiredArgs []string
	OptionalArgs []string
}

// Matches implements stdlib.Completable.
func (f UserFunction) Matches(text string, _ []string) bool {
	return !strings.HasSuffix(text, ".")
}

// CompletionItem implements stdlib.Completable.
func (f UserFunction) CompletionItem(ctx stdlib.CompleteContext) protocol.CompletionItem {
	result := stdlib.FunctionResult{
		Name:         f.Name,
		RequiredArgs: f.RequiredArgs,
		OptionalArgs: f.OptionalArgs,
	}

	return protocol.CompletionItem{
		Label:            f.Name,
		Detail:           "Function",
		FilterText:       f.Name,
		InsertText:       result.SnippetText(ctx),
		InsertTextFormat: protocol.InsertTextFormatSnippet,
		Kind:             protocol.CompletionItemKindFunction,
		SortText:         f.Name,
	}
}

// UserRecordMember is a field of a document-local record binding, offered
// in the record's dotted context.
type UserRecordMember struct {
	Object string
	Field  string
	IsFunc bool
}

// Matches implements stdlib.Completable.
func (m UserRecordMember) Matches(text string, _ []string) bool {
	return strings.HasSuffix(text, ".") && strings.TrimSuffix(text, ".") == m.Object
}

// CompletionItem implements stdlib.Completable.
func (m UserRecordMember) CompletionItem(stdlib.CompleteContext) protocol.CompletionItem {
	kind := protocol.CompletionItemKindField
	if m.IsFunc {
		kind = protocol.CompletionItemKindFunction
	}

	return protocol.CompletionItem{
		Label:            m.Field,
		Detail:           m.Object,
		FilterText:       m.Field,
		InsertText:       m.Field,
		InsertTextFormat: protocol.InsertTextFormatPlainText,
		Kind:             kind,
		SortText:         m.Field,
	}
}

// UserCompletables collects the document's own completables at pos: every
// binding textually preceding the position plus the parameters of each
// enclosing function.
func UserCompletables(root flux.Node, pos lexer.Position) []stdlib.Completable {
	f := &completableFinder{pos: pos}
	flux.Walk(f, root)

	return f.completables
}

type completableFinder struct {
	pos          lexer.Position
	completables []stdlib.Completable
}

func (f *completableFinder) Visit(n flux.Node) bool {
	switch node := n.(type) {
	case *flux.VariableAssignment:
		if node.ID != nil && spanEndsBefore(node.Span(), f.pos) {
			f.addBinding(node.ID.Name, node.Init)
		}

	case *flux.FunctionExpression:
		if node.Span().Contains(f.pos) {
			for _, param := range node.Params {
				if param.Key != nil {
					f.completables = append(f.completables, UserVar{
						Name:   param.Key.Name,
						Detail: "Parameter",
					})
				}
			}
		}
	}

	return true
}

func (f *completableFinder) Done(flux.Node) {}

func (f *completableFinder) addBinding(name string, init flux.Expression) {
	switch value := init.(type) {
	case *flux.FunctionExpression:
		fn := UserFunction{Name: name}
		for _, param := range value.Params {
			if param.Key == nil {
				continue
			}
			if param.Default != nil {
				fn.OptionalArgs = append(fn.OptionalArgs, param.Key.Name)
			} else {
				fn.RequiredArgs = append(fn.RequiredArgs, param.Key.Name)
			}
		}
		f.completables = append(f.completables, fn)

	case *flux.ObjectExpression:
		f.completables = append(f.completables, UserVar{Name: name, Detail: "Object"})
		for _, prop := range value.Properties {
			if prop.Key == nil {
				continue
			}
			_, isFn := prop.Value.(*flux.FunctionExpression)
			f.completables = append(f.completables, UserRecordMember{
				Object: name,
				Field:  prop.Key.Name,
				IsFunc: isFn,
			})
		}

	default:
		f.completables = append(f.completables, UserVar{
			Name:   name,
			Detail: literalDetail(init),
		})
	}
}

func literalDetail(expr flux.Expression) string {
	switch expr.(type) {
	case *flux.StringLiteral:
		return stdlib.VarTypeString.Detail()
	case *flux.IntegerLiteral:
		return stdlib.VarTypeInt.Detail()
	case *flux.FloatLiteral:
		return stdlib.VarTypeFloat.Detail()
	case *flux.BooleanLiteral:
		return stdlib.VarTypeBool.Detail()
	case *flux.DurationLiteral:
		return stdlib.VarTypeDuration.Detail()
	case *flux.DateTimeLiteral:
		return stdlib.VarTypeTime.Detail()
	case *flux.RegexpLiteral:
		return stdlib.VarTypeRegexp.Detail()
	case *flux.ArrayExpression:
		return stdlib.VarTypeArray.Detail()
	default:
		return "Variable"
	}
}

func spanEndsBefore(span flux.Span, pos lexer.Position) bool {
	if span.End.Line != pos.Line {
		return span.End.Line < pos.Line
	}

	return span.End.Column <= pos.Column
}

// UserFunctionParams returns, in declaration order, the parameter names of
// the lambda bound to name, when one exists in the document.
func UserFunctionParams(root flux.Node, name string) ([]string, bool) {
	def := FindDefinition(root, name)
	assign, ok := def.(*flux.VariableAssignment)
	if !ok {
		return nil, false
	}
	fn, ok := assign.Init.(*flux.FunctionExpression)
	if !ok {
		return nil, false
	}

	return paramNames(fn), true
}

// RecordFunctionParams returns the parameter names of the lambda stored in
// field of the record bound to object, as in obj = {f: (a, b) => ...}.
func RecordFunctionParams(root flux.Node, object, field string) ([]string, bool) {
	def := FindDefinition(root, object)
	assign, ok := def.(*flux.VariableAssignment)
	if !ok {
		return nil, false
	}
	record, ok := assign.Init.(*flux.ObjectExpression)
	if !ok {
		return nil, false
	}

	for _, prop := range record.Properties {
		if prop.Key == nil || prop.Key.Name != field {
			continue
		}
		if fn, ok := prop.Value.(*flux.FunctionExpression); ok {
			return paramNames(fn), true
		}
	}

	return nil, false
}

func paramNames(fn *flux.FunctionExpression) []string {
	names := make([]string, 0, len(fn.Params))
	for _, param := range fn.Params {
		if param.Key != nil {
			names = append(names, param.Key.Name)
		}
	}

	return names
}
