package analysis

import (
	"strconv"

	"go.lsp.dev/protocol"

	"github.com/digitallyserviced/flux-lsp/flux"
)

// Symbols produces the document's flat symbol list in walk order: names the
// user can orient by, which means identifiers, member accesses flattened to
// their dotted form, and literal values. Function parameters and time-like
// literals carry no useful name and are skipped. Callers sort the result.
func Symbols(uri protocol.DocumentURI, root flux.Node) []protocol.SymbolInformation {
	v := &symbolVisitor{uri: uri}
	flux.Walk(v, root)

	return v.symbols
}

type symbolVisitor struct {
	uri     protocol.DocumentURI
	symbols []protocol.SymbolInformation
}

func (v *symbolVisitor) add(name string, kind protocol.SymbolKind, node flux.Node) {
	v.symbols = append(v.symbols, protocol.SymbolInformation{
		Name:     name,
		Kind:     kind,
		Location: NodeLocation(v.uri, node),
	})
}

func (v *symbolVisitor) Visit(n flux.Node) bool {
	switch node := n.(type) {
	case *flux.Identifier:
		v.add(node.Name, protocol.SymbolKindVariable, node)

	case *flux.IdentifierExpression:
		v.add(node.Name, protocol.SymbolKindVariable, node)

	case *flux.MemberExpression:
		v.add(memberName(node), protocol.SymbolKindObject, node)

		return false

	case *flux.StringLiteral:
		v.add(node.Value, protocol.SymbolKindString, node)

	case *flux.IntegerLiteral:
		v.add(strconv.FormatInt(node.Value, 10), protocol.SymbolKindNumber, node)

	case *flux.FloatLiteral:
		v.add(strconv.FormatFloat(node.Value, 'f', -1, 64), protocol.SymbolKindNumber, node)

	case *flux.BooleanLiteral:
		v.add(strconv.FormatBool(node.Value), protocol.SymbolKindBoolean, node)

	case *flux.ArrayExpression:
		v.add("[]", protocol.SymbolKindArray, node)

	case *flux.FunctionParameter:
		return false
	}

	return true
}

func (v *symbolVisitor) Done(flux.Node) {}

// memberName flattens a member access chain into its dotted source form.
func memberName(m *flux.MemberExpression) string {
	prop := ""
	if m.Property != nil {
		prop = m.Property.Name
	}

	switch obj := m.Object.(type) {
	case *flux.IdentifierExpression:
		return obj.Name + "." + prop
	case *flux.MemberExpression:
		return memberName(obj) + "." + prop
	default:
		return prop
	}
}
