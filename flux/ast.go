// Package flux provides the query-language front end used by the language
// server: an error-tolerant lexer and parser, the AST, a tree-walk
// framework, and a canonical formatter.
package flux

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Span is a half-open source region in 1-based line/column coordinates.
// Both endpoints are tracked so containment checks can be inclusive.
type Span struct {
	Start lexer.Position
	End   lexer.Position
}

// Contains reports whether pos falls within the span, endpoints included.
func (s Span) Contains(pos lexer.Position) bool {
	if pos.Line < s.Start.Line || (pos.Line == s.Start.Line && pos.Column < s.Start.Column) {
		return false
	}
	if pos.Line > s.End.Line || (pos.Line == s.End.Line && pos.Column > s.End.Column) {
		return false
	}

	return true
}

// MultiLine reports whether the span covers more than one source line.
func (s Span) MultiLine() bool {
	return s.End.Line > s.Start.Line
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Span() Span
}

// Statement is implemented by nodes that can appear in a statement list.
type Statement interface {
	Node
	stmtNode()
}

// Expression is implemented by nodes that can appear in expression position.
type Expression interface {
	Node
	exprNode()
}

// ParseError records a syntax problem the parser recovered from.
type ParseError struct {
	Pos     lexer.Position
	Message string
}

// Package is the root of an analyzed tree. The server analyzes one document
// at a time, so a package always holds exactly one file.
type Package struct {
	Start lexer.Position
	End   lexer.Position
	Files []*File
}

func (p *Package) Span() Span { return Span{Start: p.Start, End: p.End} }

// File is a single source document.
type File struct {
	Start   lexer.Position
	End     lexer.Position
	Package *PackageClause
	Imports []*ImportDeclaration
	Body    []Statement

	// Errors holds the syntax problems recovered from while parsing.
	// A non-empty list does not invalidate the tree.
	Errors []ParseError
}

func (f *File) Span() Span { return Span{Start: f.Start, End: f.End} }

// PackageClause is a leading "package name" clause.
type PackageClause struct {
	Start lexer.Position
	End   lexer.Position
	Name  *Identifier
}

func (p *PackageClause) Span() Span { return Span{Start: p.Start, End: p.End} }

// ImportDeclaration is an "import [alias] \"path\"" declaration.
type ImportDeclaration struct {
	Start lexer.Position
	End   lexer.Position
	As    *Identifier
	Path  *StringLiteral
}

func (i *ImportDeclaration) Span() Span { return Span{Start: i.Start, End: i.End} }

// VariableAssignment binds a name to a value: name = expr.
type VariableAssignment struct {
	Start lexer.Position
	End   lexer.Position
	ID    *Identifier
	Init  Expression
}

func (v *VariableAssignment) Span() Span { return Span{Start: v.Start, End: v.End} }
func (v *VariableAssignment) stmtNode()  {}

// OptionStatement is "option name = expr".
type OptionStatement struct {
	Start      lexer.Position
	End        lexer.Position
	Assignment *VariableAssignment
}

func (o *OptionStatement) Span() Span { return Span{Start: o.Start, End: o.End} }
func (o *OptionStatement) stmtNode()  {}

// BuiltinStatement is "builtin name".
type BuiltinStatement struct {
	Start lexer.Position
	End   lexer.Position
	ID    *Identifier
}

func (b *BuiltinStatement) Span() Span { return Span{Start: b.Start, End: b.End} }
func (b *BuiltinStatement) stmtNode()  {}

// ExpressionStatement is a bare expression in statement position.
type ExpressionStatement struct {
	Start      lexer.Position
	End        lexer.Position
	Expression Expression
}

func (e *ExpressionStatement) Span() Span { return Span{Start: e.Start, End: e.End} }
func (e *ExpressionStatement) stmtNode()  {}

// ReturnStatement is "return expr" inside a function block.
type ReturnStatement struct {
	Start    lexer.Position
	End      lexer.Position
	Argument Expression
}

func (r *ReturnStatement) Span() Span { return Span{Start: r.Start, End: r.End} }
func (r *ReturnStatement) stmtNode()  {}

// Block is a braced statement list used as a function body.
type Block struct {
	Start lexer.Position
	End   lexer.Position
	Body  []Statement
}

func (b *Block) Span() Span { return Span{Start: b.Start, End: b.End} }

// Identifier is a name in binding position: assignment targets, function
// parameter keys, member properties, object keys.
type Identifier struct {
	Start lexer.Position
	End   lexer.Position
	Name  string
}

func (i *Identifier) Span() Span { return Span{Start: i.Start, End: i.End} }
func (i *Identifier) exprNode()  {}

// IdentifierExpression is a name in value position.
type IdentifierExpression struct {
	Start lexer.Position
	End   lexer.Position
	Name  string
}

func (i *IdentifierExpression) Span() Span { return Span{Start: i.Start, End: i.End} }
func (i *IdentifierExpression) exprNode()  {}

// FunctionExpression is a lambda: (a, b=1) => expr or (a) => { ... }.
type FunctionExpression struct {
	Start  lexer.Position
	End    lexer.Position
	Params []*FunctionParameter

	// Body is either an Expression or a *Block.
	Body Node
}

func (f *FunctionExpression) Span() Span { return Span{Start: f.Start, End: f.End} }
func (f *FunctionExpression) exprNode()  {}

// FunctionParameter is a single parameter, optionally with a default value.
// A default of PipeLiteral marks the pipe parameter.
type FunctionParameter struct {
	Start   lexer.Position
	End     lexer.Position
	Key     *Identifier
	Default Expression
}

func (f *FunctionParameter) Span() Span { return Span{Start: f.Start, End: f.End} }

// CallExpression is callee(arg: value, ...). Arguments are always keyed
// properties; a value may be nil while the user is still typing.
type CallExpression struct {
	Start     lexer.Position
	End       lexer.Position
	Callee    Expression
	Arguments []*Property
}

func (c *CallExpression) Span() Span { return Span{Start: c.Start, End: c.End} }
func (c *CallExpression) exprNode()  {}

// MemberExpression is object.property. A dangling dot yields a property
// with an empty name so completion can still see the object.
type MemberExpression struct {
	Start    lexer.Position
	End      lexer.Position
	Object   Expression
	Property *Identifier
}

func (m *MemberExpression) Span() Span { return Span{Start: m.Start, End: m.End} }
func (m *MemberExpression) exprNode()  {}

// IndexExpression is array[index].
type IndexExpression struct {
	Start lexer.Position
	End   lexer.Position
	Array Expression
	Index Expression
}

func (i *IndexExpression) Span() Span { return Span{Start: i.Start, End: i.End} }
func (i *IndexExpression) exprNode()  {}

// PipeExpression is argument |> call.
type PipeExpression struct {
	Start    lexer.Position
	End      lexer.Position
	Argument Expression
	Call     *CallExpression
}

func (p *PipeExpression) Span() Span { return Span{Start: p.Start, End: p.End} }
func (p *PipeExpression) exprNode()  {}

// BinaryExpression is left op right for arithmetic and comparison operators.
type BinaryExpression struct {
	Start    lexer.Position
	End      lexer.Position
	Operator string
	Left     Expression
	Right    Expression
}

func (b *BinaryExpression) Span() Span { return Span{Start: b.Start, End: b.End} }
func (b *BinaryExpression) exprNode()  {}

// LogicalExpression is left and/or right.
type LogicalExpression struct {
	Start    lexer.Position
	End      lexer.Position
	Operator string
	Left     Expression
	Right    Expression
}

func (l *LogicalExpression) Span() Span { return Span{Start: l.Start, End: l.End} }
func (l *LogicalExpression) exprNode()  {}

// UnaryExpression is op argument: -x, not x, exists x.
type UnaryExpression struct {
	Start    lexer.Position
	End      lexer.Position
	Operator string
	Argument Expression
}

func (u *UnaryExpression) Span() Span { return Span{Start: u.Start, End: u.End} }
func (u *UnaryExpression) exprNode()  {}

// ConditionalExpression is if test then consequent else alternate.
type ConditionalExpression struct {
	Start      lexer.Position
	End        lexer.Position
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

func (c *ConditionalExpression) Span() Span { return Span{Start: c.Start, End: c.End} }
func (c *ConditionalExpression) exprNode()  {}

// ParenExpression is a parenthesized expression.
type ParenExpression struct {
	Start      lexer.Position
	End        lexer.Position
	Expression Expression
}

func (p *ParenExpression) Span() Span { return Span{Start: p.Start, End: p.End} }
func (p *ParenExpression) exprNode()  {}

// ObjectExpression is {k: v, ...}.
type ObjectExpression struct {
	Start      lexer.Position
	End        lexer.Position
	Properties []*Property
}

func (o *ObjectExpression) Span() Span { return Span{Start: o.Start, End: o.End} }
func (o *ObjectExpression) exprNode()  {}

// Property is key: value within objects and call argument lists.
type Property struct {
	Start lexer.Position
	End   lexer.Position
	Key   *Identifier
	Value Expression
}

func (p *Property) Span() Span { return Span{Start: p.Start, End: p.End} }

// ArrayExpression is [e1, e2, ...].
type ArrayExpression struct {
	Start    lexer.Position
	End      lexer.Position
	Elements []Expression
}

func (a *ArrayExpression) Span() Span { return Span{Start: a.Start, End: a.End} }
func (a *ArrayExpression) exprNode()  {}

// StringLiteral is a double-quoted string.
type StringLiteral struct {
	Start lexer.Position
	End   lexer.Position
	Value string
}

func (s *StringLiteral) Span() Span { return Span{Start: s.Start, End: s.End} }
func (s *StringLiteral) exprNode()  {}

// IntegerLiteral is a decimal integer.
type IntegerLiteral struct {
	Start lexer.Position
	End   lexer.Position
	Value int64
}

func (i *IntegerLiteral) Span() Span { return Span{Start: i.Start, End: i.End} }
func (i *IntegerLiteral) exprNode()  {}

// FloatLiteral is a decimal float.
type FloatLiteral struct {
	Start lexer.Position
	End   lexer.Position
	Value float64
}

func (f *FloatLiteral) Span() Span { return Span{Start: f.Start, End: f.End} }
func (f *FloatLiteral) exprNode()  {}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	Start lexer.Position
	End   lexer.Position
	Value bool
}

func (b *BooleanLiteral) Span() Span { return Span{Start: b.Start, End: b.End} }
func (b *BooleanLiteral) exprNode()  {}

// DurationLiteral is a duration such as 1h30m, kept in source form.
type DurationLiteral struct {
	Start lexer.Position
	End   lexer.Position
	Value string
}

func (d *DurationLiteral) Span() Span { return Span{Start: d.Start, End: d.End} }
func (d *DurationLiteral) exprNode()  {}

// DateTimeLiteral is an RFC3339-style timestamp, kept in source form.
type DateTimeLiteral struct {
	Start lexer.Position
	End   lexer.Position
	Value string
}

func (d *DateTimeLiteral) Span() Span { return Span{Start: d.Start, End: d.End} }
func (d *DateTimeLiteral) exprNode()  {}

// RegexpLiteral is a /regex/ literal, kept in source form without slashes.
type RegexpLiteral struct {
	Start lexer.Position
	End   lexer.Position
	Value string
}

func (r *RegexpLiteral) Span() Span { return Span{Start: r.Start, End: r.End} }
func (r *RegexpLiteral) exprNode()  {}

// PipeLiteral is the <- marker used as a parameter default.
type PipeLiteral struct {
	Start lexer.Position
	End   lexer.Position
}

func (p *PipeLiteral) Span() Span { return Span{Start: p.Start, End: p.End} }
func (p *PipeLiteral) exprNode()  {}

// BadExpression is a placeholder for source the parser could not interpret.
type BadExpression struct {
	Start lexer.Position
	End   lexer.Position
}

func (b *BadExpression) Span() Span { return Span{Start: b.Start, End: b.End} }
func (b *BadExpression) exprNode()  {}
