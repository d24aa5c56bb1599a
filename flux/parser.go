package flux

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Parse parses a source document. The parser is built for mid-edit input:
// it never fails, always returning a File covering the whole document, with
// recovered syntax problems collected in File.Errors. Dangling member
// accesses, unterminated calls and unbalanced delimiters all produce usable
// partial nodes.
func Parse(filename, src string) *File {
	p := &parser{tokens: lexAll(filename, src)}

	return p.parseFile()
}

type parser struct {
	tokens []lexer.Token
	pos    int
	errors []ParseError
}

func (p *parser) cur() lexer.Token { return p.tokens[p.pos] }

func (p *parser) at(t lexer.TokenType) bool { return p.cur().Type == t }

func (p *parser) atOp(value string) bool {
	tok := p.cur()

	return tok.Type == TokenOp && tok.Value == value
}

func (p *parser) eof() bool { return p.at(TokenEOF) }

func (p *parser) next() lexer.Token {
	tok := p.cur()
	if !p.eof() {
		p.pos++
	}

	return tok
}

// peekType returns the type of the token n places ahead.
func (p *parser) peekType(n int) lexer.TokenType {
	i := p.pos + n
	if i >= len(p.tokens) {
		i = len(p.tokens) - 1
	}

	return p.tokens[i].Type
}

func (p *parser) errorf(pos lexer.Position, format string, args ...any) {
	p.errors = append(p.errors, ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// tokenEnd computes the position immediately after a token. Tokens never
// span lines, so advancing the column by the rune count is enough.
func tokenEnd(tok lexer.Token) lexer.Position {
	end := tok.Pos
	end.Offset += len(tok.Value)
	end.Column += len([]rune(tok.Value))

	return end
}

// endPos is the position after the most recently consumed token.
func (p *parser) endPos() lexer.Position {
	if p.pos == 0 {
		return p.cur().Pos
	}

	return tokenEnd(p.tokens[p.pos-1])
}

func (p *parser) parseFile() *File {
	file := &File{Start: p.cur().Pos}

	if p.at(TokenPackage) && p.peekType(1) == TokenIdent {
		start := p.next().Pos
		name := p.parseIdentifier()
		file.Package = &PackageClause{Start: start, End: name.End, Name: name}
	}

	for p.at(TokenImport) {
		file.Imports = append(file.Imports, p.parseImport())
	}

	for !p.eof() {
		before := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			file.Body = append(file.Body, stmt)
		}
		if p.pos == before {
			p.errorf(p.cur().Pos, "unexpected token %q", p.cur().Value)
			p.next()
		}
	}

	file.End = p.cur().Pos
	file.Errors = p.errors

	return file
}

func (p *parser) parseImport() *ImportDeclaration {
	imp := &ImportDeclaration{Start: p.next().Pos}

	if p.at(TokenIdent) {
		imp.As = p.parseIdentifier()
	}

	if p.at(TokenString) {
		imp.Path = p.parseStringLiteral()
	} else {
		p.errorf(p.cur().Pos, "expected import path string")
		imp.Path = &StringLiteral{Start: p.endPos(), End: p.endPos()}
	}
	imp.End = imp.Path.End

	return imp
}

func (p *parser) parseStatement() Statement {
	switch {
	case p.at(TokenOption):
		start := p.next().Pos
		assign := p.parseAssignment()
		if assign == nil {
			p.errorf(p.cur().Pos, "expected assignment after option")

			return nil
		}

		return &OptionStatement{Start: start, End: assign.End, Assignment: assign}

	case p.at(TokenBuiltin):
		start := p.next().Pos
		id := p.parseIdentifier()

		return &BuiltinStatement{Start: start, End: id.End, ID: id}

	case p.at(TokenReturn):
		start := p.next().Pos
		arg := p.parseExpression()

		return &ReturnStatement{Start: start, End: arg.Span().End, Argument: arg}

	case p.at(TokenIdent) && p.peekType(1) == TokenOp && p.tokens[p.pos+1].Value == "=":
		return p.parseAssignment()

	default:
		expr := p.parseExpression()
		if _, bad := expr.(*BadExpression); bad && expr.Span().Start == expr.Span().End {
			return nil
		}

		return &ExpressionStatement{
			Start:      expr.Span().Start,
			End:        expr.Span().End,
			Expression: expr,
		}
	}
}

func (p *parser) parseAssignment() *VariableAssignment {
	if !p.at(TokenIdent) {
		return nil
	}
	id := p.parseIdentifier()
	if !p.atOp("=") {
		p.errorf(p.cur().Pos, "expected = in assignment")

		return &VariableAssignment{Start: id.Start, End: id.End, ID: id}
	}
	p.next()
	init := p.parseExpression()

	return &VariableAssignment{
		Start: id.Start,
		End:   init.Span().End,
		ID:    id,
		Init:  init,
	}
}

func (p *parser) parseIdentifier() *Identifier {
	if !p.at(TokenIdent) {
		pos := p.cur().Pos

		return &Identifier{Start: pos, End: pos}
	}
	tok := p.next()

	return &Identifier{Start: tok.Pos, End: tokenEnd(tok), Name: tok.Value}
}

func (p *parser) parseStringLiteral() *StringLiteral {
	tok := p.next()

	return &StringLiteral{Start: tok.Pos, End: tokenEnd(tok), Value: unquote(tok.Value)}
}

// unquote strips surrounding double quotes and resolves simple escapes. The
// lexer may hand us an unterminated string; tolerate a missing close quote.
func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s[i])
			}

			continue
		}
		b.WriteByte(s[i])
	}

	return b.String()
}

// --- Expressions ---

func (p *parser) parseExpression() Expression {
	return p.parsePipe()
}

func (p *parser) parsePipe() Expression {
	expr := p.parseLogicalOr()

	for p.at(TokenPipeForward) {
		p.next()
		call := p.parsePipeCall()
		expr = &PipeExpression{
			Start:    expr.Span().Start,
			End:      call.End,
			Argument: expr,
			Call:     call,
		}
	}

	return expr
}

// parsePipeCall parses the call following a |> operator. Mid-edit source
// often has nothing after the pipe yet; synthesize an empty call so the
// chain stays a single node.
func (p *parser) parsePipeCall() *CallExpression {
	expr := p.parsePostfix()
	if call, ok := expr.(*CallExpression); ok {
		return call
	}
	p.errorf(expr.Span().Start, "expected call after |>")

	return &CallExpression{
		Start:  expr.Span().Start,
		End:    expr.Span().End,
		Callee: expr,
	}
}

func (p *parser) parseLogicalOr() Expression {
	expr := p.parseLogicalAnd()
	for p.at(TokenOr) {
		p.next()
		right := p.parseLogicalAnd()
		expr = &LogicalExpression{
			Start:    expr.Span().Start,
			End:      right.Span().End,
			Operator: "or",
			Left:     expr,
			Right:    right,
		}
	}

	return expr
}

func (p *parser) parseLogicalAnd() Expression {
	expr := p.parseComparison()
	for p.at(TokenAnd) {
		p.next()
		right := p.parseComparison()
		expr = &LogicalExpression{
			Start:    expr.Span().Start,
			End:      right.Span().End,
			Operator: "and",
			Left:     expr,
			Right:    right,
		}
	}

	return expr
}

var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true,
	">": true, ">=": true, "=~": true, "!~": true,
}

func (p *parser) parseComparison() Expression {
	expr := p.parseAdditive()
	for p.at(TokenOp) && comparisonOps[p.cur().Value] {
		op := p.next().Value
		right := p.parseAdditive()
		expr = &BinaryExpression{
			Start:    expr.Span().Start,
			End:      right.Span().End,
			Operator: op,
			Left:     expr,
			Right:    right,
		}
	}

	return expr
}

func (p *parser) parseAdditive() Expression {
	expr := p.parseMultiplicative()
	for p.at(TokenOp) && (p.cur().Value == "+" || p.cur().Value == "-") {
		op := p.next().Value
		right := p.parseMultiplicative()
		expr = &BinaryExpression{
			Start:    expr.Span().Start,
			End:      right.Span().End,
			Operator: op,
			Left:     expr,
			Right:    right,
		}
	}

	return expr
}

func (p *parser) parseMultiplicative() Expression {
	expr := p.parseUnary()
	for p.at(TokenOp) && (p.cur().Value == "*" || p.cur().Value == "/" || p.cur().Value == "%" || p.cur().Value == "^") {
		op := p.next().Value
		right := p.parseUnary()
		expr = &BinaryExpression{
			Start:    expr.Span().Start,
			End:      right.Span().End,
			Operator: op,
			Left:     expr,
			Right:    right,
		}
	}

	return expr
}

func (p *parser) parseUnary() Expression {
	switch {
	case p.atOp("-") || p.atOp("+"):
		tok := p.next()
		arg := p.parseUnary()

		return &UnaryExpression{Start: tok.Pos, End: arg.Span().End, Operator: tok.Value, Argument: arg}

	case p.at(TokenNot):
		tok := p.next()
		arg := p.parseUnary()

		return &UnaryExpression{Start: tok.Pos, End: arg.Span().End, Operator: "not", Argument: arg}

	case p.at(TokenExists):
		tok := p.next()
		arg := p.parseUnary()

		return &UnaryExpression{Start: tok.Pos, End: arg.Span().End, Operator: "exists", Argument: arg}
	}

	return p.parsePostfix()
}

func (p *parser) parsePostfix() Expression {
	expr := p.parsePrimary()

	for {
		switch {
		case p.at(TokenDot):
			dot := p.next()
			member := &MemberExpression{Start: expr.Span().Start, Object: expr}
			if p.at(TokenIdent) {
				member.Property = p.parseIdentifier()
			} else {
				// Dangling dot while typing: empty property at the
				// position just past the dot.
				end := tokenEnd(dot)
				member.Property = &Identifier{Start: end, End: end}
			}
			member.End = member.Property.End
			expr = member

		case p.at(TokenLParen):
			expr = p.parseCall(expr)

		case p.at(TokenLBracket):
			p.next()
			index := p.parseExpression()
			end := index.Span().End
			if p.at(TokenRBracket) {
				end = tokenEnd(p.next())
			} else {
				p.errorf(p.cur().Pos, "expected ]")
			}
			expr = &IndexExpression{Start: expr.Span().Start, End: end, Array: expr, Index: index}

		default:
			return expr
		}
	}
}

// parseCall parses an argument list for callee, tolerating a missing closing
// paren: an unterminated call extends to the end of input.
func (p *parser) parseCall(callee Expression) *CallExpression {
	p.next() // (
	call := &CallExpression{Start: callee.Span().Start, Callee: callee}

	for !p.at(TokenRParen) && !p.eof() {
		before := p.pos
		if p.at(TokenComma) {
			p.next()

			continue
		}

		if arg := p.parseArgument(); arg != nil {
			call.Arguments = append(call.Arguments, arg)
		}
		if p.at(TokenComma) {
			p.next()
		}
		if p.pos == before {
			p.errorf(p.cur().Pos, "unexpected token %q in argument list", p.cur().Value)
			p.next()
		}
	}

	if p.at(TokenRParen) {
		call.End = tokenEnd(p.next())
	} else {
		p.errorf(p.cur().Pos, "expected ) to close call")
		call.End = p.cur().Pos
	}

	return call
}

// parseArgument parses one keyed argument. Arguments are keyword-style;
// while the user is typing, the key may stand alone or the value may be
// missing after the colon.
func (p *parser) parseArgument() *Property {
	if p.at(TokenIdent) {
		key := p.parseIdentifier()
		prop := &Property{Start: key.Start, End: key.End, Key: key}
		if p.at(TokenColon) {
			colon := p.next()
			prop.End = tokenEnd(colon)
			if !p.at(TokenComma) && !p.at(TokenRParen) && !p.eof() {
				prop.Value = p.parseExpression()
				prop.End = prop.Value.Span().End
			}
		}

		return prop
	}

	// Value without a key; keep it so positions inside remain reachable.
	value := p.parseExpression()
	if _, bad := value.(*BadExpression); bad && value.Span().Start == value.Span().End {
		return nil
	}

	return &Property{Start: value.Span().Start, End: value.Span().End, Value: value}
}

func (p *parser) parsePrimary() Expression {
	tok := p.cur()

	switch tok.Type {
	case TokenIdent:
		p.next()
		switch tok.Value {
		case "true", "false":
			return &BooleanLiteral{Start: tok.Pos, End: tokenEnd(tok), Value: tok.Value == "true"}
		}

		return &IdentifierExpression{Start: tok.Pos, End: tokenEnd(tok), Name: tok.Value}

	case TokenInt:
		p.next()
		v, _ := strconv.ParseInt(tok.Value, 10, 64)

		return &IntegerLiteral{Start: tok.Pos, End: tokenEnd(tok), Value: v}

	case TokenFloat:
		p.next()
		v, _ := strconv.ParseFloat(tok.Value, 64)

		return &FloatLiteral{Start: tok.Pos, End: tokenEnd(tok), Value: v}

	case TokenString:
		return p.parseStringLiteral()

	case TokenDuration:
		p.next()

		return &DurationLiteral{Start: tok.Pos, End: tokenEnd(tok), Value: tok.Value}

	case TokenTime:
		p.next()

		return &DateTimeLiteral{Start: tok.Pos, End: tokenEnd(tok), Value: tok.Value}

	case TokenRegex:
		p.next()
		v := strings.TrimSuffix(strings.TrimPrefix(tok.Value, "/"), "/")

		return &RegexpLiteral{Start: tok.Pos, End: tokenEnd(tok), Value: v}

	case TokenPipeReceive:
		p.next()

		return &PipeLiteral{Start: tok.Pos, End: tokenEnd(tok)}

	case TokenIf:
		return p.parseConditional()

	case TokenLParen:
		if p.isFunctionStart() {
			return p.parseFunction()
		}

		return p.parseParen()

	case TokenLBrace:
		return p.parseObject()

	case TokenLBracket:
		return p.parseArray()
	}

	// Nothing usable here. Zero-width marker; callers decide whether to
	// skip the offending token.
	return &BadExpression{Start: tok.Pos, End: tok.Pos}
}

// parseConditional parses if/then/else. Missing branches parse to
// zero-width bad expressions so mid-edit conditionals keep their shape.
func (p *parser) parseConditional() Expression {
	start := p.next().Pos // if
	cond := &ConditionalExpression{Start: start}

	cond.Test = p.parseExpression()
	if p.at(TokenThen) {
		p.next()
	} else {
		p.errorf(p.cur().Pos, "expected then")
	}
	cond.Consequent = p.parseExpression()
	if p.at(TokenElse) {
		p.next()
	} else {
		p.errorf(p.cur().Pos, "expected else")
	}
	cond.Alternate = p.parseExpression()
	cond.End = cond.Alternate.Span().End

	return cond
}

// isFunctionStart reports whether the ( at the current position opens a
// parameter list, by scanning for => after the matching close paren.
func (p *parser) isFunctionStart() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				return i+1 < len(p.tokens) && p.tokens[i+1].Type == TokenArrow
			}
		case TokenEOF:
			return false
		}
	}

	return false
}

func (p *parser) parseFunction() Expression {
	start := p.next().Pos // (
	fn := &FunctionExpression{Start: start}

	for !p.at(TokenRParen) && !p.eof() {
		before := p.pos
		if p.at(TokenIdent) {
			param := &FunctionParameter{}
			param.Key = p.parseIdentifier()
			param.Start = param.Key.Start
			param.End = param.Key.End
			if p.atOp("=") {
				p.next()
				if p.at(TokenPipeReceive) {
					pipe := p.next()
					param.Default = &PipeLiteral{Start: pipe.Pos, End: tokenEnd(pipe)}
				} else {
					param.Default = p.parseExpression()
				}
				param.End = param.Default.Span().End
			}
			fn.Params = append(fn.Params, param)
		}
		if p.at(TokenComma) {
			p.next()
		}
		if p.pos == before {
			p.errorf(p.cur().Pos, "unexpected token %q in parameter list", p.cur().Value)
			p.next()
		}
	}

	if p.at(TokenRParen) {
		p.next()
	}
	if p.at(TokenArrow) {
		p.next()
	}

	if p.at(TokenLBrace) {
		fn.Body = p.parseBlock()
	} else {
		fn.Body = p.parseExpression()
	}
	fn.End = fn.Body.Span().End

	return fn
}

func (p *parser) parseBlock() *Block {
	block := &Block{Start: p.next().Pos} // {

	for !p.at(TokenRBrace) && !p.eof() {
		before := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			block.Body = append(block.Body, stmt)
		}
		if p.pos == before {
			p.errorf(p.cur().Pos, "unexpected token %q in block", p.cur().Value)
			p.next()
		}
	}

	if p.at(TokenRBrace) {
		block.End = tokenEnd(p.next())
	} else {
		p.errorf(p.cur().Pos, "expected } to close block")
		block.End = p.cur().Pos
	}

	return block
}

func (p *parser) parseParen() Expression {
	start := p.next().Pos // (
	inner := p.parseExpression()
	end := inner.Span().End
	if p.at(TokenRParen) {
		end = tokenEnd(p.next())
	} else {
		p.errorf(p.cur().Pos, "expected )")
	}

	return &ParenExpression{Start: start, End: end, Expression: inner}
}

func (p *parser) parseObject() Expression {
	obj := &ObjectExpression{Start: p.next().Pos} // {

	for !p.at(TokenRBrace) && !p.eof() {
		before := p.pos
		if p.at(TokenIdent) || p.at(TokenString) {
			prop := &Property{}
			if p.at(TokenString) {
				str := p.parseStringLiteral()
				prop.Key = &Identifier{Start: str.Start, End: str.End, Name: str.Value}
			} else {
				prop.Key = p.parseIdentifier()
			}
			prop.Start = prop.Key.Start
			prop.End = prop.Key.End
			if p.at(TokenColon) {
				colon := p.next()
				prop.End = tokenEnd(colon)
				if !p.at(TokenComma) && !p.at(TokenRBrace) && !p.eof() {
					prop.Value = p.parseExpression()
					prop.End = prop.Value.Span().End
				}
			}
			obj.Properties = append(obj.Properties, prop)
		}
		if p.at(TokenComma) {
			p.next()
		}
		if p.pos == before {
			p.errorf(p.cur().Pos, "unexpected token %q in object", p.cur().Value)
			p.next()
		}
	}

	if p.at(TokenRBrace) {
		obj.End = tokenEnd(p.next())
	} else {
		p.errorf(p.cur().Pos, "expected } to close object")
		obj.End = p.cur().Pos
	}

	return obj
}

func (p *parser) parseArray() Expression {
	arr := &ArrayExpression{Start: p.next().Pos} // [

	for !p.at(TokenRBracket) && !p.eof() {
		before := p.pos
		if p.at(TokenComma) {
			p.next()

			continue
		}
		elem := p.parseExpression()
		if _, bad := elem.(*BadExpression); bad && elem.Span().Start == elem.Span().End {
			p.errorf(p.cur().Pos, "unexpected token %q in array", p.cur().Value)
			p.next()
		} else {
			arr.Elements = append(arr.Elements, elem)
		}
		if p.at(TokenComma) {
			p.next()
		}
		if p.pos == before && !p.at(TokenRBracket) && !p.eof() {
			p.next()
		}
	}

	if p.at(TokenRBracket) {
		arr.End = tokenEnd(p.next())
	} else {
		p.errorf(p.cur().Pos, "expected ] to close array")
		arr.End = p.cur().Pos
	}

	return arr
}
