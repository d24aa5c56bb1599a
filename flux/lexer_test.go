package flux

import (
	"strings"
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(src string) []lexer.TokenType {
	var types []lexer.TokenType
	for _, tok := range lexAll("", src) {
		if tok.Type == TokenEOF {
			break
		}
		types = append(types, tok.Type)
	}

	return types
}

func TestLexer_Basics(t *testing.T) {
	t.Parallel()

	tokens := lexAll("", `from(bucket: "telegraf")`)
	require.Len(t, tokens, 7) // ident ( ident : string ) EOF
	assert.Equal(t, TokenIdent, tokens[0].Type)
	assert.Equal(t, "from", tokens[0].Value)
	assert.Equal(t, TokenLParen, tokens[1].Type)
	assert.Equal(t, TokenColon, tokens[3].Type)
	assert.Equal(t, TokenString, tokens[4].Type)
	assert.Equal(t, `"telegraf"`, tokens[4].Value)
}

func TestLexer_Positions(t *testing.T) {
	t.Parallel()

	tokens := lexAll("", "a = 1\nbb = 2")
	assert.Equal(t, 1, tokens[0].Pos.Line)
	assert.Equal(t, 1, tokens[0].Pos.Column)

	// bb starts line 2 column 1.
	assert.Equal(t, "bb", tokens[3].Value)
	assert.Equal(t, 2, tokens[3].Pos.Line)
	assert.Equal(t, 1, tokens[3].Pos.Column)
	assert.Equal(t, 6, tokens[3].Pos.Offset)
}

func TestLexer_Durations(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		src  string
		want string
	}{
		{"1h", "1h"},
		{"10m", "10m"},
		{"-3d", "3d"},
		{"1h30m", "1h30m"},
		{"5mo", "5mo"},
		{"100ms", "100ms"},
	} {
		tokens := lexAll("", tc.src)
		var got string
		for _, tok := range tokens {
			if tok.Type == TokenDuration {
				got = tok.Value
			}
		}
		assert.Equal(t, tc.want, got, "source %q", tc.src)
	}

	// An integer followed by an identifier is not a duration.
	types := tokenTypes("10 mean")
	assert.Equal(t, []lexer.TokenType{TokenInt, TokenIdent}, types)
}

func TestLexer_Time(t *testing.T) {
	t.Parallel()

	tokens := lexAll("", "start = 2021-03-22T14:30:00Z")
	var found bool
	for _, tok := range tokens {
		if tok.Type == TokenTime {
			found = true
			assert.Equal(t, "2021-03-22T14:30:00Z", tok.Value)
		}
	}
	assert.True(t, found)
}

func TestLexer_RegexVsDivision(t *testing.T) {
	t.Parallel()

	types := tokenTypes("x = 10 / 2")
	assert.Equal(t, []lexer.TokenType{TokenIdent, TokenOp, TokenInt, TokenOp, TokenInt}, types)

	types = tokenTypes("r._field =~ /usage/")
	assert.Equal(t, TokenRegex, types[len(types)-1])
}

func TestLexer_Operators(t *testing.T) {
	t.Parallel()

	types := tokenTypes("a |> b => <- == !=")
	assert.Equal(t, []lexer.TokenType{
		TokenIdent, TokenPipeForward, TokenIdent, TokenArrow,
		TokenPipeReceive, TokenOp, TokenOp,
	}, types)
}

func TestLexer_CommentsAndWhitespaceDropped(t *testing.T) {
	t.Parallel()

	tokens := lexAll("", "a = 1 // trailing comment\nb = 2")
	var values []string
	for _, tok := range tokens {
		if tok.Type != TokenEOF {
			values = append(values, tok.Value)
		}
	}
	assert.Equal(t, []string{"a", "=", "1", "b", "=", "2"}, values)
}

func TestLexer_UnterminatedString(t *testing.T) {
	t.Parallel()

	tokens := lexAll("", "x = \"oops\ny = 1")
	var sawString bool
	for _, tok := range tokens {
		if tok.Type == TokenString {
			sawString = true
			assert.True(t, strings.HasPrefix(tok.Value, `"`))
		}
	}
	assert.True(t, sawString)

	// Lexing continues on the next line.
	last := tokens[len(tokens)-2]
	assert.Equal(t, "1", last.Value)
}

func TestLexer_Keywords(t *testing.T) {
	t.Parallel()

	types := tokenTypes("import option return and or not")
	assert.Equal(t, []lexer.TokenType{
		TokenImport, TokenOption, TokenReturn, TokenAnd, TokenOr, TokenNot,
	}, types)

	// true/false stay identifiers at the lexer level.
	types = tokenTypes("true false")
	assert.Equal(t, []lexer.TokenType{TokenIdent, TokenIdent}, types)
}

func TestLexer_DefinitionInterface(t *testing.T) {
	t.Parallel()

	lx, err := Lexer.Lex("test.flux", strings.NewReader("a = 1"))
	require.NoError(t, err)

	tok, err := lx.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenIdent, tok.Type)
	assert.Equal(t, "test.flux", tok.Pos.Filename)
}
