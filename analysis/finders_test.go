package analysis_test

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitallyserviced/flux-lsp/analysis"
	"github.com/digitallyserviced/flux-lsp/flux"
)

const fluxScript = `import "strings"
env = "prod01-us-west-2"

errorCounts = from(bucket:"kube-infra/monthly")
    |> range(start: -3d)
    |> filter(fn: (r) => r._measurement == "query_log" and
                         r.error != "" and
                         r._field == "responseSize" and
                         r.env == env)
    |> group(columns:["env", "error"])
    |> count()
    |> group(columns:["env", "_stop", "_start"])

errorCounts
    |> filter(fn: (r) => strings.containsStr(v: r.error, substr: "AppendMappedRecordWithNulls"))`

func analyzed(t *testing.T, src string) *flux.Package {
	t.Helper()

	pkg, err := analysis.Analyze("", src)
	require.NoError(t, err)

	return pkg
}

func TestFindNode_Identifier(t *testing.T) {
	t.Parallel()

	pkg := analyzed(t, fluxScript)

	// Inside "env" on line 2.
	result := analysis.FindNode(pkg, lexer.Position{Line: 2, Column: 2})
	require.NotNil(t, result.Node)

	ident, ok := result.Node.(*flux.Identifier)
	require.True(t, ok, "expected identifier, got %T", result.Node)
	assert.Equal(t, "env", ident.Name)

	// The path runs root to parent.
	require.NotEmpty(t, result.Path)
	_, ok = result.Path[0].(*flux.Package)
	assert.True(t, ok)
	_, ok = result.Path[len(result.Path)-1].(*flux.VariableAssignment)
	assert.True(t, ok)
}

func TestFindNode_DanglingDot(t *testing.T) {
	t.Parallel()

	pkg := analyzed(t, "import \"sql\"\n\nsql.")

	// On the dot of "sql." the deepest containing node is the object
	// identifier; its parent is the member expression.
	result := analysis.FindNode(pkg, lexer.Position{Line: 3, Column: 4})
	require.NotNil(t, result.Node)

	ident, ok := result.Node.(*flux.IdentifierExpression)
	require.True(t, ok, "expected identifier expression, got %T", result.Node)
	assert.Equal(t, "sql", ident.Name)

	parent := result.Path[len(result.Path)-1]
	_, ok = parent.(*flux.MemberExpression)
	assert.True(t, ok, "expected member parent, got %T", parent)
}

func TestFindNode_InsideUnterminatedCall(t *testing.T) {
	t.Parallel()

	pkg := analyzed(t, "import \"csv\"\n\ncsv.from(\n")

	result := analysis.FindNode(pkg, lexer.Position{Line: 3, Column: 9})
	require.NotNil(t, result.Node)

	// The path must include the enclosing call for parameter completion.
	var foundCall bool
	for _, n := range result.Path {
		if _, ok := n.(*flux.CallExpression); ok {
			foundCall = true
		}
	}
	if _, ok := result.Node.(*flux.CallExpression); ok {
		foundCall = true
	}
	assert.True(t, foundCall)
}

func TestFindNode_OutsideTree(t *testing.T) {
	t.Parallel()

	pkg := analyzed(t, "x = 1")
	result := analysis.FindNode(pkg, lexer.Position{Line: 50, Column: 1})
	assert.Nil(t, result.Node)
}

func TestFindDefinition(t *testing.T) {
	t.Parallel()

	pkg := analyzed(t, fluxScript)

	def := analysis.FindDefinition(pkg, "env")
	require.NotNil(t, def)

	assign, ok := def.(*flux.VariableAssignment)
	require.True(t, ok)
	assert.Equal(t, 2, assign.Span().Start.Line)
	assert.Equal(t, 1, assign.Span().Start.Column)
	assert.Equal(t, 25, assign.Span().End.Column)

	assert.Nil(t, analysis.FindDefinition(pkg, "nope"))
}

func TestFindDefinition_FunctionParameter(t *testing.T) {
	t.Parallel()

	pkg := analyzed(t, "f = (tables, n) => tables")

	def := analysis.FindDefinition(pkg, "n")
	require.NotNil(t, def)
	_, ok := def.(*flux.FunctionParameter)
	assert.True(t, ok, "expected function parameter, got %T", def)
}

func TestFindIdents_SkipsMemberProperties(t *testing.T) {
	t.Parallel()

	pkg := analyzed(t, fluxScript)

	// "env" appears as the binding, as r.env (a property, excluded), and
	// as a bare use inside the filter function.
	idents := analysis.FindIdents(pkg, "env")
	require.Len(t, idents, 2)

	assert.Equal(t, 2, idents[0].Span().Start.Line)
	assert.Equal(t, 9, idents[1].Span().Start.Line)
	assert.Equal(t, 35, idents[1].Span().Start.Column)
	assert.Equal(t, 38, idents[1].Span().End.Column)
}

func TestFindImports(t *testing.T) {
	t.Parallel()

	pkg := analyzed(t, "import \"strings\"\nimport c \"csv\"\n\nx = 1")
	assert.Equal(t, []string{"strings", "csv"}, analysis.FindImports(pkg))
}

func TestFindFolds(t *testing.T) {
	t.Parallel()

	pkg := analyzed(t, fluxScript)
	folds := analysis.FindFolds(pkg)

	// The multi-line pipe chains fold, as does the multi-line filter
	// lambda body; the single-line lambda on the last line does not.
	require.Len(t, folds, 3)

	_, ok := folds[0].(*flux.PipeExpression)
	assert.True(t, ok, "expected pipe chain fold, got %T", folds[0])
	assert.True(t, folds[1].Span().MultiLine())

	_, ok = folds[2].(*flux.PipeExpression)
	assert.True(t, ok)
	assert.Equal(t, 14, folds[2].Span().Start.Line)
}
