package flux_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitallyserviced/flux-lsp/flux"
)

// collector records node type names in visit order.
type collector struct {
	visited []string
	done    []string
}

func (c *collector) Visit(node flux.Node) bool {
	c.visited = append(c.visited, typeName(node))

	return true
}

func (c *collector) Done(node flux.Node) {
	c.done = append(c.done, typeName(node))
}

func typeName(node flux.Node) string {
	switch node.(type) {
	case *flux.File:
		return "File"
	case *flux.ImportDeclaration:
		return "Import"
	case *flux.VariableAssignment:
		return "Assign"
	case *flux.ExpressionStatement:
		return "ExprStmt"
	case *flux.Identifier:
		return "Ident"
	case *flux.IdentifierExpression:
		return "IdentExpr"
	case *flux.StringLiteral:
		return "String"
	case *flux.CallExpression:
		return "Call"
	case *flux.MemberExpression:
		return "Member"
	case *flux.Property:
		return "Property"
	case *flux.PipeExpression:
		return "Pipe"
	default:
		return "Other"
	}
}

func TestWalk_SourceOrder(t *testing.T) {
	t.Parallel()

	file := flux.Parse("", `x = from(bucket: "b")`)
	c := &collector{}
	flux.Walk(c, file)

	assert.Equal(t, []string{
		"File", "Assign", "Ident", "Call", "IdentExpr", "Property", "Ident", "String",
	}, c.visited)

	// Done fires for every visited node, innermost first.
	require.Len(t, c.done, len(c.visited))
	assert.Equal(t, "File", c.done[len(c.done)-1])
	assert.Equal(t, "Ident", c.done[0])
}

func TestWalk_PruneSubtree(t *testing.T) {
	t.Parallel()

	file := flux.Parse("", `x = from(bucket: "b")`)

	var seen []string
	flux.Walk(flux.VisitorFunc(func(node flux.Node) bool {
		seen = append(seen, typeName(node))
		// Do not descend into calls.
		_, isCall := node.(*flux.CallExpression)

		return !isCall
	}), file)

	assert.Equal(t, []string{"File", "Assign", "Ident", "Call"}, seen)
}

func TestWalk_PartialTree(t *testing.T) {
	t.Parallel()

	// Walking a recovered tree must not panic on missing pieces.
	for _, src := range []string{"sql.", "csv.from(", "a = ", "f = (x) =>"} {
		file := flux.Parse("", src)
		c := &collector{}
		flux.Walk(c, file)
		assert.NotEmpty(t, c.visited, "source %q", src)
	}
}
