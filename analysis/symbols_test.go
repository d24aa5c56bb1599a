package analysis_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"

	"github.com/digitallyserviced/flux-lsp/analysis"
)

func TestSymbols_Names(t *testing.T) {
	t.Parallel()

	pkg := analyzed(t, fluxScript)
	symbols := analysis.Symbols(testURI, pkg)

	var names []string
	for _, sym := range symbols {
		names = append(names, sym.Name)
	}

	want := []string{
		"strings",
		"env",
		"prod01-us-west-2",
		"errorCounts",
		"from",
		"bucket",
		"kube-infra/monthly",
		"range",
		"start",
		"filter",
		"fn",
		"r._measurement",
		"query_log",
		"r.error",
		"",
		"r._field",
		"responseSize",
		"r.env",
		"env",
		"group",
		"columns",
		"[]",
		"env",
		"error",
		"count",
		"group",
		"columns",
		"[]",
		"env",
		"_stop",
		"_start",
		"errorCounts",
		"filter",
		"fn",
		"strings.containsStr",
		"v",
		"r.error",
		"substr",
		"AppendMappedRecordWithNulls",
	}

	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("symbol names mismatch (-want +got):\n%s", diff)
	}
}

func TestSymbols_Kinds(t *testing.T) {
	t.Parallel()

	pkg := analyzed(t, "x = 1\ny = true\nz = \"s\"\narr = [1, 2]")
	symbols := analysis.Symbols(testURI, pkg)

	kinds := map[string]protocol.SymbolKind{}
	for _, sym := range symbols {
		kinds[sym.Name] = sym.Kind
	}

	assert.Equal(t, protocol.SymbolKindVariable, kinds["x"])
	assert.Equal(t, protocol.SymbolKindNumber, kinds["1"])
	assert.Equal(t, protocol.SymbolKindBoolean, kinds["true"])
	assert.Equal(t, protocol.SymbolKindString, kinds["s"])
	assert.Equal(t, protocol.SymbolKindArray, kinds["[]"])
}

func TestSymbols_LocationsCarryURI(t *testing.T) {
	t.Parallel()

	pkg := analyzed(t, "x = 1")
	symbols := analysis.Symbols(testURI, pkg)
	assert.NotEmpty(t, symbols)
	for _, sym := range symbols {
		assert.Equal(t, testURI, sym.Location.URI)
	}
}
