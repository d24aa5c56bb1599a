package flux_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/digitallyserviced/flux-lsp/flux"
)

func format(t *testing.T, src string) string {
	t.Helper()

	return flux.Format(flux.Parse("", src))
}

func TestFormat_Canonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "assignment spacing",
			src:  `env="x"`,
			want: `env = "x"`,
		},
		{
			name: "import block",
			src:  "import   \"csv\"\nx=1",
			want: "import \"csv\"\n\nx = 1",
		},
		{
			name: "aliased import",
			src:  "import c \"csv\"",
			want: "import c \"csv\"",
		},
		{
			name: "pipe chain breaks onto lines",
			src:  `from(bucket: "b") |> range(start: -3d) |> count()`,
			want: "from(bucket: \"b\")\n    |> range(start: -3d)\n    |> count()",
		},
		{
			name: "binary operators spaced",
			src:  `x=1+2*3`,
			want: `x = 1 + 2 * 3`,
		},
		{
			name: "function expression",
			src:  `f = (a,b=1) => a + b`,
			want: `f = (a, b=1) => a + b`,
		},
		{
			name: "object literal",
			src:  "o = {a:1,b:\"two\"}",
			want: `o = {a: 1, b: "two"}`,
		},
		{
			name: "option statement",
			src:  "option  now=()=>2021-03-22T00:00:00Z",
			want: "option now = () => 2021-03-22T00:00:00Z",
		},
		{
			name: "statements separated by blank line",
			src:  "a = 1\nb = 2",
			want: "a = 1\n\nb = 2",
		},
		{
			name: "package clause",
			src:  "package main\nx = 1",
			want: "package main\n\nx = 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := format(t, tt.src)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Format mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormat_Idempotent(t *testing.T) {
	t.Parallel()

	src := "import \"csv\"\n\nenv = \"x\"\n\ncsv.from(url: env)\n    |> limit(n: 10)"
	once := format(t, src)
	twice := format(t, once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("formatting is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestFormat_NoTrailingNewline(t *testing.T) {
	t.Parallel()

	got := format(t, "x = 1\n\n\n")
	if got != "x = 1" {
		t.Errorf("expected no trailing newline, got %q", got)
	}
}
