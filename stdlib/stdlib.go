// Package stdlib holds the process-wide catalog of standard-library
// completables and function signatures. The catalog is built once from an
// embedded corpus and shared read-only across requests.
package stdlib

import (
	"fmt"
	"sort"
	"strings"

	"go.lsp.dev/protocol"
)

// CompleteContext carries per-request data a completable may fold into its
// item, such as bucket names resolved through the host callbacks.
type CompleteContext struct {
	Buckets []string
}

// Completable is anything that can decide whether it applies in a lexical
// context and produce a completion item. The set of variants is fixed, so a
// tagged representation beats open polymorphism here; user-defined
// completables in the analysis package implement the same contract.
type Completable interface {
	// Matches reports whether the completable applies for the typed text
	// and the document's imported package paths.
	Matches(text string, imports []string) bool

	// CompletionItem renders the concrete LSP item.
	CompletionItem(ctx CompleteContext) protocol.CompletionItem
}

// VarType tags the value kind of a variable completable.
type VarType int

// Value kinds mirrored from the language's monotypes.
const (
	VarTypeInt VarType = iota
	VarTypeString
	VarTypeArray
	VarTypeFloat
	VarTypeBool
	VarTypeBytes
	VarTypeDuration
	VarTypeRegexp
	VarTypeUint
	VarTypeTime
)

// Detail spells the type out the way completion details show it.
func (t VarType) Detail() string {
	switch t {
	case VarTypeInt:
		return "Integer"
	case VarTypeString:
		return "String"
	case VarTypeArray:
		return "Array"
	case VarTypeFloat:
		return "Float"
	case VarTypeBool:
		return "Boolean"
	case VarTypeBytes:
		return "Bytes"
	case VarTypeDuration:
		return "Duration"
	case VarTypeRegexp:
		return "Regular Expression"
	case VarTypeUint:
		return "Uint"
	case VarTypeTime:
		return "Time"
	}

	return "Unknown"
}

// BuiltinPackage tags completables available without import.
const BuiltinPackage = "builtin"

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}

	return false
}

// VarResult is a variable exposed by the prelude or an importable package.
type VarResult struct {
	Name        string
	Package     string
	PackageName string
	Type        VarType
}

// Matches implements Completable. Builtins apply anywhere outside a dotted
// context; package members apply only after "<short-name>." when the
// package is imported.
func (v VarResult) Matches(text string, imports []string) bool {
	if v.Package == BuiltinPackage && !strings.HasSuffix(text, ".") {
		return true
	}
	if !containsString(imports, v.Package) {
		return false
	}
	if strings.HasSuffix(text, ".") {
		return strings.TrimSuffix(text, ".") == v.PackageName
	}

	return false
}

// CompletionItem implements Completable.
func (v VarResult) CompletionItem(CompleteContext) protocol.CompletionItem {
	return protocol.CompletionItem{
		Label:            fmt.Sprintf("%s (%s)", v.Name, v.Package),
		Detail:           v.Type.Detail(),
		Documentation:    "from " + v.Package,
		FilterText:       v.Name,
		InsertText:       v.Name,
		InsertTextFormat: protocol.InsertTextFormatPlainText,
		Kind:             protocol.CompletionItemKindVariable,
		SortText:         fmt.Sprintf("%s %s", v.Name, v.Package),
	}
}

// PackageResult is an importable package itself.
type PackageResult struct {
	Name     string
	FullName string
}

// Matches implements Completable. The package must be imported and the
// typed prefix must lead its short name, case-insensitively.
func (p PackageResult) Matches(text string, imports []string) bool {
	if !containsString(imports, p.FullName) {
		return false
	}
	if strings.HasSuffix(text, ".") {
		return false
	}

	return strings.HasPrefix(strings.ToLower(p.Name), strings.ToLower(text))
}

// CompletionItem implements Completable.
func (p PackageResult) CompletionItem(CompleteContext) protocol.CompletionItem {
	return protocol.CompletionItem{
		Label:            p.Name,
		Detail:           "Package",
		Documentation:    p.FullName,
		FilterText:       p.Name,
		InsertText:       p.Name,
		InsertTextFormat: protocol.InsertTextFormatPlainText,
		Kind:             protocol.CompletionItemKindModule,
		SortText:         p.Name,
	}
}

// FunctionResult is a callable exposed by the prelude or a package.
// Argument name slices keep source order; display sorts copies.
type FunctionResult struct {
	Name         string
	Package      string
	PackageName  string
	RequiredArgs []string
	OptionalArgs []string
	Signature    string
}

// Matches implements Completable; same rules as VarResult.
func (f FunctionResult) Matches(text string, imports []string) bool {
	if f.Package == BuiltinPackage && !strings.HasSuffix(text, ".") {
		return true
	}
	if !containsString(imports, f.Package) {
		return false
	}
	if strings.HasSuffix(text, ".") {
		return strings.TrimSuffix(text, ".") == f.PackageName
	}

	return false
}

// CompletionItem implements Completable. The insert text is a snippet that
// parks the cursor in the first required argument slot, in a lone slot when
// only optional arguments exist, or right after the parens otherwise.
func (f FunctionResult) CompletionItem(ctx CompleteContext) protocol.CompletionItem {
	return protocol.CompletionItem{
		Label:            f.Name,
		Detail:           f.Signature,
		Documentation:    "from " + f.Package,
		FilterText:       f.Name,
		InsertText:       f.SnippetText(ctx),
		InsertTextFormat: protocol.InsertTextFormatSnippet,
		Kind:             protocol.CompletionItemKindFunction,
		SortText:         f.Name,
	}
}

// SnippetText builds the snippet-format insert text for the function.
func (f FunctionResult) SnippetText(ctx CompleteContext) string {
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteString("(")

	for i, arg := range f.RequiredArgs {
		b.WriteString(ArgSnippet(arg, i, ctx))
		if i != len(f.RequiredArgs)-1 {
			b.WriteString(", ")
		}
	}
	if len(f.RequiredArgs) == 0 && len(f.OptionalArgs) > 0 {
		b.WriteString("$1")
	}
	b.WriteString(")$0")

	return b.String()
}

// SortedArgs returns the required then optional argument names, each group
// alphabetical; the order parameter-name completion presents them in.
func (f FunctionResult) SortedArgs() []string {
	required := append([]string(nil), f.RequiredArgs...)
	optional := append([]string(nil), f.OptionalArgs...)
	sort.Strings(required)
	sort.Strings(optional)

	return append(required, optional...)
}

// ArgSnippet renders one argument slot of a function snippet. Bucket
// arguments become choice snippets when the host has buckets to offer.
func ArgSnippet(arg string, index int, ctx CompleteContext) string {
	if arg == "bucket" && len(ctx.Buckets) > 0 {
		return fmt.Sprintf("%s: ${%d|%s|}", arg, index+1, strings.Join(ctx.Buckets, ","))
	}

	return fmt.Sprintf("%s: $%d", arg, index+1)
}

// Parameter is one named, typed function parameter.
type Parameter struct {
	Name string
	Type string
}

// FunctionInfo describes a catalog function for signature help, keyed by
// name and package short-name.
type FunctionInfo struct {
	Name        string
	PackageName string
	Required    []Parameter
	Optional    []Parameter
	Pipe        *Parameter
	Return      string
}

// SignatureInformation renders the LSP signature for the function.
func (f FunctionInfo) SignatureInformation() protocol.SignatureInformation {
	var labels []string
	var params []protocol.ParameterInformation
	for _, p := range append(append([]Parameter(nil), f.Required...), f.Optional...) {
		label := fmt.Sprintf("%s: %s", p.Name, p.Type)
		labels = append(labels, label)
		params = append(params, protocol.ParameterInformation{Label: label})
	}

	label := fmt.Sprintf("%s(%s)", f.Name, strings.Join(labels, ", "))
	if f.Return != "" {
		label += " -> " + f.Return
	}

	return protocol.SignatureInformation{
		Label:      label,
		Parameters: params,
	}
}

// typeVars allocates capital letters to type variables in first-encounter
// order, scoped to a single printed signature.
type typeVars struct {
	mapping map[string]string
	next    rune
}

func newTypeVars() *typeVars {
	return &typeVars{mapping: map[string]string{}, next: 'A'}
}

// render rewrites every 'name type variable in t to its letter.
func (tv *typeVars) render(t string) string {
	var b strings.Builder
	for i := 0; i < len(t); i++ {
		if t[i] != '\'' {
			b.WriteByte(t[i])

			continue
		}
		j := i + 1
		for j < len(t) && (isAlphaNum(t[j]) || t[j] == '_') {
			j++
		}
		name := t[i:j]
		letter, ok := tv.mapping[name]
		if !ok {
			letter = string(tv.next)
			tv.mapping[name] = letter
			tv.next++
		}
		b.WriteString(letter)
		i = j - 1
	}

	return b.String()
}

func isAlphaNum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// RenderSignature prints a function signature in display form: the pipe
// parameter first, required parameters next, optional parameters last with
// a leading "?", both groups alphabetical. Type variables become letters
// allocated per signature.
func RenderSignature(required, optional []Parameter, pipe *Parameter, ret string) string {
	tv := newTypeVars()

	var parts []string
	if pipe != nil {
		key := "<-"
		if pipe.Name != "<-" {
			key = "<-" + pipe.Name
		}
		parts = append(parts, fmt.Sprintf("%s: %s", key, tv.render(pipe.Type)))
	}

	req := append([]Parameter(nil), required...)
	sort.Slice(req, func(i, j int) bool { return req[i].Name < req[j].Name })
	for _, p := range req {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Name, tv.render(p.Type)))
	}

	opt := append([]Parameter(nil), optional...)
	sort.Slice(opt, func(i, j int) bool { return opt[i].Name < opt[j].Name })
	for _, p := range opt {
		parts = append(parts, fmt.Sprintf("?%s: %s", p.Name, tv.render(p.Type)))
	}

	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), tv.render(ret))
}
