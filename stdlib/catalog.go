package stdlib

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"go.lsp.dev/protocol"
	"gopkg.in/yaml.v3"
)

//go:embed stdlib.yaml
var corpus []byte

// Catalog is the immutable index of standard-library completables and
// function signatures.
type Catalog struct {
	completables []Completable
	functions    []FunctionInfo
}

var (
	catalogOnce sync.Once
	catalog     *Catalog
)

// Get returns the process-wide catalog, building it on first use. The
// corpus is compiled into the binary, so a malformed corpus is a build
// defect and panics like any other invalid program state.
func Get() *Catalog {
	catalogOnce.Do(func() {
		c, err := load(corpus)
		if err != nil {
			panic(fmt.Sprintf("stdlib: invalid embedded corpus: %v", err))
		}
		catalog = c
	})

	return catalog
}

// Completables returns every stdlib completable. The slice is shared;
// callers must not mutate it.
func (c *Catalog) Completables() []Completable {
	return c.completables
}

// Function looks a function up by name and package short-name, with
// BuiltinPackage selecting the prelude.
func (c *Catalog) Function(name, packageName string) (FunctionResult, bool) {
	for _, comp := range c.completables {
		f, ok := comp.(FunctionResult)
		if !ok || f.Name != name {
			continue
		}
		if packageName == BuiltinPackage && f.Package == BuiltinPackage {
			return f, true
		}
		if f.PackageName == packageName {
			return f, true
		}
	}

	return FunctionResult{}, false
}

// Signatures returns the signature help entries for (name, package
// short-name) pairs, BuiltinPackage selecting the prelude.
func (c *Catalog) Signatures(name, packageName string) []protocol.SignatureInformation {
	var out []protocol.SignatureInformation
	for _, f := range c.functions {
		if f.Name == name && f.PackageName == packageName {
			out = append(out, f.SignatureInformation())
		}
	}

	return out
}

// --- corpus decoding ---

type corpusDoc struct {
	Prelude  []entryDoc   `yaml:"prelude"`
	Packages []packageDoc `yaml:"packages"`
}

type packageDoc struct {
	Path    string     `yaml:"path"`
	Members []entryDoc `yaml:"members"`
}

type entryDoc struct {
	Name     string     `yaml:"name"`
	Kind     string     `yaml:"kind"`
	Type     string     `yaml:"type,omitempty"`
	Required []paramDoc `yaml:"required,omitempty"`
	Optional []paramDoc `yaml:"optional,omitempty"`
	Pipe     *paramDoc  `yaml:"pipe,omitempty"`
	Return   string     `yaml:"return,omitempty"`
}

type paramDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

var varTypes = map[string]VarType{
	"int":      VarTypeInt,
	"string":   VarTypeString,
	"array":    VarTypeArray,
	"float":    VarTypeFloat,
	"bool":     VarTypeBool,
	"bytes":    VarTypeBytes,
	"duration": VarTypeDuration,
	"regexp":   VarTypeRegexp,
	"uint":     VarTypeUint,
	"time":     VarTypeTime,
}

// PackageName returns the short name of an import path: its last segment.
func PackageName(path string) string {
	segments := strings.Split(path, "/")

	return segments[len(segments)-1]
}

func load(data []byte) (*Catalog, error) {
	var doc corpusDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	c := &Catalog{}

	for _, pkg := range doc.Packages {
		short := PackageName(pkg.Path)
		c.completables = append(c.completables, PackageResult{
			Name:     short,
			FullName: pkg.Path,
		})
		for _, member := range pkg.Members {
			if err := c.addEntry(member, pkg.Path, short); err != nil {
				return nil, fmt.Errorf("package %s: %w", pkg.Path, err)
			}
		}
	}

	for _, entry := range doc.Prelude {
		if err := c.addEntry(entry, BuiltinPackage, BuiltinPackage); err != nil {
			return nil, fmt.Errorf("prelude: %w", err)
		}
	}

	return c, nil
}

func (c *Catalog) addEntry(entry entryDoc, pkgPath, short string) error {
	switch entry.Kind {
	case "variable":
		t, ok := varTypes[entry.Type]
		if !ok {
			return fmt.Errorf("entry %s: unknown variable type %q", entry.Name, entry.Type)
		}
		v := VarResult{Name: entry.Name, Package: pkgPath, Type: t}
		if pkgPath != BuiltinPackage {
			v.PackageName = short
		}
		c.completables = append(c.completables, v)

	case "function":
		required := params(entry.Required)
		optional := params(entry.Optional)
		var pipe *Parameter
		if entry.Pipe != nil {
			pipe = &Parameter{Name: entry.Pipe.Name, Type: entry.Pipe.Type}
		}

		f := FunctionResult{
			Name:         entry.Name,
			Package:      pkgPath,
			RequiredArgs: names(required),
			OptionalArgs: names(optional),
			Signature:    RenderSignature(required, optional, pipe, entry.Return),
		}
		if pkgPath != BuiltinPackage {
			f.PackageName = short
		}
		c.completables = append(c.completables, f)

		info := FunctionInfo{
			Name:     entry.Name,
			Required: required,
			Optional: optional,
			Pipe:     pipe,
			Return:   entry.Return,
		}
		if pkgPath == BuiltinPackage {
			info.PackageName = BuiltinPackage
		} else {
			info.PackageName = short
		}
		c.functions = append(c.functions, info)

	default:
		return fmt.Errorf("entry %s: unknown kind %q", entry.Name, entry.Kind)
	}

	return nil
}

func params(docs []paramDoc) []Parameter {
	out := make([]Parameter, 0, len(docs))
	for _, d := range docs {
		out = append(out, Parameter{Name: d.Name, Type: d.Type})
	}

	return out
}

func names(ps []Parameter) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}

	return out
}
