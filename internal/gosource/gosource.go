// Package gosource declares target types from Go struct definitions.
package gosource

import (
	"context"
	"fmt"
	"go/constant"
	"go/types"
	"log/slog"
	"reflect"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/mcncl/objgen/internal/logging"
	"github.com/mcncl/objgen/internal/registry"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Summary reports what a load declared.
type Summary struct {
	Types   []string
	Enums   []string
	Skipped []string // "Type.field: reason"
}

// Loader loads Go packages and declares their exported struct types.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a Loader resolving patterns relative to dir. An empty
// dir means the current directory.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Loader{dir: dir, logger: logger.With("component", "gosource")}
}

// LoadInto loads the packages matching patterns and declares every exported
// struct type, and every named basic type with constants as an enum.
func (l *Loader) LoadInto(ctx context.Context, reg *registry.Registry, patterns ...string) (Summary, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     l.dir,
		Mode:    LoadMode,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}
	if len(errs) > 0 {
		return Summary{}, fmt.Errorf("package errors: %v", errs)
	}

	b := &builder{reg: reg, logger: l.logger, enums: make(map[*types.Named][]string)}
	for _, pkg := range pkgs {
		b.scanEnums(pkg)
	}
	for _, pkg := range pkgs {
		if err := b.declareStructs(pkg); err != nil {
			return b.summary, fmt.Errorf("failed to process package %s: %w", pkg.PkgPath, err)
		}
	}
	return b.summary, nil
}

type builder struct {
	reg     *registry.Registry
	logger  *slog.Logger
	enums   map[*types.Named][]string
	summary Summary
}

// scanEnums finds named basic types that have typed constants in the same
// package, and registers them as enums.
func (b *builder) scanEnums(pkg *packages.Package) {
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		cnst, ok := scope.Lookup(name).(*types.Const)
		if !ok {
			continue
		}
		named, ok := cnst.Type().(*types.Named)
		if !ok || !named.Obj().Exported() || named.Obj().Pkg() != pkg.Types {
			continue
		}
		if _, ok := named.Underlying().(*types.Basic); !ok {
			continue
		}
		value := name
		if cnst.Val().Kind() == constant.String {
			value = constant.StringVal(cnst.Val())
		}
		b.enums[named] = append(b.enums[named], value)
	}

	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok {
			continue
		}
		constants, ok := b.enums[named]
		if !ok {
			continue
		}
		if err := b.reg.RegisterEnum(name, constants...); err != nil {
			b.logger.Warn("enum not registered", "type", name, "error", err)
			continue
		}
		b.summary.Enums = append(b.summary.Enums, name)
	}
}

func (b *builder) declareStructs(pkg *packages.Package) error {
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() || tn.IsAlias() {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}
		st, ok := named.Underlying().(*types.Struct)
		if !ok {
			continue
		}

		decl := registry.TypeDecl{Name: name}
		for i := 0; i < st.NumFields(); i++ {
			field := st.Field(i)
			if !field.Exported() {
				continue
			}
			tag := reflect.StructTag(st.Tag(i))
			fieldName, skip := jsonName(field.Name(), tag)
			container := tag.Get("objgen")
			if skip || container == "-" {
				continue
			}

			expr, err := b.typeExpr(field.Type(), container)
			if err != nil {
				reason := fmt.Sprintf("%s.%s: %v", name, fieldName, err)
				b.logger.Warn("field skipped", "type", name, "field", fieldName, "error", err)
				b.summary.Skipped = append(b.summary.Skipped, reason)
				continue
			}
			decl.Fields = append(decl.Fields, registry.FieldDecl{Name: fieldName, Type: expr})
		}

		if err := b.reg.Declare(decl); err != nil {
			return err
		}
		b.logger.Debug("declared type", "type", name, "fields", len(decl.Fields))
		b.summary.Types = append(b.summary.Types, name)
	}
	return nil
}

// jsonName returns the JSON key of a struct field and whether the field is
// excluded from JSON entirely.
func jsonName(fieldName string, tag reflect.StructTag) (string, bool) {
	value, ok := tag.Lookup("json")
	if !ok {
		return fieldName, false
	}
	name, _, _ := strings.Cut(value, ",")
	if name == "-" && value == "-" {
		return "", true
	}
	if name == "" {
		return fieldName, false
	}
	return name, false
}

// typeExpr renders a Go field type as a registry type expression. A
// non-empty container replaces the default List of a slice field.
func (b *builder) typeExpr(t types.Type, container string) (string, error) {
	t = types.Unalias(t)
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}

	switch tt := t.(type) {
	case *types.Slice:
		elem, err := b.elementExpr(tt.Elem())
		if err != nil {
			return "", err
		}
		if container == "" {
			container = "List"
		}
		return container + "<" + elem + ">", nil
	case *types.Array:
		elem, err := b.elementExpr(tt.Elem())
		if err != nil {
			return "", err
		}
		return elem + "[]", nil
	case *types.Map:
		if !isSetValue(tt.Elem()) {
			return "", fmt.Errorf("map type %s is not supported", tt)
		}
		elem, err := b.elementExpr(tt.Key())
		if err != nil {
			return "", err
		}
		if container == "" {
			container = "Set"
		}
		return container + "<" + elem + ">", nil
	}

	if container != "" {
		return "", fmt.Errorf("objgen container %q on non-collection type %s", container, t)
	}
	return b.scalarExpr(t)
}

func (b *builder) elementExpr(t types.Type) (string, error) {
	t = types.Unalias(t)
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	switch t.Underlying().(type) {
	case *types.Slice, *types.Array, *types.Map:
		if _, named := t.(*types.Named); !named {
			return "", fmt.Errorf("nested collection type %s is not supported", t)
		}
	case *types.Interface:
		return "Object", nil
	}
	return b.scalarExpr(t)
}

func (b *builder) scalarExpr(t types.Type) (string, error) {
	switch tt := t.(type) {
	case *types.Named:
		if _, ok := b.enums[tt]; ok {
			return tt.Obj().Name(), nil
		}
		switch u := tt.Underlying().(type) {
		case *types.Struct:
			return tt.Obj().Name(), nil
		case *types.Basic:
			return basicExpr(u)
		}
		return "", fmt.Errorf("type %s is not supported", t)
	case *types.Alias:
		return b.scalarExpr(types.Unalias(tt))
	case *types.Basic:
		return basicExpr(tt)
	default:
		return "", fmt.Errorf("type %s is not supported", t)
	}
}

func basicExpr(t *types.Basic) (string, error) {
	// rune and byte are distinct universe objects sharing the int32 and
	// uint8 kinds; the name tells them apart.
	switch t.Name() {
	case "rune":
		return "char", nil
	case "byte":
		return "byte", nil
	}

	switch t.Kind() {
	case types.String:
		return "String", nil
	case types.Bool:
		return "boolean", nil
	case types.Int, types.Int64, types.Uint, types.Uint32, types.Uint64:
		return "long", nil
	case types.Int32, types.Uint16:
		return "int", nil
	case types.Int16:
		return "short", nil
	case types.Int8, types.Uint8:
		return "byte", nil
	case types.Float32:
		return "float", nil
	case types.Float64:
		return "double", nil
	default:
		return "", fmt.Errorf("basic type %s is not supported", t)
	}
}

func isSetValue(t types.Type) bool {
	switch u := t.Underlying().(type) {
	case *types.Struct:
		return u.NumFields() == 0
	case *types.Basic:
		return u.Kind() == types.Bool
	}
	return false
}
