// Package registry holds the target types a generation run can build, and
// resolves each declared type into an ordered, classified TypeDescriptor.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mcncl/objgen/internal/errors"
	"github.com/mcncl/objgen/internal/models"
)

// FieldDecl is an unresolved field: a name and a type expression.
type FieldDecl struct {
	Name string
	Type string
	// Implements lists collection interfaces for container types the
	// registry does not know, e.g. ["Queue"].
	Implements []string
}

// TypeDecl is an unresolved target type in declaration order.
type TypeDecl struct {
	Name   string
	Fields []FieldDecl
}

// Registry maps type names to descriptors. Declarations are classified on
// first Resolve and cached; a Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	decls    map[string]TypeDecl
	resolved map[string]models.TypeDescriptor
	enums    map[string][]string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		decls:    make(map[string]TypeDecl),
		resolved: make(map[string]models.TypeDescriptor),
		enums:    make(map[string][]string),
	}
}

// Register adds an already classified descriptor.
func (r *Registry) Register(desc models.TypeDescriptor) error {
	if desc.Name == "" {
		return fmt.Errorf("descriptor has no type name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(desc.Name) {
		return fmt.Errorf("type %s is already registered", desc.Name)
	}
	r.resolved[desc.Name] = desc
	return nil
}

// MustRegister registers descriptors and panics on a duplicate.
func (r *Registry) MustRegister(descs ...models.TypeDescriptor) *Registry {
	for _, d := range descs {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

// Declare adds a type whose fields are classified lazily by Resolve.
func (r *Registry) Declare(decl TypeDecl) error {
	if decl.Name == "" {
		return fmt.Errorf("type declaration has no name")
	}
	seen := make(map[string]bool, len(decl.Fields))
	for _, f := range decl.Fields {
		if f.Name == "" {
			return fmt.Errorf("type %s has a field without a name", decl.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("type %s declares field %s twice", decl.Name, f.Name)
		}
		seen[f.Name] = true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(decl.Name) {
		return fmt.Errorf("type %s is already registered", decl.Name)
	}
	r.decls[decl.Name] = decl
	return nil
}

// RegisterEnum declares an enum type and its constants.
func (r *Registry) RegisterEnum(name string, constants ...string) error {
	if name == "" {
		return fmt.Errorf("enum has no name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(name) {
		return fmt.Errorf("type %s is already registered", name)
	}
	r.enums[name] = append([]string(nil), constants...)
	return nil
}

func (r *Registry) taken(name string) bool {
	_, d := r.decls[name]
	_, s := r.resolved[name]
	_, e := r.enums[name]
	return d || s || e
}

// Has reports whether name is a registered composite type.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, d := r.decls[name]
	_, s := r.resolved[name]
	return d || s
}

// IsEnum reports whether name is a registered enum.
func (r *Registry) IsEnum(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.enums[name]
	return ok
}

// EnumConstants returns the declared constants of an enum.
func (r *Registry) EnumConstants(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.enums[name]...)
}

// Names returns all composite type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.decls)+len(r.resolved))
	for n := range r.resolved {
		names = append(names, n)
	}
	for n := range r.decls {
		if _, ok := r.resolved[n]; !ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Resolve returns the descriptor for name, classifying a declaration the
// first time it is requested.
func (r *Registry) Resolve(name string) (models.TypeDescriptor, error) {
	r.mu.RLock()
	desc, ok := r.resolved[name]
	r.mu.RUnlock()
	if ok {
		return desc, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if desc, ok := r.resolved[name]; ok {
		return desc, nil
	}
	decl, ok := r.decls[name]
	if !ok {
		return models.TypeDescriptor{}, errors.NewResolutionError(fmt.Sprintf("type %s is not registered", name), errors.ErrUnknownType)
	}

	desc = models.TypeDescriptor{Name: decl.Name, Fields: make([]models.FieldDescriptor, 0, len(decl.Fields))}
	for _, f := range decl.Fields {
		capability, err := r.classify(f)
		if err != nil {
			return models.TypeDescriptor{}, errors.NewResolutionError(fmt.Sprintf("field %s.%s", decl.Name, f.Name), err)
		}
		desc.Fields = append(desc.Fields, models.FieldDescriptor{Name: f.Name, Capability: capability})
	}
	r.resolved[name] = desc
	return desc, nil
}

// Merge copies every type and enum of other into r.
func (r *Registry) Merge(other *Registry) error {
	other.mu.RLock()
	defer other.mu.RUnlock()
	for name, constants := range other.enums {
		if err := r.RegisterEnum(name, constants...); err != nil {
			return err
		}
	}
	for _, desc := range other.resolved {
		if err := r.Register(desc); err != nil {
			return err
		}
	}
	for name, decl := range other.decls {
		if _, done := other.resolved[name]; done {
			continue
		}
		if err := r.Declare(decl); err != nil {
			return err
		}
	}
	return nil
}

// classify must be called with r.mu held.
func (r *Registry) classify(f FieldDecl) (models.Capability, error) {
	expr, err := ParseTypeExpr(f.Type)
	if err != nil {
		return models.Capability{}, err
	}

	if expr.ArrayDims > 0 {
		elem := expr.Elem()
		if elem.ArrayDims > 0 {
			return models.Capability{}, fmt.Errorf("nested array type %s is not supported", expr)
		}
		ref, err := r.elementRef(elem)
		if err != nil {
			return models.Capability{}, err
		}
		return models.CollectionOf(models.Array, "", &ref), nil
	}

	if len(expr.Args) == 0 {
		if kind, ok := LeafKindOf(expr.Name); ok {
			return models.Leaf(kind), nil
		}
		if _, ok := r.enums[expr.Name]; ok {
			return models.Enum(expr.Name), nil
		}
	}

	ifaces, known := ContainerInterfaces(expr.Name)
	if len(f.Implements) > 0 {
		extra, unknown := ParseInterfaces(f.Implements)
		if len(unknown) > 0 {
			return models.Capability{}, fmt.Errorf("unknown collection interfaces %v", unknown)
		}
		ifaces |= extra
	}
	if ifaces != 0 || len(expr.Args) > 0 {
		kind, ok := Classify(ifaces)
		declared := ""
		if ok && known {
			declared = expr.Name
		} else if !ok {
			kind = models.List
		}
		var elem *models.TypeRef
		if len(expr.Args) > 0 {
			if len(expr.Args) > 1 {
				return models.Capability{}, fmt.Errorf("container %s takes one type argument", expr)
			}
			ref, err := r.elementRef(expr.Args[0])
			if err != nil {
				return models.Capability{}, err
			}
			elem = &ref
		}
		return models.CollectionOf(kind, declared, elem), nil
	}

	if IsOpaqueName(expr.Name) {
		return models.Capability{}, fmt.Errorf("untyped field type %s is not supported", expr.Name)
	}
	return models.Composite(expr.Name), nil
}

func (r *Registry) elementRef(expr TypeExpr) (models.TypeRef, error) {
	if expr.ArrayDims > 0 || len(expr.Args) > 0 {
		return models.TypeRef{}, fmt.Errorf("element type %s must be a plain type name", expr)
	}
	if kind, ok := LeafKindOf(expr.Name); ok {
		return models.TypeRef{Leaf: kind}, nil
	}
	if _, ok := r.enums[expr.Name]; ok {
		return models.TypeRef{Name: expr.Name, Leaf: models.LeafEnum}, nil
	}
	if IsOpaqueName(expr.Name) {
		return models.OpaqueElement, nil
	}
	return models.TypeRef{Name: expr.Name}, nil
}
