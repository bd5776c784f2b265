// Package analyzer infers the element type of collection fields whose
// declaration does not name one.
package analyzer

import (
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/objgen/internal/config"
	"github.com/mcncl/objgen/internal/models"
	"github.com/mcncl/objgen/internal/registry"
)

// Sources of an inferred element type
const (
	SourceStatic    = "static"
	SourceAlias     = "alias"
	SourceFieldName = "field-name"
	SourceShape     = "shape"
	SourceFallback  = "fallback"
)

// TypeLookup is the part of the type registry the inferrer needs.
type TypeLookup interface {
	Has(name string) bool
	IsEnum(name string) bool
}

// ElementResolver is one step of the inference chain. It reports false when
// it has no opinion about the field.
type ElementResolver interface {
	Name() string
	Resolve(field models.FieldDescriptor, sample models.JSONArray) (models.TypeRef, bool)
}

// Inference is the result of inferring one field's element type.
type Inference struct {
	Type   models.TypeRef
	Source string
}

// Inferrer runs an ordered chain of resolvers; the first match wins and the
// opaque element is used when none matches.
type Inferrer struct {
	chain []ElementResolver
}

// NewInferrer creates the default chain: static type, alias table, field
// name, shape signatures.
func NewInferrer(lookup TypeLookup) *Inferrer {
	return NewInferrerWithConfig(lookup, config.NewConfig())
}

// NewInferrerWithConfig creates the default chain using the inference
// section of cfg.
func NewInferrerWithConfig(lookup TypeLookup, cfg *config.Config) *Inferrer {
	return NewInferrerWithResolvers(
		StaticResolver{},
		AliasResolver{Aliases: cfg, Lookup: lookup},
		FieldNameResolver{Lookup: lookup, Singularize: cfg.Inference.Singularize},
		NewShapeResolver(cfg.Inference.Shapes),
	)
}

// NewInferrerWithResolvers creates an inferrer with a custom chain.
func NewInferrerWithResolvers(resolvers ...ElementResolver) *Inferrer {
	return &Inferrer{chain: resolvers}
}

// Infer returns the element type of a collection field.
func (i *Inferrer) Infer(field models.FieldDescriptor, sample models.JSONArray) Inference {
	for _, r := range i.chain {
		if ref, ok := r.Resolve(field, sample); ok {
			return Inference{Type: ref, Source: r.Name()}
		}
	}
	return Inference{Type: models.OpaqueElement, Source: SourceFallback}
}

// StaticResolver returns the element type recorded on the descriptor.
type StaticResolver struct{}

func (StaticResolver) Name() string { return SourceStatic }

func (StaticResolver) Resolve(field models.FieldDescriptor, _ models.JSONArray) (models.TypeRef, bool) {
	if field.Capability.Element == nil {
		return models.TypeRef{}, false
	}
	return *field.Capability.Element, true
}

// AliasTable maps field names to element type names.
type AliasTable interface {
	FindAlias(fieldName string) (string, bool)
}

// AliasResolver maps field names to type names from a fixed table. An alias
// is trusted even when its target is not registered.
type AliasResolver struct {
	Aliases AliasTable
	Lookup  TypeLookup
}

func (AliasResolver) Name() string { return SourceAlias }

func (a AliasResolver) Resolve(field models.FieldDescriptor, _ models.JSONArray) (models.TypeRef, bool) {
	if a.Aliases == nil {
		return models.TypeRef{}, false
	}
	typeName, ok := a.Aliases.FindAlias(field.Name)
	if !ok {
		return models.TypeRef{}, false
	}
	return refFor(typeName, a.Lookup), true
}

// FieldNameResolver singularizes and capitalizes the field name and uses it
// when a type or enum of that name is registered.
type FieldNameResolver struct {
	Lookup      TypeLookup
	Singularize bool
}

func (FieldNameResolver) Name() string { return SourceFieldName }

func (f FieldNameResolver) Resolve(field models.FieldDescriptor, _ models.JSONArray) (models.TypeRef, bool) {
	if f.Lookup == nil {
		return models.TypeRef{}, false
	}
	for _, candidate := range f.candidates(field.Name) {
		typeName := strcase.ToCamel(candidate)
		if typeName != "" && (f.Lookup.Has(typeName) || f.Lookup.IsEnum(typeName)) {
			return refFor(typeName, f.Lookup), true
		}
	}
	return models.TypeRef{}, false
}

// candidates returns the singular forms of name. A name that is already
// singular has none, so "staff" never looks up Staff.
func (f FieldNameResolver) candidates(name string) []string {
	var out []string
	if f.Singularize {
		if singular := singularize(name); singular != name {
			out = append(out, singular)
		}
	}
	if stripped := stripS(name); stripped != name && (len(out) == 0 || stripped != out[0]) {
		out = append(out, stripped)
	}
	return out
}

// ShapeResolver matches the first object element against registered shape
// signatures. An element matches a signature when it has every key of the
// signature; extra keys are ignored and the first matching signature wins.
type ShapeResolver struct {
	shapes []shape
}

type shape struct {
	keys     []string
	typeName string
}

// NewShapeResolver creates a resolver for the given signatures, checked in order.
func NewShapeResolver(signatures []config.ShapeSignature) ShapeResolver {
	r := ShapeResolver{}
	for _, sig := range signatures {
		r.shapes = append(r.shapes, shape{keys: sig.Keys, typeName: sig.Type})
	}
	return r
}

func (ShapeResolver) Name() string { return SourceShape }

func (s ShapeResolver) Resolve(_ models.FieldDescriptor, sample models.JSONArray) (models.TypeRef, bool) {
	obj, ok := models.FirstObject(sample)
	if !ok {
		return models.TypeRef{}, false
	}
	for _, sh := range s.shapes {
		if sh.matches(obj) {
			return models.TypeRef{Name: sh.typeName}, true
		}
	}
	return models.TypeRef{}, false
}

func (sh shape) matches(obj models.JSONObject) bool {
	if len(sh.keys) == 0 {
		return false
	}
	for _, k := range sh.keys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}
	return true
}

func refFor(typeName string, lookup TypeLookup) models.TypeRef {
	if kind, ok := registry.LeafKindOf(typeName); ok {
		return models.TypeRef{Leaf: kind}
	}
	if registry.IsOpaqueName(typeName) {
		return models.OpaqueElement
	}
	if lookup != nil && lookup.IsEnum(typeName) {
		return models.TypeRef{Name: typeName, Leaf: models.LeafEnum}
	}
	return models.TypeRef{Name: typeName}
}

func stripS(name string) string {
	if len(name) > 1 && (name[len(name)-1] == 's' || name[len(name)-1] == 'S') {
		return name[:len(name)-1]
	}
	return name
}

var knownSingulars = map[string]string{
	"series":    "series",
	"status":    "status",
	"analysis":  "analysis",
	"species":   "species",
	"news":      "news",
	"goods":     "goods",
	"children":  "child",
	"people":    "person",
	"men":       "man",
	"women":     "woman",
	"teeth":     "tooth",
	"feet":      "foot",
	"mice":      "mouse",
	"geese":     "goose",
	"data":      "data",
	"media":     "media",
	"addresses": "address",
}

// singularize attempts to convert a plural name to a singular one.
func singularize(plural string) string {
	if singular, ok := knownSingulars[strings.ToLower(plural)]; ok {
		// Preserve original casing if the first letter was capitalized
		if len(plural) > 0 && strings.ToUpper(string(plural[0])) == string(plural[0]) {
			return strings.ToUpper(string(singular[0])) + singular[1:]
		}
		return singular
	}

	lowerPlural := strings.ToLower(plural)

	if strings.HasSuffix(lowerPlural, "ies") && len(lowerPlural) > 3 {
		return plural[:len(plural)-3] + "y"
	}

	// Avoid removing 's' from words like 'bus', 'gas', 'class', 'address'
	if strings.HasSuffix(lowerPlural, "ss") ||
		strings.HasSuffix(lowerPlural, "us") ||
		strings.HasSuffix(lowerPlural, "is") {
		return plural
	}

	if strings.HasSuffix(lowerPlural, "s") && len(lowerPlural) > 1 {
		return plural[:len(plural)-1]
	}

	return plural
}
