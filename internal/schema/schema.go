// Package schema loads target type declarations from JSON Schema documents
// and YAML registry files.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mcncl/objgen/internal/registry"
)

// Leaf type names chosen by "format" on scalar schemas.
var integerFormats = map[string]string{
	"":      "int",
	"int32": "int",
	"int64": "long",
	"int16": "short",
	"byte":  "byte",
	"int8":  "byte",
}

var numberFormats = map[string]string{
	"":       "double",
	"double": "double",
	"float":  "float",
}

// Container names chosen by "format" on array schemas.
var arrayFormats = map[string]string{
	"list":           "List",
	"set":            "Set",
	"sorted-set":     "SortedSet",
	"linked-set":     "LinkedHashSet",
	"queue":          "Queue",
	"deque":          "Deque",
	"blocking-queue": "BlockingQueue",
	"collection":     "Collection",
}

// ParseFile reads and parses a JSON Schema from a file
func ParseFile(path string) (*jsonschema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	return ParseBytes(data)
}

// ParseBytes parses JSON Schema from bytes
func ParseBytes(data []byte) (*jsonschema.Schema, error) {
	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse JSON Schema: %w", err)
	}

	return &schema, nil
}

// ParseString parses JSON Schema from a string
func ParseString(s string) (*jsonschema.Schema, error) {
	return ParseBytes([]byte(s))
}

// Converter turns a JSON Schema into registry declarations. Each object
// definition becomes a type whose fields follow the property order of the
// document; string enums become enum types.
type Converter struct {
	schema  *jsonschema.Schema
	decls   []registry.TypeDecl
	enums   map[string][]string
	names   map[string]bool
	defined map[string]bool
}

// NewConverter creates a new schema converter
func NewConverter(schema *jsonschema.Schema) *Converter {
	return &Converter{
		schema:  schema,
		enums:   make(map[string][]string),
		names:   make(map[string]bool),
		defined: make(map[string]bool),
	}
}

// Convert declares every definition of the schema in a new registry. When
// the root schema is itself an object it is declared as rootName, falling
// back to the schema title.
func (c *Converter) Convert(rootName string) (*registry.Registry, error) {
	reg := registry.New()
	if err := c.Into(reg, rootName); err != nil {
		return nil, err
	}
	return reg, nil
}

// Into declares the schema's types in reg.
func (c *Converter) Into(reg *registry.Registry, rootName string) error {
	defNames := make([]string, 0, len(c.schema.Definitions))
	for name := range c.schema.Definitions {
		defNames = append(defNames, name)
		c.names[typeName(name)] = true
	}
	sort.Strings(defNames)

	for _, name := range defNames {
		if err := c.convertDefinition(typeName(name), c.schema.Definitions[name]); err != nil {
			return fmt.Errorf("failed to convert schema: %w", err)
		}
	}

	if isObject(c.schema) {
		if rootName == "" {
			rootName = c.schema.Title
		}
		if rootName == "" {
			rootName = "RootType"
		}
		rootName = typeName(rootName)
		if !c.defined[rootName] {
			c.names[rootName] = true
			if err := c.convertObject(rootName, c.schema); err != nil {
				return fmt.Errorf("failed to convert schema: %w", err)
			}
		}
	}

	enumNames := make([]string, 0, len(c.enums))
	for name := range c.enums {
		enumNames = append(enumNames, name)
	}
	sort.Strings(enumNames)
	for _, name := range enumNames {
		if err := reg.RegisterEnum(name, c.enums[name]...); err != nil {
			return err
		}
	}
	for _, decl := range c.decls {
		if err := reg.Declare(decl); err != nil {
			return err
		}
	}
	return nil
}

func (c *Converter) convertDefinition(name string, s *jsonschema.Schema) error {
	switch {
	case len(s.Enum) > 0:
		constants := make([]string, 0, len(s.Enum))
		for _, v := range s.Enum {
			str, ok := v.(string)
			if !ok {
				return fmt.Errorf("enum %s: constant %v is not a string", name, v)
			}
			constants = append(constants, str)
		}
		c.enums[name] = constants
		c.defined[name] = true
		return nil
	case isObject(s) || len(s.AllOf) > 0:
		return c.convertObject(name, s)
	default:
		return fmt.Errorf("definition %s: only object and enum definitions can be declared", name)
	}
}

func (c *Converter) convertObject(name string, s *jsonschema.Schema) error {
	if len(s.AllOf) > 0 {
		s = c.mergeAllOf(s)
	}
	c.defined[name] = true

	decl := registry.TypeDecl{Name: name}
	if s.Properties != nil {
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			expr, err := c.typeExpr(name, pair.Key, pair.Value)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", name, pair.Key, err)
			}
			decl.Fields = append(decl.Fields, registry.FieldDecl{Name: pair.Key, Type: expr})
		}
	}
	c.decls = append(c.decls, decl)
	return nil
}

// typeExpr returns the registry type expression for a property schema.
func (c *Converter) typeExpr(owner, prop string, s *jsonschema.Schema) (string, error) {
	if s.Ref != "" {
		return refName(s.Ref)
	}

	switch schemaType(s) {
	case "string":
		if s.Format == "char" {
			return "char", nil
		}
		return "String", nil
	case "integer":
		if t, ok := integerFormats[s.Format]; ok {
			return t, nil
		}
		return "", fmt.Errorf("unsupported integer format %q", s.Format)
	case "number":
		if t, ok := numberFormats[s.Format]; ok {
			return t, nil
		}
		return "", fmt.Errorf("unsupported number format %q", s.Format)
	case "boolean":
		return "boolean", nil
	case "array":
		return c.arrayExpr(owner, prop, s)
	case "object":
		return c.inlineObject(owner, prop, s)
	default:
		return "", fmt.Errorf("unsupported schema type %q", s.Type)
	}
}

func (c *Converter) arrayExpr(owner, prop string, s *jsonschema.Schema) (string, error) {
	elem := ""
	if s.Items != nil {
		var err error
		elem, err = c.typeExpr(owner, singularize(prop), s.Items)
		if err != nil {
			return "", fmt.Errorf("items: %w", err)
		}
		if strings.ContainsAny(elem, "<[") {
			return "", fmt.Errorf("nested collections are not supported")
		}
	}

	if s.Format == "array" {
		if elem == "" {
			return "", fmt.Errorf("array format needs items")
		}
		return elem + "[]", nil
	}

	container := "List"
	if s.UniqueItems {
		container = "Set"
	}
	if s.Format != "" {
		name, ok := arrayFormats[s.Format]
		if !ok {
			return "", fmt.Errorf("unsupported array format %q", s.Format)
		}
		container = name
	}

	if elem == "" {
		return container, nil
	}
	return container + "<" + elem + ">", nil
}

// inlineObject declares an anonymous object property as its own type, named
// after the property.
func (c *Converter) inlineObject(owner, prop string, s *jsonschema.Schema) (string, error) {
	name := typeName(prop)
	if c.names[name] {
		name = owner + name
	}
	if c.names[name] {
		return "", fmt.Errorf("inline object name %s is already taken", name)
	}
	c.names[name] = true
	if err := c.convertObject(name, s); err != nil {
		return "", err
	}
	return name, nil
}

// mergeAllOf merges the properties of every allOf member, in order.
func (c *Converter) mergeAllOf(s *jsonschema.Schema) *jsonschema.Schema {
	merged := &jsonschema.Schema{Type: "object", Properties: orderedmap.New[string, *jsonschema.Schema]()}
	parts := append([]*jsonschema.Schema{s}, s.AllOf...)
	for _, part := range parts {
		resolved := part
		if part.Ref != "" {
			if name, err := refName(part.Ref); err == nil {
				for defName, def := range c.schema.Definitions {
					if typeName(defName) == name {
						resolved = def
					}
				}
			}
		}
		if resolved.Properties == nil {
			continue
		}
		for pair := resolved.Properties.Oldest(); pair != nil; pair = pair.Next() {
			merged.Properties.Set(pair.Key, pair.Value)
		}
	}
	return merged
}

func refName(ref string) (string, error) {
	for _, prefix := range []string{"#/$defs/", "#/definitions/"} {
		if strings.HasPrefix(ref, prefix) {
			return typeName(strings.TrimPrefix(ref, prefix)), nil
		}
	}
	return "", fmt.Errorf("external $ref not supported: %s", ref)
}

func schemaType(s *jsonschema.Schema) string {
	if s.Type != "" {
		return s.Type
	}
	if s.Properties != nil && s.Properties.Len() > 0 {
		return "object"
	}
	if s.Items != nil {
		return "array"
	}
	return ""
}

func isObject(s *jsonschema.Schema) bool {
	return schemaType(s) == "object"
}

func typeName(s string) string {
	name := strcase.ToCamel(s)
	if name == "" {
		return "Type"
	}
	return name
}

// singularize trims a plural property name for naming inline item objects.
func singularize(s string) string {
	if strings.HasSuffix(s, "ies") && len(s) > 3 {
		return s[:len(s)-3] + "y"
	}
	if strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss") && len(s) > 1 {
		return s[:len(s)-1]
	}
	return s
}
