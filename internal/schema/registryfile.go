package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/objgen/internal/registry"
)

// RegistryFile is the YAML form of a type registry.
type RegistryFile struct {
	Enums []EnumSpec `yaml:"enums,omitempty" json:"enums,omitempty" jsonschema:"description=Enum types and their constants"`
	Types []TypeSpec `yaml:"types" json:"types" jsonschema:"required,description=Target types in declaration order"`
}

// EnumSpec declares an enum type.
type EnumSpec struct {
	Name   string   `yaml:"name" json:"name" jsonschema:"required"`
	Values []string `yaml:"values" json:"values" jsonschema:"required,minItems=1"`
}

// TypeSpec declares a target type and its ordered fields.
type TypeSpec struct {
	Name   string      `yaml:"name" json:"name" jsonschema:"required"`
	Fields []FieldSpec `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// FieldSpec declares one field. Type is a type expression such as
// "String", "List<Employee>" or "int[]".
type FieldSpec struct {
	Name       string   `yaml:"name" json:"name" jsonschema:"required"`
	Type       string   `yaml:"type" json:"type" jsonschema:"required,example=List<Employee>"`
	Implements []string `yaml:"implements,omitempty" json:"implements,omitempty" jsonschema:"description=Collection interfaces of a container type the generator does not know"`
}

// LoadRegistryFile reads a YAML registry file.
func LoadRegistryFile(path string) (*RegistryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}
	return ParseRegistryFile(data)
}

// ParseRegistryFile parses YAML registry content.
func ParseRegistryFile(data []byte) (*RegistryFile, error) {
	var f RegistryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse registry file: %w", err)
	}
	return &f, nil
}

// Apply declares the file's enums and types in reg.
func (f *RegistryFile) Apply(reg *registry.Registry) error {
	for _, e := range f.Enums {
		if err := reg.RegisterEnum(e.Name, e.Values...); err != nil {
			return err
		}
	}
	for _, t := range f.Types {
		decl := registry.TypeDecl{Name: t.Name}
		for _, field := range t.Fields {
			decl.Fields = append(decl.Fields, registry.FieldDecl{
				Name:       field.Name,
				Type:       field.Type,
				Implements: field.Implements,
			})
		}
		if err := reg.Declare(decl); err != nil {
			return err
		}
	}
	return nil
}

// RegistryFileSchema describes the registry file format as JSON Schema.
func RegistryFileSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{ExpandedStruct: true}
	s := r.Reflect(&RegistryFile{})
	s.Title = "objgen type registry"
	return s
}

// LoadInto declares the types of a schema or registry file in reg. JSON
// files are read as JSON Schema, YAML files as registry files.
func LoadInto(reg *registry.Registry, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		s, err := ParseFile(path)
		if err != nil {
			return err
		}
		return NewConverter(s).Into(reg, "")
	case ".yml", ".yaml":
		f, err := LoadRegistryFile(path)
		if err != nil {
			return err
		}
		return f.Apply(reg)
	default:
		return fmt.Errorf("unsupported schema file %s: expected .json, .yml or .yaml", path)
	}
}
