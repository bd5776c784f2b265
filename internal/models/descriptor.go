package models

import "fmt"

// LeafKind classifies scalar fields.
type LeafKind int

const (
	_ LeafKind = iota // zero value means "not a leaf"

	LeafString
	LeafInt32
	LeafInt64
	LeafFloat32
	LeafFloat64
	LeafBool
	LeafChar
	LeafByte
	LeafInt16
	LeafEnum
)

var leafNames = map[LeafKind]string{
	LeafString:  "string",
	LeafInt32:   "int32",
	LeafInt64:   "int64",
	LeafFloat32: "float32",
	LeafFloat64: "float64",
	LeafBool:    "bool",
	LeafChar:    "char",
	LeafByte:    "byte",
	LeafInt16:   "int16",
	LeafEnum:    "enum",
}

func (k LeafKind) String() string {
	if name, ok := leafNames[k]; ok {
		return name
	}
	return fmt.Sprintf("LeafKind(%d)", int(k))
}

// CollectionKind is the container classification of a collection-valued field.
type CollectionKind int

const (
	_ CollectionKind = iota

	List
	Set
	SortedSet
	LinkedSet
	Queue
	Deque
	BlockingQueue
	GenericCollection
	Array
)

var collectionNames = map[CollectionKind]string{
	List:              "List",
	Set:               "Set",
	SortedSet:         "SortedSet",
	LinkedSet:         "LinkedSet",
	Queue:             "Queue",
	Deque:             "Deque",
	BlockingQueue:     "BlockingQueue",
	GenericCollection: "Collection",
	Array:             "Array",
}

func (k CollectionKind) String() string {
	if name, ok := collectionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CollectionKind(%d)", int(k))
}

// CapabilityKind says which of the three field shapes a field has.
type CapabilityKind int

const (
	_ CapabilityKind = iota
	CapLeaf
	CapComposite
	CapCollection
)

// TypeRef names the type of a value: a leaf kind, an enum, a registered
// composite type, or the opaque element marker.
type TypeRef struct {
	Name   string   // composite or enum type name
	Leaf   LeafKind // zero for composites
	Opaque bool
}

// OpaqueElement is used when no element type could be inferred.
var OpaqueElement = TypeRef{Name: "Object", Opaque: true}

// IsLeaf reports whether the reference names a scalar kind.
func (r TypeRef) IsLeaf() bool { return r.Leaf != 0 }

func (r TypeRef) String() string {
	switch {
	case r.Opaque:
		return r.Name
	case r.Leaf == LeafEnum:
		return "enum " + r.Name
	case r.IsLeaf():
		return r.Leaf.String()
	default:
		return r.Name
	}
}

// Capability is the fixed classification of one field. Exactly one of the
// three shapes applies, selected by Kind.
type Capability struct {
	Kind CapabilityKind

	// CapLeaf
	Leaf     LeafKind
	EnumType string

	// CapComposite
	TypeName string

	// CapCollection
	Collection   CollectionKind
	DeclaredName string   // container name as written on the field, e.g. "LinkedList"
	Element      *TypeRef // static element type, nil when not known
}

// Leaf returns a leaf capability.
func Leaf(kind LeafKind) Capability {
	return Capability{Kind: CapLeaf, Leaf: kind}
}

// Enum returns an enum-valued leaf capability.
func Enum(typeName string) Capability {
	return Capability{Kind: CapLeaf, Leaf: LeafEnum, EnumType: typeName}
}

// Composite returns the capability of a nested object field.
func Composite(typeName string) Capability {
	return Capability{Kind: CapComposite, TypeName: typeName}
}

// CollectionOf returns the capability of a collection or array field.
// elem may be nil when the element type is not statically known.
func CollectionOf(kind CollectionKind, declaredName string, elem *TypeRef) Capability {
	return Capability{Kind: CapCollection, Collection: kind, DeclaredName: declaredName, Element: elem}
}

func (c Capability) String() string {
	switch c.Kind {
	case CapLeaf:
		if c.Leaf == LeafEnum {
			return fmt.Sprintf("Leaf(enum %s)", c.EnumType)
		}
		return fmt.Sprintf("Leaf(%s)", c.Leaf)
	case CapComposite:
		return fmt.Sprintf("Composite(%s)", c.TypeName)
	case CapCollection:
		elem := "?"
		if c.Element != nil {
			elem = c.Element.String()
		}
		if c.DeclaredName != "" {
			return fmt.Sprintf("CollectionOf(%s as %s, %s)", c.Collection, c.DeclaredName, elem)
		}
		return fmt.Sprintf("CollectionOf(%s, %s)", c.Collection, elem)
	default:
		return "Unknown"
	}
}

// FieldDescriptor describes one declared field of a target type.
type FieldDescriptor struct {
	Name       string
	Capability Capability
}

// TypeDescriptor is the ordered field list of one target type.
type TypeDescriptor struct {
	Name   string
	Fields []FieldDescriptor
}

// Field looks up a field by name.
func (d TypeDescriptor) Field(name string) (FieldDescriptor, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Keys returns the field names in declaration order.
func (d TypeDescriptor) Keys() []string {
	keys := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		keys[i] = f.Name
	}
	return keys
}

// LeafRef returns the TypeRef of a leaf capability.
func (c Capability) LeafRef() TypeRef {
	return TypeRef{Leaf: c.Leaf, Name: c.EnumType}
}
