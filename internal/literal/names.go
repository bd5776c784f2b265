package literal

import "github.com/mcncl/objgen/internal/models"

var boxedNames = map[models.LeafKind]string{
	models.LeafString:  "String",
	models.LeafInt32:   "Integer",
	models.LeafInt64:   "Long",
	models.LeafFloat32: "Float",
	models.LeafFloat64: "Double",
	models.LeafBool:    "Boolean",
	models.LeafChar:    "Character",
	models.LeafByte:    "Byte",
	models.LeafInt16:   "Short",
}

var primitiveNames = map[models.LeafKind]string{
	models.LeafString:  "String",
	models.LeafInt32:   "int",
	models.LeafInt64:   "long",
	models.LeafFloat32: "float",
	models.LeafFloat64: "double",
	models.LeafBool:    "boolean",
	models.LeafChar:    "char",
	models.LeafByte:    "byte",
	models.LeafInt16:   "short",
}

// TypeArgName is the name of ref when used as a generic type argument.
func TypeArgName(ref models.TypeRef) string {
	return nameOf(ref, boxedNames)
}

// ComponentName is the name of ref when used as an array component type.
func ComponentName(ref models.TypeRef) string {
	return nameOf(ref, primitiveNames)
}

func nameOf(ref models.TypeRef, table map[models.LeafKind]string) string {
	if ref.Opaque {
		return models.OpaqueElement.Name
	}
	if ref.Leaf != 0 && ref.Leaf != models.LeafEnum {
		return table[ref.Leaf]
	}
	return ref.Name
}
