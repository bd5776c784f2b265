package registry

import "github.com/mcncl/objgen/internal/models"

var leafNames = map[string]models.LeafKind{
	"String": models.LeafString,
	"string": models.LeafString,

	"int":     models.LeafInt32,
	"Integer": models.LeafInt32,
	"int32":   models.LeafInt32,

	"long":  models.LeafInt64,
	"Long":  models.LeafInt64,
	"int64": models.LeafInt64,

	"float":   models.LeafFloat32,
	"Float":   models.LeafFloat32,
	"float32": models.LeafFloat32,

	"double":  models.LeafFloat64,
	"Double":  models.LeafFloat64,
	"float64": models.LeafFloat64,

	"boolean": models.LeafBool,
	"Boolean": models.LeafBool,
	"bool":    models.LeafBool,

	"char":      models.LeafChar,
	"Character": models.LeafChar,
	"rune":      models.LeafChar,

	"byte": models.LeafByte,
	"Byte": models.LeafByte,

	"short": models.LeafInt16,
	"Short": models.LeafInt16,
	"int16": models.LeafInt16,
}

// LeafKindOf maps a scalar type name to its leaf kind.
func LeafKindOf(name string) (models.LeafKind, bool) {
	k, ok := leafNames[name]
	return k, ok
}

// IsOpaqueName reports whether name denotes the untyped element marker.
func IsOpaqueName(name string) bool {
	return name == "Object" || name == "any" || name == "interface{}"
}
