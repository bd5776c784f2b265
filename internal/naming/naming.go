// Package naming issues the variable names used in generated code.
package naming

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
)

// reservedWords cannot be used as identifiers in the emitted dialect.
var reservedWords = []string{
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
	"class", "const", "continue", "default", "do", "double", "else", "enum",
	"extends", "false", "final", "finally", "float", "for", "goto", "if",
	"implements", "import", "instanceof", "int", "interface", "long", "native",
	"new", "null", "package", "private", "protected", "public", "return",
	"short", "static", "strictfp", "super", "switch", "synchronized", "this",
	"throw", "throws", "transient", "true", "try", "var", "void", "volatile",
	"while", "record", "yield",
}

// Allocator hands out identifiers that are unique within one generation
// call. It is not safe for concurrent use; each call owns its own.
type Allocator struct {
	used  map[string]struct{}
	order []string
}

// NewAllocator returns an Allocator with the dialect's reserved words
// already marked as used.
func NewAllocator() *Allocator {
	a := &Allocator{used: make(map[string]struct{}, len(reservedWords))}
	for _, w := range reservedWords {
		a.used[w] = struct{}{}
	}
	return a
}

// Allocate returns base if it is unused, otherwise base1, base2, ... up to
// the first free candidate. The returned name is marked as used.
func (a *Allocator) Allocate(baseName string) string {
	base := sanitize(baseName)
	candidate := base
	for counter := 1; ; counter++ {
		if _, taken := a.used[candidate]; !taken {
			break
		}
		candidate = base + strconv.Itoa(counter)
	}
	a.used[candidate] = struct{}{}
	a.order = append(a.order, candidate)
	return candidate
}

// Allocated returns every identifier issued so far, in allocation order.
func (a *Allocator) Allocated() []string {
	return append([]string(nil), a.order...)
}

// ObjectBase is the identifier base for an instance of typeName.
func ObjectBase(typeName string) string {
	return strcase.ToLowerCamel(typeName)
}

// CollectionBase is the identifier base for the container built for field.
func CollectionBase(field string) string {
	return strcase.ToLowerCamel(field) + "Collection"
}

// ArrayBase is the identifier base for the array built for field.
func ArrayBase(field string) string {
	return strcase.ToLowerCamel(field) + "Array"
}

// SetterName is the mutator used to assign field on its owner.
func SetterName(field string) string {
	if field == "" {
		return "set"
	}
	r := []rune(field)
	r[0] = unicode.ToUpper(r[0])
	return "set" + string(r)
}

// sanitize keeps letters, digits, '_' and '$', and never starts with a digit.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return "value"
	}
	if unicode.IsDigit([]rune(s)[0]) {
		return "v" + s
	}
	return s
}
