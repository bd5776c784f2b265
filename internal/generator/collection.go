package generator

import (
	"fmt"

	"github.com/mcncl/objgen/internal/collections"
	"github.com/mcncl/objgen/internal/errors"
	"github.com/mcncl/objgen/internal/literal"
	"github.com/mcncl/objgen/internal/models"
	"github.com/mcncl/objgen/internal/naming"
)

// buildCollection emits a container allocation followed by one insertion per
// array element, in array order. Object elements are built first, each with a
// fresh visited set.
func (r *run) buildCollection(f models.FieldDescriptor, arr models.JSONArray, ownerField, path string) (pending, error) {
	inf := r.g.inferrer.Infer(f, arr)
	elem := inf.Type
	r.g.logger.DebugContext(r.ctx, "element type",
		"field", ownerField,
		"element", elem.String(),
		"source", inf.Source)

	var elemDesc *models.TypeDescriptor
	if !elem.IsLeaf() && !elem.Opaque {
		desc, err := r.resolve(elem.Name)
		if err != nil {
			marker, err := r.unresolved(elem.Name, ownerField, path, err)
			return pending{marker: marker}, err
		}
		elemDesc = &desc
	}

	kind := f.Capability.Collection
	strategy := collections.StrategyFor(kind, f.Capability.DeclaredName)

	var id string
	if kind == models.Array {
		component := literal.ComponentName(elem)
		id = r.names.Allocate(naming.ArrayBase(f.Name))
		r.emitf("%s[] %s = new %s[%d];", component, id, component, len(arr))
	} else {
		id = r.names.Allocate(naming.CollectionBase(f.Name))
		r.emitf("%s<%s> %s = new %s<>();", strategy.DeclaredType, literal.TypeArgName(elem), id, strategy.Implementation)
	}

	for i, el := range arr {
		elemPath := fmt.Sprintf("%s[%d]", path, i)
		elemTarget := fmt.Sprintf("%s[%d]", ownerField, i)

		var value string
		switch v := el.(type) {
		case models.JSONObject:
			if elemDesc == nil {
				if elem.Opaque {
					marker, err := r.unresolved(elem.Name, elemTarget, elemPath,
						errors.NewResolutionError("element type is unknown", errors.ErrUnresolvedElement))
					if err != nil {
						return pending{}, err
					}
					r.emitMarker(marker)
				} else {
					r.emitMarker(r.formatFailure(elemTarget, elemPath, fmt.Sprintf("expected %s, got an object", elem)))
				}
				continue
			}
			value = r.names.Allocate(naming.ObjectBase(elemDesc.Name))
			if err := r.build(*elemDesc, v, value, visitedSet{}, elemPath); err != nil {
				return pending{}, err
			}

		case nil:
			if !acceptsNull(strategy, kind, elem) {
				r.emitMarker(r.formatFailure(elemTarget, elemPath, fmt.Sprintf("null is not allowed in %s", containerName(strategy, kind, elem))))
				continue
			}
			value = literal.Null

		default:
			lit, err := r.elementLiteral(v, elem, elemDesc)
			if err != nil {
				r.emitMarker(r.formatFailure(elemTarget, elemPath, messageOf(err)))
				continue
			}
			value = lit
		}

		switch strategy.Insertion {
		case collections.Index:
			r.emitf("%s[%d] = %s;", id, i, value)
		case collections.Offer:
			r.emitf("%s.offer(%s);", id, value)
		default:
			r.emitf("%s.add(%s);", id, value)
		}
	}
	r.out.WriteByte('\n')

	return pending{ident: id}, nil
}

func (r *run) elementLiteral(v models.JSONValue, elem models.TypeRef, elemDesc *models.TypeDescriptor) (string, error) {
	switch {
	case elem.Opaque:
		return literal.FormatUntyped(v)
	case elemDesc != nil:
		return "", errors.NewFormatError(fmt.Sprintf("expected an object for %s, got %s", elemDesc.Name, kindOf(v)), nil)
	default:
		return literal.Format(v, elem)
	}
}

// acceptsNull reports whether a null element can be inserted: primitive array
// components and null-hostile implementations cannot hold one.
func acceptsNull(s collections.Strategy, kind models.CollectionKind, elem models.TypeRef) bool {
	if kind == models.Array {
		return literal.ComponentName(elem) == literal.TypeArgName(elem)
	}
	return s.AcceptsNull()
}

func containerName(s collections.Strategy, kind models.CollectionKind, elem models.TypeRef) string {
	if kind == models.Array {
		return literal.ComponentName(elem) + "[]"
	}
	return s.Implementation
}
