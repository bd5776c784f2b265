// Package generator builds construction statements for an object graph from
// a target type and a sample JSON document.
package generator

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/mcncl/objgen/internal/analyzer"
	"github.com/mcncl/objgen/internal/config"
	"github.com/mcncl/objgen/internal/errors"
	"github.com/mcncl/objgen/internal/literal"
	"github.com/mcncl/objgen/internal/logging"
	"github.com/mcncl/objgen/internal/models"
	"github.com/mcncl/objgen/internal/naming"
	"github.com/mcncl/objgen/internal/parser"
)

// TypeResolver is the part of the type registry the generator needs.
type TypeResolver interface {
	analyzer.TypeLookup
	Resolve(name string) (models.TypeDescriptor, error)
}

// Diagnostic records a field or element that was not emitted.
type Diagnostic struct {
	Kind    errors.ErrorType // resolution or format
	Path    string           // JSON path of the value, e.g. $.employees[0].age
	Target  string           // owner.field as it appears in the output
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s (%s): %s", d.Kind, d.Target, d.Path, d.Message)
}

// Result is the output of one generation run.
type Result struct {
	Code        string
	Root        string // identifier of the root object
	Identifiers []string
	Diagnostics []Diagnostic
}

// Generator turns (type, JSON) pairs into construction statements. A
// Generator holds no per-call state and is safe for concurrent use.
type Generator struct {
	types       TypeResolver
	inferrer    *analyzer.Inferrer
	strict      bool
	hideSkipped bool
	logger      *slog.Logger
}

// NewGenerator creates a Generator with the default configuration.
func NewGenerator(types TypeResolver) *Generator {
	return NewGeneratorWithConfig(types, config.NewConfig(), nil)
}

// NewGeneratorWithConfig creates a Generator using the inference and policy
// sections of cfg. A nil logger discards log output.
func NewGeneratorWithConfig(types TypeResolver, cfg *config.Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Generator{
		types:       types,
		inferrer:    analyzer.NewInferrerWithConfig(types, cfg),
		strict:      cfg.Strict(),
		hideSkipped: cfg.Policy.FormatErrors == config.PolicySkip,
		logger:      logger.With("component", "generator"),
	}
}

// GenerateCode parses jsonText and returns the statements that construct an
// instance of typeName holding its values.
func (g *Generator) GenerateCode(typeName, jsonText string) (string, error) {
	res, err := g.Generate(context.Background(), typeName, jsonText)
	if err != nil {
		return "", err
	}
	return res.Code, nil
}

// Generate is GenerateCode with diagnostics. ctx only carries logging data.
func (g *Generator) Generate(ctx context.Context, typeName, jsonText string) (*Result, error) {
	ir, err := parser.ParseString(jsonText)
	if err != nil {
		return nil, err
	}
	return g.Build(ctx, typeName, ir)
}

// Build generates statements for an already parsed document. The root value
// must be an object.
func (g *Generator) Build(ctx context.Context, typeName string, ir models.IntermediateRepresentation) (*Result, error) {
	if _, ok := logging.RunFrom(ctx); !ok {
		ctx = logging.WithRun(ctx, typeName)
	}

	obj, ok := ir.Object()
	if !ok {
		return nil, errors.NewParsingError(fmt.Sprintf("cannot build %s from a non-object document", typeName), errors.ErrNotObject)
	}

	r := &run{g: g, ctx: ctx, names: naming.NewAllocator()}

	desc, err := r.resolve(typeName)
	if err != nil {
		return nil, err
	}

	root := r.names.Allocate(naming.ObjectBase(desc.Name))
	if err := r.build(desc, obj, root, visitedSet{}, "$"); err != nil {
		return nil, err
	}

	g.logger.DebugContext(ctx, "generation complete",
		"identifiers", len(r.names.Allocated()),
		"diagnostics", len(r.diags))

	return &Result{
		Code:        strings.TrimSpace(r.out.String()),
		Root:        root,
		Identifiers: r.names.Allocated(),
		Diagnostics: r.diags,
	}, nil
}

// visitedSet holds identifiers whose allocation has been emitted in the
// current branch.
type visitedSet map[string]struct{}

// run is the state of one generation call. It is never shared.
type run struct {
	g     *Generator
	ctx   context.Context
	names *naming.Allocator
	out   bytes.Buffer
	diags []Diagnostic
}

// pending is what step two decided for a composite or collection field.
type pending struct {
	ident  string
	marker string
}

func (r *run) resolve(typeName string) (models.TypeDescriptor, error) {
	desc, err := r.g.types.Resolve(typeName)
	if err != nil {
		return models.TypeDescriptor{}, err
	}
	if r.g.logger.Enabled(r.ctx, slog.LevelDebug) {
		r.g.logger.DebugContext(r.ctx, "resolved type",
			"type", desc.Name,
			"fields", len(desc.Fields),
			"descriptor", spew.Sdump(desc))
	}
	return desc, nil
}

// build emits the statements for one object: nested composites and
// collections first, then the object's allocation and its field assignments
// in declaration order.
func (r *run) build(desc models.TypeDescriptor, obj models.JSONObject, target string, visited visitedSet, path string) error {
	nested := make(map[string]pending)

	for _, f := range desc.Fields {
		val, present := obj[f.Name]
		if !present || val == nil {
			continue
		}
		fieldPath := path + "." + f.Name
		ownerField := target + "." + f.Name

		switch f.Capability.Kind {
		case models.CapComposite:
			child, ok := val.(models.JSONObject)
			if !ok {
				nested[f.Name] = pending{marker: r.formatFailure(ownerField, fieldPath,
					fmt.Sprintf("expected an object for %s, got %s", f.Capability.TypeName, kindOf(val)))}
				continue
			}
			childDesc, err := r.resolve(f.Capability.TypeName)
			if err != nil {
				marker, err := r.unresolved(f.Capability.TypeName, ownerField, fieldPath, err)
				if err != nil {
					return err
				}
				nested[f.Name] = pending{marker: marker}
				continue
			}
			id := r.names.Allocate(naming.ObjectBase(childDesc.Name))
			if err := r.build(childDesc, child, id, visited, fieldPath); err != nil {
				return err
			}
			nested[f.Name] = pending{ident: id}

		case models.CapCollection:
			arr, ok := val.(models.JSONArray)
			if !ok {
				nested[f.Name] = pending{marker: r.formatFailure(ownerField, fieldPath,
					fmt.Sprintf("expected an array for %s, got %s", f.Capability, kindOf(val)))}
				continue
			}
			p, err := r.buildCollection(f, arr, ownerField, fieldPath)
			if err != nil {
				return err
			}
			nested[f.Name] = p
		}
	}

	if _, done := visited[target]; done {
		return nil
	}
	visited[target] = struct{}{}

	r.emitf("%s %s = new %s();", desc.Name, target, desc.Name)
	for _, f := range desc.Fields {
		setter := target + "." + naming.SetterName(f.Name)

		if p, ok := nested[f.Name]; ok {
			if p.ident != "" {
				r.emitf("%s(%s);", setter, p.ident)
			} else {
				r.emitMarker(p.marker)
			}
			continue
		}

		if f.Capability.Kind != models.CapLeaf {
			continue
		}
		val, present := obj[f.Name]
		if !present || val == nil {
			continue
		}
		lit, err := literal.Format(val, f.Capability.LeafRef())
		if err != nil {
			r.emitMarker(r.formatFailure(target+"."+f.Name, path+"."+f.Name, messageOf(err)))
			continue
		}
		r.emitf("%s(%s);", setter, lit)
	}
	r.out.WriteByte('\n')
	return nil
}

// unresolved applies the resolution policy. It returns the marker to emit,
// or an error when the policy aborts.
func (r *run) unresolved(typeName, target, path string, cause error) (string, error) {
	if r.g.strict {
		return "", errors.NewResolutionError(fmt.Sprintf("cannot resolve %s for %s", typeName, target), cause)
	}
	msg := messageOf(cause)
	r.diags = append(r.diags, Diagnostic{Kind: errors.ErrorTypeResolution, Path: path, Target: target, Message: msg})
	r.g.logger.WarnContext(r.ctx, "unresolved type", "type", typeName, "field", target, "path", path, "error", cause)
	return fmt.Sprintf("// unresolved type %s for field %s: %s", typeName, target, msg), nil
}

// formatFailure records a value that could not be formatted and returns its
// marker. The marker is empty when skipped values are not annotated.
func (r *run) formatFailure(target, path, msg string) string {
	r.diags = append(r.diags, Diagnostic{Kind: errors.ErrorTypeFormat, Path: path, Target: target, Message: msg})
	r.g.logger.WarnContext(r.ctx, "skipped value", "field", target, "path", path, "reason", msg)
	if r.g.hideSkipped {
		return ""
	}
	return fmt.Sprintf("// skipped %s: %s", target, msg)
}

func (r *run) emitf(format string, args ...any) {
	fmt.Fprintf(&r.out, format, args...)
	r.out.WriteByte('\n')
}

func (r *run) emitMarker(marker string) {
	if marker == "" {
		return
	}
	r.out.WriteString(strings.ReplaceAll(marker, "\n", " "))
	r.out.WriteByte('\n')
}

// messageOf returns the message of an application error without its type
// prefix.
func messageOf(err error) string {
	if appErr, ok := err.(*errors.AppError); ok {
		if appErr.Err != nil && !isSentinel(appErr.Err) {
			return appErr.Message + ": " + messageOf(appErr.Err)
		}
		return appErr.Message
	}
	return err.Error()
}

func isSentinel(err error) bool {
	switch err {
	case errors.ErrUnknownType, errors.ErrLeafMismatch, errors.ErrUnresolvedElement:
		return true
	default:
		return false
	}
}

func kindOf(v models.JSONValue) string {
	switch v.(type) {
	case models.JSONObject:
		return "an object"
	case models.JSONArray:
		return "an array"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case nil:
		return "null"
	default:
		return "a number"
	}
}
