/**
 * Copyright (c) 2018, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Package ir defines the typed intermediate representation the frontend compiles a parsed query
// into, and the interpreter executes. Values here are immutable once a *IRQuery leaves the
// frontend, mirroring the teacher's own "definitions are assumed immutable after creation"
// contract for a compiled graphql.Schema.
package ir

import (
	"fmt"

	"github.com/trustfall-go/trustfall"
	"github.com/trustfall-go/trustfall/schema"
)

// Vid is a vertex identifier: a dense small integer assigned in query-graph traversal order.
// The root vertex of a query is always Vid(1).
type Vid int

// Eid is an edge identifier: dense per edge or fold, assigned alongside Vid's.
type Eid int

func (v Vid) String() string { return fmt.Sprintf("v%d", int(v)) }
func (e Eid) String() string { return fmt.Sprintf("e%d", int(e)) }

// ParameterValue is the value bound to a named edge parameter, such as `min` and `max` in
// `Number(min: 0, max: 3)`. It is either a literal, coerced at compile time, or a reference to a
// query variable, resolved at execution time against the supplied QueryArgs.
type ParameterValue struct {
	// VariableName is non-empty when this parameter is `$name`; Literal is meaningless then.
	VariableName string

	// Literal holds the parameter's value when VariableName is empty.
	Literal trustfall.Value
}

// IsVariable reports whether p references a query variable rather than carrying a literal.
func (p ParameterValue) IsVariable() bool { return p.VariableName != "" }

// Parameters maps a named edge parameter to its value.
type Parameters map[string]ParameterValue

// Resolve binds every variable-valued parameter against supplied query arguments, producing the
// plain name->value map an adapter resolver actually receives. A variable absent from args
// resolves to trustfall.Null; the frontend's VariableTypes plus schema.CoerceArguments is what
// guarantees every variable a query actually uses was supplied, so this is never the first place
// a missing-argument error surfaces.
func (p Parameters) Resolve(args map[string]trustfall.Value) map[string]trustfall.Value {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string]trustfall.Value, len(p))
	for name, pv := range p {
		if pv.IsVariable() {
			out[name] = args[pv.VariableName]
			continue
		}
		out[name] = pv.Literal
	}
	return out
}

// FieldReferenceKind discriminates the FieldReference variants from §3: LocalField,
// ContextField, FoldSpecificField, Variable, Tag.
type FieldReferenceKind uint8

// Enumeration of FieldReferenceKind.
const (
	FieldReferenceLocal FieldReferenceKind = iota
	FieldReferenceContext
	FieldReferenceFoldSpecific
	FieldReferenceVariable
	FieldReferenceTag
)

// FoldSpecificKind names an aggregate computed over a fold. Count is the only one spec.md
// defines.
type FoldSpecificKind uint8

// Enumeration of FoldSpecificKind.
const (
	FoldSpecificCount FoldSpecificKind = iota

	// FoldSpecificList identifies a FieldReference projecting a fold's per-row output (named by
	// PropertyName) as a list, one element per row the fold produced.
	FoldSpecificList
)

func (k FoldSpecificKind) String() string {
	switch k {
	case FoldSpecificCount:
		return "count"
	case FoldSpecificList:
		return "list"
	}
	return "unknown fold-specific kind"
}

// FieldReference names where a filter or output operand's value comes from. Exactly one of the
// fields below is meaningful, selected by Kind:
//
//	FieldReferenceLocal/Context: Vid + PropertyName
//	FieldReferenceFoldSpecific:  Eid + FoldSpecific
//	FieldReferenceVariable:      VariableName
//	FieldReferenceTag:           TagName (+ DefinedAt, filled in by the frontend's scope check)
type FieldReference struct {
	Kind FieldReferenceKind

	Vid          Vid
	PropertyName string

	Eid          Eid
	FoldSpecific FoldSpecificKind

	VariableName string

	TagName   string
	DefinedAt Vid
}

// LocalField builds a FieldReference naming a property on the vertex currently being filtered.
func LocalField(vid Vid, property string) FieldReference {
	return FieldReference{Kind: FieldReferenceLocal, Vid: vid, PropertyName: property}
}

// ContextField builds a FieldReference naming a property on a vertex bound earlier in the plan.
func ContextField(vid Vid, property string) FieldReference {
	return FieldReference{Kind: FieldReferenceContext, Vid: vid, PropertyName: property}
}

// FoldCount builds a FieldReference naming the Count aggregate of a fold.
func FoldCount(eid Eid) FieldReference {
	return FieldReference{Kind: FieldReferenceFoldSpecific, Eid: eid, FoldSpecific: FoldSpecificCount}
}

// FoldListField builds a FieldReference projecting a fold's per-row output named property as a
// list, one element per row the fold produced.
func FoldListField(eid Eid, property string) FieldReference {
	return FieldReference{
		Kind: FieldReferenceFoldSpecific, Eid: eid,
		FoldSpecific: FoldSpecificList, PropertyName: property,
	}
}

// VariableField builds a FieldReference naming a query argument.
func VariableField(name string) FieldReference {
	return FieldReference{Kind: FieldReferenceVariable, VariableName: name}
}

// TagField builds a FieldReference naming a tagged value, to be resolved by the frontend's scope
// check.
func TagField(name string) FieldReference {
	return FieldReference{Kind: FieldReferenceTag, TagName: name}
}

func (f FieldReference) String() string {
	switch f.Kind {
	case FieldReferenceLocal:
		return fmt.Sprintf("local(%s.%s)", f.Vid, f.PropertyName)
	case FieldReferenceContext:
		return fmt.Sprintf("context(%s.%s)", f.Vid, f.PropertyName)
	case FieldReferenceFoldSpecific:
		return fmt.Sprintf("fold(%s).%s", f.Eid, f.FoldSpecific)
	case FieldReferenceVariable:
		return "$" + f.VariableName
	case FieldReferenceTag:
		return "%" + f.TagName
	}
	return "<invalid field reference>"
}

// FilterOp is one of the closed set of filter operators from §3.
type FilterOp uint8

// Enumeration of FilterOp.
const (
	FilterEquals FilterOp = iota
	FilterNotEquals
	FilterLessThan
	FilterLessThanOrEqual
	FilterGreaterThan
	FilterGreaterThanOrEqual
	FilterContains
	FilterNotContains
	FilterOneOf
	FilterNotOneOf
	FilterHasPrefix
	FilterHasSuffix
	FilterHasSubstring
	FilterRegexMatches
	FilterIsNull
	FilterIsNotNull
)

// HasRightOperand reports whether op takes a right-hand operand. IsNull/IsNotNull do not.
func (op FilterOp) HasRightOperand() bool {
	return op != FilterIsNull && op != FilterIsNotNull
}

func (op FilterOp) String() string {
	switch op {
	case FilterEquals:
		return "="
	case FilterNotEquals:
		return "!="
	case FilterLessThan:
		return "<"
	case FilterLessThanOrEqual:
		return "<="
	case FilterGreaterThan:
		return ">"
	case FilterGreaterThanOrEqual:
		return ">="
	case FilterContains:
		return "contains"
	case FilterNotContains:
		return "not_contains"
	case FilterOneOf:
		return "one_of"
	case FilterNotOneOf:
		return "not_one_of"
	case FilterHasPrefix:
		return "has_prefix"
	case FilterHasSuffix:
		return "has_suffix"
	case FilterHasSubstring:
		return "has_substring"
	case FilterRegexMatches:
		return "regex"
	case FilterIsNull:
		return "is_null"
	case FilterIsNotNull:
		return "is_not_null"
	}
	return "<invalid filter op>"
}

// FilterOperation is a single `@filter` directive lowered to the IR: an operator plus its left
// and (usually) right operand.
type FilterOperation struct {
	Op    FilterOp
	Left  FieldReference
	Right *FieldReference
}

// IRVertex describes a single vertex position in a query component: its declared type, an
// optional subtype coercion and the ordered filters applied to it.
type IRVertex struct {
	TypeName string

	// CoerceTo is non-empty when the query applied `... on SubType` at this vertex.
	CoerceTo string

	// Filters are kept in declared textual order, per §4.1 step 5, to preserve observable
	// short-circuit behavior in trace output.
	Filters []FilterOperation

	// Tags maps a property name carrying a `@tag` directive to the tag name it is published
	// under, so the interpreter knows to publish that property's resolved value for later
	// FieldReferenceTag lookups as it resolves this vertex's properties.
	Tags map[string]string
}

// IREdge is a (non-folded) traversal step from one vertex to another.
type IREdge struct {
	FromVid    Vid
	ToVid      Vid
	Name       string
	Parameters Parameters

	Optional bool

	// Recursive is non-nil for a `@recurse(depth: N)` edge.
	Recursive *RecurseInfo
}

// RecurseInfo carries the depth bound of a `@recurse` edge. Depth is always >= 1 per §6.
type RecurseInfo struct {
	Depth int
}

// IRFold is a `@fold` scope: a nested component whose rows are aggregated into the enclosing
// row, either as per-row output lists or as a Count.
type IRFold struct {
	FromVid    Vid
	ToVid      Vid
	Name       string
	Parameters Parameters

	Component *IRQueryComponent

	// PostFilters apply to the Count aggregate (e.g. `@filter(op: ">=", value: ["$min"])` on a
	// `@transform(op: "count")` field). They are evaluated against FoldCount(eid).
	PostFilters []FilterOperation

	// FoldSpecificOutputs maps an output name to the aggregate it projects. Count is the only
	// aggregate spec.md defines.
	FoldSpecificOutputs map[string]FoldSpecificKind
}

// IRQueryComponent is a contiguous subtree of the query: a set of vertices reachable from Root
// without crossing a nested fold boundary, the (non-fold) edges and folds leaving those
// vertices, and the outputs this component projects.
type IRQueryComponent struct {
	Root Vid

	Vertices map[Vid]*IRVertex
	Edges    map[Eid]*IREdge
	Folds    map[Eid]*IRFold

	// Outputs maps an output column name to the field it projects.
	Outputs map[string]FieldReference
}

// IRQuery is the root of a compiled query: the edge used to obtain the starting vertex set, its
// parameters, and the root component.
type IRQuery struct {
	RootEdgeName   string
	RootParameters Parameters

	RootComponent *IRQueryComponent

	// VariableTypes records, for every `$name` referenced anywhere in the query, the type it was
	// used at. The frontend infers these from usage (trustfall has no separate variable
	// declaration syntax); the interpreter uses them to coerce/validate QueryArgs before
	// execution, the way the teacher's graphql.VariableDefinition's declared type drives
	// value.CoerceVariableValues.
	VariableTypes map[string]schema.TypeRef
}
