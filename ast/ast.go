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

// Package ast holds the parsed-query tree the frontend compiles. Unlike the teacher's own
// graphql/ast (which is produced by graphql/lexer and graphql/parser operating over raw source
// text), this tree carries no lexer/token coupling: spec.md §1 places GraphQL textual parsing
// out of scope for this module ("produces the parsed tree we consume"), so this package is the
// seam a real parser targets, not a parser itself. Position is still tracked, in the reduced
// form the frontend needs to report FrontendError locations.
package ast

// Position locates a node in the original query source, for error reporting. It is the
// reduced, parser-agnostic analogue of the teacher's token.SourceLocation.
type Position struct {
	Line   int
	Column int
}

// Node is implemented by every AST node.
type Node interface {
	Pos() Position
}

// Document is a single parsed query: one root field selection, optionally aliased, carrying
// whatever arguments and directives the root edge needs.
type Document struct {
	Root *Field
}

// Selection is implemented by Field and InlineFragment, the two things that may appear in a
// selection set.
type Selection interface {
	Node
	isSelection()
}

// Field is a selected property or edge, optionally aliased, with its arguments, directives and
// nested selection set.
type Field struct {
	Position Position

	// Name is the schema field (property or edge) name.
	Name string

	// Alias, if non-empty, is the requested response key; Name is used otherwise.
	Alias string

	Arguments  []Argument
	Directives []Directive

	// SelectionSet is nil for a leaf (property) field and non-nil (possibly empty, for an
	// elided `@fold` body) for an edge field.
	SelectionSet []Selection
}

var _ Selection = (*Field)(nil)

func (f *Field) Pos() Position { return f.Position }
func (*Field) isSelection()    {}

// ResponseKey returns the alias if present, otherwise the field name.
func (f *Field) ResponseKey() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// Directive looks up the first directive named name on the field, or nil.
func (f *Field) Directive(name string) *Directive {
	for i := range f.Directives {
		if f.Directives[i].Name == name {
			return &f.Directives[i]
		}
	}
	return nil
}

// InlineFragment is `... on TypeName { ... }`, used to narrow a vertex to a subtype.
type InlineFragment struct {
	Position     Position
	TypeCondition string
	SelectionSet []Selection
}

var _ Selection = (*InlineFragment)(nil)

func (f *InlineFragment) Pos() Position { return f.Position }
func (*InlineFragment) isSelection()    {}

// Argument is a single `name: value` pair, used both for field arguments (edge parameters) and
// directive arguments.
type Argument struct {
	Position Position
	Name     string
	Value    Value
}

// Directive is `@name(args...)`.
type Directive struct {
	Position  Position
	Name      string
	Arguments []Argument
}

func (d *Directive) Pos() Position { return d.Position }

// Arg looks up a directive argument by name, or returns (nil, false).
func (d *Directive) Arg(name string) (Value, bool) {
	for _, a := range d.Arguments {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// Value is implemented by every literal or reference that may appear as an argument value:
// IntValue, StringValue, BooleanValue, ListValue. There is no FloatValue or ObjectValue variant
// because nothing in §6's directive grammar needs one.
type Value interface {
	isValue()
}

// IntValue is an integer literal, such as a `@recurse(depth: 2)` depth or an edge parameter like
// `Number(min: 0)`.
type IntValue int64

func (IntValue) isValue() {}

// StringValue is a string literal. A `@filter` value entry such as `"$v"` or `"%tag"` is parsed
// into a StringValue; the frontend is responsible for recognizing the `$`/`%` sigil.
type StringValue string

func (StringValue) isValue() {}

// BooleanValue is a boolean literal.
type BooleanValue bool

func (BooleanValue) isValue() {}

// ListValue is `[v1, v2, ...]`, used for `@filter(value: [...])`.
type ListValue []Value

func (ListValue) isValue() {}
