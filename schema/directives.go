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

package schema

import "github.com/trustfall-go/trustfall"

const (
	stringKind = trustfall.KindString
	intKind    = trustfall.KindInt64
)

// DirectiveArg declares one argument a directive accepts, analogous to the teacher's
// ArgumentConfig entries in a DirectiveConfig (graphql/directive.go), but fixed at compile time
// here since §6 closes the set of recognized directives instead of letting a schema declare its
// own.
type DirectiveArg struct {
	Name     string
	Type     TypeRef
	Required bool
}

// DirectiveDecl declares a directive's name and argument shape.
type DirectiveDecl struct {
	Name string
	Args []DirectiveArg
}

// Arg looks up a declared argument by name.
func (d DirectiveDecl) Arg(name string) (DirectiveArg, bool) {
	for _, a := range d.Args {
		if a.Name == name {
			return a, true
		}
	}
	return DirectiveArg{}, false
}

// The seven directives spec.md §6 recognizes. Unlike the teacher's schema, where directives are
// declared per-Schema via SchemaConfig.Directives, trustfall's directive surface is fixed by the
// language itself, so these are package-level variables rather than something New's Config
// builds.
var (
	DirectiveFilter = DirectiveDecl{
		Name: "filter",
		Args: []DirectiveArg{
			{Name: "op", Type: NonNullScalar(stringKind), Required: true},
			{Name: "value", Type: ListOf(NonNullScalar(stringKind)), Required: false},
		},
	}

	DirectiveOutput = DirectiveDecl{
		Name: "output",
		Args: []DirectiveArg{
			{Name: "name", Type: Scalar(stringKind), Required: false},
		},
	}

	DirectiveTag = DirectiveDecl{
		Name: "tag",
		Args: []DirectiveArg{
			{Name: "name", Type: Scalar(stringKind), Required: false},
		},
	}

	DirectiveFold = DirectiveDecl{
		Name: "fold",
		Args: nil,
	}

	DirectiveTransform = DirectiveDecl{
		Name: "transform",
		Args: []DirectiveArg{
			{Name: "op", Type: NonNullScalar(stringKind), Required: true},
		},
	}

	DirectiveOptional = DirectiveDecl{
		Name: "optional",
		Args: nil,
	}

	DirectiveRecurse = DirectiveDecl{
		Name: "recurse",
		Args: []DirectiveArg{
			{Name: "depth", Type: NonNullScalar(intKind), Required: true},
		},
	}

	// StandardDirectives indexes every recognized directive by name for the frontend's
	// InvalidDirectiveArg validation pass.
	StandardDirectives = map[string]DirectiveDecl{
		DirectiveFilter.Name:    DirectiveFilter,
		DirectiveOutput.Name:    DirectiveOutput,
		DirectiveTag.Name:       DirectiveTag,
		DirectiveFold.Name:      DirectiveFold,
		DirectiveTransform.Name: DirectiveTransform,
		DirectiveOptional.Name:  DirectiveOptional,
		DirectiveRecurse.Name:   DirectiveRecurse,
	}
)
