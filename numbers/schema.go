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

// Package numbers is a small, self-contained reference adapter over the integers 0..N: every
// end-to-end scenario spec.md §8 describes is phrased against this exact schema, the way the
// teacher's own small, self-contained type constructors (graphql/scalars.go) build a toy-but-real
// type to exercise the rest of the package against.
package numbers

import (
	"github.com/trustfall-go/trustfall"
	"github.com/trustfall-go/trustfall/schema"
)

// Schema builds the "numbers" schema: a single interface Number with concrete subtypes Prime,
// Composite and Neither (0 and 1, which are neither prime nor composite), and the edges every
// scenario in spec.md §8 traverses.
func Schema() *schema.Schema {
	numberProperties := []schema.PropertyDefinition{
		{Name: "value", Type: schema.NonNullScalar(trustfall.KindInt64)},
		{Name: "name", Type: schema.Scalar(trustfall.KindString)},
		{Name: "vowelsInName", Type: schema.NonNullScalar(trustfall.KindInt64)},
	}

	numberEdges := []schema.EdgeDefinition{
		{Name: "successor", TargetType: "Number", Recursable: true},
		{Name: "predecessor", TargetType: "Number", Recursable: true},
		{
			Name:       "multiple",
			TargetType: "Number",
			Parameters: map[string]schema.TypeRef{"max": schema.NonNullScalar(trustfall.KindInt64)},
		},
		{Name: "primeFactor", TargetType: "Prime"},
		{Name: "divisor", TargetType: "Number"},
	}

	sch, err := schema.New(schema.Config{
		Interfaces: []string{"Number"},
		VertexTypes: []schema.VertexTypeConfig{
			{
				// Number itself carries the shared properties/edges every subtype inherits: a
				// query that never narrows with `... on` (every scenario in spec.md §8 but one)
				// resolves straight against this entry, the way a GraphQL interface's own field
				// set is queryable without narrowing to an implementing object type.
				Name:       "Number",
				Properties: numberProperties,
				Edges:      numberEdges,
			},
			// Prime, Composite and Neither declare no properties/edges of their own: everything
			// they expose is inherited by walking Implements back to Number, the way
			// schema.ResolveProperty/ResolveEdge fall through to a supertype.
			{Name: "Prime", Implements: []string{"Number"}},
			{Name: "Composite", Implements: []string{"Number"}},
			{Name: "Neither", Implements: []string{"Number"}},
		},
		RootEdges: []schema.EdgeDefinition{
			{
				Name:       "Number",
				TargetType: "Number",
				Parameters: map[string]schema.TypeRef{
					"min": schema.NonNullScalar(trustfall.KindInt64),
					"max": schema.NonNullScalar(trustfall.KindInt64),
				},
			},
		},
	})
	if err != nil {
		// The schema literal above is fixed at compile time; a validation failure here would be
		// a bug in this package, not a runtime condition a caller can act on.
		panic(err)
	}
	return sch
}
