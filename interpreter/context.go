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

package interpreter

import (
	"github.com/trustfall-go/trustfall"
	"github.com/trustfall-go/trustfall/adapter"
	"github.com/trustfall-go/trustfall/ir"
)

// context carries one in-flight execution record as it is threaded through a query plan: the
// binding of every Vid visited so far to the adapter.Vertex found there, the projected output
// values collected along the way, and the state needed to resume an optional or folded branch
// spec.md §5 describes as suspended_vertices/piggyback.
//
// Unlike the teacher's graphql/executor, which builds one ResultNode tree per root value and
// recurses top-down through field resolution, a context here is a flat record that accumulates
// state as it flows left-to-right through the compiled plan; this is trustfall's own streaming
// row model; a query graph with two sibling edges yields the cross product of both traversals
// as parallel contexts, not a nested tree.
type context struct {
	// activeVid is the Vid whose vertex is currently being operated on.
	activeVid ir.Vid

	// vertices maps every Vid visited so far to the adapter.Vertex bound there. A Vid absent
	// from this map was never reached, which only happens along an @optional branch that didn't
	// pan out; its outputs are projected as Null per §4.1's optional-miss rule.
	vertices map[ir.Vid]adapter.Vertex

	// values holds every tagged/output value collected so far, keyed by the FieldReference's
	// resolved identity (vid+property for Local/Context fields, a synthetic tag key for Tag
	// fields). Populated incrementally as each vertex's properties are resolved.
	values map[string]trustfall.Value

	// foldedValues holds, for every fold Eid completed so far, one entry per row produced inside
	// that fold, keyed by output name within the fold's component. Used both to project
	// fold outputs as per-row lists and to compute Count for @transform(op: "count").
	foldedValues map[ir.Eid][]map[string]trustfall.Value
}

func newContext(rootVid ir.Vid, rootVertex adapter.Vertex) *context {
	return &context{
		activeVid:    rootVid,
		vertices:     map[ir.Vid]adapter.Vertex{rootVid: rootVertex},
		values:       map[string]trustfall.Value{},
		foldedValues: map[ir.Eid][]map[string]trustfall.Value{},
	}
}

// clone returns a deep-enough copy of c for branching into parallel contexts (one per neighbor
// reached across an edge, or one per optional/fold outcome). vertices/values/foldedValues are
// copied rather than shared so that two branches resolving different neighbors of the same
// source vertex never observe each other's bindings.
func (c *context) clone() *context {
	nc := &context{
		activeVid:    c.activeVid,
		vertices:     make(map[ir.Vid]adapter.Vertex, len(c.vertices)),
		values:       make(map[string]trustfall.Value, len(c.values)),
		foldedValues: make(map[ir.Eid][]map[string]trustfall.Value, len(c.foldedValues)),
	}
	for k, v := range c.vertices {
		nc.vertices[k] = v
	}
	for k, v := range c.values {
		nc.values[k] = v
	}
	for k, v := range c.foldedValues {
		nc.foldedValues[k] = v
	}
	return nc
}

// localKey builds the values map key for a Local/Context field reference.
func localKey(vid ir.Vid, property string) string {
	return vid.String() + "." + property
}

// tagKey builds the values map key a tag's definition site and every reader of it agree on.
func tagKey(name string) string {
	return "%" + name
}
