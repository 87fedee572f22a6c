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

// Package adapter declares the contract a data source implements to answer queries the
// interpreter compiles and drives: resolving a starting vertex set, a property, a set of
// neighboring vertices across an edge, and a type coercion. Every resolver returns an iterator
// following the package iterator Next/Done pull protocol, so an adapter backed by a paginated API
// or a streaming cursor never has to materialize more than the interpreter actually pulls.
package adapter

import (
	"github.com/trustfall-go/trustfall"
	"github.com/trustfall-go/trustfall/ir"
)

// Vertex is the opaque per-data-source representation of one query-graph vertex. The interpreter
// never inspects a Vertex itself; it only ever hands one back to the Adapter that produced it, or
// stores it in a Context's active_vertex/vertices slots.
type Vertex interface{}

// VertexIterator pulls Vertex values one at a time. Next returns iterator.Done when exhausted.
type VertexIterator interface {
	Next() (Vertex, error)
}

// ContextIterator pulls *ResolveInfo values, one per active query-execution Context the
// interpreter is currently driving through a resolver, following the same pull protocol as
// VertexIterator. Batching resolution by context (rather than resolving one context fully before
// moving to the next) is what lets resolve_property and resolve_neighbors be called once per
// *edge*, amortizing an adapter's per-call overhead (a network round trip, a prepared statement)
// across every context sharing that edge, the way spec.md §4.4 describes.
type ContextIterator interface {
	Next() (*ResolveInfo, error)
}

// ResolveInfo pairs a Vertex pulled from a prior resolver with identifying information about
// where it came from, threaded through so an adapter resolving a batch of contexts can tell which
// output a produced value belongs to without the interpreter keeping a side channel.
type ResolveInfo struct {
	// LocalVertex is the active_vertex the resolver is being asked about.
	LocalVertex Vertex

	// Vid is the query-graph vertex currently active, included for adapters that key cached
	// connections or prepared statements by query position.
	Vid ir.Vid
}

// Parameters maps an edge's declared parameter name to its resolved value: the interpreter binds
// any `$variable` reference against the supplied query arguments before an Adapter ever sees it,
// so an Adapter deals only in concrete values, never in ir.ParameterValue/variable names.
type Parameters map[string]trustfall.Value

// Adapter is the four-resolver contract spec.md §4.3 describes.
type Adapter interface {
	// ResolveStartingVertices produces the set of vertices a root edge resolves to, given its
	// (already-coerced) parameters.
	ResolveStartingVertices(edgeName string, parameters Parameters) VertexIterator

	// ResolveProperty returns, for every context in contexts, the named property's value read
	// off that context's active_vertex. vertexType names the current (possibly coerced) runtime
	// type, letting one adapter method dispatch on type without a type switch on Vertex itself.
	ResolveProperty(contexts ContextIterator, vertexType, propertyName string) ValueIterator

	// ResolveNeighbors returns, for every context in contexts, an iterator over the vertices
	// reachable from that context's active_vertex across the named edge.
	ResolveNeighbors(contexts ContextIterator, vertexType, edgeName string, parameters Parameters) NeighborsIterator

	// ResolveCoercion reports, for every context in contexts, whether that context's
	// active_vertex may be narrowed to coerceTo.
	ResolveCoercion(contexts ContextIterator, vertexType, coerceTo string) CoercionIterator
}

// ValueIterator pulls a (Vertex, trustfall.Value) pair per context, in the same order contexts
// were supplied, mirroring the per-context ResolveInfo pairing resolve_property's contract
// requires (§4.4): the interpreter must be able to re-associate the yielded value with the
// Context it resolved against.
type ValueIterator interface {
	Next() (Vertex, trustfall.Value, error)
}

// NeighborsIterator pulls a (Vertex, VertexIterator) pair per context: the local vertex the
// neighbors were resolved for, and a lazily-pulled iterator over those neighbors.
type NeighborsIterator interface {
	Next() (Vertex, VertexIterator, error)
}

// CoercionIterator pulls a (Vertex, bool) pair per context, reporting whether that context's
// vertex satisfies the requested coercion.
type CoercionIterator interface {
	Next() (Vertex, bool, error)
}
