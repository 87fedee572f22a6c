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

package adapter

import (
	"github.com/trustfall-go/trustfall"
	"github.com/trustfall-go/trustfall/iterator"
)

// SliceVertices builds a VertexIterator over an already-materialized slice. It is the adapter
// equivalent of the teacher's own iterator examples over an in-memory []*Book: most reference
// adapters (and tests) have their whole vertex set in memory and don't need a lazily-computed
// iterator, but still need to speak the pull protocol the interpreter drives.
func SliceVertices(vertices []Vertex) VertexIterator {
	return &sliceVertexIterator{vertices: vertices}
}

type sliceVertexIterator struct {
	vertices []Vertex
	pos      int
}

func (it *sliceVertexIterator) Next() (Vertex, error) {
	if it.pos >= len(it.vertices) {
		return nil, iterator.Done
	}
	v := it.vertices[it.pos]
	it.pos++
	return v, nil
}

// MapProperty builds a ValueIterator that pulls every context from contexts and applies resolve
// to its LocalVertex, the common case for a property resolver that has no reason to batch (it
// doesn't hit a network or a prepared statement, just reads a field off an in-memory struct).
func MapProperty(contexts ContextIterator, resolve func(Vertex) (trustfall.Value, error)) ValueIterator {
	return &mapPropertyIterator{contexts: contexts, resolve: resolve}
}

type mapPropertyIterator struct {
	contexts ContextIterator
	resolve  func(Vertex) (trustfall.Value, error)
}

func (it *mapPropertyIterator) Next() (Vertex, trustfall.Value, error) {
	info, err := it.contexts.Next()
	if err != nil {
		return nil, trustfall.Value{}, err
	}
	value, err := it.resolve(info.LocalVertex)
	if err != nil {
		return nil, trustfall.Value{}, err
	}
	return info.LocalVertex, value, nil
}

// MapNeighbors builds a NeighborsIterator that pulls every context from contexts and applies
// resolve to its LocalVertex to get that vertex's neighbor iterator.
func MapNeighbors(contexts ContextIterator, resolve func(Vertex) VertexIterator) NeighborsIterator {
	return &mapNeighborsIterator{contexts: contexts, resolve: resolve}
}

type mapNeighborsIterator struct {
	contexts ContextIterator
	resolve  func(Vertex) VertexIterator
}

func (it *mapNeighborsIterator) Next() (Vertex, VertexIterator, error) {
	info, err := it.contexts.Next()
	if err != nil {
		return nil, nil, err
	}
	return info.LocalVertex, it.resolve(info.LocalVertex), nil
}

// MapCoercion builds a CoercionIterator that pulls every context from contexts and applies check
// to its LocalVertex.
func MapCoercion(contexts ContextIterator, check func(Vertex) bool) CoercionIterator {
	return &mapCoercionIterator{contexts: contexts, check: check}
}

type mapCoercionIterator struct {
	contexts ContextIterator
	check    func(Vertex) bool
}

func (it *mapCoercionIterator) Next() (Vertex, bool, error) {
	info, err := it.contexts.Next()
	if err != nil {
		return nil, false, err
	}
	return info.LocalVertex, it.check(info.LocalVertex), nil
}

// SliceContexts builds a ContextIterator over an already-materialized slice of *ResolveInfo, the
// counterpart to SliceVertices used by the interpreter to hand an adapter every context it has
// already materialized for one resolver call.
func SliceContexts(infos []*ResolveInfo) ContextIterator {
	return &sliceContextIterator{infos: infos}
}

type sliceContextIterator struct {
	infos []*ResolveInfo
	pos   int
}

func (it *sliceContextIterator) Next() (*ResolveInfo, error) {
	if it.pos >= len(it.infos) {
		return nil, iterator.Done
	}
	info := it.infos[it.pos]
	it.pos++
	return info, nil
}
