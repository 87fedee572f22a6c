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

package numbers

import (
	"github.com/trustfall-go/trustfall"
	"github.com/trustfall-go/trustfall/adapter"
)

// Adapter answers every resolver spec.md §4.3 describes against the integers [0, Max].
type Adapter struct {
	Max int64
}

// New builds an Adapter serving Number vertices 0..max inclusive.
func New(max int64) *Adapter {
	return &Adapter{Max: max}
}

func (a *Adapter) inRange(n int64) bool {
	return n >= 0 && n <= a.Max
}

// ResolveStartingVertices implements the Number(min, max) root edge: every integer in
// [max(0,min), min(a.Max,max)], ascending.
func (a *Adapter) ResolveStartingVertices(edgeName string, parameters adapter.Parameters) adapter.VertexIterator {
	if edgeName != "Number" {
		return adapter.SliceVertices(nil)
	}
	lo, _ := parameters["min"].AsInt64()
	hi, _ := parameters["max"].AsInt64()
	if lo < 0 {
		lo = 0
	}
	if hi > a.Max {
		hi = a.Max
	}
	var out []adapter.Vertex
	for n := lo; n <= hi; n++ {
		out = append(out, vertex{value: n})
	}
	return adapter.SliceVertices(out)
}

// ResolveProperty implements every scalar property schema.go declares on Number's subtypes.
func (a *Adapter) ResolveProperty(contexts adapter.ContextIterator, vertexType, propertyName string) adapter.ValueIterator {
	return adapter.MapProperty(contexts, func(v adapter.Vertex) (trustfall.Value, error) {
		n := v.(vertex).value
		switch propertyName {
		case "value":
			return trustfall.Int64Value(n), nil
		case "name":
			return trustfall.StringValue(name(n)), nil
		case "vowelsInName":
			return trustfall.Int64Value(vowelsInName(n)), nil
		}
		return trustfall.Null, trustfall.NewError(
			"unknown property "+propertyName, trustfall.ErrKindAdapter)
	})
}

// ResolveNeighbors implements successor, predecessor, multiple(max:), primeFactor and divisor.
func (a *Adapter) ResolveNeighbors(contexts adapter.ContextIterator, vertexType, edgeName string, parameters adapter.Parameters) adapter.NeighborsIterator {
	return adapter.MapNeighbors(contexts, func(v adapter.Vertex) adapter.VertexIterator {
		n := v.(vertex).value
		switch edgeName {
		case "successor":
			if !a.inRange(n + 1) {
				return adapter.SliceVertices(nil)
			}
			return adapter.SliceVertices([]adapter.Vertex{vertex{value: n + 1}})
		case "predecessor":
			if !a.inRange(n - 1) {
				return adapter.SliceVertices(nil)
			}
			return adapter.SliceVertices([]adapter.Vertex{vertex{value: n - 1}})
		case "multiple":
			max, _ := parameters["max"].AsInt64()
			var out []adapter.Vertex
			if n > 0 {
				for m := n; m <= max && a.inRange(m); m += n {
					out = append(out, vertex{value: m})
				}
			}
			return adapter.SliceVertices(out)
		case "primeFactor":
			var out []adapter.Vertex
			for _, p := range primeFactors(n) {
				out = append(out, vertex{value: p})
			}
			return adapter.SliceVertices(out)
		case "divisor":
			var out []adapter.Vertex
			for _, d := range divisors(n) {
				out = append(out, vertex{value: d})
			}
			return adapter.SliceVertices(out)
		}
		return adapter.SliceVertices(nil)
	})
}

// ResolveCoercion implements `... on Prime`/`... on Composite`/`... on Neither` against the
// runtime classification TypeName computes.
func (a *Adapter) ResolveCoercion(contexts adapter.ContextIterator, vertexType, coerceTo string) adapter.CoercionIterator {
	return adapter.MapCoercion(contexts, func(v adapter.Vertex) bool {
		return TypeName(v.(vertex).value) == coerceTo
	})
}
