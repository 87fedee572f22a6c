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

// Package trace records the ordered sequence of resolver calls and value flows an interpreter run
// produces, so two runs of the same query against the same (or a reimplemented) adapter can be
// compared operation-by-operation rather than just result-row-by-result-row. This is the
// "golden-trace replay comparison" facility SPEC_FULL.md adds: a regression suite can pin a known
// good trace and fail loudly the moment execution order, not just output, drifts.
package trace

import (
	"fmt"
	"io"
	"strings"

	"github.com/json-iterator/go"
)

// Opid identifies one TraceOp within a Trace, in the order it was recorded.
type Opid int

// OpKind discriminates the shape of a TraceOp.
type OpKind uint8

// Enumeration of OpKind, naming the interpreter-observable events a trace records.
const (
	// OpCall records a resolver invocation: ResolveStartingVertices, ResolveProperty,
	// ResolveNeighbors or ResolveCoercion being called with some descriptive arguments.
	OpCall OpKind = iota

	// OpAdvanceInputIterator records the interpreter pulling the next context from an input
	// iterator it is feeding into a resolver call.
	OpAdvanceInputIterator

	// OpYieldInto records a value flowing into a downstream resolver's input.
	OpYieldInto

	// OpYieldFrom records a value flowing out of a resolver's output iterator.
	OpYieldFrom

	// OpInputIteratorExhausted records an input iterator reaching iterator.Done.
	OpInputIteratorExhausted

	// OpOutputIteratorExhausted records an output iterator reaching iterator.Done.
	OpOutputIteratorExhausted

	// OpProduceQueryResult records one finished result row reaching the top of the pipeline.
	OpProduceQueryResult
)

func (k OpKind) String() string {
	switch k {
	case OpCall:
		return "Call"
	case OpAdvanceInputIterator:
		return "AdvanceInputIterator"
	case OpYieldInto:
		return "YieldInto"
	case OpYieldFrom:
		return "YieldFrom"
	case OpInputIteratorExhausted:
		return "InputIteratorExhausted"
	case OpOutputIteratorExhausted:
		return "OutputIteratorExhausted"
	case OpProduceQueryResult:
		return "ProduceQueryResult"
	}
	return "unknown op"
}

// TraceOp is one recorded event. Parent is the Opid of the op that logically caused this one
// (e.g. the OpCall a OpYieldFrom belongs to), or -1 for a root-level op.
type TraceOp struct {
	Opid   Opid
	Parent Opid
	Kind   OpKind

	// Content is a short, human-readable rendering of the op's payload (a resolver name plus its
	// arguments, or a value's String() form). It is what Compare diffs between two traces.
	Content string
}

func (op TraceOp) String() string {
	return fmt.Sprintf("#%d <- #%d %s: %s", op.Opid, op.Parent, op.Kind, op.Content)
}

// Builder accumulates TraceOps during one interpreter run. The zero value is ready to use.
type Builder struct {
	ops    []TraceOp
	parent []Opid // stack of open parent ops that Call records under; no method pushes onto it, so every Call has Parent -1
}

// Call records an OpCall with its name and any descriptive arguments, returning the Opid so a
// caller can record nested ops under it (not currently exercised by the interpreter, which
// treats every Call as a sibling rather than nesting resolver calls inside one another, but kept
// for symmetry with the other record methods and for a future nested-resolver trace).
func (b *Builder) Call(name string, args ...interface{}) Opid {
	return b.record(OpCall, b.currentParent(), formatCall(name, args))
}

// YieldFrom records a value flowing out of the resolver call identified by parent.
func (b *Builder) YieldFrom(parent Opid, value fmt.Stringer) Opid {
	return b.record(OpYieldFrom, parent, value.String())
}

// YieldInto records a value flowing into the resolver call identified by parent.
func (b *Builder) YieldInto(parent Opid, value fmt.Stringer) Opid {
	return b.record(OpYieldInto, parent, value.String())
}

// InputIteratorExhausted records an input iterator under parent reaching iterator.Done.
func (b *Builder) InputIteratorExhausted(parent Opid) Opid {
	return b.record(OpInputIteratorExhausted, parent, "")
}

// OutputIteratorExhausted records an output iterator under parent reaching iterator.Done.
func (b *Builder) OutputIteratorExhausted(parent Opid) Opid {
	return b.record(OpOutputIteratorExhausted, parent, "")
}

// ProduceQueryResult records one finished row, rendered by the caller into content.
func (b *Builder) ProduceQueryResult(content string) Opid {
	return b.record(OpProduceQueryResult, -1, content)
}

func (b *Builder) currentParent() Opid {
	if len(b.parent) == 0 {
		return -1
	}
	return b.parent[len(b.parent)-1]
}

func (b *Builder) record(kind OpKind, parent Opid, content string) Opid {
	opid := Opid(len(b.ops))
	b.ops = append(b.ops, TraceOp{Opid: opid, Parent: parent, Kind: kind, Content: content})
	return opid
}

// Ops returns every TraceOp recorded so far, in recording order.
func (b *Builder) Ops() []TraceOp {
	return b.ops
}

func formatCall(name string, args []interface{}) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%v", a)
	}
	if len(parts) == 0 {
		return name
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

// Diff is one point of divergence Compare found between two traces.
type Diff struct {
	Index int
	Want  TraceOp
	Got   TraceOp
}

func (d Diff) String() string {
	return fmt.Sprintf("op %d: want %s, got %s", d.Index, d.Want, d.Got)
}

// Compare performs a golden-trace replay comparison: it walks want and got op by op and reports
// every index at which they diverge in Kind or Content (Opid/Parent are excluded from comparison
// since a structurally-identical replay may still assign different Opids if, say, a map iteration
// order changed which of two independent resolver calls the implementation happened to issue
// first). An empty result means got reproduces want's observable resolver call sequence exactly.
func Compare(want, got []TraceOp) []Diff {
	var diffs []Diff
	n := len(want)
	if len(got) > n {
		n = len(got)
	}
	for i := 0; i < n; i++ {
		var w, g TraceOp
		if i < len(want) {
			w = want[i]
		}
		if i < len(got) {
			g = got[i]
		}
		if w.Kind != g.Kind || w.Content != g.Content {
			diffs = append(diffs, Diff{Index: i, Want: w, Got: g})
		}
	}
	return diffs
}

// WriteJSON writes ops to w as newline-delimited JSON, one TraceOp object per line: the format a
// golden trace file is checked into a regression suite as, so that a later run's Ops() can be
// loaded back with ReadJSON and handed to Compare.
func WriteJSON(w io.Writer, ops []TraceOp) error {
	enc := jsoniter.NewEncoder(w)
	for _, op := range ops {
		if err := enc.Encode(op); err != nil {
			return err
		}
	}
	return nil
}

// ReadJSON reads a trace previously written by WriteJSON.
func ReadJSON(r io.Reader) ([]TraceOp, error) {
	dec := jsoniter.NewDecoder(r)
	var ops []TraceOp
	for dec.More() {
		var op TraceOp
		if err := dec.Decode(&op); err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}
