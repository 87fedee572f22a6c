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

package trace_test

import (
	"bytes"

	"github.com/trustfall-go/trustfall"
	"github.com/trustfall-go/trustfall/trace"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Builder", func() {
	It("records calls, yields and exhaustion events in order with ascending Opids", func() {
		var b trace.Builder
		call := b.Call("resolve_property", "Number", "value")
		b.YieldInto(call, trustfall.Int64Value(3))
		b.YieldFrom(call, trustfall.Int64Value(3))
		b.InputIteratorExhausted(call)

		ops := b.Ops()
		Expect(ops).To(HaveLen(4))
		for i, op := range ops {
			Expect(op.Opid).To(Equal(trace.Opid(i)))
		}
		Expect(ops[0].Kind).To(Equal(trace.OpCall))
		Expect(ops[0].Content).To(Equal("resolve_property(Number, value)"))
		Expect(ops[1].Kind).To(Equal(trace.OpYieldInto))
		Expect(ops[1].Parent).To(Equal(call))
		Expect(ops[2].Kind).To(Equal(trace.OpYieldFrom))
		Expect(ops[3].Kind).To(Equal(trace.OpInputIteratorExhausted))
	})

	It("renders a call with no arguments as just its name", func() {
		var b trace.Builder
		b.Call("resolve_starting_vertices")
		Expect(b.Ops()[0].Content).To(Equal("resolve_starting_vertices"))
	})
})

var _ = Describe("Compare", func() {
	It("reports no diffs for two identical traces", func() {
		var b trace.Builder
		b.Call("a")
		b.ProduceQueryResult("{value: 1}")
		ops := b.Ops()

		Expect(trace.Compare(ops, ops)).To(BeEmpty())
	})

	It("ignores Opid and Parent and only diffs Kind/Content", func() {
		want := []trace.TraceOp{{Opid: 0, Parent: -1, Kind: trace.OpCall, Content: "a"}}
		got := []trace.TraceOp{{Opid: 5, Parent: 2, Kind: trace.OpCall, Content: "a"}}
		Expect(trace.Compare(want, got)).To(BeEmpty())
	})

	It("reports a divergence in content at its index", func() {
		want := []trace.TraceOp{{Kind: trace.OpCall, Content: "a"}, {Kind: trace.OpCall, Content: "b"}}
		got := []trace.TraceOp{{Kind: trace.OpCall, Content: "a"}, {Kind: trace.OpCall, Content: "c"}}

		diffs := trace.Compare(want, got)
		Expect(diffs).To(HaveLen(1))
		Expect(diffs[0].Index).To(Equal(1))
		Expect(diffs[0].Want.Content).To(Equal("b"))
		Expect(diffs[0].Got.Content).To(Equal("c"))
	})

	It("reports a diff for every op a shorter trace is missing", func() {
		want := []trace.TraceOp{{Kind: trace.OpCall, Content: "a"}, {Kind: trace.OpCall, Content: "b"}}
		got := []trace.TraceOp{{Kind: trace.OpCall, Content: "a"}}

		diffs := trace.Compare(want, got)
		Expect(diffs).To(HaveLen(1))
		Expect(diffs[0].Index).To(Equal(1))
		Expect(diffs[0].Got.Content).To(Equal(""))
	})
})

var _ = Describe("WriteJSON/ReadJSON", func() {
	It("round-trips a recorded trace through a golden-file-shaped JSON encoding", func() {
		var b trace.Builder
		call := b.Call("resolve_property", "Number", "value")
		b.YieldFrom(call, trustfall.Int64Value(3))
		b.ProduceQueryResult(`{"value": 3}`)
		want := b.Ops()

		var buf bytes.Buffer
		Expect(trace.WriteJSON(&buf, want)).To(Succeed())

		got, err := trace.ReadJSON(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(trace.Compare(want, got)).To(BeEmpty())
		Expect(got).To(Equal(want))
	})
})
