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

// These specs replay every end-to-end scenario named against the "numbers" reference schema:
// a hand-built ast.Document (no parser exists in this module; see trustfall/ast's package doc)
// compiled with frontend.Compile and driven by interpreter.Execute against numbers.New.
package interpreter_test

import (
	"github.com/trustfall-go/trustfall"
	"github.com/trustfall-go/trustfall/ast"
	"github.com/trustfall-go/trustfall/frontend"
	"github.com/trustfall-go/trustfall/interpreter"
	"github.com/trustfall-go/trustfall/numbers"
	"github.com/trustfall-go/trustfall/schema"
	"github.com/trustfall-go/trustfall/trace"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func field(name string, opts ...func(*ast.Field)) *ast.Field {
	f := &ast.Field{Name: name}
	for _, o := range opts {
		o(f)
	}
	return f
}

func withArgs(args ...ast.Argument) func(*ast.Field) {
	return func(f *ast.Field) { f.Arguments = args }
}

func withDirectives(dirs ...ast.Directive) func(*ast.Field) {
	return func(f *ast.Field) { f.Directives = dirs }
}

func withSelections(sels ...ast.Selection) func(*ast.Field) {
	return func(f *ast.Field) { f.SelectionSet = sels }
}

func arg(name string, v ast.Value) ast.Argument {
	return ast.Argument{Name: name, Value: v}
}

func filterDir(op string, values ...string) ast.Directive {
	entries := make(ast.ListValue, len(values))
	for i, v := range values {
		entries[i] = ast.StringValue(v)
	}
	return ast.Directive{Name: "filter", Arguments: []ast.Argument{
		arg("op", ast.StringValue(op)),
		arg("value", entries),
	}}
}

func outputDir() ast.Directive { return ast.Directive{Name: "output"} }

func namedOutputDir(name string) ast.Directive {
	return ast.Directive{Name: "output", Arguments: []ast.Argument{arg("name", ast.StringValue(name))}}
}

func optionalDir() ast.Directive { return ast.Directive{Name: "optional"} }
func foldDir() ast.Directive     { return ast.Directive{Name: "fold"} }

func recurseDir(depth int) ast.Directive {
	return ast.Directive{Name: "recurse", Arguments: []ast.Argument{arg("depth", ast.IntValue(depth))}}
}

func countTransformDir() ast.Directive {
	return ast.Directive{Name: "transform", Arguments: []ast.Argument{arg("op", ast.StringValue("count"))}}
}

func inlineFragment(typeCondition string, sels ...ast.Selection) *ast.InlineFragment {
	return &ast.InlineFragment{TypeCondition: typeCondition, SelectionSet: sels}
}

func run(root *ast.Field, args schema.QueryArgs) ([]map[string]trustfall.Value, error) {
	sch := numbers.Schema()
	query, err := frontend.Compile(sch, &ast.Document{Root: root})
	if err != nil {
		return nil, err
	}
	it, err := interpreter.Execute(numbers.New(64), sch, query, args, interpreter.Options{})
	if err != nil {
		return nil, err
	}
	return interpreter.Collect(it)
}

func intVal(row map[string]trustfall.Value, key string) int64 {
	v, _ := row[key].AsInt64()
	return v
}

func runTraced(root *ast.Field, args schema.QueryArgs) ([]map[string]trustfall.Value, []trace.TraceOp, error) {
	sch := numbers.Schema()
	query, err := frontend.Compile(sch, &ast.Document{Root: root})
	if err != nil {
		return nil, nil, err
	}
	var b trace.Builder
	it, err := interpreter.Execute(numbers.New(64), sch, query, args, interpreter.Options{Trace: &b})
	if err != nil {
		return nil, nil, err
	}
	rows, err := interpreter.Collect(it)
	return rows, b.Ops(), err
}

var _ = Describe("numbers end-to-end scenarios", func() {
	// (a) Simple filter.
	It("filters a root-level property to a single matching row", func() {
		root := field("Number",
			withArgs(arg("min", ast.IntValue(0)), arg("max", ast.IntValue(3))),
			withSelections(field("value", withDirectives(filterDir("=", "$v"), outputDir()))),
		)
		rows, err := run(root, schema.QueryArgs{"v": trustfall.Int64Value(3)})
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(intVal(rows[0], "value")).To(Equal(int64(3)))
	})

	// (b) Fold + count >= threshold.
	It("keeps a row whose folded count satisfies the threshold, and drops it otherwise", func() {
		buildRoot := func() *ast.Field {
			return field("Number",
				withArgs(arg("min", ast.IntValue(30)), arg("max", ast.IntValue(30))),
				withSelections(
					inlineFragment("Composite",
						field("value", withDirectives(outputDir())),
						field("primeFactor", withDirectives(foldDir(), countTransformDir(), filterDir(">=", "$min"))),
					),
				),
			)
		}

		rows, err := run(buildRoot(), schema.QueryArgs{"min": trustfall.Uint64Value(2)})
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(intVal(rows[0], "value")).To(Equal(int64(30)))

		rows, err = run(buildRoot(), schema.QueryArgs{"min": trustfall.Uint64Value(4)})
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(BeEmpty())
	})

	// (c) A missed @optional with a nested fold projects every descendant output as Null, not
	// as an empty list/zero count.
	It("projects Null through an optional edge that found nothing, including a nested fold", func() {
		root := field("Number",
			withArgs(arg("min", ast.IntValue(0)), arg("max", ast.IntValue(0))),
			withSelections(
				field("value", withDirectives(namedOutputDir("zero"))),
				field("predecessor",
					withDirectives(optionalDir()),
					withSelections(
						field("value", withDirectives(namedOutputDir("predecessor"))),
						field("successor",
							withDirectives(foldDir(), countTransformDir(), namedOutputDir("c")),
							withSelections(field("value", withDirectives(namedOutputDir("successors")))),
						),
					),
				),
			),
		)
		rows, err := run(root, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		row := rows[0]
		Expect(intVal(row, "zero")).To(Equal(int64(0)))
		Expect(row["predecessor"].IsNull()).To(BeTrue())
		Expect(row["c"].IsNull()).To(BeTrue())
		Expect(row["successors"].IsNull()).To(BeTrue())
	})

	// (d) A present fold with zero rows projects every output hoisted through it, the nested
	// fold's count included, as an empty list, not Null.
	It("projects empty lists for a fold that ran but produced no rows", func() {
		root := field("Number",
			withArgs(arg("min", ast.IntValue(0)), arg("max", ast.IntValue(0))),
			withSelections(
				field("value", withDirectives(namedOutputDir("zero"))),
				field("predecessor",
					withDirectives(foldDir()),
					withSelections(
						field("value", withDirectives(namedOutputDir("predecessor"))),
						field("successor",
							withDirectives(foldDir(), countTransformDir(), namedOutputDir("c")),
							withSelections(field("value", withDirectives(namedOutputDir("successors")))),
						),
					),
				),
			),
		)
		rows, err := run(root, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		row := rows[0]
		Expect(intVal(row, "zero")).To(Equal(int64(0)))
		Expect(row["predecessor"].IsNull()).To(BeFalse())
		predecessor, ok := row["predecessor"].AsList()
		Expect(ok).To(BeTrue())
		Expect(predecessor).To(BeEmpty())
		Expect(row["c"].IsNull()).To(BeFalse())
		counts, ok := row["c"].AsList()
		Expect(ok).To(BeTrue())
		Expect(counts).To(BeEmpty())
	})

	// (e) @recurse(depth: 2) includes the starting vertex and expands hop-by-hop.
	It("recurses outward hop by hop, matching vertices at every depth up to the bound", func() {
		root := field("Number",
			withArgs(arg("min", ast.IntValue(0)), arg("max", ast.IntValue(5))),
			withSelections(
				field("value", withDirectives(namedOutputDir("start"))),
				field("successor",
					withDirectives(recurseDir(2)),
					withSelections(field("value", withDirectives(filterDir("=", "$b"), namedOutputDir("matched")))),
				),
			),
		)
		rows, err := run(root, schema.QueryArgs{"b": trustfall.Int64Value(6)})
		Expect(err).NotTo(HaveOccurred())

		starts := map[int64]bool{}
		for _, row := range rows {
			Expect(intVal(row, "matched")).To(Equal(int64(6)))
			starts[intVal(row, "start")] = true
		}
		Expect(starts).To(Equal(map[int64]bool{4: true, 5: true}))
	})

	// (f) A count filter can never match a negative candidate, since a fold's count is always
	// non-negative: this falls directly out of cross-sign Uint64/Int64 equality, not a special
	// case in the filter evaluator.
	It("never matches a negative one_of candidate against a fold count", func() {
		root := field("Number",
			withArgs(arg("min", ast.IntValue(4)), arg("max", ast.IntValue(6))),
			withSelections(
				field("value", withDirectives(outputDir())),
				field("primeFactor", withDirectives(foldDir(), countTransformDir(), filterDir("one_of", "$counts"))),
			),
		)
		rows, err := run(root, schema.QueryArgs{
			"counts": trustfall.ListValue(trustfall.Int64Value(-2)),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(BeEmpty())
	})
})

var _ = Describe("trace recording", func() {
	It("records a ProduceQueryResult op for every emitted row, and nothing else", func() {
		root := field("Number",
			withArgs(arg("min", ast.IntValue(0)), arg("max", ast.IntValue(3))),
			withSelections(field("value", withDirectives(outputDir()))),
		)
		rows, ops, err := runTraced(root, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(4))

		var results []trace.TraceOp
		for _, op := range ops {
			if op.Kind == trace.OpProduceQueryResult {
				results = append(results, op)
			}
		}
		Expect(results).To(HaveLen(len(rows)))
		for i, row := range rows {
			want, err := trustfall.RowJSON(row)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[i].Content).To(Equal(want))
		}
	})

	It("brackets every resolve_property call with a matching Yield/Exhausted sequence", func() {
		root := field("Number",
			withArgs(arg("min", ast.IntValue(0)), arg("max", ast.IntValue(1))),
			withSelections(field("value", withDirectives(outputDir()))),
		)
		_, ops, err := runTraced(root, nil)
		Expect(err).NotTo(HaveOccurred())

		var call trace.Opid = -1
		var yields, exhausted int
		for _, op := range ops {
			switch {
			case op.Kind == trace.OpCall && op.Content == "resolve_property(Number, value)":
				call = op.Opid
			case op.Kind == trace.OpYieldFrom && op.Parent == call:
				yields++
			case op.Kind == trace.OpOutputIteratorExhausted && op.Parent == call:
				exhausted++
			}
		}
		Expect(call).NotTo(Equal(trace.Opid(-1)))
		Expect(yields).To(Equal(2))
		Expect(exhausted).To(Equal(1))
	})
})
