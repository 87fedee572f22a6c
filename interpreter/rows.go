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
	"fmt"

	"github.com/trustfall-go/trustfall"
	"github.com/trustfall-go/trustfall/iterator"
	"github.com/trustfall-go/trustfall/trace"
)

// RowIterator pulls one result row at a time, following the same Next/iterator.Done pull
// protocol an Adapter's own iterators use, so a caller streaming results to a client doesn't need
// a different idiom at the interpreter boundary than it uses everywhere else in this module.
type RowIterator interface {
	Next() (map[string]trustfall.Value, error)
}

type sliceRowIterator struct {
	rows   []map[string]trustfall.Value
	pos    int
	tracer *trace.Builder
}

// Next yields the row at it.pos, recording a ProduceQueryResult op first: this is the point §4.7
// calls "one finished result row reaching the top of the pipeline", the boundary a golden-trace
// replay oracle's result subsequence is diffed against.
func (it *sliceRowIterator) Next() (map[string]trustfall.Value, error) {
	if it.pos >= len(it.rows) {
		return nil, iterator.Done
	}
	row := it.rows[it.pos]
	it.pos++
	if it.tracer != nil {
		content, err := trustfall.RowJSON(row)
		if err != nil {
			content = fmt.Sprintf("%v", row)
		}
		it.tracer.ProduceQueryResult(content)
	}
	return row, nil
}

// Collect drains it into a slice, a convenience for tests and for adapters/callers that don't
// need streaming.
func Collect(it RowIterator) ([]map[string]trustfall.Value, error) {
	var rows []map[string]trustfall.Value
	for {
		row, err := it.Next()
		if err == iterator.Done {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
