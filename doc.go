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

// Package trustfall contains the types shared by every stage of the query engine: the
// dynamically-typed Value that flows through filters, tags and outputs, and the Error type
// used to report compile-time and run-time failures.
//
// The engine itself is split across sibling packages the way this package's teacher splits a
// GraphQL service across graphql/ast, graphql/schema and graphql/executor:
//
//	ast          the parsed-query seam (parsing itself is someone else's problem)
//	schema       the typed description of vertex types, edges and properties
//	ir           the compiled, immutable intermediate representation
//	frontend     ast + schema -> ir
//	adapter      the four resolvers a data source must implement
//	interpreter  ir + adapter -> result rows, handed out through a pull-based RowIterator
//	trace        an ordered log of every interpreter call, for golden-trace testing
package trustfall
