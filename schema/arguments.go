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

package schema

import (
	"fmt"

	"github.com/trustfall-go/trustfall"
)

// QueryArgs maps a query variable name to the Value supplied for it at execution time. It plays
// the role the teacher's graphql.VariableValues plays for a prepared operation.
type QueryArgs map[string]trustfall.Value

// CoerceArguments validates a supplied QueryArgs map against a set of declared parameter types,
// the way the teacher's value.CoerceVariableValues validates variable values against their
// declared GraphQL types before execution begins. Missing non-nullable arguments and type
// mismatches are both reported as ErrKindQueryArgument, per §7.
func CoerceArguments(declared map[string]TypeRef, supplied QueryArgs) (QueryArgs, error) {
	out := make(QueryArgs, len(declared))
	for name, t := range declared {
		v, present := supplied[name]
		if !present || v.IsNull() {
			if !t.Nullable {
				return nil, trustfall.NewError(
					fmt.Sprintf("missing required argument %q of type %s", name, t),
					trustfall.ErrKindQueryArgument)
			}
			out[name] = trustfall.Null
			continue
		}

		if err := checkValueType(v, t); err != nil {
			return nil, trustfall.NewError(
				fmt.Sprintf("argument %q: %v", name, err), trustfall.ErrKindQueryArgument)
		}
		out[name] = v
	}
	return out, nil
}

func checkValueType(v trustfall.Value, t TypeRef) error {
	if t.ListDepth > 0 {
		elements, ok := v.AsList()
		if !ok {
			return fmt.Errorf("expected a list of depth %d, got %s", t.ListDepth, v.Kind())
		}
		inner := t
		inner.ListDepth--
		for _, e := range elements {
			if err := checkValueType(e, inner); err != nil {
				return err
			}
		}
		return nil
	}

	if v.Kind() != t.ElementKind {
		// Int64/Uint64 are accepted interchangeably, matching the numeric promotion rule filters
		// use (§4.2). The sign is not checked and the value is not converted: a negative Int64
		// supplied for a Uint64 passes through as it is.
		if t.ElementKind == trustfall.KindInt64 && v.Kind() == trustfall.KindUint64 {
			return nil
		}
		if t.ElementKind == trustfall.KindUint64 && v.Kind() == trustfall.KindInt64 {
			return nil
		}
		return fmt.Errorf("expected %s, got %s", t.ElementKind, v.Kind())
	}
	return nil
}
