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
	"regexp"

	"github.com/trustfall-go/trustfall"
	"github.com/trustfall-go/trustfall/ir"
)

// foldCountKey builds the values map key a fold's Count aggregate is stored under, once the fold
// has been fully executed.
func foldCountKey(eid ir.Eid) string {
	return "#" + eid.String()
}

// resolveField looks up the Value a FieldReference names, given the current context and the
// query's supplied arguments. A Local/Context or Tag field that was never resolved (such as one
// below a missed @optional branch) reads as Null. The second return is false only for a Variable
// absent from the supplied arguments or an unrecognized reference kind.
func (e *execution) resolveField(c *context, ref ir.FieldReference) (trustfall.Value, bool) {
	switch ref.Kind {
	case ir.FieldReferenceLocal, ir.FieldReferenceContext:
		v, ok := c.values[localKey(ref.Vid, ref.PropertyName)]
		if !ok {
			return trustfall.Null, true
		}
		return v, true
	case ir.FieldReferenceFoldSpecific:
		// A fold nested inside a missed @optional branch is never run at all (its Eid never
		// reaches runFold), which per §4.1's optional-absence rule must project as Null here,
		// not as an empty list or a zero count — that shape is reserved for a fold that *did*
		// run and simply produced no rows (§8 scenario d vs. c).
		rows, ran := c.foldedValues[ref.Eid]
		if !ran {
			return trustfall.Null, true
		}
		switch ref.FoldSpecific {
		case ir.FoldSpecificList:
			elements := make([]trustfall.Value, len(rows))
			for i, row := range rows {
				elements[i] = row[ref.PropertyName]
			}
			return trustfall.ListValue(elements...), true
		default:
			return c.values[foldCountKey(ref.Eid)], true
		}
	case ir.FieldReferenceVariable:
		v, ok := e.args[ref.VariableName]
		return v, ok
	case ir.FieldReferenceTag:
		v, ok := c.values[tagKey(ref.TagName)]
		if !ok {
			return trustfall.Null, true
		}
		return v, true
	}
	return trustfall.Null, false
}

// evalFilter evaluates a single FilterOperation against c, returning whether the context survives
// it. A right-hand variable missing from the arguments fails the context closed rather than
// panicking, mirroring the teacher's preference for explicit error values over partial results;
// schema.CoerceArguments makes this unreachable for arguments that passed coercion. An unresolved
// tag reads as Null and is compared like any other Null value.
func (e *execution) evalFilter(c *context, f ir.FilterOperation) (bool, error) {
	left, ok := e.resolveField(c, f.Left)
	if !ok {
		return false, nil
	}

	switch f.Op {
	case ir.FilterIsNull:
		return left.IsNull(), nil
	case ir.FilterIsNotNull:
		return !left.IsNull(), nil
	}

	if f.Right == nil {
		return false, trustfall.NewError("filter operator requires a right operand", trustfall.ErrKindInternal)
	}
	right, ok := e.resolveField(c, *f.Right)
	if !ok {
		return false, nil
	}

	switch f.Op {
	case ir.FilterEquals:
		return left.Equals(right), nil
	case ir.FilterNotEquals:
		return !left.Equals(right), nil
	case ir.FilterLessThan:
		cmp, ok := left.Compare(right)
		return ok && cmp < 0, nil
	case ir.FilterLessThanOrEqual:
		cmp, ok := left.Compare(right)
		return ok && cmp <= 0, nil
	case ir.FilterGreaterThan:
		cmp, ok := left.Compare(right)
		return ok && cmp > 0, nil
	case ir.FilterGreaterThanOrEqual:
		cmp, ok := left.Compare(right)
		return ok && cmp >= 0, nil
	case ir.FilterContains:
		return left.Contains(right), nil
	case ir.FilterNotContains:
		return !left.Contains(right), nil
	case ir.FilterOneOf:
		return left.OneOf(right), nil
	case ir.FilterNotOneOf:
		return !left.OneOf(right), nil
	case ir.FilterHasPrefix:
		return left.HasPrefix(right), nil
	case ir.FilterHasSuffix:
		return left.HasSuffix(right), nil
	case ir.FilterHasSubstring:
		return left.HasSubstring(right), nil
	case ir.FilterRegexMatches:
		pattern, ok := right.AsString()
		if !ok {
			return false, nil
		}
		subject, ok := left.AsString()
		if !ok {
			return false, nil
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, trustfall.NewError("invalid regex pattern", trustfall.ErrKindFilterTypeMismatch, err)
		}
		return re.MatchString(subject), nil
	}
	return false, trustfall.NewError("unhandled filter operator", trustfall.ErrKindInternal)
}
