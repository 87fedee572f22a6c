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

package frontend

import (
	"fmt"
	"strings"

	"github.com/trustfall-go/trustfall"
	"github.com/trustfall-go/trustfall/ast"
	"github.com/trustfall-go/trustfall/ir"
	"github.com/trustfall-go/trustfall/schema"
)

// filterOpNames maps a `@filter(op: "...")` string to the closed FilterOp set §3 defines.
var filterOpNames = map[string]ir.FilterOp{
	"=":             ir.FilterEquals,
	"!=":            ir.FilterNotEquals,
	"<":             ir.FilterLessThan,
	"<=":            ir.FilterLessThanOrEqual,
	">":             ir.FilterGreaterThan,
	">=":            ir.FilterGreaterThanOrEqual,
	"contains":      ir.FilterContains,
	"not_contains":  ir.FilterNotContains,
	"one_of":        ir.FilterOneOf,
	"not_one_of":    ir.FilterNotOneOf,
	"has_prefix":    ir.FilterHasPrefix,
	"has_suffix":    ir.FilterHasSuffix,
	"has_substring": ir.FilterHasSubstring,
	"regex":         ir.FilterRegexMatches,
	"is_null":       ir.FilterIsNull,
	"is_not_null":   ir.FilterIsNotNull,
}

// lowerFilter lowers one `@filter` directive applied to left (a property or a fold Count) into an
// ir.FilterOperation, resolving its `value` entries into FieldReferences: a `$name` entry becomes
// a Variable reference, a `%name` entry becomes a Tag reference (checked against c.tags for scope
// violations), anything else is rejected since §6 only allows filter operands to be variables or
// tags, never inline literals.
func (c *compiler) lowerFilter(
	dir *ast.Directive,
	left ir.FieldReference,
	leftType schema.TypeRef,
	foldPath []ir.Eid,
) (ir.FilterOperation, error) {
	opArg, _ := dir.Arg("op")
	opName, ok := opArg.(ast.StringValue)
	if !ok {
		return ir.FilterOperation{}, trustfall.NewError(
			"@filter requires a string \"op\" argument", opCompile, trustfall.ErrKindInvalidDirectiveArg)
	}

	op, ok := filterOpNames[string(opName)]
	if !ok {
		return ir.FilterOperation{}, trustfall.NewError(
			fmt.Sprintf("unrecognized filter operator %q", opName), opCompile, trustfall.ErrKindInvalidDirectiveArg)
	}

	filter := ir.FilterOperation{Op: op, Left: left}

	if !op.HasRightOperand() {
		return filter, nil
	}

	valueArg, ok := dir.Arg("value")
	if !ok {
		return ir.FilterOperation{}, trustfall.NewError(
			fmt.Sprintf("@filter(op: %q) requires a \"value\" argument", opName),
			opCompile, trustfall.ErrKindInvalidDirectiveArg)
	}

	entries, ok := valueArg.(ast.ListValue)
	if !ok || len(entries) == 0 {
		return ir.FilterOperation{}, trustfall.NewError(
			fmt.Sprintf("@filter(op: %q) \"value\" must be a non-empty list", opName),
			opCompile, trustfall.ErrKindInvalidDirectiveArg)
	}

	// one_of/not_one_of take a single operand that is itself list-typed (a candidate set compared
	// against leftType element-wise); contains/not_contains take a single operand of leftType's
	// element type (leftType itself names the list being searched); every other binary operator
	// takes exactly one operand of leftType itself. Either way §6 only ever supplies one entry in
	// `value` for trustfall's present directive grammar.
	operandType := leftType
	switch op {
	case ir.FilterOneOf, ir.FilterNotOneOf:
		operandType = schema.ListOf(leftType)
	case ir.FilterContains, ir.FilterNotContains:
		if leftType.ListDepth > 0 {
			operandType.ListDepth--
		}
	}
	ref, err := c.resolveOperand(dir, entries[0], operandType, foldPath)
	if err != nil {
		return ir.FilterOperation{}, err
	}
	filter.Right = &ref
	return filter, nil
}

// resolveOperand turns a single `@filter(value: [...])` entry into a FieldReference: `$name`
// names a query variable, `%name` names a tagged value, anything else is a directive-argument
// error since trustfall's filters never take inline literal operands.
func (c *compiler) resolveOperand(
	dir *ast.Directive,
	entry ast.Value,
	leftType schema.TypeRef,
	foldPath []ir.Eid,
) (ir.FieldReference, error) {
	sv, ok := entry.(ast.StringValue)
	if !ok {
		return ir.FieldReference{}, trustfall.NewError(
			"@filter value entries must reference a variable (\"$name\") or a tag (\"%name\")",
			opCompile, trustfall.ErrKindInvalidDirectiveArg)
	}
	raw := string(sv)

	switch {
	case strings.HasPrefix(raw, "$"):
		name := raw[1:]
		if existing, seen := c.variableTypes[name]; seen {
			if existing != leftType && !(existing.IsNumeric() && leftType.IsNumeric()) {
				return ir.FieldReference{}, trustfall.NewError(
					fmt.Sprintf("variable %q used at incompatible types %s and %s", name, existing, leftType),
					opCompile, trustfall.ErrKindFilterTypeMismatch)
			}
		} else {
			c.variableTypes[name] = leftType
		}
		return ir.VariableField(name), nil

	case strings.HasPrefix(raw, "%"):
		name := raw[1:]
		def, defined := c.tags[name]
		if !defined {
			return ir.FieldReference{}, trustfall.NewError(
				fmt.Sprintf("tag %q used before it is defined", name), opCompile, trustfall.ErrKindTagScope)
		}
		// A tag may be used outside the fold it was defined in only when the use site's fold
		// path is a descendant of (or equal to) the definition's: a tag flows "down and across
		// later siblings" within its own scope, but never out of a fold into an ancestor
		// component, and never sideways into a fold it isn't nested inside (§4.6).
		if !isPrefix(def.foldPath, foldPath) {
			return ir.FieldReference{}, trustfall.NewError(
				fmt.Sprintf("tag %q is out of scope here", name), opCompile, trustfall.ErrKindTagScope)
		}
		ref := ir.TagField(name)
		ref.DefinedAt = def.field.Vid
		return ref, nil

	default:
		return ir.FieldReference{}, trustfall.NewError(
			fmt.Sprintf("filter operand %q is neither a variable nor a tag reference", raw),
			opCompile, trustfall.ErrKindInvalidDirectiveArg)
	}
}

// convertArguments lowers a field's argument list (edge parameters) into ir.Parameters, coercing
// literals against the schema's declared parameter types and recording `$name` references for
// later resolution against supplied QueryArgs.
func (c *compiler) convertArguments(args []ast.Argument, declared map[string]schema.TypeRef) (ir.Parameters, error) {
	if len(args) == 0 {
		return nil, nil
	}

	out := make(ir.Parameters, len(args))
	var errs []string

	for _, arg := range args {
		declType, ok := declared[arg.Name]
		if !ok {
			errs = append(errs, fmt.Sprintf("unknown argument %q", arg.Name))
			continue
		}

		if sv, ok := arg.Value.(ast.StringValue); ok && strings.HasPrefix(string(sv), "$") {
			name := string(sv)[1:]
			if existing, seen := c.variableTypes[name]; seen && existing != declType {
				errs = append(errs, fmt.Sprintf("variable %q used at incompatible types %s and %s", name, existing, declType))
				continue
			}
			c.variableTypes[name] = declType
			out[arg.Name] = ir.ParameterValue{VariableName: name}
			continue
		}

		lit, err := astValueToTrustfall(arg.Value, declType)
		if err != nil {
			errs = append(errs, fmt.Sprintf("argument %q: %v", arg.Name, err))
			continue
		}
		out[arg.Name] = ir.ParameterValue{Literal: lit}
	}

	if len(errs) > 0 {
		return out, trustfall.NewError(strings.Join(errs, "; "), opCompile, trustfall.ErrKindInvalidDirectiveArg)
	}
	return out, nil
}

// astValueToTrustfall coerces a literal AST value into a trustfall.Value of the declared type.
func astValueToTrustfall(v ast.Value, t schema.TypeRef) (trustfall.Value, error) {
	if t.ListDepth > 0 {
		lv, ok := v.(ast.ListValue)
		if !ok {
			return trustfall.Value{}, fmt.Errorf("expected a list literal")
		}
		inner := t
		inner.ListDepth--
		elements := make([]trustfall.Value, len(lv))
		for i, e := range lv {
			ev, err := astValueToTrustfall(e, inner)
			if err != nil {
				return trustfall.Value{}, err
			}
			elements[i] = ev
		}
		return trustfall.ListValue(elements...), nil
	}

	switch val := v.(type) {
	case ast.IntValue:
		if t.ElementKind == trustfall.KindUint64 {
			return trustfall.Uint64Value(uint64(val)), nil
		}
		return trustfall.Int64Value(int64(val)), nil
	case ast.StringValue:
		if t.ElementKind == trustfall.KindEnum {
			return trustfall.EnumValue(string(val)), nil
		}
		return trustfall.StringValue(string(val)), nil
	case ast.BooleanValue:
		return trustfall.BooleanValue(bool(val)), nil
	}
	return trustfall.Value{}, fmt.Errorf("unsupported literal for type %s", t)
}
