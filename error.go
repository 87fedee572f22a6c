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

package trustfall

import (
	"fmt"
)

// Op describes an operation, usually the package and method that produced an Error, such as
// "frontend.Compile" or "interpreter.resolveProperty".
type Op string

// ErrKind classifies an Error into one of the kinds named in §7 of the error handling design.
type ErrKind uint8

// Enumeration of ErrKind.
const (
	// ErrKindOther is an unclassified error; it is not printed in the error message.
	ErrKindOther ErrKind = iota

	// ErrKindValidation is raised when a query references an unknown type, edge or property.
	ErrKindValidation

	// ErrKindTagScope is raised when a tag is used outside its defining scope, or defined after
	// its use across a fold boundary.
	ErrKindTagScope

	// ErrKindTagNameCollision is raised when two tags share a name in overlapping scopes.
	ErrKindTagNameCollision

	// ErrKindFilterTypeMismatch is raised when a filter operator's operand types are
	// incompatible.
	ErrKindFilterTypeMismatch

	// ErrKindInvalidDirectiveArg is raised for a malformed directive argument.
	ErrKindInvalidDirectiveArg

	// ErrKindQueryArgument is raised when a supplied argument is missing or of the wrong type
	// at execution time.
	ErrKindQueryArgument

	// ErrKindAdapter tags an error propagated transparently from an adapter resolver.
	ErrKindAdapter

	// ErrKindInternal indicates a bug in the engine itself rather than in the query or schema.
	ErrKindInternal
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindOther:
		return "other error"
	case ErrKindValidation:
		return "validation error"
	case ErrKindTagScope:
		return "tag scope error"
	case ErrKindTagNameCollision:
		return "tag name collision"
	case ErrKindFilterTypeMismatch:
		return "filter type mismatch"
	case ErrKindInvalidDirectiveArg:
		return "invalid directive argument"
	case ErrKindQueryArgument:
		return "query argument error"
	case ErrKindAdapter:
		return "adapter error"
	case ErrKindInternal:
		return "internal error"
	}
	return "unknown error kind"
}

// Error describes a failure found during frontend compilation or interpreter execution. Like
// its teacher, it is built by wrapping an underlying error and tagging it with an Op and an
// ErrKind, following the design described in Rob Pike's "Errors are values" successor,
// upspin.io/errors.
type Error struct {
	// Message describes the error for a human reader.
	Message string

	// Op is the operation that failed.
	Op Op

	// Kind classifies the error.
	Kind ErrKind

	// Err is the underlying error, if any.
	Err error

	// Vertex and Edge, when non-zero, name the IR position (Vid/Eid) the error occurred at, as
	// §7 requires for AdapterError. They are plain integers here (rather than ir.Vid/ir.Eid) so
	// this package does not need to import ir.
	Vertex int
	Edge   int
}

var _ error = (*Error)(nil)

// NewError builds an Error from arguments, in the style of graphql.NewError: pass whichever of
// Op, ErrKind and error you have; an omitted ErrKind is propagated from a wrapped *Error, if any.
func NewError(message string, args ...interface{}) *Error {
	e := &Error{Message: message}
	for _, arg := range args {
		switch arg := arg.(type) {
		case error:
			e.Err = arg
		case Op:
			e.Op = arg
		case ErrKind:
			e.Kind = arg
		default:
			panic(fmt.Sprintf("trustfall.NewError: unsupported argument type %T", arg))
		}
	}

	if prev, ok := e.Err.(*Error); ok {
		if e.Kind == ErrKindOther {
			e.Kind = prev.Kind
		}
	}

	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op == "" && e.Kind == ErrKindOther && e.Err == nil {
		return e.Message
	}

	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Kind != ErrKindOther {
		msg = fmt.Sprintf("%s (%s)", msg, e.Kind)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap supports errors.Is/errors.As over the wrapped error chain.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf walks the error chain looking for an *Error and returns its Kind, or ErrKindOther if
// none is found.
func KindOf(err error) ErrKind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind != ErrKindOther {
				return e.Kind
			}
			err = e.Err
			continue
		}
		break
	}
	return ErrKindOther
}
