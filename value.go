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
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/trustfall-go/trustfall/jsonwriter"
)

// Kind identifies which variant a Value currently holds.
type Kind uint8

// Enumeration of Kind. These are exactly the Value variants named in the data model: Null,
// Int64, Uint64, Float64, Boolean, String, List, Enum.
const (
	KindNull Kind = iota
	KindInt64
	KindUint64
	KindFloat64
	KindBoolean
	KindString
	KindList
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInt64:
		return "Int64"
	case KindUint64:
		return "Uint64"
	case KindFloat64:
		return "Float64"
	case KindBoolean:
		return "Boolean"
	case KindString:
		return "String"
	case KindList:
		return "List"
	case KindEnum:
		return "Enum"
	}
	return "unknown kind"
}

// Value is the dynamically-typed payload that flows through property resolution, filters, tags
// and output projection. A Value is immutable once constructed; List values own a private copy
// of their elements so callers may not observe mutation through an aliased slice.
type Value struct {
	kind Kind
	i64  int64
	u64  uint64
	f64  float64
	b    bool
	s    string // also holds the Enum member name when kind == KindEnum
	list []Value
}

// Null is the singular null Value.
var Null = Value{kind: KindNull}

// Int64Value constructs a signed 64-bit integer Value.
func Int64Value(v int64) Value { return Value{kind: KindInt64, i64: v} }

// Uint64Value constructs an unsigned 64-bit integer Value.
func Uint64Value(v uint64) Value { return Value{kind: KindUint64, u64: v} }

// Float64Value constructs a floating point Value.
func Float64Value(v float64) Value { return Value{kind: KindFloat64, f64: v} }

// BooleanValue constructs a boolean Value.
func BooleanValue(v bool) Value { return Value{kind: KindBoolean, b: v} }

// StringValue constructs a string Value.
func StringValue(v string) Value { return Value{kind: KindString, s: v} }

// EnumValue constructs an enum member Value.
func EnumValue(member string) Value { return Value{kind: KindEnum, s: member} }

// ListValue constructs a list Value, copying the given elements.
func ListValue(elements ...Value) Value {
	cp := make([]Value, len(elements))
	copy(cp, elements)
	return Value{kind: KindList, list: cp}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v holds Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsInt64 returns the held int64 and true if v is KindInt64.
func (v Value) AsInt64() (int64, bool) {
	if v.kind != KindInt64 {
		return 0, false
	}
	return v.i64, true
}

// AsUint64 returns the held uint64 and true if v is KindUint64.
func (v Value) AsUint64() (uint64, bool) {
	if v.kind != KindUint64 {
		return 0, false
	}
	return v.u64, true
}

// AsFloat64 returns the held float64 and true if v is KindFloat64.
func (v Value) AsFloat64() (float64, bool) {
	if v.kind != KindFloat64 {
		return 0, false
	}
	return v.f64, true
}

// AsBoolean returns the held bool and true if v is KindBoolean.
func (v Value) AsBoolean() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.b, true
}

// AsString returns the held string and true if v is KindString or KindEnum.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString && v.kind != KindEnum {
		return "", false
	}
	return v.s, true
}

// AsList returns the held element slice and true if v is KindList. The returned slice must not
// be mutated by the caller.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// String renders v for diagnostics and trace output. It is not the JSON encoding; use
// MarshalJSONTo for that.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindInt64:
		return fmt.Sprintf("%d", v.i64)
	case KindUint64:
		return fmt.Sprintf("%d", v.u64)
	case KindFloat64:
		return fmt.Sprintf("%v", v.f64)
	case KindBoolean:
		return fmt.Sprintf("%v", v.b)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindEnum:
		return v.s
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "<invalid value>"
}

// isNaN reports whether v is the float64 NaN.
func (v Value) isNaN() bool {
	return v.kind == KindFloat64 && math.IsNaN(v.f64)
}

// Equals implements the equality rule from §4.2: Int64 and Uint64 compare numerically (a
// positive Int64 equals the equal Uint64); Float never equals an integer unless explicitly
// widened by the caller; NaN is never equal to anything, including itself.
func (v Value) Equals(other Value) bool {
	if v.isNaN() || other.isNaN() {
		return false
	}

	switch v.kind {
	case KindNull:
		return other.kind == KindNull
	case KindInt64:
		switch other.kind {
		case KindInt64:
			return v.i64 == other.i64
		case KindUint64:
			return v.i64 >= 0 && uint64(v.i64) == other.u64
		}
		return false
	case KindUint64:
		switch other.kind {
		case KindUint64:
			return v.u64 == other.u64
		case KindInt64:
			return other.i64 >= 0 && v.u64 == uint64(other.i64)
		}
		return false
	case KindFloat64:
		return other.kind == KindFloat64 && v.f64 == other.f64
	case KindBoolean:
		return other.kind == KindBoolean && v.b == other.b
	case KindString:
		return other.kind == KindString && v.s == other.s
	case KindEnum:
		return other.kind == KindEnum && v.s == other.s
	case KindList:
		if other.kind != KindList || len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equals(other.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders two Values for the relational filter operators. It returns (cmp, true) where
// cmp < 0, == 0 or > 0 mirrors v<other, v==other, v>other, or (0, false) if the two Values
// cannot be ordered against each other (mismatched kinds other than the integer widening below,
// or either side is NaN).
//
// Per §4.2, ordering across mixed integer signs uses widened integer arithmetic: comparing an
// Int64 against a Uint64 is well-defined because the source value remains Int64 and is compared
// as-is (a negative Int64 is always less than any Uint64).
func (v Value) Compare(other Value) (int, bool) {
	if v.isNaN() || other.isNaN() {
		return 0, false
	}

	switch v.kind {
	case KindInt64:
		switch other.kind {
		case KindInt64:
			return compareInt64(v.i64, other.i64), true
		case KindUint64:
			if v.i64 < 0 {
				return -1, true
			}
			return compareUint64(uint64(v.i64), other.u64), true
		}
	case KindUint64:
		switch other.kind {
		case KindUint64:
			return compareUint64(v.u64, other.u64), true
		case KindInt64:
			if other.i64 < 0 {
				return 1, true
			}
			return compareUint64(v.u64, uint64(other.i64)), true
		}
	case KindFloat64:
		if other.kind == KindFloat64 {
			return compareFloat64(v.f64, other.f64), true
		}
	case KindString:
		if other.kind == KindString {
			return strings.Compare(v.s, other.s), true
		}
	}
	return 0, false
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Contains implements the `contains` filter operator: v must be a list and reports whether any
// element of it equals needle.
func (v Value) Contains(needle Value) bool {
	if v.kind != KindList {
		return false
	}
	for _, e := range v.list {
		if e.Equals(needle) {
			return true
		}
	}
	return false
}

// OneOf implements the `one_of` filter operator: candidates must be a list and reports whether
// v equals one of its elements.
func (v Value) OneOf(candidates Value) bool {
	return candidates.Contains(v)
}

// HasPrefix, HasSuffix and HasSubstring implement the corresponding string filter operators.
// They return false (rather than erroring) if either side is not a string, matching the null
// policy of "comparisons against an incompatible operand never hold".
func (v Value) HasPrefix(prefix Value) bool {
	a, ok1 := v.AsString()
	b, ok2 := prefix.AsString()
	return ok1 && ok2 && strings.HasPrefix(a, b)
}

func (v Value) HasSuffix(suffix Value) bool {
	a, ok1 := v.AsString()
	b, ok2 := suffix.AsString()
	return ok1 && ok2 && strings.HasSuffix(a, b)
}

func (v Value) HasSubstring(substr Value) bool {
	a, ok1 := v.AsString()
	b, ok2 := substr.AsString()
	return ok1 && ok2 && strings.Contains(a, b)
}

// SortValues sorts values in place per Compare.
func SortValues(values []Value) {
	sort.SliceStable(values, func(i, j int) bool {
		cmp, ok := values[i].Compare(values[j])
		return ok && cmp < 0
	})
}

// MarshalJSONTo implements jsonwriter.ValueMarshaler, encoding v directly to the stream without
// going through reflection the way graphql/executor/result_marshaler.go encodes ResultNode
// trees.
func (v Value) MarshalJSONTo(stream *jsonwriter.Stream) error {
	switch v.kind {
	case KindNull:
		stream.WriteNil()
	case KindInt64:
		stream.WriteInt64(v.i64)
	case KindUint64:
		stream.WriteUint64(v.u64)
	case KindFloat64:
		stream.WriteFloat64(v.f64)
	case KindBoolean:
		stream.WriteBool(v.b)
	case KindString, KindEnum:
		stream.WriteString(v.s)
	case KindList:
		stream.WriteArrayStart()
		for i, e := range v.list {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteValue(e)
		}
		stream.WriteArrayEnd()
	}
	return stream.Error()
}

// RowJSON renders a result row as a JSON object, with field names sorted for a deterministic
// encoding, straight to a buffer via jsonwriter.Stream the same way
// graphql/executor/result_marshaler.go renders a ResultNode tree without reflection. It is used
// to render the content of a trace's ProduceQueryResult op and is otherwise available to any
// caller that wants a result row on the wire without going through encoding/json's reflection.
func RowJSON(row map[string]Value) (string, error) {
	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	stream := jsonwriter.NewStream(&buf)
	stream.WriteObjectStart()
	for i, name := range names {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(name)
		stream.WriteValue(row[name])
	}
	stream.WriteObjectEnd()
	if err := stream.Error(); err != nil {
		return "", err
	}
	if err := stream.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
