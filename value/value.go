// Package value implements the tagged value type shared by the JQL parser,
// the executor and table storage. A Value replaces the duck-typed rows of
// the original implementation with an explicit sum type (see the "Duck-typed
// rows" note in the design notes): every column, literal and function result
// flows through here.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindChar
	KindBool
	KindArray
)

// Value is a tagged union: exactly one of the typed fields is meaningful,
// selected by Kind. The zero Value is Null.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
	Char  rune
	Bool  bool
	Array []Value
}

// Null is the canonical null value.
var Null = Value{Kind: KindNull}

func Int(i int64) Value        { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value    { return Value{Kind: KindFloat, Float: f} }
func Str(s string) Value       { return Value{Kind: KindString, Str: s} }
func Char(r rune) Value        { return Value{Kind: KindChar, Char: r} }
func Bool(b bool) Value        { return Value{Kind: KindBool, Bool: b} }
func Array(vs []Value) Value   { return Value{Kind: KindArray, Array: vs} }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Text renders v in its textual form, the representation used by coercion,
// hashing and string-returning scalar functions.
func (v Value) Text() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindString:
		return v.Str
	case KindChar:
		return string(v.Char)
	case KindBool:
		if v.Bool {
			return "1"
		}
		return "0"
	case KindArray:
		parts := make([]string, len(v.Array))
		for i, e := range v.Array {
			parts[i] = e.Text()
		}
		return "[array][" + strings.Join(parts, ":||:") + "]"
	}
	return ""
}

// Truthy applies the bool|boolean coercion rule: non-empty / non-zero.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindString:
		return v.Str != ""
	case KindChar:
		return v.Char != 0
	case KindBool:
		return v.Bool
	case KindArray:
		return len(v.Array) > 0
	}
	return false
}

// AsFloat returns the numeric interpretation of v, used by the %= / %!
// divisibility operators and by decimal coercion.
func (v Value) AsFloat() (float64, error) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), nil
	case KindFloat:
		return v.Float, nil
	case KindBool:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, fmt.Errorf("not numeric: %q", v.Str)
		}
		return f, nil
	case KindNull:
		return 0, nil
	}
	return 0, fmt.Errorf("value of kind %d is not numeric", v.Kind)
}

// Equal compares two values by their textual form, which is how JQL compares
// mixed-kind operands (e.g. a string column against an int literal).
func Equal(a, b Value) bool {
	if a.Kind == KindNull || b.Kind == KindNull {
		return a.Kind == b.Kind
	}
	return a.Text() == b.Text()
}

// Compare orders two values, preferring numeric comparison when both sides
// parse as numbers and falling back to lexical comparison of their textual
// form otherwise. Used by <, <=, >, >= and by order().
func Compare(a, b Value) int {
	af, aerr := a.AsFloat()
	bf, berr := b.AsFloat()
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.Text(), b.Text())
}

// String implements fmt.Stringer for debugging and logging.
func (v Value) String() string {
	if v.IsNull() {
		return "null"
	}
	return v.Text()
}
