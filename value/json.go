package value

import (
	"encoding/json"
	"strconv"
	"strings"
)

const (
	arrayPrefix = "[array]["
	arraySep    = ":||:"
)

// MarshalJSON implements json.Marshaler following the wire encoding from the
// data model: ints/floats as JSON numbers, bools as JSON booleans, null as
// JSON null, and strings/chars/links/arrays as JSON strings (arrays tagged
// with the "[array][...]" marker).
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindInt:
		return json.Marshal(v.Int)
	case KindFloat:
		return json.Marshal(v.Float)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindArray:
		return json.Marshal(v.Text())
	default: // KindString, KindChar
		return json.Marshal(v.Text())
	}
}

// UnmarshalJSON implements json.Unmarshaler. Storage does not retain enough
// information to distinguish a char column from a string one (JSON has no
// char type), so both round-trip as KindString; column-level coercion
// re-derives the precise kind whenever it matters.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromAny(raw)
	return nil
}

func fromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Null
	case bool:
		return Bool(t)
	case float64:
		if t == float64(int64(t)) {
			return Int(int64(t))
		}
		return Float(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i)
		}
		f, _ := t.Float64()
		return Float(f)
	case string:
		if strings.HasPrefix(t, arrayPrefix) && strings.HasSuffix(t, "]") {
			inner := t[len(arrayPrefix) : len(t)-1]
			if inner == "" {
				return Array(nil)
			}
			parts := strings.Split(inner, arraySep)
			elems := make([]Value, len(parts))
			for i, p := range parts {
				elems[i] = ParseLiteral(p)
			}
			return Array(elems)
		}
		return Str(t)
	}
	return Null
}

// ParseLiteral parses the textual form produced by quote()/serialize() back
// into a Value, used when decoding array elements and raw JQL literals that
// were not otherwise typed.
func ParseLiteral(s string) Value {
	if s == "true" {
		return Bool(true)
	}
	if s == "false" {
		return Bool(false)
	}
	if s == "null" {
		return Null
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	return Str(s)
}
