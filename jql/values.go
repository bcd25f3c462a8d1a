package jql

import (
	"strings"

	"github.com/na2axl/jsondb-go/value"
)

func strValue(s string) value.Value   { return value.Str(s) }
func boolValue(b bool) value.Value    { return value.Bool(b) }
func intValue(i int64) value.Value    { return value.Int(i) }
func floatValue(f float64) value.Value { return value.Float(f) }
func nullValue() value.Value          { return value.Null }

func boolFromMarker(text string) value.Value {
	return value.Bool(text == "1")
}

// arrayFromSerialized parses the "[array][v1:||:v2:||:...]" wire form the
// ARRAY bind kind produces (via Quote + Value.Text serialization).
func arrayFromSerialized(s string) value.Value {
	const prefix, suffix = "[array][", "]"
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) {
		return value.Array(nil)
	}
	inner := s[len(prefix) : len(s)-len(suffix)]
	if inner == "" {
		return value.Array(nil)
	}
	parts := strings.Split(inner, ":||:")
	elems := make([]value.Value, len(parts))
	for i, p := range parts {
		elems[i] = value.ParseLiteral(p)
	}
	return value.Array(elems)
}
