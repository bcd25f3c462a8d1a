// Package schema defines the per-column schema and the table document shape
// described in the engine's data model, and implements the coercion rules
// values go through on write and on literal comparison.
package schema

import (
	"strings"

	"github.com/na2axl/jsondb-go/value"
)

// ColType identifies a column's declared storage type.
type ColType int

const (
	TypeInt ColType = iota
	TypeFloat
	TypeString
	TypeChar
	TypeBool
	TypeArray
	TypeLink
)

// ParseColType maps a schema "type" string to a ColType. Link types are
// written "link(table.column)" and are recognized by prefix.
func ParseColType(raw string) (ColType, string, string, error) {
	switch strings.ToLower(raw) {
	case "int", "integer", "number":
		return TypeInt, "", "", nil
	case "decimal", "float":
		return TypeFloat, "", "", nil
	case "string":
		return TypeString, "", "", nil
	case "char":
		return TypeChar, "", "", nil
	case "bool", "boolean":
		return TypeBool, "", "", nil
	case "array":
		return TypeArray, "", "", nil
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "link(") && strings.HasSuffix(lower, ")") {
		ref := raw[len("link(") : len(raw)-1]
		dot := strings.LastIndex(ref, ".")
		if dot < 0 {
			return 0, "", "", errBadLinkSpec(raw)
		}
		return TypeLink, ref[:dot], ref[dot+1:], nil
	}
	return 0, "", "", errBadLinkSpec(raw)
}

func errBadLinkSpec(raw string) error {
	return &UnknownTypeError{Raw: raw}
}

// UnknownTypeError reports a column "type" string the engine does not recognize.
type UnknownTypeError struct{ Raw string }

func (e *UnknownTypeError) Error() string { return "unknown column type: " + e.Raw }

// String renders the ColType the way it appears in a table document.
func (t ColType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeChar:
		return "char"
	case TypeBool:
		return "bool"
	case TypeArray:
		return "array"
	case TypeLink:
		return "link"
	}
	return "unknown"
}

// Column is a single column's schema entry from a table document's
// "properties" map.
type Column struct {
	Name          string
	Type          ColType
	LinkTable     string // set when Type == TypeLink
	LinkColumn    string // set when Type == TypeLink
	Default       *value.Value
	MaxLength     int
	HasMaxLength  bool
	NotNull       bool
	AutoIncrement bool
	PrimaryKey    bool
	UniqueKey     bool
}

// Normalize applies the invariants from the data model: auto_increment
// implies unique_key + not_null + int; primary_key/unique_key imply not_null.
func (c *Column) Normalize() {
	if c.AutoIncrement {
		c.UniqueKey = true
		c.NotNull = true
		c.Type = TypeInt
	}
	if c.PrimaryKey || c.UniqueKey {
		c.NotNull = true
	}
}
