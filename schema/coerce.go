package schema

import (
	"fmt"
	"strconv"

	"github.com/na2axl/jsondb-go/tools"
	"github.com/na2axl/jsondb-go/value"
)

// LinkResolver coerces v through the target column's own type and then
// searches the target table for a row whose column equals that coerced
// value, returning its link id. Implemented by the table store so that
// schema stays free of any storage dependency.
type LinkResolver interface {
	ResolveLink(targetTable, targetColumn string, v value.Value) (linkID string, err error)
}

// Coerce applies the write-time coercion rules for a single column. It is
// used for insert/replace values and for update's with() literals;
// where() literals are not passed through it.
func Coerce(v value.Value, col Column, resolver LinkResolver) (value.Value, error) {
	if v.IsNull() {
		if col.Default != nil {
			return Coerce(*col.Default, col, resolver)
		}
		if col.NotNull {
			return value.Null, tools.NotNullErr(col.Name)
		}
		return value.Null, nil
	}

	switch col.Type {
	case TypeInt:
		i, err := strconv.ParseInt(v.Text(), 10, 64)
		if err != nil {
			return value.Null, tools.BadTypeErr(col.Name, "int", err)
		}
		return value.Int(i), nil

	case TypeFloat:
		f, err := v.AsFloat()
		if err != nil {
			return value.Null, tools.BadTypeErr(col.Name, "float", err)
		}
		if col.HasMaxLength {
			scale := pow10(col.MaxLength)
			f = roundTo(f, scale)
		}
		return value.Float(f), nil

	case TypeString:
		s := v.Text()
		if col.HasMaxLength && len(s) > col.MaxLength {
			s = s[:col.MaxLength]
		}
		return value.Str(s), nil

	case TypeChar:
		s := v.Text()
		if s == "" {
			return value.Char(0), nil
		}
		return value.Char([]rune(s)[0]), nil

	case TypeBool:
		return value.Bool(v.Truthy()), nil

	case TypeArray:
		if v.Kind == value.KindArray {
			return v, nil
		}
		return value.Array([]value.Value{v}), nil

	case TypeLink:
		if resolver == nil {
			return value.Null, fmt.Errorf("link coercion requires a resolver")
		}
		linkID, err := resolver.ResolveLink(col.LinkTable, col.LinkColumn, v)
		if err != nil {
			return value.Null, tools.LinkMissErr(col.LinkTable, col.LinkColumn, v.Text())
		}
		return value.Str(linkID), nil
	}

	return value.Null, fmt.Errorf("unhandled column type %v", col.Type)
}

func pow10(n int) float64 {
	f := 1.0
	for i := 0; i < n; i++ {
		f *= 10
	}
	return f
}

func roundTo(f, scale float64) float64 {
	if scale <= 0 {
		return f
	}
	rounded := f * scale
	if rounded >= 0 {
		rounded += 0.5
	} else {
		rounded -= 0.5
	}
	return float64(int64(rounded)) / scale
}
