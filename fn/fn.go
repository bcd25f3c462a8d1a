// Package fn implements the scalar functions callable in field and value
// position from JQL (§4.6): sha1, md5, time, now, lowercase, uppercase,
// ucfirst, strlen.
package fn

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
	"unicode"

	"github.com/na2axl/jsondb-go/tools"
	"github.com/na2axl/jsondb-go/value"
)

// Names lists every recognized scalar function.
var Names = map[string]bool{
	"sha1": true, "md5": true, "time": true, "now": true,
	"lowercase": true, "uppercase": true, "ucfirst": true, "strlen": true,
}

// Call dispatches a scalar function by name.
func Call(name string, args []value.Value) (value.Value, error) {
	switch name {
	case "sha1":
		return withArity(name, args, 1, func(a []value.Value) value.Value {
			sum := sha1.Sum([]byte(a[0].Text()))
			return value.Str(hex.EncodeToString(sum[:]))
		})
	case "md5":
		return withArity(name, args, 1, func(a []value.Value) value.Value {
			sum := md5.Sum([]byte(a[0].Text()))
			return value.Str(hex.EncodeToString(sum[:]))
		})
	case "time":
		if len(args) != 0 {
			return value.Null, tools.FnArityErr(name, 0, len(args))
		}
		return value.Int(time.Now().UnixMilli()), nil
	case "now":
		if len(args) > 1 {
			return value.Null, tools.FnArityErr(name, 1, len(args))
		}
		format := "%Y-%m-%d %H:%M:%S"
		if len(args) == 1 {
			format = args[0].Text()
		}
		return value.Str(strftime(time.Now(), format)), nil
	case "lowercase":
		return withArity(name, args, 1, func(a []value.Value) value.Value {
			return value.Str(strings.ToLower(a[0].Text()))
		})
	case "uppercase":
		return withArity(name, args, 1, func(a []value.Value) value.Value {
			return value.Str(strings.ToUpper(a[0].Text()))
		})
	case "ucfirst":
		return withArity(name, args, 1, func(a []value.Value) value.Value {
			s := a[0].Text()
			if s == "" {
				return value.Str(s)
			}
			r := []rune(s)
			r[0] = unicode.ToUpper(r[0])
			return value.Str(string(r))
		})
	case "strlen":
		return withArity(name, args, 1, func(a []value.Value) value.Value {
			return value.Int(int64(len([]rune(a[0].Text()))))
		})
	}
	return value.Null, tools.UnknownFnErr(name)
}

func withArity(name string, args []value.Value, want int, f func([]value.Value) value.Value) (value.Value, error) {
	if len(args) != want {
		return value.Null, tools.FnArityErr(name, want, len(args))
	}
	return f(args), nil
}

var weekdayShort = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
var weekdayLong = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
var monthShort = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
var monthLong = [...]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}

// strftime renders t using the documented subset of strftime tokens.
func strftime(t time.Time, format string) string {
	var b strings.Builder
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' || i == len(runes)-1 {
			b.WriteRune(runes[i])
			continue
		}
		i++
		switch runes[i] {
		case 'a':
			b.WriteString(weekdayShort[t.Weekday()])
		case 'A':
			b.WriteString(weekdayLong[t.Weekday()])
		case 'd':
			b.WriteString(pad2(t.Day()))
		case 'm':
			b.WriteString(pad2(int(t.Month())))
		case 'e':
			b.WriteString(spacePad2(t.Day()))
		case 'w':
			b.WriteString(itoa(int(t.Weekday())))
		case 'W':
			_, week := t.ISOWeek()
			b.WriteString(pad2(week))
		case 'b':
			b.WriteString(monthShort[t.Month()-1])
		case 'B':
			b.WriteString(monthLong[t.Month()-1])
		case 'y':
			b.WriteString(pad2(t.Year() % 100))
		case 'Y':
			b.WriteString(itoa(t.Year()))
		case 'H':
			b.WriteString(pad2(t.Hour()))
		case 'k':
			b.WriteString(spacePad2(t.Hour()))
		case 'M':
			b.WriteString(pad2(t.Minute()))
		case 'S':
			b.WriteString(pad2(t.Second()))
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteRune(runes[i])
		}
	}
	return b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

func pad2(n int) string {
	s := itoa(n)
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

func spacePad2(n int) string {
	s := itoa(n)
	if len(s) < 2 {
		return " " + s
	}
	return s
}
