package cache

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// NullToken stands in for an absent parameter value. A real value equal to "null"
// produces the same key as an absent one.
const NullToken = "null"

const keySeparator = ':'

// Param is one named, possibly absent, key parameter.
type Param struct {
	Name  string
	Value any
}

// Arg returns a Param. A nil value of any nilable kind (pointer, interface, slice,
// map, channel or func) counts as absent. An empty but non-nil slice does not.
func Arg(name string, value any) Param {
	return Param{Name: name, Value: value}
}

// BuildKey composes a cache key from a prefix and an ordered parameter list. The
// order is part of the key: callers keep a fixed parameter order per call site.
// Separators inside values are escaped, so distinct value sequences never collide.
func BuildKey(prefix string, params ...Param) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	for _, p := range params {
		sb.WriteByte(keySeparator)
		sb.WriteString(p.Name)
		sb.WriteByte('=')
		writeEscaped(&sb, formatValue(p.Value))
	}
	return sb.String()
}

func writeEscaped(sb *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == keySeparator || c == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
}

func formatValue(v any) string {
	if v == nil {
		return NullToken
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return NullToken
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		if rv.IsNil() {
			return NullToken
		}
	}
	switch val := rv.Interface().(type) {
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
