package styles

import (
	"bufio"
	"io"
	"strconv"
)

// WriteCanonical writes stable serialization of description suitable for
// cache keys. Both description keys and state map entries keep their order,
// declaration and rule order of compiled output follows it.
func WriteCanonical(w io.Writer, d *Description) error {
	bw := bufio.NewWriter(w)
	writeCanonical(bw, d)
	return bw.Flush()
}

func writeCanonical(w *bufio.Writer, v any) {
	switch x := v.(type) {
	case nil:
		w.WriteString("null")
	case bool:
		w.WriteString(strconv.FormatBool(x))
	case float64:
		w.WriteString(formatNumber(x))
	case string:
		w.WriteString(strconv.Quote(x))
	case []any:
		w.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				w.WriteByte(',')
			}
			writeCanonical(w, e)
		}
		w.WriteByte(']')
	case *StateMap:
		w.WriteByte('<')
		if x.Extend {
			w.WriteString(ExtendKey + ";")
		}
		x.Each(func(key string, value any) {
			w.WriteString(strconv.Quote(key))
			w.WriteByte('=')
			writeCanonical(w, value)
			w.WriteByte(';')
		})
		w.WriteByte('>')
	case *Description:
		w.WriteByte('{')
		for _, k := range x.Keys() {
			value, _ := x.Get(k)
			w.WriteString(strconv.Quote(k))
			w.WriteByte(':')
			writeCanonical(w, value)
			w.WriteByte(';')
		}
		w.WriteByte('}')
	default:
		w.WriteString("?")
	}
}
