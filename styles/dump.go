package styles

import (
	"strconv"

	"stylec/utils/debug"
)

// Dump returns indented text representation of description for diagnostics.
func Dump(d *Description) string {
	tw := debug.NewTreeWriter()
	dumpDescription(tw, d, 0)
	return tw.String()
}

func dumpDescription(tw *debug.TreeWriter, d *Description, depth int) {
	d.Each(func(key string, value any) {
		dumpValue(tw, key, value, depth)
	})
}

func dumpValue(tw *debug.TreeWriter, label string, value any, depth int) {
	switch v := value.(type) {
	case nil:
		tw.Line(depth, "%s: <removed>", label)
	case string:
		tw.TextBlock(depth, label, v)
	case bool:
		tw.Line(depth, "%s: %t", label, v)
	case float64:
		tw.Line(depth, "%s: %s", label, strconv.FormatFloat(v, 'f', -1, 64))
	case []any:
		tw.Node(depth, label+" (zones)", func(depth int) {
			for i, e := range v {
				dumpValue(tw, strconv.Itoa(i), e, depth)
			}
		})
	case *StateMap:
		if v.Extend {
			label += " (extend)"
		}
		tw.Node(depth, label, func(depth int) {
			v.Each(func(state string, e any) {
				if state == "" {
					state = `""`
				}
				dumpValue(tw, state, e, depth)
			})
		})
	case *Description:
		tw.Node(depth, label, func(depth int) {
			dumpDescription(tw, v, depth)
		})
	default:
		tw.Line(depth, "%s: %v", label, v)
	}
}
