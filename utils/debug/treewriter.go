// Package debug has helpers producing human readable diagnostic dumps.
package debug

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"
)

// TreeWriter accumulates indented tree, two spaces per level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{w: &strings.Builder{}}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes label with quoted value, empty value is left empty.
func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(":")
	if value != "" {
		tw.w.WriteByte(' ')
		tw.w.WriteString(strconv.Quote(value))
	}
	tw.w.WriteByte('\n')
}

// Node writes label and lets children write themselves one level deeper.
func (tw *TreeWriter) Node(depth int, label string, children func(depth int)) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(":\n")
	if children != nil {
		children(depth + 1)
	}
}

// Map writes entries of m in natural key order under label.
func (tw *TreeWriter) Map(depth int, label string, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))
	tw.Node(depth, label, func(depth int) {
		for _, k := range keys {
			tw.TextBlock(depth, k, m[k])
		}
	})
}
