// Package debug has helpers to render internal structures for manual
// inspection.
package debug

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultTextLimit is the number of runes TextBlock shows before cutting the
// value.
const DefaultTextLimit = 120

// TreeWriter renders indented outline, one node per line.
type TreeWriter struct {
	b *strings.Builder
	// TextLimit caps quoted values written by TextBlock, zero means no limit.
	TextLimit int
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{b: &strings.Builder{}, TextLimit: DefaultTextLimit}
}

func (tw *TreeWriter) String() string {
	return tw.b.String()
}

func (tw *TreeWriter) indent(depth int) {
	tw.b.WriteString(strings.Repeat("  ", max(depth, 0)))
}

// Line writes formatted node at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.b, format, args...)
	tw.b.WriteByte('\n')
}

// TextBlock writes labeled text value quoted, so control characters and line
// breaks stay visible. Values longer than TextLimit are cut.
func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.b.WriteString(label)
	tw.b.WriteString(": ")
	tw.b.WriteString(tw.quote(value))
	tw.b.WriteByte('\n')
}

func (tw *TreeWriter) quote(value string) string {
	if value == "" {
		return `""`
	}
	n := utf8.RuneCountInString(value)
	if tw.TextLimit <= 0 || n <= tw.TextLimit {
		return strconv.Quote(value)
	}
	cut, left := value, tw.TextLimit
	for i := range value {
		if left == 0 {
			cut = value[:i]
			break
		}
		left--
	}
	return strconv.Quote(cut) + fmt.Sprintf("... (%d more runes)", n-tw.TextLimit)
}
