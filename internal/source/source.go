// Package source holds the original program text as a sequence of logical
// lines and answers the column/width bookkeeping questions the lexer and
// diagnostics renderer need.
package source

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

const tabStop = 4

// Position locates a single character in the source: a 1-based line number
// and a 0-based column measured in display cells (after tab expansion).
type Position struct {
	Line   int
	Column int
}

// Segment is a half-open range of Positions, used to anchor diagnostics and
// cached on every expression node.
type Segment struct {
	Start Position
	End   Position
}

// Cover returns the smallest Segment containing both s and other.
func (s Segment) Cover(other Segment) Segment {
	start, end := s.Start, s.End
	if other.Start.Line < start.Line || (other.Start.Line == start.Line && other.Start.Column < start.Column) {
		start = other.Start
	}
	if other.End.Line > end.Line || (other.End.Line == end.Line && other.End.Column > end.Column) {
		end = other.End
	}
	return Segment{start, end}
}

// Buffer is the original program text, split at LF into logical lines.
// Lines do not retain their trailing '\n'.
type Buffer struct {
	Name  string
	Lines []string
}

// New splits text into logical lines. A trailing newline does not produce a
// spurious empty final line; any other blank line is preserved verbatim.
func New(name, text string) *Buffer {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return &Buffer{Name: name, Lines: lines}
}

// Line returns the text of the 1-based line n, or "" if out of range.
func (b *Buffer) Line(n int) string {
	if n < 1 || n > len(b.Lines) {
		return ""
	}
	return b.Lines[n-1]
}

// ColumnAt returns the display column (0-based, tab-expanded to 4-column
// stops) of the byteOffset-th byte into line n.
func ColumnAt(line string, byteOffset int) int {
	col := 0
	for i, r := range line {
		if i >= byteOffset {
			break
		}
		if r == '\t' {
			col += tabStop - col%tabStop
		} else {
			col += RuneWidth(r)
		}
	}
	return col
}

// RuneWidth returns the number of display cells a code point occupies:
// 0 for combining/zero-width marks, 2 for East-Asian wide/fullwidth code
// points, 1 otherwise. ASCII is handled without consulting the width
// tables at all.
func RuneWidth(r rune) int {
	if r < 0x80 {
		return 1
	}
	if unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Me, r) || unicode.Is(unicode.Cf, r) {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// CaretLine renders a marker line of spaces and '^' characters under the
// segment [fromCol, toCol) of the given already-tab-expanded line, for use
// by diagnostic renderers (outside this spec's scope, but the primitive
// lives here since it depends on the width table).
func CaretLine(fromCol, toCol int) string {
	if toCol <= fromCol {
		toCol = fromCol + 1
	}
	var sb strings.Builder
	sb.Grow(toCol)
	for i := 0; i < fromCol; i++ {
		sb.WriteByte(' ')
	}
	for i := fromCol; i < toCol; i++ {
		sb.WriteByte('^')
	}
	return sb.String()
}
