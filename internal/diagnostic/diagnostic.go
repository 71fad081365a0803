// Package diagnostic collects structured compile-time errors as a typed
// slice that itself implements error, capped at a maximum count, with no
// recovery attempted once raised.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/Yaossg/porkchop/internal/source"
)

// Category partitions diagnostics by cause.
type Category int

const (
	Lexical Category = iota
	Syntactic
	SemanticType
	SemanticResolution
	ConstantEval
)

func (c Category) String() string {
	switch c {
	case Lexical:
		return "lexical error"
	case Syntactic:
		return "syntax error"
	case SemanticType:
		return "type error"
	case SemanticResolution:
		return "resolution error"
	case ConstantEval:
		return "constant evaluation error"
	default:
		return "error"
	}
}

// Note is a secondary annotation attached to a Diagnostic, e.g. pointing at
// a previous declaration.
type Note struct {
	Message string
	Segment *source.Segment // nil if the note has no source location
}

// Diagnostic is a single compile-time error.
type Diagnostic struct {
	Category Category
	Message  string
	Segment  *source.Segment
	Notes    []Note
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	if d.Segment != nil {
		fmt.Fprintf(&sb, "%d:%d: ", d.Segment.Start.Line, d.Segment.Start.Column)
	}
	fmt.Fprintf(&sb, "%s: %s", d.Category, d.Message)
	for _, n := range d.Notes {
		sb.WriteString("\n\tnote: ")
		if n.Segment != nil {
			fmt.Fprintf(&sb, "%d:%d: ", n.Segment.Start.Line, n.Segment.Start.Column)
		}
		sb.WriteString(n.Message)
	}
	return sb.String()
}

// maxDiagnostics bounds a single compile's error list, mirroring asm's
// maxErrors so a malformed file can't produce unbounded noise.
const maxDiagnostics = 20

// List accumulates Diagnostics and itself satisfies error once non-empty.
type List struct {
	items []Diagnostic
}

// Add appends d unless the list has already reached maxDiagnostics.
func (l *List) Add(d Diagnostic) {
	if len(l.items) >= maxDiagnostics {
		return
	}
	l.items = append(l.items, d)
}

// Errorf is a convenience wrapper around Add for the common case of a
// message with no notes.
func (l *List) Errorf(cat Category, seg *source.Segment, format string, args ...interface{}) {
	l.Add(Diagnostic{Category: cat, Message: fmt.Sprintf(format, args...), Segment: seg})
}

// Full reports whether the list has hit maxDiagnostics and the caller
// should stop collecting more (but parsing itself never recovers either
// way: the compiler terminates after reporting).
func (l *List) Full() bool { return len(l.items) >= maxDiagnostics }

// Empty reports whether no diagnostics were collected.
func (l *List) Empty() bool { return len(l.items) == 0 }

// Items returns the collected diagnostics in order.
func (l *List) Items() []Diagnostic { return l.items }

// Err returns the list as an error, or nil if empty.
func (l *List) Err() error {
	if l.Empty() {
		return nil
	}
	return l
}

func (l *List) Error() string {
	lines := make([]string, len(l.items))
	for i, d := range l.items {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}
