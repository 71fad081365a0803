package diagnostic

import (
	"strings"
	"testing"

	"github.com/Yaossg/porkchop/internal/source"
)

func TestListCollectsAndRenders(t *testing.T) {
	l := &List{}
	if !l.Empty() || l.Err() != nil {
		t.Fatal("fresh list should be empty")
	}
	seg := source.Segment{Start: source.Position{Line: 3, Column: 7}}
	l.Errorf(SemanticType, &seg, "cannot assign %s to %s", "int", "string")
	if l.Empty() {
		t.Fatal("list should not be empty")
	}
	msg := l.Err().Error()
	if !strings.Contains(msg, "3:7") || !strings.Contains(msg, "type error") || !strings.Contains(msg, "cannot assign int to string") {
		t.Errorf("rendered diagnostic = %q", msg)
	}
}

func TestNotesRender(t *testing.T) {
	seg := source.Segment{Start: source.Position{Line: 1, Column: 0}}
	noteSeg := source.Segment{Start: source.Position{Line: 5, Column: 2}}
	d := Diagnostic{
		Category: SemanticResolution,
		Message:  "duplicate definition",
		Segment:  &seg,
		Notes:    []Note{{Message: "previous definition here", Segment: &noteSeg}},
	}
	s := d.String()
	if !strings.Contains(s, "note: 5:2: previous definition here") {
		t.Errorf("note rendering = %q", s)
	}
}

func TestMaxDiagnosticsCap(t *testing.T) {
	l := &List{}
	for i := 0; i < maxDiagnostics*2; i++ {
		l.Errorf(Lexical, nil, "error %d", i)
	}
	if got := len(l.Items()); got != maxDiagnostics {
		t.Errorf("collected %d diagnostics, want cap %d", got, maxDiagnostics)
	}
	if !l.Full() {
		t.Error("list should report Full")
	}
}
