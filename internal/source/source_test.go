package source

import "testing"

func TestNewSplitsLines(t *testing.T) {
	b := New("test", "a\nb\n\nc\n")
	want := []string{"a", "b", "", "c"}
	if len(b.Lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(b.Lines), len(want))
	}
	for i, w := range want {
		if b.Line(i+1) != w {
			t.Errorf("line %d = %q, want %q", i+1, b.Line(i+1), w)
		}
	}
	if b.Line(0) != "" || b.Line(5) != "" {
		t.Error("out-of-range lines should be empty")
	}
}

func TestColumnAt(t *testing.T) {
	for _, tc := range []struct {
		line   string
		offset int
		want   int
	}{
		{"abc", 0, 0},
		{"abc", 2, 2},
		{"\tx", 1, 4},     // tab expands to the next 4-column stop
		{"a\tx", 2, 4},    // tab after one column still lands on 4
		{"ab\tx", 3, 4},   // ...
		{"abcd\tx", 5, 8}, // full stop consumed, next one is 8
		{"\u4e16x", 3, 2}, // East-Asian wide rune spans two cells (3 bytes)
	} {
		if got := ColumnAt(tc.line, tc.offset); got != tc.want {
			t.Errorf("ColumnAt(%q, %d) = %d, want %d", tc.line, tc.offset, got, tc.want)
		}
	}
}

func TestRuneWidth(t *testing.T) {
	for _, tc := range []struct {
		r    rune
		want int
	}{
		{'a', 1},
		{' ', 1},
		{'\u00e9', 1}, // e-acute, narrow
		{'\u4e16', 2}, // CJK, East-Asian wide
		{'\uff57', 2}, // fullwidth latin w
		{'\u0301', 0}, // combining acute
	} {
		if got := RuneWidth(tc.r); got != tc.want {
			t.Errorf("RuneWidth(%q) = %d, want %d", tc.r, got, tc.want)
		}
	}
}

func TestSegmentCover(t *testing.T) {
	a := Segment{Start: Position{1, 4}, End: Position{1, 8}}
	b := Segment{Start: Position{1, 10}, End: Position{2, 3}}
	c := a.Cover(b)
	if c.Start != (Position{1, 4}) || c.End != (Position{2, 3}) {
		t.Errorf("Cover = %+v", c)
	}
	// cover is symmetric
	if d := b.Cover(a); d != c {
		t.Errorf("Cover not symmetric: %+v vs %+v", c, d)
	}
}

func TestCaretLine(t *testing.T) {
	if got := CaretLine(2, 5); got != "  ^^^" {
		t.Errorf("CaretLine(2, 5) = %q", got)
	}
	// a degenerate segment still produces one caret
	if got := CaretLine(3, 3); got != "   ^" {
		t.Errorf("CaretLine(3, 3) = %q", got)
	}
}
