package token

import (
	"strings"
	"testing"

	"github.com/Yaossg/porkchop/internal/diagnostic"
	"github.com/Yaossg/porkchop/internal/source"
)

func lex(t *testing.T, text string) []Token {
	t.Helper()
	diags := &diagnostic.List{}
	toks, err := New(source.New("test", text), diags).Lex()
	if err != nil {
		t.Fatalf("Lex(%q): %v", text, err)
	}
	return toks
}

func lexErr(t *testing.T, text string) error {
	t.Helper()
	diags := &diagnostic.List{}
	_, err := New(source.New("test", text), diags).Lex()
	if err == nil {
		t.Fatalf("Lex(%q) succeeded, want error", text)
	}
	return err
}

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func TestLexBasics(t *testing.T) {
	toks := lex(t, `let x = 42`)
	want := []Kind{KwLet, Identifier, Punct, IntLiteral, LineBreak, EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
	if toks[3].Value.Int != 42 {
		t.Errorf("literal value = %d, want 42", toks[3].Value.Int)
	}
}

// every successful lex ends in a synthetic linebreak then EOF (the
// lexer-totality property).
func TestLexTotality(t *testing.T) {
	for _, text := range []string{"x", "x\n", "# comment only", "", "a + b # trailing"} {
		toks := lex(t, text)
		if len(toks) == 0 || toks[len(toks)-1].Kind != EOF {
			t.Errorf("lex(%q) does not end in EOF", text)
		}
	}
}

func TestLexGreedyPunctuation(t *testing.T) {
	toks := lex(t, `a >>>= b >>> c >> d > e`)
	var puncts []string
	for _, tok := range toks {
		if tok.Kind == Punct {
			puncts = append(puncts, tok.Value.Lexeme)
		}
	}
	want := []string{">>>=", ">>>", ">>", ">"}
	if len(puncts) != len(want) {
		t.Fatalf("got %v, want %v", puncts, want)
	}
	for i := range want {
		if puncts[i] != want[i] {
			t.Errorf("punct %d = %q, want %q", i, puncts[i], want[i])
		}
	}
}

func TestLexNumbers(t *testing.T) {
	for _, tc := range []struct {
		text string
		want int64
	}{
		{"0", 0},
		{"1_000", 1000},
		{"0xff", 255},
		{"0XFF", 255},
		{"0o17", 15},
		{"0b1010", 10},
		{"0xdead_beef", 0xdeadbeef},
	} {
		toks := lex(t, tc.text)
		if toks[0].Kind != IntLiteral || toks[0].Value.Int != tc.want {
			t.Errorf("lex(%q) = %v (%d), want int %d", tc.text, toks[0].Kind, toks[0].Value.Int, tc.want)
		}
	}
	for _, tc := range []struct {
		text string
		want float64
	}{
		{"1.5", 1.5},
		{"2e3", 2000},
		{"1_0.2_5", 10.25},
		{"0x1p4", 16},
	} {
		toks := lex(t, tc.text)
		if toks[0].Kind != FloatLiteral || toks[0].Value.Float != tc.want {
			t.Errorf("lex(%q) = %v (%g), want float %g", tc.text, toks[0].Kind, toks[0].Value.Float, tc.want)
		}
	}
}

func TestLexNumberErrors(t *testing.T) {
	for _, text := range []string{
		"0777",                 // leading zero, ambiguous with octal
		"1_",                   // trailing separator
		"0b1.1",                // binary float
		"0o1.1",                // octal float
		"0x",                   // prefix with no digits
		"99999999999999999999", // out of 64-bit range
	} {
		lexErr(t, text)
	}
}

func TestLexCharAndString(t *testing.T) {
	toks := lex(t, `'a' '\n' '\x41' '世' "he\tllo" ""`)
	if toks[0].Value.Char != 'a' {
		t.Errorf("char 0 = %q", toks[0].Value.Char)
	}
	if toks[1].Value.Char != '\n' {
		t.Errorf("char 1 = %q", toks[1].Value.Char)
	}
	if toks[2].Value.Char != 'A' {
		t.Errorf("char 2 = %q", toks[2].Value.Char)
	}
	if toks[3].Value.Char != '世' {
		t.Errorf("char 3 = %q", toks[3].Value.Char)
	}
	if toks[4].Kind != StringLiteral || toks[4].Value.String != "he\tllo" {
		t.Errorf("string = %q", toks[4].Value.String)
	}
	if toks[5].Value.String != "" {
		t.Errorf("empty string = %q", toks[5].Value.String)
	}
}

func TestLexStringErrors(t *testing.T) {
	for _, text := range []string{
		`"unterminated`,
		`'x`,
		`''`,
		`"\q"`,
		`'\uD800'`, // surrogate
		`'ᄀ00'`,
	} {
		lexErr(t, text)
	}
}

func TestLexBrackets(t *testing.T) {
	lex(t, "([{}])")
	lex(t, "f(a[1], {b})")
	for _, text := range []string{"(]", "(", "][", "{)"} {
		err := lexErr(t, text)
		if !strings.Contains(err.Error(), "brace") && !strings.Contains(err.Error(), "bracket") && !strings.Contains(err.Error(), "stray") {
			t.Errorf("lex(%q) error %q does not mention brackets", text, err)
		}
	}
}

func TestLexStrayCharacters(t *testing.T) {
	for _, text := range []string{"a \\ b", "a\vb", "a\fb", "a\x00b"} {
		lexErr(t, text)
	}
}

func TestLexComments(t *testing.T) {
	toks := lex(t, "x # everything after is ignored ([{\ny")
	want := []Kind{Identifier, LineBreak, Identifier, LineBreak, EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLexUnicodeIdentifiers(t *testing.T) {
	toks := lex(t, "世界 = 1")
	if toks[0].Kind != Identifier || toks[0].Value.Lexeme != "世界" {
		t.Errorf("unicode identifier = %v %q", toks[0].Kind, toks[0].Value.Lexeme)
	}
}

// a diagnostic's segment must point inside the input (the other half of
// the lexer-totality property).
func TestLexErrorSegments(t *testing.T) {
	diags := &diagnostic.List{}
	buf := source.New("test", "let x = 0777")
	if _, err := New(buf, diags).Lex(); err == nil {
		t.Fatal("expected a diagnostic")
	}
	for _, d := range diags.Items() {
		if d.Segment == nil {
			t.Fatal("diagnostic without a segment")
		}
		if d.Segment.Start.Line != 1 || d.Segment.Start.Column < 0 || d.Segment.Start.Column >= 12 {
			t.Errorf("segment %+v lies outside the input", d.Segment)
		}
	}
}
