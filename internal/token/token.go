// Package token defines the flat token stream produced by the lexer:
// keywords, identifiers, numeric/char/string literals, punctuation and a
// synthetic end-of-line terminator.
package token

import "github.com/Yaossg/porkchop/internal/source"

// Kind partitions tokens into keywords, identifiers, literals,
// punctuation and terminators.
type Kind int

const (
	EOF Kind = iota
	LineBreak

	Identifier
	IntLiteral
	FloatLiteral
	CharLiteral
	StringLiteral

	// keywords
	KwLet
	KwFn
	KwIf
	KwElse
	KwWhile
	KwFor
	KwIn
	KwIs
	KwAs
	KwReturn
	KwBreak
	KwYield
	KwSizeof
	KwTrue
	KwFalse

	// scalar type keywords
	KwAny
	KwNone
	KwNever
	KwBool
	KwByte
	KwInt
	KwFloat
	KwChar
	KwString

	// punctuation (value holds the exact lexeme, e.g. ">>>=")
	Punct
)

var keywords = map[string]Kind{
	"let": KwLet, "fn": KwFn, "if": KwIf, "else": KwElse,
	"while": KwWhile, "for": KwFor, "in": KwIn, "is": KwIs, "as": KwAs,
	"return": KwReturn, "break": KwBreak, "yield": KwYield, "sizeof": KwSizeof,
	"true": KwTrue, "false": KwFalse,
	"any": KwAny, "none": KwNone, "never": KwNever, "bool": KwBool,
	"byte": KwByte, "int": KwInt, "float": KwFloat, "char": KwChar, "string": KwString,
}

// Lookup returns the keyword Kind for name, or (Identifier, false) if name
// is not a keyword.
func Lookup(name string) (Kind, bool) {
	k, ok := keywords[name]
	if !ok {
		return Identifier, false
	}
	return k, true
}

// Punctuation table, longest lexemes first so the greediest match wins
// (">>>=" must be tried before ">>").
var Punctuation = []string{
	">>>=",
	"===", "!==", ">>>", "<<=", ">>=",
	"==", "!=", "<=", ">=", "&&", "||", "->", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>",
	"(", ")", "[", "]", "{", "}", ",", ":", ";", ".", "$", "@", "_",
	"=", "+", "-", "*", "/", "%", "&", "|", "^", "~", "<", ">", "!",
}

// Value is the tagged union carried by literal tokens: at most one field
// is meaningful, selected by the owning Token's Kind.
type Value struct {
	Int    int64
	Float  float64
	Char   rune
	String string
	Lexeme string // punctuation text, or the raw identifier/keyword spelling
}

// Token is (line, column, width, kind) plus its decoded Value.
type Token struct {
	Segment source.Segment
	Kind    Kind
	Value   Value
}

// Width reports how many display columns the token's source text spans on
// its (single) source line.
func (t Token) Width() int {
	if t.Segment.Start.Line != t.Segment.End.Line {
		return 0
	}
	return t.Segment.End.Column - t.Segment.Start.Column
}

func (k Kind) String() string {
	switch k {
	case EOF:
		return "<eof>"
	case LineBreak:
		return "<newline>"
	case Identifier:
		return "identifier"
	case IntLiteral:
		return "int literal"
	case FloatLiteral:
		return "float literal"
	case CharLiteral:
		return "char literal"
	case StringLiteral:
		return "string literal"
	case Punct:
		return "punctuation"
	default:
		for name, kind := range keywords {
			if kind == k {
				return "'" + name + "'"
			}
		}
		return "keyword"
	}
}
