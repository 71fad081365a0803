// Package compiler glues internal/token, internal/types, internal/resolve,
// internal/ast and internal/emit into one recursive-descent parser and
// semantic analyser: a precedence-ladder expression parser
// where every node's type rule runs at construction time, diagnostics are
// collected rather than raised-and-stopped, and nested fn/lambda bodies
// reparse in a fresh child resolve.Context. The glue that turns a
// token.Lexer's stream into an ast.Continuum ready for internal/emit.
package compiler

import (
	"github.com/Yaossg/porkchop/internal/ast"
	"github.com/Yaossg/porkchop/internal/diagnostic"
	"github.com/Yaossg/porkchop/internal/resolve"
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/internal/token"
	"github.com/Yaossg/porkchop/internal/types"
)

// funcScope is the per-function parsing state: its resolve.Context, the
// ast.FunctionDefinition being filled in, and the declared return type (nil
// until fixed,'s "R may be omitted and inferred").
type funcScope struct {
	ctx     *resolve.Context
	def     *ast.FunctionDefinition
	ref     *ast.FunctionReference
	declRet types.Type // explicit return type, nil if to be inferred
}

// Parser walks one token stream, building the ast.Continuum as it resolves
// fn/lambda declarations.
type Parser struct {
	toks  []token.Token
	pos   int
	diags *diagnostic.List
	cont  *ast.Continuum

	// globalCtx holds only fn forward-declarations/definitions: every
	// function body parses its locals into its own fresh
	// resolve.Context with globalCtx as parent, so sibling/mutually
	// recursive fn names resolve everywhere while locals never leak across
	// function boundaries (lambdas close over outer values explicitly, via
	// their capture list, never ambiently).
	globalCtx *resolve.Context

	funcs     []*funcScope  // stack: current function is funcs[len(funcs)-1]
	loopHooks []*ast.Hook   // stack: innermost enclosing loop's break hook
}

// NewParser creates a Parser over toks, reporting into diags and
// registering functions into cont.
func NewParser(toks []token.Token, diags *diagnostic.List, cont *ast.Continuum) *Parser {
	return &Parser{toks: toks, diags: diags, cont: cont}
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF sentinel
	}
	return p.toks[p.pos]
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) atPunct(lexeme string) bool {
	t := p.cur()
	return t.Kind == token.Punct && t.Value.Lexeme == lexeme
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	// advance moves past exactly one token, LineBreak included; runs of
	// LineBreak are skipped only where a caller asks for it via skipBreaks
	// (expect/expectPunct and the block statement loops do).
	return t
}

func (p *Parser) skipBreaks() {
	for p.at(token.LineBreak) {
		p.advance()
	}
}

func (p *Parser) expectPunct(lexeme string) token.Token {
	p.skipBreaks()
	if p.atPunct(lexeme) {
		return p.advance()
	}
	p.errorf("expected '%s', got %s", lexeme, p.cur().Kind)
	return p.cur()
}

func (p *Parser) expect(k token.Kind) token.Token {
	p.skipBreaks()
	if p.at(k) {
		return p.advance()
	}
	p.errorf("expected %s, got %s", k, p.cur().Kind)
	return p.cur()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	seg := p.cur().Segment
	p.diags.Errorf(diagnostic.Syntactic, &seg, format, args...)
}

// current returns the innermost function scope being parsed.
func (p *Parser) current() *funcScope {
	return p.funcs[len(p.funcs)-1]
}

func (p *Parser) ctx() *resolve.Context { return p.current().ctx }

// declareLocal allocates a fresh local slot in both the resolver and the
// owning function's flat LocalTypes vector (the two must stay in lockstep,
// since LOAD/STORE operands index into LocalTypes directly).
func (p *Parser) declareLocal(name string, t types.Type) int {
	idx := p.ctx().DeclareLocal(name, t)
	def := p.current().def
	for len(def.LocalTypes) <= idx {
		def.LocalTypes = append(def.LocalTypes, t)
	}
	def.LocalTypes[idx] = t
	return idx
}

func cover(a, b source.Segment) source.Segment {
	return a.Cover(b)
}
