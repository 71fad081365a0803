package compiler

import (
	"github.com/Yaossg/porkchop/internal/ast"
	"github.com/Yaossg/porkchop/internal/diagnostic"
	"github.com/Yaossg/porkchop/internal/resolve"
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/internal/token"
	"github.com/Yaossg/porkchop/internal/types"
)

// parseProgram parses the whole source file as one implicit block: the
// program's top-level statements are `main`'s own body: scripts have no
// separate entry-point syntax, the file itself is main.
func (p *Parser) parseProgram() ast.Node {
	var stmts []ast.Node
	p.skipBreaks()
	for !p.at(token.EOF) {
		stmts = append(stmts, p.ParseExpr())
		if p.atPunct(";") {
			p.advance()
		}
		p.skipBreaks()
		if p.diags.Full() {
			break
		}
	}
	seg := p.cur().Segment
	if len(stmts) > 0 {
		seg = cover(stmts[0].Segment(), stmts[len(stmts)-1].Segment())
	}
	return ast.NewBlock(seg, stmts)
}

// parseBlock is `{ s0; s1; ...; sn }`, each statement just an expression
// (the language is expression-oriented throughout).
func (p *Parser) parseBlock() ast.Node {
	start := p.expectPunct("{")
	p.ctx().PushScope()
	var stmts []ast.Node
	p.skipBreaks()
	for !p.atPunct("}") && !p.at(token.EOF) {
		stmts = append(stmts, p.ParseExpr())
		if p.atPunct(";") {
			p.advance()
		}
		p.skipBreaks()
		if p.diags.Full() {
			break
		}
	}
	end := p.expectPunct("}")
	p.ctx().PopScope()
	return ast.NewBlock(cover(start.Segment, end.Segment), stmts)
}

// parseLet is `let name [: T] = value`.
func (p *Parser) parseLet() ast.Node {
	start := p.advance() // 'let'
	nameTok := p.expect(token.Identifier)
	name := nameTok.Value.Lexeme
	var declared types.Type
	if p.atPunct(":") {
		p.advance()
		declared = p.parseType()
	}
	p.expectPunct("=")
	value := p.ParseExpr()
	t := value.Type()
	if declared != nil {
		if !types.Assignable(declared, t) {
			p.typeErrorf(value.Segment(), "cannot assign %s to declared type %s", t, declared)
		}
		value = coerce(value, declared)
		t = declared
	}
	idx := p.declareLocal(name, t)
	return ast.NewStoreLocal(cover(start.Segment, value.Segment()), idx, value)
}

// parseIf is `if cond { then } [else (if ... | { ... })]`.
func (p *Parser) parseIf() ast.Node {
	start := p.advance() // 'if'
	cond := p.ParseExpr()
	p.requireBool(cond)
	then := p.parseBlock()
	var els ast.Node
	p.skipBreaks()
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.KwIf) {
			els = p.parseIf()
		} else {
			els = p.parseBlock()
		}
	}
	elseType := types.Type(types.None)
	if els != nil {
		elseType = els.Type()
	}
	t, err := types.EitherOf(then.Type(), elseType)
	if err != nil {
		p.typeErrorf(start.Segment, "if/else arms do not unify: %v", err)
		t = types.None
	}
	end := then.Segment()
	if els != nil {
		end = els.Segment()
	}
	return ast.NewIf(cover(start.Segment, end), t, cond, then, els)
}

// parseWhile is `while cond { body }`; the result type is NEVER only when
// cond is a constant-true and the body contains no break.
func (p *Parser) parseWhile() ast.Node {
	start := p.advance() // 'while'
	cond := p.ParseExpr()
	p.requireBool(cond)

	hook := &ast.Hook{}
	if c, ok := cond.ConstValue(); ok && c.Kind == ast.ConstBool && c.Bool {
		hook.HasConstTrue = true
	}
	p.loopHooks = append(p.loopHooks, hook)
	body := p.parseBlock()
	p.loopHooks = p.loopHooks[:len(p.loopHooks)-1]

	resultType := types.Type(types.None)
	if hook.HasConstTrue && len(hook.Breaks) == 0 {
		resultType = types.Never
	}
	hook.ResultType = resultType
	return ast.NewWhile(cover(start.Segment, body.Segment()), resultType, cond, body, hook)
}

// parseFor is `for name in iterable { body }`: the declarator is a plain
// identifier (a documented simplification, see DESIGN.md: nested-tuple
// patterns against a Dict's Tuple(K,V) element are not supported).
func (p *Parser) parseFor() ast.Node {
	start := p.advance() // 'for'
	nameTok := p.expect(token.Identifier)
	p.expect(token.KwIn)
	iterable := p.ParseExpr()
	elem, ok := types.ElementOf(iterable.Type())
	if !ok {
		p.typeErrorf(iterable.Segment(), "'for ... in' requires an iterable operand, got %s", iterable.Type())
		elem = types.Any
	}

	p.ctx().PushScope()
	iterLocal := p.declareLocal("$iter", types.IterType{Element: elem})
	patternLocal := p.declareLocal(nameTok.Value.Lexeme, elem)

	hook := &ast.Hook{ResultType: types.None}
	p.loopHooks = append(p.loopHooks, hook)
	body := p.parseBlock()
	p.loopHooks = p.loopHooks[:len(p.loopHooks)-1]
	p.ctx().PopScope()

	return ast.NewFor(cover(start.Segment, body.Segment()), iterLocal, patternLocal, iterable, body, hook)
}

// parseReturn is `return expr`; its value is registered against the
// enclosing function's Returns so the function's result type can later be
// unified across every return site plus the body's own trailing value.
func (p *Parser) parseReturn() ast.Node {
	start := p.advance() // 'return'
	value := p.ParseExpr()
	n := ast.NewReturn(cover(start.Segment, value.Segment()), value)
	def := p.current().def
	def.Returns = append(def.Returns, n)
	return n
}

// parseYield is `yield expr`, or the compound `yield break` idiom that
// ends a generator for good.
func (p *Parser) parseYield() ast.Node {
	start := p.advance() // 'yield'
	if p.at(token.KwBreak) {
		p.advance()
		return ast.NewYieldBreak(start.Segment)
	}
	value := p.ParseExpr()
	return ast.NewYield(cover(start.Segment, value.Segment()), value)
}

// inferReturn unifies a function's declared return type (if any) against
// its body's trailing value and every `return`'s operand, reporting a
// mismatch and otherwise returning the resolved type (R may be omitted
// and inferred).
func inferReturn(p *Parser, body ast.Node, returns []*ast.Return, declared types.Type) types.Type {
	t := body.Type()
	for _, r := range returns {
		u, err := types.EitherOf(t, r.Value.Type())
		if err != nil {
			p.typeErrorf(r.Segment(), "return type mismatch: %v", err)
			continue
		}
		t = u
	}
	if declared != nil {
		if !types.Assignable(declared, t) {
			p.typeErrorf(body.Segment(), "function body type %s is not assignable to declared return type %s", t, declared)
		}
		return declared
	}
	return t
}

// parseFnDecl is `fn name(p0: T0, ...) [: R] [= body]`: with
// no body it is a forward declaration enabling later mutual recursion; with
// a body it either fulfils a prior forward declaration or defines a fresh
// function. Either way the function is registered once, immediately, in
// the shared Continuum, so its Index is stable regardless of parse order.
func (p *Parser) parseFnDecl() ast.Node {
	start := p.advance() // 'fn'
	nameTok := p.expect(token.Identifier)
	name := nameTok.Value.Lexeme

	p.expectPunct("(")
	var paramNames []string
	var paramTypes []types.Type
	for !p.atPunct(")") {
		pn := p.expect(token.Identifier)
		p.expectPunct(":")
		pt := p.parseType()
		paramNames = append(paramNames, pn.Value.Lexeme)
		paramTypes = append(paramTypes, pt)
		if p.atPunct(",") {
			p.advance()
		} else {
			break
		}
	}
	closeParen := p.expectPunct(")")

	var declRet types.Type
	if p.atPunct(":") {
		p.advance()
		declRet = p.parseType()
	}

	if !p.atPunct("=") {
		// pure forward declaration: no body yet.
		if declRet == nil {
			p.errorf("return type of declared function is missing")
		}
		ref := &ast.FunctionReference{Kind: ast.FuncNamed, Name: name}
		idx := p.cont.Register(ref)
		p.globalCtx.DeclareFunc(&resolve.FuncDecl{Name: name, Params: paramTypes, Return: declRet, Index: idx})
		return ast.NewFunctionDecl(cover(start.Segment, closeParen.Segment), ref)
	}
	p.advance() // '='

	var fnDecl *resolve.FuncDecl
	var ref *ast.FunctionReference
	var declaredR types.Type // the forward declaration's promised return, if any
	if existing, ok := p.globalCtx.DefineFunc(name); ok {
		fnDecl = existing
		declaredR = existing.Return
		if len(existing.Params) != len(paramTypes) {
			p.errorf("definition of %q does not match its forward declaration's parameter count", name)
		} else {
			for i := range paramTypes {
				if !existing.Params[i].Equals(paramTypes[i]) {
					p.typeErrorf(closeParen.Segment, "parameter %d of %q does not match its forward declaration: %s vs %s", i, name, paramTypes[i], existing.Params[i])
				}
			}
		}
		if declRet == nil {
			declRet = declaredR
		}
		ref = p.cont.Refs[existing.Index]
	} else {
		ref = &ast.FunctionReference{Kind: ast.FuncNamed, Name: name}
		idx := p.cont.Register(ref)
		fnDecl = &resolve.FuncDecl{Name: name, Params: paramTypes, Return: declRet, Index: idx}
		p.globalCtx.DefineFresh(fnDecl)
	}

	def := &ast.FunctionDefinition{Name: name, ParamNames: paramNames, ParamTypes: paramTypes, Return: declRet}
	ref.Def = def

	childCtx := resolve.New(p.globalCtx)
	for i, pn := range paramNames {
		childCtx.DeclareLocal(pn, paramTypes[i])
		def.LocalTypes = append(def.LocalTypes, paramTypes[i])
	}
	p.funcs = append(p.funcs, &funcScope{ctx: childCtx, def: def, ref: ref, declRet: declRet})
	p.skipBreaks()
	body := p.ParseExpr() // a `{...}` block or any single expression
	p.funcs = p.funcs[:len(p.funcs)-1]

	def.Body = body
	actual := inferReturn(p, body, def.Returns, declRet)
	if declaredR != nil && !actual.Equals(declaredR) {
		p.typeErrorf(body.Segment(), "definition of %q returns %s but its declaration promised %s", name, actual, declaredR)
		actual = declaredR
	}
	def.Return = actual
	fnDecl.Return = actual

	return ast.NewFunctionDecl(cover(start.Segment, body.Segment()), ref)
}

// parseLambda is `$capture0, capture1(p0: T0, ...) [: R] = body`:
// captures are plain identifiers resolved in the *enclosing*
// context right here, before the lambda's own fresh context is entered;
// a lambda never ambiently sees outer locals, only what it explicitly
// captures, exactly like a named fn.
func (p *Parser) parseLambda() ast.Node {
	start := p.advance() // '$'

	var captureNames []string
	for p.at(token.Identifier) {
		captureNames = append(captureNames, p.advance().Value.Lexeme)
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}

	var captureValues []ast.Node
	var captureTypes []types.Type
	for _, name := range captureNames {
		n := p.resolveCaptureIdent(start.Segment, name)
		captureValues = append(captureValues, n)
		captureTypes = append(captureTypes, n.Type())
	}

	p.expectPunct("(")
	var paramNames []string
	var paramTypes []types.Type
	for !p.atPunct(")") {
		pn := p.expect(token.Identifier)
		p.expectPunct(":")
		pt := p.parseType()
		paramNames = append(paramNames, pn.Value.Lexeme)
		paramTypes = append(paramTypes, pt)
		if p.atPunct(",") {
			p.advance()
		} else {
			break
		}
	}
	p.expectPunct(")")

	var declRet types.Type
	if p.atPunct(":") {
		p.advance()
		declRet = p.parseType()
	}
	p.expectPunct("=")

	ref := &ast.FunctionReference{Kind: ast.FuncLambda}
	p.cont.Register(ref)
	def := &ast.FunctionDefinition{ParamNames: paramNames, ParamTypes: paramTypes, CaptureTypes: captureTypes, Return: declRet}
	ref.Def = def

	childCtx := resolve.New(p.globalCtx)
	for i, name := range captureNames {
		childCtx.DeclareLocal(name, captureTypes[i])
		def.LocalTypes = append(def.LocalTypes, captureTypes[i])
	}
	for i, pn := range paramNames {
		childCtx.DeclareLocal(pn, paramTypes[i])
		def.LocalTypes = append(def.LocalTypes, paramTypes[i])
	}
	p.funcs = append(p.funcs, &funcScope{ctx: childCtx, def: def, ref: ref, declRet: declRet})
	p.skipBreaks()
	body := p.ParseExpr()
	p.funcs = p.funcs[:len(p.funcs)-1]

	def.Body = body
	actual := inferReturn(p, body, def.Returns, declRet)
	def.Return = actual

	return ast.NewLambda(cover(start.Segment, body.Segment()), def.VisibleType(), ref, captureValues)
}

// resolveCaptureIdent looks name up in the enclosing context (the one
// active right before entering the lambda's own), the same way any other
// identifier resolves.
func (p *Parser) resolveCaptureIdent(seg source.Segment, name string) ast.Node {
	res := p.ctx().Lookup(name)
	switch res.Kind {
	case resolve.LocalVar:
		return ast.NewLocalRef(seg, res.Index, res.Type, name)
	case resolve.DeclaredFunc, resolve.DefinedFunc:
		return ast.NewFuncRef(seg, res.Index, res.Type, name)
	default:
		p.diags.Errorf(diagnostic.SemanticResolution, &seg, "undefined capture %q", name)
		return ast.NewDiscard(seg)
	}
}
