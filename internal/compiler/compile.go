package compiler

import (
	"github.com/Yaossg/porkchop/internal/ast"
	"github.com/Yaossg/porkchop/internal/diagnostic"
	"github.com/Yaossg/porkchop/internal/emit"
	"github.com/Yaossg/porkchop/internal/resolve"
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/internal/token"
	"github.com/Yaossg/porkchop/internal/types"
)

// builtin is one entry of the external function table: name,
// parameter types, return type. Every builtin is pre-registered into the
// continuum before a single byte of source is parsed, so `name` resolves
// from statement one regardless where in the file it's first referenced.
type builtin struct {
	name   string
	params []types.Type
	ret    types.Type
}

var builtins = []builtin{
	{"print", []types.Type{types.String}, types.None},
	{"println", []types.Type{types.String}, types.None},
	{"readLine", nil, types.String},
	{"i2s", []types.Type{types.Int}, types.String},
	{"f2s", []types.Type{types.Float}, types.String},
	{"s2i", []types.Type{types.String}, types.Int},
	{"s2f", []types.Type{types.String}, types.Float},
	{"exit", []types.Type{types.Int}, types.Never},
	{"millis", nil, types.Int},
	{"nanos", nil, types.Int},
	{"getargs", nil, types.ListType{Element: types.String}},
	{"output", []types.Type{types.String}, types.None},
	{"input", []types.Type{types.String}, types.None},
	{"flush", nil, types.None},
	{"eof", nil, types.Bool},
	{"typename", []types.Type{types.Any}, types.String},
	{"gc", nil, types.None},
	{"toBytes", []types.Type{types.String}, types.ListType{Element: types.Byte}},
	{"toChars", []types.Type{types.String}, types.ListType{Element: types.Char}},
	{"fromBytes", []types.Type{types.ListType{Element: types.Byte}}, types.String},
	{"fromChars", []types.Type{types.ListType{Element: types.Char}}, types.String},
}

// Compiled is what internal/emit's sinks and the vm loader need out of one
// successful compile: the function continuum (for name->index bookkeeping
// elsewhere) and which index is the program's entry point.
type Compiled struct {
	Cont      *ast.Continuum
	MainIndex int
}

// Compile lexes, parses, resolves and emits src into asm, the whole
// pipeline glued together. src's top level is implicitly `main`'s
// body; there is no separate entry-point syntax.
func Compile(src *source.Buffer, asm emit.Assembler) (*Compiled, error) {
	diags := &diagnostic.List{}
	lex := token.New(src, diags)
	toks, err := lex.Lex()
	if err != nil {
		return nil, err
	}

	cont := ast.NewContinuum()
	globalCtx := resolve.New(nil)

	externalProtos := make([]types.FuncType, len(builtins))
	for i, b := range builtins {
		ref := &ast.FunctionReference{Kind: ast.FuncExternal, Name: b.name}
		idx := cont.Register(ref)
		globalCtx.DefineFresh(&resolve.FuncDecl{Name: b.name, Params: b.params, Return: b.ret, Index: idx})
		externalProtos[i] = types.FuncType{Params: b.params, Return: b.ret}
	}

	mainRef := &ast.FunctionReference{Kind: ast.FuncMain, Name: "main"}
	mainRef.Index = cont.Register(mainRef)
	mainDef := &ast.FunctionDefinition{Name: "main", Return: types.None}
	mainRef.Def = mainDef

	p := NewParser(toks, diags, cont)
	p.globalCtx = globalCtx
	mainCtx := resolve.New(globalCtx)
	p.funcs = append(p.funcs, &funcScope{ctx: mainCtx, def: mainDef, ref: mainRef})

	body := p.parseProgram()
	mainDef.Body = body
	mainDef.Return = inferReturn(p, body, mainDef.Returns, types.None)

	if leaked := globalCtx.PopScope(); len(leaked) > 0 {
		seg := toks[len(toks)-1].Segment
		for _, name := range leaked {
			diags.Errorf(diagnostic.SemanticResolution, &seg, "function %q is declared but never defined", name)
		}
	}

	if !diags.Empty() {
		return nil, diags.Err()
	}

	em := ast.NewEmitter(asm, cont)
	for i, ref := range cont.Refs {
		var proto types.FuncType
		switch {
		case ref.Def != nil:
			proto = ref.Def.Prototype()
		case i < len(externalProtos):
			proto = externalProtos[i]
		}
		protoIdx := asm.RegisterPrototype(proto)
		if ref.Def != nil {
			ast.EmitFunction(em, ref.Def, protoIdx)
		}
	}

	return &Compiled{Cont: cont, MainIndex: mainRef.Index}, nil
}
