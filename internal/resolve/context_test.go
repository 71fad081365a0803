package resolve

import (
	"testing"

	"github.com/Yaossg/porkchop/internal/types"
)

func TestDeclareLocalAndLookup(t *testing.T) {
	c := New(nil)
	x := c.DeclareLocal("x", types.Int)
	y := c.DeclareLocal("y", types.String)
	if x != 0 || y != 1 {
		t.Fatalf("local indices = %d, %d", x, y)
	}
	res := c.Lookup("x")
	if res.Kind != LocalVar || res.Index != 0 || !res.Type.Equals(types.Int) {
		t.Errorf("Lookup(x) = %+v", res)
	}
	if res := c.Lookup("nope"); res.Kind != NotFound {
		t.Errorf("Lookup(nope) = %+v", res)
	}
}

func TestShadowing(t *testing.T) {
	c := New(nil)
	outer := c.DeclareLocal("x", types.Int)
	c.PushScope()
	inner := c.DeclareLocal("x", types.String)
	if res := c.Lookup("x"); res.Index != inner || !res.Type.Equals(types.String) {
		t.Errorf("inner lookup = %+v", res)
	}
	c.PopScope()
	if res := c.Lookup("x"); res.Index != outer || !res.Type.Equals(types.Int) {
		t.Errorf("outer lookup after pop = %+v", res)
	}
	// the shadowed slot still occupies the flat local vector
	if n := len(c.LocalTypes()); n != 2 {
		t.Errorf("LocalTypes has %d entries, want 2", n)
	}
}

func TestUnderscoreNonBinding(t *testing.T) {
	c := New(nil)
	c.DeclareLocal("_", types.Int)
	if res := c.Lookup("_"); res.Kind != NotFound {
		t.Errorf("Lookup(_) = %+v, want NotFound", res)
	}
}

func TestForwardDeclaration(t *testing.T) {
	c := New(nil)
	c.DeclareFunc(&FuncDecl{Name: "f", Params: []types.Type{types.Int}, Return: types.Int, Index: 3})

	res := c.Lookup("f")
	if res.Kind != DeclaredFunc || res.Index != 3 {
		t.Fatalf("Lookup(f) = %+v", res)
	}
	ft, ok := res.Type.(types.FuncType)
	if !ok || !ft.Return.Equals(types.Int) {
		t.Fatalf("declared type = %v", res.Type)
	}

	decl, ok := c.DefineFunc("f")
	if !ok || decl.Index != 3 {
		t.Fatalf("DefineFunc = %+v, %v", decl, ok)
	}
	if res := c.Lookup("f"); res.Kind != DefinedFunc {
		t.Errorf("after definition, Lookup(f) = %+v", res)
	}
	if leaked := c.PopScope(); len(leaked) != 0 {
		t.Errorf("leaked decls = %v", leaked)
	}
}

// a declaration whose return type was never fixed cannot resolve (a
// recursive call without an explicit return type has nothing to type
// itself with).
func TestDeclarationWithoutReturn(t *testing.T) {
	c := New(nil)
	c.DeclareFunc(&FuncDecl{Name: "f", Index: 0})
	if res := c.Lookup("f"); res.Kind != NotFound {
		t.Errorf("Lookup of return-less declaration = %+v", res)
	}
	c.DefineFresh(&FuncDecl{Name: "g", Index: 1})
	if res := c.Lookup("g"); res.Kind != NotFound {
		t.Errorf("Lookup of return-less definition = %+v", res)
	}
}

func TestScopeExitReportsUndefined(t *testing.T) {
	c := New(nil)
	c.PushScope()
	c.DeclareFunc(&FuncDecl{Name: "ghost", Return: types.Int, Index: 0})
	leaked := c.PopScope()
	if len(leaked) != 1 || leaked[0] != "ghost" {
		t.Errorf("leaked = %v, want [ghost]", leaked)
	}
}

func TestParentFallback(t *testing.T) {
	parent := New(nil)
	parent.DeclareLocal("outer", types.Int)
	parent.DefineFresh(&FuncDecl{Name: "f", Return: types.None, Index: 7})

	child := New(parent)
	child.DeclareLocal("inner", types.Bool)

	if res := child.Lookup("inner"); res.Kind != LocalVar {
		t.Errorf("Lookup(inner) = %+v", res)
	}
	if res := child.Lookup("outer"); res.Kind != LocalVar || !res.Type.Equals(types.Int) {
		t.Errorf("Lookup(outer) through parent = %+v", res)
	}
	if res := child.Lookup("f"); res.Kind != DefinedFunc || res.Index != 7 {
		t.Errorf("Lookup(f) through parent = %+v", res)
	}
}
