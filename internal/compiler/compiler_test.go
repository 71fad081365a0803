package compiler

import (
	"strings"
	"testing"

	"github.com/Yaossg/porkchop/internal/emit"
	"github.com/Yaossg/porkchop/internal/source"
)

func compile(t *testing.T, text string) *emit.MemSink {
	t.Helper()
	mem := emit.NewMemSink(nil)
	if _, err := Compile(source.New("test", text), mem); err != nil {
		t.Fatalf("Compile(%q): %v", text, err)
	}
	return mem
}

func compileErr(t *testing.T, text, wantSubstr string) {
	t.Helper()
	mem := emit.NewMemSink(nil)
	_, err := Compile(source.New("test", text), mem)
	if err == nil {
		t.Fatalf("Compile(%q) succeeded, want error containing %q", text, wantSubstr)
	}
	if !strings.Contains(err.Error(), wantSubstr) {
		t.Errorf("Compile(%q) error %q does not contain %q", text, err, wantSubstr)
	}
}

func TestCompileTypeErrors(t *testing.T) {
	compileErr(t, `let x = 1 + "a" * 2`, "matched")
	compileErr(t, `let x = 1 + true`, "matched")
	compileErr(t, `let x: string = 42`, "cannot assign")
	compileErr(t, `if 1 { println("x") }`, "expected bool")
	compileErr(t, `let b = true < false`, "not defined for bool")
	compileErr(t, `let x = 1.5 & 2.5`, "integral")
	compileErr(t, `let x = "a" << 1`, "shift")
}

func TestCompileResolutionErrors(t *testing.T) {
	compileErr(t, `println(i2s(nope))`, "undefined name")
	compileErr(t, `break`, "outside a loop")
	compileErr(t, `fn f(x: int): int
println("done")`, "declared but never defined")
}

func TestCompileCastErrors(t *testing.T) {
	// STRING never converts to or from a numeric scalar
	compileErr(t, `let x = "1" as int`, "cannot cast")
	compileErr(t, `let s = 1 as string`, "cannot cast")
	compileErr(t, `let c = 1.5 as char`, "cannot cast")
}

func TestCompileCallErrors(t *testing.T) {
	compileErr(t, `fn f(x: int): int = x
println(i2s(f(1, 2)))`, "argument")
	compileErr(t, `fn f(x: int): int = x
println(i2s(f("a")))`, "cannot assign")
	compileErr(t, `let x = 1
x()`, "not callable")
}

func TestCompileRecursionNeedsReturnType(t *testing.T) {
	// recursion against an inferred return type has nothing to type itself
	// with
	compileErr(t, `fn f(n: int) = f(n)`, "undefined name")
	// with the return type declared it is fine
	compile(t, `fn f(n: int): int = if n < 1 { 0 } else { f(n - 1) }`)
}

func TestCompileForwardDeclaration(t *testing.T) {
	compile(t, `
fn isEven(n: int): bool
fn isOdd(n: int): bool = if n == 0 { false } else { isEven(n - 1) }
fn isEven(n: int): bool = if n == 0 { true } else { isOdd(n - 1) }
`)
	// a definition must match its declaration's prototype
	compileErr(t, `
fn f(x: int): int
fn f(x: string): int = 1
`, "forward declaration")
	compileErr(t, `
fn f(x: int): int
fn f(x: int): int = "nope"
`, "not assignable")
	// a forward declaration must carry its return type
	compileErr(t, `fn f(x: int)
fn f(x: int) = x`, "return type")
}

func TestCompileTupleIndex(t *testing.T) {
	compile(t, `let p = (1, "a")
println(p[1])`)
	compileErr(t, `let p = (1, "a")
let i = 1
println(p[i])`, "constant")
	compileErr(t, `let p = (1, "a")
println(p[2])`, "out of range")
}

func TestContinuumLayout(t *testing.T) {
	mem := compile(t, `
fn one(): int = 1
let f = $(x: int): int = x
println(i2s(one()))
`)
	// every continuum entry carries a prototype; externals (the leading
	// entries) have no code, compiled functions do
	if len(mem.Pool.Prototypes) != len(builtins)+3 { // + one, lambda, main
		t.Fatalf("prototype table has %d entries, want %d", len(mem.Pool.Prototypes), len(builtins)+3)
	}
	for i := range builtins {
		if i < len(mem.Funcs) && mem.Funcs[i].Code != nil {
			t.Errorf("external %d has a body", i)
		}
	}
	var compiled int
	for _, fn := range mem.Funcs {
		if fn.Code != nil {
			compiled++
		}
	}
	if compiled != 3 {
		t.Errorf("%d compiled bodies, want 3", compiled)
	}
}

func TestNeverIsRejectedAsValue(t *testing.T) {
	compileErr(t, `fn f(): int = {
	let x = return 1 == return 2
	x
}`, "never")
}
