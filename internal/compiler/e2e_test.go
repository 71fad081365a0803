package compiler_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Yaossg/porkchop/internal/compiler"
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/vm"
)

// run compiles and executes a program, returning its stdout.
func run(t *testing.T, fuse bool, text string) string {
	t.Helper()
	in, mainIndex, err := compiler.Load(source.New("test", text), fuse, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var out bytes.Buffer
	in.SetOutput(&out)
	if _, err := in.Run(mainIndex); err != nil {
		t.Fatalf("Run: %v\noutput so far: %q", err, out.String())
	}
	return out.String()
}

// runErr compiles and executes a program expected to fault at runtime.
func runErr(t *testing.T, text string) error {
	t.Helper()
	in, mainIndex, err := compiler.Load(source.New("test", text), false, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var out bytes.Buffer
	in.SetOutput(&out)
	_, err = in.Run(mainIndex)
	if err == nil {
		t.Fatalf("Run succeeded, output %q", out.String())
	}
	return err
}

// end-to-end programs covering the whole pipeline, executed through both
// the plain and the fused instruction streams.
func TestScenarios(t *testing.T) {
	scenarios := []struct {
		name, src, want string
	}{
		{"hello", `println("hello")`, "hello\n"},
		{"arith", `let x = 2 + 3 * 4
println(i2s(x))`, "14\n"},
		{"list-for", `let xs = [1, 2, 3]
for x in xs { print(i2s(x)) }
println("")`, "123\n"},
		{"fact", `fn fact(n: int): int = if n <= 1 { 1 } else { n * fact(n - 1) }
println(i2s(fact(6)))`, "720\n"},
		{"dict", `let d = @[1: "a", 2: "b"]
println(d[2])`, "b\n"},
		{"generator", `fn gen(n: int): *int = {
	let i = 0
	while i < n {
		yield i
		i = i + 1
	}
	yield break
}
for v in gen(3) { print(i2s(v)) }
println("")`, "012\n"},
	}
	for _, fuse := range []bool{false, true} {
		for _, sc := range scenarios {
			got := run(t, fuse, sc.src)
			if got != sc.want {
				t.Errorf("%s (fuse=%v): output %q, want %q", sc.name, fuse, got, sc.want)
			}
		}
	}
}

func TestCastFailure(t *testing.T) {
	err := runErr(t, `let a: any = 1 as any
println(i2s(a as string as int))`)
	if !vm.IsRuntimeFault(err) {
		t.Fatalf("error %v is not a runtime fault", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "int") || !strings.Contains(msg, "string") || !strings.Contains(msg, "cast") {
		t.Errorf("fault %q does not mention the failed cast from int to string", msg)
	}
}

func TestDivisionByZero(t *testing.T) {
	err := runErr(t, `let x = 0
println(i2s(1 / x))`)
	if !strings.Contains(err.Error(), "division by zero") {
		t.Errorf("fault = %q", err)
	}
}

func TestRuntimeFaultAccretesCallContext(t *testing.T) {
	err := runErr(t, `fn boom(x: int): int = 1 / x
fn outer(x: int): int = boom(x)
println(i2s(outer(0)))`)
	if !strings.Contains(err.Error(), "division by zero") || !strings.Contains(err.Error(), "at func") {
		t.Errorf("fault = %q", err)
	}
}

func TestExitStatus(t *testing.T) {
	err := runErr(t, `println("before")
exit(3)
println("after")`)
	exit, ok := err.(*vm.ExitError)
	if !ok || exit.Code != 3 {
		t.Fatalf("error = %v, want ExitError{3}", err)
	}
}

func TestLambdaCaptures(t *testing.T) {
	got := run(t, false, `let n = 2
let addn = $n(x: int): int = x + n
println(i2s(addn(5)))`)
	if got != "7\n" {
		t.Errorf("output %q, want 7", got)
	}
}

func TestBindPartialApplication(t *testing.T) {
	got := run(t, false, `fn sub(a: int, b: int): int = a - b
let fromTen = (10).sub
println(i2s(fromTen(3)))`)
	if got != "7\n" {
		t.Errorf("output %q, want 7", got)
	}
}

func TestStringConcatStringifies(t *testing.T) {
	got := run(t, false, `println("x = " + 42 + ", f = " + 1.5 + ", b = " + true)`)
	if got != "x = 42, f = 1.5, b = true\n" {
		t.Errorf("output %q", got)
	}
}

func TestCompoundAssignment(t *testing.T) {
	got := run(t, false, `let x = 1
x += 4
x *= 2
x -= 3
println(i2s(x))`)
	if got != "7\n" {
		t.Errorf("output %q, want 7", got)
	}
}

func TestCollectionOps(t *testing.T) {
	got := run(t, false, `let s = %[1, 2, 2, 3]
s += 4
s -= 1
println(i2s(sizeof s))
let xs = [1]
xs += 2
println(i2s(sizeof xs))
if 2 in s { println("yes") } else { println("no") }`)
	if got != "3\n2\nyes\n" {
		t.Errorf("output %q", got)
	}
}

func TestIncDec(t *testing.T) {
	got := run(t, false, `let i = 5
++i
++i
--i
println(i2s(i))`)
	if got != "6\n" {
		t.Errorf("output %q, want 6", got)
	}
}

func TestWhileBreak(t *testing.T) {
	got := run(t, false, `let i = 0
while true {
	if i == 3 { break } else { _ }
	i = i + 1
}
println(i2s(i))`)
	if got != "3\n" {
		t.Errorf("output %q, want 3", got)
	}
}

func TestIsAndTypename(t *testing.T) {
	got := run(t, false, `let a: any = 42 as any
if a is int { println("int") } else { println("other") }
if a is string { println("string") } else { println("other") }
println(typename(a))`)
	if got != "int\nother\nint\n" {
		t.Errorf("output %q", got)
	}
}

func TestScalarCasts(t *testing.T) {
	got := run(t, false, `println(i2s(3.9 as int))
println(f2s(2 as float))
println(i2s('A' as int))
println(i2s((65 as char) as int))`)
	if got != "3\n2\n65\n65\n" {
		t.Errorf("output %q", got)
	}
}

func TestInvalidCharCast(t *testing.T) {
	err := runErr(t, `let big = 1114112
println(i2s((big as char) as int))`)
	if !strings.Contains(err.Error(), "char") {
		t.Errorf("fault = %q", err)
	}
}

func TestDictIteration(t *testing.T) {
	got := run(t, false, `let d = @[1: "a", 2: "b"]
for pair in d { print(i2s(pair[0]) + pair[1]) }
println("")`)
	if got != "1a2b\n" {
		t.Errorf("output %q", got)
	}
}

func TestIdentityVersusEquality(t *testing.T) {
	got := run(t, false, `let a = [1, 2]
let b = [1, 2]
if a == b { println("deep") } else { println("shallow") }
if a === b { println("same") } else { println("distinct") }
if a === a { println("self") } else { println("odd") }`)
	if got != "deep\ndistinct\nself\n" {
		t.Errorf("output %q", got)
	}
}

func TestStringBuiltins(t *testing.T) {
	got := run(t, false, `println(fromBytes(toBytes("hi")))
println(fromChars(toChars("héllo")))
println(i2s(s2i("42") + 1))`)
	if got != "hi\nhéllo\n43\n" {
		t.Errorf("output %q", got)
	}
}

func TestGCUnderAllocationPressure(t *testing.T) {
	// churn enough short-lived strings to force several collection cycles,
	// while a long-lived accumulator must survive them all
	got := run(t, false, `let keep = ["start"]
let i = 0
while i < 5000 {
	let junk = "x" + i2s(i)
	i = i + 1
}
gc()
keep += "end"
println(keep[0] + keep[1])`)
	if got != "startend\n" {
		t.Errorf("output %q", got)
	}
}

func TestGeneratorAbandonedMidway(t *testing.T) {
	got := run(t, false, `fn gen(n: int): *int = {
	let i = 0
	while i < n {
		yield i
		i = i + 1
	}
	yield break
}
for v in gen(1000) {
	if v == 2 { break } else { _ }
	print(i2s(v))
}
println("")`)
	if got != "01\n" {
		t.Errorf("output %q", got)
	}
}
