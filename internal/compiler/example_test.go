package compiler_test

import (
	"os"

	"github.com/Yaossg/porkchop/internal/compiler"
	"github.com/Yaossg/porkchop/internal/emit"
	"github.com/Yaossg/porkchop/internal/source"
)

// Compile a tiny script and run it on a fresh VM instance.
func Example() {
	src := source.New("fib.pk", `
fn fib(n: int): int = if n < 2 { n } else { fib(n - 1) + fib(n - 2) }
let i = 0
while i < 8 {
	print(i2s(fib(i)) + " ")
	i = i + 1
}
println("")
`)
	in, mainIndex, err := compiler.Load(src, false, nil)
	if err != nil {
		panic(err)
	}
	if _, err := in.Run(mainIndex); err != nil {
		panic(err)
	}

	// Output:
	// 0 1 1 2 3 5 8 13
}

// The same compilation can target the textual assembly form instead of the
// interpreter.
func Example_textAssembly() {
	sink := emit.NewTextSink(nil)
	if _, err := compiler.Compile(source.New("hello.pk", `println("hello")`), sink); err != nil {
		panic(err)
	}
	if err := sink.Write(os.Stdout); err != nil {
		panic(err)
	}

	// Output:
	// string 5 68656c6c6f
	// func $s:v
	// func $s:v
	// func $:s
	// func $i:s
	// func $f:s
	// func $s:i
	// func $s:f
	// func $i:n
	// func $:i
	// func $:i
	// func $:[s
	// func $s:v
	// func $s:v
	// func $:v
	// func $:b
	// func $a:s
	// func $:v
	// func $s:[y
	// func $s:[c
	// func $[y:s
	// func $[c:s
	// func $:v
	// (
	// sconst 0
	// fconst 1
	// call
	// return
	// )
}
