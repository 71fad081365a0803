// Command porkchop compiles and runs a Porkchop source file:
//
//	porkchop script.pk [args...]
//
// With -S or -c the compiler stops after emitting the textual or binary
// module form instead of running it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/Yaossg/porkchop/internal/compiler"
	"github.com/Yaossg/porkchop/internal/emit"
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/vm"
)

var (
	emitText bool
	emitBin  string
	fuse     bool
)

func main() {
	flag.BoolVar(&emitText, "S", false, "emit textual assembly to stdout instead of running")
	flag.StringVar(&emitBin, "c", "", "emit a binary module to `file` instead of running")
	flag.BoolVar(&fuse, "fuse", true, "enable superinstruction fusion in the interpreter")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: porkchop [-S] [-c out.pc] script.pk [args...]")
		os.Exit(compiler.ExitUsage)
	}
	name := flag.Arg(0)
	text, err := os.ReadFile(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(compiler.ExitUsage)
	}
	buf := source.New(name, string(text))

	switch {
	case emitText:
		sink := emit.NewTextSink(nil)
		if _, err := compiler.Compile(buf, sink); err != nil {
			fail(err)
		}
		if err := sink.Write(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(compiler.ExitInternal)
		}
	case emitBin != "":
		sink := emit.NewBinarySink(nil)
		if _, err := compiler.Compile(buf, sink); err != nil {
			fail(err)
		}
		out, err := os.Create(emitBin)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(compiler.ExitUsage)
		}
		if err := sink.WriteModule(out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(compiler.ExitInternal)
		}
		if err := out.Close(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(compiler.ExitInternal)
		}
	default:
		in, mainIndex, err := compiler.Load(buf, fuse, flag.Args()[1:])
		if err != nil {
			fail(err)
		}
		if _, err := in.Run(mainIndex); err != nil {
			var exit *vm.ExitError
			if errors.As(err, &exit) {
				os.Exit(exit.Code)
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(compiler.ExitRuntimeFault)
		}
	}
}

// fail reports a compile-time diagnostic list and exits with the
// compile-error status (diagnostics are collected then raised together, no
// recovery).
func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(compiler.ExitCompileError)
}
