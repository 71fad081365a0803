package compiler

import (
	"github.com/pkg/errors"

	"github.com/Yaossg/porkchop/internal/emit"
	"github.com/Yaossg/porkchop/internal/source"
	"github.com/Yaossg/porkchop/vm"
)

// Exit statuses for the whole toolchain: 0 success, positive
// for user exit(n) and runtime faults, and distinct classes for host-side
// failures following the sysexits convention, since a Unix process cannot
// report a negative status.
const (
	ExitOK           = 0
	ExitRuntimeFault = 1
	ExitUsage        = 64
	ExitCompileError = 65
	ExitInternal     = 70
)

// Program converts the in-memory sink's output into the runtime's own
// instruction representation. The two Instruction shapes are field-for-field
// identical; the copy exists so vm never has to import emit (which already
// imports vm for the opcode table). Every continuum entry gets its
// prototype; entries the compiler never emitted a body for stay Code-less,
// which is exactly how the VM recognises an external.
func Program(mem *emit.MemSink) *vm.Program {
	prog := &vm.Program{Strings: mem.Pool.Strings}
	prog.Funcs = make([]vm.Function, len(mem.Pool.Prototypes))
	for i, proto := range mem.Pool.Prototypes {
		fn := vm.Function{Prototype: proto}
		if i < len(mem.Funcs) && mem.Funcs[i].Code != nil {
			code := make([]vm.Instruction, len(mem.Funcs[i].Code))
			for j, ins := range mem.Funcs[i].Code {
				code[j] = vm.Instruction{
					Op:    ins.Op,
					Index: ins.Index,
					Const: ins.Const,
					Type:  ins.Type,
					Size:  ins.Size,
					Cmp:   ins.Cmp,
				}
			}
			fn.Code = code
		}
		prog.Funcs[i] = fn
	}
	return prog
}

// ModuleProgram is Program's counterpart for a decoded binary module
// (emit.ReadModule), used when running a pre-compiled .pc file.
func ModuleProgram(mod *emit.Module) *vm.Program {
	prog := &vm.Program{Strings: mod.Strings}
	prog.Funcs = make([]vm.Function, len(mod.Prototypes))
	for i, proto := range mod.Prototypes {
		fn := vm.Function{Prototype: proto}
		if i < len(mod.Funcs) && mod.Funcs[i].Code != nil {
			code := make([]vm.Instruction, len(mod.Funcs[i].Code))
			for j, ins := range mod.Funcs[i].Code {
				code[j] = vm.Instruction{
					Op:    ins.Op,
					Index: ins.Index,
					Const: ins.Const,
					Type:  ins.Type,
					Size:  ins.Size,
					Cmp:   ins.Cmp,
				}
			}
			fn.Code = code
		}
		prog.Funcs[i] = fn
	}
	return prog
}

// BindExternals re-keys the named host-primitive table by the continuum
// indices the builtin pre-registration pass assigned (the first
// len(builtins) continuum entries, in table order).
func BindExternals(table map[string]vm.External) (map[int]vm.External, error) {
	bound := make(map[int]vm.External, len(builtins))
	for i, b := range builtins {
		ext, ok := table[b.name]
		if !ok {
			return nil, errors.Errorf("no host implementation for external %q", b.name)
		}
		bound[i] = ext
	}
	return bound, nil
}

// Load compiles buf all the way to a ready-to-run Instance with the
// standard external table bound, the everyday entry point the CLI driver
// and the end-to-end tests share. fuse enables the in-memory sink's
// optional superinstruction peephole.
func Load(buf *source.Buffer, fuse bool, args []string) (*vm.Instance, int, error) {
	mem := emit.NewMemSink(nil)
	mem.Fuse = fuse
	compiled, err := Compile(buf, mem)
	if err != nil {
		return nil, 0, err
	}
	externals, err := BindExternals(vm.StandardExternals())
	if err != nil {
		return nil, 0, err
	}
	in := vm.NewInstance(Program(mem), externals)
	in.Args = args
	return in, compiled.MainIndex, nil
}
