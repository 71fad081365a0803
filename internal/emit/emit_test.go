package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

// drive emits a tiny two-function program through any sink: func 0 is a
// counting loop (exercising labels), func 1 builds a list (exercising type
// and type+size operands).
func drive(asm Assembler) {
	p0 := asm.RegisterPrototype(types.FuncType{Return: types.None})
	p1 := asm.RegisterPrototype(types.FuncType{Return: types.ListType{Element: types.Int}})

	asm.BeginFunction(p0)
	asm.EmitType(vm.OpLocal, types.Int)
	asm.PushConstInt(0)
	asm.EmitIndex(vm.OpStore, 0)
	asm.Emit(vm.OpPop)
	top := asm.NewLabel()
	end := asm.NewLabel()
	asm.PlaceLabel(top)
	asm.EmitIndex(vm.OpLoad, 0)
	asm.PushConstInt(10)
	asm.EmitCmp(vm.OpICmp, vm.CmpLT)
	asm.EmitLabel(vm.OpJmp0, end)
	asm.EmitIndex(vm.OpInc, 0)
	asm.EmitLabel(vm.OpJmp, top)
	asm.PlaceLabel(end)
	asm.PushConstBool(false)
	asm.Emit(vm.OpReturn)
	asm.EndFunction()

	asm.BeginFunction(p1)
	asm.PushConstInt(1)
	asm.PushConstInt(2)
	asm.PushString("tag")
	asm.Emit(vm.OpPop)
	asm.EmitTypeSize(vm.OpList, types.ListType{Element: types.Int}, 2)
	asm.Emit(vm.OpReturn)
	asm.EndFunction()
}

func TestMemSinkLabelFixup(t *testing.T) {
	mem := NewMemSink(nil)
	drive(mem)
	code := mem.Funcs[0].Code
	var jmp0At, jmpAt = -1, -1
	for i, ins := range code {
		switch ins.Op {
		case vm.OpJmp0:
			jmp0At = i
		case vm.OpJmp:
			jmpAt = i
		}
	}
	if jmp0At < 0 || jmpAt < 0 {
		t.Fatal("jumps not found")
	}
	// the back edge lands on the LOAD that re-tests the condition
	if code[jmpAt].Index >= jmpAt || code[code[jmpAt].Index].Op != vm.OpLoad {
		t.Errorf("back edge resolves to %d (%s)", code[jmpAt].Index, code[code[jmpAt].Index].Op)
	}
	// the exit edge lands past the back edge, on the CONST push
	if code[jmp0At].Index != jmpAt+1 {
		t.Errorf("exit edge resolves to %d, want %d", code[jmp0At].Index, jmpAt+1)
	}
}

func TestStringPoolDedup(t *testing.T) {
	pool := NewPool()
	a := pool.InternString("x")
	b := pool.InternString("y")
	c := pool.InternString("x")
	if a != c || a == b {
		t.Errorf("intern indices: %d %d %d", a, b, c)
	}
	if len(pool.Strings) != 2 {
		t.Errorf("pool has %d strings, want 2", len(pool.Strings))
	}
}

func sameCode(t *testing.T, got, want []Instruction, label string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: %d instructions, want %d", label, len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Op != w.Op || g.Index != w.Index || g.Const != w.Const || g.Size != w.Size || g.Cmp != w.Cmp {
			t.Errorf("%s: instruction %d = %+v, want %+v", label, i, g, w)
		}
		switch {
		case g.Type == nil && w.Type == nil:
		case g.Type == nil || w.Type == nil || !g.Type.Equals(w.Type):
			t.Errorf("%s: instruction %d type = %v, want %v", label, i, g.Type, w.Type)
		}
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	mem := NewMemSink(nil)
	drive(mem)

	bin := NewBinarySink(nil)
	drive(bin)
	var buf bytes.Buffer
	if err := bin.WriteModule(&buf); err != nil {
		t.Fatal(err)
	}

	mod, err := ReadModule(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(mod.Strings) != len(mem.Pool.Strings) {
		t.Fatalf("string pool: %d, want %d", len(mod.Strings), len(mem.Pool.Strings))
	}
	for i, s := range mem.Pool.Strings {
		if mod.Strings[i] != s {
			t.Errorf("string %d = %q, want %q", i, mod.Strings[i], s)
		}
	}
	if len(mod.Funcs) != len(mem.Funcs) {
		t.Fatalf("functions: %d, want %d", len(mod.Funcs), len(mem.Funcs))
	}
	for i := range mem.Funcs {
		if !mod.Funcs[i].Prototype.Equals(mem.Funcs[i].Prototype) {
			t.Errorf("prototype %d = %v, want %v", i, mod.Funcs[i].Prototype, mem.Funcs[i].Prototype)
		}
		sameCode(t, mod.Funcs[i].Code, mem.Funcs[i].Code, "binary func")
	}
}

func TestTextRoundTrip(t *testing.T) {
	mem := NewMemSink(nil)
	drive(mem)

	text := NewTextSink(nil)
	drive(text)
	var buf bytes.Buffer
	if err := text.Write(&buf); err != nil {
		t.Fatal(err)
	}
	rendered := buf.String()
	for _, want := range []string{"(", ")", "icmp lt", "jmp0 L", "local i", "list [i 2", "func $:v"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("text form lacks %q:\n%s", want, rendered)
		}
	}

	mod, err := ReadText(strings.NewReader(rendered))
	if err != nil {
		t.Fatal(err)
	}
	if len(mod.Funcs) != len(mem.Funcs) {
		t.Fatalf("functions: %d, want %d", len(mod.Funcs), len(mem.Funcs))
	}
	for i := range mem.Funcs {
		sameCode(t, mod.Funcs[i].Code, mem.Funcs[i].Code, "text func")
	}
}

func TestFusionPeephole(t *testing.T) {
	plain := NewMemSink(nil)
	drive(plain)
	fused := NewMemSink(nil)
	fused.Fuse = true
	drive(fused)

	var sawFused bool
	for _, ins := range fused.Funcs[0].Code {
		if ins.Op == vm.OpFusedCmpJmp0 {
			sawFused = true
			if vm.Op(ins.Const) != vm.OpICmp || ins.Cmp != vm.CmpLT {
				t.Errorf("fused instruction carries %s/%s", vm.Op(ins.Const), ins.Cmp)
			}
		}
		if ins.Op == vm.OpICmp || (ins.Op == vm.OpJmp0 && sawFused) {
			t.Errorf("unfused %s survived in fused stream", ins.Op)
		}
	}
	if !sawFused {
		t.Fatal("no fused compare-branch emitted")
	}
	if len(fused.Funcs[0].Code) != len(plain.Funcs[0].Code)-1 {
		t.Errorf("fused stream has %d instructions, want %d", len(fused.Funcs[0].Code), len(plain.Funcs[0].Code)-1)
	}
	// the loop's back edge must still land on the re-test after positions
	// shifted
	for _, ins := range fused.Funcs[0].Code {
		if ins.Op == vm.OpJmp {
			if fused.Funcs[0].Code[ins.Index].Op != vm.OpLoad {
				t.Errorf("back edge lands on %s", fused.Funcs[0].Code[ins.Index].Op)
			}
		}
	}
}
