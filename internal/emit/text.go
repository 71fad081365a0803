package emit

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"

	"github.com/pkg/errors"

	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

// TextSink realises Assembler as the human-readable assembly form: a
// "string"/"func" pool header followed by one "(" ... ")"
// delimited block per function, with labels written symbolically as
// "Lnnn:" rather than resolved to offsets; the text form is meant to be
// read by a person, so it keeps the same symbolic names the compiler used.
type TextSink struct {
	Pool *Pool

	funcBodies   []string
	cur          strings.Builder
	curProto     int
	labelCounter int
}

// NewTextSink creates a TextSink sharing pool (or a fresh one if nil).
func NewTextSink(pool *Pool) *TextSink {
	if pool == nil {
		pool = NewPool()
	}
	return &TextSink{Pool: pool}
}

func (t *TextSink) PushConstBool(v bool) {
	if v {
		fmt.Fprintln(&t.cur, "const 1")
	} else {
		fmt.Fprintln(&t.cur, "const 0")
	}
}

func (t *TextSink) PushConstInt(v int64) {
	fmt.Fprintf(&t.cur, "const %d\n", uint64(v))
}

func (t *TextSink) PushConstFloat(v float64) {
	fmt.Fprintf(&t.cur, "const %d\n", floatBits(v))
}

func (t *TextSink) PushString(s string) {
	idx := t.Pool.InternString(s)
	fmt.Fprintf(&t.cur, "sconst %d\n", idx)
}

func (t *TextSink) Emit(op vm.Op) {
	fmt.Fprintln(&t.cur, op.String())
}

func (t *TextSink) EmitIndex(op vm.Op, index int) {
	fmt.Fprintf(&t.cur, "%s %d\n", op, index)
}

func (t *TextSink) EmitLabel(op vm.Op, label int) {
	fmt.Fprintf(&t.cur, "%s L%d\n", op, label)
}

func (t *TextSink) EmitType(op vm.Op, ty types.Type) {
	fmt.Fprintf(&t.cur, "%s %s\n", op, types.Serialize(ty))
}

func (t *TextSink) EmitTypeSize(op vm.Op, ty types.Type, size int) {
	fmt.Fprintf(&t.cur, "%s %s %d\n", op, types.Serialize(ty), size)
}

func (t *TextSink) EmitCmp(op vm.Op, mode vm.CmpMode) {
	fmt.Fprintf(&t.cur, "%s %s\n", op, mode)
}

// NewLabel allocates a label id fresh within the current function; the
// counter resets in BeginFunction, so ids are only unique per-body (matching
// how PlaceLabel/EmitLabel write the same "Lnnn" spelling within one block).
func (t *TextSink) NewLabel() int {
	t.labelCounter++
	return t.labelCounter
}

func (t *TextSink) PlaceLabel(label int) {
	fmt.Fprintf(&t.cur, "L%d:\n", label)
}

func (t *TextSink) RegisterPrototype(ty types.FuncType) int {
	return t.Pool.InternPrototype(ty)
}

func (t *TextSink) BeginFunction(proto int) {
	t.cur.Reset()
	t.curProto = proto
	t.labelCounter = 0
	t.cur.WriteString("(\n")
}

func (t *TextSink) EndFunction() {
	t.cur.WriteString(")\n")
	for len(t.funcBodies) <= t.curProto {
		t.funcBodies = append(t.funcBodies, "")
	}
	t.funcBodies[t.curProto] = t.cur.String()
}

// Write renders the complete text module (string pool, prototype table,
// then every function body in prototype order) to w.
func (t *TextSink) Write(w io.Writer) error {
	var sb strings.Builder
	for _, s := range t.Pool.Strings {
		sb.WriteString("string ")
		sb.WriteString(strconv.Itoa(len(s)))
		sb.WriteByte(' ')
		sb.WriteString(hex.EncodeToString([]byte(s)))
		sb.WriteByte('\n')
	}
	for _, p := range t.Pool.Prototypes {
		sb.WriteString("func ")
		sb.WriteString(types.Serialize(p))
		sb.WriteByte('\n')
	}
	for _, body := range t.funcBodies {
		sb.WriteString(body)
	}
	_, err := io.WriteString(w, sb.String())
	return errors.Wrap(err, "write text module failed")
}

// TextModule is the result of parsing a TextSink.Write rendering back.
type TextModule struct {
	Pool  *Pool
	Funcs []Function
}

var cmpModeNames = map[string]vm.CmpMode{
	"eq": vm.CmpEQ, "ne": vm.CmpNE, "lt": vm.CmpLT,
	"gt": vm.CmpGT, "le": vm.CmpLE, "ge": vm.CmpGE,
}

// tokenize splits r into whitespace-delimited words using text/scanner
// (rather than a hand-rolled splitter) configured to treat every non-space
// rune as part of
// one identifier: type descriptors such as "(ii)" or "@ii:v" contain no
// internal whitespace, so this keeps each one intact as a single token.
// Comments and quote characters get no special treatment.
func tokenize(r io.Reader) []string {
	var sc scanner.Scanner
	sc.Init(r)
	sc.Mode = scanner.ScanIdents
	sc.Whitespace = 1<<'\t' | 1<<'\n' | 1<<'\r' | 1<<' '
	sc.IsIdentRune = func(ch rune, i int) bool {
		return !unicode.IsSpace(ch) && ch != scanner.EOF
	}
	var toks []string
	for tok := sc.Scan(); tok != scanner.EOF; tok = sc.Scan() {
		toks = append(toks, sc.TokenText())
	}
	return toks
}

// ReadText parses the text assembly form, replaying every instruction
// through a MemSink so label fixup is resolved identically to the in-memory
// and binary paths.
func ReadText(r io.Reader) (*TextModule, error) {
	toks := tokenize(r)
	pool := NewPool()
	mem := NewMemSink(pool)

	i := 0
	next := func() (string, bool) {
		if i >= len(toks) {
			return "", false
		}
		tok := toks[i]
		i++
		return tok, true
	}

header:
	for i < len(toks) {
		switch toks[i] {
		case "string":
			i++
			lenTok, ok := next()
			if !ok {
				return nil, errors.New("truncated string pool entry")
			}
			n, err := strconv.Atoi(lenTok)
			if err != nil {
				return nil, errors.Wrap(err, "malformed string length")
			}
			hexTok, ok := next()
			if !ok {
				return nil, errors.New("truncated string pool entry")
			}
			raw, err := hex.DecodeString(hexTok)
			if err != nil {
				return nil, errors.Wrap(err, "malformed string hex payload")
			}
			if len(raw) != n {
				return nil, errors.Errorf("string length mismatch: declared %d, got %d", n, len(raw))
			}
			pool.InternString(string(raw))
		case "func":
			i++
			descTok, ok := next()
			if !ok {
				return nil, errors.New("truncated prototype entry")
			}
			parsed, err := types.Deserialize(descTok)
			if err != nil {
				return nil, errors.Wrap(err, "malformed prototype descriptor")
			}
			ft, ok := parsed.(types.FuncType)
			if !ok {
				return nil, errors.Errorf("prototype descriptor %q is not a function type", descTok)
			}
			pool.InternPrototype(ft)
		default:
			break header
		}
	}

	for protoIdx := 0; ; protoIdx++ {
		tok, ok := next()
		if !ok {
			break
		}
		if tok != "(" {
			return nil, errors.Errorf("expected function body start, got %q", tok)
		}
		mem.BeginFunction(protoIdx)
		for {
			tok, ok = next()
			if !ok {
				return nil, errors.New("unterminated function body")
			}
			if tok == ")" {
				break
			}
			if len(tok) > 2 && tok[0] == 'L' && tok[len(tok)-1] == ':' {
				n, err := strconv.Atoi(tok[1 : len(tok)-1])
				if err != nil {
					return nil, errors.Wrapf(err, "malformed label %q", tok)
				}
				mem.PlaceLabel(n)
				continue
			}
			op, ok := vm.LookupMnemonic(tok)
			if !ok {
				return nil, errors.Errorf("unknown mnemonic %q", tok)
			}
			if err := readOperand(op, next, mem); err != nil {
				return nil, errors.Wrapf(err, "operand for %q", tok)
			}
		}
		mem.EndFunction()
	}

	return &TextModule{Pool: pool, Funcs: mem.Funcs}, nil
}

func readOperand(op vm.Op, next func() (string, bool), mem *MemSink) error {
	switch op.OperandKind() {
	case vm.OperandNone:
		mem.Emit(op)
	case vm.OperandIndex, vm.OperandConst:
		tok, ok := next()
		if !ok {
			return errors.New("missing numeric operand")
		}
		v, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			return errors.Wrap(err, "malformed numeric operand")
		}
		if op.OperandKind() == vm.OperandConst {
			mem.cur = append(mem.cur, Instruction{Op: op, Const: v})
		} else {
			mem.EmitIndex(op, int(v))
		}
	case vm.OperandLabel:
		tok, ok := next()
		if !ok || len(tok) < 2 || tok[0] != 'L' {
			return errors.Errorf("malformed label reference %q", tok)
		}
		n, err := strconv.Atoi(tok[1:])
		if err != nil {
			return errors.Wrap(err, "malformed label reference")
		}
		mem.EmitLabel(op, n)
	case vm.OperandType:
		tok, ok := next()
		if !ok {
			return errors.New("missing type operand")
		}
		ty, err := types.Deserialize(tok)
		if err != nil {
			return errors.Wrap(err, "malformed type operand")
		}
		mem.EmitType(op, ty)
	case vm.OperandTypeSize:
		tok, ok := next()
		if !ok {
			return errors.New("missing type operand")
		}
		ty, err := types.Deserialize(tok)
		if err != nil {
			return errors.Wrap(err, "malformed type operand")
		}
		szTok, ok := next()
		if !ok {
			return errors.New("missing size operand")
		}
		size, err := strconv.Atoi(szTok)
		if err != nil {
			return errors.Wrap(err, "malformed size operand")
		}
		mem.EmitTypeSize(op, ty, size)
	case vm.OperandCmpMode:
		tok, ok := next()
		if !ok {
			return errors.New("missing comparison mode")
		}
		mode, ok := cmpModeNames[tok]
		if !ok {
			return errors.Errorf("unknown comparison mode %q", tok)
		}
		mem.EmitCmp(op, mode)
	}
	return nil
}
