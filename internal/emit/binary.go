package emit

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/Yaossg/porkchop/internal/types"
	"github.com/Yaossg/porkchop/vm"
)

// BinarySink realises Assembler as the compact binary module format. It
// delegates everything except EndFunction to an embedded
// MemSink, which already does per-function label-to-offset resolution;
// EndFunction re-keys each resolved jump target into a module-wide label
// table (key -> instruction offset) the way a linker's relocation table
// would, so the persisted instruction stream never stores a raw offset
// that would become invalid if functions were reordered.
type BinarySink struct {
	*MemSink

	funcBodies [][]byte
	labelKeys  [][2]uint64 // key, resolved instruction offset
	nextKey    uint64
}

// NewBinarySink creates a BinarySink sharing pool (or a fresh one if nil).
func NewBinarySink(pool *Pool) *BinarySink {
	return &BinarySink{MemSink: NewMemSink(pool)}
}

// EndFunction overrides MemSink's: it lets the embedded sink resolve labels
// to instruction offsets as usual, then serializes that function's body to
// bytes, re-keying jump targets through the module-wide label table.
func (b *BinarySink) EndFunction() {
	proto := b.MemSink.curProto
	b.MemSink.EndFunction()
	fn := b.MemSink.Funcs[proto]

	var buf bytes.Buffer
	for _, instr := range fn.Code {
		buf.WriteByte(byte(instr.Op))
		switch instr.Op.OperandKind() {
		case vm.OperandNone:
		case vm.OperandIndex:
			writeUvarint(&buf, uint64(instr.Index))
		case vm.OperandLabel:
			key := b.nextKey
			b.nextKey++
			b.labelKeys = append(b.labelKeys, [2]uint64{key, uint64(instr.Index)})
			writeUvarint(&buf, key)
		case vm.OperandType:
			writeTypeDescriptor(&buf, instr.Type)
		case vm.OperandTypeSize:
			writeTypeDescriptor(&buf, instr.Type)
			writeUvarint(&buf, uint64(instr.Size))
		case vm.OperandConst:
			writeUvarint(&buf, instr.Const)
		case vm.OperandCmpMode:
			buf.WriteByte(byte(instr.Cmp))
		}
	}
	for len(b.funcBodies) <= proto {
		b.funcBodies = append(b.funcBodies, nil)
	}
	b.funcBodies[proto] = buf.Bytes()
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

func writeTypeDescriptor(buf *bytes.Buffer, t types.Type) {
	writeString(buf, types.Serialize(t))
}

// WriteModule writes the complete binary module to w.
func (b *BinarySink) WriteModule(w io.Writer) (err error) {
	bw := bufio.NewWriter(w)
	defer func() {
		if ferr := bw.Flush(); err == nil {
			err = ferr
		}
	}()

	var header bytes.Buffer
	writeUvarint(&header, uint64(len(b.Pool.Strings)))
	for _, s := range b.Pool.Strings {
		writeString(&header, s)
	}
	writeUvarint(&header, uint64(len(b.Pool.Prototypes)))
	for _, p := range b.Pool.Prototypes {
		writeTypeDescriptor(&header, p)
	}
	writeUvarint(&header, uint64(len(b.labelKeys)))
	for _, kv := range b.labelKeys {
		writeUvarint(&header, kv[0])
		writeUvarint(&header, kv[1])
	}
	if _, err = bw.Write(header.Bytes()); err != nil {
		return errors.Wrap(err, "write module header failed")
	}
	for _, body := range b.funcBodies {
		var lenBuf [binary.MaxVarintLen64]byte
		n := binary.PutUvarint(lenBuf[:], uint64(len(body)))
		if _, err = bw.Write(lenBuf[:n]); err != nil {
			return errors.Wrap(err, "write function body length failed")
		}
		if _, err = bw.Write(body); err != nil {
			return errors.Wrap(err, "write function body failed")
		}
	}
	return nil
}

// Module is a decoded binary module, ready to feed to the VM.
type Module struct {
	Strings    []string
	Prototypes []types.FuncType
	Labels     map[uint64]int // key -> instruction offset
	Funcs      []Function
}

// ReadModule decodes the binary format written by WriteModule.
func ReadModule(r io.Reader) (*Module, error) {
	br := bufio.NewReader(r)
	mod := &Module{Labels: make(map[uint64]int)}

	stringCount, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, errors.Wrap(err, "read string pool count failed")
	}
	mod.Strings = make([]string, stringCount)
	for i := range mod.Strings {
		s, err := readString(br)
		if err != nil {
			return nil, errors.Wrap(err, "read string failed")
		}
		mod.Strings[i] = s
	}

	protoCount, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, errors.Wrap(err, "read prototype count failed")
	}
	mod.Prototypes = make([]types.FuncType, protoCount)
	for i := range mod.Prototypes {
		desc, err := readString(br)
		if err != nil {
			return nil, errors.Wrap(err, "read prototype descriptor failed")
		}
		t, err := types.Deserialize(desc)
		if err != nil {
			return nil, errors.Wrap(err, "malformed prototype descriptor")
		}
		ft, ok := t.(types.FuncType)
		if !ok {
			return nil, errors.Errorf("prototype descriptor %q is not a function type", desc)
		}
		mod.Prototypes[i] = ft
	}

	labelCount, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, errors.Wrap(err, "read label table count failed")
	}
	for i := uint64(0); i < labelCount; i++ {
		key, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, errors.Wrap(err, "read label key failed")
		}
		offset, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, errors.Wrap(err, "read label offset failed")
		}
		mod.Labels[key] = int(offset)
	}

	for i := range mod.Prototypes {
		bodyLen, err := binary.ReadUvarint(br)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(err, "read function body length failed")
		}
		body := make([]byte, bodyLen)
		if _, err := io.ReadFull(br, body); err != nil {
			return nil, errors.Wrap(err, "read function body failed")
		}
		code, err := decodeFunctionBody(body, mod.Labels)
		if err != nil {
			return nil, errors.Wrapf(err, "decode function %d failed", i)
		}
		mod.Funcs = append(mod.Funcs, Function{Prototype: mod.Prototypes[i], Code: code})
	}
	return mod, nil
}

func readString(br *bufio.Reader) (string, error) {
	n, err := binary.ReadUvarint(br)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(br, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func decodeFunctionBody(body []byte, labels map[uint64]int) ([]Instruction, error) {
	r := bytes.NewReader(body)
	var code []Instruction
	for r.Len() > 0 {
		opByte, _ := r.ReadByte()
		op := vm.Op(opByte)
		var instr Instruction
		instr.Op = op
		switch op.OperandKind() {
		case vm.OperandNone:
		case vm.OperandIndex:
			v, err := binary.ReadUvarint(r)
			if err != nil {
				return nil, err
			}
			instr.Index = int(v)
		case vm.OperandLabel:
			key, err := binary.ReadUvarint(r)
			if err != nil {
				return nil, err
			}
			offset, ok := labels[key]
			if !ok {
				return nil, errors.Errorf("unresolved label key %d", key)
			}
			instr.Index = offset
		case vm.OperandType:
			t, err := readType(r)
			if err != nil {
				return nil, err
			}
			instr.Type = t
		case vm.OperandTypeSize:
			t, err := readType(r)
			if err != nil {
				return nil, err
			}
			sz, err := binary.ReadUvarint(r)
			if err != nil {
				return nil, err
			}
			instr.Type = t
			instr.Size = int(sz)
		case vm.OperandConst:
			v, err := binary.ReadUvarint(r)
			if err != nil {
				return nil, err
			}
			instr.Const = v
		case vm.OperandCmpMode:
			b, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			instr.Cmp = vm.CmpMode(b)
		}
		code = append(code, instr)
	}
	return code, nil
}

func readType(r *bytes.Reader) (types.Type, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return types.Deserialize(string(buf))
}
