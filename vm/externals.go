package vm

import (
	"io"
	"strconv"
	"time"

	"github.com/Yaossg/porkchop/internal/types"
)

// StandardExternals is the fixed host-primitive table, keyed by name.
// The compiler assigns each name its continuum index; the
// loader re-keys this map by that index before handing it to NewInstance.
func StandardExternals() map[string]External {
	return map[string]External{
		"print": func(in *Instance, args []Value) (Value, error) {
			in.out.write(args[0].Ref.(*StringObj).S)
			return Value{}, nil
		},
		"println": func(in *Instance, args []Value) (Value, error) {
			in.out.write(args[0].Ref.(*StringObj).S)
			in.out.write("\n")
			return Value{}, nil
		},
		"readLine": func(in *Instance, args []Value) (Value, error) {
			line, err := in.out.readLine()
			if err == io.EOF {
				return refVal(in.internString("")), nil
			}
			if err != nil {
				return Value{}, runtimeErrorf("readLine failed: %v", err)
			}
			return refVal(in.internString(line)), nil
		},
		"i2s": func(in *Instance, args []Value) (Value, error) {
			return refVal(in.internString(strconv.FormatInt(args[0].Int(), 10))), nil
		},
		"f2s": func(in *Instance, args []Value) (Value, error) {
			return refVal(in.internString(formatFloat(args[0].Float()))), nil
		},
		"s2i": func(in *Instance, args []Value) (Value, error) {
			n, err := strconv.ParseInt(args[0].Ref.(*StringObj).S, 10, 64)
			if err != nil {
				return Value{}, runtimeErrorf("s2i: %q is not an int", args[0].Ref.(*StringObj).S)
			}
			return intVal(n), nil
		},
		"s2f": func(in *Instance, args []Value) (Value, error) {
			f, err := strconv.ParseFloat(args[0].Ref.(*StringObj).S, 64)
			if err != nil {
				return Value{}, runtimeErrorf("s2f: %q is not a float", args[0].Ref.(*StringObj).S)
			}
			return floatVal(f), nil
		},
		"exit": func(in *Instance, args []Value) (Value, error) {
			return Value{}, &ExitError{Code: int(args[0].Int())}
		},
		"millis": func(in *Instance, args []Value) (Value, error) {
			return intVal(time.Now().UnixMilli()), nil
		},
		"nanos": func(in *Instance, args []Value) (Value, error) {
			return intVal(time.Now().UnixNano()), nil
		},
		"getargs": func(in *Instance, args []Value) (Value, error) {
			// The argument strings are unreachable from any root until the
			// list that holds them is returned, so collection stays off
			// for the whole construction.
			g := in.heap.disable()
			defer g.release()
			items := make([]Value, len(in.Args))
			for i, a := range in.Args {
				items[i] = refVal(in.internString(a))
			}
			l := &ListObj{Elem: types.String, Items: items}
			in.heap.register(l)
			return refVal(l), nil
		},
		"output": func(in *Instance, args []Value) (Value, error) {
			return Value{}, in.reopenOutput(args[0].Ref.(*StringObj).S)
		},
		"input": func(in *Instance, args []Value) (Value, error) {
			return Value{}, in.reopenInput(args[0].Ref.(*StringObj).S)
		},
		"flush": func(in *Instance, args []Value) (Value, error) {
			in.out.flush()
			return Value{}, nil
		},
		"eof": func(in *Instance, args []Value) (Value, error) {
			return boolVal(in.out.atEOF()), nil
		},
		"typename": func(in *Instance, args []Value) (Value, error) {
			name := "any"
			if box, ok := args[0].Ref.(*AnyBox); ok {
				name = box.Static.String()
			}
			return refVal(in.internString(name)), nil
		},
		"gc": func(in *Instance, args []Value) (Value, error) {
			in.heap.collect(in.gcRoots())
			return Value{}, nil
		},
		"toBytes": func(in *Instance, args []Value) (Value, error) {
			s := args[0].Ref.(*StringObj).S
			items := make([]Value, len(s))
			for i := 0; i < len(s); i++ {
				items[i] = byteVal(s[i])
			}
			l := &ListObj{Elem: types.Byte, Items: items}
			in.heap.register(l)
			return refVal(l), nil
		},
		"toChars": func(in *Instance, args []Value) (Value, error) {
			runes := []rune(args[0].Ref.(*StringObj).S)
			items := make([]Value, len(runes))
			for i, r := range runes {
				items[i] = charVal(r)
			}
			l := &ListObj{Elem: types.Char, Items: items}
			in.heap.register(l)
			return refVal(l), nil
		},
		"fromBytes": func(in *Instance, args []Value) (Value, error) {
			l := args[0].Ref.(*ListObj)
			buf := make([]byte, len(l.Items))
			for i, v := range l.Items {
				buf[i] = v.Byte()
			}
			return refVal(in.internString(string(buf))), nil
		},
		"fromChars": func(in *Instance, args []Value) (Value, error) {
			l := args[0].Ref.(*ListObj)
			runes := make([]rune, len(l.Items))
			for i, v := range l.Items {
				runes[i] = v.Char()
			}
			return refVal(in.internString(string(runes))), nil
		},
	}
}
