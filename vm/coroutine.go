package vm

// CoroutineObj is a function whose body contains `yield`, called into
// existence by CALL rather than run inline: its body runs on its own
// goroutine, parked on resumeCh until the next MOVE, handing back each
// yielded value over yieldCh. This is the
// idiomatic Go shape for a stackful coroutine: a parked goroutine blocked
// on a channel receive is exactly a suspended call frame, no manual
// continuation capture required.
type CoroutineObj struct {
	resumeCh chan struct{}
	yieldCh  chan coroResult
	done     bool
	locals   []Value // bound+call arguments, roots until the first resume
	frame    *Frame  // the goroutine's own frame, once started; scanned by the collector while the goroutine is parked
}

type coroResult struct {
	value Value
	ok    bool
	err   error
}

func newCoroutine(in *Instance, contIndex int, locals []Value) *CoroutineObj {
	co := &CoroutineObj{
		resumeCh: make(chan struct{}),
		yieldCh:  make(chan coroResult),
		locals:   locals,
	}
	go func() {
		<-co.resumeCh
		f := newFrame(locals)
		co.frame = f
		_, err := in.runFrame(contIndex, f, co)
		if err != nil {
			co.yieldCh <- coroResult{err: err}
			return
		}
		co.yieldCh <- coroResult{ok: false}
	}()
	return co
}

func (co *CoroutineObj) move(in *Instance) (Value, bool, error) {
	if co.done {
		return Value{}, false, nil
	}
	co.resumeCh <- struct{}{}
	res := <-co.yieldCh
	if res.err != nil || !res.ok {
		co.done = true
		co.frame = nil
		co.locals = nil
		return Value{}, false, res.err
	}
	return res.value, true, nil
}

// roots reports the coroutine's own suspended state as GC roots: the frame
// contents once the body has started, the pending argument values before.
// Valid while the coroutine's goroutine is parked on resumeCh, which is
// always true during a mark phase since collection only ever runs on the
// mutator goroutine between two of the coroutine's own MOVE calls.
func (co *CoroutineObj) roots(out []Value) []Value {
	if co.frame == nil {
		return append(out, co.locals...)
	}
	out = append(out, co.frame.locals...)
	return append(out, co.frame.stack...)
}

// yield is called by the opcode dispatch loop when it hits OpYield inside a
// frame that belongs to co: hands v out to whoever is blocked in move, then
// parks until the next resume.
func (co *CoroutineObj) yield(v Value) {
	co.yieldCh <- coroResult{value: v, ok: true}
	<-co.resumeCh
}
