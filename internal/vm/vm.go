package vm

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/chittur/parallel-programming-language/internal/lang"
)

const headerSize = 3

const defaultDataSize = 1 << 16

// Option configures a Machine at construction time.
type Option func(*Machine) error

// DataSize sets the data store's capacity. The default is large enough for
// everything in this package's own tests but real programs with deep
// recursion or many parallel nodes will usually want to raise it.
func DataSize(n int) Option {
	return func(m *Machine) error {
		if n <= 0 {
			return errors.Errorf("vm: data size must be positive, got %d", n)
		}
		m.s = make([]int32, n)
		return nil
	}
}

// WithInput sets the source for ReadInteger/ReadBoolean.
func WithInput(r Reader) Option {
	return func(m *Machine) error { m.in = r; return nil }
}

// WithOutput sets the sink for WriteInteger/WriteBoolean.
func WithOutput(w Writer) Option {
	return func(m *Machine) error { m.out = w; return nil }
}

// WithChannels sets the rendezvous registry backing open/send/receive.
func WithChannels(c Channels) Option {
	return func(m *Machine) error { m.channels = c; return nil }
}

// WithSpawner sets the handler for parallel invocations.
func WithSpawner(s Spawner) Option {
	return func(m *Machine) error { m.spawner = s; return nil }
}

// RandSeed seeds the pseudo-random source behind the randomize opcode. Two
// machines built with the same seed produce the same sequence, which is
// what lets a parallel program's test fix a seed and still get a
// deterministic run.
func RandSeed(seed int64) Option {
	return func(m *Machine) error { m.rng = rand.New(rand.NewSource(seed)); return nil }
}

// Machine interprets one node's share of a compiled program: its own data
// store, its own B/T/P registers, and a code image it never writes to
// (shared, read-only, with every other node spawned from the same program).
// See the package doc comment for the activation-record and calling
// conventions it implements.
type Machine struct {
	code []int32
	s    []int32
	b, t, p int

	blockSizes []int

	in       Reader
	out      Writer
	channels Channels
	spawner  Spawner
	rng      *rand.Rand

	insCount int64
}

// New builds a Machine ready to execute code from its first instruction,
// which must be a Program opcode (spec.md §6.2).
func New(code []int32, opts ...Option) (*Machine, error) {
	m := &Machine{code: code, rng: rand.New(rand.NewSource(1))}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if m.s == nil {
		m.s = make([]int32, defaultDataSize)
	}
	return m, nil
}

// NewNode builds a Machine that starts execution already inside a
// previously-prepared frame, sharing the same code image and I/O but its
// own data store: the shape a node spawned by a Parallel instruction is
// handed to the cluster runtime in. data is sized for growth (locals,
// temporaries, further calls) beyond the initial record that occupies
// data[:top+1]; top, not len(data), marks where that record currently ends.
func NewNode(code []int32, data []int32, base, top, entry int, opts ...Option) (*Machine, error) {
	m, err := New(code, opts...)
	if err != nil {
		return nil, err
	}
	m.s = data
	m.b = base
	m.t = top
	m.p = entry
	return m, nil
}

// InstructionCount returns the number of instructions executed so far.
func (m *Machine) InstructionCount() int64 {
	return m.insCount
}

func (m *Machine) push(v int32) error {
	m.t++
	if m.t >= len(m.s) {
		return errors.New("vm: data store exhausted")
	}
	m.s[m.t] = v
	return nil
}

func (m *Machine) pop() int32 {
	v := m.s[m.t]
	m.t--
	return v
}

// walkStatic follows L static links starting from the currently executing
// frame's base, returning the base of the frame L lexical levels out.
func (m *Machine) walkStatic(base, l int32) int {
	b := base
	for i := int32(0); i < l; i++ {
		b = m.s[b]
	}
	return int(b)
}

// Run executes instructions until EndProgram, an unrecoverable runtime
// error, or ctx-equivalent cancellation reported through channels/spawner.
// A panic escaping the dispatch loop (an out-of-range index the compiler
// should have prevented) is recovered and reported as an ordinary error
// instead of crashing the process, matching the defensive style of the
// interpreter this one is adapted from.
func (m *Machine) Run() (err error) {
	defer func() {
		if e := recover(); e != nil {
			if rerr, ok := e.(error); ok {
				err = errors.Wrapf(rerr, "vm: recovered error at p=%d", m.p)
			} else {
				err = errors.Errorf("vm: recovered panic at p=%d: %v", m.p, e)
			}
		}
	}()

	for {
		op := lang.Opcode(m.code[m.p])
		switch op {
		case lang.OpProgram:
			n := m.code[m.p+1]
			m.b = 0
			for i := int32(0); i < headerSize+n; i++ {
				m.s[i] = 0
			}
			m.t = int(headerSize+n) - 1
			m.p += 2

		case lang.OpEndProgram:
			return nil

		case lang.OpProcedureBlock:
			n := m.code[m.p+1]
			for i := int32(0); i < n; i++ {
				if err := m.push(0); err != nil {
					return err
				}
			}
			m.p += 2

		case lang.OpEndProcedureBlock:
			encoded := m.code[m.p+1]
			hasReturn := encoded < 0
			retAddr := m.s[m.b+2]
			callerB := m.s[m.b+1]
			if retAddr == -1 {
				// A spawned node's outermost frame carries this sentinel:
				// there is no caller to return to, so finishing it ends
				// the node (spec.md §5).
				return nil
			}
			if hasReturn {
				// The return value lands in the slot the caller reserved for
				// it just below this frame's base, reclaiming it instead of
				// leaving it stranded there forever.
				m.s[m.b-1] = m.s[m.b+headerSize]
				m.t = m.b - 1
			} else {
				m.t = m.b - 1
			}
			m.b = int(callerB)
			m.p = int(retAddr)

		case lang.OpProcedureInvocation:
			if err := m.invoke(); err != nil {
				return err
			}

		case lang.OpBlock:
			n := m.code[m.p+1]
			for i := int32(0); i < n; i++ {
				if err := m.push(0); err != nil {
					return err
				}
			}
			m.blockSizes = append(m.blockSizes, int(n))
			m.p += 2

		case lang.OpEndBlock:
			n := m.blockSizes[len(m.blockSizes)-1]
			m.blockSizes = m.blockSizes[:len(m.blockSizes)-1]
			m.t -= n
			m.p++

		case lang.OpVariable:
			l, d := m.code[m.p+1], m.code[m.p+2]
			base := m.walkStatic(int32(m.b), l)
			if err := m.push(int32(base + headerSize + int(d))); err != nil {
				return err
			}
			m.p += 3

		case lang.OpReferenceParameter:
			l, d := m.code[m.p+1], m.code[m.p+2]
			base := m.walkStatic(int32(m.b), l)
			if err := m.push(m.s[base+headerSize+int(d)]); err != nil {
				return err
			}
			m.p += 3

		case lang.OpIndex:
			bound := m.code[m.p+1]
			idx := m.pop()
			base := m.pop()
			if idx < 1 || idx > bound {
				return errors.Errorf("vm: array index %d out of bounds [1,%d]", idx, bound)
			}
			if err := m.push(base + idx - 1); err != nil {
				return err
			}
			m.p += 2

		case lang.OpConstant:
			if err := m.push(m.code[m.p+1]); err != nil {
				return err
			}
			m.p += 2

		case lang.OpValue:
			addr := m.pop()
			if err := m.push(m.s[addr]); err != nil {
				return err
			}
			m.p++

		case lang.OpDo:
			target := m.code[m.p+1]
			cond := m.pop()
			if cond == 0 {
				m.p = int(target)
			} else {
				m.p += 2
			}

		case lang.OpGoto:
			m.p = int(m.code[m.p+1])

		case lang.OpAssign:
			n := int(m.code[m.p+1])
			values := make([]int32, n)
			for i := n - 1; i >= 0; i-- {
				values[i] = m.pop()
			}
			addrs := make([]int32, n)
			for i := n - 1; i >= 0; i-- {
				addrs[i] = m.pop()
			}
			for i := 0; i < n; i++ {
				m.s[addrs[i]] = values[i]
			}
			m.p += 2

		case lang.OpReadBoolean:
			if m.in == nil {
				return errors.New("vm: readBoolean with no input source configured")
			}
			addr := m.pop()
			v, err := m.in.ReadBool()
			if err != nil {
				return errors.Wrap(err, "vm: readBoolean")
			}
			if v {
				m.s[addr] = 1
			} else {
				m.s[addr] = 0
			}
			m.p++

		case lang.OpReadInteger:
			if m.in == nil {
				return errors.New("vm: readInteger with no input source configured")
			}
			addr := m.pop()
			v, err := m.in.ReadInt()
			if err != nil {
				return errors.Wrap(err, "vm: readInteger")
			}
			m.s[addr] = v
			m.p++

		case lang.OpWriteBoolean:
			if m.out == nil {
				return errors.New("vm: writeBoolean with no output sink configured")
			}
			v := m.pop()
			if err := m.out.WriteBool(v != 0); err != nil {
				return errors.Wrap(err, "vm: writeBoolean")
			}
			m.p++

		case lang.OpWriteInteger:
			if m.out == nil {
				return errors.New("vm: writeInteger with no output sink configured")
			}
			v := m.pop()
			if err := m.out.WriteInt(v); err != nil {
				return errors.Wrap(err, "vm: writeInteger")
			}
			m.p++

		case lang.OpMinus:
			m.s[m.t] = -m.s[m.t]
			m.p++

		case lang.OpAdd:
			b := m.pop()
			m.s[m.t] += b
			m.p++

		case lang.OpSubtract:
			b := m.pop()
			m.s[m.t] -= b
			m.p++

		case lang.OpMultiply:
			b := m.pop()
			m.s[m.t] *= b
			m.p++

		case lang.OpDivide:
			b := m.pop()
			if b == 0 {
				return errors.New("vm: division by zero")
			}
			m.s[m.t] /= b
			m.p++

		case lang.OpModulo:
			b := m.pop()
			if b == 0 {
				return errors.New("vm: modulo by zero")
			}
			m.s[m.t] %= b
			m.p++

		case lang.OpPower:
			b := m.pop()
			a := m.s[m.t]
			if b < 0 {
				return errors.New("vm: negative exponent")
			}
			r := int32(1)
			for i := int32(0); i < b; i++ {
				r *= a
			}
			m.s[m.t] = r
			m.p++

		case lang.OpLess:
			b, a := m.pop(), m.pop()
			if err := m.push(boolCell(a < b)); err != nil {
				return err
			}
			m.p++

		case lang.OpLessOrEqual:
			b, a := m.pop(), m.pop()
			if err := m.push(boolCell(a <= b)); err != nil {
				return err
			}
			m.p++

		case lang.OpEqual:
			b, a := m.pop(), m.pop()
			if err := m.push(boolCell(a == b)); err != nil {
				return err
			}
			m.p++

		case lang.OpNotEqual:
			b, a := m.pop(), m.pop()
			if err := m.push(boolCell(a != b)); err != nil {
				return err
			}
			m.p++

		case lang.OpGreater:
			b, a := m.pop(), m.pop()
			if err := m.push(boolCell(a > b)); err != nil {
				return err
			}
			m.p++

		case lang.OpGreaterOrEqual:
			b, a := m.pop(), m.pop()
			if err := m.push(boolCell(a >= b)); err != nil {
				return err
			}
			m.p++

		case lang.OpAnd:
			b, a := m.pop(), m.pop()
			if err := m.push(boolCell(a != 0 && b != 0)); err != nil {
				return err
			}
			m.p++

		case lang.OpOr:
			b, a := m.pop(), m.pop()
			if err := m.push(boolCell(a != 0 || b != 0)); err != nil {
				return err
			}
			m.p++

		case lang.OpNot:
			m.s[m.t] = boolCell(m.s[m.t] == 0)
			m.p++

		case lang.OpOpen:
			if m.channels == nil {
				return errors.New("vm: open with no channel registry configured")
			}
			addr := m.pop()
			m.s[addr] = m.channels.Open()
			m.p++

		case lang.OpRandomize:
			addr := m.pop()
			m.s[addr] = int32(m.rng.Int31())
			m.p++

		case lang.OpSend:
			if m.channels == nil {
				return errors.New("vm: send with no channel registry configured")
			}
			handle := m.pop()
			v := m.pop()
			if err := m.channels.Send(handle, v); err != nil {
				return errors.Wrap(err, "vm: send")
			}
			m.p++

		case lang.OpReceive:
			if m.channels == nil {
				return errors.New("vm: receive with no channel registry configured")
			}
			addr := m.pop()
			handle := m.pop()
			v, err := m.channels.Receive(handle)
			if err != nil {
				return errors.Wrap(err, "vm: receive")
			}
			m.s[addr] = v
			m.p++

		case lang.OpParallel:
			// A lone Parallel only reaches dispatch if invoke's lookahead
			// didn't consume it (it always should); treat it as a no-op so
			// a stray one never wedges the machine.
			m.p++

		default:
			return errors.Errorf("vm: invalid opcode %d at p=%d", m.code[m.p], m.p)
		}
		m.insCount++
	}
}

func boolCell(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// invoke implements ProcedureInvocation: it either completes an in-place
// call into this machine's own frame, or, when the instruction is
// immediately followed by Parallel, hands a freshly prepared frame to the
// spawner and lets this machine continue past both instructions.
func (m *Machine) invoke() error {
	l, a := m.code[m.p+1], m.code[m.p+2]
	entry := int(m.code[a])
	encoded := m.code[a+1]
	hasReturn := encoded < 0
	paramSlots := int(encoded)
	if hasReturn {
		paramSlots = int(-(encoded + 1))
	}
	// The return parameter, when present, occupies displacement 0 of the
	// callee's frame ahead of its ordinary parameters (spec.md §4.3: "the
	// return parameter occupies displacement 0 of a function's body
	// scope"); shift where the moved arguments land by one slot so they
	// don't collide with it.
	paramOffset := 0
	if hasReturn {
		paramOffset = 1
	}

	parallel := lang.Opcode(m.code[m.p+3]) == lang.OpParallel
	retAddr := m.p + 3
	if parallel {
		retAddr = m.p + 4
	}

	staticParent := m.walkStatic(int32(m.b), l)
	lo := m.t - paramSlots + 1

	if !parallel {
		for i := paramSlots - 1; i >= 0; i-- {
			m.s[lo+headerSize+paramOffset+i] = m.s[lo+i]
		}
		m.s[lo] = int32(staticParent)
		m.s[lo+1] = int32(m.b)
		m.s[lo+2] = int32(retAddr)
		m.b = lo
		m.t = lo + headerSize + paramOffset + paramSlots - 1
		m.p = entry
		return nil
	}

	if m.spawner == nil {
		return errors.New("vm: parallel with no node spawner configured")
	}
	top := lo + headerSize + paramOffset + paramSlots - 1
	// The node gets its own data store as large as this machine's, not just
	// big enough to hold the initial record: its body still has locals,
	// expression temporaries and calls of its own ahead of it.
	snapshot := make([]int32, len(m.s))
	copy(snapshot, m.s[:lo])
	for i := 0; i < paramSlots; i++ {
		snapshot[lo+headerSize+paramOffset+i] = m.s[lo+i]
	}
	snapshot[lo] = int32(staticParent)
	snapshot[lo+1] = -1
	snapshot[lo+2] = -1 // sentinel: EndProcedureBlock sees this and halts the node instead of returning.
	m.spawner.Spawn(entry, snapshot, lo, top)

	m.t = lo - 1
	m.p = retAddr
	return nil
}
