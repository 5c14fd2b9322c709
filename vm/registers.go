package vm

// Registers holds the sixteen general-purpose 32-bit cells plus the
// program counter and stack pointer, which are separate cells.
type Registers struct {
	R  [NumRegisters]uint32
	PC uint32
	SP uint32
}

// NewRegisters returns a Registers block with SP initialised to the top
// of addressable memory (grows toward lower addresses).
func NewRegisters(memSize uint32) *Registers {
	r := &Registers{}
	r.Reset(memSize)
	return r
}

// Reset zeroes every register and PC, and resets SP to memSize-8.
func (r *Registers) Reset(memSize uint32) {
	for i := range r.R {
		r.R[i] = 0
	}
	r.PC = 0
	r.SP = memSize - 8
}

// Get returns the value of register i (0-15); out-of-range indices read
// as zero, mirroring how reserved/undefined operand bits are treated.
func (r *Registers) Get(i int) uint32 {
	if i < 0 || i >= NumRegisters {
		return 0
	}
	return r.R[i]
}

// Set writes register i; out-of-range indices are a no-op.
func (r *Registers) Set(i int, v uint32) {
	if i < 0 || i >= NumRegisters {
		return
	}
	r.R[i] = v
}

// Flags is the four-bit condition-code status word: Zero, Negative,
// Carry/borrow, signed Overflow. No other bits have meaning.
type Flags struct {
	Z, N, C, V bool
}

// ToByte packs the flags into a single byte (Z=bit0, N=bit1, C=bit2, V=bit3).
func (f Flags) ToByte() byte {
	var b byte
	if f.Z {
		b |= 1 << 0
	}
	if f.N {
		b |= 1 << 1
	}
	if f.C {
		b |= 1 << 2
	}
	if f.V {
		b |= 1 << 3
	}
	return b
}

// FlagsFromByte unpacks a flags byte produced by ToByte.
func FlagsFromByte(b byte) Flags {
	return Flags{
		Z: b&(1<<0) != 0,
		N: b&(1<<1) != 0,
		C: b&(1<<2) != 0,
		V: b&(1<<3) != 0,
	}
}

// setZN sets Z and N from a computed 32-bit result; C and V are left to
// the caller, since their meaning varies by operation class (see alu.go).
func (f *Flags) setZN(result uint32) {
	f.Z = result == 0
	f.N = result&0x80000000 != 0
}

// EvalCondition evaluates a 3-bit condition code against the current
// flags. See the bit-layout comment on the Cond* constants.
func EvalCondition(cond byte, f Flags) bool {
	invert := cond&0x4 != 0
	signed := cond&0x2 != 0
	ztest := cond&0x1 != 0

	var pre bool
	switch {
	case ztest && signed:
		pre = !f.Z && f.N == f.V
	case ztest && !signed:
		pre = !f.Z
	case !ztest && signed:
		pre = f.N == f.V
	default:
		pre = true
	}
	return pre != invert
}
