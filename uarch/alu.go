package uarch

// Func is the 3-bit ALU function code (ALU_CTRL bits 4-6).
type Func uint8

const (
	FuncAND Func = iota
	FuncOR
	FuncNOT // unary on B: result = ^b
	FuncADD
	FuncXOR
	FuncMUL
	FuncDIV
	FuncMOD
)

// Shift is the 2-bit post-function shifter code (ALU_CTRL bits 7-8).
type Shift uint8

const (
	ShiftIdentity Shift = iota
	ShiftSRL1           // logical right by 1
	ShiftSLL8           // logical left by 8
	ShiftSLA1           // arithmetic/logical left by 1
)

// EncodeALUCtrl packs the six named ALU_CTRL components into the 9-bit
// field, in the bit order §4.1 specifies: bit0 inc, bit1 invA, bit2 enB,
// bit3 enA, bits4-6 fn, bits7-8 sh.
func EncodeALUCtrl(enA, enB, invA, inc bool, fn Func, sh Shift) uint16 {
	var v uint16
	if inc {
		v |= 1 << 0
	}
	if invA {
		v |= 1 << 1
	}
	if enB {
		v |= 1 << 2
	}
	if enA {
		v |= 1 << 3
	}
	v |= uint16(fn&0b111) << 4
	v |= uint16(sh&0b11) << 7
	return v
}

// DecodeALUCtrl splits a 9-bit ALU_CTRL field back into its six components.
func DecodeALUCtrl(ctrl uint16) (enA, enB, invA, inc bool, fn Func, sh Shift) {
	inc = ctrl&(1<<0) != 0
	invA = ctrl&(1<<1) != 0
	enB = ctrl&(1<<2) != 0
	enA = ctrl&(1<<3) != 0
	fn = Func((ctrl >> 4) & 0b111)
	sh = Shift((ctrl >> 7) & 0b11)
	return
}

// ALU is the combinational unit sitting between the A/B buses and the
// C bus. It latches Z/N on every evaluation, against the result before the
// post-function shift is applied.
//
// Grounded on the original interpreter's Alu::entry/op split: entry decodes
// ALU_CTRL and captures the operand pair, op produces the result.
type ALU struct {
	a, b    uint32
	fn      Func
	sh      Shift
	incFlag bool
	z, n    bool
}

// Entry decodes ctrl and latches the operand pair according to the enable
// and invert bits.
func (u *ALU) Entry(ctrl uint16, a, b uint32) {
	enA, enB, invA, inc, fn, sh := DecodeALUCtrl(ctrl)

	switch {
	case !enA && !enB:
		a, b = 0, 0
	case !enA && enB:
		a = 0
	case enA && !enB:
		b = 0
	}
	if invA {
		a = ^a
	}

	u.a, u.b, u.fn, u.sh = a, b, fn, sh
	u.incFlag = inc
}

// Op evaluates the latched operation, updates Z/N, and returns the
// (possibly shifted) result placed on the C bus.
func (u *ALU) Op() uint32 {
	var c uint32
	switch u.fn {
	case FuncAND:
		c = u.a & u.b
	case FuncOR:
		c = u.a | u.b
	case FuncNOT:
		c = ^u.b
	case FuncADD:
		sum := int64(int32(u.a)) + int64(int32(u.b))
		if u.incFlag {
			sum++
		}
		c = uint32(sum)
	case FuncXOR:
		c = u.a ^ u.b
	case FuncMUL:
		c = u.a * u.b
	case FuncDIV:
		if u.b == 0 {
			c = 0
		} else {
			c = u.a / u.b
		}
	case FuncMOD:
		if u.b == 0 {
			c = 0
		} else {
			c = u.a % u.b
		}
	}

	u.z = c == 0
	u.n = c>>31 == 1

	switch u.sh {
	case ShiftIdentity:
	case ShiftSRL1:
		c >>= 1
	case ShiftSLL8:
		c <<= 8
	case ShiftSLA1:
		c <<= 1
	}
	return c
}

// Z reports whether the last Op's pre-shift result was zero.
func (u *ALU) Z() bool { return u.z }

// N reports whether the last Op's pre-shift result was negative (bit 31 set).
func (u *ALU) N() bool { return u.n }
