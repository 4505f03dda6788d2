package asm

import (
	"fmt"

	"vondel/uarch"
)

// multiplyMacroSlots is how many sequential control-store addresses
// lowerMultiplyMacro's straight-line half occupies (its branched half and
// loop-exit live in the derived upper-mirror addresses instead; see below).
const multiplyMacroSlots = 7

// lowerLoad compiles `load rd, rs1, imm` into two microinstructions: one to
// form the effective address in MAR, one to let the memory-phase read land
// in MDR and copy it on to rd in the same cycle (the data path resolves
// MDR's fresh value before the ALU reads the A bus, so both happen at once).
func lowerLoad(words []uint64, pc uint16, inst Instruction, layout *Layout) error {
	imm, err := layout.resolveOperand(inst.Rs2, inst.Line)
	if err != nil {
		return err
	}

	addr := uarch.Microinstruction{
		ASel:    uarch.ASelFor(inst.Rs1),
		BSel:    uarch.BSelIMM,
		Imm:     imm,
		ALUCtrl: uarch.EncodeALUCtrl(true, true, false, false, uarch.FuncADD, uarch.ShiftIdentity),
		CBus:    1 << uarch.CBusMAR,
		Next:    pc + 1,
	}
	words[pc] = addr.Encode()

	load := uarch.Microinstruction{
		ASel:    uarch.ASelMDR,
		ALUCtrl: uarch.EncodeALUCtrl(true, false, false, false, uarch.FuncOR, uarch.ShiftIdentity),
		CBus:    1 << uarch.CBusBitFor(inst.Rd),
		Mem:     uarch.MemRead,
		Next:    pc + 2,
	}
	words[pc+1] = load.Encode()
	return nil
}

// lowerStore compiles `store rsrc, rbase, imm` into two microinstructions:
// form the effective address in MAR, then copy the source register into
// MDR while asserting the write so the data path's end-of-cycle RAM write
// sees the value committed this same cycle.
func lowerStore(words []uint64, pc uint16, inst Instruction, layout *Layout) error {
	imm, err := layout.resolveOperand(inst.Rs2, inst.Line)
	if err != nil {
		return err
	}

	addr := uarch.Microinstruction{
		ASel:    uarch.ASelFor(inst.Rd), // base register
		BSel:    uarch.BSelIMM,
		Imm:     imm,
		ALUCtrl: uarch.EncodeALUCtrl(true, true, false, false, uarch.FuncADD, uarch.ShiftIdentity),
		CBus:    1 << uarch.CBusMAR,
		Next:    pc + 1,
	}
	words[pc] = addr.Encode()

	store := uarch.Microinstruction{
		ASel:    uarch.ASelFor(inst.Rs1), // value source register
		ALUCtrl: uarch.EncodeALUCtrl(true, false, false, false, uarch.FuncOR, uarch.ShiftIdentity),
		CBus:    1 << uarch.CBusMDR,
		Mem:     uarch.MemWrite,
		Next:    pc + 2,
	}
	words[pc+1] = store.Encode()
	return nil
}

// lowerBranch compiles a conditional branch into one compare-and-jam
// microinstruction plus a pair of unconditional trampoline jumps.
//
// The control store's JAM mechanism can only OR a single bit (bit 8) into
// NEXT_ADDR, which means the two addresses a jam can choose between must
// differ by exactly that bit. Arbitrary branch targets almost never
// satisfy that on their own, so every branch gets its own reserved pair of
// slots — one at some address L < 256, one at L+256 — that exist purely to
// receive the jam and immediately re-jump (unconditionally, so no further
// addressing constraint applies) to the real fallthrough/target addresses.
// This is the same "page select bit" trick classic microprogrammed
// machines use for conditional control transfer, generalized here to
// arbitrary label placement via the trampoline indirection instead of
// requiring the compiler to lay branch bodies out on matching pages.
func lowerBranch(words []uint64, pc uint16, inst Instruction, layout *Layout, trampoline *uint16) error {
	if *trampoline >= trampolineLowBase+trampolineCapacity {
		return ErrTooManyBranches
	}
	low := *trampoline
	high := low + 256
	*trampoline++

	fallthroughAddr := pc + 1
	target, err := layout.resolveTarget(inst.Target, inst.Line)
	if err != nil {
		return err
	}

	r1, r2 := inst.Rd, inst.Rs1 // parsed operand order: rs1, rs2, target
	var cmp uarch.Microinstruction
	var takenIsHigh bool

	switch inst.Opcode {
	case OpBeq:
		cmp = compareForEquality(r2, r1)
		cmp.Jam = uarch.JamZ
		takenIsHigh = true
	case OpBne:
		cmp = compareForEquality(r2, r1)
		cmp.Jam = uarch.JamZ
		takenIsHigh = false
	case OpBlt:
		cmp = compareForOrder(r2, r1) // result = r1 - r2; N set iff r1 < r2
		cmp.Jam = uarch.JamN
		takenIsHigh = true
	case OpBgt:
		cmp = compareForOrder(r1, r2) // result = r2 - r1; N set iff r1 > r2
		cmp.Jam = uarch.JamN
		takenIsHigh = true
	}
	cmp.Next = low
	words[pc] = cmp.Encode()

	var lowTarget, highTarget uint16
	if takenIsHigh {
		lowTarget, highTarget = fallthroughAddr, target
	} else {
		lowTarget, highTarget = target, fallthroughAddr
	}

	words[low] = uarch.Microinstruction{Next: lowTarget}.Encode()
	words[high] = uarch.Microinstruction{Next: highTarget}.Encode()
	return nil
}

// compareForEquality builds A=invA(negA), B=b, inc=1 so the result is
// b - negA and Z is set exactly when negA == b.
func compareForEquality(negA, b uarch.GPReg) uarch.Microinstruction {
	return uarch.Microinstruction{
		ASel:    uarch.ASelFor(negA),
		BSel:    uarch.BSelFor(b),
		ALUCtrl: uarch.EncodeALUCtrl(true, true, true, true, uarch.FuncADD, uarch.ShiftIdentity),
	}
}

// compareForOrder builds A=invA(negA), B=b, inc=1 so the result is b - negA
// and N is set exactly when b < negA.
func compareForOrder(negA, b uarch.GPReg) uarch.Microinstruction {
	return compareForEquality(negA, b)
}

// copyInto builds the "copy pattern" microinstruction (func=OR, enB=0, so
// a|0=a) reading src and writing it to every register whose bit is set in
// cbus — used by the multiply macro to load its scratch registers.
func copyInto(src uarch.GPReg, cbus uint32) uarch.Microinstruction {
	return uarch.Microinstruction{
		ASel:    uarch.ASelFor(src),
		CBus:    cbus,
		ALUCtrl: uarch.EncodeALUCtrl(true, false, false, false, uarch.FuncOR, uarch.ShiftIdentity),
	}
}

// lowerMultiplyMacro compiles `mul rd <- rs1, rs2` into the software
// repeated-addition macro: rd accumulates max(rs1,rs2) added to itself
// min(rs1,rs2) times, using T0 as the loop counter and T1 as the held
// multiplicand.
//
// Sequence: compare rs1 and rs2 (JAMN routes to whichever operand is
// larger), copy min into T0 and max into T1, zero rd, then loop — test T0
// against zero (JAMZ exits the loop), else add T1 into rd and decrement T0.
// Testing before accumulating (rather than decrementing first) is what
// makes `min == 0` correct: the loop body never runs, so rd is left at its
// zeroed initial value instead of underflowing T0.
//
// The comparison's JAM can only OR in bit 8, so — exactly like a
// conditional branch — the "rs1 > rs2" half of the macro must live at the
// jammed mirror address (fallthroughAddr | 0x100) rather than wherever is
// convenient; grounded on the same address-doubling technique lowerBranch
// uses, but here the mirrored slots hold real macro body instructions
// instead of a one-instruction trampoline, since the macro has no spare
// unconditional-jump indirection to route through. Only the two JAM sites
// (the initial compare and the loop test) are address-constrained this way
// — every other microinstruction's NEXT field is a plain, unconstrained
// jump, so they can converge back onto the shared zero/loop-test slots
// freely.
func lowerMultiplyMacro(words []uint64, pc uint16, inst Instruction, layout *Layout) error {
	if !inst.Rs2.IsReg {
		return fmt.Errorf("%d: mul requires two register operands (use mul2/muli for an immediate)", inst.Line)
	}

	rs1, rs2, rd := inst.Rs1, inst.Rs2.Reg, inst.Rd
	fallthroughAddr := pc + 1
	zeroRd := pc + 3
	loopTest := pc + 4
	accumulate := pc + 5
	decrement := pc + 6

	cmp := compareForOrder(rs1, rs2) // result = rs2 - rs1; N set iff rs1 > rs2
	cmp.Jam = uarch.JamN
	cmp.Next = fallthroughAddr
	words[pc] = cmp.Encode()

	// Fallthrough half: rs1 <= rs2, so min=rs1, max=rs2.
	minCopy := copyInto(rs1, 1<<uarch.CBusBitFor(uarch.T0))
	minCopy.Next = pc + 2
	words[pc+1] = minCopy.Encode()

	maxCopy := copyInto(rs2, 1<<uarch.CBusBitFor(uarch.T1))
	maxCopy.Next = zeroRd
	words[pc+2] = maxCopy.Encode()

	zero := uarch.Microinstruction{
		ASel:    uarch.ASelIMM,
		ALUCtrl: uarch.EncodeALUCtrl(true, false, false, false, uarch.FuncOR, uarch.ShiftIdentity),
		CBus:    1 << uarch.CBusBitFor(rd),
		Next:    loopTest,
	}
	words[zeroRd] = zero.Encode()

	test := uarch.Microinstruction{
		ASel:    uarch.ASelFor(uarch.T0),
		ALUCtrl: uarch.EncodeALUCtrl(true, false, false, false, uarch.FuncOR, uarch.ShiftIdentity),
		Jam:     uarch.JamZ,
		Next:    accumulate,
	}
	words[loopTest] = test.Encode()

	acc := uarch.Microinstruction{
		ASel:    uarch.ASelFor(rd),
		BSel:    uarch.BSelFor(uarch.T1),
		ALUCtrl: uarch.EncodeALUCtrl(true, true, false, false, uarch.FuncADD, uarch.ShiftIdentity),
		CBus:    1 << uarch.CBusBitFor(rd),
		Next:    decrement,
	}
	words[accumulate] = acc.Encode()

	dec := uarch.Microinstruction{
		ASel:    uarch.ASelIMM,
		Imm:     1,
		BSel:    uarch.BSelFor(uarch.T0),
		ALUCtrl: uarch.EncodeALUCtrl(true, true, true, true, uarch.FuncADD, uarch.ShiftIdentity),
		CBus:    1 << uarch.CBusBitFor(uarch.T0),
		Next:    loopTest,
	}
	words[decrement] = dec.Encode()

	// Branched half: rs1 > rs2, so min=rs2, max=rs1. These two addresses are
	// plain jump targets (the JAM already resolved to get here), so they can
	// converge back onto the shared zeroRd slot above instead of duplicating
	// it.
	branchedLow := fallthroughAddr | 0x100
	branchedMinCopy := copyInto(rs2, 1<<uarch.CBusBitFor(uarch.T0))
	branchedMinCopy.Next = branchedLow + 1
	words[branchedLow] = branchedMinCopy.Encode()

	branchedMaxCopy := copyInto(rs1, 1<<uarch.CBusBitFor(uarch.T1))
	branchedMaxCopy.Next = zeroRd
	words[branchedLow+1] = branchedMaxCopy.Encode()

	// loopTest's JAM can only reach accumulate's mirror address, so the
	// exit-the-loop instruction lives there and just jumps past the macro.
	loopExit := accumulate | 0x100
	words[loopExit] = uarch.Microinstruction{Next: pc + multiplyMacroSlots}.Encode()

	return nil
}
