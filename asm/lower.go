package asm

import (
	"fmt"

	"vondel/uarch"
)

// Lower compiles a parsed Program into a control-store image and a RAM data
// image. It is the assembler's only externally useful entry point once
// parsing has produced an error-free AST.
//
// Grounded on the original assembler's evaluator.rs (AsmEvaluator::eval),
// generalized from its single DoubleOperand/NoOperand instruction shape to
// the full opcode set SPEC_FULL.md names, and split into a label-resolution
// pass (resolve.go) followed by a pure-emission pass here, rather than the
// original's single interleaved pass, since several opcodes here need a
// forward-looking label/address map that isn't available in one pass.
func Lower(prog *Program) (*uarch.ControlStore, []uint32, error) {
	layout, err := ComputeLayout(prog)
	if err != nil {
		return nil, nil, err
	}

	words := make([]uint64, uarch.CSSize)
	trampoline := uint16(trampolineLowBase)

	var pc uint16
	for _, seg := range prog.Segments {
		for _, inst := range seg.Instructions {
			used, err := emitInstruction(words, pc, inst, layout, &trampoline)
			if err != nil {
				return nil, nil, err
			}
			pc += used
		}
	}

	ram := make([]uint32, len(prog.Data))
	for _, d := range prog.Data {
		addr := layout.DataAddr[d.Label]
		v := uint32(d.Value)
		if d.Kind == DataByte {
			if d.Value < 0 || d.Value > 0xFF {
				return nil, nil, fmt.Errorf("%d: byte value %d out of range", d.Line, d.Value)
			}
			v = uint32(d.Value) & 0xFF
		}
		ram[addr] = v
	}

	return uarch.NewControlStore(words), ram, nil
}

// emitInstruction writes inst's microinstruction(s) into words starting at
// pc and returns how many slots it used.
func emitInstruction(words []uint64, pc uint16, inst Instruction, layout *Layout, trampoline *uint16) (uint16, error) {
	if inst.Opcode == OpMul {
		return multiplyMacroSlots, lowerMultiplyMacro(words, pc, inst, layout)
	}

	switch opcodeShape[inst.Opcode] {
	case shapeDoubleOp:
		return 1, lowerDoubleOp(words, pc, inst, layout)
	case shapeUnary:
		return 1, lowerUnary(words, pc, inst, layout)
	case shapeShift:
		return 1, lowerShift(words, pc, inst)
	case shapeLoad:
		return 2, lowerLoad(words, pc, inst, layout)
	case shapeStore:
		return 2, lowerStore(words, pc, inst, layout)
	case shapeBranch:
		return 1, lowerBranch(words, pc, inst, layout, trampoline)
	case shapeJump:
		return 1, lowerJump(words, pc, inst, layout)
	case shapeNoOperand:
		return 1, lowerNoOperand(words, pc, inst)
	default:
		return 0, fmt.Errorf("%d: unhandled opcode %s", inst.Line, inst.Opcode)
	}
}

// aluParamsFor maps a double-operand opcode to its ALU function and
// invert/increment bits; any other opcode gets FuncOR with neither bit set.
func aluParamsFor(op Opcode) (fn uarch.Func, invA, inc bool) {
	switch op {
	case OpAdd, OpAddi:
		return uarch.FuncADD, false, false
	case OpSub, OpSubi:
		return uarch.FuncADD, true, true
	case OpAnd, OpAndi:
		return uarch.FuncAND, false, false
	case OpOr, OpOri:
		return uarch.FuncOR, false, false
	case OpXor, OpXori:
		return uarch.FuncXOR, false, false
	case OpMul2, OpMuli:
		return uarch.FuncMUL, false, false
	case OpDiv, OpDivi:
		return uarch.FuncDIV, false, false
	case OpMod, OpModi:
		return uarch.FuncMOD, false, false
	default:
		return uarch.FuncOR, false, false
	}
}

// lowerDoubleOp handles ADD/SUB/AND/OR/XOR/MUL2/DIV/MOD and their *i variants
// (plain MUL is a software macro handled separately — see lowerMultiplyMacro).
//
// SUB computes B-A: rs2 (or the immediate) goes on the A bus and gets
// inverted, rs1 goes on the B bus, inc=1 completes the two's-complement
// negation. Every other double-operand opcode puts rs1 on A and rs2/imm on
// B, so DIV and MOD compute rs1/rs2 and rs1%rs2. Whether rs2 is a register
// or an immediate/label is read off the parsed operand itself rather than
// the opcode's `i` suffix, so `addi rd, rs1, t2` and `add rd, rs1, 5` both
// lower sensibly instead of silently misreading one of them.
func lowerDoubleOp(words []uint64, pc uint16, inst Instruction, layout *Layout) error {
	fn, invA, inc := aluParamsFor(inst.Opcode)

	mi := uarch.Microinstruction{
		CBus: 1 << uarch.CBusBitFor(inst.Rd),
		Next: pc + 1,
	}

	if inst.Opcode == OpSub || inst.Opcode == OpSubi {
		mi.BSel = uarch.BSelFor(inst.Rs1)
		if inst.Rs2.IsReg {
			mi.ASel = uarch.ASelFor(inst.Rs2.Reg)
		} else {
			v, err := layout.resolveOperand(inst.Rs2, inst.Line)
			if err != nil {
				return err
			}
			mi.ASel = uarch.ASelIMM
			mi.Imm = v
		}
	} else {
		mi.ASel = uarch.ASelFor(inst.Rs1)
		if inst.Rs2.IsReg {
			mi.BSel = uarch.BSelFor(inst.Rs2.Reg)
		} else {
			v, err := layout.resolveOperand(inst.Rs2, inst.Line)
			if err != nil {
				return err
			}
			mi.BSel = uarch.BSelIMM
			mi.Imm = v
		}
	}

	mi.ALUCtrl = uarch.EncodeALUCtrl(true, true, invA, inc, fn, uarch.ShiftIdentity)
	words[pc] = mi.Encode()
	return nil
}

// lowerUnary handles NOT, MOV, and LUI, all built on the copy pattern
// (func=OR, enB=0 so b is forced to 0 and the result is just a, optionally
// inverted or shifted).
func lowerUnary(words []uint64, pc uint16, inst Instruction, layout *Layout) error {
	mi := uarch.Microinstruction{
		CBus: 1 << uarch.CBusBitFor(inst.Rd),
		Next: pc + 1,
	}

	invA := inst.Opcode == OpNot
	sh := uarch.ShiftIdentity
	if inst.Opcode == OpLui {
		sh = uarch.ShiftSLL8
	}

	if inst.Rs2.IsReg {
		mi.ASel = uarch.ASelFor(inst.Rs2.Reg)
	} else {
		v, err := layout.resolveOperand(inst.Rs2, inst.Line)
		if err != nil {
			return err
		}
		mi.ASel = uarch.ASelIMM
		mi.Imm = v
	}

	mi.ALUCtrl = uarch.EncodeALUCtrl(true, false, invA, false, uarch.FuncOR, sh)
	words[pc] = mi.Encode()
	return nil
}

// lowerShift handles SLL (A<<8), SRA (A>>1), and SLA (A<<1): the copy
// pattern again, with the function-specific shifter code substituted in.
func lowerShift(words []uint64, pc uint16, inst Instruction) error {
	var sh uarch.Shift
	switch inst.Opcode {
	case OpSll:
		sh = uarch.ShiftSLL8
	case OpSra:
		sh = uarch.ShiftSRL1
	case OpSla:
		sh = uarch.ShiftSLA1
	}

	mi := uarch.Microinstruction{
		ASel:    uarch.ASelFor(inst.Rs1),
		ALUCtrl: uarch.EncodeALUCtrl(true, false, false, false, uarch.FuncOR, sh),
		CBus:    1 << uarch.CBusBitFor(inst.Rd),
		Next:    pc + 1,
	}
	words[pc] = mi.Encode()
	return nil
}

func lowerJump(words []uint64, pc uint16, inst Instruction, layout *Layout) error {
	target, err := layout.resolveTarget(inst.Target, inst.Line)
	if err != nil {
		return err
	}
	mi := uarch.Microinstruction{Next: target}
	words[pc] = mi.Encode()
	return nil
}

func lowerNoOperand(words []uint64, pc uint16, inst Instruction) error {
	switch inst.Opcode {
	case OpHalt:
		words[pc] = uarch.Halt
	case OpNop:
		words[pc] = uarch.Microinstruction{Next: pc + 1}.Encode()
	}
	return nil
}
