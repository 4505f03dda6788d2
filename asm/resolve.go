package asm

import (
	"fmt"

	"vondel/uarch"
)

// trampolineLowBase is the first control-store address reserved for
// conditional-branch trampolines (see lowerBranch in macros.go). Ordinary
// sequential code must fit below this address; its jam-pair twin sits 256
// slots higher, in the top half of the 512-entry control store.
const trampolineLowBase = 192

// trampolineCapacity bounds how many conditional branches one program may
// contain, since each consumes one of the reserved trampoline pairs.
const trampolineCapacity = uarch.CSSize/2 - trampolineLowBase

// ErrControlStoreFull is returned when a program's straight-line code would
// overrun the address space reserved for it.
var ErrControlStoreFull = fmt.Errorf("asm: program too large for the %d-entry control store", uarch.CSSize)

// ErrTooManyBranches is returned when a program uses more conditional
// branches than the trampoline region has room for.
var ErrTooManyBranches = fmt.Errorf("asm: too many conditional branches (max %d)", trampolineCapacity)

// ErrUndefinedLabel is returned when an operand or branch target names a
// label that was never defined.
type ErrUndefinedLabel struct {
	Label string
	Line  int
}

func (e *ErrUndefinedLabel) Error() string {
	return fmt.Sprintf("%d: undefined label %q", e.Line, e.Label)
}

// Layout is the result of a label-resolution pass: where every text segment
// and data item landed.
type Layout struct {
	CodeAddr  map[string]uint16
	DataAddr  map[string]uint32
	ByteValue map[string]uint8 // value of every .byte item, by label
	CodeSize  uint16
}

// slotsFor returns how many control-store slots an instruction's opcode
// occupies in the sequential code region (branch trampoline pairs are
// allocated separately, not counted here).
func slotsFor(op Opcode) uint16 {
	if op == OpMul {
		return multiplyMacroSlots
	}
	switch opcodeShape[op] {
	case shapeLoad, shapeStore:
		return 2
	default:
		return 1
	}
}

// ComputeLayout walks prog once, assigning a control-store address to every
// text segment's entry point and a RAM address to every data item, without
// emitting any microinstruction content yet.
//
// Grounded on the original evaluator.rs's CsState address bookkeeping
// (curr_addr, add_instr), generalized to a two-pass scheme (lay out
// addresses first, then emit) per the module plan, since instructions here
// may reference labels defined later in the file.
func ComputeLayout(prog *Program) (*Layout, error) {
	l := &Layout{CodeAddr: map[string]uint16{}, DataAddr: map[string]uint32{}, ByteValue: map[string]uint8{}}

	var pc uint16
	for _, seg := range prog.Segments {
		if seg.Label != "" {
			l.CodeAddr[seg.Label] = pc
		}
		for _, inst := range seg.Instructions {
			pc += slotsFor(inst.Opcode)
		}
	}
	if pc > trampolineLowBase {
		return nil, ErrControlStoreFull
	}
	l.CodeSize = pc

	var addr uint32
	for _, d := range prog.Data {
		l.DataAddr[d.Label] = addr
		if d.Kind == DataByte {
			l.ByteValue[d.Label] = uint8(d.Value)
		}
		addr++
	}
	return l, nil
}

// resolveTarget looks up a branch/jump target label's code address.
func (l *Layout) resolveTarget(label string, line int) (uint16, error) {
	addr, ok := l.CodeAddr[label]
	if !ok {
		return 0, &ErrUndefinedLabel{Label: label, Line: line}
	}
	return addr, nil
}

// resolveOperand turns a Value into a concrete 8-bit immediate. A label
// naming a .byte item resolves to that byte's value; any other data label
// resolves to its data address.
func (l *Layout) resolveOperand(v Value, line int) (uint8, error) {
	if v.Label != "" {
		if b, ok := l.ByteValue[v.Label]; ok {
			return b, nil
		}
		addr, ok := l.DataAddr[v.Label]
		if !ok {
			return 0, &ErrUndefinedLabel{Label: v.Label, Line: line}
		}
		if addr > 0xFF {
			return 0, fmt.Errorf("%d: data label %q address %d does not fit in an 8-bit immediate", line, v.Label, addr)
		}
		return uint8(addr), nil
	}
	if v.Immediate < -128 || v.Immediate > 255 {
		return 0, fmt.Errorf("%d: immediate %d does not fit in 8 bits", line, v.Immediate)
	}
	return uint8(v.Immediate), nil
}
