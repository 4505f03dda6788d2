package asm

import "vondel/uarch"

// Program is the parsed form of a whole assembly file: an ordered list of
// labeled text segments plus the flattened data section.
//
// Grounded on the original assembler's sections.rs Sections/TextSegment
// split, generalized from its two-field (LabeledSection/GlobalSection) enum
// into a single slice since Go has no closed sum type to mirror it with and
// a label of "" reads naturally as "no entry label" here.
type Program struct {
	Segments []TextSegment
	Data     []DataDef
}

// TextSegment is a run of instructions, optionally entered via Label.
type TextSegment struct {
	Label        string
	Instructions []Instruction
}

// DataKind distinguishes the two `.data` item widths.
type DataKind int

const (
	DataByte DataKind = iota
	DataWord
)

// DataDef is one `.data` section entry.
type DataDef struct {
	Label string
	Kind  DataKind
	Value int64
	Line  int
}

// Value is an instruction operand: either a register or an immediate/label
// reference resolved during lowering.
//
// Grounded on the original evaluator.rs's Value::Reg/Value::Immediate enum.
type Value struct {
	IsReg     bool
	Reg       uarch.GPReg
	Immediate int64  // meaningful when !IsReg and Label == ""
	Label     string // meaningful when !IsReg and Label != ""
}

// Instruction is one assembled line. Not every field is meaningful for
// every Opcode; Rs2/Target are populated according to the opcode's arity.
type Instruction struct {
	Opcode Opcode
	Rd     uarch.GPReg
	Rs1    uarch.GPReg
	Rs2    Value
	Target string // branch/jump label operand
	Line   int
}
