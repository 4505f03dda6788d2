package asm

import "fmt"

// TokenKind classifies a lexed token.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokNumber
	TokLabel
	TokReg
	TokOpcode
	TokPseudoOp
	TokComma
	TokColon
	TokIllegal
)

func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "EOF"
	case TokNumber:
		return "NUMBER"
	case TokLabel:
		return "LABEL"
	case TokReg:
		return "REG"
	case TokOpcode:
		return "OPCODE"
	case TokPseudoOp:
		return "PSEUDO_OP"
	case TokComma:
		return "COMMA"
	case TokColon:
		return "COLON"
	default:
		return "ILLEGAL"
	}
}

// Token is one lexed unit together with its source position, kept through
// parsing so parse errors can report a line and column.
type Token struct {
	Kind   TokenKind
	Text   string
	Value  int64 // populated for TokNumber
	Line   int
	Column int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Text, t.Line, t.Column)
}

// Opcode enumerates the instruction mnemonics the assembler recognizes.
type Opcode int

const (
	OpAdd Opcode = iota
	OpAddi
	OpSub
	OpSubi
	OpAnd
	OpAndi
	OpOr
	OpOri
	OpXor
	OpXori
	OpMul
	OpMul2
	OpMuli
	OpDiv
	OpDivi
	OpMod
	OpModi
	OpNot
	OpMov
	OpLui
	OpSll
	OpSra
	OpSla
	OpLoad
	OpStore
	OpBeq
	OpBne
	OpBlt
	OpBgt
	OpJmp
	OpNop
	OpHalt
)

var opcodeNames = map[string]Opcode{
	"add": OpAdd, "addi": OpAddi,
	"sub": OpSub, "subi": OpSubi,
	"and": OpAnd, "andi": OpAndi,
	"or": OpOr, "ori": OpOri,
	"xor": OpXor, "xori": OpXori,
	"mul": OpMul, "mul2": OpMul2, "muli": OpMuli,
	"div": OpDiv, "divi": OpDivi,
	"mod": OpMod, "modi": OpModi,
	"not": OpNot, "mov": OpMov, "lui": OpLui,
	"sll": OpSll, "sra": OpSra, "sla": OpSla,
	"load": OpLoad, "store": OpStore,
	"beq": OpBeq, "bne": OpBne, "blt": OpBlt, "bgt": OpBgt,
	"jmp": OpJmp, "nop": OpNop, "halt": OpHalt,
}

var opcodeMnemonics = func() map[Opcode]string {
	m := make(map[Opcode]string, len(opcodeNames))
	for name, op := range opcodeNames {
		m[op] = name
	}
	return m
}()

func (o Opcode) String() string {
	if name, ok := opcodeMnemonics[o]; ok {
		return name
	}
	return "?"
}

// PseudoOp enumerates the assembler directives.
type PseudoOp int

const (
	PseudoData PseudoOp = iota
	PseudoText
	PseudoWord
	PseudoByte
	PseudoGlobal
)

var pseudoOpNames = map[string]PseudoOp{
	".data": PseudoData, ".text": PseudoText,
	".word": PseudoWord, ".byte": PseudoByte,
	".global": PseudoGlobal,
}
