package uarch_test

// End-to-end scenarios driven through the real assembler pipeline
// (lex -> parse -> lower -> CPU.Run), not hand-encoded microcode: each
// program below is exactly what a .s source file would contain, assembled
// the same way cmd/vasm does it.

import (
	"context"
	"testing"
	"time"

	"vondel/asm"
	"vondel/uarch"
)

func assembleAndRun(t *testing.T, src string, preload map[uarch.GPReg]uint32) *uarch.CPU {
	t.Helper()
	p := asm.NewParser(asm.NewLexer(src))
	prog, errs := p.Parse()
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	cs, ram, err := asm.Lower(prog)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}

	vram := uarch.NewRAM()
	vram.Load(ram)
	cpu := uarch.NewCPU(cs, vram)
	for reg, v := range preload {
		cpu.Regs.GP[reg] = v
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cpu.Run(ctx, 10_000, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return cpu
}

func TestScenarioAddTwoRegisters(t *testing.T) {
	src := "main:\n  addi a0, a1, 0\n  add a0, a0, a2\n  halt\n"
	cpu := assembleAndRun(t, src, map[uarch.GPReg]uint32{uarch.A1: 7, uarch.A2: 5})
	if got := cpu.Regs.GP[uarch.A0]; got != 12 {
		t.Fatalf("A0 = %d, want 12", got)
	}
}

func TestScenarioMultiplyViaMacro(t *testing.T) {
	src := "main:\n  mul a0, a1, a2\n  halt\n"

	cases := []struct{ a1, a2, want uint32 }{
		{5, 6, 30},
		{6, 5, 30},
		{0, 9, 0},
	}
	for _, c := range cases {
		cpu := assembleAndRun(t, src, map[uarch.GPReg]uint32{uarch.A1: c.a1, uarch.A2: c.a2})
		if got := cpu.Regs.GP[uarch.A0]; got != c.want {
			t.Fatalf("A1=%d A2=%d: A0 = %d, want %d", c.a1, c.a2, got, c.want)
		}
	}
}

func TestScenarioMemoryRoundTrip(t *testing.T) {
	src := "main:\n  addi a1, a1, 42\n  store a1, t3, slot\n  load a2, t3, slot\n  halt\n.data\nslot: .word 0\n"

	p := asm.NewParser(asm.NewLexer(src))
	prog, errs := p.Parse()
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	layout, err := asm.ComputeLayout(prog)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	slotAddr := layout.DataAddr["slot"]

	cpu := assembleAndRun(t, src, map[uarch.GPReg]uint32{uarch.T3: 0})
	if got := cpu.Regs.GP[uarch.A2]; got != 42 {
		t.Fatalf("A2 = %d, want 42", got)
	}
	cell, err := cpu.RAM.Get(slotAddr)
	if err != nil {
		t.Fatalf("RAM.Get: %v", err)
	}
	if cell != 42 {
		t.Fatalf("RAM[slot] = %d, want 42", cell)
	}
}

func TestScenarioConditionalBranch(t *testing.T) {
	src := "main:\n  beq a1, a2, done\n  addi a3, a3, 1\ndone:\n  halt\n"

	equal := assembleAndRun(t, src, map[uarch.GPReg]uint32{uarch.A1: 3, uarch.A2: 3})
	if got := equal.Regs.GP[uarch.A3]; got != 0 {
		t.Fatalf("A1==A2: A3 = %d, want unchanged 0", got)
	}

	notEqual := assembleAndRun(t, src, map[uarch.GPReg]uint32{uarch.A1: 3, uarch.A2: 4})
	if got := notEqual.Regs.GP[uarch.A3]; got != 1 {
		t.Fatalf("A1!=A2: A3 = %d, want 1", got)
	}
}

func TestScenarioForwardJump(t *testing.T) {
	src := "main:\n  jmp later\n  halt\nlater:\n  addi a0, a0, 7\n  halt\n"
	cpu := assembleAndRun(t, src, nil)
	if got := cpu.Regs.GP[uarch.A0]; got != 7 {
		t.Fatalf("A0 = %d, want 7", got)
	}
}

func TestScenarioDataLabelAsByteImmediate(t *testing.T) {
	src := "main:\n  addi a0, a0, k\n  halt\n.data\nk: .byte 9\n"
	cpu := assembleAndRun(t, src, nil)
	if got := cpu.Regs.GP[uarch.A0]; got != 9 {
		t.Fatalf("A0 = %d, want 9", got)
	}
}
