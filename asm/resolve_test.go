package asm

import (
	"errors"
	"strings"
	"testing"
)

func mustParseForLayout(t *testing.T, src string) *Program {
	t.Helper()
	p := NewParser(NewLexer(src))
	prog, errs := p.Parse()
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return prog
}

func TestComputeLayoutAssignsSequentialCodeAddresses(t *testing.T) {
	prog := mustParseForLayout(t, "start:\n  add t0, t1, t2\nmid:\n  store t0, s0, 0\n  load t1, s0, 0\nend:\n  halt\n")
	layout, err := ComputeLayout(prog)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if layout.CodeAddr["start"] != 0 {
		t.Fatalf("start = %d, want 0", layout.CodeAddr["start"])
	}
	if layout.CodeAddr["mid"] != 1 {
		t.Fatalf("mid = %d, want 1 (after the single-slot add)", layout.CodeAddr["mid"])
	}
	if layout.CodeAddr["end"] != 5 {
		t.Fatalf("end = %d, want 5 (1 add + 2 store + 2 load)", layout.CodeAddr["end"])
	}
	if layout.CodeSize != 6 {
		t.Fatalf("CodeSize = %d, want 6", layout.CodeSize)
	}
}

func TestComputeLayoutMulReservesMacroSlots(t *testing.T) {
	prog := mustParseForLayout(t, "mul t2, t0, t1\nnext:\n  halt\n")
	layout, err := ComputeLayout(prog)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if layout.CodeAddr["next"] != multiplyMacroSlots {
		t.Fatalf("next = %d, want %d", layout.CodeAddr["next"], multiplyMacroSlots)
	}
}

func TestComputeLayoutAssignsSequentialDataAddresses(t *testing.T) {
	prog := mustParseForLayout(t, "halt\n.data\na: .word 1\nb: .byte 2\nc: .word 3\n")
	layout, err := ComputeLayout(prog)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if layout.DataAddr["a"] != 0 || layout.DataAddr["b"] != 1 || layout.DataAddr["c"] != 2 {
		t.Fatalf("data addresses = %+v, want a:0 b:1 c:2", layout.DataAddr)
	}
}

func TestComputeLayoutErrorsWhenCodeOverflowsTrampolineRegion(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < trampolineLowBase+1; i++ {
		sb.WriteString("nop\n")
	}
	prog := mustParseForLayout(t, sb.String())
	_, err := ComputeLayout(prog)
	if !errors.Is(err, ErrControlStoreFull) {
		t.Fatalf("expected ErrControlStoreFull, got %v", err)
	}
}

func TestLowerErrorsOnTooManyBranches(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("start:\n")
	for i := 0; i < trampolineCapacity+1; i++ {
		sb.WriteString("  beq t0, t1, start\n")
	}
	sb.WriteString("  halt\n")
	prog := mustParseForLayout(t, sb.String())
	_, _, err := Lower(prog)
	if !errors.Is(err, ErrTooManyBranches) {
		t.Fatalf("expected ErrTooManyBranches, got %v", err)
	}
}

func TestResolveTargetReturnsUndefinedLabelError(t *testing.T) {
	layout := &Layout{CodeAddr: map[string]uint16{}, DataAddr: map[string]uint32{}}
	_, err := layout.resolveTarget("missing", 7)
	var undef *ErrUndefinedLabel
	if !errors.As(err, &undef) {
		t.Fatalf("expected *ErrUndefinedLabel, got %v", err)
	}
	if undef.Label != "missing" || undef.Line != 7 {
		t.Fatalf("undef = %+v, want Label=missing Line=7", undef)
	}
}

func TestResolveOperandFollowsDataLabel(t *testing.T) {
	layout := &Layout{CodeAddr: map[string]uint16{}, DataAddr: map[string]uint32{"val": 42}}
	v, err := layout.resolveOperand(Value{Label: "val"}, 1)
	if err != nil {
		t.Fatalf("resolveOperand: %v", err)
	}
	if v != 42 {
		t.Fatalf("resolved = %d, want 42", v)
	}
}

func TestResolveOperandRejectsOutOfRangeImmediate(t *testing.T) {
	layout := &Layout{CodeAddr: map[string]uint16{}, DataAddr: map[string]uint32{}}
	if _, err := layout.resolveOperand(Value{Immediate: 1000}, 1); err == nil {
		t.Fatalf("expected an error for an out-of-range immediate")
	}
}

func TestResolveOperandRejectsDataLabelBeyondImmediateRange(t *testing.T) {
	layout := &Layout{CodeAddr: map[string]uint16{}, DataAddr: map[string]uint32{"far": 300}}
	if _, err := layout.resolveOperand(Value{Label: "far"}, 1); err == nil {
		t.Fatalf("expected an error for a data label address too large for an 8-bit immediate")
	}
}
