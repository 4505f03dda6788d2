package uarch

import (
	"context"
	"testing"
	"time"
)

// buildWord is a small test-only helper mirroring what asm/lower.go does at
// run time: construct a Microinstruction from named fields and encode it.
func buildWord(t *testing.T, mi Microinstruction) uint64 {
	t.Helper()
	return mi.Encode()
}

func TestCPUAddsTwoRegistersThroughMicrocode(t *testing.T) {
	words := make([]uint64, CSSize)

	// word0: T0 <- 5 (copy pattern: func=OR, enA=1, enB=0)
	words[0] = buildWord(t, Microinstruction{
		ASel:    ASelIMM,
		ALUCtrl: EncodeALUCtrl(true, false, false, false, FuncOR, ShiftIdentity),
		CBus:    1 << CBusBitFor(T0),
		Imm:     5,
		Next:    1,
	})
	// word1: T1 <- 3
	words[1] = buildWord(t, Microinstruction{
		ASel:    ASelIMM,
		ALUCtrl: EncodeALUCtrl(true, false, false, false, FuncOR, ShiftIdentity),
		CBus:    1 << CBusBitFor(T1),
		Imm:     3,
		Next:    2,
	})
	// word2: T2 <- T0 + T1
	words[2] = buildWord(t, Microinstruction{
		ASel:    ASelFor(T0),
		BSel:    BSelFor(T1),
		ALUCtrl: EncodeALUCtrl(true, true, false, false, FuncADD, ShiftIdentity),
		CBus:    1 << CBusBitFor(T2),
		Next:    3,
	})
	words[3] = Halt

	cs := NewControlStore(words)
	cpu := NewCPU(cs, NewRAM())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := cpu.Run(ctx, 100, nil); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := cpu.Regs.GP[T2]; got != 8 {
		t.Fatalf("T2 = %d, want 8", got)
	}
}

func TestCPUCycleLimit(t *testing.T) {
	words := make([]uint64, CSSize)
	// word0 jumps to itself forever, never reaching Halt.
	words[0] = buildWord(t, Microinstruction{Next: 0})
	cs := NewControlStore(words)
	cpu := NewCPU(cs, NewRAM())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := cpu.Run(ctx, 5, nil)
	if err != ErrCycleLimit {
		t.Fatalf("Run error = %v, want ErrCycleLimit", err)
	}
}
