package uarch

import "testing"

func TestWriteCBusOneHot(t *testing.T) {
	r := NewRegisters()
	r.WriteCBus(1<<CBusMAR, 0x1234)
	if r.MAR != 0x1234 {
		t.Fatalf("MAR = %#x, want 0x1234", r.MAR)
	}
	r.WriteCBus(1<<CBusBitFor(A3), 99)
	if r.GP[A3] != 99 {
		t.Fatalf("A3 = %d, want 99", r.GP[A3])
	}
}

func TestReadABusImmAndGP(t *testing.T) {
	r := NewRegisters()
	r.GP[S0] = 42
	if got := r.ReadABus(ASelFor(S0), 0, 0, 0, 0, 0); got != 42 {
		t.Fatalf("A-bus S0 = %d, want 42", got)
	}
	if got := r.ReadABus(ASelIMM, 0, 0, 0, 0, 7); got != 7 {
		t.Fatalf("A-bus IMM = %d, want 7", got)
	}
}

func TestReadBBusImmAndGP(t *testing.T) {
	r := NewRegisters()
	r.GP[A0] = 11
	if got := r.ReadBBus(BSelFor(A0), 0); got != 11 {
		t.Fatalf("B-bus A0 = %d, want 11", got)
	}
	if got := r.ReadBBus(BSelIMM, 9); got != 9 {
		t.Fatalf("B-bus IMM = %d, want 9", got)
	}
}

func TestGPRegNameRoundTrip(t *testing.T) {
	for g := GPReg(0); g < numGPRegs; g++ {
		name := g.String()
		got, ok := LookupGPReg(name)
		if !ok || got != g {
			t.Fatalf("LookupGPReg(%q) = (%v,%v), want (%v,true)", name, got, ok, g)
		}
	}
}
