package uarch

import "fmt"

// CSSize is the number of addressable microinstruction slots.
const CSSize = 512

// Halt is the sentinel microinstruction word that terminates a run. It is
// never produced by a real encode (the top two bits of a real word are
// always zero), so it cannot collide with a legitimate control word.
const Halt uint64 = 1<<64 - 1

// ErrCSAddrOutOfRange is returned when a control-store address falls outside
// [0, CSSize).
var ErrCSAddrOutOfRange = fmt.Errorf("ctrlstore: address out of range (0..%d)", CSSize-1)

// Jam selects how the next microinstruction address is computed from the
// plain NEXT_ADDR field.
type Jam uint8

const (
	JamNone Jam = iota // next = NEXT_ADDR
	JamZ               // next = NEXT_ADDR | (Z << 8)
	JamN               // next = NEXT_ADDR | (N << 8)
	JamMBR             // next = NEXT_ADDR | MBR opcode bits
)

// ControlStore is the microprogram ROM: a fixed 512-entry array of 64-bit
// microinstruction words plus the micro-program counter driving fetch.
//
// Grounded on the original interpreter's CtrlStore, generalized from its
// 256-entry snapshot to the 512-entry address space the data model mandates.
type ControlStore struct {
	words [CSSize]uint64
	mpc   uint16
}

// NewControlStore returns a control store loaded from words (0-padded/
// truncated to CSSize) with the micro-program counter at 0.
func NewControlStore(words []uint64) *ControlStore {
	cs := &ControlStore{}
	copy(cs.words[:], words)
	return cs
}

// Get returns the microinstruction word at mpc.
func (cs *ControlStore) Get() uint64 {
	return cs.words[cs.mpc]
}

// Words returns a copy of the full CSSize-entry microprogram, for image
// serialization.
func (cs *ControlStore) Words() []uint64 {
	out := make([]uint64, CSSize)
	copy(out, cs.words[:])
	return out
}

// MPC returns the current micro-program counter.
func (cs *ControlStore) MPC() uint16 {
	return cs.mpc
}

// SetMPC forces the micro-program counter, used to seed execution at a
// microprogram entry point.
func (cs *ControlStore) SetMPC(addr uint16) error {
	if addr >= CSSize {
		return ErrCSAddrOutOfRange
	}
	cs.mpc = addr
	return nil
}

// UpdateMPC advances the micro-program counter from the current
// microinstruction's NEXT_ADDR/JAM fields, conditioned on the ALU's Z/N
// flags and the low byte of MBR (the opcode dispatch byte).
func (cs *ControlStore) UpdateMPC(next uint16, jam Jam, z, n bool, mbrLow uint8) {
	switch jam {
	case JamNone:
		cs.mpc = next % CSSize
	case JamZ:
		if z {
			next |= 1 << 8
		}
		cs.mpc = next % CSSize
	case JamN:
		if n {
			next |= 1 << 8
		}
		cs.mpc = next % CSSize
	case JamMBR:
		cs.mpc = (next | uint16(mbrLow)) % CSSize
	}
}
