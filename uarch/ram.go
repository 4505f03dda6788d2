package uarch

import "fmt"

// RAMWords is the number of 32-bit words addressable by the machine (a 20-bit
// address space, per the data model's "1M x 32-bit words" memory).
const RAMWords = 1 << 20

// ErrOutOfRange is returned whenever a RAM access falls outside [0, RAMWords).
var ErrOutOfRange = fmt.Errorf("ram: address out of range (0..%d)", RAMWords-1)

// RAM is a flat word-addressable store of 32-bit cells.
//
// Laid out the same way the teacher's stack-VM keeps its backing array: a
// fixed-size slice allocated once up front, never resized during a run.
type RAM struct {
	words [RAMWords]uint32
}

// NewRAM returns a zeroed RAM.
func NewRAM() *RAM {
	return &RAM{}
}

// Get returns the word at addr.
func (r *RAM) Get(addr uint32) (uint32, error) {
	if addr >= RAMWords {
		return 0, ErrOutOfRange
	}
	return r.words[addr], nil
}

// Set stores v at addr.
func (r *RAM) Set(addr uint32, v uint32) error {
	if addr >= RAMWords {
		return ErrOutOfRange
	}
	r.words[addr] = v
	return nil
}

// Load copies words into RAM starting at address 0, the layout both the
// simulator's --ram image and the assembler's data section use.
func (r *RAM) Load(words []uint32) {
	copy(r.words[:], words)
}
