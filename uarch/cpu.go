package uarch

import (
	"context"
	"fmt"
)

// ErrCycleLimit is returned by Run when maxCycles is reached without the
// control store ever selecting Halt — a guard against a microprogram that
// never terminates, since Run otherwise has no other way to stop.
var ErrCycleLimit = fmt.Errorf("cpu: cycle limit reached before halt")

// Snapshot is a point-in-time view of machine state, handed to a trace
// callback after every clock edge.
type Snapshot struct {
	Cycle uint64
	MPC   uint16
	Word  uint64
	Regs  Registers
}

// CPU ties together the control store, register file, ALU, IFU, RAM and the
// pipelined thread that steps them, plus the clock driving the whole thing.
//
// Grounded on the original interpreter's Computer/Cpu split (Computer owns
// the clock goroutine and channel, Cpu owns the firmware+thread), collapsed
// into one struct since Go's goroutine ownership doesn't need the extra
// layer of indirection the Rust Arc<Mutex<Clock>> required.
type CPU struct {
	RAM     *RAM
	Regs    *Registers
	IFU     *IFU
	ALU     *ALU
	CS      *ControlStore
	thread  *Thread
	clock   *Clock
}

// NewCPU returns a CPU running the firmware in cs against ram (used as
// given), with a fresh register file (see NewRegisters) and an empty IFU.
func NewCPU(cs *ControlStore, ram *RAM) *CPU {
	return &CPU{
		RAM:    ram,
		Regs:   NewRegisters(),
		IFU:    NewIFU(0),
		ALU:    &ALU{},
		CS:     cs,
		thread: NewThread(),
		clock:  NewClock(),
	}
}

// Run drives the clock until the control store selects Halt, ctx is
// cancelled, or maxCycles clock edges have elapsed (0 means unlimited).
// trace, if non-nil, is called after every edge with the resulting state.
//
// The clock runs on its own goroutine and hands each level to Run over an
// unbuffered channel — the same producer/consumer rendezvous the original
// interpreter's Computer.exec used a std::sync::mpsc channel for, done here
// with a Go channel and context cancellation instead of a second mutex.
func (c *CPU) Run(ctx context.Context, maxCycles uint64, trace func(Snapshot)) error {
	if err := c.thread.Init(c.CS, c.RAM, c.IFU); err != nil {
		return err
	}

	levels := make(chan ClkLevel)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case levels <- c.clock.Level():
				c.clock.Alt()
			case <-done:
				return
			}
		}
	}()

	for {
		if c.CS.Get() == Halt {
			return nil
		}
		if maxCycles != 0 && c.clock.Count() >= maxCycles {
			return ErrCycleLimit
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case trigger := <-levels:
			if err := c.thread.Step(trigger, c.RAM, c.IFU, c.Regs, c.ALU, c.CS); err != nil {
				return err
			}
			if trace != nil {
				trace(Snapshot{
					Cycle: c.clock.Count(),
					MPC:   c.CS.MPC(),
					Word:  c.CS.Get(),
					Regs:  *c.Regs,
				})
			}
		}
	}
}
