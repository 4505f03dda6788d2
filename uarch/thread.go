package uarch

// Thread owns the two overlapped data paths and drives them through one
// clock edge at a time.
//
// Grounded on the original interpreter's Thread (dp1/dp2 ping-pong).
type Thread struct {
	dp1, dp2 *DataPath
}

// NewThread returns a Thread with its two data paths bound to opposite
// clock levels.
func NewThread() *Thread {
	return &Thread{
		dp1: NewDataPath(ClkFalling),
		dp2: NewDataPath(ClkRising),
	}
}

// Init seeds dp1 with the control store's current microinstruction, the
// state the thread is in before the first clock edge ever arrives.
func (t *Thread) Init(cs *ControlStore, ram *RAM, ifu *IFU) error {
	return t.dp1.InitFromWord(cs.Get(), ram, ifu)
}

// Step advances the thread by one clock edge at the given trigger level:
// the data path bound to the opposite level finishes the cycle it started
// last edge, and the data path bound to trigger starts a new one.
func (t *Thread) Step(trigger ClkLevel, ram *RAM, ifu *IFU, regs *Registers, alu *ALU, cs *ControlStore) error {
	if trigger == t.dp1.trigger {
		if err := t.dp2.End(ram, ifu, regs, alu, cs); err != nil {
			return err
		}
		return t.dp1.InitFromWord(cs.Get(), ram, ifu)
	}
	if err := t.dp1.End(ram, ifu, regs, alu, cs); err != nil {
		return err
	}
	return t.dp2.InitFromWord(cs.Get(), ram, ifu)
}
