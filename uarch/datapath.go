package uarch

// DataPath is one half of the pipelined pair driving a running CPU. Each
// DataPath is bound to one clock level; on that level's edge its Init runs
// (decode + instruction prefetch for a new microinstruction), and on the opposite
// level's edge its End runs (ALU evaluation + register/memory commit for
// the microinstruction it decoded last time).
//
// Grounded on the original interpreter's DataPath (init_cycle/end_cycle),
// kept as two explicit methods operating on the shared machine state
// (Registers, IFU, RAM, ALU, ControlStore) rather than on private copies.
type DataPath struct {
	trigger ClkLevel
	latched Microinstruction
}

// NewDataPath returns a DataPath bound to trigger.
func NewDataPath(trigger ClkLevel) *DataPath {
	return &DataPath{trigger: trigger}
}

// Init decodes mi and performs the instruction prefetch it requests; a RAM
// read into MDR waits for End.
func (dp *DataPath) Init(mi Microinstruction, ram *RAM, ifu *IFU) error {
	dp.latched = mi

	if mi.Mem&MemFetch != 0 && ifu.NeedsFetch() {
		if err := ifu.Fetch(ram); err != nil {
			return err
		}
	}
	return nil
}

// InitFromWord is a convenience wrapper decoding a raw control-store word.
func (dp *DataPath) InitFromWord(word uint64, ram *RAM, ifu *IFU) error {
	return dp.Init(DecodeWord(word), ram, ifu)
}

// End evaluates the ALU against the current register file, commits the
// result to the C bus, performs any requested RAM write, and advances the
// control store's micro-program counter.
func (dp *DataPath) End(ram *RAM, ifu *IFU, regs *Registers, alu *ALU, cs *ControlStore) error {
	mi := dp.latched

	if mi.Mem&MemRead != 0 {
		v, err := ram.Get(regs.MAR)
		if err != nil {
			return err
		}
		regs.MDR = v
	}

	mbrS, mbrU := ifu.MBR()
	mbr2S, mbr2U := ifu.MBR2()
	a := regs.ReadABus(mi.ASel, mbrS, mbrU, mbr2S, mbr2U, mi.Imm)
	b := regs.ReadBBus(mi.BSel, mi.Imm)

	alu.Entry(mi.ALUCtrl, a, b)
	c := alu.Op()

	regs.WriteCBus(mi.CBus, c)
	if mi.CBus&(1<<CBusPC) != 0 {
		ifu.Reset(regs.PC)
	}

	if mi.Mem&MemWrite != 0 {
		if err := ram.Set(regs.MAR, regs.MDR); err != nil {
			return err
		}
	}

	_, mbrLowU := ifu.MBR()
	cs.UpdateMPC(mi.Next, mi.Jam, alu.Z(), alu.N(), uint8(mbrLowU))

	if mi.Jam == JamMBR {
		ifu.ConsumeMBR(&regs.PC)
	}
	return nil
}
