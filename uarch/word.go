package uarch

// Microinstruction field widths and shift positions, packed MSB-to-LSB as:
//
//	NEXT_ADDR(9) JAM(3) ALU_CTRL(9) C_BUS(20) MEM(3) A_SEL(5) B_SEL(5) IMM(8)
//
// 62 of the word's 64 bits are used; the top two bits are always zero,
// which is what makes Halt (all ones) an unambiguous sentinel.
const (
	shiftNext    = 53
	shiftJam     = 50
	shiftALUCtrl = 41
	shiftCBus    = 21
	shiftMem     = 18
	shiftASel    = 13
	shiftBSel    = 8
	shiftImm     = 0

	maskNext    = 0x1FF
	maskJam     = 0x7
	maskALUCtrl = 0x1FF
	maskCBus    = 0xFFFFF
	maskMem     = 0x7
	maskASel    = 0x1F
	maskBSel    = 0x1F
	maskImm     = 0xFF
)

// MemCtrl is the 3-bit memory-phase control field, decoded bit2=write,
// bit1=read, bit0=fetch (matching the original interpreter's decode order).
type MemCtrl uint8

const (
	MemWrite MemCtrl = 1 << 2
	MemRead  MemCtrl = 1 << 1
	MemFetch MemCtrl = 1 << 0
)

// Microinstruction is the decoded form of a 64-bit control-store word.
type Microinstruction struct {
	Next    uint16
	Jam     Jam
	ALUCtrl uint16
	CBus    uint32
	Mem     MemCtrl
	ASel    uint8
	BSel    uint8
	Imm     uint8
}

// Encode packs mi into the 64-bit control-store word form.
func (mi Microinstruction) Encode() uint64 {
	var w uint64
	w |= uint64(mi.Next&maskNext) << shiftNext
	w |= uint64(mi.Jam&maskJam) << shiftJam
	w |= uint64(mi.ALUCtrl&maskALUCtrl) << shiftALUCtrl
	w |= uint64(mi.CBus&maskCBus) << shiftCBus
	w |= uint64(mi.Mem&maskMem) << shiftMem
	w |= uint64(mi.ASel&maskASel) << shiftASel
	w |= uint64(mi.BSel&maskBSel) << shiftBSel
	w |= uint64(mi.Imm&maskImm) << shiftImm
	return w
}

// DecodeWord unpacks a 64-bit control-store word into its fields.
func DecodeWord(w uint64) Microinstruction {
	return Microinstruction{
		Next:    uint16((w >> shiftNext) & maskNext),
		Jam:     Jam((w >> shiftJam) & maskJam),
		ALUCtrl: uint16((w >> shiftALUCtrl) & maskALUCtrl),
		CBus:    uint32((w >> shiftCBus) & maskCBus),
		Mem:     MemCtrl((w >> shiftMem) & maskMem),
		ASel:    uint8((w >> shiftASel) & maskASel),
		BSel:    uint8((w >> shiftBSel) & maskBSel),
		Imm:     uint8((w >> shiftImm) & maskImm),
	}
}
