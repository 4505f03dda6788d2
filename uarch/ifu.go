package uarch

// IFUQueueBytes is the size of the instruction prefetch queue: room for two
// RAM words (4 bytes each).
const IFUQueueBytes = 8

// IFU is the instruction fetch unit: a small byte FIFO fed by word-sized RAM
// fetches, exposing MBR (the next undispatched opcode byte) and MBR2 (the
// byte after it) to the data path.
//
// Grounded on the original interpreter's mem.fetch/mem.read/update_pc call
// sites in mod.rs, reshaped into a fixed byte array whose contents shift
// down by one on every consume (the teacher's
// stack-VM keeps its program counter and buffers as plain arrays/slices
// rather than reaching for container/list, and that flat-array style is
// followed here too).
type IFU struct {
	buf       [IFUQueueBytes]byte
	len       int
	fetchAddr uint32 // next RAM word address to prefetch
}

// NewIFU returns an empty IFU that will next fetch from addr.
func NewIFU(addr uint32) *IFU {
	return &IFU{fetchAddr: addr}
}

// Reset empties the queue and restarts fetching at addr, used when PC is
// written through the C bus, which invalidates whatever was prefetched.
func (f *IFU) Reset(addr uint32) {
	f.len = 0
	f.fetchAddr = addr
}

// NeedsFetch reports whether the queue has room for another word.
func (f *IFU) NeedsFetch() bool {
	return f.len <= IFUQueueBytes-4
}

// Fetch appends the next RAM word's 4 bytes (big-endian byte order) to the
// queue and advances the fetch address.
func (f *IFU) Fetch(ram *RAM) error {
	word, err := ram.Get(f.fetchAddr)
	if err != nil {
		return err
	}
	f.buf[f.len+0] = byte(word >> 24)
	f.buf[f.len+1] = byte(word >> 16)
	f.buf[f.len+2] = byte(word >> 8)
	f.buf[f.len+3] = byte(word)
	f.len += 4
	f.fetchAddr++
	return nil
}

// MBR returns the next undispatched opcode byte, zero-extended and
// sign-extended.
func (f *IFU) MBR() (signed, unsigned uint32) {
	if f.len == 0 {
		return 0, 0
	}
	b := f.buf[0]
	unsigned = uint32(b)
	signed = unsigned
	if b&0x80 != 0 {
		signed |= 0xFFFFFF00
	}
	return signed, unsigned
}

// MBR2 returns the byte following MBR, zero-extended and sign-extended.
func (f *IFU) MBR2() (signed, unsigned uint32) {
	if f.len < 2 {
		return 0, 0
	}
	b := f.buf[1]
	unsigned = uint32(b)
	signed = unsigned
	if b&0x80 != 0 {
		signed |= 0xFFFFFF00
	}
	return signed, unsigned
}

// ConsumeMBR drops the front byte of the queue and advances PC by one, the
// effect of dispatching on the current opcode byte and moving on to the
// next. Bundling the PC advance into the consume (rather than leaving it to
// the caller) is deliberate: a microprogram that jams on MBR always wants
// both to happen together, and splitting them is exactly the kind of bug
// invariant 6 guards against.
func (f *IFU) ConsumeMBR(pc *uint32) {
	if f.len == 0 {
		return
	}
	copy(f.buf[:], f.buf[1:f.len])
	f.len--
	*pc++
}
