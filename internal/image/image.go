// Package image reads and writes the raw byte-stream RAM/ROM images the
// simulator and assembler pass between each other: a RAM image is a
// sequence of little-endian 32-bit words loaded at address 0, and a ROM
// (firmware) image is a sequence of little-endian 64-bit microinstruction
// words loaded at control-store address 0. No header or magic — exactly the
// format the original interpreter's own `--ram`/`--rom` loaders expect,
// mirrored here the way the teacher's `uint32FromBytes`/`uint32ToBytes`
// helpers read/write its stack-machine's byte-oriented memory.
package image

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"vondel/uarch"
)

// WriteROM writes cs's full microprogram as CSSize little-endian uint64
// words.
func WriteROM(w io.Writer, cs *uarch.ControlStore) error {
	bw := bufio.NewWriter(w)
	for _, word := range cs.Words() {
		if err := binary.Write(bw, binary.LittleEndian, word); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteROMFile creates (or truncates) path and writes cs's microprogram to it.
func WriteROMFile(path string, cs *uarch.ControlStore) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteROM(f, cs)
}

// WriteRAM writes words as a sequence of little-endian uint32 words.
func WriteRAM(w io.Writer, words []uint32) error {
	bw := bufio.NewWriter(w)
	for _, v := range words {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteRAMFile creates (or truncates) path and writes words to it.
func WriteRAMFile(path string, words []uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteRAM(f, words)
}

// ReadROM reads up to CSSize little-endian uint64 words from r and returns a
// ControlStore seeded with them (trailing, unwritten entries stay zero).
func ReadROM(r io.Reader) (*uarch.ControlStore, error) {
	br := bufio.NewReader(r)
	words := make([]uint64, 0, uarch.CSSize)
	for len(words) < uarch.CSSize {
		var w uint64
		if err := binary.Read(br, binary.LittleEndian, &w); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, err
		}
		words = append(words, w)
	}
	return uarch.NewControlStore(words), nil
}

// ReadROMFile opens path and reads it as a ROM image.
func ReadROMFile(path string) (*uarch.ControlStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadROM(f)
}

// ReadRAM reads all little-endian uint32 words from r.
func ReadRAM(r io.Reader) ([]uint32, error) {
	br := bufio.NewReader(r)
	var words []uint32
	for {
		var w uint32
		if err := binary.Read(br, binary.LittleEndian, &w); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, err
		}
		words = append(words, w)
	}
	return words, nil
}

// ReadRAMFile opens path and reads it as a RAM image.
func ReadRAMFile(path string) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRAM(f)
}
