// Package ztable implements the table opcodes: scan_table, copy_table and
// print_table.
package ztable

import (
	"strings"

	"github.com/tlgreaves/grue/zcore"
)

// ScanTable searches a table for a value. The form byte's high bit selects
// word entries, the low 7 bits give the byte stride between entries.
func ScanTable(core *zcore.Core, test uint16, baddr uint32, length uint16, form uint16) uint32 {
	ptr := baddr
	fieldSize := form & 0x7f
	checkWord := form&0x80 != 0
	if fieldSize == 0 {
		return 0 // A zero stride would loop forever
	}

	for i := uint16(0); i < length; i++ {
		if checkWord {
			if core.ReadWord(ptr) == test {
				return ptr
			}
		} else {
			// The widening matters: a test value over 255 must never match
			// a byte entry.
			if uint16(core.ReadByte(ptr)) == test {
				return ptr
			}
		}

		ptr += uint32(fieldSize)
	}

	return 0
}

// CopyTable copies size bytes from first to second. A zero destination
// zeroes the source table instead; a negative size forces a forward copy
// that is allowed to corrupt an overlapping destination.
func CopyTable(core *zcore.Core, first uint16, second uint16, size int16, store func(addr uint32, value uint8)) {
	sizeAbs := uint32(size)
	if size < 0 {
		sizeAbs = uint32(-size)
	}

	switch {
	case second == 0:
		for i := uint32(0); i < sizeAbs; i++ {
			store(uint32(first)+i, 0)
		}

	case size < 0 || first > second:
		// Forward copy; with a negative size the guest explicitly accepts
		// mid-copy corruption of an overlapping region.
		for i := uint32(0); i < sizeAbs; i++ {
			store(uint32(second)+i, core.ReadByte(uint32(first)+i))
		}

	default:
		// Backwards copy keeps an overlapping destination intact.
		for i := sizeAbs; i > 0; i-- {
			store(uint32(second)+i-1, core.ReadByte(uint32(first)+i-1))
		}
	}
}

// PrintTable renders a rectangle of text from memory: width characters per
// row, height rows, skipping skip bytes between rows.
func PrintTable(core *zcore.Core, baddr uint32, width uint16, height uint16, skip uint16) string {
	s := strings.Builder{}
	ptr := baddr

	for row := uint16(0); row < height; row++ {
		if row != 0 {
			s.WriteByte('\n')
			ptr += uint32(skip)
		}
		for col := uint16(0); col < width; col++ {
			s.WriteByte(core.ReadByte(ptr))
			ptr++
		}
	}

	return s.String()
}
