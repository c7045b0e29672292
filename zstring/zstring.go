// Package zstring implements the packed 5-bit text encoding: three z-chars
// per 16-bit word, with shift characters, abbreviation references and 10-bit
// ZSCII escapes. See sections 3.2-3.8 of the Z-machine Standard.
package zstring

import "github.com/tlgreaves/grue/zcore"

// Decode reads a packed Z-string starting at addr and returns the ZSCII
// bytes plus the number of story bytes consumed.
func Decode(core *zcore.Core, addr uint32, alphabets *Alphabets) ([]uint8, uint32) {
	return decode(core, addr, alphabets, 0)
}

// DecodeString is Decode with the result translated to a host string.
func DecodeString(core *zcore.Core, addr uint32, alphabets *Alphabets) (string, uint32) {
	zscii, bytesRead := Decode(core, addr, alphabets)
	runes := make([]rune, 0, len(zscii))
	for _, c := range zscii {
		runes = append(runes, ZsciiToRune(c, core))
	}
	return string(runes), bytesRead
}

func decode(core *zcore.Core, addr uint32, alphabets *Alphabets, depth int) ([]uint8, uint32) {
	version := core.Version

	// First unpack the words into a stream of 5-bit z-chars, stopping on the
	// word with the end bit set.
	var zchrStream []uint8
	bytesRead := uint32(0)
	for {
		if addr+bytesRead+2 > core.MemoryLength() {
			break
		}
		word := core.ReadWord(addr + bytesRead)
		bytesRead += 2

		zchrStream = append(zchrStream, uint8((word>>10)&0x1f), uint8((word>>5)&0x1f), uint8(word&0x1f))

		if word&0x8000 != 0 {
			break
		}
	}

	var out []uint8
	baseRow := 0
	row := 0

	for i := 0; i < len(zchrStream); i++ {
		zchr := zchrStream[i]

		switch {
		case zchr == 0:
			out = append(out, ' ')
			row = baseRow

		case zchr == 1 && version == 1:
			out = append(out, '\n')
			row = baseRow

		case (zchr == 1 && version >= 2) || (zchr <= 3 && version >= 3):
			// Abbreviation reference: the next z-char completes the index.
			// Abbreviations cannot themselves contain abbreviations.
			if i+1 < len(zchrStream) && depth == 0 {
				out = append(out, expandAbbreviation(core, alphabets, zchr, zchrStream[i+1])...)
			}
			i++
			row = baseRow

		case zchr == 2 || zchr == 3:
			// V1-2 one-shot shift (abbreviations took these slots in V3+).
			row = (baseRow + int(zchr) - 1) % 3

		case zchr == 4 || zchr == 5:
			if version <= 2 {
				// Shift-lock: move the base row permanently.
				baseRow = (baseRow + int(zchr) - 3) % 3
				row = baseRow
			} else {
				// One-shot shift for the following z-char only.
				row = (baseRow + int(zchr) - 3) % 3
			}

		case row == 2 && zchr == 6:
			// 10-bit ZSCII escape assembled from the next two z-chars.
			if i+2 < len(zchrStream) {
				out = append(out, zchrStream[i+1]<<5|zchrStream[i+2])
			}
			i += 2
			row = baseRow

		default:
			out = append(out, alphabets.zscii(row, zchr))
			row = baseRow
		}
	}

	return out, bytesRead
}

func expandAbbreviation(core *zcore.Core, alphabets *Alphabets, z uint8, x uint8) []uint8 {
	index := 32*(uint16(z)-1) + uint16(x)
	entryAddr := uint32(core.AbbreviationTableBase) + 2*uint32(index)
	stringAddr := 2 * uint32(core.ReadWord(entryAddr))

	expansion, _ := decode(core, stringAddr, alphabets, 1)
	return expansion
}

// Encode packs a ZSCII token into the fixed dictionary resolution: two words
// (six z-chars) up to V3, three words (nine z-chars) from V4. Unused slots
// are padded with z-char 5 and the end bit is set on the final word.
func Encode(src []uint8, version uint8, alphabets *Alphabets) []uint8 {
	resolution := 6
	if version >= 4 {
		resolution = 9
	}

	zchrs := make([]uint8, 0, resolution)
	for _, c := range src {
		if len(zchrs) >= resolution {
			break
		}
		switch {
		case c == ' ':
			zchrs = append(zchrs, 0)
		default:
			if row, zchr, ok := alphabets.find(c); ok {
				if row != 0 {
					zchrs = append(zchrs, uint8(3+row))
				}
				zchrs = append(zchrs, zchr)
			} else {
				// Full ZSCII escape: shift to A2, escape marker, two halves.
				zchrs = append(zchrs, 5, 6, c>>5, c&0x1f)
			}
		}
	}

	for len(zchrs) < resolution {
		zchrs = append(zchrs, 5)
	}
	zchrs = zchrs[:resolution]

	encoded := make([]uint8, 0, resolution/3*2)
	for i := 0; i < resolution; i += 3 {
		word := uint16(zchrs[i])<<10 | uint16(zchrs[i+1])<<5 | uint16(zchrs[i+2])
		if i+3 == resolution {
			word |= 0x8000
		}
		encoded = append(encoded, uint8(word>>8), uint8(word))
	}

	return encoded
}
