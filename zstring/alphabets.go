package zstring

import "github.com/tlgreaves/grue/zcore"

// The three alphabet rows. Each row maps z-chars 6..31 to ZSCII.
var a0Default = [26]uint8{'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z'}
var a1Default = [26]uint8{'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z'}

// A2 has no entry for z-char 6 (the ZSCII escape); index 0 below is z-char
// 7, which is the ZSCII newline (13) in V2+.
var a2V1 = [25]uint8{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.', ',', '!', '?', '_', '#', '\'', '"', '/', '\\', '<', '-', ':', '(', ')'}
var a2Default = [25]uint8{13, '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.', ',', '!', '?', '_', '#', '\'', '"', '/', '\\', '-', ':', '(', ')'}

// Alphabets holds the active alphabet rows, either the standard defaults or
// the story's custom table from the header alphabet pointer.
type Alphabets struct {
	version uint8
	a0      [26]uint8
	a1      [26]uint8
	a2      [25]uint8
}

// LoadAlphabets selects the alphabet rows for a story. V5+ stories may
// provide a 78 byte replacement table; z-char 7 of A2 stays a newline even
// then.
func LoadAlphabets(core *zcore.Core) *Alphabets {
	alphabets := defaultAlphabets(core.Version)

	if core.Version >= 5 && core.AlphabetTableBase != 0 {
		base := uint32(core.AlphabetTableBase)
		for i := 0; i < 26; i++ {
			alphabets.a0[i] = core.ReadByte(base + uint32(i))
			alphabets.a1[i] = core.ReadByte(base + 26 + uint32(i))
		}
		alphabets.a2[0] = 13 // z-char 7 stays a newline even with custom tables
		for i := 1; i < 25; i++ {
			alphabets.a2[i] = core.ReadByte(base + 53 + uint32(i))
		}
	}

	return alphabets
}

func defaultAlphabets(version uint8) *Alphabets {
	alphabets := &Alphabets{
		version: version,
		a0:      a0Default,
		a1:      a1Default,
		a2:      a2Default,
	}
	if version == 1 {
		alphabets.a2 = a2V1
	}
	return alphabets
}

// zscii returns the ZSCII value of a z-char (6..31 for rows 0/1, 7..31 for
// row 2) in the given row.
func (a *Alphabets) zscii(row int, zchr uint8) uint8 {
	switch row {
	case 0:
		return a.a0[zchr-6]
	case 1:
		return a.a1[zchr-6]
	default:
		return a.a2[zchr-7]
	}
}

// find locates a ZSCII character in the alphabet rows, returning the row and
// z-char. ok is false when the character needs a full ZSCII escape.
func (a *Alphabets) find(c uint8) (row int, zchr uint8, ok bool) {
	for i := 0; i < 26; i++ {
		if a.a0[i] == c {
			return 0, uint8(i + 6), true
		}
	}
	for i := 0; i < 26; i++ {
		if a.a1[i] == c {
			return 1, uint8(i + 6), true
		}
	}
	for i := 1; i < 25; i++ {
		if a.a2[i] == c {
			return 2, uint8(i + 7), true
		}
	}
	return 0, 0, false
}
