package zmachine

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/tlgreaves/grue/zerr"
)

// Quetzal chunk ids.
const (
	idFORM = "FORM"
	idIFZS = "IFZS"
	idIFhd = "IFhd"
	idUMem = "UMem"
	idCMem = "CMem"
	idStks = "Stks"
)

// Restoration progress bits.
const (
	gotHeader = 0x01
	gotStack  = 0x02
	gotMemory = 0x04
	gotAll    = 0x07
)

func writeChunkHeader(buf *bytes.Buffer, id string, length uint32) {
	buf.WriteString(id)
	var lenBytes [4]byte
	binary.BigEndian.PutUint32(lenBytes[:], length)
	buf.Write(lenBytes[:])
}

func writeWord(buf *bytes.Buffer, w uint16) {
	buf.WriteByte(byte(w >> 8))
	buf.WriteByte(byte(w))
}

// SaveQuetzal serialises the full machine state in the standard IFZS
// container: an IFhd identity chunk, a CMem XOR-compressed dynamic memory
// image and a Stks chunk of stack frames.
func (z *Interpreter) SaveQuetzal() []byte {
	var body bytes.Buffer
	body.WriteString(idIFZS)

	// IFhd: release, serial, checksum, 3 byte PC.
	writeChunkHeader(&body, idIFhd, 13)
	writeWord(&body, z.Core.ReleaseNumber)
	body.Write(z.Core.Serial[:])
	writeWord(&body, z.Core.FileChecksum)
	body.WriteByte(byte(z.pc >> 16))
	body.WriteByte(byte(z.pc >> 8))
	body.WriteByte(byte(z.pc))
	body.WriteByte(0) // pad: 13 is odd

	// CMem: dynamic memory XORed against the pristine story, runs of
	// zeros collapsed to 0x00 n pairs ("skip n+1 bytes"), long runs
	// chained with 0x00 0xFF blocks.
	cmem := encodeCMem(z.Core.OriginalDynamic(), z.Core.DynamicMemory())
	writeChunkHeader(&body, idCMem, uint32(len(cmem)))
	body.Write(cmem)
	if len(cmem)%2 == 1 {
		body.WriteByte(0)
	}

	stks := z.encodeStacks()
	if stks == nil {
		return nil
	}
	writeChunkHeader(&body, idStks, uint32(len(stks)))
	body.Write(stks)
	if len(stks)%2 == 1 {
		body.WriteByte(0)
	}

	var out bytes.Buffer
	writeChunkHeader(&out, idFORM, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func encodeCMem(original []uint8, current []uint8) []byte {
	var out bytes.Buffer
	run := 0

	for i := range current {
		c := current[i] ^ original[i]
		if c == 0 {
			run++
			continue
		}

		for run > 0x100 {
			out.WriteByte(0)
			out.WriteByte(0xff)
			run -= 0x100
		}
		if run > 0 {
			out.WriteByte(0)
			out.WriteByte(byte(run - 1))
			run = 0
		}
		out.WriteByte(c)
	}

	// A trailing run is implied by the chunk ending early.
	return out.Bytes()
}

// encodeStacks walks the frame chain most-recent-first, then emits the
// frames oldest-first as the format demands. Returns nil when the machine
// is inside an interrupt routine, where saving is illegal.
func (z *Interpreter) encodeStacks() []byte {
	// frames[i] is the stack index just above frame i's header; frames[0]
	// is where a frame pushed right now would start.
	frames := []int{z.sp}
	for i := z.fp + 4; i < StackSize+4; i = int(z.stack[i-3]) + 5 {
		frames = append(frames, i)
	}
	n := len(frames) - 1

	var out bytes.Buffer

	// Everything other than V6 can grow eval stack outside any call, so a
	// fake outermost frame carries those words.
	if z.Core.Version != 6 {
		for i := 0; i < 6; i++ {
			out.WriteByte(0)
		}
		nstk := StackSize - frames[n]
		writeWord(&out, uint16(nstk))
		for j := StackSize - 1; j >= frames[n]; j-- {
			writeWord(&out, z.stack[j])
		}
	}

	for i := n; i > 0; i-- {
		p := frames[i] - 4 // frame header base
		nvars := int(z.stack[p]&0x0f00) >> 8
		nargs := int(z.stack[p] & 0x00ff)
		nstk := frames[i] - frames[i-1] - nvars - 4
		pc := uint32(z.stack[p+3])<<9 | uint32(z.stack[p+2])

		var resultVar byte
		switch z.stack[p] & 0xf000 {
		case 0x0000: // function: PC points at the store byte
			resultVar = z.Core.ReadByte(pc)
			pc = (pc+1)<<8 | uint32(nvars)
		case 0x1000: // procedure
			resultVar = 0
			pc = pc<<8 | 0x10 | uint32(nvars)
		default: // direct call frame
			z.Errors.Runtime(zerr.ErrSaveInInter, z.instructionPC)
			return nil
		}

		argMask := 0
		if nargs != 0 {
			argMask = 1<<nargs - 1
		}

		out.WriteByte(byte(pc >> 24))
		out.WriteByte(byte(pc >> 16))
		out.WriteByte(byte(pc >> 8))
		out.WriteByte(byte(pc))
		out.WriteByte(resultVar)
		out.WriteByte(byte(argMask))
		writeWord(&out, uint16(nstk))

		for j, q := 0, p-1; j < nvars+nstk; j, q = j+1, q-1 {
			writeWord(&out, z.stack[q])
		}
	}

	return out.Bytes()
}

// RestoreSnapshot applies a host-held snapshot and refreshes the
// interpreter-owned header fields, as a guest-initiated restore would.
func (z *Interpreter) RestoreSnapshot(data []byte) error {
	switch result := z.RestoreQuetzal(data); {
	case result == 2:
		z.afterRestore()
		return nil
	case result < 0:
		return errors.New("snapshot only partially applied; machine state is corrupt")
	default:
		return errors.New("snapshot rejected")
	}
}

// RestoreQuetzal rebuilds machine state from an IFZS image. Returns 2 on
// success, 0 when the data was rejected before any state changed, and -1
// when state is already half overwritten and the machine cannot continue.
func (z *Interpreter) RestoreQuetzal(data []byte) int {
	r := bytes.NewReader(data)

	var formHeader [12]byte
	if _, err := r.Read(formHeader[:]); err != nil {
		return 0
	}
	if string(formHeader[0:4]) != idFORM || string(formHeader[8:12]) != idIFZS {
		z.printString("This is not a saved game file!\n")
		return 0
	}
	ifzsLen := binary.BigEndian.Uint32(formHeader[4:8])
	if ifzsLen&1 != 0 || ifzsLen < 4 {
		return 0
	}
	remaining := int(ifzsLen) - 4

	fatal := 0 // becomes -1 once PC or stack have been touched
	progress := 0

	for remaining > 0 {
		if remaining < 8 {
			return fatal
		}
		var chunkHeader [8]byte
		if _, err := r.Read(chunkHeader[:]); err != nil {
			return fatal
		}
		remaining -= 8

		id := string(chunkHeader[0:4])
		length := int(binary.BigEndian.Uint32(chunkHeader[4:8]))
		if remaining < length {
			return fatal
		}
		pad := length & 1
		remaining -= length + pad

		payload := make([]byte, length+pad)
		if _, err := r.Read(payload); err != nil {
			return fatal
		}
		payload = payload[:length]

		switch id {
		case idIFhd:
			if progress&gotHeader != 0 {
				z.printString("Save file has two IFZS chunks!\n")
				return fatal
			}
			progress |= gotHeader
			if length < 13 {
				return fatal
			}

			release := binary.BigEndian.Uint16(payload[0:2])
			checksum := binary.BigEndian.Uint16(payload[8:10])
			if release != z.Core.ReleaseNumber ||
				!bytes.Equal(payload[2:8], z.Core.Serial[:]) ||
				checksum != z.Core.FileChecksum {
				z.printString("File was not saved from this story!\n")
				return fatal
			}

			// Setting the PC commits us: errors are fatal from here on.
			fatal = -1
			z.pc = uint32(payload[10])<<16 | uint32(payload[11])<<8 | uint32(payload[12])

		case idStks:
			if progress&gotStack != 0 {
				z.printString("File contains two stack chunks!\n")
				break
			}
			progress |= gotStack
			fatal = -1
			if !z.decodeStacks(payload) {
				return fatal
			}

		case idCMem:
			if progress&gotMemory != 0 {
				break
			}
			if z.applyCMem(payload) {
				progress |= gotMemory
			}

		case idUMem:
			if progress&gotMemory != 0 {
				break
			}
			if length == int(z.Core.DynamicSize) {
				copy(z.Core.DynamicMemory(), payload)
				progress |= gotMemory
			} else {
				z.printString("`UMem' chunk wrong size!\n")
			}

		default:
			// Unrecognised chunk; skip it.
		}
	}

	if progress != gotAll {
		if progress&gotHeader == 0 {
			z.printString("error: no valid header (`IFhd') chunk in file.\n")
		}
		if progress&gotStack == 0 {
			z.printString("error: no valid stack (`Stks') chunk in file.\n")
		}
		if progress&gotMemory == 0 {
			z.printString("error: no valid memory (`CMem' or `UMem') chunk in file.\n")
		}
		return fatal
	}

	return 2
}

// applyCMem rewinds dynamic memory to the pristine story and XORs the run
// length decoded diff over it.
func (z *Interpreter) applyCMem(payload []byte) bool {
	z.Core.RewindDynamic()
	dynamic := z.Core.DynamicMemory()

	i := 0
	for p := 0; p < len(payload); p++ {
		c := payload[p]
		if c == 0 {
			if p+1 >= len(payload) {
				z.printString("File contains bogus `CMem' chunk.\n")
				return false
			}
			p++
			i += int(payload[p]) + 1
		} else {
			if i >= len(dynamic) {
				z.printString("warning: `CMem' chunk too long!\n")
				return true
			}
			dynamic[i] ^= c
			i++
		}
	}

	// A short chunk implies a run of unchanged bytes to the end.
	return true
}

// decodeStacks rebuilds the value stack and frame chain from a Stks chunk.
func (z *Interpreter) decodeStacks(payload []byte) bool {
	pos := 0
	readWord := func() (uint16, bool) {
		if pos+2 > len(payload) {
			return 0, false
		}
		w := binary.BigEndian.Uint16(payload[pos : pos+2])
		pos += 2
		return w, true
	}

	z.sp = StackSize

	// Skip the fake outer frame but keep its eval words.
	if z.Core.Version != 6 {
		if len(payload) < 8 {
			return false
		}
		for i := 0; i < 6; i++ {
			if payload[pos] != 0 {
				return false
			}
			pos++
		}
		nstk, ok := readWord()
		if !ok || int(nstk) > StackSize {
			z.printString("Save-file has too much stack (and I can't cope).\n")
			return false
		}
		for i := 0; i < int(nstk); i++ {
			w, ok := readWord()
			if !ok {
				return false
			}
			z.sp--
			z.stack[z.sp] = w
		}
	}

	z.fp = StackSize
	z.frameCount = 0

	for pos < len(payload) {
		if len(payload)-pos < 8 {
			return false
		}
		if z.sp < 4 {
			z.printString("Save-file has too much stack (and I can't cope).\n")
			return false
		}

		frameWord := binary.BigEndian.Uint32(payload[pos : pos+4])
		pos += 4
		nvars := int(frameWord & 0x0f)
		header := uint16(nvars) << 8

		resultVar := payload[pos]
		pos++

		var pc uint32
		if frameWord&0x10 != 0 {
			header |= 0x1000 // procedure
			pc = frameWord >> 8
		} else {
			pc = frameWord>>8 - 1 // point at the result byte
			if z.Core.ReadByte(pc) != resultVar {
				z.printString("Save-file has wrong variable number on stack (possibly wrong game version?)\n")
				return false
			}
		}

		z.sp--
		z.stack[z.sp] = uint16(pc >> 9)
		z.sp--
		z.stack[z.sp] = uint16(pc & 0x1ff)
		z.sp--
		z.stack[z.sp] = uint16(z.fp - 1)

		// The argument mask must decode to a plain count.
		mask := int(payload[pos]) + 1
		pos++
		argc := 0
		for ; argc < 8; argc++ {
			if mask&(1<<argc) != 0 {
				break
			}
		}
		if mask != 1<<argc {
			z.printString("Save-file uses incomplete argument lists (which I can't handle)\n")
			return false
		}

		z.sp--
		z.stack[z.sp] = header | uint16(argc)
		z.fp = z.sp
		z.frameCount++

		nstk, ok := readWord()
		if !ok {
			return false
		}
		total := int(nstk) + nvars
		if z.sp <= total {
			z.printString("Save-file has too much stack (and I can't cope).\n")
			return false
		}
		for i := 0; i < total; i++ {
			w, ok := readWord()
			if !ok {
				return false
			}
			z.sp--
			z.stack[z.sp] = w
		}
	}

	return true
}
